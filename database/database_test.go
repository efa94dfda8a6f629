package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenMigrates(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer Close(db)

	for _, model := range []any{
		&AdminUser{}, &Application{}, &ContactMessage{}, &AdminReply{},
		&OTPCode{}, &JobOpening{}, &Announcement{}, &EventLog{},
	} {
		assert.True(t, db.Migrator().HasTable(model))
	}
}

func TestAdminReplyParents(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer Close(db)

	author := AdminUser{Username: "boss", PasswordHash: []byte("x"), SessionToken: "tok"}
	require.NoError(t, db.Create(&author).Error)

	app := Application{FirstName: "Grace", LastName: "Hopper", Email: "g@x.com",
		PhoneNumber: "555", Position: "Engineer", Status: "New", SubmissionDate: time.Now()}
	require.NoError(t, db.Create(&app).Error)

	appID := app.ID
	reply := AdminReply{ReplyContent: "hi", ReplyDate: time.Now(), ApplicationID: &appID, AuthorID: author.ID}
	require.NoError(t, db.Create(&reply).Error)

	var loaded Application
	require.NoError(t, db.Preload("Replies").First(&loaded, app.ID).Error)
	require.Len(t, loaded.Replies, 1)
	assert.Nil(t, loaded.Replies[0].MessageID)
}

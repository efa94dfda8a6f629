package site

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vendhansite/database"
)

func TestGenericUnknownModel(t *testing.T) {
	e := newTestEnv(t)
	cookie := e.createAdmin(t, "boss")

	rec := e.postJSON(t, "/api/generic/widget", map[string]string{"title": "x"}, cookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// nothing touched the database
	var openings, announcements int64
	e.db.Model(&database.JobOpening{}).Count(&openings)
	e.db.Model(&database.Announcement{}).Count(&announcements)
	assert.Zero(t, openings)
	assert.Zero(t, announcements)
}

func TestGenericCreateJobOpening(t *testing.T) {
	e := newTestEnv(t)
	cookie := e.createAdmin(t, "boss")

	rec := e.postJSON(t, "/api/generic/job-opening", map[string]any{
		"title":       "Backend Engineer",
		"location":    "Chennai",
		"description": "Go services",
	}, cookie)
	require.Equal(t, http.StatusCreated, rec.Code)

	var opening database.JobOpening
	require.NoError(t, e.db.First(&opening).Error)
	assert.Equal(t, "Backend Engineer", opening.Title)
	assert.True(t, opening.Active)
}

func TestGenericCreateRequiresTitle(t *testing.T) {
	e := newTestEnv(t)
	cookie := e.createAdmin(t, "boss")

	rec := e.postJSON(t, "/api/generic/announcement", map[string]any{"body": "no title"}, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenericUpdateProtectsImmutableFields(t *testing.T) {
	e := newTestEnv(t)
	cookie := e.createAdmin(t, "boss")

	item := database.Announcement{Title: "Original", Body: "body", Active: true}
	require.NoError(t, e.db.Create(&item).Error)
	originalID := item.ID
	originalCreatedAt := item.CreatedAt

	req := e.putJSON(t, "/api/generic/announcement/1", map[string]any{
		"id":         999,
		"created_at": "1999-01-01T00:00:00Z",
		"title":      "Updated",
		"body":       "new body",
	}, cookie)
	require.Equal(t, http.StatusOK, req.Code)

	var updated database.Announcement
	require.NoError(t, e.db.First(&updated, originalID).Error)
	assert.Equal(t, "Updated", updated.Title)
	assert.Equal(t, originalID, updated.ID)
	assert.WithinDuration(t, originalCreatedAt, updated.CreatedAt, time.Second)
}

func TestGenericUpdateMissingItem(t *testing.T) {
	e := newTestEnv(t)
	cookie := e.createAdmin(t, "boss")

	rec := e.putJSON(t, "/api/generic/announcement/42", map[string]any{"title": "x"}, cookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGenericDelete(t *testing.T) {
	e := newTestEnv(t)
	cookie := e.createAdmin(t, "boss")

	item := database.JobOpening{Title: "Old role", Active: false}
	require.NoError(t, e.db.Create(&item).Error)

	rec := e.request(t, http.MethodDelete, "/api/generic/job-opening/"+itoa(item.ID), cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	var count int64
	e.db.Model(&database.JobOpening{}).Count(&count)
	assert.Zero(t, count)
}

func TestGenericListRequiresAuth(t *testing.T) {
	e := newTestEnv(t)

	rec := e.request(t, http.MethodGet, "/api/generic/job-opening")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

package database

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AdminUser struct {
	gorm.Model
	Username     string `gorm:"uniqueIndex"`
	PasswordHash []byte
	SessionToken string       `gorm:"index;unique"`
	Replies      []AdminReply `gorm:"foreignKey:AuthorID"`
}

type Application struct {
	gorm.Model
	FirstName      string
	LastName       string
	Email          string `gorm:"index"`
	PhoneNumber    string
	City           string
	District       string
	Position       string
	UploadFolder   string
	Status         string `gorm:"default:New"`
	SubmissionDate time.Time
	Replies        []AdminReply `gorm:"foreignKey:ApplicationID;constraint:OnDelete:CASCADE"`
}

type ContactMessage struct {
	gorm.Model
	FirstName      string
	LastName       string
	Email          string `gorm:"index"`
	MessageContent string `gorm:"type:text"`
	Status         string `gorm:"default:New"`
	SubmissionDate time.Time
	Replies        []AdminReply `gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE"`
}

// AdminReply belongs to exactly one of Application or ContactMessage. The
// two foreign keys are nullable and exactly one must be set.
type AdminReply struct {
	gorm.Model
	ReplyContent  string `gorm:"type:text"`
	ReplyDate     time.Time
	ApplicationID *uint `gorm:"index"`
	MessageID     *uint `gorm:"index"`
	AuthorID      uint  `gorm:"index"`
}

// OTPCode is one issued verification code. VerifiedAt being set means the
// code was checked successfully and the email now holds an unlock; Consumed
// means that unlock was spent on a form submission.
type OTPCode struct {
	gorm.Model
	Email      string `gorm:"index"`
	Code       string
	ExpiresAt  time.Time
	VerifiedAt *time.Time
	Consumed   bool `gorm:"default:false"`
}

type JobOpening struct {
	gorm.Model
	Title       string
	Location    string
	Description string `gorm:"type:text"`
	Active      bool   `gorm:"default:true"`
}

type Announcement struct {
	gorm.Model
	Title  string
	Body   string `gorm:"type:text"`
	Active bool   `gorm:"default:true"`
}

// EventLog is append-only. The application never updates or deletes rows.
type EventLog struct {
	gorm.Model
	Kind   string `gorm:"index"` // "page_view" or "admin_action"
	Path   string
	Detail datatypes.JSON
}

package constants

import "time"

const (
	APP_NAME   = "Vendhan Info Tech"
	PUBLIC_URL = "https://vendhaninfotech.com"
	DEBUG_MODE = false

	// OTP codes are valid for this long after being issued.
	OTP_TTL = 10 * time.Minute

	// detailed-apply accepts a resume plus up to five certificates
	MAX_UPLOAD_FILES     = 6
	MAX_UPLOAD_SIZE      = 16 << 20 // 16 MB
	MAX_ITEMS_TO_SHOW    = 200
	MAX_MESSAGE_LENGTH   = 10000
	SESSION_TOKEN_LENGTH = 32
)

// Submission status values shared by applications and contact messages.
const (
	STATUS_NEW      = "New"
	STATUS_REVIEWED = "Reviewed"
	STATUS_REPLIED  = "Replied"
)

// AllowedUploadExtensions is the allow-list for applicant documents.
// Anything else is silently skipped during upload.
var AllowedUploadExtensions = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
}

package site

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"vendhansite/constants"
	"vendhansite/database"
	"vendhansite/otp"
)

func (s *Server) handleSendOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		jsonError(w, http.StatusBadRequest, "Email is required.")
		return
	}

	if !s.mail.Configured() {
		log.Printf("mail not configured, OTP cannot be sent")
		jsonError(w, http.StatusInternalServerError, "The mail server is not configured by the administrator.")
		return
	}

	code, err := s.otp.Issue(req.Email)
	if err != nil {
		log.Printf("issuing OTP for %s: %v", req.Email, err)
		jsonError(w, http.StatusInternalServerError, "Could not generate a verification code. Please try again.")
		return
	}

	if err := s.mail.SendOTP(req.Email, code); err != nil {
		log.Printf("failed to send OTP email to %s: %v", req.Email, err)
		jsonError(w, http.StatusInternalServerError, "Could not send verification email. Please check the address and try again.")
		return
	}

	jsonMessage(w, http.StatusOK, "Verification code sent to your email.")
}

func (s *Server) handleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.OTP == "" {
		jsonError(w, http.StatusBadRequest, "Invalid request. Please start over.")
		return
	}

	switch err := s.otp.Verify(req.Email, req.OTP); {
	case err == nil:
		jsonMessage(w, http.StatusOK, "Email verified successfully!")
	case errors.Is(err, otp.ErrExpired):
		jsonError(w, http.StatusBadRequest, "Verification code has expired.")
	case errors.Is(err, otp.ErrInvalidCode):
		jsonError(w, http.StatusBadRequest, "Invalid verification code.")
	default:
		log.Printf("verifying OTP for %s: %v", req.Email, err)
		jsonError(w, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.")
	}
}

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid form data.")
		return
	}

	email := r.FormValue("email")

	// The unlock is spent here, win or lose: a submission that later fails
	// validation still needs a fresh verification to retry.
	if !s.otp.ConsumeUnlock(email) {
		jsonError(w, http.StatusForbidden, "Email not verified. Please complete the verification step.")
		return
	}

	firstName := r.FormValue("firstName")
	lastName := r.FormValue("lastName")
	message := r.FormValue("message")

	if firstName == "" || lastName == "" || message == "" {
		jsonError(w, http.StatusBadRequest, "All fields are required.")
		return
	}
	if len(message) > constants.MAX_MESSAGE_LENGTH {
		jsonError(w, http.StatusBadRequest, "Message is too long.")
		return
	}

	cm := database.ContactMessage{
		FirstName:      firstName,
		LastName:       lastName,
		Email:          email,
		MessageContent: message,
		Status:         constants.STATUS_NEW,
		SubmissionDate: time.Now(),
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&cm).Error; err != nil {
			return err
		}
		// a failed send rolls the row back too
		return s.mail.SendContactNotification(&cm)
	})
	if err != nil {
		log.Printf("contact form submission failed: %v", err)
		jsonError(w, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.")
		return
	}

	jsonMessage(w, http.StatusCreated, "Thank you! Your message has been sent successfully.")
}

func (s *Server) handleDetailedApply(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(constants.MAX_UPLOAD_SIZE); err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid form data.")
		return
	}

	email := r.FormValue("email")

	if !s.otp.ConsumeUnlock(email) {
		jsonError(w, http.StatusForbidden, "Email not verified. Please complete the verification step.")
		return
	}

	firstName := r.FormValue("firstName")
	lastName := r.FormValue("lastName")
	phone := r.FormValue("phone")
	position := r.FormValue("position")

	if firstName == "" || lastName == "" || phone == "" || position == "" {
		jsonError(w, http.StatusBadRequest, "All required fields must be filled in.")
		return
	}

	timestamp := time.Now().Format("20060102_150405")
	folderName := timestamp + "_" + slug.Make(firstName+"_"+lastName)
	applicationDir := filepath.Join(s.cfg.UploadRoot, folderName)
	if err := os.MkdirAll(applicationDir, 0o755); err != nil {
		log.Printf("creating upload dir %s: %v", applicationDir, err)
		jsonError(w, http.StatusInternalServerError, "An unexpected error occurred while submitting your application.")
		return
	}

	// Disallowed or broken files are skipped, never a reason to reject the
	// whole submission. Files already on disk are not cleaned up if a later
	// step fails.
	savedPaths := s.saveAllowedFiles(r, applicationDir)

	app := database.Application{
		FirstName:      firstName,
		LastName:       lastName,
		Email:          email,
		PhoneNumber:    phone,
		City:           r.FormValue("city"),
		District:       r.FormValue("district"),
		Position:       position,
		UploadFolder:   folderName,
		Status:         constants.STATUS_NEW,
		SubmissionDate: time.Now(),
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&app).Error; err != nil {
			return err
		}
		return s.mail.SendApplicationNotification(&app, savedPaths)
	})
	if err != nil {
		log.Printf("job application submission failed: %v", err)
		jsonError(w, http.StatusInternalServerError, "An unexpected error occurred while submitting your application.")
		return
	}

	jsonMessage(w, http.StatusCreated, "Your application has been submitted successfully. We will be in touch!")
}

func (s *Server) saveAllowedFiles(r *http.Request, dir string) []string {
	var saved []string
	if r.MultipartForm == nil {
		return saved
	}

	for _, headers := range r.MultipartForm.File {
		for _, header := range headers {
			if len(saved) >= constants.MAX_UPLOAD_FILES {
				return saved
			}

			ext := strings.ToLower(filepath.Ext(header.Filename))
			if !constants.AllowedUploadExtensions[ext] {
				continue
			}

			base := strings.TrimSuffix(filepath.Base(header.Filename), filepath.Ext(header.Filename))
			safeName := slug.Make(base) + ext

			src, err := header.Open()
			if err != nil {
				log.Printf("opening uploaded file %s: %v", header.Filename, err)
				continue
			}

			destPath := filepath.Join(dir, safeName)
			dest, err := os.Create(destPath)
			if err != nil {
				src.Close()
				log.Printf("creating %s: %v", destPath, err)
				continue
			}

			_, err = io.Copy(dest, src)
			src.Close()
			dest.Close()
			if err != nil {
				log.Printf("writing %s: %v", destPath, err)
				continue
			}

			saved = append(saved, destPath)
		}
	}

	return saved
}

package site

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"vendhansite/constants"
	"vendhansite/database"
	"vendhansite/mailer"
)

func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	username, password := readCredentials(r)
	if username == "" || password == "" {
		jsonError(w, http.StatusBadRequest, "Username and password are required.")
		return
	}

	var admin database.AdminUser
	result := s.db.Where(&database.AdminUser{Username: username}).First(&admin)
	if result.Error != nil {
		jsonError(w, http.StatusUnauthorized, "Invalid username or password.")
		return
	}

	if err := bcrypt.CompareHashAndPassword(admin.PasswordHash, []byte(password)); err != nil {
		jsonError(w, http.StatusUnauthorized, "Invalid username or password.")
		return
	}

	// Generate a new token for the session
	token, err := generateAuthToken()
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "Error signing in.")
		return
	}

	admin.SessionToken = token
	s.db.Save(&admin)

	http.SetCookie(w, &http.Cookie{
		Name:     string(AuthenticatedUserTokenCookieName),
		Value:    token,
		Path:     "/",
		HttpOnly: true,
	})

	jsonMessage(w, http.StatusOK, "Login successful.")
}

// readCredentials accepts either a JSON body or a classic login form.
func readCredentials(r *http.Request) (username, password string) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return "", ""
		}
		return req.Username, req.Password
	}
	return r.FormValue("username"), r.FormValue("password")
}

func (s *Server) handleAdminLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:   string(AuthenticatedUserTokenCookieName),
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
	jsonMessage(w, http.StatusOK, "Logged out.")
}

func (s *Server) handleDashboardData(w http.ResponseWriter, r *http.Request) {
	counts := map[string]int64{}

	type countQuery struct {
		key   string
		model any
		where []any
	}
	queries := []countQuery{
		{"applications", &database.Application{}, nil},
		{"messages", &database.ContactMessage{}, nil},
		{"admin_users", &database.AdminUser{}, nil},
		{"active_job_openings", &database.JobOpening{}, []any{"active = ?", true}},
		{"active_announcements", &database.Announcement{}, []any{"active = ?", true}},
		{"page_views", &database.EventLog{}, []any{"kind = ?", "page_view"}},
	}

	for _, q := range queries {
		var n int64
		tx := s.db.Model(q.model)
		if q.where != nil {
			tx = tx.Where(q.where[0], q.where[1:]...)
		}
		if err := tx.Count(&n).Error; err != nil {
			log.Printf("dashboard count %s: %v", q.key, err)
			jsonError(w, http.StatusInternalServerError, "Error computing dashboard data.")
			return
		}
		counts[q.key] = n
	}

	writeJSON(w, http.StatusOK, counts)
}

func (s *Server) handleListApplications(w http.ResponseWriter, r *http.Request) {
	var apps []database.Application
	result := s.db.Order("submission_date DESC").Limit(constants.MAX_ITEMS_TO_SHOW).Find(&apps)
	if result.Error != nil {
		jsonError(w, http.StatusInternalServerError, "Error fetching applications.")
		return
	}
	writeJSON(w, http.StatusOK, apps)
}

func (s *Server) handleGetApplication(w http.ResponseWriter, r *http.Request) {
	var app database.Application
	result := s.db.Preload("Replies").First(&app, chi.URLParam(r, "id"))
	if result.Error != nil {
		jsonError(w, http.StatusNotFound, "Application not found.")
		return
	}
	writeJSON(w, http.StatusOK, app)
}

func (s *Server) handleUpdateApplicationStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID     uint   `json:"id"`
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == 0 {
		jsonError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	switch req.Status {
	case constants.STATUS_NEW, constants.STATUS_REVIEWED, constants.STATUS_REPLIED:
	default:
		jsonError(w, http.StatusBadRequest, "Unknown status: "+req.Status)
		return
	}

	var app database.Application
	if err := s.db.First(&app, req.ID).Error; err != nil {
		jsonError(w, http.StatusNotFound, "Application not found.")
		return
	}

	app.Status = req.Status
	if err := s.db.Save(&app).Error; err != nil {
		jsonError(w, http.StatusInternalServerError, "Error updating status.")
		return
	}

	s.logAdminAction("application/update-status", map[string]any{"id": req.ID, "status": req.Status})
	jsonMessage(w, http.StatusOK, "Status updated.")
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	var msgs []database.ContactMessage
	result := s.db.Order("submission_date DESC").Limit(constants.MAX_ITEMS_TO_SHOW).Find(&msgs)
	if result.Error != nil {
		jsonError(w, http.StatusInternalServerError, "Error fetching messages.")
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

func (s *Server) handleGetMessage(w http.ResponseWriter, r *http.Request) {
	var msg database.ContactMessage
	result := s.db.Preload("Replies").First(&msg, chi.URLParam(r, "id"))
	if result.Error != nil {
		jsonError(w, http.StatusNotFound, "Message not found.")
		return
	}
	writeJSON(w, http.StatusOK, msg)
}

func (s *Server) handleReply(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type    string `json:"type"`
		ID      uint   `json:"id"`
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == 0 || req.Content == "" {
		jsonError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	author := getSignedInUserOrNil(r)
	if author == nil {
		jsonError(w, http.StatusUnauthorized, "Authentication required.")
		return
	}

	reply := database.AdminReply{
		ReplyContent: req.Content,
		ReplyDate:    time.Now(),
		AuthorID:     author.ID,
	}

	var recipient, regarding string

	switch req.Type {
	case "application":
		var app database.Application
		if err := s.db.First(&app, req.ID).Error; err != nil {
			jsonError(w, http.StatusNotFound, "Application not found.")
			return
		}
		reply.ApplicationID = &app.ID
		recipient = app.Email
		regarding = "Your application for " + app.Position

		err := s.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&reply).Error; err != nil {
				return err
			}
			return tx.Model(&app).Update("status", constants.STATUS_REPLIED).Error
		})
		if err != nil {
			jsonError(w, http.StatusInternalServerError, "Error saving reply.")
			return
		}

	case "message":
		var msg database.ContactMessage
		if err := s.db.First(&msg, req.ID).Error; err != nil {
			jsonError(w, http.StatusNotFound, "Message not found.")
			return
		}
		reply.MessageID = &msg.ID
		recipient = msg.Email
		regarding = "Your message to " + constants.APP_NAME

		err := s.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&reply).Error; err != nil {
				return err
			}
			return tx.Model(&msg).Update("status", constants.STATUS_REPLIED).Error
		})
		if err != nil {
			jsonError(w, http.StatusInternalServerError, "Error saving reply.")
			return
		}

	default:
		jsonError(w, http.StatusNotFound, "Unknown reply target type: "+req.Type)
		return
	}

	// The reply is committed at this point. A failed send leaves the reply
	// recorded with the submitter unnotified; there is no retry.
	mailer.LogSendFailure("admin reply", s.mail.SendReply(recipient, regarding, req.Content))

	s.logAdminAction("reply", map[string]any{"type": req.Type, "id": req.ID, "author": author.Username})
	jsonMessage(w, http.StatusCreated, "Reply sent.")
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	itemType := chi.URLParam(r, "type")
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid id.")
		return
	}

	switch itemType {
	case "application":
		var app database.Application
		if err := s.db.First(&app, id).Error; err != nil {
			jsonError(w, http.StatusNotFound, "Application not found.")
			return
		}

		err := s.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("application_id = ?", app.ID).Delete(&database.AdminReply{}).Error; err != nil {
				return err
			}
			return tx.Delete(&app).Error
		})
		if err != nil {
			jsonError(w, http.StatusInternalServerError, "Error deleting application.")
			return
		}

		if app.UploadFolder != "" {
			dir := filepath.Join(s.cfg.UploadRoot, app.UploadFolder)
			if err := os.RemoveAll(dir); err != nil {
				log.Printf("removing upload folder %s: %v", dir, err)
			}
		}

	case "message":
		var msg database.ContactMessage
		if err := s.db.First(&msg, id).Error; err != nil {
			jsonError(w, http.StatusNotFound, "Message not found.")
			return
		}

		err := s.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("message_id = ?", msg.ID).Delete(&database.AdminReply{}).Error; err != nil {
				return err
			}
			return tx.Delete(&msg).Error
		})
		if err != nil {
			jsonError(w, http.StatusInternalServerError, "Error deleting message.")
			return
		}

	default:
		jsonError(w, http.StatusNotFound, "Unknown item type: "+itemType)
		return
	}

	s.logAdminAction("item/delete", map[string]any{"type": itemType, "id": id})
	jsonMessage(w, http.StatusOK, "Deleted.")
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	folder := chi.URLParam(r, "folder")
	filename := chi.URLParam(r, "filename")

	path := filepath.Join(s.cfg.UploadRoot, folder, filename)

	// keep the resolved path inside the upload root
	root, err := filepath.Abs(s.cfg.UploadRoot)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "Error resolving path.")
		return
	}
	abs, err := filepath.Abs(path)
	if err != nil || !strings.HasPrefix(abs, root+string(filepath.Separator)) {
		jsonError(w, http.StatusBadRequest, "Invalid file path.")
		return
	}

	if _, err := os.Stat(abs); errors.Is(err, os.ErrNotExist) {
		jsonError(w, http.StatusNotFound, "File not found.")
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	http.ServeFile(w, r, abs)
}

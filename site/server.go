package site

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"vendhansite/chatbot"
	"vendhansite/config"
	"vendhansite/database"
	"vendhansite/otp"
)

// Sender is the slice of the mailer the handlers need. *mailer.Mailer
// satisfies it.
type Sender interface {
	Configured() bool
	SendOTP(email, code string) error
	SendContactNotification(cm *database.ContactMessage) error
	SendApplicationNotification(app *database.Application, attachmentPaths []string) error
	SendReply(toEmail, regarding, replyContent string) error
}

// Server bundles the collaborators every handler needs. Everything is
// injected at construction, nothing is package-global.
type Server struct {
	db   *gorm.DB
	cfg  *config.Config
	mail Sender
	otp  *otp.Service
	bot  *chatbot.Bot
}

func NewServer(db *gorm.DB, cfg *config.Config, mail Sender, otpSvc *otp.Service, bot *chatbot.Bot) *Server {
	return &Server{
		db:   db,
		cfg:  cfg,
		mail: mail,
		otp:  otpSvc,
		bot:  bot,
	}
}

func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(s.TryPutUserInContextMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.With(s.PageViewMiddleware).Group(func(r chi.Router) {
			r.Get("/announcements", s.handleAnnouncements)
			r.Get("/job-openings", s.handleJobOpenings)
			r.Get("/live-updates", s.handleLiveUpdates)
		})

		r.Post("/send-otp", s.handleSendOTP)
		r.Post("/verify-otp", s.handleVerifyOTP)
		r.Post("/contact", s.handleContact)
		r.Post("/detailed-apply", s.handleDetailedApply)
		r.Post("/chatbot", s.handleChatbot)
		r.Post("/chat", s.handleChatbot)

		r.Post("/admin/login", s.handleAdminLogin)
		r.Post("/admin/logout", s.handleAdminLogout)

		r.Group(func(r chi.Router) {
			r.Use(s.RequireAdminMiddleware)

			r.Get("/dashboard-data", s.handleDashboardData)
			r.Get("/applications", s.handleListApplications)
			r.Get("/application/{id}", s.handleGetApplication)
			r.Post("/application/update-status", s.handleUpdateApplicationStatus)
			r.Get("/messages", s.handleListMessages)
			r.Get("/message/{id}", s.handleGetMessage)
			r.Post("/reply", s.handleReply)

			r.Route("/generic/{model}", func(r chi.Router) {
				r.Get("/", s.handleGenericList)
				r.Post("/", s.handleGenericCreate)
				r.Put("/{id}", s.handleGenericUpdate)
				r.Delete("/{id}", s.handleGenericDelete)
			})

			r.Delete("/item/delete/{type}/{id}", s.handleDeleteItem)
			r.Get("/download/{folder}/{filename}", s.handleDownload)
		})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("writing JSON response: %v", err)
	}
}

func jsonMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

func jsonError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// logAdminAction appends an audit row. Best effort: a failed insert is
// logged but never fails the request that triggered it.
func (s *Server) logAdminAction(action string, detail map[string]any) {
	payload, err := json.Marshal(detail)
	if err != nil {
		payload = []byte("{}")
	}
	result := s.db.Create(&database.EventLog{
		Kind:   "admin_action",
		Path:   action,
		Detail: datatypes.JSON(payload),
	})
	if result.Error != nil {
		log.Printf("event log insert failed: %v", result.Error)
	}
}

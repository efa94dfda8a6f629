package site

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"vendhansite/constants"
	"vendhansite/database"
)

type announcementView struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	BodyHTML  string    `json:"body_html"`
	CreatedAt time.Time `json:"created_at"`
}

func renderMarkdown(src string) string {
	extensions := parser.CommonExtensions | parser.AutoHeadingIDs
	p := parser.NewWithExtensions(extensions)
	doc := p.Parse([]byte(src))

	htmlFlags := html.CommonFlags | html.HrefTargetBlank
	renderer := html.NewRenderer(html.RendererOptions{Flags: htmlFlags})

	return string(markdown.Render(doc, renderer))
}

func (s *Server) activeAnnouncements() ([]announcementView, error) {
	var items []database.Announcement
	result := s.db.Where("active = ?", true).
		Order("created_at DESC").
		Limit(constants.MAX_ITEMS_TO_SHOW).
		Find(&items)
	if result.Error != nil {
		return nil, result.Error
	}

	views := make([]announcementView, 0, len(items))
	for _, a := range items {
		views = append(views, announcementView{
			ID:        a.ID,
			Title:     a.Title,
			BodyHTML:  renderMarkdown(a.Body),
			CreatedAt: a.CreatedAt,
		})
	}
	return views, nil
}

func (s *Server) activeJobOpenings() ([]database.JobOpening, error) {
	var items []database.JobOpening
	result := s.db.Where("active = ?", true).
		Order("created_at DESC").
		Limit(constants.MAX_ITEMS_TO_SHOW).
		Find(&items)
	return items, result.Error
}

func (s *Server) handleAnnouncements(w http.ResponseWriter, r *http.Request) {
	views, err := s.activeAnnouncements()
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "Error fetching announcements.")
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleJobOpenings(w http.ResponseWriter, r *http.Request) {
	items, err := s.activeJobOpenings()
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "Error fetching job openings.")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// handleLiveUpdates feeds the homepage ticker: latest announcements and
// open positions in one payload.
func (s *Server) handleLiveUpdates(w http.ResponseWriter, r *http.Request) {
	announcements, err := s.activeAnnouncements()
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "Error fetching updates.")
		return
	}
	openings, err := s.activeJobOpenings()
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "Error fetching updates.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"announcements": announcements,
		"job_openings":  openings,
	})
}

func (s *Server) handleChatbot(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusOK, map[string]string{"response": "I need a message to respond to!"})
		return
	}

	reply := s.bot.Reply(r.Context(), req.Message)
	writeJSON(w, http.StatusOK, map[string]string{"response": reply})
}

package site

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"vendhansite/database"
)

// The generic CRUD surface covers a closed set of simple content types.
// Each entry is fully typed; there is no reflection and no dispatch on
// arbitrary model names. Unknown names are rejected with 404 before any
// database access.
type genericHandler struct {
	list   func(db *gorm.DB) (any, error)
	create func(db *gorm.DB, body io.Reader) (any, error)
	update func(db *gorm.DB, id uint, body io.Reader) (any, error)
	remove func(db *gorm.DB, id uint) error
}

type jobOpeningInput struct {
	Title       string `json:"title"`
	Location    string `json:"location"`
	Description string `json:"description"`
	Active      *bool  `json:"active"`
}

type announcementInput struct {
	Title  string `json:"title"`
	Body   string `json:"body"`
	Active *bool  `json:"active"`
}

var genericHandlers = map[string]genericHandler{
	"job-opening": {
		list: func(db *gorm.DB) (any, error) {
			var items []database.JobOpening
			err := db.Order("created_at DESC").Find(&items).Error
			return items, err
		},
		create: func(db *gorm.DB, body io.Reader) (any, error) {
			var in jobOpeningInput
			if err := json.NewDecoder(body).Decode(&in); err != nil {
				return nil, errBadInput
			}
			if in.Title == "" {
				return nil, errBadInput
			}
			item := database.JobOpening{
				Title:       in.Title,
				Location:    in.Location,
				Description: in.Description,
				Active:      in.Active == nil || *in.Active,
			}
			return item, db.Create(&item).Error
		},
		update: func(db *gorm.DB, id uint, body io.Reader) (any, error) {
			var item database.JobOpening
			if err := db.First(&item, id).Error; err != nil {
				return nil, err
			}
			var in jobOpeningInput
			if err := json.NewDecoder(body).Decode(&in); err != nil {
				return nil, errBadInput
			}
			// id and timestamps come from the loaded record, never the caller
			item.Title = in.Title
			item.Location = in.Location
			item.Description = in.Description
			if in.Active != nil {
				item.Active = *in.Active
			}
			return item, db.Save(&item).Error
		},
		remove: func(db *gorm.DB, id uint) error {
			var item database.JobOpening
			if err := db.First(&item, id).Error; err != nil {
				return err
			}
			return db.Delete(&item).Error
		},
	},
	"announcement": {
		list: func(db *gorm.DB) (any, error) {
			var items []database.Announcement
			err := db.Order("created_at DESC").Find(&items).Error
			return items, err
		},
		create: func(db *gorm.DB, body io.Reader) (any, error) {
			var in announcementInput
			if err := json.NewDecoder(body).Decode(&in); err != nil {
				return nil, errBadInput
			}
			if in.Title == "" {
				return nil, errBadInput
			}
			item := database.Announcement{
				Title:  in.Title,
				Body:   in.Body,
				Active: in.Active == nil || *in.Active,
			}
			return item, db.Create(&item).Error
		},
		update: func(db *gorm.DB, id uint, body io.Reader) (any, error) {
			var item database.Announcement
			if err := db.First(&item, id).Error; err != nil {
				return nil, err
			}
			var in announcementInput
			if err := json.NewDecoder(body).Decode(&in); err != nil {
				return nil, errBadInput
			}
			item.Title = in.Title
			item.Body = in.Body
			if in.Active != nil {
				item.Active = *in.Active
			}
			return item, db.Save(&item).Error
		},
		remove: func(db *gorm.DB, id uint) error {
			var item database.Announcement
			if err := db.First(&item, id).Error; err != nil {
				return err
			}
			return db.Delete(&item).Error
		},
	},
}

var errBadInput = errors.New("invalid request body")

func (s *Server) genericHandlerOr404(w http.ResponseWriter, r *http.Request) (genericHandler, bool) {
	model := chi.URLParam(r, "model")
	h, ok := genericHandlers[model]
	if !ok {
		jsonError(w, http.StatusNotFound, "Unknown model: "+model)
	}
	return h, ok
}

func genericID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid id.")
		return 0, false
	}
	return uint(id), true
}

func (s *Server) handleGenericList(w http.ResponseWriter, r *http.Request) {
	h, ok := s.genericHandlerOr404(w, r)
	if !ok {
		return
	}
	items, err := h.list(s.db)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "Error fetching items.")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleGenericCreate(w http.ResponseWriter, r *http.Request) {
	h, ok := s.genericHandlerOr404(w, r)
	if !ok {
		return
	}
	item, err := h.create(s.db, r.Body)
	if errors.Is(err, errBadInput) {
		jsonError(w, http.StatusBadRequest, errBadInput.Error())
		return
	}
	if err != nil {
		// this path intentionally echoes the raw error string
		jsonError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.logAdminAction("generic/create", map[string]any{"model": chi.URLParam(r, "model")})
	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) handleGenericUpdate(w http.ResponseWriter, r *http.Request) {
	h, ok := s.genericHandlerOr404(w, r)
	if !ok {
		return
	}
	id, ok := genericID(w, r)
	if !ok {
		return
	}
	item, err := h.update(s.db, id, r.Body)
	if errors.Is(err, errBadInput) {
		jsonError(w, http.StatusBadRequest, errBadInput.Error())
		return
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		jsonError(w, http.StatusNotFound, "Item not found.")
		return
	}
	if err != nil {
		jsonError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.logAdminAction("generic/update", map[string]any{"model": chi.URLParam(r, "model"), "id": id})
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleGenericDelete(w http.ResponseWriter, r *http.Request) {
	h, ok := s.genericHandlerOr404(w, r)
	if !ok {
		return
	}
	id, ok := genericID(w, r)
	if !ok {
		return
	}
	err := h.remove(s.db, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		jsonError(w, http.StatusNotFound, "Item not found.")
		return
	}
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "Error deleting item.")
		return
	}
	s.logAdminAction("generic/delete", map[string]any{"model": chi.URLParam(r, "model"), "id": id})
	jsonMessage(w, http.StatusOK, "Deleted.")
}

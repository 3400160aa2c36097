package api

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/lehmann314159/tangocho/internal/models"
	"github.com/lehmann314159/tangocho/internal/services"
)

// Handler contains all HTTP handlers
type Handler struct {
	svc   *services.ServiceManager
	daily services.DailyOptions
}

// NewHandler creates a new handler. daily holds the goals used when a
// daily bundle request carries no body.
func NewHandler(svc *services.ServiceManager, daily services.DailyOptions) *Handler {
	return &Handler{
		svc:   svc,
		daily: daily,
	}
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[api] failed to encode response: %v", err)
	}
}

// writeError writes an error response
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// writeInternal logs err and writes a 500 response with message
func writeInternal(w http.ResponseWriter, message string, err error) {
	log.Printf("[api] %s: %v", message, err)
	writeError(w, http.StatusInternalServerError, message)
}

// decodeOptional decodes the request body into dest. An empty body leaves
// dest untouched.
func decodeOptional(r *http.Request, dest any) error {
	err := json.NewDecoder(r.Body).Decode(dest)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListModules handles GET /api/v1/modules
func (h *Handler) ListModules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Catalog.Modules())
}

// GetStats handles GET /api/v1/stats
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Catalog.LoadAllStats(r.Context())
	if err != nil {
		writeInternal(w, "failed to load stats", err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// RefreshStats handles POST /api/v1/stats/refresh
func (h *Handler) RefreshStats(w http.ResponseWriter, r *http.Request) {
	h.svc.Catalog.Invalidate()
	h.GetStats(w, r)
}

// GetOverview handles GET /api/v1/progress/overview
func (h *Handler) GetOverview(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Progress.Overview(r.Context()))
}

// GetRecent handles GET /api/v1/progress/recent
func (h *Handler) GetRecent(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Progress.Recent(r.Context()))
}

// GetFavorites handles GET /api/v1/progress/favorites
func (h *Handler) GetFavorites(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Progress.Favorites(r.Context()))
}

// WordResponse is a dataset word together with its progress
type WordResponse struct {
	Word     *models.WordRecord  `json:"word"`
	Progress models.WordProgress `json:"progress"`
}

// GetWord handles GET /api/v1/words/{module}/{id}
func (h *Handler) GetWord(w http.ResponseWriter, r *http.Request) {
	ref := wordRef(r)

	word, err := h.svc.Catalog.FindWord(r.Context(), ref)
	if err != nil {
		writeInternal(w, "failed to get word", err)
		return
	}
	if word == nil {
		writeError(w, http.StatusNotFound, "word not found")
		return
	}

	writeJSON(w, http.StatusOK, WordResponse{
		Word:     word,
		Progress: h.svc.Progress.WordProgress(r.Context(), ref),
	})
}

// StudyWord handles POST /api/v1/words/{module}/{id}/study
func (h *Handler) StudyWord(w http.ResponseWriter, r *http.Request) {
	ref := wordRef(r)

	h.svc.Progress.StudyWord(r.Context(), ref)
	writeJSON(w, http.StatusOK, h.svc.Progress.WordProgress(r.Context(), ref))
}

// ToggleFavorite handles POST /api/v1/words/{module}/{id}/favorite
func (h *Handler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	ref := wordRef(r)

	favorite := h.svc.Progress.ToggleFavorite(r.Context(), ref)
	writeJSON(w, http.StatusOK, map[string]bool{"favorite": favorite})
}

// ClearData handles DELETE /api/v1/data
func (h *Handler) ClearData(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ClearAllData(r.Context()); err != nil {
		writeInternal(w, "failed to clear data", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

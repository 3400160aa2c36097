package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ListTasks handles GET /api/v1/tasks
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.svc.Tasks.AllTasks(r.Context())
	if err != nil {
		writeInternal(w, "failed to list tasks", err)
		return
	}

	writeJSON(w, http.StatusOK, tasks)
}

// TodayTasks handles GET /api/v1/tasks/today
func (h *Handler) TodayTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.svc.Tasks.TodayTasks(r.Context())
	if err != nil {
		writeInternal(w, "failed to list today's tasks", err)
		return
	}

	writeJSON(w, http.StatusOK, tasks)
}

// ReviewTasks handles GET /api/v1/tasks/review
func (h *Handler) ReviewTasks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Review.GenerateReviewTasks(r.Context()))
}

// CreateDailyTask handles POST /api/v1/tasks/daily. The bundle is generated
// from the request goals, or the configured ones, and saved.
func (h *Handler) CreateDailyTask(w http.ResponseWriter, r *http.Request) {
	opts := h.daily
	if err := decodeOptional(r, &opts); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if opts.NewGoal < 0 {
		writeError(w, http.StatusBadRequest, "newGoal must not be negative")
		return
	}

	task, err := h.svc.Tasks.GenerateDailyTasks(r.Context(), opts)
	if err != nil {
		writeInternal(w, "failed to generate daily tasks", err)
		return
	}

	saved, err := h.svc.Tasks.SaveDailyTask(r.Context(), task)
	if err != nil {
		writeInternal(w, "failed to save daily tasks", err)
		return
	}

	writeJSON(w, http.StatusCreated, saved)
}

// CompleteTask handles POST /api/v1/tasks/{id}/complete
func (h *Handler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	ok, err := h.svc.Tasks.CompleteTask(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeInternal(w, "failed to complete task", err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"completed": true})
}

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/lehmann314159/tangocho/internal/models"
	"github.com/lehmann314159/tangocho/internal/services"
)

// GeneratePlan handles POST /api/v1/plans/generate. The plan is returned but
// not saved.
func (h *Handler) GeneratePlan(w http.ResponseWriter, r *http.Request) {
	var opts models.PlanOptions
	if err := decodeOptional(r, &opts); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	plan, err := h.svc.Planner.GenerateStudyPlan(r.Context(), opts)
	if err != nil {
		if errors.Is(err, services.ErrInvalidPlanOptions) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeInternal(w, "failed to generate study plan", err)
		return
	}

	writeJSON(w, http.StatusOK, plan)
}

// ListPlans handles GET /api/v1/plans
func (h *Handler) ListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.svc.Plans.AllPlans(r.Context())
	if err != nil {
		writeInternal(w, "failed to list plans", err)
		return
	}

	writeJSON(w, http.StatusOK, plans)
}

// SavePlan handles POST /api/v1/plans
func (h *Handler) SavePlan(w http.ResponseWriter, r *http.Request) {
	var plan models.StudyPlan
	if err := json.NewDecoder(r.Body).Decode(&plan); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	saved, err := h.svc.Plans.SavePlan(r.Context(), plan)
	if err != nil {
		writeInternal(w, "failed to save plan", err)
		return
	}

	writeJSON(w, http.StatusCreated, saved)
}

// ActivePlan handles GET /api/v1/plans/active
func (h *Handler) ActivePlan(w http.ResponseWriter, r *http.Request) {
	plan, err := h.svc.Plans.ActivePlan(r.Context())
	if err != nil {
		writeInternal(w, "failed to get active plan", err)
		return
	}
	if plan == nil {
		writeError(w, http.StatusNotFound, "no active plan")
		return
	}

	writeJSON(w, http.StatusOK, plan)
}

// GetPlan handles GET /api/v1/plans/{id}
func (h *Handler) GetPlan(w http.ResponseWriter, r *http.Request) {
	plan, ok := h.lookupPlan(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, plan)
}

// GetPlanProgress handles GET /api/v1/plans/{id}/progress
func (h *Handler) GetPlanProgress(w http.ResponseWriter, r *http.Request) {
	plan, ok := h.lookupPlan(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, h.svc.Plans.Progress(plan))
}

// UpdatePlanStatus handles PUT /api/v1/plans/{id}/status
func (h *Handler) UpdatePlanStatus(w http.ResponseWriter, r *http.Request) {
	var req models.UpdatePlanStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ok, err := h.svc.Plans.UpdatePlanStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		if errors.Is(err, services.ErrInvalidPlanStatus) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeInternal(w, "failed to update plan status", err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "plan not found")
		return
	}

	h.GetPlan(w, r)
}

// UpdatePlanDay handles PUT /api/v1/plans/{id}/days/{day}
func (h *Handler) UpdatePlanDay(w http.ResponseWriter, r *http.Request) {
	day, err := strconv.Atoi(chi.URLParam(r, "day"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid day")
		return
	}

	var req models.UpdatePlanDayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ok, err := h.svc.Plans.UpdatePlanProgress(r.Context(), chi.URLParam(r, "id"), day, req.Completed, req.CompletionRate)
	if err != nil {
		writeInternal(w, "failed to update plan progress", err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "plan day not found")
		return
	}

	h.GetPlan(w, r)
}

// DeletePlan handles DELETE /api/v1/plans/{id}
func (h *Handler) DeletePlan(w http.ResponseWriter, r *http.Request) {
	ok, err := h.svc.Plans.DeletePlan(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeInternal(w, "failed to delete plan", err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "plan not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// lookupPlan loads the {id} plan, writing the error response on failure
func (h *Handler) lookupPlan(w http.ResponseWriter, r *http.Request) (*models.StudyPlan, bool) {
	plan, err := h.svc.Plans.GetPlan(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeInternal(w, "failed to get plan", err)
		return nil, false
	}
	if plan == nil {
		writeError(w, http.StatusNotFound, "plan not found")
		return nil, false
	}
	return plan, true
}

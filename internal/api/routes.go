package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter creates and configures the Chi router
func NewRouter(h *Handler, apiToken string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(Recoverer)
	r.Use(Logger)
	r.Use(CORS)

	// Health check endpoint
	r.Get("/health", h.HealthCheck)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(JSONContentType)
		r.Use(BearerAuth(apiToken))

		r.Get("/modules", h.ListModules)
		r.Get("/stats", h.GetStats)
		r.Post("/stats/refresh", h.RefreshStats)
		r.Delete("/data", h.ClearData)

		r.Route("/progress", func(r chi.Router) {
			r.Get("/overview", h.GetOverview)
			r.Get("/recent", h.GetRecent)
			r.Get("/favorites", h.GetFavorites)
		})

		r.Route("/words/{module}/{id}", func(r chi.Router) {
			r.Use(h.WordCtx)
			r.Get("/", h.GetWord)
			r.Post("/study", h.StudyWord)
			r.Post("/favorite", h.ToggleFavorite)
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", h.ListTasks)

			// Special routes before /{id} to avoid conflicts
			r.Get("/today", h.TodayTasks)
			r.Get("/review", h.ReviewTasks)
			r.Post("/daily", h.CreateDailyTask)

			r.Post("/{id}/complete", h.CompleteTask)
		})

		r.Route("/plans", func(r chi.Router) {
			r.Get("/", h.ListPlans)
			r.Post("/", h.SavePlan)

			r.Post("/generate", h.GeneratePlan)
			r.Get("/active", h.ActivePlan)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetPlan)
				r.Delete("/", h.DeletePlan)
				r.Get("/progress", h.GetPlanProgress)
				r.Put("/status", h.UpdatePlanStatus)
				r.Put("/days/{day}", h.UpdatePlanDay)
			})
		})
	})

	return r
}

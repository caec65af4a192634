package students

import (
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts student routes (typically under "/api/students/me").
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/open-events", h.ServeOpenEvents)
		pr.Get("/events", h.ServeMyEvents)
		pr.Get("/events/{id}", h.ServeRegistration)
		pr.Post("/events/{id}/register", h.HandleRegister)
	})

	return r
}

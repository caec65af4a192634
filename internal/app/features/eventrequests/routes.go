package eventrequests

import (
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts event request routes (typically under "/api/event-requests").
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Post("/", h.HandleSubmit)
		pr.Get("/mine", h.ServeMine)

		// Institution review queue (?status=pending|approved|rejected|completed)
		pr.Get("/", h.ServeList)
		pr.Get("/{id}", h.ServeView)
		pr.Post("/{id}/review", h.HandleReview)
	})

	return r
}

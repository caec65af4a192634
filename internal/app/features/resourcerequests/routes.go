package resourcerequests

import (
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts top-up routes (typically under "/api/resource-requests").
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Post("/", h.HandleSubmit)
		pr.Get("/mine", h.ServeMine)
		pr.Get("/", h.ServeList)
		pr.Post("/{id}/respond", h.HandleRespond)
	})

	return r
}

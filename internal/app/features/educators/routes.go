package educators

import (
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts educator routes (typically under "/api/educators").
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		// Directory for institutions choosing whom to assign.
		pr.Get("/", h.ServeDirectory)

		pr.Get("/me/pending", h.ServePending)
		pr.Get("/me/events", h.ServeAssigned)
		pr.Get("/me/completed", h.ServeCompleted)
		pr.Post("/me/events/{id}/respond", h.HandleRespond)
	})

	return r
}

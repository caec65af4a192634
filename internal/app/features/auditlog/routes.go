// internal/app/features/auditlog/routes.go
package auditlog

import (
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts audit trail routes (typically under "/api/audit").
//
// Any signed-in user may page through their own actions; the trail of an
// event is limited to the institution that created it.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/me", h.ServeMine)
		pr.Get("/events/{id}", h.ServeEvent)
	})

	return r
}

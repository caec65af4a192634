// internal/app/features/resources/routes.go
package resources

import (
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the inventory under whatever base path the caller
// chooses (typically "/api/resources"). Role checks live in the workflow
// gate; the router only requires a signed-in caller.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/", h.ServeList)
		pr.Post("/", h.HandleCreate)

		// Per-event allocations across every active event.
		pr.Get("/allocated", h.ServeAllocated)

		pr.Get("/{id}", h.ServeView)
		pr.Patch("/{id}", h.HandleUpdate)
		pr.Delete("/{id}", h.HandleDelete)
	})

	return r
}

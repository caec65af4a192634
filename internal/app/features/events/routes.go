// internal/app/features/events/routes.go
package events

import (
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts event routes (typically under "/api/events").
//
// Example from bootstrap:
//
//	h := events.NewHandler(svc, errLog, logger)
//	r.Mount("/api/events", events.Routes(h, sessionMgr))
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		// Institution: own events, create, edit, delete.
		pr.Get("/", h.ServeList)
		pr.Post("/", h.HandleCreate)
		pr.Get("/{id}", h.ServeView)
		pr.Patch("/{id}", h.HandleUpdate)
		pr.Delete("/{id}", h.HandleDelete)

		// Lifecycle
		pr.Post("/{id}/start", h.HandleStart)
		pr.Post("/{id}/cancel", h.HandleCancel)
		pr.Post("/{id}/complete", h.HandleComplete)

		// Assignment
		pr.Put("/{id}/resources", h.HandleAssignResources)
		pr.Put("/{id}/educator", h.HandleAssignEducator)

		// Registrations
		pr.Get("/{id}/registrations", h.ServeRoster)
		pr.Post("/{id}/registrations/{studentID}/approve", h.HandleApprove)
		pr.Post("/{id}/registrations/{studentID}/reject", h.HandleReject)

		// Attendance & feedback
		pr.Get("/{id}/attendance", h.ServeAttendance)
		pr.Post("/{id}/attendance", h.HandleMarkAttendance)
		pr.Get("/{id}/feedback", h.ServeFeedback)
	})

	return r
}

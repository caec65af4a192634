package events

import (
	"net/http"

	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/features/shared"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/respond"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/timeouts"
)

// ServeRoster handles GET /api/events/{id}/registrations.
func (h *Handler) ServeRoster(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r, h.ErrLog)
	if !ok {
		return
	}
	id, ok := shared.PathID(w, r, h.ErrLog, "id")
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "roster")
	defer cancel()

	roster, err := h.Svc.Roster(ctx, actor, id)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	respond.OK(w, roster)
}

// HandleApprove handles POST /api/events/{id}/registrations/{studentID}/approve.
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, true)
}

// HandleReject handles POST /api/events/{id}/registrations/{studentID}/reject.
func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, false)
}

func (h *Handler) review(w http.ResponseWriter, r *http.Request, approve bool) {
	actor, ok := shared.Actor(w, r, h.ErrLog)
	if !ok {
		return
	}
	id, ok := shared.PathID(w, r, h.ErrLog, "id")
	if !ok {
		return
	}
	studentID, ok := shared.PathID(w, r, h.ErrLog, "studentID")
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "review registration")
	defer cancel()

	review := h.Svc.RejectRegistration
	if approve {
		review = h.Svc.ApproveRegistration
	}
	view, err := review(ctx, actor, id, studentID)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	respond.OK(w, view)
}

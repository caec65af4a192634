package educators

import (
	"context"
	"net/http"

	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/features/shared"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/authz"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/inputval"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/respond"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/timeouts"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/workflow"
)

// ServeDirectory handles GET /api/educators.
func (h *Handler) ServeDirectory(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r, h.ErrLog)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "list educators")
	defer cancel()

	list, err := h.Svc.Educators(ctx, actor)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	respond.OK(w, list)
}

// ServePending handles GET /api/educators/me/pending.
func (h *Handler) ServePending(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "pending assignments", h.Svc.PendingAssignments)
}

// ServeAssigned handles GET /api/educators/me/events.
func (h *Handler) ServeAssigned(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "assigned events", h.Svc.AssignedEvents)
}

// ServeCompleted handles GET /api/educators/me/completed.
func (h *Handler) ServeCompleted(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "completed events", h.Svc.CompletedEvents)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, op string,
	fn func(context.Context, authz.Actor) ([]workflow.EventView, error)) {
	actor, ok := shared.Actor(w, r, h.ErrLog)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, op)
	defer cancel()

	list, err := fn(ctx, actor)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	respond.OK(w, list)
}

// The accepted/rejected check is the workflow's, so the message is the
// same for every client.
type respondInput struct {
	Response string `json:"response" validate:"required"`
}

// HandleRespond handles POST /api/educators/me/events/{id}/respond.
func (h *Handler) HandleRespond(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r, h.ErrLog)
	if !ok {
		return
	}
	id, ok := shared.PathID(w, r, h.ErrLog, "id")
	if !ok {
		return
	}
	var in respondInput
	if err := inputval.Decode(r, &in); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "respond assignment")
	defer cancel()

	view, err := h.Svc.RespondAssignment(ctx, actor, id, in.Response)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	respond.OK(w, view)
}

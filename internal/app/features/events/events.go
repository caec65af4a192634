package events

import (
	"context"
	"net/http"

	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/features/shared"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/authz"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/inputval"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/respond"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/timeouts"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/workflow"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/lifecycle"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Title, location and capacity are checked by the workflow so that an
// event created from a request can inherit them.
type createInput struct {
	Title           string                `json:"title" validate:"max=200"`
	Description     string                `json:"description" validate:"max=5000"`
	Date            string                `json:"date" validate:"required"`
	Location        string                `json:"location" validate:"max=300"`
	Capacity        int                   `json:"capacity"`
	EducatorID      string                `json:"educator_id" validate:"omitempty,objectid"`
	Resources       []shared.ResourceLine `json:"resources" validate:"dive"`
	SourceRequestID string                `json:"source_request_id" validate:"omitempty,objectid"`
}

// HandleCreate handles POST /api/events.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r, h.ErrLog)
	if !ok {
		return
	}
	var in createInput
	if err := inputval.Decode(r, &in); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	date, err := shared.Date("date", in.Date)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "create event")
	defer cancel()

	view, err := h.Svc.CreateEvent(ctx, actor, workflow.EventInput{
		Title:           in.Title,
		Description:     in.Description,
		Date:            date,
		Location:        in.Location,
		Capacity:        in.Capacity,
		EducatorID:      shared.OptionalID(in.EducatorID),
		Resources:       shared.Lines(in.Resources),
		SourceRequestID: shared.OptionalID(in.SourceRequestID),
	})
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	respond.Created(w, view)
}

// ServeList handles GET /api/events: the caller's own events.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r, h.ErrLog)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list events")
	defer cancel()

	list, err := h.Svc.InstitutionEvents(ctx, actor)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	respond.OK(w, list)
}

// ServeView handles GET /api/events/{id}.
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	h.eventAction(w, r, "get event", h.Svc.GetEvent)
}

type updateInput struct {
	Title       *string `json:"title" validate:"omitempty,max=200"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	Date        *string `json:"date"`
	Location    *string `json:"location" validate:"omitempty,max=300"`
	Capacity    *int    `json:"capacity"`
}

// HandleUpdate handles PATCH /api/events/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r, h.ErrLog)
	if !ok {
		return
	}
	id, ok := shared.PathID(w, r, h.ErrLog, "id")
	if !ok {
		return
	}
	var in updateInput
	if err := inputval.Decode(r, &in); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	patch := lifecycle.EventPatch{
		Title:       in.Title,
		Description: in.Description,
		Location:    in.Location,
		Capacity:    in.Capacity,
	}
	if in.Date != nil {
		d, err := shared.Date("date", *in.Date)
		if err != nil {
			h.ErrLog.Write(w, r, err)
			return
		}
		patch.Date = &d
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "update event")
	defer cancel()

	view, err := h.Svc.UpdateEvent(ctx, actor, id, patch)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	respond.OK(w, view)
}

// HandleDelete handles DELETE /api/events/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r, h.ErrLog)
	if !ok {
		return
	}
	id, ok := shared.PathID(w, r, h.ErrLog, "id")
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "delete event")
	defer cancel()

	if err := h.Svc.DeleteEvent(ctx, actor, id); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	respond.Message(w, "event deleted")
}

// HandleStart handles POST /api/events/{id}/start.
func (h *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	h.eventAction(w, r, "start event", h.Svc.StartEvent)
}

// HandleCancel handles POST /api/events/{id}/cancel.
func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	h.eventAction(w, r, "cancel event", h.Svc.CancelEvent)
}

// eventAction runs a body-less operation on the event named in the path.
func (h *Handler) eventAction(w http.ResponseWriter, r *http.Request, op string,
	fn func(context.Context, authz.Actor, primitive.ObjectID) (workflow.EventView, error)) {
	actor, ok := shared.Actor(w, r, h.ErrLog)
	if !ok {
		return
	}
	id, ok := shared.PathID(w, r, h.ErrLog, "id")
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, op)
	defer cancel()

	view, err := fn(ctx, actor, id)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	respond.OK(w, view)
}

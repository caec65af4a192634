package eventrequests

import (
	"net/http"

	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/features/shared"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/inputval"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/respond"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/timeouts"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/workflow"
)

type submitInput struct {
	Title         string                `json:"title" validate:"required,notblank,max=200"`
	Description   string                `json:"description" validate:"max=5000"`
	PreferredDate string                `json:"preferred_date" validate:"required"`
	Resources     []shared.ResourceLine `json:"requested_resources" validate:"dive"`
}

// HandleSubmit handles POST /api/event-requests.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r, h.ErrLog)
	if !ok {
		return
	}
	var in submitInput
	if err := inputval.Decode(r, &in); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	date, err := shared.Date("preferred_date", in.PreferredDate)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "submit event request")
	defer cancel()

	view, err := h.Svc.SubmitEventRequest(ctx, actor, workflow.EventRequestInput{
		Title:         in.Title,
		Description:   in.Description,
		PreferredDate: date,
		Resources:     shared.Lines(in.Resources),
	})
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	respond.Created(w, view)
}

// ServeMine handles GET /api/event-requests/mine.
func (h *Handler) ServeMine(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r, h.ErrLog)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "my event requests")
	defer cancel()

	list, err := h.Svc.MyEventRequests(ctx, actor)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	respond.OK(w, list)
}

// ServeList handles GET /api/event-requests?status=.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r, h.ErrLog)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "event requests")
	defer cancel()

	list, err := h.Svc.EventRequests(ctx, actor, r.URL.Query().Get("status"))
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	respond.OK(w, list)
}

// ServeView handles GET /api/event-requests/{id}.
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r, h.ErrLog)
	if !ok {
		return
	}
	id, ok := shared.PathID(w, r, h.ErrLog, "id")
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get event request")
	defer cancel()

	view, err := h.Svc.GetEventRequest(ctx, actor, id)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	respond.OK(w, view)
}

type reviewInput struct {
	Status           string `json:"status" validate:"required,oneof=approved rejected"`
	ApprovedEducator string `json:"approved_educator" validate:"omitempty,objectid"`
}

// HandleReview handles POST /api/event-requests/{id}/review.
func (h *Handler) HandleReview(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r, h.ErrLog)
	if !ok {
		return
	}
	id, ok := shared.PathID(w, r, h.ErrLog, "id")
	if !ok {
		return
	}
	var in reviewInput
	if err := inputval.Decode(r, &in); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "review event request")
	defer cancel()

	view, err := h.Svc.ReviewEventRequest(ctx, actor, id, in.Status, shared.OptionalID(in.ApprovedEducator))
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	respond.OK(w, view)
}

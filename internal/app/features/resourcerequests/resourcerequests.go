package resourcerequests

import (
	"net/http"

	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/features/shared"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/inputval"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/respond"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type submitInput struct {
	EventID   string                `json:"event_id" validate:"required,objectid"`
	Resources []shared.ResourceLine `json:"requested_resources" validate:"required,min=1,dive"`
}

// HandleSubmit handles POST /api/resource-requests.
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
	eventID, _ := primitive.ObjectIDFromHex(in.EventID)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "submit resource request")
	defer cancel()

	view, err := h.Svc.SubmitResourceRequest(ctx, actor, eventID, shared.Lines(in.Resources))
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	respond.Created(w, view)
}

// ServeMine handles GET /api/resource-requests/mine.
func (h *Handler) ServeMine(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r, h.ErrLog)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "my resource requests")
	defer cancel()

	list, err := h.Svc.MyResourceRequests(ctx, actor)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	respond.OK(w, list)
}

// ServeList handles GET /api/resource-requests?status=.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r, h.ErrLog)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "resource requests")
	defer cancel()

	list, err := h.Svc.ResourceRequests(ctx, actor, r.URL.Query().Get("status"))
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	respond.OK(w, list)
}

type respondInput struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
}

// HandleRespond handles POST /api/resource-requests/{id}/respond.
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

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "respond resource request")
	defer cancel()

	view, err := h.Svc.RespondResourceRequest(ctx, actor, id, in.Status)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	respond.OK(w, view)
}

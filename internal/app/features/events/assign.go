package events

import (
	"net/http"

	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/features/shared"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/inputval"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/respond"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// A quantity of zero removes the line; resources not listed are kept.
type assignResourcesInput struct {
	Resources []struct {
		ResourceID string `json:"resource_id" validate:"required,objectid"`
		Quantity   int    `json:"quantity" validate:"min=0"`
	} `json:"resources" validate:"required,min=1,dive"`
}

// HandleAssignResources handles PUT /api/events/{id}/resources.
func (h *Handler) HandleAssignResources(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r, h.ErrLog)
	if !ok {
		return
	}
	id, ok := shared.PathID(w, r, h.ErrLog, "id")
	if !ok {
		return
	}
	var in assignResourcesInput
	if err := inputval.Decode(r, &in); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	lines := make([]shared.ResourceLine, 0, len(in.Resources))
	for _, l := range in.Resources {
		lines = append(lines, shared.ResourceLine{ResourceID: l.ResourceID, Quantity: l.Quantity})
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "assign resources")
	defer cancel()

	view, err := h.Svc.AssignResources(ctx, actor, id, shared.Lines(lines))
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	respond.OK(w, view)
}

type assignEducatorInput struct {
	EducatorID string `json:"educator_id" validate:"required,objectid"`
}

// HandleAssignEducator handles PUT /api/events/{id}/educator.
func (h *Handler) HandleAssignEducator(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r, h.ErrLog)
	if !ok {
		return
	}
	id, ok := shared.PathID(w, r, h.ErrLog, "id")
	if !ok {
		return
	}
	var in assignEducatorInput
	if err := inputval.Decode(r, &in); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	educatorID, _ := primitive.ObjectIDFromHex(in.EducatorID)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "assign educator")
	defer cancel()

	view, err := h.Svc.AssignEducator(ctx, actor, id, educatorID)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	respond.OK(w, view)
}

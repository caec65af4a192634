package resources

import (
	"net/http"

	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/features/shared"
	resourcestore "github.com/M-Jeevanantham/edu-event-management-erp/internal/app/store/resources"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/inputval"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/respond"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/timeouts"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/workflow"
)

type createInput struct {
	Name        string `json:"name" validate:"required,notblank,max=200"`
	Type        string `json:"type" validate:"required,notblank,max=100"`
	Description string `json:"description" validate:"max=5000"`
	Total       *int   `json:"total" validate:"required,min=0"`
	Available   *int   `json:"available" validate:"omitempty,min=0"`
}

// HandleCreate handles POST /api/resources.
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

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "create resource")
	defer cancel()

	res, err := h.Svc.CreateResource(ctx, actor, workflow.ResourceInput{
		Name:        in.Name,
		Type:        in.Type,
		Description: in.Description,
		Total:       *in.Total,
		Available:   in.Available,
	})
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	respond.Created(w, res)
}

// ServeList handles GET /api/resources?type=&q=.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r, h.ErrLog)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "list resources")
	defer cancel()

	list, err := h.Svc.ListResources(ctx, actor, resourcestore.ListFilter{
		Type:   r.URL.Query().Get("type"),
		Search: r.URL.Query().Get("q"),
	})
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	respond.OK(w, list)
}

// ServeView handles GET /api/resources/{id}.
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r, h.ErrLog)
	if !ok {
		return
	}
	id, ok := shared.PathID(w, r, h.ErrLog, "id")
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get resource")
	defer cancel()

	res, err := h.Svc.GetResource(ctx, actor, id)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	respond.OK(w, res)
}

type updateInput struct {
	Name        *string `json:"name" validate:"omitempty,notblank,max=200"`
	Type        *string `json:"type" validate:"omitempty,notblank,max=100"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	Total       *int    `json:"total" validate:"omitempty,min=0"`
}

// HandleUpdate handles PATCH /api/resources/{id}.
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

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "update resource")
	defer cancel()

	res, err := h.Svc.UpdateResource(ctx, actor, id, resourcestore.Update{
		Name:        in.Name,
		Type:        in.Type,
		Description: in.Description,
		Total:       in.Total,
	})
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	respond.OK(w, res)
}

// HandleDelete handles DELETE /api/resources/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r, h.ErrLog)
	if !ok {
		return
	}
	id, ok := shared.PathID(w, r, h.ErrLog, "id")
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "delete resource")
	defer cancel()

	if err := h.Svc.DeleteResource(ctx, actor, id); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	respond.Message(w, "resource deleted")
}

// ServeAllocated handles GET /api/resources/allocated.
func (h *Handler) ServeAllocated(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r, h.ErrLog)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "allocated resources")
	defer cancel()

	list, err := h.Svc.AllocatedResources(ctx, actor)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	respond.OK(w, list)
}

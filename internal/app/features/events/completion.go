package events

import (
	"net/http"

	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/features/shared"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/inputval"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/respond"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/timeouts"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/lifecycle"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Ratings are range-checked by the workflow so the error names the
// offending student.
type completeInput struct {
	Feedback []struct {
		StudentID string `json:"student_id" validate:"required,objectid"`
		Rating    int    `json:"rating"`
		Comment   string `json:"comment" validate:"max=2000"`
	} `json:"feedback" validate:"dive"`
}

// HandleComplete handles POST /api/events/{id}/complete. The body carries
// one feedback entry per approved student.
func (h *Handler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r, h.ErrLog)
	if !ok {
		return
	}
	id, ok := shared.PathID(w, r, h.ErrLog, "id")
	if !ok {
		return
	}
	var in completeInput
	if err := inputval.Decode(r, &in); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	inputs := make([]lifecycle.FeedbackInput, 0, len(in.Feedback))
	for _, f := range in.Feedback {
		oid, _ := primitive.ObjectIDFromHex(f.StudentID)
		inputs = append(inputs, lifecycle.FeedbackInput{StudentID: oid, Rating: f.Rating, Comment: f.Comment})
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "complete event")
	defer cancel()

	view, err := h.Svc.CompleteEvent(ctx, actor, id, inputs)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	respond.OK(w, view)
}

// ServeFeedback handles GET /api/events/{id}/feedback.
func (h *Handler) ServeFeedback(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r, h.ErrLog)
	if !ok {
		return
	}
	id, ok := shared.PathID(w, r, h.ErrLog, "id")
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "event feedback")
	defer cancel()

	list, err := h.Svc.EventFeedback(ctx, actor, id)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	respond.OK(w, list)
}

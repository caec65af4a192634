package lifecycle

import (
	"fmt"
	"strings"
	"time"

	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/apperr"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FeedbackInput is one student's feedback supplied at completion.
type FeedbackInput struct {
	StudentID primitive.ObjectID
	Rating    int
	Comment   string
}

// PlanCompletion validates the completion request and builds one Feedback
// record per entry, ids assigned. Every entry must name a distinct
// approved student with a rating in range.
func PlanCompletion(e models.Event, inputs []FeedbackInput, now time.Time) ([]models.Feedback, error) {
	if err := CheckTransition(e.Status, models.EventCompleted); err != nil {
		return nil, err
	}

	fields := map[string]string{}
	seen := make(map[primitive.ObjectID]bool, len(inputs))
	out := make([]models.Feedback, 0, len(inputs))

	for i, in := range inputs {
		key := fmt.Sprintf("feedbacks[%d]", i)
		switch {
		case seen[in.StudentID]:
			fields[key] = "duplicate feedback for student " + in.StudentID.Hex()
		case !e.IsApproved(in.StudentID):
			fields[key] = "student " + in.StudentID.Hex() + " is not approved for this event"
		case in.Rating < models.MinRating || in.Rating > models.MaxRating:
			fields[key] = fmt.Sprintf("rating must be between %d and %d", models.MinRating, models.MaxRating)
		}
		seen[in.StudentID] = true

		out = append(out, models.Feedback{
			ID:        primitive.NewObjectID(),
			StudentID: in.StudentID,
			EventID:   e.ID,
			Rating:    in.Rating,
			Comment:   strings.TrimSpace(in.Comment),
			CreatedAt: now,
		})
	}

	if len(fields) > 0 {
		return nil, apperr.ValidationFields(fields)
	}
	return out, nil
}

// FeedbackIDs returns the ids of the planned feedback records.
func FeedbackIDs(fb []models.Feedback) []primitive.ObjectID {
	out := make([]primitive.ObjectID, len(fb))
	for i, f := range fb {
		out[i] = f.ID
	}
	return out
}

package lifecycle

import (
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/apperr"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CheckAssign decides whether an educator may be (re)assigned. A pending
// or rejected assignment is overwritten; an accepted one is kept.
func CheckAssign(e models.Event) error {
	if !IsActive(e.Status) {
		return apperr.Conflict("cannot assign an educator to a %s event", e.Status)
	}
	if e.AssignedEducator != nil && e.AssignedEducator.Status == models.AssignmentAccepted {
		return apperr.Conflict("event already has an accepted educator")
	}
	return nil
}

// ReassignableStatuses are the assignment states CheckAssign overwrites.
var ReassignableStatuses = []string{models.AssignmentPending, models.AssignmentRejected}

// IsValidResponse reports whether r is accepted or rejected.
func IsValidResponse(r string) bool {
	return r == models.AssignmentAccepted || r == models.AssignmentRejected
}

// CheckRespond decides whether the educator may answer the assignment.
// Answering twice is a ConflictError; the first answer stands.
func CheckRespond(e models.Event, educatorID primitive.ObjectID, response string) error {
	if !IsValidResponse(response) {
		return apperr.Validation("response must be %q or %q", models.AssignmentAccepted, models.AssignmentRejected)
	}
	if e.AssignedEducator == nil || e.AssignedEducator.EducatorID != educatorID {
		return apperr.Authorization("you are not the assigned educator for this event")
	}
	if e.AssignedEducator.Status != models.AssignmentPending {
		return apperr.Conflict("assignment already %s", e.AssignedEducator.Status)
	}
	return nil
}

// IsAcceptedEducator reports whether id holds an accepted assignment.
func IsAcceptedEducator(e models.Event, id primitive.ObjectID) bool {
	return e.AssignedEducator != nil &&
		e.AssignedEducator.EducatorID == id &&
		e.AssignedEducator.Status == models.AssignmentAccepted
}

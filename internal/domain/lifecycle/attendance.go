package lifecycle

import (
	"time"

	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/apperr"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AttendanceMark is one line of an attendance batch.
type AttendanceMark struct {
	StudentID primitive.ObjectID
	Present   bool
}

// PlanAttendance turns a batch into the entries to append.
//
// Students who are not approved are skipped. If any approved student in
// the batch already has an entry, the whole batch fails with an
// AlreadyMarkedError listing them. A student listed twice in one batch is
// a validation error.
func PlanAttendance(e models.Event, batch []AttendanceMark, now time.Time) ([]models.AttendanceEntry, error) {
	if len(batch) == 0 {
		return nil, apperr.Validation("attendance batch is empty")
	}
	if !IsActive(e.Status) {
		return nil, apperr.Conflict("cannot mark attendance for a %s event", e.Status)
	}

	seen := make(map[primitive.ObjectID]bool, len(batch))
	var marked []primitive.ObjectID
	entries := make([]models.AttendanceEntry, 0, len(batch))

	for _, m := range batch {
		if seen[m.StudentID] {
			return nil, apperr.Validation("student %s appears twice in the batch", m.StudentID.Hex())
		}
		seen[m.StudentID] = true

		if !e.IsApproved(m.StudentID) {
			continue
		}
		if _, ok := e.AttendanceFor(m.StudentID); ok {
			marked = append(marked, m.StudentID)
			continue
		}
		entries = append(entries, models.AttendanceEntry{
			StudentID: m.StudentID,
			Present:   m.Present,
			Marked:    true,
			MarkedAt:  now,
		})
	}

	if len(marked) > 0 {
		return nil, apperr.AlreadyMarked(marked)
	}
	return entries, nil
}

// StudentIDs returns the student ids of the entries, in order.
func StudentIDs(entries []models.AttendanceEntry) []primitive.ObjectID {
	out := make([]primitive.ObjectID, len(entries))
	for i, a := range entries {
		out[i] = a.StudentID
	}
	return out
}

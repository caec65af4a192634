// internal/app/store/events/workflow.go
package eventstore

import (
	"context"
	"time"

	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/apperr"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/lifecycle"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func bump(set bson.M) bson.M {
	set["updated_at"] = time.Now().UTC()
	return set
}

func versionMismatch(version int64) func(models.Event) error {
	return func(e models.Event) error {
		if e.Version != version {
			return stale()
		}
		return nil
	}
}

// SetResources replaces the assigned resources of an active event that is
// still at version. The caller has already moved the inventory.
func (s *Store) SetResources(ctx context.Context, id primitive.ObjectID, version int64, lines []models.ResourceLine) (models.Event, error) {
	if lines == nil {
		lines = []models.ResourceLine{}
	}
	filter := bson.M{"_id": id, "version": version, "status": bson.M{"$in": activeStatuses}}
	update := bson.M{
		"$set": bump(bson.M{"assigned_resources": lines}),
		"$inc": bson.M{"version": 1},
	}
	return s.guarded(ctx, id, filter, update, func(e models.Event) error {
		if !lifecycle.IsActive(e.Status) {
			return apperr.Conflict("cannot change resources of a %s event", e.Status)
		}
		return versionMismatch(version)(e)
	})
}

// Transition moves the event to status `to` if it is still at version and
// the move is allowed.
func (s *Store) Transition(ctx context.Context, id primitive.ObjectID, version int64, to string) (models.Event, error) {
	filter := bson.M{"_id": id, "version": version, "status": bson.M{"$in": lifecycle.FromStatuses(to)}}
	update := bson.M{"$set": bump(bson.M{"status": to}), "$inc": bson.M{"version": 1}}
	return s.guarded(ctx, id, filter, update, func(e models.Event) error {
		if err := lifecycle.CheckTransition(e.Status, to); err != nil {
			return err
		}
		return versionMismatch(version)(e)
	})
}

// Complete marks the event completed and records its feedback ids. The
// version guard ensures the approved set the feedback was validated
// against has not changed.
func (s *Store) Complete(ctx context.Context, id primitive.ObjectID, version int64, feedbackIDs []primitive.ObjectID) (models.Event, error) {
	if feedbackIDs == nil {
		feedbackIDs = []primitive.ObjectID{}
	}
	filter := bson.M{"_id": id, "version": version, "status": bson.M{"$in": lifecycle.FromStatuses(models.EventCompleted)}}
	update := bson.M{
		"$set":  bump(bson.M{"status": models.EventCompleted}),
		"$push": bson.M{"feedbacks": bson.M{"$each": feedbackIDs}},
		"$inc":  bson.M{"version": 1},
	}
	return s.guarded(ctx, id, filter, update, func(e models.Event) error {
		if err := lifecycle.CheckTransition(e.Status, models.EventCompleted); err != nil {
			return err
		}
		return versionMismatch(version)(e)
	})
}

// UndoComplete reverses Complete when the feedback records could not be written.
func (s *Store) UndoComplete(ctx context.Context, id primitive.ObjectID, previous string, feedbackIDs []primitive.ObjectID) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.EventCompleted},
		bson.M{
			"$set":  bump(bson.M{"status": previous}),
			"$pull": bson.M{"feedbacks": bson.M{"$in": feedbackIDs}},
			"$inc":  bson.M{"version": 1},
		})
	return err
}

// AssignEducator sets a pending assignment unless an accepted one exists.
func (s *Store) AssignEducator(ctx context.Context, id, educatorID primitive.ObjectID, now time.Time) (models.Event, error) {
	filter := bson.M{
		"_id":    id,
		"status": bson.M{"$in": activeStatuses},
		"$or": bson.A{
			bson.M{"assigned_educator": nil},
			bson.M{"assigned_educator.status": bson.M{"$in": lifecycle.ReassignableStatuses}},
		},
	}
	update := bson.M{
		"$set": bump(bson.M{"assigned_educator": models.EducatorAssignment{
			EducatorID:  educatorID,
			Status:      models.AssignmentPending,
			RequestedAt: now.UTC(),
		}}),
		"$inc": bson.M{"version": 1},
	}
	return s.guarded(ctx, id, filter, update, lifecycle.CheckAssign)
}

// RespondAssignment records the educator's answer to a pending assignment.
func (s *Store) RespondAssignment(ctx context.Context, id, educatorID primitive.ObjectID, response string, now time.Time) (models.Event, error) {
	if !lifecycle.IsValidResponse(response) {
		return models.Event{}, apperr.Validation("response must be %q or %q", models.AssignmentAccepted, models.AssignmentRejected)
	}
	filter := bson.M{
		"_id":                           id,
		"assigned_educator.educator_id": educatorID,
		"assigned_educator.status":      models.AssignmentPending,
	}
	update := bson.M{
		"$set": bump(bson.M{
			"assigned_educator.status":       response,
			"assigned_educator.responded_at": now.UTC(),
		}),
		"$inc": bson.M{"version": 1},
	}
	return s.guarded(ctx, id, filter, update, func(e models.Event) error {
		return lifecycle.CheckRespond(e, educatorID, response)
	})
}

// Register adds a student while the event is upcoming, not full, and the
// student is not already in. Capacity is checked in the same filter as
// the push, so the last seat can only be taken once.
func (s *Store) Register(ctx context.Context, id, studentID primitive.ObjectID) (models.Event, error) {
	filter := bson.M{
		"_id":                 id,
		"status":              models.EventUpcoming,
		"registered_students": bson.M{"$ne": studentID},
		"$expr":               bson.M{"$lt": bson.A{bson.M{"$size": "$registered_students"}, "$capacity"}},
	}
	update := bson.M{
		"$push": bson.M{"registered_students": studentID},
		"$set":  bump(bson.M{}),
		"$inc":  bson.M{"version": 1},
	}
	return s.guarded(ctx, id, filter, update, func(e models.Event) error {
		return lifecycle.CheckRegister(e, studentID)
	})
}

// Approve moves a registered student into approved (and out of rejected).
func (s *Store) Approve(ctx context.Context, id, studentID primitive.ObjectID) (models.Event, error) {
	filter := bson.M{
		"_id":                 id,
		"status":              bson.M{"$in": activeStatuses},
		"registered_students": studentID,
		"approved_students":   bson.M{"$ne": studentID},
	}
	update := bson.M{
		"$addToSet": bson.M{"approved_students": studentID},
		"$pull":     bson.M{"rejected_students": studentID},
		"$set":      bump(bson.M{}),
		"$inc":      bson.M{"version": 1},
	}
	return s.guarded(ctx, id, filter, update, func(e models.Event) error {
		return lifecycle.CheckApprove(e, studentID)
	})
}

// Reject moves a registered student into rejected (and out of approved)
// unless their attendance has been recorded.
func (s *Store) Reject(ctx context.Context, id, studentID primitive.ObjectID) (models.Event, error) {
	filter := bson.M{
		"_id":                                       id,
		"status":                                    bson.M{"$in": activeStatuses},
		"registered_students":                       studentID,
		"rejected_students":                         bson.M{"$ne": studentID},
		"registered_students_attendance.student_id": bson.M{"$ne": studentID},
	}
	update := bson.M{
		"$addToSet": bson.M{"rejected_students": studentID},
		"$pull":     bson.M{"approved_students": studentID},
		"$set":      bump(bson.M{}),
		"$inc":      bson.M{"version": 1},
	}
	return s.guarded(ctx, id, filter, update, func(e models.Event) error {
		return lifecycle.CheckReject(e, studentID)
	})
}

// MarkAttendance appends entries in one write. The filter requires every
// student to still be approved and unmarked, so overlapping batches can
// never record a student twice.
func (s *Store) MarkAttendance(ctx context.Context, id primitive.ObjectID, entries []models.AttendanceEntry, replan func(models.Event) error) (models.Event, error) {
	if len(entries) == 0 {
		return s.GetByID(ctx, id)
	}
	ids := lifecycle.StudentIDs(entries)
	filter := bson.M{
		"_id":    id,
		"status": bson.M{"$in": activeStatuses},
		"registered_students_attendance.student_id": bson.M{"$nin": ids},
		"approved_students":                         bson.M{"$all": ids},
	}
	update := bson.M{
		"$push": bson.M{"registered_students_attendance": bson.M{"$each": entries}},
		"$set":  bump(bson.M{}),
		"$inc":  bson.M{"version": 1},
	}
	return s.guarded(ctx, id, filter, update, replan)
}

package workflow

import (
	"context"
	"strconv"

	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/policy/eventpolicy"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/store/audit"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/authz"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/lifecycle"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AttendanceResult reports what a batch changed.
type AttendanceResult struct {
	Recorded   []models.AttendanceEntry `json:"recorded"`
	Attendance []models.AttendanceEntry `json:"attendance"`
}

// MarkAttendance appends one entry per approved student in the batch.
// Students who are not approved are skipped. If any approved student is
// already marked, nothing is written and the error lists them.
func (s *Service) MarkAttendance(ctx context.Context, actor authz.Actor, eventID primitive.ObjectID, batch []lifecycle.AttendanceMark) (AttendanceResult, error) {
	var res AttendanceResult
	err := retryStale(func() error {
		e, err := s.events.GetByID(ctx, eventID)
		if err != nil {
			return err
		}
		if err := eventpolicy.Check(actor, eventpolicy.MarkAttendance, eventpolicy.OnEvent(e)); err != nil {
			return err
		}
		now := s.now().UTC()
		entries, err := lifecycle.PlanAttendance(e, batch, now)
		if err != nil {
			return err
		}
		replan := func(cur models.Event) error {
			_, err := lifecycle.PlanAttendance(cur, batch, now)
			return err
		}
		updated, err := s.events.MarkAttendance(ctx, eventID, entries, replan)
		if err != nil {
			return err
		}
		res = AttendanceResult{Recorded: entries, Attendance: updated.Attendance}
		return nil
	})
	if err != nil {
		return AttendanceResult{}, s.observe("mark_attendance", err)
	}
	if len(res.Recorded) > 0 {
		s.record(ctx, audit.EventAttendanceMarked, actor.ID, ref(eventID), nil,
			map[string]string{"count": strconv.Itoa(len(res.Recorded))})
	}
	return res, s.observe("mark_attendance", nil)
}

// Attendance returns the attendance list with student identities.
func (s *Service) Attendance(ctx context.Context, actor authz.Actor, eventID primitive.ObjectID) ([]RosterEntry, error) {
	roster, err := s.Roster(ctx, actor, eventID)
	if err != nil {
		return nil, err
	}
	out := []RosterEntry{}
	for _, r := range roster {
		if r.Attendance != nil {
			out = append(out, r)
		}
	}
	return out, nil
}

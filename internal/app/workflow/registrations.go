package workflow

import (
	"context"

	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/policy/eventpolicy"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/store/audit"
	eventstore "github.com/M-Jeevanantham/edu-event-management-erp/internal/app/store/events"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/authz"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/apperr"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/lifecycle"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Registration is the result of a successful registration.
type Registration struct {
	EventID        primitive.ObjectID `json:"event_id"`
	StudentID      primitive.ObjectID `json:"student_id"`
	Status         string             `json:"status"`
	RemainingSeats int                `json:"remaining_seats"`
}

// Register signs the student up for an upcoming event with seats left.
func (s *Service) Register(ctx context.Context, actor authz.Actor, eventID primitive.ObjectID) (Registration, error) {
	if err := eventpolicy.Check(actor, eventpolicy.Register, eventpolicy.Subject{}); err != nil {
		return Registration{}, s.observe("register", err)
	}
	e, err := s.events.Register(ctx, eventID, actor.ID)
	if err != nil {
		return Registration{}, s.observe("register", err)
	}
	s.record(ctx, audit.EventStudentRegistered, actor.ID, ref(eventID), ref(actor.ID), nil)
	return Registration{
		EventID:        e.ID,
		StudentID:      actor.ID,
		Status:         lifecycle.RegistrationStatus(e, actor.ID),
		RemainingSeats: e.RemainingSeats(),
	}, s.observe("register", nil)
}

// ApproveRegistration approves a registered student. A previously
// rejected student moves back to approved.
func (s *Service) ApproveRegistration(ctx context.Context, actor authz.Actor, eventID, studentID primitive.ObjectID) (EventView, error) {
	return s.reviewRegistration(ctx, actor, eventID, studentID, true)
}

// RejectRegistration rejects a registered student unless their
// attendance has been recorded.
func (s *Service) RejectRegistration(ctx context.Context, actor authz.Actor, eventID, studentID primitive.ObjectID) (EventView, error) {
	return s.reviewRegistration(ctx, actor, eventID, studentID, false)
}

func (s *Service) reviewRegistration(ctx context.Context, actor authz.Actor, eventID, studentID primitive.ObjectID, approve bool) (EventView, error) {
	op, typ := "approve_registration", audit.EventRegistrationApproved
	if !approve {
		op, typ = "reject_registration", audit.EventRegistrationRejected
	}

	e, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return EventView{}, s.observe(op, err)
	}
	if err := eventpolicy.Check(actor, eventpolicy.ReviewRegistration, eventpolicy.OnEvent(e)); err != nil {
		return EventView{}, s.observe(op, err)
	}
	var updated models.Event
	if approve {
		updated, err = s.events.Approve(ctx, eventID, studentID)
	} else {
		updated, err = s.events.Reject(ctx, eventID, studentID)
	}
	if err != nil {
		return EventView{}, s.observe(op, err)
	}
	s.record(ctx, typ, actor.ID, ref(eventID), ref(studentID), nil)
	s.observe(op, nil)
	return s.eventView(ctx, updated)
}

// OpenEvents lists future upcoming events the student has not joined.
func (s *Service) OpenEvents(ctx context.Context, actor authz.Actor) ([]EventView, error) {
	if err := eventpolicy.Check(actor, eventpolicy.Register, eventpolicy.Subject{}); err != nil {
		return nil, err
	}
	now := s.now()
	events, err := s.events.List(ctx, eventstore.ListFilter{
		Statuses:        []string{models.EventUpcoming},
		NotRegisteredID: &actor.ID,
		After:           &now,
	})
	if err != nil {
		return nil, err
	}
	return s.eventViews(ctx, events)
}

// MyEvents lists the events the student registered for with their
// registration status and attendance.
func (s *Service) MyEvents(ctx context.Context, actor authz.Actor) ([]StudentEventView, error) {
	if err := eventpolicy.Check(actor, eventpolicy.Register, eventpolicy.Subject{}); err != nil {
		return nil, err
	}
	events, err := s.events.List(ctx, eventstore.ListFilter{RegisteredID: &actor.ID})
	if err != nil {
		return nil, err
	}
	views, err := s.eventViews(ctx, events)
	if err != nil {
		return nil, err
	}
	given, err := s.feedback.ListByStudent(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	byEvent := make(map[primitive.ObjectID]models.Feedback, len(given))
	for _, f := range given {
		byEvent[f.EventID] = f
	}
	out := make([]StudentEventView, 0, len(views))
	for _, v := range views {
		sv := studentView(v, actor.ID)
		if f, ok := byEvent[v.ID]; ok {
			sv.Feedback = &f
		}
		out = append(out, sv)
	}
	return out, nil
}

// MyRegistration is the student's standing on one event.
func (s *Service) MyRegistration(ctx context.Context, actor authz.Actor, eventID primitive.ObjectID) (StudentEventView, error) {
	if err := eventpolicy.Check(actor, eventpolicy.Register, eventpolicy.Subject{}); err != nil {
		return StudentEventView{}, err
	}
	e, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return StudentEventView{}, err
	}
	if !e.IsRegistered(actor.ID) {
		return StudentEventView{}, apperr.NotRegistered()
	}
	v, err := s.eventView(ctx, e)
	if err != nil {
		return StudentEventView{}, err
	}
	return studentView(v, actor.ID), nil
}

// Roster lists the registered students of an event with their status and
// attendance, for the creator or the assigned educator.
func (s *Service) Roster(ctx context.Context, actor authz.Actor, eventID primitive.ObjectID) ([]RosterEntry, error) {
	e, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if err := eventpolicy.Check(actor, eventpolicy.ViewRoster, eventpolicy.OnEvent(e)); err != nil {
		return nil, err
	}
	lk, err := s.load(ctx, e.RegisteredStudents, nil)
	if err != nil {
		return nil, err
	}
	out := make([]RosterEntry, 0, len(e.RegisteredStudents))
	for _, id := range e.RegisteredStudents {
		entry := RosterEntry{
			Student: lk.userRef(id),
			Status:  lifecycle.RegistrationStatus(e, id),
		}
		if a, ok := e.AttendanceFor(id); ok {
			entry.Attendance = &a
		}
		out = append(out, entry)
	}
	return out, nil
}

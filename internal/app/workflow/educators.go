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

// AssignEducator gives the event a pending assignment. A pending or
// rejected assignment is replaced; an accepted one is a ConflictError.
func (s *Service) AssignEducator(ctx context.Context, actor authz.Actor, eventID, educatorID primitive.ObjectID) (EventView, error) {
	e, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return EventView{}, s.observe("assign_educator", err)
	}
	if err := eventpolicy.Check(actor, eventpolicy.AssignEducator, eventpolicy.OnEvent(e)); err != nil {
		return EventView{}, s.observe("assign_educator", err)
	}
	if _, err := s.users.GetWithRole(ctx, educatorID, models.RoleEducator); err != nil {
		return EventView{}, s.observe("assign_educator", err)
	}
	updated, err := s.events.AssignEducator(ctx, eventID, educatorID, s.now())
	if err != nil {
		return EventView{}, s.observe("assign_educator", err)
	}
	s.record(ctx, audit.EventEducatorAssigned, actor.ID, ref(eventID), ref(educatorID), nil)
	s.observe("assign_educator", nil)
	return s.eventView(ctx, updated)
}

// RespondAssignment records the assigned educator's answer. The first
// answer stands; answering again is a ConflictError.
func (s *Service) RespondAssignment(ctx context.Context, actor authz.Actor, eventID primitive.ObjectID, response string) (EventView, error) {
	if !lifecycle.IsValidResponse(response) {
		return EventView{}, s.observe("respond_assignment",
			apperr.Validation("response must be %q or %q", models.AssignmentAccepted, models.AssignmentRejected))
	}
	e, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return EventView{}, s.observe("respond_assignment", err)
	}
	if err := eventpolicy.Check(actor, eventpolicy.RespondAssignment, eventpolicy.OnEvent(e)); err != nil {
		return EventView{}, s.observe("respond_assignment", err)
	}
	updated, err := s.events.RespondAssignment(ctx, eventID, actor.ID, response, s.now())
	if err != nil {
		return EventView{}, s.observe("respond_assignment", err)
	}
	s.record(ctx, audit.EventAssignmentAnswered, actor.ID, ref(eventID), nil, map[string]string{"response": response})
	s.observe("respond_assignment", nil)
	return s.eventView(ctx, updated)
}

// PendingAssignments lists live events waiting on the educator's answer.
func (s *Service) PendingAssignments(ctx context.Context, actor authz.Actor) ([]EventView, error) {
	return s.educatorEvents(ctx, actor, models.AssignmentPending, models.EventUpcoming, models.EventOngoing)
}

// AssignedEvents lists the events the educator accepted, any status.
func (s *Service) AssignedEvents(ctx context.Context, actor authz.Actor) ([]EventView, error) {
	return s.educatorEvents(ctx, actor, models.AssignmentAccepted)
}

// CompletedEvents lists the educator's completed events.
func (s *Service) CompletedEvents(ctx context.Context, actor authz.Actor) ([]EventView, error) {
	return s.educatorEvents(ctx, actor, models.AssignmentAccepted, models.EventCompleted)
}

func (s *Service) educatorEvents(ctx context.Context, actor authz.Actor, assignment string, statuses ...string) ([]EventView, error) {
	if !actor.HasAnyRole(models.RoleEducator) {
		return nil, apperr.Authorization("only educators have assignments")
	}
	events, err := s.events.List(ctx, eventstore.ListFilter{
		EducatorID:       &actor.ID,
		AssignmentStatus: assignment,
		Statuses:         statuses,
	})
	if err != nil {
		return nil, err
	}
	return s.eventViews(ctx, events)
}

// Educators lists active educators for the institution's assignment picker.
func (s *Service) Educators(ctx context.Context, actor authz.Actor) ([]models.UserRef, error) {
	if err := eventpolicy.Check(actor, eventpolicy.CreateEvent, eventpolicy.Subject{}); err != nil {
		return nil, err
	}
	users, err := s.users.ListByRole(ctx, models.RoleEducator)
	if err != nil {
		return nil, err
	}
	out := make([]models.UserRef, 0, len(users))
	for _, u := range users {
		out = append(out, models.UserRef{ID: u.ID, Name: u.Name, Email: u.Email})
	}
	return out, nil
}

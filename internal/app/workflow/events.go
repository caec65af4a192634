package workflow

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/policy/eventpolicy"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/store/audit"
	eventstore "github.com/M-Jeevanantham/edu-event-management-erp/internal/app/store/events"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/authz"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/htmlsanitize"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/apperr"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/lifecycle"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// EventInput creates an event. When SourceRequestID is set, the approved
// request supplies title, description, resources and educator for any of
// them left empty.
type EventInput struct {
	Title           string
	Description     string
	Date            time.Time
	Location        string
	Capacity        int
	EducatorID      *primitive.ObjectID
	Resources       []models.ResourceLine
	SourceRequestID *primitive.ObjectID
}

// CreateEvent validates the input, reserves the resources all-or-nothing,
// stores the event and links its source request.
func (s *Service) CreateEvent(ctx context.Context, actor authz.Actor, in EventInput) (EventView, error) {
	e, err := s.createEvent(ctx, actor, in)
	if err != nil {
		return EventView{}, s.observe("create_event", err)
	}
	s.observe("create_event", nil)
	return s.eventView(ctx, e)
}

func (s *Service) createEvent(ctx context.Context, actor authz.Actor, in EventInput) (models.Event, error) {
	if err := eventpolicy.Check(actor, eventpolicy.CreateEvent, eventpolicy.Subject{}); err != nil {
		return models.Event{}, err
	}

	if in.SourceRequestID != nil {
		req, err := s.eventRequests.GetByID(ctx, *in.SourceRequestID)
		if err != nil {
			return models.Event{}, err
		}
		if req.Status != models.RequestApproved {
			return models.Event{}, apperr.ValidationFields(map[string]string{
				"source_request_id": "event request is " + req.Status + ", not approved",
			})
		}
		if req.EventID != nil {
			return models.Event{}, apperr.Conflict("an event was already created from this request")
		}
		if strings.TrimSpace(in.Title) == "" {
			in.Title = req.Title
		}
		if strings.TrimSpace(in.Description) == "" {
			in.Description = req.Description
		}
		if in.Resources == nil {
			in.Resources = req.RequestedResources
		}
		if in.EducatorID == nil {
			in.EducatorID = req.ApprovedEducator
		}
	}

	now := s.now()
	if err := lifecycle.ValidateNewEvent(lifecycle.EventFields{
		Title:       in.Title,
		Description: in.Description,
		Date:        in.Date,
		Location:    in.Location,
		Capacity:    in.Capacity,
	}, now); err != nil {
		return models.Event{}, err
	}
	lines, err := lifecycle.NormalizeLines(in.Resources)
	if err != nil {
		return models.Event{}, err
	}

	e := models.Event{
		Title:             in.Title,
		Description:       htmlsanitize.PlainText(in.Description),
		Date:              in.Date.UTC(),
		Location:          in.Location,
		Capacity:          in.Capacity,
		CreatedBy:         actor.ID,
		AssignedResources: lines,
		SourceRequestID:   in.SourceRequestID,
	}
	if in.EducatorID != nil {
		if _, err := s.users.GetWithRole(ctx, *in.EducatorID, models.RoleEducator); err != nil {
			return models.Event{}, err
		}
		e.AssignedEducator = &models.EducatorAssignment{
			EducatorID:  *in.EducatorID,
			Status:      models.AssignmentPending,
			RequestedAt: now.UTC(),
		}
	}

	var created models.Event
	err = s.inTxn(ctx, func(ctx context.Context) error {
		if err := s.resources.ReserveAll(ctx, lines); err != nil {
			return err
		}
		out, err := s.events.Create(ctx, e)
		if err != nil {
			return s.undoReserve(ctx, lines, err)
		}
		if in.SourceRequestID != nil {
			if err := s.eventRequests.LinkEvent(ctx, *in.SourceRequestID, out.ID); err != nil {
				if _, derr := s.events.Delete(ctx, out.ID, out.Version); derr != nil {
					s.log.Error("could not remove event after failed request link",
						zap.String("event_id", out.ID.Hex()), zap.Error(derr))
				}
				return s.undoReserve(ctx, lines, err)
			}
		}
		created = out
		return nil
	})
	if err != nil {
		return models.Event{}, err
	}

	s.record(ctx, audit.EventEventCreated, actor.ID, ref(created.ID), nil, map[string]string{"title": created.Title})
	if created.AssignedEducator != nil {
		s.record(ctx, audit.EventEducatorAssigned, actor.ID, ref(created.ID), ref(created.AssignedEducator.EducatorID), nil)
	}
	return created, nil
}

// undoReserve releases lines after a later step failed and returns cause.
func (s *Service) undoReserve(ctx context.Context, lines []models.ResourceLine, cause error) error {
	if err := s.resources.ReleaseAll(ctx, lines); err != nil {
		s.log.Error("could not release reserved resources", zap.Error(err))
		return apperr.Internal(errors.Join(cause, err))
	}
	return cause
}

// GetEvent returns one event to any signed-in user.
func (s *Service) GetEvent(ctx context.Context, actor authz.Actor, id primitive.ObjectID) (EventView, error) {
	if err := eventpolicy.Check(actor, eventpolicy.ViewOwnEvents, eventpolicy.Subject{}); err != nil {
		return EventView{}, err
	}
	e, err := s.events.GetByID(ctx, id)
	if err != nil {
		return EventView{}, err
	}
	return s.eventView(ctx, e)
}

// InstitutionEvents lists the events the institution created.
func (s *Service) InstitutionEvents(ctx context.Context, actor authz.Actor) ([]EventView, error) {
	if err := eventpolicy.Check(actor, eventpolicy.CreateEvent, eventpolicy.Subject{}); err != nil {
		return nil, err
	}
	events, err := s.events.List(ctx, eventstore.ListFilter{CreatedBy: &actor.ID})
	if err != nil {
		return nil, err
	}
	return s.eventViews(ctx, events)
}

// UpdateEvent applies an edit by the creating institution.
func (s *Service) UpdateEvent(ctx context.Context, actor authz.Actor, id primitive.ObjectID, p lifecycle.EventPatch) (EventView, error) {
	e, err := s.events.GetByID(ctx, id)
	if err != nil {
		return EventView{}, s.observe("update_event", err)
	}
	if err := eventpolicy.Check(actor, eventpolicy.UpdateEvent, eventpolicy.OnEvent(e)); err != nil {
		return EventView{}, s.observe("update_event", err)
	}
	if p.Empty() {
		return EventView{}, s.observe("update_event", apperr.Validation("nothing to update"))
	}
	if p.Description != nil {
		d := htmlsanitize.PlainText(*p.Description)
		p.Description = &d
	}
	if err := lifecycle.ValidatePatch(e, p, s.now()); err != nil {
		return EventView{}, s.observe("update_event", err)
	}
	updated, err := s.events.Update(ctx, id, p)
	if err != nil {
		return EventView{}, s.observe("update_event", err)
	}
	s.record(ctx, audit.EventEventUpdated, actor.ID, ref(id), nil, nil)
	s.observe("update_event", nil)
	return s.eventView(ctx, updated)
}

// StartEvent moves an upcoming event to ongoing.
func (s *Service) StartEvent(ctx context.Context, actor authz.Actor, id primitive.ObjectID) (EventView, error) {
	var updated models.Event
	err := retryStale(func() error {
		e, err := s.events.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := eventpolicy.Check(actor, eventpolicy.StartEvent, eventpolicy.OnEvent(e)); err != nil {
			return err
		}
		updated, err = s.events.Transition(ctx, id, e.Version, models.EventOngoing)
		return err
	})
	if err != nil {
		return EventView{}, s.observe("start_event", err)
	}
	s.record(ctx, audit.EventEventStarted, actor.ID, ref(id), nil, nil)
	s.observe("start_event", nil)
	return s.eventView(ctx, updated)
}

// CancelEvent cancels the event and returns its resources to inventory.
// The status change is version-guarded so the lines released are exactly
// the lines the event held.
func (s *Service) CancelEvent(ctx context.Context, actor authz.Actor, id primitive.ObjectID) (EventView, error) {
	var updated models.Event
	err := retryStale(func() error {
		e, err := s.events.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := eventpolicy.Check(actor, eventpolicy.CancelEvent, eventpolicy.OnEvent(e)); err != nil {
			return err
		}
		if err := lifecycle.CheckTransition(e.Status, models.EventCancelled); err != nil {
			return err
		}
		return s.inTxn(ctx, func(ctx context.Context) error {
			out, err := s.events.Transition(ctx, id, e.Version, models.EventCancelled)
			if err != nil {
				return err
			}
			if err := s.resources.ReleaseAll(ctx, e.AssignedResources); err != nil {
				s.log.Error("cancelled event could not release resources",
					zap.String("event_id", id.Hex()), zap.Error(err))
				return apperr.Internal(err)
			}
			updated = out
			return nil
		})
	})
	if err != nil {
		return EventView{}, s.observe("cancel_event", err)
	}
	s.record(ctx, audit.EventEventCancelled, actor.ID, ref(id), nil, nil)
	s.observe("cancel_event", nil)
	return s.eventView(ctx, updated)
}

// DeleteEvent removes the event. Resources still held are released and a
// source request is freed so another event can be created from it.
func (s *Service) DeleteEvent(ctx context.Context, actor authz.Actor, id primitive.ObjectID) error {
	err := retryStale(func() error {
		e, err := s.events.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := eventpolicy.Check(actor, eventpolicy.DeleteEvent, eventpolicy.OnEvent(e)); err != nil {
			return err
		}
		return s.inTxn(ctx, func(ctx context.Context) error {
			deleted, err := s.events.Delete(ctx, id, e.Version)
			if err != nil {
				return err
			}
			if lifecycle.HoldsResources(deleted.Status) {
				if err := s.resources.ReleaseAll(ctx, deleted.AssignedResources); err != nil {
					if rerr := s.events.Restore(ctx, deleted); rerr != nil {
						s.log.Error("could not restore event after failed release",
							zap.String("event_id", id.Hex()), zap.Error(rerr))
						return apperr.Internal(errors.Join(err, rerr))
					}
					return err
				}
			}
			if deleted.SourceRequestID != nil {
				if err := s.eventRequests.UnlinkEvent(ctx, *deleted.SourceRequestID, id); err != nil {
					s.log.Warn("could not unlink source request",
						zap.String("event_id", id.Hex()), zap.Error(err))
				}
			}
			return nil
		})
	})
	if err != nil {
		return s.observe("delete_event", err)
	}
	s.record(ctx, audit.EventEventDeleted, actor.ID, ref(id), nil, nil)
	return s.observe("delete_event", nil)
}

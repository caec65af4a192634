package workflow

import (
	"context"
	"errors"
	"strconv"

	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/policy/eventpolicy"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/store/audit"
	eventstore "github.com/M-Jeevanantham/edu-event-management-erp/internal/app/store/events"
	resourcestore "github.com/M-Jeevanantham/edu-event-management-erp/internal/app/store/resources"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/authz"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/htmlsanitize"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/apperr"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/lifecycle"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ResourceInput creates a resource. Available defaults to Total.
type ResourceInput struct {
	Name        string
	Type        string
	Description string
	Total       int
	Available   *int
}

func (s *Service) CreateResource(ctx context.Context, actor authz.Actor, in ResourceInput) (models.Resource, error) {
	if err := eventpolicy.Check(actor, eventpolicy.CreateResource, eventpolicy.Subject{}); err != nil {
		return models.Resource{}, s.observe("create_resource", err)
	}
	available := in.Total
	if in.Available != nil {
		available = *in.Available
	}
	r, err := s.resources.Create(ctx, models.Resource{
		Name:        in.Name,
		Type:        in.Type,
		Description: htmlsanitize.PlainText(in.Description),
		Total:       in.Total,
		Available:   available,
	})
	if err != nil {
		return models.Resource{}, s.observe("create_resource", err)
	}
	s.record(ctx, audit.EventResourceCreated, actor.ID, nil, nil, map[string]string{
		"resource_id": r.ID.Hex(),
		"total":       strconv.Itoa(r.Total),
	})
	return r, s.observe("create_resource", nil)
}

func (s *Service) GetResource(ctx context.Context, actor authz.Actor, id primitive.ObjectID) (models.Resource, error) {
	if err := eventpolicy.Check(actor, eventpolicy.ViewInventory, eventpolicy.Subject{}); err != nil {
		return models.Resource{}, err
	}
	return s.resources.GetByID(ctx, id)
}

func (s *Service) ListResources(ctx context.Context, actor authz.Actor, f resourcestore.ListFilter) ([]models.Resource, error) {
	if err := eventpolicy.Check(actor, eventpolicy.ViewInventory, eventpolicy.Subject{}); err != nil {
		return nil, err
	}
	return s.resources.List(ctx, f)
}

// UpdateResource edits descriptive fields and, optionally, the total.
func (s *Service) UpdateResource(ctx context.Context, actor authz.Actor, id primitive.ObjectID, u resourcestore.Update) (models.Resource, error) {
	if err := eventpolicy.Check(actor, eventpolicy.ManageResource, eventpolicy.Subject{}); err != nil {
		return models.Resource{}, s.observe("update_resource", err)
	}
	if u.Description != nil {
		d := htmlsanitize.PlainText(*u.Description)
		u.Description = &d
	}
	r, err := s.resources.Update(ctx, id, u)
	if err != nil {
		return models.Resource{}, s.observe("update_resource", err)
	}
	s.record(ctx, audit.EventResourceUpdated, actor.ID, nil, nil, map[string]string{"resource_id": id.Hex()})
	return r, s.observe("update_resource", nil)
}

// DeleteResource refuses while any event holds units of the resource.
func (s *Service) DeleteResource(ctx context.Context, actor authz.Actor, id primitive.ObjectID) error {
	if err := eventpolicy.Check(actor, eventpolicy.ManageResource, eventpolicy.Subject{}); err != nil {
		return s.observe("delete_resource", err)
	}
	holding, err := s.events.Count(ctx, eventstore.ListFilter{HoldingResource: &id})
	if err != nil {
		return s.observe("delete_resource", err)
	}
	if holding > 0 {
		return s.observe("delete_resource", apperr.Conflict("resource is assigned to %d events", holding))
	}
	if err := s.resources.Delete(ctx, id); err != nil {
		return s.observe("delete_resource", err)
	}
	s.record(ctx, audit.EventResourceDeleted, actor.ID, nil, nil, map[string]string{"resource_id": id.Hex()})
	return s.observe("delete_resource", nil)
}

// Allocation is one resource line held by one of the institution's events.
type Allocation struct {
	EventID    primitive.ObjectID `json:"event_id"`
	EventTitle string             `json:"event_title"`
	EventDate  string             `json:"event_date"`
	ResourceLineView
}

// AllocatedResources lists what the institution's live events hold.
func (s *Service) AllocatedResources(ctx context.Context, actor authz.Actor) ([]Allocation, error) {
	if err := eventpolicy.Check(actor, eventpolicy.CreateEvent, eventpolicy.Subject{}); err != nil {
		return nil, err
	}
	events, err := s.events.List(ctx, eventstore.ListFilter{
		CreatedBy: &actor.ID,
		Statuses:  []string{models.EventUpcoming, models.EventOngoing, models.EventCompleted},
	})
	if err != nil {
		return nil, err
	}
	var resourceIDs []primitive.ObjectID
	for _, e := range events {
		for _, l := range e.AssignedResources {
			resourceIDs = append(resourceIDs, l.ResourceID)
		}
	}
	lk, err := s.load(ctx, nil, resourceIDs)
	if err != nil {
		return nil, err
	}

	out := []Allocation{}
	for _, e := range events {
		for _, l := range lk.lines(e.AssignedResources) {
			out = append(out, Allocation{
				EventID:          e.ID,
				EventTitle:       e.Title,
				EventDate:        e.Date.UTC().Format("2006-01-02"),
				ResourceLineView: l,
			})
		}
	}
	return out, nil
}

// AssignResources sets the desired quantity per resource on an event.
// Resources not listed keep their quantity and zero removes a line. The
// inventory moves first and the event is written under its version; if
// the event moved in between, the inventory change is undone and the
// whole step retried against the fresh document.
func (s *Service) AssignResources(ctx context.Context, actor authz.Actor, eventID primitive.ObjectID, desired []models.ResourceLine) (EventView, error) {
	var updated models.Event
	err := retryStale(func() error {
		e, err := s.events.GetByID(ctx, eventID)
		if err != nil {
			return err
		}
		if err := eventpolicy.Check(actor, eventpolicy.AssignResources, eventpolicy.OnEvent(e)); err != nil {
			return err
		}
		if !lifecycle.IsActive(e.Status) {
			return apperr.Conflict("cannot change resources of a %s event", e.Status)
		}
		next, deltas, err := lifecycle.PlanAssignment(e.AssignedResources, desired)
		if err != nil {
			return err
		}

		return s.inTxn(ctx, func(ctx context.Context) error {
			if err := s.resources.Apply(ctx, deltas); err != nil {
				return err
			}
			out, err := s.events.SetResources(ctx, e.ID, e.Version, next)
			if err != nil {
				if cerr := s.resources.Apply(ctx, lifecycle.Invert(deltas)); cerr != nil {
					s.log.Error("could not undo inventory change",
						zap.String("event_id", e.ID.Hex()), zap.Error(cerr))
					return apperr.Internal(errors.Join(err, cerr))
				}
				return err
			}
			updated = out
			return nil
		})
	})
	if err != nil {
		return EventView{}, s.observe("assign_resources", err)
	}
	s.record(ctx, audit.EventResourcesAssigned, actor.ID, ref(eventID), nil, nil)
	s.observe("assign_resources", nil)
	return s.eventView(ctx, updated)
}

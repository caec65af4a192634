package workflow

import (
	"context"
	"errors"

	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/policy/eventpolicy"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/store/audit"
	eventstore "github.com/M-Jeevanantham/edu-event-management-erp/internal/app/store/events"
	resourcerequeststore "github.com/M-Jeevanantham/edu-event-management-erp/internal/app/store/resourcerequests"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/authz"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/apperr"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/lifecycle"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ResourceRequestView is a top-up request with its event and resources.
type ResourceRequestView struct {
	models.ResourceRequest
	EventTitle string             `json:"event_title"`
	Educator   models.UserRef     `json:"educator"`
	Resources  []ResourceLineView `json:"resources"`
}

// SubmitResourceRequest lets the accepted educator of a live event ask
// for more resources.
func (s *Service) SubmitResourceRequest(ctx context.Context, actor authz.Actor, eventID primitive.ObjectID, lines []models.ResourceLine) (ResourceRequestView, error) {
	e, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return ResourceRequestView{}, s.observe("submit_resource_request", err)
	}
	if err := eventpolicy.Check(actor, eventpolicy.SubmitResourceRequest, eventpolicy.OnEvent(e)); err != nil {
		return ResourceRequestView{}, s.observe("submit_resource_request", err)
	}
	if !lifecycle.IsActive(e.Status) {
		return ResourceRequestView{}, s.observe("submit_resource_request",
			apperr.Conflict("cannot request resources for a %s event", e.Status))
	}
	if len(lines) == 0 {
		return ResourceRequestView{}, s.observe("submit_resource_request",
			apperr.ValidationFields(map[string]string{"resources": "at least one resource is required"}))
	}
	norm, err := s.checkLines(ctx, lines)
	if err != nil {
		return ResourceRequestView{}, s.observe("submit_resource_request", err)
	}
	r, err := s.resourceRequests.Create(ctx, models.ResourceRequest{
		EventID:            eventID,
		EducatorID:         actor.ID,
		RequestedResources: norm,
	})
	if err != nil {
		return ResourceRequestView{}, s.observe("submit_resource_request", err)
	}
	s.record(ctx, audit.EventResourceRequestSubmitted, actor.ID, ref(eventID), nil, map[string]string{"request_id": r.ID.Hex()})
	s.observe("submit_resource_request", nil)
	return s.resourceRequestView(ctx, r)
}

// RespondResourceRequest approves or rejects a pending top-up. Approval
// claims the request, reserves every line all-or-nothing, and merges the
// lines into the event. If any step fails the reservation is returned
// and the request goes back to pending.
func (s *Service) RespondResourceRequest(ctx context.Context, actor authz.Actor, id primitive.ObjectID, status string) (ResourceRequestView, error) {
	r, err := s.respondResourceRequest(ctx, actor, id, status)
	if err != nil {
		return ResourceRequestView{}, s.observe("respond_resource_request", err)
	}
	s.record(ctx, audit.EventResourceRequestReviewed, actor.ID, ref(r.EventID), ref(r.EducatorID),
		map[string]string{"request_id": id.Hex(), "status": status})
	s.observe("respond_resource_request", nil)
	return s.resourceRequestView(ctx, r)
}

func (s *Service) respondResourceRequest(ctx context.Context, actor authz.Actor, id primitive.ObjectID, status string) (models.ResourceRequest, error) {
	if status != models.RequestApproved && status != models.RequestRejected {
		return models.ResourceRequest{}, apperr.Validation("status must be %q or %q", models.RequestApproved, models.RequestRejected)
	}
	req, err := s.resourceRequests.GetByID(ctx, id)
	if err != nil {
		return models.ResourceRequest{}, err
	}
	e, err := s.events.GetByID(ctx, req.EventID)
	if err != nil {
		return models.ResourceRequest{}, err
	}
	if err := eventpolicy.Check(actor, eventpolicy.ReviewResourceRequest, eventpolicy.OnEvent(e)); err != nil {
		return models.ResourceRequest{}, err
	}
	if status == models.RequestRejected {
		return s.resourceRequests.Decide(ctx, id, status, actor.ID)
	}
	if !lifecycle.IsActive(e.Status) {
		return models.ResourceRequest{}, apperr.Conflict("cannot add resources to a %s event", e.Status)
	}

	claimed, err := s.resourceRequests.Decide(ctx, id, status, actor.ID)
	if err != nil {
		return models.ResourceRequest{}, err
	}
	lines := claimed.RequestedResources

	err = s.inTxn(ctx, func(ctx context.Context) error {
		if err := s.resources.ReserveAll(ctx, lines); err != nil {
			return err
		}
		err := retryStale(func() error {
			cur, err := s.events.GetByID(ctx, claimed.EventID)
			if err != nil {
				return err
			}
			if !lifecycle.IsActive(cur.Status) {
				return apperr.Conflict("cannot add resources to a %s event", cur.Status)
			}
			_, err = s.events.SetResources(ctx, cur.ID, cur.Version, lifecycle.MergeLines(cur.AssignedResources, lines))
			return err
		})
		if err != nil {
			return s.undoReserve(ctx, lines, err)
		}
		return nil
	})
	if err != nil {
		if rerr := s.resourceRequests.Reopen(ctx, id); rerr != nil {
			s.log.Error("could not reopen resource request",
				zap.String("request_id", id.Hex()), zap.Error(rerr))
			return models.ResourceRequest{}, apperr.Internal(errors.Join(err, rerr))
		}
		return models.ResourceRequest{}, err
	}
	return claimed, nil
}

// ResourceRequests lists top-up requests on the institution's events.
func (s *Service) ResourceRequests(ctx context.Context, actor authz.Actor, status string) ([]ResourceRequestView, error) {
	if err := eventpolicy.Check(actor, eventpolicy.CreateEvent, eventpolicy.Subject{}); err != nil {
		return nil, err
	}
	events, err := s.events.List(ctx, eventstore.ListFilter{CreatedBy: &actor.ID})
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.ID)
	}
	rs, err := s.resourceRequests.List(ctx, resourcerequeststore.ListFilter{EventIDs: ids, Status: status})
	if err != nil {
		return nil, err
	}
	return s.resourceRequestViews(ctx, rs)
}

// MyResourceRequests lists the educator's own top-up requests.
func (s *Service) MyResourceRequests(ctx context.Context, actor authz.Actor) ([]ResourceRequestView, error) {
	if !actor.HasAnyRole(models.RoleEducator) {
		return nil, apperr.Authorization("only educators submit resource requests")
	}
	rs, err := s.resourceRequests.List(ctx, resourcerequeststore.ListFilter{EducatorID: &actor.ID})
	if err != nil {
		return nil, err
	}
	return s.resourceRequestViews(ctx, rs)
}

func (s *Service) resourceRequestView(ctx context.Context, r models.ResourceRequest) (ResourceRequestView, error) {
	vs, err := s.resourceRequestViews(ctx, []models.ResourceRequest{r})
	if err != nil {
		return ResourceRequestView{}, err
	}
	return vs[0], nil
}

func (s *Service) resourceRequestViews(ctx context.Context, rs []models.ResourceRequest) ([]ResourceRequestView, error) {
	var userIDs, resourceIDs, eventIDs []primitive.ObjectID
	for _, r := range rs {
		userIDs = append(userIDs, r.EducatorID)
		eventIDs = append(eventIDs, r.EventID)
		for _, l := range r.RequestedResources {
			resourceIDs = append(resourceIDs, l.ResourceID)
		}
	}
	lk, err := s.load(ctx, userIDs, resourceIDs)
	if err != nil {
		return nil, err
	}
	titles, err := s.events.Titles(ctx, eventIDs)
	if err != nil {
		return nil, err
	}
	out := make([]ResourceRequestView, 0, len(rs))
	for _, r := range rs {
		out = append(out, ResourceRequestView{
			ResourceRequest: r,
			EventTitle:      titles[r.EventID],
			Educator:        lk.userRef(r.EducatorID),
			Resources:       lk.lines(r.RequestedResources),
		})
	}
	return out, nil
}

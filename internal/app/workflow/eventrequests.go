package workflow

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/policy/eventpolicy"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/store/audit"
	eventrequeststore "github.com/M-Jeevanantham/edu-event-management-erp/internal/app/store/eventrequests"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/authz"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/htmlsanitize"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/apperr"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/lifecycle"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// EventRequestInput is a student's or educator's proposal.
type EventRequestInput struct {
	Title         string
	Description   string
	PreferredDate time.Time
	Resources     []models.ResourceLine
}

// EventRequestView is a request with requester and resource names.
type EventRequestView struct {
	models.EventRequest
	Requester models.UserRef     `json:"requester"`
	Educator  *models.UserRef    `json:"educator,omitempty"`
	Resources []ResourceLineView `json:"resources"`
}

// SubmitEventRequest stores a pending request after checking that every
// requested resource exists.
func (s *Service) SubmitEventRequest(ctx context.Context, actor authz.Actor, in EventRequestInput) (EventRequestView, error) {
	if err := eventpolicy.Check(actor, eventpolicy.SubmitEventRequest, eventpolicy.Subject{}); err != nil {
		return EventRequestView{}, s.observe("submit_event_request", err)
	}
	fields := map[string]string{}
	if strings.TrimSpace(in.Title) == "" {
		fields["title"] = "title is required"
	}
	if in.PreferredDate.IsZero() {
		fields["preferred_date"] = "preferred date is required"
	}
	if len(fields) > 0 {
		return EventRequestView{}, s.observe("submit_event_request", apperr.ValidationFields(fields))
	}
	lines, err := s.checkLines(ctx, in.Resources)
	if err != nil {
		return EventRequestView{}, s.observe("submit_event_request", err)
	}

	r, err := s.eventRequests.Create(ctx, models.EventRequest{
		Title:              in.Title,
		Description:        htmlsanitize.PlainText(in.Description),
		PreferredDate:      in.PreferredDate.UTC(),
		RequestedBy:        actor.ID,
		RequesterRole:      actor.Role,
		RequestedResources: lines,
	})
	if err != nil {
		return EventRequestView{}, s.observe("submit_event_request", err)
	}
	s.record(ctx, audit.EventRequestSubmitted, actor.ID, nil, nil, map[string]string{"request_id": r.ID.Hex()})
	s.observe("submit_event_request", nil)
	return s.requestView(ctx, r)
}

// checkLines validates quantities, folds repeats, and requires every
// resource to exist.
func (s *Service) checkLines(ctx context.Context, in []models.ResourceLine) ([]models.ResourceLine, error) {
	lines, err := lifecycle.NormalizeLines(in)
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ResourceID)
	}
	found, err := s.resources.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	fields := map[string]string{}
	for i, l := range in {
		if _, ok := found[l.ResourceID]; !ok {
			fields[fmt.Sprintf("resources[%d].resource_id", i)] = "resource " + l.ResourceID.Hex() + " does not exist"
		}
	}
	if len(fields) > 0 {
		return nil, apperr.ValidationFields(fields)
	}
	return lines, nil
}

// ReviewEventRequest approves or rejects a pending request. An approval
// may name the educator the event should be offered to.
func (s *Service) ReviewEventRequest(ctx context.Context, actor authz.Actor, id primitive.ObjectID, status string, educatorID *primitive.ObjectID) (EventRequestView, error) {
	if err := eventpolicy.Check(actor, eventpolicy.ReviewEventRequest, eventpolicy.Subject{}); err != nil {
		return EventRequestView{}, s.observe("review_event_request", err)
	}
	if educatorID != nil {
		if _, err := s.users.GetWithRole(ctx, *educatorID, models.RoleEducator); err != nil {
			if apperr.KindOf(err) == apperr.KindNotFound {
				err = apperr.ValidationFields(map[string]string{"approved_educator": "educator not found"})
			}
			return EventRequestView{}, s.observe("review_event_request", err)
		}
	}
	r, err := s.eventRequests.Review(ctx, id, status, actor.ID, educatorID)
	if err != nil {
		return EventRequestView{}, s.observe("review_event_request", err)
	}
	s.record(ctx, audit.EventRequestReviewed, actor.ID, nil, educatorID,
		map[string]string{"request_id": id.Hex(), "status": status})
	s.observe("review_event_request", nil)
	return s.requestView(ctx, r)
}

// GetEventRequest is visible to the requester and to institutions.
func (s *Service) GetEventRequest(ctx context.Context, actor authz.Actor, id primitive.ObjectID) (EventRequestView, error) {
	r, err := s.eventRequests.GetByID(ctx, id)
	if err != nil {
		return EventRequestView{}, err
	}
	if err := eventpolicy.Check(actor, eventpolicy.ViewEventRequest, eventpolicy.OnRequest(r)); err != nil {
		return EventRequestView{}, err
	}
	return s.requestView(ctx, r)
}

// MyEventRequests lists the caller's own requests.
func (s *Service) MyEventRequests(ctx context.Context, actor authz.Actor) ([]EventRequestView, error) {
	if err := eventpolicy.Check(actor, eventpolicy.SubmitEventRequest, eventpolicy.Subject{}); err != nil {
		return nil, err
	}
	rs, err := s.eventRequests.List(ctx, eventrequeststore.ListFilter{RequestedBy: &actor.ID})
	if err != nil {
		return nil, err
	}
	return s.requestViews(ctx, rs)
}

// EventRequests lists requests for institutions, optionally by status.
func (s *Service) EventRequests(ctx context.Context, actor authz.Actor, status string) ([]EventRequestView, error) {
	if err := eventpolicy.Check(actor, eventpolicy.ReviewEventRequest, eventpolicy.Subject{}); err != nil {
		return nil, err
	}
	rs, err := s.eventRequests.List(ctx, eventrequeststore.ListFilter{Status: status})
	if err != nil {
		return nil, err
	}
	return s.requestViews(ctx, rs)
}

// completeLinkedRequests is the EventCompleted subscriber that closes the
// requests an event was created from.
func (s *Service) completeLinkedRequests(ctx context.Context, ev EventCompleted) error {
	n, err := s.eventRequests.CompleteForEvent(ctx, ev.EventID)
	if err != nil {
		return err
	}
	if n > 0 {
		s.log.Info("event requests completed",
			zap.String("event_id", ev.EventID.Hex()), zap.Int64("count", n))
		s.record(ctx, audit.EventRequestCompleted, ev.CompletedBy, ref(ev.EventID), nil,
			map[string]string{"count": strconv.FormatInt(n, 10)})
	}
	return nil
}

func (s *Service) requestView(ctx context.Context, r models.EventRequest) (EventRequestView, error) {
	vs, err := s.requestViews(ctx, []models.EventRequest{r})
	if err != nil {
		return EventRequestView{}, err
	}
	return vs[0], nil
}

func (s *Service) requestViews(ctx context.Context, rs []models.EventRequest) ([]EventRequestView, error) {
	var userIDs, resourceIDs []primitive.ObjectID
	for _, r := range rs {
		userIDs = append(userIDs, r.RequestedBy)
		if r.ApprovedEducator != nil {
			userIDs = append(userIDs, *r.ApprovedEducator)
		}
		for _, l := range r.RequestedResources {
			resourceIDs = append(resourceIDs, l.ResourceID)
		}
	}
	lk, err := s.load(ctx, userIDs, resourceIDs)
	if err != nil {
		return nil, err
	}
	out := make([]EventRequestView, 0, len(rs))
	for _, r := range rs {
		v := EventRequestView{
			EventRequest: r,
			Requester:    lk.userRef(r.RequestedBy),
			Resources:    lk.lines(r.RequestedResources),
		}
		if r.ApprovedEducator != nil {
			ed := lk.userRef(*r.ApprovedEducator)
			v.Educator = &ed
		}
		out = append(out, v)
	}
	return out, nil
}

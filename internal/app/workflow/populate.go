package workflow

import (
	"context"
	"time"

	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/lifecycle"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

// ResourceLineView is an assigned or requested line with the resource's
// name filled in.
type ResourceLineView struct {
	ResourceID primitive.ObjectID `json:"resource_id"`
	Name       string             `json:"name"`
	Type       string             `json:"type"`
	Quantity   int                `json:"quantity"`
}

// EducatorView is the assignment with the educator's identity.
type EducatorView struct {
	models.UserRef
	Status      string     `json:"status"`
	RequestedAt time.Time  `json:"requested_at"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`
}

// EventView is an event as returned to clients.
type EventView struct {
	models.Event
	Creator        *models.UserRef    `json:"creator,omitempty"`
	Educator       *EducatorView      `json:"educator,omitempty"`
	Resources      []ResourceLineView `json:"resources"`
	RemainingSeats int                `json:"remaining_seats"`
}

// StudentEventView is an event seen by one registered student.
type StudentEventView struct {
	EventView
	RegistrationStatus string                  `json:"registration_status"`
	Attendance         *models.AttendanceEntry `json:"attendance,omitempty"`
	Feedback           *models.Feedback        `json:"feedback,omitempty"`
}

// RosterEntry is one registered student with their standing.
type RosterEntry struct {
	Student    models.UserRef          `json:"student"`
	Status     string                  `json:"status"`
	Attendance *models.AttendanceEntry `json:"attendance,omitempty"`
}

// FeedbackView is a feedback record with the student's identity.
type FeedbackView struct {
	models.Feedback
	Student models.UserRef `json:"student"`
}

// lookups holds the related documents for a batch of views.
type lookups struct {
	users     map[primitive.ObjectID]models.User
	resources map[primitive.ObjectID]models.Resource
}

// load fetches users and resources in parallel.
func (s *Service) load(ctx context.Context, userIDs, resourceIDs []primitive.ObjectID) (lookups, error) {
	var lk lookups
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		m, err := s.users.GetByIDs(gctx, userIDs)
		lk.users = m
		return err
	})
	g.Go(func() error {
		m, err := s.resources.GetByIDs(gctx, resourceIDs)
		lk.resources = m
		return err
	})
	if err := g.Wait(); err != nil {
		return lookups{}, err
	}
	return lk, nil
}

func (lk lookups) userRef(id primitive.ObjectID) models.UserRef {
	u, ok := lk.users[id]
	if !ok {
		return models.UserRef{ID: id}
	}
	return models.UserRef{ID: u.ID, Name: u.Name, Email: u.Email}
}

func (lk lookups) lines(in []models.ResourceLine) []ResourceLineView {
	out := make([]ResourceLineView, 0, len(in))
	for _, l := range in {
		v := ResourceLineView{ResourceID: l.ResourceID, Quantity: l.Quantity}
		if r, ok := lk.resources[l.ResourceID]; ok {
			v.Name, v.Type = r.Name, r.Type
		}
		out = append(out, v)
	}
	return out
}

func (lk lookups) event(e models.Event) EventView {
	creator := lk.userRef(e.CreatedBy)
	v := EventView{
		Event:          e,
		Creator:        &creator,
		Resources:      lk.lines(e.AssignedResources),
		RemainingSeats: e.RemainingSeats(),
	}
	if a := e.AssignedEducator; a != nil {
		v.Educator = &EducatorView{
			UserRef:     lk.userRef(a.EducatorID),
			Status:      a.Status,
			RequestedAt: a.RequestedAt,
			RespondedAt: a.RespondedAt,
		}
	}
	return v
}

// eventViews populates a batch of events with two queries.
func (s *Service) eventViews(ctx context.Context, events []models.Event) ([]EventView, error) {
	var userIDs, resourceIDs []primitive.ObjectID
	for _, e := range events {
		userIDs = append(userIDs, e.CreatedBy)
		if e.AssignedEducator != nil {
			userIDs = append(userIDs, e.AssignedEducator.EducatorID)
		}
		for _, l := range e.AssignedResources {
			resourceIDs = append(resourceIDs, l.ResourceID)
		}
	}
	lk, err := s.load(ctx, userIDs, resourceIDs)
	if err != nil {
		return nil, err
	}
	out := make([]EventView, 0, len(events))
	for _, e := range events {
		out = append(out, lk.event(e))
	}
	return out, nil
}

func (s *Service) eventView(ctx context.Context, e models.Event) (EventView, error) {
	vs, err := s.eventViews(ctx, []models.Event{e})
	if err != nil {
		return EventView{}, err
	}
	return vs[0], nil
}

func studentView(v EventView, studentID primitive.ObjectID) StudentEventView {
	sv := StudentEventView{
		EventView:          v,
		RegistrationStatus: lifecycle.RegistrationStatus(v.Event, studentID),
	}
	if a, ok := v.Event.AttendanceFor(studentID); ok {
		sv.Attendance = &a
	}
	return sv
}

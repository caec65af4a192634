// internal/app/store/events/eventstore.go
package eventstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/normalize"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/apperr"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/lifecycle"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store persists events. Every write that touches shared state is a single
// guarded update: the invariant lives in the filter, and when the filter
// misses the document is re-read and the lifecycle rules explain why.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("events")}
}

var activeStatuses = bson.A{models.EventUpcoming, models.EventOngoing}

// Create inserts a new upcoming event. List fields are initialised to
// empty arrays so that later $size and $push filters work.
func (s *Store) Create(ctx context.Context, e models.Event) (models.Event, error) {
	now := time.Now().UTC()
	e.ID = primitive.NewObjectID()
	e.Title = normalize.Name(e.Title)
	e.TitleCI = normalize.Folded(e.Title)
	e.Location = normalize.Name(e.Location)
	e.Status = models.EventUpcoming
	e.Version = 0
	if e.AssignedResources == nil {
		e.AssignedResources = []models.ResourceLine{}
	}
	e.RegisteredStudents = []primitive.ObjectID{}
	e.ApprovedStudents = []primitive.ObjectID{}
	e.RejectedStudents = []primitive.ObjectID{}
	e.Attendance = []models.AttendanceEntry{}
	e.Feedbacks = []primitive.ObjectID{}
	e.CreatedAt = now
	e.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, e); err != nil {
		return models.Event{}, fmt.Errorf("insert event: %w", err)
	}
	return e, nil
}

// GetByID loads an event.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Event, error) {
	var e models.Event
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&e); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Event{}, apperr.NotFound("event")
		}
		return models.Event{}, err
	}
	return e, nil
}

// ListFilter narrows List. Zero values match everything.
type ListFilter struct {
	CreatedBy        *primitive.ObjectID
	EducatorID       *primitive.ObjectID
	AssignmentStatus string // with EducatorID: pending | accepted | rejected
	RegisteredID     *primitive.ObjectID
	NotRegisteredID  *primitive.ObjectID
	Statuses         []string
	After            *time.Time // date strictly after
	HoldingResource  *primitive.ObjectID
}

func (f ListFilter) toBSON() bson.M {
	q := bson.M{}
	if f.CreatedBy != nil {
		q["created_by"] = *f.CreatedBy
	}
	if f.EducatorID != nil {
		q["assigned_educator.educator_id"] = *f.EducatorID
		if f.AssignmentStatus != "" {
			q["assigned_educator.status"] = f.AssignmentStatus
		}
	}
	switch {
	case f.RegisteredID != nil:
		q["registered_students"] = *f.RegisteredID
	case f.NotRegisteredID != nil:
		q["registered_students"] = bson.M{"$ne": *f.NotRegisteredID}
	}
	if len(f.Statuses) > 0 {
		q["status"] = bson.M{"$in": f.Statuses}
	}
	if f.After != nil {
		q["date"] = bson.M{"$gt": *f.After}
	}
	if f.HoldingResource != nil {
		q["assigned_resources.resource_id"] = *f.HoldingResource
		if len(f.Statuses) == 0 {
			q["status"] = bson.M{"$ne": models.EventCancelled}
		}
	}
	return q
}

// List returns matching events ordered by date.
func (s *Store) List(ctx context.Context, f ListFilter) ([]models.Event, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, f.toBSON(), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	events := []models.Event{}
	if err := cur.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// Count returns the number of matching events.
func (s *Store) Count(ctx context.Context, f ListFilter) (int64, error) {
	return s.c.CountDocuments(ctx, f.toBSON())
}

// Titles returns event titles keyed by id.
func (s *Store) Titles(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error) {
	out := make(map[primitive.ObjectID]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	opts := options.Find().SetProjection(bson.M{"title": 1})
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var row struct {
			ID    primitive.ObjectID `bson:"_id"`
			Title string             `bson:"title"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		out[row.ID] = row.Title
	}
	return out, cur.Err()
}

// Update applies an institution edit. The capacity guard keeps
// registrations within the new capacity even against a concurrent
// registration.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, p lifecycle.EventPatch) (models.Event, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if p.Title != nil {
		set["title"] = normalize.Name(*p.Title)
		set["title_ci"] = normalize.Folded(*p.Title)
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.Location != nil {
		set["location"] = normalize.Name(*p.Location)
	}
	if p.Date != nil {
		set["date"] = p.Date.UTC()
	}
	filter := bson.M{"_id": id, "status": bson.M{"$in": activeStatuses}}
	if p.Capacity != nil {
		set["capacity"] = *p.Capacity
		filter["$expr"] = bson.M{"$lte": bson.A{bson.M{"$size": "$registered_students"}, *p.Capacity}}
	}

	return s.guarded(ctx, id, filter, bson.M{"$set": set, "$inc": bson.M{"version": 1}}, func(e models.Event) error {
		return lifecycle.ValidatePatch(e, p, time.Now())
	})
}

// Delete removes the event if it is still at the version the caller read,
// returning the deleted document so its reservations can be released.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID, version int64) (models.Event, error) {
	var e models.Event
	err := s.c.FindOneAndDelete(ctx, bson.M{"_id": id, "version": version}).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		if _, gerr := s.GetByID(ctx, id); gerr != nil {
			return models.Event{}, gerr
		}
		return models.Event{}, stale()
	}
	if err != nil {
		return models.Event{}, err
	}
	return e, nil
}

// Restore re-inserts a deleted event, used when releasing its resources failed.
func (s *Store) Restore(ctx context.Context, e models.Event) error {
	_, err := s.c.InsertOne(ctx, e)
	return err
}

// guarded runs a FindOneAndUpdate and, on a miss, re-reads the event and
// asks explain for the domain error. If explain finds nothing wrong the
// event moved between the read and the write and the caller should retry.
func (s *Store) guarded(ctx context.Context, id primitive.ObjectID, filter, update bson.M, explain func(models.Event) error) (models.Event, error) {
	var out models.Event
	err := s.c.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&out)
	if err == nil {
		return out, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return models.Event{}, err
	}

	cur, gerr := s.GetByID(ctx, id)
	if gerr != nil {
		return models.Event{}, gerr
	}
	if xerr := explain(cur); xerr != nil {
		return models.Event{}, xerr
	}
	return models.Event{}, stale()
}

var errStale = errors.New("stale event")

// stale is the ConflictError for a write that lost a race. Callers that
// re-read and retry use IsStale to tell it apart from a rule violation.
func stale() error {
	return &apperr.Error{Kind: apperr.KindConflict, Message: "event changed concurrently; retry", Err: errStale}
}

// IsStale reports whether err came from a lost race rather than a rule.
func IsStale(err error) bool {
	return errors.Is(err, errStale)
}

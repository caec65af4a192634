// internal/app/store/eventrequests/eventrequeststore.go
package eventrequeststore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/normalize"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/apperr"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("event_requests")}
}

// Create stores a pending request. Resource lines are expected to be
// validated by the caller.
func (s *Store) Create(ctx context.Context, r models.EventRequest) (models.EventRequest, error) {
	now := time.Now().UTC()
	r.ID = primitive.NewObjectID()
	r.Title = normalize.Name(r.Title)
	r.Status = models.RequestPending
	if r.RequestedResources == nil {
		r.RequestedResources = []models.ResourceLine{}
	}
	r.ApprovedEducator = nil
	r.EventID = nil
	r.CreatedAt = now
	r.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, r); err != nil {
		return models.EventRequest{}, fmt.Errorf("insert event request: %w", err)
	}
	return r, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.EventRequest, error) {
	var r models.EventRequest
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&r); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.EventRequest{}, apperr.NotFound("event request")
		}
		return models.EventRequest{}, err
	}
	return r, nil
}

// ListFilter narrows List; zero values match everything.
type ListFilter struct {
	RequestedBy *primitive.ObjectID
	Status      string
}

// List returns requests newest first.
func (s *Store) List(ctx context.Context, f ListFilter) ([]models.EventRequest, error) {
	q := bson.M{}
	if f.RequestedBy != nil {
		q["requested_by"] = *f.RequestedBy
	}
	if f.Status != "" {
		q["status"] = f.Status
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.c.Find(ctx, q, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.EventRequest{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Review moves a pending request to approved or rejected. A request that
// is no longer pending is a ConflictError.
func (s *Store) Review(ctx context.Context, id primitive.ObjectID, status string, reviewer primitive.ObjectID, educator *primitive.ObjectID) (models.EventRequest, error) {
	if status != models.RequestApproved && status != models.RequestRejected {
		return models.EventRequest{}, apperr.Validation("status must be %q or %q", models.RequestApproved, models.RequestRejected)
	}
	now := time.Now().UTC()
	set := bson.M{"status": status, "reviewed_by": reviewer, "reviewed_at": now, "updated_at": now}
	if educator != nil && status == models.RequestApproved {
		set["approved_educator"] = *educator
	}

	var out models.EventRequest
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": models.RequestPending},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		cur, gerr := s.GetByID(ctx, id)
		if gerr != nil {
			return models.EventRequest{}, gerr
		}
		return models.EventRequest{}, apperr.Conflict("event request is already %s", cur.Status)
	}
	if err != nil {
		return models.EventRequest{}, err
	}
	return out, nil
}

// LinkEvent records the event created from an approved request. Only one
// event may claim a request.
func (s *Store) LinkEvent(ctx context.Context, id, eventID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.RequestApproved, "event_id": bson.M{"$exists": false}},
		bson.M{"$set": bson.M{"event_id": eventID, "updated_at": time.Now().UTC()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		cur, gerr := s.GetByID(ctx, id)
		if gerr != nil {
			return gerr
		}
		if cur.Status != models.RequestApproved {
			return apperr.Validation("event request must be approved before an event is created from it")
		}
		return apperr.Conflict("an event was already created from this request")
	}
	return nil
}

// UnlinkEvent undoes LinkEvent when event creation fails afterwards.
func (s *Store) UnlinkEvent(ctx context.Context, id, eventID primitive.ObjectID) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "event_id": eventID},
		bson.M{"$unset": bson.M{"event_id": ""}, "$set": bson.M{"updated_at": time.Now().UTC()}})
	return err
}

// CompleteForEvent marks every approved request linked to the event as
// completed and returns how many moved.
func (s *Store) CompleteForEvent(ctx context.Context, eventID primitive.ObjectID) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{"event_id": eventID, "status": models.RequestApproved},
		bson.M{"$set": bson.M{"status": models.RequestCompleted, "updated_at": time.Now().UTC()}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

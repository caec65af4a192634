// internal/app/store/resourcerequests/resourcerequeststore.go
package resourcerequeststore

import (
	"context"
	"errors"
	"fmt"
	"time"

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
	return &Store{c: db.Collection("resource_requests")}
}

func (s *Store) Create(ctx context.Context, r models.ResourceRequest) (models.ResourceRequest, error) {
	r.ID = primitive.NewObjectID()
	r.Status = models.RequestPending
	r.RequestedAt = time.Now().UTC()
	r.ReviewedAt = nil
	r.ReviewedBy = nil
	if _, err := s.c.InsertOne(ctx, r); err != nil {
		return models.ResourceRequest{}, fmt.Errorf("insert resource request: %w", err)
	}
	return r, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.ResourceRequest, error) {
	var r models.ResourceRequest
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&r); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.ResourceRequest{}, apperr.NotFound("resource request")
		}
		return models.ResourceRequest{}, err
	}
	return r, nil
}

// ListFilter narrows List; zero values match everything.
type ListFilter struct {
	EducatorID *primitive.ObjectID
	EventIDs   []primitive.ObjectID
	Status     string
}

// List returns requests newest first.
func (s *Store) List(ctx context.Context, f ListFilter) ([]models.ResourceRequest, error) {
	q := bson.M{}
	if f.EducatorID != nil {
		q["educator_id"] = *f.EducatorID
	}
	if f.EventIDs != nil {
		q["event_id"] = bson.M{"$in": f.EventIDs}
	}
	if f.Status != "" {
		q["status"] = f.Status
	}
	opts := options.Find().SetSort(bson.D{{Key: "requested_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.c.Find(ctx, q, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.ResourceRequest{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Decide claims a pending request for the given outcome. Exactly one
// reviewer can claim a request; everyone else gets a ConflictError.
func (s *Store) Decide(ctx context.Context, id primitive.ObjectID, status string, reviewer primitive.ObjectID) (models.ResourceRequest, error) {
	if status != models.RequestApproved && status != models.RequestRejected {
		return models.ResourceRequest{}, apperr.Validation("status must be %q or %q", models.RequestApproved, models.RequestRejected)
	}
	now := time.Now().UTC()
	var out models.ResourceRequest
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": models.RequestPending},
		bson.M{"$set": bson.M{"status": status, "reviewed_at": now, "reviewed_by": reviewer}},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		cur, gerr := s.GetByID(ctx, id)
		if gerr != nil {
			return models.ResourceRequest{}, gerr
		}
		return models.ResourceRequest{}, apperr.Conflict("resource request is already %s", cur.Status)
	}
	if err != nil {
		return models.ResourceRequest{}, err
	}
	return out, nil
}

// Reopen returns a claimed request to pending after its approval could
// not be applied.
func (s *Store) Reopen(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.RequestApproved},
		bson.M{
			"$set":   bson.M{"status": models.RequestPending},
			"$unset": bson.M{"reviewed_at": "", "reviewed_by": ""},
		})
	return err
}

// internal/app/store/feedback/feedbackstore.go
package feedbackstore

import (
	"context"
	"fmt"

	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/apperr"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store holds feedback records. Records are written once at completion
// and never updated.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("feedback")}
}

// InsertMany writes all records in one ordered batch. The unique
// (event_id, student_id) index turns a second completion attempt into a
// ConflictError.
func (s *Store) InsertMany(ctx context.Context, fb []models.Feedback) error {
	if len(fb) == 0 {
		return nil
	}
	docs := make([]any, len(fb))
	for i := range fb {
		docs[i] = fb[i]
	}
	if _, err := s.c.InsertMany(ctx, docs); err != nil {
		if wafflemongo.IsDup(err) {
			return apperr.Conflict("feedback already recorded for this event")
		}
		return fmt.Errorf("insert feedback: %w", err)
	}
	return nil
}

// DeleteIDs removes records written by a completion that was rolled back.
func (s *Store) DeleteIDs(ctx context.Context, ids []primitive.ObjectID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.c.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	return err
}

// ListByEvent returns the feedback of one event, oldest first.
func (s *Store) ListByEvent(ctx context.Context, eventID primitive.ObjectID) ([]models.Feedback, error) {
	return s.find(ctx, bson.M{"event_id": eventID})
}

// ListByStudent returns everything a student has rated.
func (s *Store) ListByStudent(ctx context.Context, studentID primitive.ObjectID) ([]models.Feedback, error) {
	return s.find(ctx, bson.M{"student_id": studentID})
}

func (s *Store) find(ctx context.Context, q bson.M) ([]models.Feedback, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, q, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Feedback{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

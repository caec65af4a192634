package userstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/normalize"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/apperr"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// ErrDuplicateEmail is returned when attempting to create a user with an email that already exists.
var ErrDuplicateEmail = apperr.ValidationFields(map[string]string{"email": "a user with this email already exists"})

// Create inserts a new user after normalizing & validating fields.
// PasswordHash must already be set.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.Name = normalize.Name(u.Name)
	u.NameCI = normalize.Folded(u.Name)
	u.Email = normalize.Email(u.Email)
	if u.Status == "" {
		u.Status = models.UserActive
	}

	fields := map[string]string{}
	if u.Name == "" {
		fields["name"] = "name is required"
	}
	if u.Email == "" {
		fields["email"] = "email is required"
	}
	if !models.IsValidRole(u.Role) {
		fields["role"] = "role must be one of institution, educator, student"
	}
	if u.Status != models.UserActive && u.Status != models.UserDisabled {
		fields["status"] = `status must be "active" or "disabled"`
	}
	if u.PasswordHash == "" {
		fields["password"] = "password is required"
	}
	if len(fields) > 0 {
		return models.User{}, apperr.ValidationFields(fields)
	}

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id}, "user")
}

// GetWithRole loads a user and requires the given role. A user with a
// different role is reported as not found under the role's name.
func (s *Store) GetWithRole(ctx context.Context, id primitive.ObjectID, role string) (models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id, "role": role}, role)
}

// GetByEmail looks up a user by case-insensitive email.
func (s *Store) GetByEmail(ctx context.Context, email string) (models.User, error) {
	return s.findOne(ctx, bson.M{"email": normalize.Email(email)}, "user")
}

func (s *Store) findOne(ctx context.Context, filter bson.M, entity string) (models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, apperr.NotFound(entity)
		}
		return models.User{}, err
	}
	return u, nil
}

// GetByIDs returns the users with the given IDs keyed by ID. Only the
// public fields are loaded.
func (s *Store) GetByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.User, error) {
	out := make(map[primitive.ObjectID]models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	opts := options.Find().SetProjection(bson.M{"password_hash": 0})
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var u models.User
		if err := cur.Decode(&u); err != nil {
			return nil, err
		}
		out[u.ID] = u
	}
	return out, cur.Err()
}

// ListByRole returns active users with the role, ordered by name.
func (s *Store) ListByRole(ctx context.Context, role string) ([]models.User, error) {
	opts := options.Find().
		SetProjection(bson.M{"password_hash": 0}).
		SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"role": role, "status": models.UserActive}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	users := []models.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// SetStatus enables or disables a user.
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	if status != models.UserActive && status != models.UserDisabled {
		return apperr.ValidationFields(map[string]string{"status": `status must be "active" or "disabled"`})
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("user")
	}
	return nil
}

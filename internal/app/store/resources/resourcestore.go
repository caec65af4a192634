// internal/app/store/resources/resourcestore.go
package resourcestore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
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

// Observer is told about every guarded inventory update.
type Observer interface {
	Inventory(direction, result string)
}

type Store struct {
	c   *mongo.Collection
	obs Observer
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("resources")}
}

// Observe attaches an inventory observer (metrics). Nil detaches.
func (s *Store) Observe(o Observer) { s.obs = o }

func (s *Store) observe(direction, result string) {
	if s.obs != nil {
		s.obs.Inventory(direction, result)
	}
}

// Create inserts a new Resource after checking 0 <= Available <= Total.
func (s *Store) Create(ctx context.Context, r models.Resource) (models.Resource, error) {
	r.Name = normalize.Name(r.Name)
	r.Type = strings.TrimSpace(r.Type)
	if err := lifecycle.ValidateResource(r.Name, r.Type, r.Total, r.Available); err != nil {
		return models.Resource{}, err
	}

	now := time.Now().UTC()
	r.ID = primitive.NewObjectID()
	r.NameCI = normalize.Folded(r.Name)
	r.CreatedAt = now
	r.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, r); err != nil {
		return models.Resource{}, fmt.Errorf("insert resource: %w", err)
	}
	return r, nil
}

// GetByID returns a resource by its ID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Resource, error) {
	var r models.Resource
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&r); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Resource{}, apperr.NotFound("resource")
		}
		return models.Resource{}, err
	}
	return r, nil
}

// GetByIDs returns the resources with the given IDs keyed by ID.
// Missing IDs are simply absent from the map.
func (s *Store) GetByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Resource, error) {
	out := make(map[primitive.ObjectID]models.Resource, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var r models.Resource
		if err := cur.Decode(&r); err != nil {
			return nil, err
		}
		out[r.ID] = r
	}
	return out, cur.Err()
}

// ListFilter narrows List. Zero values match everything.
type ListFilter struct {
	Type   string
	Search string // prefix of the folded name
}

// List returns resources ordered by name.
func (s *Store) List(ctx context.Context, f ListFilter) ([]models.Resource, error) {
	filter := bson.M{}
	if t := strings.TrimSpace(f.Type); t != "" {
		filter["type"] = t
	}
	if q := normalize.Folded(f.Search); q != "" {
		filter["name_ci"] = bson.M{"$regex": "^" + regexp.QuoteMeta(q)}
	}
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}})

	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	resources := []models.Resource{}
	if err := cur.All(ctx, &resources); err != nil {
		return nil, err
	}
	return resources, nil
}

// Update holds the mutable fields of a resource. Nil pointers are left alone.
type Update struct {
	Name        *string
	Type        *string
	Description *string
	Total       *int
}

// Update applies u. A change of Total shifts Available by the same amount,
// so the reserved quantity (Total - Available) is preserved; lowering Total
// below what is reserved is a validation error.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, u Update) (models.Resource, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	fields := map[string]string{}
	if u.Name != nil {
		name := normalize.Name(*u.Name)
		if name == "" {
			fields["name"] = "name cannot be blank"
		}
		set["name"] = name
		set["name_ci"] = normalize.Folded(name)
	}
	if u.Type != nil {
		typ := strings.TrimSpace(*u.Type)
		if typ == "" {
			fields["type"] = "type cannot be blank"
		}
		set["type"] = typ
	}
	if u.Description != nil {
		set["description"] = *u.Description
	}
	if u.Total != nil && *u.Total < 0 {
		fields["total"] = "total cannot be negative"
	}
	if len(fields) > 0 {
		return models.Resource{}, apperr.ValidationFields(fields)
	}

	cur, err := s.GetByID(ctx, id)
	if err != nil {
		return models.Resource{}, err
	}

	filter := bson.M{"_id": id}
	update := bson.M{"$set": set}
	if u.Total != nil && *u.Total != cur.Total {
		delta := *u.Total - cur.Total
		if cur.Available+delta < 0 {
			return models.Resource{}, apperr.ValidationFields(map[string]string{
				"total": fmt.Sprintf("total cannot drop below the %d units currently reserved", cur.Total-cur.Available),
			})
		}
		// Guard on the total we read so a concurrent total change is not lost.
		filter["total"] = cur.Total
		filter["available"] = bson.M{"$gte": -delta}
		set["total"] = *u.Total
		update["$inc"] = bson.M{"available": delta}
	}

	var out models.Resource
	err = s.c.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		if _, gerr := s.GetByID(ctx, id); gerr != nil {
			return models.Resource{}, gerr
		}
		return models.Resource{}, apperr.Conflict("resource %s changed concurrently; retry", cur.Name)
	}
	if err != nil {
		return models.Resource{}, err
	}
	return out, nil
}

// Delete removes a resource that has no units reserved. A resource some
// event still holds is a ConflictError.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{
		"_id":   id,
		"$expr": bson.M{"$eq": bson.A{"$available", "$total"}},
	})
	if err != nil {
		return err
	}
	if res.DeletedCount == 1 {
		return nil
	}
	cur, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return apperr.Conflict("resource %s still has %d units reserved", cur.Name, cur.Total-cur.Available)
}

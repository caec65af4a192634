package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok || rctx == nil {
		rctx = chi.NewRouteContext()
		r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	}
	rctx.URLParams.Add(key, value)
	return r
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts an active user with the given role.
func (f *Fixtures) CreateUser(ctx context.Context, name, email, role string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:           primitive.NewObjectID(),
		Name:         name,
		NameCI:       text.Fold(name),
		Email:        email,
		PasswordHash: "fixture-hash",
		Role:         role,
		Status:       models.UserActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateInstitution creates a test institution user.
func (f *Fixtures) CreateInstitution(ctx context.Context, name, email string) models.User {
	return f.CreateUser(ctx, name, email, models.RoleInstitution)
}

// CreateEducator creates a test educator user.
func (f *Fixtures) CreateEducator(ctx context.Context, name, email string) models.User {
	return f.CreateUser(ctx, name, email, models.RoleEducator)
}

// CreateStudent creates a test student user.
func (f *Fixtures) CreateStudent(ctx context.Context, name, email string) models.User {
	return f.CreateUser(ctx, name, email, models.RoleStudent)
}

// CreateResource inserts a resource with available == total.
func (f *Fixtures) CreateResource(ctx context.Context, name string, total int) models.Resource {
	f.t.Helper()

	now := time.Now().UTC()
	r := models.Resource{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		Type:      "equipment",
		Total:     total,
		Available: total,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("resources").InsertOne(ctx, r); err != nil {
		f.t.Fatalf("failed to create test resource: %v", err)
	}
	return r
}

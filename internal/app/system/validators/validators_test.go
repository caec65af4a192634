package validators_test

import (
	"testing"
	"time"

	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/validators"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("First EnsureAll failed: %v", err)
	}
	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("Second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesCollections(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		t.Fatalf("ListCollectionNames failed: %v", err)
	}
	collMap := make(map[string]bool)
	for _, name := range names {
		collMap[name] = true
	}

	for _, expected := range []string{
		"users", "resources", "events", "event_requests",
		"resource_requests", "feedback", "audit_events",
	} {
		if !collMap[expected] {
			t.Errorf("expected collection %q to exist", expected)
		}
	}
}

func TestDocumentValidation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	now := time.Now().UTC()
	validUser := bson.M{
		"name": "Ada", "name_ci": "ada", "email": "ada@example.com",
		"password_hash": "x", "role": "educator", "status": "active",
	}

	tests := []struct {
		name    string
		coll    string
		doc     bson.M
		wantErr bool
	}{
		{"valid user", "users", validUser, false},
		{"user missing fields", "users", bson.M{"name": "x"}, true},
		{"user unknown role", "users", bson.M{
			"name": "Ada", "email": "a@b.c", "password_hash": "x", "role": "admin", "status": "active",
		}, true},
		{"valid resource", "resources", bson.M{
			"name": "Projector", "name_ci": "projector", "type": "equipment", "total": 10, "available": 10,
		}, false},
		{"negative availability", "resources", bson.M{
			"name": "Projector", "name_ci": "projector", "type": "equipment", "total": 10, "available": -1,
		}, true},
		{"feedback rating too high", "feedback", bson.M{
			"event_id": primitive.NewObjectID(), "student_id": primitive.NewObjectID(), "rating": 6, "created_at": now,
		}, true},
		{"valid feedback", "feedback", bson.M{
			"event_id": primitive.NewObjectID(), "student_id": primitive.NewObjectID(), "rating": 5, "created_at": now,
		}, false},
		{"event unknown status", "events", bson.M{
			"title": "Fair", "date": now, "location": "Hall", "capacity": 5,
			"created_by": primitive.NewObjectID(), "status": "archived",
			"assigned_resources": bson.A{}, "registered_students": bson.A{},
			"approved_students": bson.A{}, "registered_students_attendance": bson.A{}, "version": 0,
		}, true},
		{"resource request zero quantity", "resource_requests", bson.M{
			"event_id": primitive.NewObjectID(), "educator_id": primitive.NewObjectID(),
			"requested_resources": bson.A{bson.M{"resource_id": primitive.NewObjectID(), "quantity": 0}},
			"status": "pending", "requested_at": now,
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := db.Collection(tt.coll).InsertOne(ctx, tt.doc)
			if tt.wantErr && err == nil {
				t.Errorf("expected validation error inserting into %s", tt.coll)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("insert into %s failed: %v", tt.coll, err)
			}
		})
	}
}

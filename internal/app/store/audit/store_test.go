package audit_test

import (
	"testing"
	"time"

	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/store/audit"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Log_SetsDefaults(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	before := time.Now().Add(-time.Second)
	if err := store.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		IP:        "192.168.1.1",
		Success:   true,
	}); err != nil {
		t.Fatalf("Log failed: %v", err)
	}
	after := time.Now().Add(time.Second)

	events, err := store.GetRecent(ctx, 10)
	if err != nil {
		t.Fatalf("GetRecent failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].ID.IsZero() {
		t.Error("expected ID to be generated")
	}
	if events[0].Timestamp.Before(before) || events[0].Timestamp.After(after) {
		t.Errorf("expected timestamp to be set to current time, got %v", events[0].Timestamp)
	}
}

func TestStore_GetByEvent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	eventA := primitive.NewObjectID()
	eventB := primitive.NewObjectID()
	actor := primitive.NewObjectID()

	for _, et := range []string{audit.EventEventCreated, audit.EventStudentRegistered, audit.EventEventCompleted} {
		if err := store.Log(ctx, audit.Event{
			Category: audit.CategoryWorkflow, EventType: et, ActorID: &actor, EventID: &eventA, Success: true,
		}); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}
	if err := store.Log(ctx, audit.Event{
		Category: audit.CategoryWorkflow, EventType: audit.EventEventCreated, ActorID: &actor, EventID: &eventB, Success: true,
	}); err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	events, err := store.GetByEvent(ctx, eventA, 10)
	if err != nil {
		t.Fatalf("GetByEvent failed: %v", err)
	}
	if len(events) != 3 {
		t.Errorf("expected 3 events for eventA, got %d", len(events))
	}

	n, err := store.CountByFilter(ctx, audit.QueryFilter{ActorID: &actor, Category: audit.CategoryWorkflow})
	if err != nil {
		t.Fatalf("CountByFilter failed: %v", err)
	}
	if n != 4 {
		t.Errorf("expected 4 workflow events for actor, got %d", n)
	}
}

func TestStore_Query_Filters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := primitive.NewObjectID()
	old := time.Now().Add(-48 * time.Hour)
	recent := time.Now()

	seed := []audit.Event{
		{Category: audit.CategoryAuth, EventType: audit.EventLoginSuccess, UserID: &user, Success: true, Timestamp: old},
		{Category: audit.CategoryAuth, EventType: audit.EventLoginFailedWrongPassword, UserID: &user, Timestamp: recent},
		{Category: audit.CategoryWorkflow, EventType: audit.EventStudentRegistered, UserID: &user, Success: true, Timestamp: recent},
	}
	for _, e := range seed {
		if err := store.Log(ctx, e); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	since := time.Now().Add(-time.Hour)
	tests := []struct {
		name   string
		filter audit.QueryFilter
		want   int
	}{
		{"by user", audit.QueryFilter{UserID: &user}, 3},
		{"by category", audit.QueryFilter{Category: audit.CategoryAuth}, 2},
		{"by type", audit.QueryFilter{EventType: audit.EventStudentRegistered}, 1},
		{"since", audit.QueryFilter{StartTime: &since}, 2},
		{"limit", audit.QueryFilter{UserID: &user, Limit: 1}, 1},
		{"offset", audit.QueryFilter{UserID: &user, Offset: 2}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := store.Query(ctx, tt.filter)
			if err != nil {
				t.Fatalf("Query failed: %v", err)
			}
			if len(events) != tt.want {
				t.Errorf("got %d events, want %d", len(events), tt.want)
			}
		})
	}

	failed, err := store.GetFailedLogins(ctx, since, 10)
	if err != nil {
		t.Fatalf("GetFailedLogins failed: %v", err)
	}
	if len(failed) != 1 {
		t.Errorf("expected 1 failed login, got %d", len(failed))
	}
}

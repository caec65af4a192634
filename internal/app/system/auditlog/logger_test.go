package auditlog_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/store/audit"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/auditlog"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_NilLogger(t *testing.T) {
	var logger *auditlog.Logger
	ctx, cancel := testutil.TestContext()
	defer cancel()
	req := httptest.NewRequest("GET", "/", nil)

	// These should all be no-ops, not panic
	logger.Log(ctx, audit.Event{EventType: "test"})
	logger.LoginSuccess(ctx, req, primitive.NewObjectID(), "a@example.com")
	logger.Workflow(ctx, auditlog.Action{Type: audit.EventEventCreated, Actor: primitive.NewObjectID()})
}

func TestLogger_Destinations(t *testing.T) {
	tests := []struct {
		setting string
		wantDB  int
		wantZap int
	}{
		{"all", 1, 1},
		{"db", 1, 0},
		{"log", 0, 1},
		{"off", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.setting, func(t *testing.T) {
			db := testutil.SetupTestDB(t)
			store := audit.New(db)
			core, logs := observer.New(zapcore.InfoLevel)
			ctx, cancel := testutil.TestContext()
			defer cancel()

			actor := primitive.NewObjectID()
			logger := auditlog.New(store, zap.New(core), auditlog.Config{Auth: "off", Workflow: tt.setting})
			logger.Workflow(ctx, auditlog.Action{Type: audit.EventStudentRegistered, Actor: actor})

			n, err := store.CountByFilter(ctx, audit.QueryFilter{ActorID: &actor})
			if err != nil {
				t.Fatalf("CountByFilter failed: %v", err)
			}
			if int(n) != tt.wantDB {
				t.Errorf("db events: got %d, want %d", n, tt.wantDB)
			}
			if got := logs.FilterMessage("audit event").Len(); got != tt.wantZap {
				t.Errorf("zap entries: got %d, want %d", got, tt.wantZap)
			}
		})
	}
}

func TestLogger_WorkflowUsesRequestInfo(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{Workflow: "db"})
	actor := primitive.NewObjectID()
	eventID := primitive.NewObjectID()

	var handled bool
	h := auditlog.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handled = true
		logger.Workflow(r.Context(), auditlog.Action{
			Type:    audit.EventEventCreated,
			Actor:   actor,
			Event:   &eventID,
			Details: map[string]string{"title": "Science Fair"},
		})
	}))

	req := httptest.NewRequest("POST", "/api/events", nil).WithContext(ctx)
	req.Header.Set("X-Real-IP", "10.0.0.7")
	req.Header.Set("User-Agent", "TestBrowser/1.0")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if !handled {
		t.Fatal("handler not called")
	}

	events, err := store.GetByEvent(ctx, eventID, 10)
	if err != nil {
		t.Fatalf("GetByEvent failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	e := events[0]
	if e.IP != "10.0.0.7" {
		t.Errorf("IP: got %q, want %q", e.IP, "10.0.0.7")
	}
	if e.UserAgent != "TestBrowser/1.0" {
		t.Errorf("UserAgent: got %q", e.UserAgent)
	}
	if e.Category != audit.CategoryWorkflow || e.Details["title"] != "Science Fair" {
		t.Errorf("unexpected event: %+v", e)
	}
}

func TestLogger_LoginFailedUserNotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{Auth: "db"})
	req := httptest.NewRequest("POST", "/api/auth/login", nil)
	logger.LoginFailedUserNotFound(ctx, req, "unknown@example.com")

	events, err := store.GetRecent(ctx, 10)
	if err != nil {
		t.Fatalf("GetRecent failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	event := events[0]
	if event.EventType != audit.EventLoginFailedUserNotFound {
		t.Errorf("EventType: got %q, want %q", event.EventType, audit.EventLoginFailedUserNotFound)
	}
	if event.Success {
		t.Error("expected Success to be false")
	}
	if event.FailureReason != "user not found" {
		t.Errorf("FailureReason: got %q, want %q", event.FailureReason, "user not found")
	}
}

func TestLogger_Logout(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{Auth: "db"})
	logger.Logout(ctx, httptest.NewRequest("POST", "/api/auth/logout", nil), userID.Hex())

	events, err := store.GetByUser(ctx, userID, 10)
	if err != nil {
		t.Fatalf("GetByUser failed: %v", err)
	}
	if len(events) != 1 || events[0].EventType != audit.EventLogout {
		t.Fatalf("expected one logout event, got %+v", events)
	}
}

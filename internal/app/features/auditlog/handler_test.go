package auditlog_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/features/auditlog"
	uierrors "github.com/M-Jeevanantham/edu-event-management-erp/internal/app/features/errors"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/store/audit"
	sysaudit "github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/auditlog"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/authz"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/workflow"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/models"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/testutil"
	"go.uber.org/zap"
)

type page struct {
	Items []struct {
		EventType string `json:"event_type"`
		EventID   string `json:"event_id"`
		Actor     string `json:"actor"`
	} `json:"items"`
	Page       int   `json:"page"`
	TotalPages int   `json:"total_pages"`
	Total      int64 `json:"total"`
}

func TestAuditTrail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	trail := sysaudit.New(audit.New(db), logger, sysaudit.Config{Auth: "db", Workflow: "db"})
	svc := workflow.New(db, trail, nil, logger)
	h := auditlog.NewHandler(db, uierrors.NewErrorLogger(logger), logger)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	inst := fixtures.CreateInstitution(ctx, "Campus", "campus@example.com")
	other := fixtures.CreateInstitution(ctx, "Other", "other@example.com")
	student := fixtures.CreateStudent(ctx, "Stu", "stu@example.com")

	ev, err := svc.CreateEvent(ctx, authz.Actor{ID: inst.ID, Role: inst.Role, Name: inst.Name}, workflow.EventInput{
		Title:    "Robotics Day",
		Date:     time.Now().AddDate(0, 0, 10),
		Location: "Lab 1",
		Capacity: 20,
	})
	if err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}
	if _, err := svc.Register(ctx, authz.Actor{ID: student.ID, Role: student.Role, Name: student.Name}, ev.ID); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	eventTrail := func(user models.User, query string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("GET", "/events/"+ev.ID.Hex()+query, nil)
		req = testutil.WithUser(req, testutil.AsTestUser(user))
		req = testutil.WithChiURLParam(req, "id", ev.ID.Hex())
		rec := httptest.NewRecorder()
		h.ServeEvent(rec, req)
		return rec
	}

	tests := []struct {
		name   string
		user   models.User
		query  string
		status int
	}{
		{"creator", inst, "", http.StatusOK},
		{"other institution", other, "", http.StatusForbidden},
		{"student", student, "", http.StatusForbidden},
		{"bad page", inst, "?page=0", http.StatusBadRequest},
		{"bad date", inst, "?start_date=yesterday", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := eventTrail(tt.user, tt.query); rec.Code != tt.status {
				t.Errorf("got %d, want %d: %s", rec.Code, tt.status, rec.Body.String())
			}
		})
	}

	var got page
	if err := json.Unmarshal(eventTrail(inst, "").Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Total < 2 || got.Page != 1 || got.TotalPages != 1 {
		t.Fatalf("unexpected page: %+v", got)
	}
	types := map[string]bool{}
	for _, it := range got.Items {
		if it.EventID != ev.ID.Hex() {
			t.Errorf("item for another event: %+v", it)
		}
		types[it.EventType] = true
	}
	if !types[audit.EventEventCreated] || !types[audit.EventStudentRegistered] {
		t.Errorf("missing workflow entries: %v", types)
	}

	// Category filter narrows to nothing: no auth events are tied to an event.
	var authOnly page
	if err := json.Unmarshal(eventTrail(inst, "?category=auth").Body.Bytes(), &authOnly); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if authOnly.Total != 0 {
		t.Errorf("auth-only total = %d, want 0", authOnly.Total)
	}

	mine := httptest.NewRecorder()
	h.ServeMine(mine, testutil.WithUser(httptest.NewRequest("GET", "/me", nil), testutil.AsTestUser(student)))
	if mine.Code != http.StatusOK {
		t.Fatalf("mine: got %d", mine.Code)
	}
	var own page
	if err := json.Unmarshal(mine.Body.Bytes(), &own); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if own.Total != 1 || own.Items[0].EventType != audit.EventStudentRegistered || own.Items[0].Actor != "Stu" {
		t.Errorf("student's own trail: %+v", own)
	}
}

func TestServeMine_Unauthenticated(t *testing.T) {
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	h := auditlog.NewHandler(db, uierrors.NewErrorLogger(logger), logger)

	rec := httptest.NewRecorder()
	h.ServeMine(rec, httptest.NewRequest("GET", "/me", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("got %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

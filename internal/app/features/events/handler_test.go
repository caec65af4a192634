package events_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	uierrors "github.com/M-Jeevanantham/edu-event-management-erp/internal/app/features/errors"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/features/events"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/auth"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/authz"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/indexes"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/respond"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/workflow"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/models"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/testutil"
	"go.uber.org/zap"
)

// harness drives the events router the way a client would: bearer tokens
// through LoadSessionUser, JSON bodies, chi path params.
type harness struct {
	t      *testing.T
	ctx    context.Context
	svc    *workflow.Service
	fx     *testutil.Fixtures
	tokens *auth.TokenManager
	router http.Handler
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	t.Cleanup(cancel)
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	logger := zap.NewNop()
	tokens, err := auth.NewTokenManager("test-jwt-secret-for-testing", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager failed: %v", err)
	}
	sm, err := auth.NewSessionManager("test-session-key-for-testing-only", "test-session", "", tokens, false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}

	svc := workflow.New(db, nil, nil, logger)
	h := events.NewHandler(svc, uierrors.NewErrorLogger(logger), logger)
	return &harness{
		t:      t,
		ctx:    ctx,
		svc:    svc,
		fx:     testutil.NewFixtures(t, db),
		tokens: tokens,
		router: sm.LoadSessionUser(events.Routes(h, sm)),
	}
}

func (h *harness) do(method, path string, as *models.User, body any) *httptest.ResponseRecorder {
	h.t.Helper()
	req := testutil.NewJSONRequest(h.t, method, path, body)
	if body == nil {
		req = httptest.NewRequest(method, path, nil)
	}
	if as != nil {
		token, _, err := h.tokens.Issue(*as)
		if err != nil {
			h.t.Fatalf("Issue failed: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func actor(u models.User) authz.Actor {
	return authz.Actor{ID: u.ID, Role: u.Role, Name: u.Name}
}

func futureDate() string {
	return time.Now().AddDate(0, 1, 0).Format("2006-01-02")
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

func TestRoutes_RequireSignIn(t *testing.T) {
	h := newHarness(t)
	rec := h.do("GET", "/", nil, nil)
	expectStatus(t, rec, http.StatusUnauthorized)
}

func TestHandleCreate(t *testing.T) {
	h := newHarness(t)
	inst := h.fx.CreateInstitution(h.ctx, "Campus", "campus@example.com")
	student := h.fx.CreateStudent(h.ctx, "Sam", "sam@example.com")
	projector := h.fx.CreateResource(h.ctx, "Projector", 10)

	base := func() map[string]any {
		return map[string]any{
			"title": "Robotics Day", "date": futureDate(), "location": "Hall A", "capacity": 2,
			"resources": []map[string]any{{"resource_id": projector.ID.Hex(), "quantity": 4}},
		}
	}

	tests := []struct {
		name   string
		as     models.User
		mutate func(map[string]any)
		want   int
	}{
		{"institution", inst, func(map[string]any) {}, http.StatusCreated},
		{"student forbidden", student, func(map[string]any) {}, http.StatusForbidden},
		{"past date", inst, func(b map[string]any) { b["date"] = "2001-01-01" }, http.StatusBadRequest},
		{"malformed date", inst, func(b map[string]any) { b["date"] = "soon" }, http.StatusBadRequest},
		{"zero capacity", inst, func(b map[string]any) { b["capacity"] = 0 }, http.StatusBadRequest},
		{"bad resource id", inst, func(b map[string]any) {
			b["resources"] = []map[string]any{{"resource_id": "nope", "quantity": 1}}
		}, http.StatusBadRequest},
		{"over inventory", inst, func(b map[string]any) {
			b["resources"] = []map[string]any{{"resource_id": projector.ID.Hex(), "quantity": 100}}
		}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := base()
			tt.mutate(body)
			user := tt.as
			rec := h.do("POST", "/", &user, body)
			expectStatus(t, rec, tt.want)
		})
	}

	res, err := h.svc.GetResource(h.ctx, actor(inst), projector.ID)
	if err != nil {
		t.Fatalf("GetResource failed: %v", err)
	}
	if res.Available != 6 {
		t.Errorf("available after one successful create: got %d, want 6", res.Available)
	}
}

func TestEventFlow(t *testing.T) {
	h := newHarness(t)
	inst := h.fx.CreateInstitution(h.ctx, "Campus", "campus@example.com")
	edu := h.fx.CreateEducator(h.ctx, "Ed", "ed@example.com")
	alice := h.fx.CreateStudent(h.ctx, "Alice", "alice@example.com")
	bob := h.fx.CreateStudent(h.ctx, "Bob", "bob@example.com")

	rec := h.do("POST", "/", &inst, map[string]any{
		"title": "Science Fair", "date": futureDate(), "location": "Gym", "capacity": 5,
	})
	expectStatus(t, rec, http.StatusCreated)
	var created workflow.EventView
	testutil.DecodeJSON(t, rec, &created)
	id := created.ID.Hex()

	rec = h.do("PUT", "/"+id+"/educator", &inst, map[string]string{"educator_id": edu.ID.Hex()})
	expectStatus(t, rec, http.StatusOK)
	if _, err := h.svc.RespondAssignment(h.ctx, actor(edu), created.ID, models.AssignmentAccepted); err != nil {
		t.Fatalf("RespondAssignment failed: %v", err)
	}

	for _, s := range []models.User{alice, bob} {
		if _, err := h.svc.Register(h.ctx, actor(s), created.ID); err != nil {
			t.Fatalf("Register failed: %v", err)
		}
	}

	expectStatus(t, h.do("POST", "/"+id+"/registrations/"+alice.ID.Hex()+"/approve", &edu, nil), http.StatusOK)
	expectStatus(t, h.do("POST", "/"+id+"/registrations/"+bob.ID.Hex()+"/reject", &inst, nil), http.StatusOK)
	expectStatus(t, h.do("POST", "/"+id+"/registrations/"+alice.ID.Hex()+"/approve", &edu, nil), http.StatusBadRequest)

	rec = h.do("GET", "/"+id+"/registrations", &edu, nil)
	expectStatus(t, rec, http.StatusOK)
	var roster []workflow.RosterEntry
	testutil.DecodeJSON(t, rec, &roster)
	if len(roster) != 2 {
		t.Fatalf("roster: got %d entries, want 2", len(roster))
	}

	mark := map[string]any{"attendance": []map[string]any{
		{"student_id": alice.ID.Hex(), "present": true},
		{"student_id": bob.ID.Hex(), "present": true}, // rejected: skipped
	}}
	rec = h.do("POST", "/"+id+"/attendance", &edu, mark)
	expectStatus(t, rec, http.StatusOK)
	var marked workflow.AttendanceResult
	testutil.DecodeJSON(t, rec, &marked)
	if len(marked.Recorded) != 1 || marked.Recorded[0].StudentID != alice.ID {
		t.Errorf("recorded: %+v", marked.Recorded)
	}

	rec = h.do("POST", "/"+id+"/attendance", &edu, mark)
	expectStatus(t, rec, http.StatusBadRequest)
	var dup respond.ErrorBody
	testutil.DecodeJSON(t, rec, &dup)
	if dup.Error != "already_marked" || len(dup.IDs) != 1 || dup.IDs[0] != alice.ID.Hex() {
		t.Errorf("unexpected error body: %+v", dup)
	}

	// Feedback is scoped to approved students.
	expectStatus(t, h.do("POST", "/"+id+"/complete", &edu, map[string]any{"feedback": []map[string]any{
		{"student_id": bob.ID.Hex(), "rating": 4},
	}}), http.StatusBadRequest)
	// Only the accepted educator completes.
	expectStatus(t, h.do("POST", "/"+id+"/complete", &inst, map[string]any{"feedback": []any{}}), http.StatusForbidden)

	rec = h.do("POST", "/"+id+"/complete", &edu, map[string]any{"feedback": []map[string]any{
		{"student_id": alice.ID.Hex(), "rating": 5, "comment": "<b>Great</b> day"},
	}})
	expectStatus(t, rec, http.StatusOK)
	var done workflow.EventView
	testutil.DecodeJSON(t, rec, &done)
	if done.Status != models.EventCompleted {
		t.Errorf("status: got %q, want %q", done.Status, models.EventCompleted)
	}

	rec = h.do("GET", "/"+id+"/feedback", &edu, nil)
	expectStatus(t, rec, http.StatusOK)
	var feedback []workflow.FeedbackView
	testutil.DecodeJSON(t, rec, &feedback)
	if len(feedback) != 1 || feedback[0].Comment != "Great day" {
		t.Errorf("feedback: %+v", feedback)
	}
}

func TestCancelAndDelete(t *testing.T) {
	h := newHarness(t)
	inst := h.fx.CreateInstitution(h.ctx, "Campus", "campus@example.com")
	other := h.fx.CreateInstitution(h.ctx, "Other", "other@example.com")
	chairs := h.fx.CreateResource(h.ctx, "Chairs", 10)

	rec := h.do("POST", "/", &inst, map[string]any{
		"title": "Assembly", "date": futureDate(), "location": "Hall", "capacity": 30,
		"resources": []map[string]any{{"resource_id": chairs.ID.Hex(), "quantity": 7}},
	})
	expectStatus(t, rec, http.StatusCreated)
	var created workflow.EventView
	testutil.DecodeJSON(t, rec, &created)
	id := created.ID.Hex()

	expectStatus(t, h.do("PUT", "/"+id+"/resources", &inst, map[string]any{
		"resources": []map[string]any{{"resource_id": chairs.ID.Hex(), "quantity": 9}},
	}), http.StatusOK)

	expectStatus(t, h.do("POST", "/"+id+"/cancel", &other, nil), http.StatusForbidden)
	expectStatus(t, h.do("POST", "/"+id+"/cancel", &inst, nil), http.StatusOK)
	expectStatus(t, h.do("POST", "/"+id+"/start", &inst, nil), http.StatusConflict)

	res, err := h.svc.GetResource(h.ctx, actor(inst), chairs.ID)
	if err != nil {
		t.Fatalf("GetResource failed: %v", err)
	}
	if res.Available != 10 {
		t.Errorf("available after cancel: got %d, want 10", res.Available)
	}

	expectStatus(t, h.do("DELETE", "/"+id, &inst, nil), http.StatusOK)
	expectStatus(t, h.do("GET", "/"+id, &inst, nil), http.StatusNotFound)
	expectStatus(t, h.do("GET", "/not-an-id", &inst, nil), http.StatusBadRequest)
}

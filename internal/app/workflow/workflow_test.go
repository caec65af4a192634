package workflow_test

import (
	"context"
	"testing"
	"time"

	feedbackstore "github.com/M-Jeevanantham/edu-event-management-erp/internal/app/store/feedback"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/authz"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/indexes"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/workflow"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/apperr"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/lifecycle"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/models"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap/zaptest"
)

type env struct {
	db  *mongo.Database
	svc *workflow.Service
	fx  *testutil.Fixtures
	ctx context.Context

	inst, other, edu, edu2 authz.Actor
	alice, bob, carol      authz.Actor
}

func actor(u models.User) authz.Actor {
	return authz.Actor{ID: u.ID, Role: u.Role, Name: u.Name}
}

func setup(t *testing.T) *env {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	t.Cleanup(cancel)
	require.NoError(t, indexes.EnsureAll(ctx, db))

	fx := testutil.NewFixtures(t, db)
	return &env{
		db:    db,
		svc:   workflow.New(db, nil, nil, zaptest.NewLogger(t)),
		fx:    fx,
		ctx:   ctx,
		inst:  actor(fx.CreateInstitution(ctx, "Springfield High", "office@springfield.test")),
		other: actor(fx.CreateInstitution(ctx, "Shelbyville High", "office@shelbyville.test")),
		edu:   actor(fx.CreateEducator(ctx, "Edna Krabappel", "edna@springfield.test")),
		edu2:  actor(fx.CreateEducator(ctx, "Dewey Largo", "dewey@springfield.test")),
		alice: actor(fx.CreateStudent(ctx, "Alice", "alice@springfield.test")),
		bob:   actor(fx.CreateStudent(ctx, "Bob", "bob@springfield.test")),
		carol: actor(fx.CreateStudent(ctx, "Carol", "carol@springfield.test")),
	}
}

func (e *env) event(t *testing.T, capacity int, lines ...models.ResourceLine) workflow.EventView {
	t.Helper()
	v, err := e.svc.CreateEvent(e.ctx, e.inst, workflow.EventInput{
		Title:     "Science Fair",
		Date:      time.Now().Add(7 * 24 * time.Hour),
		Location:  "Gym",
		Capacity:  capacity,
		Resources: lines,
	})
	require.NoError(t, err)
	return v
}

func (e *env) available(t *testing.T, id primitive.ObjectID) int {
	t.Helper()
	r, err := e.svc.GetResource(e.ctx, e.inst, id)
	require.NoError(t, err)
	return r.Available
}

// A resource of 10: reserving 4 leaves 6, a request for 7 fails without
// touching inventory, and cancelling the first event restores 10.
func TestInventoryScenario(t *testing.T) {
	e := setup(t)
	res := e.fx.CreateResource(e.ctx, "Projector", 10)

	first := e.event(t, 20, models.ResourceLine{ResourceID: res.ID, Quantity: 4})
	assert.Equal(t, 6, e.available(t, res.ID))

	_, err := e.svc.CreateEvent(e.ctx, e.inst, workflow.EventInput{
		Title: "Art Show", Date: time.Now().Add(48 * time.Hour), Location: "Hall", Capacity: 5,
		Resources: []models.ResourceLine{{ResourceID: res.ID, Quantity: 7}},
	})
	require.ErrorIs(t, err, apperr.ErrInsufficientAvailability)
	assert.Equal(t, 6, e.available(t, res.ID))

	_, err = e.svc.CancelEvent(e.ctx, e.inst, first.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, e.available(t, res.ID))
}

func TestCreateEvent_AllOrNothing(t *testing.T) {
	e := setup(t)
	a := e.fx.CreateResource(e.ctx, "Chairs", 50)
	b := e.fx.CreateResource(e.ctx, "Tables", 2)

	_, err := e.svc.CreateEvent(e.ctx, e.inst, workflow.EventInput{
		Title: "Assembly", Date: time.Now().Add(24 * time.Hour), Location: "Hall", Capacity: 30,
		Resources: []models.ResourceLine{{ResourceID: a.ID, Quantity: 30}, {ResourceID: b.ID, Quantity: 3}},
	})
	require.ErrorIs(t, err, apperr.ErrInsufficientAvailability)
	assert.Equal(t, 50, e.available(t, a.ID), "first line must be rolled back")
	assert.Equal(t, 2, e.available(t, b.ID))
}

func TestCreateEvent_Validation(t *testing.T) {
	e := setup(t)

	tests := []struct {
		name string
		in   workflow.EventInput
	}{
		{"past date", workflow.EventInput{Title: "T", Date: time.Now().Add(-time.Hour), Location: "L", Capacity: 1}},
		{"no title", workflow.EventInput{Date: time.Now().Add(time.Hour), Location: "L", Capacity: 1}},
		{"zero capacity", workflow.EventInput{Title: "T", Date: time.Now().Add(time.Hour), Location: "L"}},
		{"bad quantity", workflow.EventInput{Title: "T", Date: time.Now().Add(time.Hour), Location: "L", Capacity: 1,
			Resources: []models.ResourceLine{{ResourceID: primitive.NewObjectID(), Quantity: 0}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.svc.CreateEvent(e.ctx, e.inst, tt.in)
			assert.ErrorIs(t, err, apperr.ErrValidation)
		})
	}

	_, err := e.svc.CreateEvent(e.ctx, e.alice, workflow.EventInput{Title: "T", Date: time.Now().Add(time.Hour), Location: "L", Capacity: 1})
	assert.ErrorIs(t, err, apperr.ErrAuthorization)
}

func TestAssignResources(t *testing.T) {
	e := setup(t)
	mic := e.fx.CreateResource(e.ctx, "Microphone", 5)
	cam := e.fx.CreateResource(e.ctx, "Camera", 3)
	ev := e.event(t, 10, models.ResourceLine{ResourceID: mic.ID, Quantity: 2})

	v, err := e.svc.AssignResources(e.ctx, e.inst, ev.ID, []models.ResourceLine{
		{ResourceID: mic.ID, Quantity: 4},
		{ResourceID: cam.ID, Quantity: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, 4, v.QuantityOf(mic.ID))
	assert.Equal(t, 1, e.available(t, mic.ID))
	assert.Equal(t, 2, e.available(t, cam.ID))

	// Asking for more than exists changes nothing.
	_, err = e.svc.AssignResources(e.ctx, e.inst, ev.ID, []models.ResourceLine{
		{ResourceID: mic.ID, Quantity: 1},
		{ResourceID: cam.ID, Quantity: 9},
	})
	require.ErrorIs(t, err, apperr.ErrInsufficientAvailability)
	assert.Equal(t, 1, e.available(t, mic.ID))

	v, err = e.svc.AssignResources(e.ctx, e.inst, ev.ID, []models.ResourceLine{{ResourceID: mic.ID, Quantity: 0}})
	require.NoError(t, err)
	assert.Equal(t, 0, v.QuantityOf(mic.ID))
	assert.Equal(t, 5, e.available(t, mic.ID))

	_, err = e.svc.AssignResources(e.ctx, e.other, ev.ID, nil)
	assert.ErrorIs(t, err, apperr.ErrAuthorization)
}

func TestRegistration_CapacityTwo(t *testing.T) {
	e := setup(t)
	ev := e.event(t, 2)

	r, err := e.svc.Register(e.ctx, e.alice, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, r.RemainingSeats)
	assert.Equal(t, lifecycle.RegistrationPending, r.Status)

	r, err = e.svc.Register(e.ctx, e.bob, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, r.RemainingSeats)

	_, err = e.svc.Register(e.ctx, e.carol, ev.ID)
	assert.ErrorIs(t, err, apperr.ErrCapacityExceeded)
	_, err = e.svc.Register(e.ctx, e.alice, ev.ID)
	assert.ErrorIs(t, err, apperr.ErrDuplicateRegistration)
	_, err = e.svc.Register(e.ctx, e.edu, ev.ID)
	assert.ErrorIs(t, err, apperr.ErrAuthorization)
}

func TestEducatorAssignment(t *testing.T) {
	e := setup(t)
	ev := e.event(t, 5)

	_, err := e.svc.AssignEducator(e.ctx, e.inst, ev.ID, e.alice.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound, "students cannot be assigned")

	_, err = e.svc.AssignEducator(e.ctx, e.inst, ev.ID, e.edu.ID)
	require.NoError(t, err)

	pending, err := e.svc.PendingAssignments(e.ctx, e.edu)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	_, err = e.svc.RespondAssignment(e.ctx, e.edu2, ev.ID, models.AssignmentAccepted)
	assert.ErrorIs(t, err, apperr.ErrAuthorization)
	_, err = e.svc.RespondAssignment(e.ctx, e.edu, ev.ID, "maybe")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	v, err := e.svc.RespondAssignment(e.ctx, e.edu, ev.ID, models.AssignmentRejected)
	require.NoError(t, err)
	require.NotNil(t, v.Educator)
	assert.Equal(t, models.AssignmentRejected, v.Educator.Status)
	assert.Equal(t, "Edna Krabappel", v.Educator.Name)

	_, err = e.svc.RespondAssignment(e.ctx, e.edu, ev.ID, models.AssignmentAccepted)
	assert.ErrorIs(t, err, apperr.ErrConflict, "the first answer stands")

	// A rejected assignment can be handed to someone else.
	_, err = e.svc.AssignEducator(e.ctx, e.inst, ev.ID, e.edu2.ID)
	require.NoError(t, err)
	_, err = e.svc.RespondAssignment(e.ctx, e.edu2, ev.ID, models.AssignmentAccepted)
	require.NoError(t, err)

	_, err = e.svc.AssignEducator(e.ctx, e.inst, ev.ID, e.edu.ID)
	assert.ErrorIs(t, err, apperr.ErrConflict, "accepted assignment is kept")
}

// acceptedEvent returns an event with edu accepted and alice and bob
// registered and approved.
func (e *env) acceptedEvent(t *testing.T) workflow.EventView {
	t.Helper()
	ev := e.event(t, 10)
	_, err := e.svc.AssignEducator(e.ctx, e.inst, ev.ID, e.edu.ID)
	require.NoError(t, err)
	_, err = e.svc.RespondAssignment(e.ctx, e.edu, ev.ID, models.AssignmentAccepted)
	require.NoError(t, err)
	for _, s := range []authz.Actor{e.alice, e.bob} {
		_, err := e.svc.Register(e.ctx, s, ev.ID)
		require.NoError(t, err)
		_, err = e.svc.ApproveRegistration(e.ctx, e.edu, ev.ID, s.ID)
		require.NoError(t, err)
	}
	return ev
}

func TestApproveReject(t *testing.T) {
	e := setup(t)
	ev := e.acceptedEvent(t)

	_, err := e.svc.ApproveRegistration(e.ctx, e.inst, ev.ID, e.carol.ID)
	assert.ErrorIs(t, err, apperr.ErrNotRegistered)
	_, err = e.svc.ApproveRegistration(e.ctx, e.inst, ev.ID, e.alice.ID)
	assert.ErrorIs(t, err, apperr.ErrAlreadyApproved)
	_, err = e.svc.ApproveRegistration(e.ctx, e.edu2, ev.ID, e.alice.ID)
	assert.ErrorIs(t, err, apperr.ErrAuthorization)

	_, err = e.svc.RejectRegistration(e.ctx, e.inst, ev.ID, e.bob.ID)
	require.NoError(t, err)

	mine, err := e.svc.MyRegistration(e.ctx, e.bob, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, lifecycle.RegistrationRejected, mine.RegistrationStatus)

	roster, err := e.svc.Roster(e.ctx, e.edu, ev.ID)
	require.NoError(t, err)
	require.Len(t, roster, 2)
	statuses := map[string]string{}
	for _, r := range roster {
		statuses[r.Student.Name] = r.Status
	}
	assert.Equal(t, map[string]string{"Alice": "Approved", "Bob": "Rejected"}, statuses)
}

func TestMarkAttendance(t *testing.T) {
	e := setup(t)
	ev := e.acceptedEvent(t)
	_, err := e.svc.Register(e.ctx, e.carol, ev.ID)
	require.NoError(t, err)

	res, err := e.svc.MarkAttendance(e.ctx, e.edu, ev.ID, []lifecycle.AttendanceMark{
		{StudentID: e.alice.ID, Present: true},
		{StudentID: e.carol.ID, Present: true}, // not approved, skipped
	})
	require.NoError(t, err)
	require.Len(t, res.Recorded, 1)
	assert.Equal(t, e.alice.ID, res.Recorded[0].StudentID)

	_, err = e.svc.MarkAttendance(e.ctx, e.edu, ev.ID, []lifecycle.AttendanceMark{
		{StudentID: e.bob.ID, Present: false},
		{StudentID: e.alice.ID, Present: false},
	})
	require.ErrorIs(t, err, apperr.ErrAlreadyMarked)
	assert.Equal(t, []string{e.alice.ID.Hex()}, apperr.As(err).IDs)

	list, err := e.svc.Attendance(e.ctx, e.inst, ev.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1, "failed batch must not write bob")

	_, err = e.svc.MarkAttendance(e.ctx, e.inst, ev.ID, []lifecycle.AttendanceMark{{StudentID: e.bob.ID}})
	assert.ErrorIs(t, err, apperr.ErrAuthorization)

	_, err = e.svc.RejectRegistration(e.ctx, e.inst, ev.ID, e.alice.ID)
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

// A student request becomes an event, the event completes with two
// feedback records, and the request is closed by the EventCompleted
// subscriber.
func TestFullFlow_CompletionCascade(t *testing.T) {
	e := setup(t)
	res := e.fx.CreateResource(e.ctx, "Telescope", 3)

	req, err := e.svc.SubmitEventRequest(e.ctx, e.alice, workflow.EventRequestInput{
		Title:         "Star Party",
		PreferredDate: time.Now().Add(10 * 24 * time.Hour),
		Resources:     []models.ResourceLine{{ResourceID: res.ID, Quantity: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, models.RequestPending, req.Status)
	assert.Equal(t, "Telescope", req.Resources[0].Name)

	_, err = e.svc.CreateEvent(e.ctx, e.inst, workflow.EventInput{
		Date: time.Now().Add(10 * 24 * time.Hour), Location: "Field", Capacity: 5, SourceRequestID: &req.ID,
	})
	assert.ErrorIs(t, err, apperr.ErrValidation, "pending requests cannot seed an event")

	_, err = e.svc.ReviewEventRequest(e.ctx, e.inst, req.ID, models.RequestApproved, &e.edu.ID)
	require.NoError(t, err)

	ev, err := e.svc.CreateEvent(e.ctx, e.inst, workflow.EventInput{
		Date: time.Now().Add(10 * 24 * time.Hour), Location: "Field", Capacity: 5, SourceRequestID: &req.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "Star Party", ev.Title)
	assert.Equal(t, 2, ev.QuantityOf(res.ID))
	assert.Equal(t, 1, e.available(t, res.ID))
	require.NotNil(t, ev.AssignedEducator)
	assert.Equal(t, e.edu.ID, ev.AssignedEducator.EducatorID)

	_, err = e.svc.RespondAssignment(e.ctx, e.edu, ev.ID, models.AssignmentAccepted)
	require.NoError(t, err)
	for _, s := range []authz.Actor{e.alice, e.bob, e.carol} {
		_, err := e.svc.Register(e.ctx, s, ev.ID)
		require.NoError(t, err)
	}
	for _, s := range []authz.Actor{e.alice, e.bob} {
		_, err := e.svc.ApproveRegistration(e.ctx, e.inst, ev.ID, s.ID)
		require.NoError(t, err)
	}

	_, err = e.svc.CompleteEvent(e.ctx, e.edu, ev.ID, []lifecycle.FeedbackInput{
		{StudentID: e.carol.ID, Rating: 5},
	})
	require.ErrorIs(t, err, apperr.ErrValidation, "carol is not approved")

	var published []workflow.EventCompleted
	e.svc.Bus().Subscribe(func(_ context.Context, ev workflow.EventCompleted) error {
		published = append(published, ev)
		return nil
	})

	done, err := e.svc.CompleteEvent(e.ctx, e.edu, ev.ID, []lifecycle.FeedbackInput{
		{StudentID: e.alice.ID, Rating: 5, Comment: "<b>Loved</b> it"},
		{StudentID: e.bob.ID, Rating: 4},
	})
	require.NoError(t, err)
	assert.Equal(t, models.EventCompleted, done.Status)
	assert.Len(t, done.Feedbacks, 2)
	require.Len(t, published, 1)
	assert.Len(t, published[0].FeedbackIDs, 2)

	fb, err := e.svc.EventFeedback(e.ctx, e.edu, ev.ID)
	require.NoError(t, err)
	require.Len(t, fb, 2)
	comments := map[string]string{}
	for _, f := range fb {
		comments[f.Student.Name] = f.Comment
	}
	assert.Equal(t, "Loved it", comments["Alice"])

	got, err := e.svc.GetEventRequest(e.ctx, e.alice, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestCompleted, got.Status)

	_, err = e.svc.CompleteEvent(e.ctx, e.edu, ev.ID, nil)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	completed, err := e.svc.CompletedEvents(e.ctx, e.edu)
	require.NoError(t, err)
	assert.Len(t, completed, 1)
}

// A completion whose feedback batch fails partway leaves no feedback and
// the event in its previous status, so a later completion goes through.
func TestCompleteEvent_FailedFeedbackRollsBack(t *testing.T) {
	e := setup(t)
	ev := e.event(t, 5)
	_, err := e.svc.AssignEducator(e.ctx, e.inst, ev.ID, e.edu.ID)
	require.NoError(t, err)
	_, err = e.svc.RespondAssignment(e.ctx, e.edu, ev.ID, models.AssignmentAccepted)
	require.NoError(t, err)
	for _, s := range []authz.Actor{e.alice, e.bob} {
		_, err := e.svc.Register(e.ctx, s, ev.ID)
		require.NoError(t, err)
		_, err = e.svc.ApproveRegistration(e.ctx, e.inst, ev.ID, s.ID)
		require.NoError(t, err)
	}

	// Bob's record already exists, so the batch fails after writing Alice's.
	fs := feedbackstore.New(e.db)
	stray := models.Feedback{ID: primitive.NewObjectID(), EventID: ev.ID, StudentID: e.bob.ID, Rating: 1, CreatedAt: time.Now()}
	require.NoError(t, fs.InsertMany(e.ctx, []models.Feedback{stray}))

	inputs := []lifecycle.FeedbackInput{
		{StudentID: e.alice.ID, Rating: 5},
		{StudentID: e.bob.ID, Rating: 4},
	}
	_, err = e.svc.CompleteEvent(e.ctx, e.edu, ev.ID, inputs)
	require.ErrorIs(t, err, apperr.ErrConflict)

	got, err := e.svc.GetEvent(e.ctx, e.inst, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EventUpcoming, got.Status)

	left, err := fs.ListByEvent(e.ctx, ev.ID)
	require.NoError(t, err)
	require.Len(t, left, 1, "only the pre-existing record may remain")
	assert.Equal(t, stray.ID, left[0].ID)

	require.NoError(t, fs.DeleteIDs(e.ctx, []primitive.ObjectID{stray.ID}))
	done, err := e.svc.CompleteEvent(e.ctx, e.edu, ev.ID, inputs)
	require.NoError(t, err)
	assert.Equal(t, models.EventCompleted, done.Status)

	mine, err := e.svc.MyEvents(e.ctx, e.alice)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.NotNil(t, mine[0].Feedback)
	assert.Equal(t, 5, mine[0].Feedback.Rating)
}

func TestEventRequests(t *testing.T) {
	e := setup(t)

	_, err := e.svc.SubmitEventRequest(e.ctx, e.bob, workflow.EventRequestInput{
		Title:         "Robotics",
		PreferredDate: time.Now().Add(24 * time.Hour),
		Resources:     []models.ResourceLine{{ResourceID: primitive.NewObjectID(), Quantity: 1}},
	})
	require.ErrorIs(t, err, apperr.ErrValidation, "unknown resource")

	_, err = e.svc.SubmitEventRequest(e.ctx, e.bob, workflow.EventRequestInput{PreferredDate: time.Now()})
	require.ErrorIs(t, err, apperr.ErrValidation)

	r, err := e.svc.SubmitEventRequest(e.ctx, e.edu, workflow.EventRequestInput{
		Title: "Teacher Workshop", PreferredDate: time.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleEducator, r.RequesterRole)

	_, err = e.svc.GetEventRequest(e.ctx, e.bob, r.ID)
	assert.ErrorIs(t, err, apperr.ErrAuthorization)

	_, err = e.svc.ReviewEventRequest(e.ctx, e.edu, r.ID, models.RequestApproved, nil)
	assert.ErrorIs(t, err, apperr.ErrAuthorization)

	_, err = e.svc.ReviewEventRequest(e.ctx, e.inst, r.ID, models.RequestRejected, nil)
	require.NoError(t, err)
	_, err = e.svc.ReviewEventRequest(e.ctx, e.inst, r.ID, models.RequestApproved, nil)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	pending, err := e.svc.EventRequests(e.ctx, e.inst, models.RequestPending)
	require.NoError(t, err)
	assert.Empty(t, pending)

	mine, err := e.svc.MyEventRequests(e.ctx, e.edu)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestResourceRequests(t *testing.T) {
	e := setup(t)
	lab := e.fx.CreateResource(e.ctx, "Lab Kit", 6)
	ev := e.acceptedEvent(t)

	_, err := e.svc.SubmitResourceRequest(e.ctx, e.edu2, ev.ID, []models.ResourceLine{{ResourceID: lab.ID, Quantity: 1}})
	assert.ErrorIs(t, err, apperr.ErrAuthorization)

	ok, err := e.svc.SubmitResourceRequest(e.ctx, e.edu, ev.ID, []models.ResourceLine{{ResourceID: lab.ID, Quantity: 4}})
	require.NoError(t, err)
	tooMany, err := e.svc.SubmitResourceRequest(e.ctx, e.edu, ev.ID, []models.ResourceLine{{ResourceID: lab.ID, Quantity: 3}})
	require.NoError(t, err)

	_, err = e.svc.RespondResourceRequest(e.ctx, e.other, ok.ID, models.RequestApproved)
	assert.ErrorIs(t, err, apperr.ErrAuthorization)

	got, err := e.svc.RespondResourceRequest(e.ctx, e.inst, ok.ID, models.RequestApproved)
	require.NoError(t, err)
	assert.Equal(t, models.RequestApproved, got.Status)
	assert.NotNil(t, got.ReviewedAt)
	assert.Equal(t, 2, e.available(t, lab.ID))

	view, err := e.svc.GetEvent(e.ctx, e.inst, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, view.QuantityOf(lab.ID))

	_, err = e.svc.RespondResourceRequest(e.ctx, e.inst, tooMany.ID, models.RequestApproved)
	require.ErrorIs(t, err, apperr.ErrInsufficientAvailability)
	assert.Equal(t, 2, e.available(t, lab.ID))

	list, err := e.svc.ResourceRequests(e.ctx, e.inst, models.RequestPending)
	require.NoError(t, err)
	require.Len(t, list, 1, "failed approval goes back to pending")
	assert.Equal(t, tooMany.ID, list[0].ID)
	assert.Equal(t, "Science Fair", list[0].EventTitle)

	_, err = e.svc.RespondResourceRequest(e.ctx, e.inst, tooMany.ID, models.RequestRejected)
	require.NoError(t, err)
	_, err = e.svc.RespondResourceRequest(e.ctx, e.inst, tooMany.ID, models.RequestApproved)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	mine, err := e.svc.MyResourceRequests(e.ctx, e.edu)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}

func TestDeleteResource_WhileHeld(t *testing.T) {
	e := setup(t)
	res := e.fx.CreateResource(e.ctx, "Speaker", 2)
	ev := e.event(t, 5, models.ResourceLine{ResourceID: res.ID, Quantity: 1})

	err := e.svc.DeleteResource(e.ctx, e.inst, res.ID)
	require.ErrorIs(t, err, apperr.ErrConflict)

	require.NoError(t, e.svc.DeleteEvent(e.ctx, e.inst, ev.ID))
	assert.Equal(t, 2, e.available(t, res.ID))
	require.NoError(t, e.svc.DeleteResource(e.ctx, e.inst, res.ID))

	_, err = e.svc.GetResource(e.ctx, e.inst, res.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestListings(t *testing.T) {
	e := setup(t)
	a := e.event(t, 5)
	b := e.event(t, 5)
	_, err := e.svc.Register(e.ctx, e.alice, a.ID)
	require.NoError(t, err)

	open, err := e.svc.OpenEvents(e.ctx, e.alice)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, b.ID, open[0].ID)

	mine, err := e.svc.MyEvents(e.ctx, e.alice)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, lifecycle.RegistrationPending, mine[0].RegistrationStatus)

	all, err := e.svc.InstitutionEvents(e.ctx, e.inst)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	none, err := e.svc.InstitutionEvents(e.ctx, e.other)
	require.NoError(t, err)
	assert.Empty(t, none)

	eds, err := e.svc.Educators(e.ctx, e.inst)
	require.NoError(t, err)
	assert.Len(t, eds, 2)

	_, err = e.svc.MyRegistration(e.ctx, e.bob, a.ID)
	assert.ErrorIs(t, err, apperr.ErrNotRegistered)
}

func TestUpdateAndStart(t *testing.T) {
	e := setup(t)
	ev := e.event(t, 3)
	_, err := e.svc.Register(e.ctx, e.alice, ev.ID)
	require.NoError(t, err)
	_, err = e.svc.Register(e.ctx, e.bob, ev.ID)
	require.NoError(t, err)

	one := 1
	_, err = e.svc.UpdateEvent(e.ctx, e.inst, ev.ID, lifecycle.EventPatch{Capacity: &one})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = e.svc.UpdateEvent(e.ctx, e.inst, ev.ID, lifecycle.EventPatch{})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	loc := "Library"
	v, err := e.svc.UpdateEvent(e.ctx, e.inst, ev.ID, lifecycle.EventPatch{Location: &loc})
	require.NoError(t, err)
	assert.Equal(t, "Library", v.Location)

	v, err = e.svc.StartEvent(e.ctx, e.inst, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EventOngoing, v.Status)

	_, err = e.svc.Register(e.ctx, e.carol, ev.ID)
	assert.ErrorIs(t, err, apperr.ErrConflict, "registration closes once the event starts")
}

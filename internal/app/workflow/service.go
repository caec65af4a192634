// Package workflow runs the event operations end to end: it loads the
// documents involved, asks eventpolicy whether the caller may act, applies
// the change through the stores' guarded updates, and records the outcome
// in the audit trail and metrics.
package workflow

import (
	"context"
	"time"

	eventrequeststore "github.com/M-Jeevanantham/edu-event-management-erp/internal/app/store/eventrequests"
	eventstore "github.com/M-Jeevanantham/edu-event-management-erp/internal/app/store/events"
	feedbackstore "github.com/M-Jeevanantham/edu-event-management-erp/internal/app/store/feedback"
	resourcerequeststore "github.com/M-Jeevanantham/edu-event-management-erp/internal/app/store/resourcerequests"
	resourcestore "github.com/M-Jeevanantham/edu-event-management-erp/internal/app/store/resources"
	userstore "github.com/M-Jeevanantham/edu-event-management-erp/internal/app/store/users"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/auditlog"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/metrics"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/txn"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// maxAttempts bounds re-read/retry loops after a lost race.
const maxAttempts = 3

// Service is shared by every feature handler.
type Service struct {
	db  *mongo.Database
	log *zap.Logger

	users            *userstore.Store
	resources        *resourcestore.Store
	events           *eventstore.Store
	eventRequests    *eventrequeststore.Store
	resourceRequests *resourcerequeststore.Store
	feedback         *feedbackstore.Store

	bus     *Bus
	audit   *auditlog.Logger
	metrics *metrics.Metrics

	now func() time.Time
}

// New wires the stores over db. audit and m may be nil.
func New(db *mongo.Database, audit *auditlog.Logger, m *metrics.Metrics, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{
		db:               db,
		log:              log,
		users:            userstore.New(db),
		resources:        resourcestore.New(db),
		events:           eventstore.New(db),
		eventRequests:    eventrequeststore.New(db),
		resourceRequests: resourcerequeststore.New(db),
		feedback:         feedbackstore.New(db),
		bus:              NewBus(log),
		audit:            audit,
		metrics:          m,
		now:              time.Now,
	}
	if m != nil {
		s.resources.Observe(m)
	}
	s.bus.Subscribe(s.completeLinkedRequests)
	return s
}

// Bus exposes the domain event bus so other components can subscribe.
func (s *Service) Bus() *Bus { return s.bus }

// observe counts the operation and passes err through.
func (s *Service) observe(op string, err error) error {
	s.metrics.Operation(op, err)
	return err
}

func (s *Service) record(ctx context.Context, typ string, actor primitive.ObjectID, event, subject *primitive.ObjectID, details map[string]string) {
	s.audit.Workflow(ctx, auditlog.Action{
		Type:    typ,
		Actor:   actor,
		Event:   event,
		Subject: subject,
		Details: details,
	})
}

// inTxn runs fn in a transaction when the deployment supports one.
func (s *Service) inTxn(ctx context.Context, fn func(ctx context.Context) error) error {
	return txn.Run(ctx, s.db, s.log, fn)
}

// retryStale re-runs fn while it fails because the event moved underneath it.
func retryStale(fn func() error) error {
	var err error
	for i := 0; i < maxAttempts; i++ {
		if err = fn(); !eventstore.IsStale(err) {
			return err
		}
	}
	return err
}

func ref(id primitive.ObjectID) *primitive.ObjectID { return &id }

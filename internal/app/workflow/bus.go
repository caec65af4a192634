package workflow

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// EventCompleted is published once an event has been marked completed and
// its feedback stored.
type EventCompleted struct {
	EventID     primitive.ObjectID
	CompletedBy primitive.ObjectID
	FeedbackIDs []primitive.ObjectID
	At          time.Time
}

// Subscriber handles a published EventCompleted.
type Subscriber func(ctx context.Context, ev EventCompleted) error

// Bus delivers domain events to in-process subscribers, synchronously and
// in subscription order. A failing subscriber does not stop the others.
type Bus struct {
	mu   sync.RWMutex
	subs []Subscriber
	log  *zap.Logger
}

func NewBus(log *zap.Logger) *Bus {
	if log == nil {
		log = zap.NewNop()
	}
	return &Bus{log: log}
}

func (b *Bus) Subscribe(fn Subscriber) {
	b.mu.Lock()
	b.subs = append(b.subs, fn)
	b.mu.Unlock()
}

// Publish delivers ev to every subscriber and returns their joined errors.
func (b *Bus) Publish(ctx context.Context, ev EventCompleted) error {
	b.mu.RLock()
	subs := append([]Subscriber(nil), b.subs...)
	b.mu.RUnlock()

	var errs []error
	for _, fn := range subs {
		if err := fn(ctx, ev); err != nil {
			b.log.Warn("event completed subscriber failed",
				zap.String("event_id", ev.EventID.Hex()),
				zap.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

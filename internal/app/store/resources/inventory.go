// internal/app/store/resources/inventory.go
package resourcestore

import (
	"context"
	"errors"
	"time"

	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/apperr"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/lifecycle"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Reserve takes qty units out of a resource's availability. The filter
// carries the availability check, so two concurrent reservations can never
// both succeed past zero.
func (s *Store) Reserve(ctx context.Context, id primitive.ObjectID, qty int) error {
	if qty <= 0 {
		return apperr.Validation("quantity must be a positive number")
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "available": bson.M{"$gte": qty}},
		bson.M{"$inc": bson.M{"available": -qty}, "$set": bson.M{"updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 1 {
		s.observe("reserve", "applied")
		return nil
	}

	r, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := lifecycle.CheckReserve(r, qty); err != nil {
		s.observe("reserve", "short")
		return err
	}
	return apperr.Conflict("resource %s changed concurrently; retry", r.Name)
}

// Release returns qty units. It refuses to push available above total,
// which would only happen through a caller bug.
func (s *Store) Release(ctx context.Context, id primitive.ObjectID, qty int) error {
	if qty <= 0 {
		return apperr.Validation("quantity must be a positive number")
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "$expr": bson.M{"$lte": bson.A{bson.M{"$add": bson.A{"$available", qty}}, "$total"}}},
		bson.M{"$inc": bson.M{"available": qty}, "$set": bson.M{"updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 1 {
		s.observe("release", "applied")
		return nil
	}

	r, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := lifecycle.CheckRelease(r, qty); err != nil {
		s.observe("release", "overflow")
		return err
	}
	return apperr.Conflict("resource %s changed concurrently; retry", r.Name)
}

// AdjustReservation moves a reservation from previous to next units.
func (s *Store) AdjustReservation(ctx context.Context, id primitive.ObjectID, previous, next int) error {
	d := lifecycle.AdjustDelta(id, previous, next)
	return s.apply(ctx, d)
}

func (s *Store) apply(ctx context.Context, d lifecycle.Delta) error {
	switch {
	case d.Change > 0:
		return s.Reserve(ctx, d.ResourceID, d.Change)
	case d.Change < 0:
		return s.Release(ctx, d.ResourceID, -d.Change)
	}
	return nil
}

// Apply performs a set of reservation changes all-or-nothing. Every line
// is checked against a fresh read first so the common failure reports the
// right resource without touching anything. Reservations go before
// releases. If a guarded update still misses (a concurrent writer got
// there first), the changes already made are undone before returning.
func (s *Store) Apply(ctx context.Context, deltas []lifecycle.Delta) error {
	if len(deltas) == 0 {
		return nil
	}
	if err := s.precheck(ctx, deltas); err != nil {
		return err
	}

	reserve, release := lifecycle.SplitDeltas(deltas)
	ordered := append(reserve, release...)

	var done []lifecycle.Delta
	for _, d := range ordered {
		if err := s.apply(ctx, d); err != nil {
			if cerr := s.compensate(ctx, done); cerr != nil {
				return apperr.Internal(errors.Join(err, cerr))
			}
			return err
		}
		done = append(done, d)
	}
	return nil
}

// ReserveAll reserves every line or none. Repeated resources are summed.
func (s *Store) ReserveAll(ctx context.Context, lines []models.ResourceLine) error {
	norm, err := lifecycle.NormalizeLines(lines)
	if err != nil {
		return err
	}
	return s.Apply(ctx, lifecycle.ReserveDeltas(norm))
}

// ReleaseAll returns every line.
func (s *Store) ReleaseAll(ctx context.Context, lines []models.ResourceLine) error {
	return s.Apply(ctx, lifecycle.ReleaseDeltas(lines))
}

func (s *Store) precheck(ctx context.Context, deltas []lifecycle.Delta) error {
	ids := make([]primitive.ObjectID, 0, len(deltas))
	for _, d := range deltas {
		ids = append(ids, d.ResourceID)
	}
	found, err := s.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}
	for _, d := range deltas {
		r, ok := found[d.ResourceID]
		if !ok {
			return apperr.NotFound("resource " + d.ResourceID.Hex())
		}
		switch {
		case d.Change > 0:
			if err := lifecycle.CheckReserve(r, d.Change); err != nil {
				return err
			}
		case d.Change < 0:
			if err := lifecycle.CheckRelease(r, -d.Change); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Store) compensate(ctx context.Context, done []lifecycle.Delta) error {
	var errs []error
	for _, d := range lifecycle.Invert(done) {
		if err := s.apply(ctx, d); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

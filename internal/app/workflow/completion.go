package workflow

import (
	"context"
	"errors"
	"strconv"

	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/policy/eventpolicy"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/store/audit"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/authz"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/htmlsanitize"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/txn"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/apperr"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/lifecycle"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// CompleteEvent marks the event completed with one feedback record per
// entry, then publishes EventCompleted. The status flip is guarded by the
// event version so the approved set the feedback was checked against is
// the one being completed.
func (s *Service) CompleteEvent(ctx context.Context, actor authz.Actor, eventID primitive.ObjectID, inputs []lifecycle.FeedbackInput) (EventView, error) {
	inputs = append([]lifecycle.FeedbackInput(nil), inputs...)
	for i := range inputs {
		inputs[i].Comment = htmlsanitize.PlainText(inputs[i].Comment)
	}

	var (
		updated models.Event
		fb      []models.Feedback
	)
	err := retryStale(func() error {
		e, err := s.events.GetByID(ctx, eventID)
		if err != nil {
			return err
		}
		if err := eventpolicy.Check(actor, eventpolicy.CompleteEvent, eventpolicy.OnEvent(e)); err != nil {
			return err
		}
		fb, err = lifecycle.PlanCompletion(e, inputs, s.now().UTC())
		if err != nil {
			return err
		}
		ids := lifecycle.FeedbackIDs(fb)

		return s.inTxn(ctx, func(ctx context.Context) error {
			out, err := s.events.Complete(ctx, eventID, e.Version, ids)
			if err != nil {
				return err
			}
			if err := s.feedback.InsertMany(ctx, fb); err != nil {
				if txn.Active(ctx) {
					return err
				}
				// An ordered batch may have written a prefix before failing.
				if uerr := errors.Join(
					s.feedback.DeleteIDs(ctx, ids),
					s.events.UndoComplete(ctx, eventID, e.Status, ids),
				); uerr != nil {
					s.log.Error("could not undo completion",
						zap.String("event_id", eventID.Hex()), zap.Error(uerr))
					return apperr.Internal(errors.Join(err, uerr))
				}
				return err
			}
			updated = out
			return nil
		})
	})
	if err != nil {
		return EventView{}, s.observe("complete_event", err)
	}

	s.record(ctx, audit.EventEventCompleted, actor.ID, ref(eventID), nil,
		map[string]string{"feedback": strconv.Itoa(len(fb))})
	// The completion stands even if a subscriber fails; the bus logs it.
	_ = s.bus.Publish(ctx, EventCompleted{
		EventID:     eventID,
		CompletedBy: actor.ID,
		FeedbackIDs: lifecycle.FeedbackIDs(fb),
		At:          updated.UpdatedAt,
	})
	s.observe("complete_event", nil)
	return s.eventView(ctx, updated)
}

// EventFeedback lists the feedback of an event with student identities.
func (s *Service) EventFeedback(ctx context.Context, actor authz.Actor, eventID primitive.ObjectID) ([]FeedbackView, error) {
	e, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if err := eventpolicy.Check(actor, eventpolicy.ViewRoster, eventpolicy.OnEvent(e)); err != nil {
		return nil, err
	}
	fb, err := s.feedback.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(fb))
	for _, f := range fb {
		ids = append(ids, f.StudentID)
	}
	lk, err := s.load(ctx, ids, nil)
	if err != nil {
		return nil, err
	}
	out := make([]FeedbackView, 0, len(fb))
	for _, f := range fb {
		out = append(out, FeedbackView{Feedback: f, Student: lk.userRef(f.StudentID)})
	}
	return out, nil
}

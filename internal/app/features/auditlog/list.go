// internal/app/features/auditlog/list.go
package auditlog

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/features/shared"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/policy/eventpolicy"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/store/audit"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/respond"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/timeouts"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/apperr"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const pageSize = 50

type listItem struct {
	ID         string            `json:"id"`
	Timestamp  time.Time         `json:"timestamp"`
	Category   string            `json:"category"`
	EventType  string            `json:"event_type"`
	ActorName  string            `json:"actor,omitempty"`
	TargetName string            `json:"target,omitempty"`
	EventID    string            `json:"event_id,omitempty"`
	Success    bool              `json:"success"`
	Reason     string            `json:"failure_reason,omitempty"`
	Details    map[string]string `json:"details,omitempty"`
}

type listPage struct {
	Items      []listItem `json:"items"`
	Page       int        `json:"page"`
	TotalPages int        `json:"total_pages"`
	Total      int64      `json:"total"`
}

// ServeMine handles GET /api/audit/me: the caller's own actions.
func (h *Handler) ServeMine(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r, h.ErrLog)
	if !ok {
		return
	}
	filter, page, err := parseFilter(r)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	filter.ActorID = &actor.ID

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "audit trail mine")
	defer cancel()

	h.serve(ctx, w, r, filter, page)
}

// ServeEvent handles GET /api/audit/events/{id}: everything recorded
// against one event, for the institution that created it.
func (h *Handler) ServeEvent(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.Actor(w, r, h.ErrLog)
	if !ok {
		return
	}
	id, ok := shared.PathID(w, r, h.ErrLog, "id")
	if !ok {
		return
	}
	filter, page, err := parseFilter(r)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "audit trail event")
	defer cancel()

	e, err := h.Events.GetByID(ctx, id)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	if err := eventpolicy.Check(actor, eventpolicy.ViewEventAudit, eventpolicy.OnEvent(e)); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	filter.EventID = &id

	h.serve(ctx, w, r, filter, page)
}

// parseFilter reads category, event_type, start_date, end_date and page.
func parseFilter(r *http.Request) (audit.QueryFilter, int, error) {
	q := r.URL.Query()
	page := 1
	if p := q.Get("page"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 {
			return audit.QueryFilter{}, 0, apperr.ValidationFields(map[string]string{"page": "must be a positive integer"})
		}
		page = n
	}

	filter := audit.QueryFilter{
		Category:  strings.TrimSpace(q.Get("category")),
		EventType: strings.TrimSpace(q.Get("event_type")),
		Limit:     pageSize,
		Offset:    int64((page - 1) * pageSize),
	}
	if s := strings.TrimSpace(q.Get("start_date")); s != "" {
		t, err := shared.Date("start_date", s)
		if err != nil {
			return audit.QueryFilter{}, 0, err
		}
		filter.StartTime = &t
	}
	if s := strings.TrimSpace(q.Get("end_date")); s != "" {
		t, err := shared.Date("end_date", s)
		if err != nil {
			return audit.QueryFilter{}, 0, err
		}
		// End of day
		end := t.Add(24*time.Hour - time.Nanosecond)
		filter.EndTime = &end
	}
	return filter, page, nil
}

func (h *Handler) serve(ctx context.Context, w http.ResponseWriter, r *http.Request, filter audit.QueryFilter, page int) {
	events, err := h.Audit.Query(ctx, filter)
	if err != nil {
		h.Log.Error("failed to query audit events", zap.Error(err))
		h.ErrLog.Write(w, r, apperr.Internal(err))
		return
	}
	total, err := h.Audit.CountByFilter(ctx, filter)
	if err != nil {
		h.Log.Error("failed to count audit events", zap.Error(err))
		h.ErrLog.Write(w, r, apperr.Internal(err))
		return
	}

	// Batch fetch names for actors and affected users.
	seen := make(map[primitive.ObjectID]struct{})
	var ids []primitive.ObjectID
	for _, e := range events {
		for _, id := range []*primitive.ObjectID{e.ActorID, e.UserID} {
			if id == nil {
				continue
			}
			if _, dup := seen[*id]; !dup {
				seen[*id] = struct{}{}
				ids = append(ids, *id)
			}
		}
	}
	users, err := h.Users.GetByIDs(ctx, ids)
	if err != nil {
		h.Log.Warn("failed to fetch user names for audit trail", zap.Error(err))
	}
	name := func(id *primitive.ObjectID) string {
		if id == nil {
			return ""
		}
		if u, ok := users[*id]; ok {
			return u.Name
		}
		return id.Hex()
	}

	items := make([]listItem, 0, len(events))
	for _, e := range events {
		item := listItem{
			ID:         e.ID.Hex(),
			Timestamp:  e.Timestamp,
			Category:   e.Category,
			EventType:  e.EventType,
			ActorName:  name(e.ActorID),
			TargetName: name(e.UserID),
			Success:    e.Success,
			Reason:     e.FailureReason,
			Details:    e.Details,
		}
		if e.EventID != nil {
			item.EventID = e.EventID.Hex()
		}
		items = append(items, item)
	}

	totalPages := int((total + pageSize - 1) / pageSize)
	if totalPages < 1 {
		totalPages = 1
	}
	respond.OK(w, listPage{Items: items, Page: page, TotalPages: totalPages, Total: total})
}

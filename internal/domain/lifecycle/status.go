// Package lifecycle holds the pure event-workflow rules: state
// transitions, registration and attendance checks, feedback planning, and
// inventory arithmetic. Nothing here touches storage; stores apply the
// results with guarded updates and call back in here to explain a miss.
package lifecycle

import (
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/apperr"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/models"
)

// transitions lists the allowed next states for each event status.
var transitions = map[string][]string{
	models.EventUpcoming: {models.EventOngoing, models.EventCompleted, models.EventCancelled},
	models.EventOngoing:  {models.EventCompleted, models.EventCancelled},
}

// CanTransition reports whether an event may move from one status to another.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CheckTransition returns a ConflictError for a disallowed move.
func CheckTransition(from, to string) error {
	if !CanTransition(from, to) {
		return apperr.Conflict("event cannot move from %s to %s", from, to)
	}
	return nil
}

// FromStatuses returns every status that may move to the given one.
// Stores use it as the filter for a guarded status update.
func FromStatuses(to string) []string {
	var out []string
	for _, from := range []string{models.EventUpcoming, models.EventOngoing, models.EventCompleted, models.EventCancelled} {
		if CanTransition(from, to) {
			out = append(out, from)
		}
	}
	return out
}

// IsActive reports whether the event still accepts workflow changes.
func IsActive(status string) bool {
	return status == models.EventUpcoming || status == models.EventOngoing
}

// HoldsResources reports whether an event in this status still has its
// assigned resources reserved. Cancelled events have released them.
func HoldsResources(status string) bool {
	return status != models.EventCancelled
}

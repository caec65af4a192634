package lifecycle

import (
	"strings"
	"time"

	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/apperr"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/models"
)

// EventFields are the institution-editable fields of an event.
type EventFields struct {
	Title       string
	Description string
	Date        time.Time
	Location    string
	Capacity    int
}

// ValidateNewEvent checks the required fields of a new event. The date
// must be strictly after now.
func ValidateNewEvent(f EventFields, now time.Time) error {
	fields := map[string]string{}
	if strings.TrimSpace(f.Title) == "" {
		fields["title"] = "title is required"
	}
	if strings.TrimSpace(f.Location) == "" {
		fields["location"] = "location is required"
	}
	if f.Date.IsZero() {
		fields["date"] = "date is required"
	} else if !f.Date.After(now) {
		fields["date"] = "date must be in the future"
	}
	if f.Capacity <= 0 {
		fields["capacity"] = "capacity must be greater than zero"
	}
	if len(fields) > 0 {
		return apperr.ValidationFields(fields)
	}
	return nil
}

// EventPatch carries optional updates; nil means unchanged.
type EventPatch struct {
	Title       *string
	Description *string
	Date        *time.Time
	Location    *string
	Capacity    *int
}

// Empty reports whether the patch changes nothing.
func (p EventPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Date == nil && p.Location == nil && p.Capacity == nil
}

// ValidatePatch checks an update against the current event. Capacity may
// not drop below the number of registered students.
func ValidatePatch(e models.Event, p EventPatch, now time.Time) error {
	if !IsActive(e.Status) {
		return apperr.Conflict("a %s event cannot be edited", e.Status)
	}
	fields := map[string]string{}
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		fields["title"] = "title cannot be empty"
	}
	if p.Location != nil && strings.TrimSpace(*p.Location) == "" {
		fields["location"] = "location cannot be empty"
	}
	if p.Date != nil && !p.Date.After(now) {
		fields["date"] = "date must be in the future"
	}
	if p.Capacity != nil {
		switch {
		case *p.Capacity <= 0:
			fields["capacity"] = "capacity must be greater than zero"
		case *p.Capacity < len(e.RegisteredStudents):
			fields["capacity"] = "capacity cannot be lower than current registrations"
		}
	}
	if len(fields) > 0 {
		return apperr.ValidationFields(fields)
	}
	return nil
}

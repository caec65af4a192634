// internal/app/policy/eventpolicy/eventpolicy.go
//
// Package eventpolicy is the single authorization gate for the event
// workflow. Every workflow operation names a Capability; the gate checks
// the caller's role and, where the capability requires it, the caller's
// relationship to the event or request (creator, assignee, requester).
package eventpolicy

import (
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/authz"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/apperr"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/lifecycle"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/models"
)

// Capability names one guarded workflow operation.
type Capability string

const (
	CreateResource Capability = "create_resource"
	ManageResource Capability = "manage_resource"
	ViewInventory  Capability = "view_inventory"

	CreateEvent       Capability = "create_event"
	UpdateEvent       Capability = "update_event"
	DeleteEvent       Capability = "delete_event"
	CancelEvent       Capability = "cancel_event"
	AssignResources   Capability = "assign_resources"
	AssignEducator    Capability = "assign_educator"
	RespondAssignment Capability = "respond_assignment"
	StartEvent        Capability = "start_event"
	ViewRoster        Capability = "view_roster"
	ViewEventAudit    Capability = "view_event_audit"

	Register           Capability = "register"
	ViewOwnEvents      Capability = "view_own_events"
	ReviewRegistration Capability = "review_registration"
	MarkAttendance     Capability = "mark_attendance"
	CompleteEvent      Capability = "complete_event"

	SubmitEventRequest    Capability = "submit_event_request"
	ReviewEventRequest    Capability = "review_event_request"
	ViewEventRequest      Capability = "view_event_request"
	SubmitResourceRequest Capability = "submit_resource_request"
	ReviewResourceRequest Capability = "review_resource_request"
)

// relation is the relationship a capability demands beyond the role.
type relation int

const (
	relNone relation = iota
	relCreator
	relAssignee
	relAcceptedAssignee
	relCreatorOrAcceptedAssignee
	relCreatorOrAssignee
	relRequesterOrInstitution
)

type rule struct {
	roles []string
	rel   relation
}

var (
	institution = []string{models.RoleInstitution}
	educator    = []string{models.RoleEducator}
	student     = []string{models.RoleStudent}
	staff       = []string{models.RoleInstitution, models.RoleEducator}
	anyone      = []string{models.RoleInstitution, models.RoleEducator, models.RoleStudent}
)

var rules = map[Capability]rule{
	CreateResource: {institution, relNone},
	ManageResource: {institution, relNone},
	ViewInventory:  {staff, relNone},

	CreateEvent:       {institution, relNone},
	UpdateEvent:       {institution, relCreator},
	DeleteEvent:       {institution, relCreator},
	CancelEvent:       {institution, relCreator},
	AssignResources:   {institution, relCreator},
	AssignEducator:    {institution, relCreator},
	RespondAssignment: {educator, relAssignee},
	StartEvent:        {staff, relCreatorOrAcceptedAssignee},
	ViewRoster:        {staff, relCreatorOrAssignee},
	ViewEventAudit:    {institution, relCreator},

	Register:           {student, relNone},
	ViewOwnEvents:      {anyone, relNone},
	ReviewRegistration: {staff, relCreatorOrAcceptedAssignee},
	MarkAttendance:     {educator, relAcceptedAssignee},
	CompleteEvent:      {educator, relAcceptedAssignee},

	SubmitEventRequest:    {[]string{models.RoleStudent, models.RoleEducator}, relNone},
	ReviewEventRequest:    {institution, relNone},
	ViewEventRequest:      {anyone, relRequesterOrInstitution},
	SubmitResourceRequest: {educator, relAcceptedAssignee},
	ReviewResourceRequest: {institution, relCreator},
}

// Subject is what a relationship is checked against. Only the field the
// capability needs must be set.
type Subject struct {
	Event   *models.Event
	Request *models.EventRequest
}

// OnEvent builds a Subject for an event.
func OnEvent(e models.Event) Subject { return Subject{Event: &e} }

// OnRequest builds a Subject for an event request.
func OnRequest(r models.EventRequest) Subject { return Subject{Request: &r} }

// Check returns nil when actor may exercise c on subj, and an
// AuthorizationError otherwise.
func Check(actor authz.Actor, c Capability, subj Subject) error {
	rl, ok := rules[c]
	if !ok {
		return apperr.Authorization("unknown capability %q", c)
	}
	if !actor.HasAnyRole(rl.roles...) {
		return apperr.Authorization("role %q may not %s", actor.Role, describe(c))
	}

	switch rl.rel {
	case relNone:
		return nil
	case relCreator:
		if isCreator(actor, subj) {
			return nil
		}
		return apperr.Authorization("only the institution that created this event may %s", describe(c))
	case relAssignee:
		if subj.Event != nil && subj.Event.EducatorID() == actor.ID {
			return nil
		}
		return apperr.Authorization("you are not the assigned educator for this event")
	case relAcceptedAssignee:
		if subj.Event != nil && lifecycle.IsAcceptedEducator(*subj.Event, actor.ID) {
			return nil
		}
		return apperr.Authorization("only the educator who accepted this event may %s", describe(c))
	case relCreatorOrAcceptedAssignee:
		if isCreator(actor, subj) || (subj.Event != nil && lifecycle.IsAcceptedEducator(*subj.Event, actor.ID)) {
			return nil
		}
		return apperr.Authorization("only the creating institution or the accepted educator may %s", describe(c))
	case relCreatorOrAssignee:
		if isCreator(actor, subj) || (subj.Event != nil && subj.Event.EducatorID() == actor.ID) {
			return nil
		}
		return apperr.Authorization("only the creating institution or the assigned educator may %s", describe(c))
	case relRequesterOrInstitution:
		if actor.Role == models.RoleInstitution || (subj.Request != nil && subj.Request.RequestedBy == actor.ID) {
			return nil
		}
		return apperr.Authorization("you may only view your own requests")
	}
	return apperr.Authorization("access denied")
}

func isCreator(actor authz.Actor, subj Subject) bool {
	return subj.Event != nil && subj.Event.CreatedBy == actor.ID
}

func describe(c Capability) string {
	b := []byte(c)
	for i, c := range b {
		if c == '_' {
			b[i] = ' '
		}
	}
	return string(b)
}

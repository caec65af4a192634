package lifecycle

import (
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/apperr"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CheckRegister explains whether a student can register. Duplicate
// registration is reported before a full event so a registered student
// always learns they are already in.
func CheckRegister(e models.Event, studentID primitive.ObjectID) error {
	if e.Status != models.EventUpcoming {
		return apperr.Conflict("registration is closed for a %s event", e.Status)
	}
	if e.IsRegistered(studentID) {
		return apperr.DuplicateRegistration()
	}
	if len(e.RegisteredStudents) >= e.Capacity {
		return apperr.CapacityExceeded()
	}
	return nil
}

// CheckApprove explains whether a registration can be approved.
func CheckApprove(e models.Event, studentID primitive.ObjectID) error {
	if !IsActive(e.Status) {
		return apperr.Conflict("cannot approve students for a %s event", e.Status)
	}
	if !e.IsRegistered(studentID) {
		return apperr.NotRegistered()
	}
	if e.IsApproved(studentID) {
		return apperr.AlreadyApproved()
	}
	return nil
}

// CheckReject explains whether a registration can be rejected. Once
// attendance exists the decision is final.
func CheckReject(e models.Event, studentID primitive.ObjectID) error {
	if !IsActive(e.Status) {
		return apperr.Conflict("cannot reject students for a %s event", e.Status)
	}
	if !e.IsRegistered(studentID) {
		return apperr.NotRegistered()
	}
	if e.IsRejected(studentID) {
		return apperr.Conflict("student is already rejected")
	}
	if _, marked := e.AttendanceFor(studentID); marked {
		return apperr.Conflict("attendance already recorded for this student")
	}
	return nil
}

// Registration statuses shown to students and educators.
const (
	RegistrationPending  = "Pending"
	RegistrationApproved = "Approved"
	RegistrationRejected = "Rejected"
)

// RegistrationStatus returns the display status for a registered student.
func RegistrationStatus(e models.Event, studentID primitive.ObjectID) string {
	switch {
	case e.IsApproved(studentID):
		return RegistrationApproved
	case e.IsRejected(studentID):
		return RegistrationRejected
	default:
		return RegistrationPending
	}
}

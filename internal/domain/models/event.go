// internal/domain/models/event.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event statuses.
const (
	EventUpcoming  = "upcoming"
	EventOngoing   = "ongoing"
	EventCompleted = "completed"
	EventCancelled = "cancelled"
)

// Educator assignment statuses.
const (
	AssignmentPending  = "pending"
	AssignmentAccepted = "accepted"
	AssignmentRejected = "rejected"
)

// EducatorAssignment is the single educator slot on an event.
type EducatorAssignment struct {
	EducatorID  primitive.ObjectID `bson:"educator_id" json:"educator_id"`
	Status      string             `bson:"status" json:"status"`
	RequestedAt time.Time          `bson:"requested_at" json:"requested_at"`
	RespondedAt *time.Time         `bson:"responded_at,omitempty" json:"responded_at,omitempty"`
}

// AttendanceEntry is written once per approved student and never mutated.
type AttendanceEntry struct {
	StudentID primitive.ObjectID `bson:"student_id" json:"student_id"`
	Present   bool               `bson:"present" json:"present"`
	Marked    bool               `bson:"marked" json:"marked"`
	MarkedAt  time.Time          `bson:"marked_at" json:"marked_at"`
}

// Event models a document in the `events` collection.
//
// List fields are always stored as arrays (never null) so that $size,
// $push and $addToSet can be used in guarded updates.
type Event struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	TitleCI     string             `bson:"title_ci" json:"-"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Date        time.Time          `bson:"date" json:"date"`
	Location    string             `bson:"location" json:"location"`
	Capacity    int                `bson:"capacity" json:"capacity"`
	CreatedBy   primitive.ObjectID `bson:"created_by" json:"created_by"`

	AssignedEducator  *EducatorAssignment `bson:"assigned_educator,omitempty" json:"assigned_educator,omitempty"`
	AssignedResources []ResourceLine      `bson:"assigned_resources" json:"assigned_resources"`

	RegisteredStudents []primitive.ObjectID `bson:"registered_students" json:"registered_students"`
	ApprovedStudents   []primitive.ObjectID `bson:"approved_students" json:"approved_students"`
	RejectedStudents   []primitive.ObjectID `bson:"rejected_students" json:"rejected_students"`
	Attendance         []AttendanceEntry    `bson:"registered_students_attendance" json:"registered_students_attendance"`

	Status    string               `bson:"status" json:"status"`
	Feedbacks []primitive.ObjectID `bson:"feedbacks" json:"feedbacks"`

	SourceRequestID *primitive.ObjectID `bson:"source_request_id,omitempty" json:"source_request_id,omitempty"`
	Version         int64               `bson:"version" json:"version"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// RemainingSeats is capacity minus registrations, never below zero.
func (e Event) RemainingSeats() int {
	n := e.Capacity - len(e.RegisteredStudents)
	if n < 0 {
		return 0
	}
	return n
}

// IsRegistered reports whether the student is in RegisteredStudents.
func (e Event) IsRegistered(studentID primitive.ObjectID) bool {
	return containsID(e.RegisteredStudents, studentID)
}

// IsApproved reports whether the student is in ApprovedStudents.
func (e Event) IsApproved(studentID primitive.ObjectID) bool {
	return containsID(e.ApprovedStudents, studentID)
}

// IsRejected reports whether the student is in RejectedStudents.
func (e Event) IsRejected(studentID primitive.ObjectID) bool {
	return containsID(e.RejectedStudents, studentID)
}

// AttendanceFor returns the attendance entry for a student, if marked.
func (e Event) AttendanceFor(studentID primitive.ObjectID) (AttendanceEntry, bool) {
	for _, a := range e.Attendance {
		if a.StudentID == studentID {
			return a, true
		}
	}
	return AttendanceEntry{}, false
}

// EducatorID returns the assigned educator's id, or NilObjectID.
func (e Event) EducatorID() primitive.ObjectID {
	if e.AssignedEducator == nil {
		return primitive.NilObjectID
	}
	return e.AssignedEducator.EducatorID
}

// QuantityOf returns the assigned quantity for a resource (0 if absent).
func (e Event) QuantityOf(resourceID primitive.ObjectID) int {
	for _, l := range e.AssignedResources {
		if l.ResourceID == resourceID {
			return l.Quantity
		}
	}
	return 0
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

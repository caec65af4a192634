// internal/domain/models/eventrequest.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Request statuses shared by event and resource requests.
const (
	RequestPending   = "pending"
	RequestApproved  = "approved"
	RequestRejected  = "rejected"
	RequestCompleted = "completed"
)

// EventRequest is a student or educator proposal for a new event.
// EventID is set once an institution creates the event from this request.
type EventRequest struct {
	ID                 primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Title              string              `bson:"title" json:"title"`
	Description        string              `bson:"description,omitempty" json:"description,omitempty"`
	PreferredDate      time.Time           `bson:"preferred_date" json:"preferred_date"`
	RequestedBy        primitive.ObjectID  `bson:"requested_by" json:"requested_by"`
	RequesterRole      string              `bson:"requester_role" json:"requester_role"`
	RequestedResources []ResourceLine      `bson:"requested_resources" json:"requested_resources"`
	ApprovedEducator   *primitive.ObjectID `bson:"approved_educator,omitempty" json:"approved_educator,omitempty"`
	EventID            *primitive.ObjectID `bson:"event_id,omitempty" json:"event_id,omitempty"`
	Status             string              `bson:"status" json:"status"`

	ReviewedBy *primitive.ObjectID `bson:"reviewed_by,omitempty" json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time          `bson:"reviewed_at,omitempty" json:"reviewed_at,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

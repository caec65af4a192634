// internal/domain/models/resourcerequest.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ResourceRequest is an educator's mid-event top-up request.
type ResourceRequest struct {
	ID                 primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	EventID            primitive.ObjectID  `bson:"event_id" json:"event_id"`
	EducatorID         primitive.ObjectID  `bson:"educator_id" json:"educator_id"`
	RequestedResources []ResourceLine      `bson:"requested_resources" json:"requested_resources"`
	Status             string              `bson:"status" json:"status"` // pending | approved | rejected
	RequestedAt        time.Time           `bson:"requested_at" json:"requested_at"`
	ReviewedAt         *time.Time          `bson:"reviewed_at,omitempty" json:"reviewed_at,omitempty"`
	ReviewedBy         *primitive.ObjectID `bson:"reviewed_by,omitempty" json:"reviewed_by,omitempty"`
}

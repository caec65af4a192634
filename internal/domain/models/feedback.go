// internal/domain/models/feedback.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Rating bounds for feedback.
const (
	MinRating = 1
	MaxRating = 5
)

// Feedback is written at event completion and never updated.
type Feedback struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	StudentID primitive.ObjectID `bson:"student_id" json:"student_id"`
	EventID   primitive.ObjectID `bson:"event_id" json:"event_id"`
	Rating    int                `bson:"rating" json:"rating"`
	Comment   string             `bson:"comment,omitempty" json:"comment,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

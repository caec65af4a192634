// internal/domain/models/resource.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Resource is shared inventory. Available is only ever changed through
// reserve/release so that 0 <= Available <= Total holds.
type Resource struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	NameCI      string             `bson:"name_ci" json:"-"`
	Type        string             `bson:"type" json:"type"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Total       int                `bson:"total" json:"total"`
	Available   int                `bson:"available" json:"available"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// ResourceLine is a quantity of one resource, used for event assignments
// and for request line items.
type ResourceLine struct {
	ResourceID primitive.ObjectID `bson:"resource_id" json:"resource_id"`
	Quantity   int                `bson:"quantity" json:"quantity"`
}

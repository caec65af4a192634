// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles recognised by the workflow gate.
const (
	RoleInstitution = "institution"
	RoleEducator    = "educator"
	RoleStudent     = "student"
)

// User statuses.
const (
	UserActive   = "active"
	UserDisabled = "disabled"
)

// User represents institutions, educators, and students.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	NameCI       string             `bson:"name_ci" json:"-"` // lowercase, diacritics-stripped
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	Role         string             `bson:"role" json:"role"` // institution | educator | student
	Status       string             `bson:"status" json:"status"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// IsValidRole reports whether role is one of the three workflow roles.
func IsValidRole(role string) bool {
	switch role {
	case RoleInstitution, RoleEducator, RoleStudent:
		return true
	}
	return false
}

// UserRef is the populated view of a user embedded in read responses.
type UserRef struct {
	ID    primitive.ObjectID `json:"id"`
	Name  string             `json:"name"`
	Email string             `json:"email"`
}

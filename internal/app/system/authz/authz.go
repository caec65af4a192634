// internal/app/system/authz/authz.go
package authz

import (
	"net/http"
	"strings"

	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/auth"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Actor is the verified caller handed to the workflow services.
type Actor struct {
	ID   primitive.ObjectID
	Role string
	Name string
}

// UserCtx returns the user's role (lowercased), name, Mongo ObjectID, and a found flag.
// If no user is present in context or the user ID is malformed, it returns
// "visitor", "", NilObjectID, false. This ensures callers can trust that
// ok=true means a valid, authenticated user with a valid ObjectID.
func UserCtx(r *http.Request) (role string, name string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "visitor", "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed id in a verified token; fail closed.
		return "visitor", "", primitive.NilObjectID, false
	}
	return strings.ToLower(user.Role), user.Name, userID, true
}

// ActorFrom builds the Actor for the current request.
func ActorFrom(r *http.Request) (Actor, bool) {
	role, name, id, ok := UserCtx(r)
	if !ok {
		return Actor{}, false
	}
	return Actor{ID: id, Role: role, Name: name}, true
}

// IsInstitution reports whether the current request's user is an institution.
func IsInstitution(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == models.RoleInstitution
}

// IsEducator reports whether the current request's user is an educator.
func IsEducator(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == models.RoleEducator
}

// IsStudent reports whether the current request's user is a student.
func IsStudent(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == models.RoleStudent
}

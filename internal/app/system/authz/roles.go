// internal/app/system/authz/roles.go
package authz

import (
	"net/http"
	"strings"

	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/models"
)

// WorkflowRoles are the roles allowed through the /api workflow routes.
var WorkflowRoles = []string{models.RoleInstitution, models.RoleEducator, models.RoleStudent}

// HasAnyRole reports whether the current request's user has any of the given roles.
// Returns false if no user is present (i.e., not signed in).
func HasAnyRole(r *http.Request, roles ...string) bool {
	role, _, _, ok := UserCtx(r)
	if !ok {
		return false
	}
	return roleIn(role, roles)
}

// HasAnyRole reports whether the actor holds one of roles.
func (a Actor) HasAnyRole(roles ...string) bool {
	return roleIn(a.Role, roles)
}

func roleIn(role string, roles []string) bool {
	cur := strings.ToLower(role)
	for _, want := range roles {
		if cur == strings.ToLower(strings.TrimSpace(want)) {
			return true
		}
	}
	return false
}

package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/auth"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TestUser represents user data for testing HTTP handlers.
type TestUser struct {
	ID    string
	Name  string
	Email string
	Role  string
}

// InstitutionUser returns a TestUser with the institution role.
func InstitutionUser() TestUser {
	return TestUser{ID: primitive.NewObjectID().Hex(), Name: "Test Institution", Email: "institution@test.com", Role: models.RoleInstitution}
}

// EducatorUser returns a TestUser with the educator role.
func EducatorUser() TestUser {
	return TestUser{ID: primitive.NewObjectID().Hex(), Name: "Test Educator", Email: "educator@test.com", Role: models.RoleEducator}
}

// StudentUser returns a TestUser with the student role.
func StudentUser() TestUser {
	return TestUser{ID: primitive.NewObjectID().Hex(), Name: "Test Student", Email: "student@test.com", Role: models.RoleStudent}
}

// AsTestUser converts a stored user into a TestUser.
func AsTestUser(u models.User) TestUser {
	return TestUser{ID: u.ID.Hex(), Name: u.Name, Email: u.Email, Role: u.Role}
}

// WithUser adds a user to the request context for testing authenticated handlers.
// This bypasses the token middleware and injects the user directly.
func WithUser(r *http.Request, user TestUser) *http.Request {
	return auth.WithTestUser(r, &auth.SessionUser{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
	})
}

// NewJSONRequest builds a request with a JSON body.
func NewJSONRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// DecodeJSON decodes a recorder body into v.
func DecodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

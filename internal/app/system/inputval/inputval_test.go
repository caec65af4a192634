package inputval

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/apperr"
)

type lineInput struct {
	ResourceID string `json:"resource_id" validate:"required,objectid"`
	Quantity   int    `json:"quantity" validate:"gt=0"`
}

type sampleInput struct {
	Name      string      `json:"name" validate:"notblank"`
	Email     string      `json:"email" validate:"required,email"`
	Role      string      `json:"role" validate:"role"`
	Resources []lineInput `json:"resources" validate:"dive"`
}

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"user@example.com", true},
		{"user+tag@example.com", true},
		{"", false},
		{"   ", false},
		{"user", false},
		{"user@", false},
		{"@example.com", false},
		{"User Name <user@example.com>", false},
		{"user @example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			if got := IsValidEmail(tt.email); got != tt.want {
				t.Errorf("IsValidEmail(%q) = %v, want %v", tt.email, got, tt.want)
			}
		})
	}
}

func TestStruct_FieldPaths(t *testing.T) {
	in := sampleInput{
		Name:  "  ",
		Email: "nope",
		Role:  "admin",
		Resources: []lineInput{
			{ResourceID: "507f1f77bcf86cd799439011", Quantity: 1},
			{ResourceID: "bad", Quantity: 0},
		},
	}

	err := Struct(in)
	if err == nil {
		t.Fatal("expected validation error")
	}
	ae := apperr.As(err)
	if ae.Kind != apperr.KindValidation {
		t.Fatalf("kind = %q, want validation", ae.Kind)
	}
	for _, key := range []string{"name", "email", "role", "resources[1].resource_id", "resources[1].quantity"} {
		if _, ok := ae.Fields[key]; !ok {
			t.Errorf("expected field %q in %v", key, ae.Fields)
		}
	}
	if _, ok := ae.Fields["resources[0].quantity"]; ok {
		t.Error("valid line should not be reported")
	}
	if msg := ae.Fields["name"]; msg != "name cannot be blank" {
		t.Errorf("name message = %q", msg)
	}
}

func TestStruct_Valid(t *testing.T) {
	in := sampleInput{Name: "Ada", Email: "ada@example.com", Role: "student"}
	if err := Struct(in); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid", `{"name":"Ada","email":"ada@example.com","role":"educator"}`, false},
		{"empty body", ``, true},
		{"malformed", `{"name":`, true},
		{"unknown field", `{"name":"Ada","email":"ada@example.com","role":"educator","admin":true}`, true},
		{"wrong type", `{"name":1}`, true},
		{"fails validation", `{"name":"Ada","email":"x","role":"educator"}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/", strings.NewReader(tt.body))
			var dst sampleInput
			err := Decode(r, &dst)
			if tt.wantErr {
				if apperr.KindOf(err) != apperr.KindValidation {
					t.Errorf("expected validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

// A required count must be present but may be zero.
func TestDecode_RequiredCount(t *testing.T) {
	type countInput struct {
		Total *int `json:"total" validate:"required,min=0"`
	}
	tests := []struct {
		body    string
		wantErr bool
	}{
		{`{"total":3}`, false},
		{`{"total":0}`, false},
		{`{}`, true},
		{`{"total":null}`, true},
		{`{"total":-1}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			var dst countInput
			err := Decode(httptest.NewRequest("POST", "/", strings.NewReader(tt.body)), &dst)
			if tt.wantErr {
				if apperr.KindOf(err) != apperr.KindValidation {
					t.Errorf("expected validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestObjectID(t *testing.T) {
	if _, err := ObjectID("event_id", "507f1f77bcf86cd799439011"); err != nil {
		t.Errorf("valid id rejected: %v", err)
	}
	_, err := ObjectID("event_id", "xyz")
	if ae := apperr.As(err); ae == nil || ae.Fields["event_id"] == "" {
		t.Errorf("expected field error for event_id, got %v", err)
	}
}

// Package shared holds request helpers used by every JSON feature.
package shared

import (
	"net/http"
	"strings"
	"time"

	uierrors "github.com/M-Jeevanantham/edu-event-management-erp/internal/app/features/errors"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/authz"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/inputval"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/apperr"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Actor returns the verified caller. Without one it writes 401 and
// returns false.
func Actor(w http.ResponseWriter, r *http.Request, errLog *uierrors.ErrorLogger) (authz.Actor, bool) {
	a, ok := authz.ActorFrom(r)
	if !ok {
		errLog.Write(w, r, apperr.Authentication("sign in required"))
		return authz.Actor{}, false
	}
	return a, true
}

// PathID parses the chi URL parameter name. A malformed id is answered
// with 400 and false.
func PathID(w http.ResponseWriter, r *http.Request, errLog *uierrors.ErrorLogger, name string) (primitive.ObjectID, bool) {
	oid, err := inputval.ObjectID(name, chi.URLParam(r, name))
	if err != nil {
		errLog.Write(w, r, err)
		return primitive.NilObjectID, false
	}
	return oid, true
}

// OptionalID parses hex, which inputval has already checked. Empty is nil.
func OptionalID(hex string) *primitive.ObjectID {
	if hex == "" {
		return nil
	}
	oid, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return nil
	}
	return &oid
}

// ResourceLine is the wire form of one requested or assigned resource.
type ResourceLine struct {
	ResourceID string `json:"resource_id" validate:"required,objectid"`
	Quantity   int    `json:"quantity" validate:"required,min=1"`
}

// Lines converts validated wire lines.
func Lines(in []ResourceLine) []models.ResourceLine {
	out := make([]models.ResourceLine, 0, len(in))
	for _, l := range in {
		oid, _ := primitive.ObjectIDFromHex(l.ResourceID)
		out = append(out, models.ResourceLine{ResourceID: oid, Quantity: l.Quantity})
	}
	return out
}

// Date accepts RFC 3339 or a bare YYYY-MM-DD (midnight UTC).
func Date(field, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Time{}, apperr.ValidationFields(map[string]string{
		field: field + " must be a date (YYYY-MM-DD or RFC 3339)",
	})
}

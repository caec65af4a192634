// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates the collections and attaches their JSON-Schema
// validators. Deployments without collMod support (some DocumentDB
// versions) keep the collections and skip the validators.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	existing, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		// Fall back to create-and-tolerate-exists below.
		zap.L().Warn("listCollections failed", zap.Error(err))
	}
	have := make(map[string]bool, len(existing))
	for _, n := range existing {
		have[n] = true
	}

	var problems []string
	for _, c := range collections() {
		if !have[c.name] {
			if err := db.CreateCollection(ctx, c.name); err != nil && !hasCode(err, codeNamespaceExists) {
				problems = append(problems, c.name+": "+err.Error())
				continue
			}
			zap.L().Info("created collection", zap.String("collection", c.name))
		}
		if c.schema == nil {
			continue
		}
		if err := setValidator(ctx, db, c.name, c.schema); err != nil {
			if hasCode(err, codeCommandNotFound, codeNotImplemented) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", c.name))
				continue
			}
			problems = append(problems, c.name+": "+err.Error())
		}
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

type collection struct {
	name   string
	schema bson.M
}

func collections() []collection {
	return []collection{
		{"users", usersSchema()},
		{"resources", resourcesSchema()},
		{"events", eventsSchema()},
		{"event_requests", eventRequestsSchema()},
		{"resource_requests", resourceRequestsSchema()},
		{"feedback", feedbackSchema()},
		// Append-only; written by the audit store.
		{"audit_events", nil},
	}
}

func setValidator(ctx context.Context, db *mongo.Database, name string, schema bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: schema},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	if err := db.RunCommand(ctx, cmd).Err(); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

// Server error codes tolerated while ensuring the schema.
const (
	codeNamespaceExists = 48
	codeCommandNotFound = 59
	codeNotImplemented  = 115
)

// hasCode reports whether err is a command error with one of codes. Older
// servers and proxies sometimes drop the code, so the message is checked
// as well.
func hasCode(err error, codes ...int32) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		for _, c := range codes {
			if ce.Code == c {
				return true
			}
		}
	}
	msg := strings.ToLower(err.Error())
	for _, c := range codes {
		for _, frag := range codeMessages[c] {
			if strings.Contains(msg, frag) {
				return true
			}
		}
	}
	return false
}

var codeMessages = map[int32][]string{
	codeNamespaceExists: {"already exists", "namespace exists"},
	codeCommandNotFound: {"no such command"},
	codeNotImplemented:  {"not implemented", "not supported"},
}

/* ------------------------- JSON-Schema docs ---------------------- */

var nonBlank = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}

func enum(values ...string) bson.M {
	a := bson.A{}
	for _, v := range values {
		a = append(a, v)
	}
	return bson.M{"enum": a}
}

func resourceLines() bson.M {
	return bson.M{
		"bsonType": "array",
		"items": bson.M{
			"bsonType": "object",
			"required": bson.A{"resource_id", "quantity"},
			"properties": bson.M{
				"resource_id": bson.M{"bsonType": "objectId"},
				"quantity":    bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 1},
			},
		},
	}
}

func usersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "email", "password_hash", "role", "status"},
			"properties": bson.M{
				"name":          nonBlank,
				"name_ci":       bson.M{"bsonType": "string"},
				"email":         nonBlank,
				"password_hash": nonBlank,
				"role":          enum(models.RoleInstitution, models.RoleEducator, models.RoleStudent),
				"status":        enum(models.UserActive, models.UserDisabled),
			},
		},
	}
}

// total and available are non-negative; available <= total is kept by the
// guarded updates in the resource store.
func resourcesSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "name_ci", "type", "total", "available"},
			"properties": bson.M{
				"name":        nonBlank,
				"name_ci":     nonBlank,
				"type":        nonBlank,
				"description": bson.M{"bsonType": "string"},
				"total":       bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 0},
				"available":   bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 0},
			},
		},
	}
}

func eventsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{
				"title", "date", "location", "capacity", "created_by", "status",
				"assigned_resources", "registered_students", "approved_students",
				"registered_students_attendance", "version",
			},
			"properties": bson.M{
				"title":      nonBlank,
				"date":       bson.M{"bsonType": "date"},
				"location":   nonBlank,
				"capacity":   bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 1},
				"created_by": bson.M{"bsonType": "objectId"},
				"status":     enum(models.EventUpcoming, models.EventOngoing, models.EventCompleted, models.EventCancelled),
				"assigned_educator": bson.M{
					"bsonType": "object",
					"required": bson.A{"educator_id", "status"},
					"properties": bson.M{
						"educator_id": bson.M{"bsonType": "objectId"},
						"status":      enum(models.AssignmentPending, models.AssignmentAccepted, models.AssignmentRejected),
					},
				},
				"assigned_resources":             resourceLines(),
				"registered_students":            bson.M{"bsonType": "array", "items": bson.M{"bsonType": "objectId"}},
				"approved_students":              bson.M{"bsonType": "array", "items": bson.M{"bsonType": "objectId"}},
				"rejected_students":              bson.M{"bsonType": "array", "items": bson.M{"bsonType": "objectId"}},
				"registered_students_attendance": bson.M{"bsonType": "array"},
				"version":                        bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 0},
			},
		},
	}
}

func eventRequestsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"title", "preferred_date", "requested_by", "requester_role", "status"},
			"properties": bson.M{
				"title":               nonBlank,
				"preferred_date":      bson.M{"bsonType": "date"},
				"requested_by":        bson.M{"bsonType": "objectId"},
				"requester_role":      enum(models.RoleStudent, models.RoleEducator),
				"requested_resources": resourceLines(),
				"status":              enum(models.RequestPending, models.RequestApproved, models.RequestRejected, models.RequestCompleted),
			},
		},
	}
}

func resourceRequestsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"event_id", "educator_id", "requested_resources", "status", "requested_at"},
			"properties": bson.M{
				"event_id":            bson.M{"bsonType": "objectId"},
				"educator_id":         bson.M{"bsonType": "objectId"},
				"requested_resources": resourceLines(),
				"status":              enum(models.RequestPending, models.RequestApproved, models.RequestRejected),
				"requested_at":        bson.M{"bsonType": "date"},
			},
		},
	}
}

func feedbackSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"event_id", "student_id", "rating", "created_at"},
			"properties": bson.M{
				"event_id":   bson.M{"bsonType": "objectId"},
				"student_id": bson.M{"bsonType": "objectId"},
				"rating":     bson.M{"bsonType": bson.A{"int", "long"}, "minimum": models.MinRating, "maximum": models.MaxRating},
				"comment":    bson.M{"bsonType": "string"},
				"created_at": bson.M{"bsonType": "date"},
			},
		},
	}
}

// internal/app/system/inputval/inputval.go
package inputval

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/apperr"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/models"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxBodyBytes caps JSON request bodies.
const MaxBodyBytes = 1 << 20

var (
	validate   *validator.Validate
	translator ut.Translator

	// custom validation tags
	notBlankTag = "notblank"
	objectIDTag = "objectid"
	roleTag     = "role"
)

func init() {
	validate = validator.New()

	english := en.New()
	uni := ut.New(english, english)
	translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(notBlankTag, func(fl validator.FieldLevel) bool {
		s, ok := fl.Field().Interface().(string)
		return ok && strings.TrimSpace(s) != ""
	})
	_ = validate.RegisterValidation(objectIDTag, func(fl validator.FieldLevel) bool {
		s, ok := fl.Field().Interface().(string)
		return ok && primitive.IsValidObjectID(s)
	})
	_ = validate.RegisterValidation(roleTag, func(fl validator.FieldLevel) bool {
		s, ok := fl.Field().Interface().(string)
		return ok && models.IsValidRole(s)
	})

	custom := map[string]string{
		notBlankTag: "{0} cannot be blank",
		objectIDTag: "{0} must be a valid id",
		roleTag:     "{0} must be one of institution, educator, student",
	}
	for tag, msg := range custom {
		msg := msg
		_ = validate.RegisterTranslation(tag, translator,
			func(t ut.Translator) error { return t.Add(tag, msg, true) },
			func(t ut.Translator, fe validator.FieldError) string {
				s, _ := t.T(fe.Tag(), fe.Field())
				return s
			})
	}
}

// Struct validates v against its `validate` tags. Failures come back as an
// apperr validation error keyed by JSON field path (e.g. "resources[0].quantity").
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return apperr.Validation("invalid input")
	}
	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		fields[fieldPath(fe.Namespace())] = fe.Translate(translator)
	}
	return apperr.ValidationFields(fields)
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

// IsValidEmail reports whether s is a bare address (no display name).
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && validate.Var(s, "email") == nil
}

// Decode reads a JSON body into dst and validates it.
// Unknown fields are rejected so that typos surface as validation errors.
func Decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation("request body is required")
		}
		return apperr.Validation("invalid JSON body: %s", jsonProblem(err))
	}
	return Struct(dst)
}

func jsonProblem(err error) string {
	var te *json.UnmarshalTypeError
	if errors.As(err, &te) {
		return fmt.Sprintf("%s must be %s", te.Field, te.Type.String())
	}
	var se *json.SyntaxError
	if errors.As(err, &se) {
		return fmt.Sprintf("syntax error at offset %d", se.Offset)
	}
	return err.Error()
}

// ObjectID parses a hex id, returning a validation error naming field.
func ObjectID(field, hex string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(hex))
	if err != nil {
		return primitive.NilObjectID, apperr.ValidationFields(map[string]string{field: field + " must be a valid id"})
	}
	return oid, nil
}

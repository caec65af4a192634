// Package apperr defines the error taxonomy shared by the stores, the
// workflow services, and the JSON transport.
//
// Every failure a caller can act on is an *Error with a Kind. Sentinel
// values (ErrNotFound, ErrCapacityExceeded, ...) match any *Error of the
// same kind through errors.Is, so callers never compare messages.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Kind classifies an error for callers and for HTTP mapping.
type Kind string

const (
	KindValidation               Kind = "validation_error"
	KindAuthentication           Kind = "authentication_error"
	KindAuthorization            Kind = "authorization_error"
	KindNotFound                 Kind = "not_found"
	KindCapacityExceeded         Kind = "capacity_exceeded"
	KindDuplicateRegistration    Kind = "duplicate_registration"
	KindInsufficientAvailability Kind = "insufficient_availability"
	KindAlreadyApproved          Kind = "already_approved"
	KindAlreadyMarked            Kind = "already_marked"
	KindNotRegistered            Kind = "not_registered"
	KindConflict                 Kind = "conflict"
	KindInternal                 Kind = "internal_error"
)

// Error is the concrete error type.
type Error struct {
	Kind    Kind
	Message string
	// IDs lists offending entities (students already marked, the resource
	// that ran short).
	IDs []string
	// Fields maps input field names to messages for validation failures.
	Fields map[string]string
	// Err is the underlying cause, never shown to clients.
	Err error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrValidation               = &Error{Kind: KindValidation}
	ErrAuthentication           = &Error{Kind: KindAuthentication}
	ErrAuthorization            = &Error{Kind: KindAuthorization}
	ErrNotFound                 = &Error{Kind: KindNotFound}
	ErrCapacityExceeded         = &Error{Kind: KindCapacityExceeded}
	ErrDuplicateRegistration    = &Error{Kind: KindDuplicateRegistration}
	ErrInsufficientAvailability = &Error{Kind: KindInsufficientAvailability}
	ErrAlreadyApproved          = &Error{Kind: KindAlreadyApproved}
	ErrAlreadyMarked            = &Error{Kind: KindAlreadyMarked}
	ErrNotRegistered            = &Error{Kind: KindNotRegistered}
	ErrConflict                 = &Error{Kind: KindConflict}
	ErrInternal                 = &Error{Kind: KindInternal}
)

func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// ValidationFields reports one message per offending input field.
func ValidationFields(fields map[string]string) *Error {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return &Error{
		Kind:    KindValidation,
		Message: "invalid input: " + strings.Join(keys, ", "),
		Fields:  fields,
	}
}

func Authentication(msg string) *Error {
	return &Error{Kind: KindAuthentication, Message: msg}
}

func Authorization(format string, args ...any) *Error {
	return &Error{Kind: KindAuthorization, Message: fmt.Sprintf(format, args...)}
}

// NotFound names the missing entity ("event", "resource", ...).
func NotFound(entity string) *Error {
	return &Error{Kind: KindNotFound, Message: entity + " not found"}
}

func CapacityExceeded() *Error {
	return &Error{Kind: KindCapacityExceeded, Message: "event is full"}
}

func DuplicateRegistration() *Error {
	return &Error{Kind: KindDuplicateRegistration, Message: "student is already registered for this event"}
}

// InsufficientAvailability names the resource that cannot cover the quantity.
func InsufficientAvailability(resourceID primitive.ObjectID, name string, available, requested int) *Error {
	label := name
	if label == "" {
		label = resourceID.Hex()
	}
	return &Error{
		Kind:    KindInsufficientAvailability,
		Message: fmt.Sprintf("insufficient availability for %s: requested %d, available %d", label, requested, available),
		IDs:     []string{resourceID.Hex()},
	}
}

func AlreadyApproved() *Error {
	return &Error{Kind: KindAlreadyApproved, Message: "student is already approved"}
}

// AlreadyMarked lists every student in the batch whose attendance exists.
func AlreadyMarked(studentIDs []primitive.ObjectID) *Error {
	ids := make([]string, 0, len(studentIDs))
	for _, id := range studentIDs {
		ids = append(ids, id.Hex())
	}
	return &Error{
		Kind:    KindAlreadyMarked,
		Message: "attendance already marked for: " + strings.Join(ids, ", "),
		IDs:     ids,
	}
}

func NotRegistered() *Error {
	return &Error{Kind: KindNotRegistered, Message: "student is not registered for this event"}
}

func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// Internal wraps an unexpected failure. The cause is kept for logs only.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal error", Err: err}
}

// KindOf returns the kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// As unwraps err into an *Error, wrapping foreign errors as internal.
func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err)
}

// HTTPStatus maps an error to the response status code.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation, KindCapacityExceeded, KindDuplicateRegistration,
		KindInsufficientAvailability, KindAlreadyApproved, KindAlreadyMarked,
		KindNotRegistered:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

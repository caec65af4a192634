// internal/app/features/errors/errors.go
package errors

import (
	"net/http"

	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/respond"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/apperr"
	"go.uber.org/zap"
)

// ErrorLogger writes workflow errors as JSON. Server-side failures are
// logged with the request id before the generic 500 body goes out.
type ErrorLogger struct {
	log *zap.Logger
}

// NewErrorLogger binds an ErrorLogger to logger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{log: logger}
}

// Write answers err with the status its kind maps to.
func (l *ErrorLogger) Write(w http.ResponseWriter, r *http.Request, err error) {
	var log *zap.Logger
	if l != nil {
		log = l.log
	}
	respond.Error(w, r, log, err)
}

// Handler is the errors feature handler.
// No DB needed; it answers router fallbacks.
type Handler struct{}

// NewHandler constructs an errors Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// NotFound answers unknown routes.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	respond.Error(w, r, nil, apperr.NotFound("route "+r.URL.Path))
}

// MethodNotAllowed answers a known route hit with the wrong verb.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusMethodNotAllowed, respond.ErrorBody{
		Error:   "method_not_allowed",
		Message: r.Method + " is not supported on " + r.URL.Path,
	})
}

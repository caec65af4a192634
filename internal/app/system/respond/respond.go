// Package respond writes JSON responses and maps workflow errors onto
// HTTP status codes.
package respond

import (
	"encoding/json"
	"net/http"

	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/apperr"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	IDs     []string          `json:"ids,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// OK writes v with 200.
func OK(w http.ResponseWriter, v any) {
	JSON(w, http.StatusOK, v)
}

// Created writes v with 201.
func Created(w http.ResponseWriter, v any) {
	JSON(w, http.StatusCreated, v)
}

// Message writes {"message": msg} with 200.
func Message(w http.ResponseWriter, msg string) {
	JSON(w, http.StatusOK, map[string]string{"message": msg})
}

// Error writes err as an ErrorBody. Server-side failures are logged with
// the request id and answered with a generic message.
func Error(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	e := apperr.As(err)
	status := apperr.HTTPStatus(e)

	if status >= http.StatusInternalServerError {
		if log != nil {
			log.Error("request failed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.Error(err))
		}
		JSON(w, status, ErrorBody{Error: string(apperr.KindInternal), Message: "internal server error"})
		return
	}

	JSON(w, status, ErrorBody{
		Error:   string(e.Kind),
		Message: e.Message,
		IDs:     e.IDs,
		Fields:  e.Fields,
	})
}

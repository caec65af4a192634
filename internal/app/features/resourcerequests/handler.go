// internal/app/features/resourcerequests/handler.go
package resourcerequests

import (
	uierrors "github.com/M-Jeevanantham/edu-event-management-erp/internal/app/features/errors"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/workflow"
	"go.uber.org/zap"
)

// Handler serves resource top-ups: submitted by the accepted educator,
// answered by the institution that owns the event.
type Handler struct {
	Svc    *workflow.Service
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
}

func NewHandler(svc *workflow.Service, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Svc: svc, Log: logger, ErrLog: errLog}
}

// internal/app/features/events/handler.go
package events

import (
	uierrors "github.com/M-Jeevanantham/edu-event-management-erp/internal/app/features/errors"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/workflow"
	"go.uber.org/zap"
)

// Handler serves event management for institutions and the roster,
// attendance and completion steps run by the accepted educator.
type Handler struct {
	Svc    *workflow.Service
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
}

func NewHandler(svc *workflow.Service, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Svc: svc, Log: logger, ErrLog: errLog}
}

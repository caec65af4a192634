// internal/app/features/eventrequests/handler.go
package eventrequests

import (
	uierrors "github.com/M-Jeevanantham/edu-event-management-erp/internal/app/features/errors"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/workflow"
	"go.uber.org/zap"
)

// Handler serves event requests: submission by students and educators,
// review by institutions.
type Handler struct {
	Svc    *workflow.Service
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
}

func NewHandler(svc *workflow.Service, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Svc: svc, Log: logger, ErrLog: errLog}
}

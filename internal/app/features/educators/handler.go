// internal/app/features/educators/handler.go
package educators

import (
	uierrors "github.com/M-Jeevanantham/edu-event-management-erp/internal/app/features/errors"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/workflow"
	"go.uber.org/zap"
)

// Handler serves the educator directory and an educator's own
// assignments.
type Handler struct {
	Svc    *workflow.Service
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
}

func NewHandler(svc *workflow.Service, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Svc: svc, Log: logger, ErrLog: errLog}
}

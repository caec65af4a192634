// internal/app/features/auditlog/handler.go
package auditlog

import (
	uierrors "github.com/M-Jeevanantham/edu-event-management-erp/internal/app/features/errors"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/store/audit"
	eventstore "github.com/M-Jeevanantham/edu-event-management-erp/internal/app/store/events"
	userstore "github.com/M-Jeevanantham/edu-event-management-erp/internal/app/store/users"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Audit  *audit.Store
	Events *eventstore.Store
	Users  *userstore.Store
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
}

// NewHandler constructs an audit trail handler bound to the given Mongo
// database and logger.
func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Audit:  audit.New(db),
		Events: eventstore.New(db),
		Users:  userstore.New(db),
		Log:    logger,
		ErrLog: errLog,
	}
}

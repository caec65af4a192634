// internal/app/features/login/handler.go
package login

import (
	uierrors "github.com/M-Jeevanantham/edu-event-management-erp/internal/app/features/errors"
	userstore "github.com/M-Jeevanantham/edu-event-management-erp/internal/app/store/users"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/auditlog"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/auth"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/ratelimit"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves self-service registration and login.
type Handler struct {
	Users      *userstore.Store
	Log        *zap.Logger
	ErrLog     *uierrors.ErrorLogger
	SessionMgr *auth.SessionManager
	AuditLog   *auditlog.Logger
	Limiter    *ratelimit.LoginLimiter // nil disables rate limiting
}

func NewHandler(db *mongo.Database, sessionMgr *auth.SessionManager, limiter *ratelimit.LoginLimiter, audit *auditlog.Logger, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:      userstore.New(db),
		Log:        logger,
		ErrLog:     errLog,
		SessionMgr: sessionMgr,
		AuditLog:   audit,
		Limiter:    limiter,
	}
}

// session is the body returned by register and login.
type session struct {
	Token     string      `json:"token"`
	ExpiresAt string      `json:"expires_at"`
	User      models.User `json:"user"`
}

// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/auditlog"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/auth"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/respond"
	"go.uber.org/zap"
)

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	AuditLog   *auditlog.Logger
}

func NewHandler(sessionMgr *auth.SessionManager, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
		AuditLog:   audit,
	}
}

// ServeLogout handles POST /api/auth/logout. Tokens are stateless, so
// logging out expires the cookie; bearer clients discard their token.
func (h *Handler) ServeLogout(w http.ResponseWriter, r *http.Request) {
	if u, ok := auth.CurrentUser(r); ok {
		h.AuditLog.Logout(r.Context(), r, u.ID)
	}

	if err := h.SessionMgr.SignOut(w, r); err != nil {
		// Still answer 200; the client drops its token either way.
		h.Log.Error("logout: save session", zap.Error(err))
	}

	respond.Message(w, "signed out")
}

package login

import (
	"net/http"
	"time"

	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/auth"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/inputval"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/normalize"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/respond"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/timeouts"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/apperr"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/models"
	"go.uber.org/zap"
)

type loginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// One message for unknown email and wrong password so that login does
// not reveal which accounts exist.
const badCredentials = "invalid email or password"

// HandleLogin handles POST /api/auth/login.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var in loginInput
	if err := inputval.Decode(r, &in); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	email := normalize.Email(in.Email)

	if h.Limiter != nil {
		if ok, reason := h.Limiter.Check(r, email); !ok {
			h.AuditLog.LoginFailedRateLimit(r.Context(), r, email)
			respond.JSON(w, http.StatusTooManyRequests, respond.ErrorBody{Error: "rate_limited", Message: reason})
			return
		}
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "login")
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, email)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			h.AuditLog.LoginFailedUserNotFound(ctx, r, email)
			h.ErrLog.Write(w, r, apperr.Authentication(badCredentials))
			return
		}
		h.ErrLog.Write(w, r, err)
		return
	}

	ok, err := auth.CheckPassword(u.PasswordHash, in.Password)
	if err != nil {
		h.Log.Error("password check failed", zap.String("user_id", u.ID.Hex()), zap.Error(err))
		h.ErrLog.Write(w, r, err)
		return
	}
	if !ok {
		h.AuditLog.LoginFailedWrongPassword(ctx, r, u.ID, email)
		h.ErrLog.Write(w, r, apperr.Authentication(badCredentials))
		return
	}
	if u.Status == models.UserDisabled {
		h.AuditLog.LoginFailedUserDisabled(ctx, r, u.ID, email)
		h.ErrLog.Write(w, r, apperr.Authentication("account is disabled"))
		return
	}

	out, err := h.startSession(w, r, u)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	if h.Limiter != nil {
		h.Limiter.ResetEmail(ctx, email)
	}
	h.AuditLog.LoginSuccess(ctx, r, u.ID, email)
	respond.OK(w, out)
}

// startSession issues a token and mirrors it into the session cookie.
func (h *Handler) startSession(w http.ResponseWriter, r *http.Request, u models.User) (session, error) {
	token, exp, err := h.SessionMgr.Tokens().Issue(u)
	if err != nil {
		h.Log.Error("issue token failed", zap.String("user_id", u.ID.Hex()), zap.Error(err))
		return session{}, err
	}
	if err := h.SessionMgr.SignIn(w, r, token); err != nil {
		// Bearer clients still get the token; only the cookie is lost.
		h.Log.Warn("save session cookie failed", zap.Error(err))
	}
	return session{Token: token, ExpiresAt: exp.Format(time.RFC3339), User: u}, nil
}

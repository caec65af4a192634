package login

import (
	"net/http"

	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/auth"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/inputval"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/respond"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/timeouts"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/models"
	"go.uber.org/zap"
)

type registerInput struct {
	Name     string `json:"name" validate:"required,notblank,max=200"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role" validate:"required,role"`
}

// HandleRegister handles POST /api/auth/register. The new account is
// signed in straight away.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var in registerInput
	if err := inputval.Decode(r, &in); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		h.Log.Error("hash password failed", zap.Error(err))
		h.ErrLog.Write(w, r, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "register")
	defer cancel()

	u, err := h.Users.Create(ctx, models.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         in.Role,
	})
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	h.AuditLog.UserRegistered(ctx, r, u.ID, u.Role, u.Email)

	out, err := h.startSession(w, r, u)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	respond.Created(w, out)
}

package profile

import (
	"net/http"

	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/authz"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/respond"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/timeouts"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/apperr"
)

// ServeProfile handles GET /api/auth/profile with the stored account.
func (h *Handler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	actor, ok := authz.ActorFrom(r)
	if !ok {
		h.ErrLog.Write(w, r, apperr.Authentication("sign in required"))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "profile")
	defer cancel()

	u, err := h.Users.GetByID(ctx, actor.ID)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	respond.OK(w, u)
}

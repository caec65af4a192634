package login

import "github.com/go-chi/chi/v5"

// Routes mounts the public auth endpoints (typically under /api/auth).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/register", h.HandleRegister)
	r.Post("/login", h.HandleLogin)
	return r
}

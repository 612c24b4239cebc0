// internal/app/features/login/routes.go
package login

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns a subrouter for the auth endpoints. requireAuth guards the
// endpoints that act on the signed-in user; sign-in and refresh are public.
func Routes(h *Handler, requireAuth func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/oauth", h.ServeOAuth)
	r.Post("/google", h.ServeGoogle)
	r.Post("/refresh", h.ServeRefresh)

	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/on-board", h.ServeOnboard)
		r.Post("/logout", h.ServeLogout)
	})

	return r
}

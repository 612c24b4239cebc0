// internal/app/features/users/routes.go
package users

import (
	"github.com/go-chi/chi/v5"
)

// Routes returns a subrouter for the user endpoints; mounted under
// /api/user behind the auth and onboarding middleware.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/my-ideas", h.ServeMyIdeas)
	r.Get("/my-teams", h.ServeMyTeams)
	r.Get("/my-stats", h.ServeMyStats)

	return r
}

// internal/app/features/ideas/routes.go
package ideas

import (
	"github.com/go-chi/chi/v5"
)

// Routes returns a subrouter for the idea endpoints; mounted under
// /api/idea behind the auth and onboarding middleware.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeFeed)
	r.Get("/search", h.ServeSearch)
	r.Post("/upload", h.ServeUpload)

	r.Route("/{slug}", func(r chi.Router) {
		r.Get("/", h.ServeDetail)
		r.Patch("/", h.ServeUpdate)
		r.Delete("/", h.ServeDelete)
		r.Post("/request", h.ServeRequest)
		r.Post("/accept", h.ServeAccept)
		r.Post("/reject", h.ServeReject)
		r.Post("/remove-member", h.ServeRemoveMember)
	})

	return r
}

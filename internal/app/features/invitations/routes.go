// internal/app/features/invitations/routes.go
package invitations

import (
	"github.com/go-chi/chi/v5"
	"github.com/presently-app/presently/internal/app/system/auth"
)

// Routes returns the router for invitation endpoints. Mounted under
// /api/invitations.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(auth.RequireSignedIn)

	r.Post("/", h.ServeCreate)
	r.Get("/", h.ServeListReceived)
	r.Get("/sent", h.ServeListSent)

	r.Route("/{invitationID}", func(r chi.Router) {
		r.Post("/accept", h.ServeAccept)
		r.Post("/ignore", h.ServeIgnore)
		r.Delete("/", h.ServeDelete)
	})

	return r
}

// internal/app/features/signups/routes.go
package signups

import (
	"github.com/go-chi/chi/v5"
	"github.com/presently-app/presently/internal/app/system/auth"
)

// Routes returns the router for signup endpoints. TokenRoutes covers
// the /api/signup/{token} link surface; Routes covers /api/signups.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(auth.RequireSignedIn)

	r.Get("/", h.ServeListMine)
	r.Get("/received", h.ServeListReceived)
	r.Get("/occasion/{occasionID}", h.ServeListForOccasion)

	r.Route("/{requestID}", func(r chi.Router) {
		r.Post("/approve", h.ServeApprove)
		r.Delete("/", h.ServeDelete)
	})

	return r
}

// TokenRoutes returns the router for the shareable signup link.
func TokenRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(auth.RequireSignedIn)

	r.Get("/{token}", h.ServePreview)
	r.Post("/{token}", h.ServeRequest)

	return r
}

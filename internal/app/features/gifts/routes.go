// internal/app/features/gifts/routes.go
package gifts

import (
	"github.com/go-chi/chi/v5"
	"github.com/presently-app/presently/internal/app/system/auth"
)

// Routes returns the router for gift-scoped endpoints. Mounted under
// /api/gifts.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(auth.RequireSignedIn)

	r.Route("/{giftID}", func(r chi.Router) {
		r.Get("/", h.ServeGet)
		r.Put("/", h.ServeUpdate)
		r.Delete("/", h.ServeDelete)
	})

	return r
}

// OccasionRoutes returns the router for the occasion-scoped gift
// endpoints. Mounted under /api/occasions/{occasionID}/gifts, inheriting
// the occasionID parameter from the parent router.
func OccasionRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.ServeCreate)
	r.Get("/", h.ServeList)

	return r
}

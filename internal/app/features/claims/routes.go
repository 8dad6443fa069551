// internal/app/features/claims/routes.go
package claims

import (
	"github.com/go-chi/chi/v5"
	"github.com/presently-app/presently/internal/app/system/auth"
)

// Routes returns the router for claim endpoints. Mounted under
// /api/claims.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(auth.RequireSignedIn)

	r.Post("/", h.ServeCreate)
	r.Delete("/gift/{giftID}", h.ServeRelease)

	return r
}

// OccasionRoutes returns the router for the occasion-scoped claim
// listing. Mounted under /api/occasions/{occasionID}/claims.
func OccasionRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)

	return r
}

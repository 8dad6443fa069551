// internal/app/features/profile/routes.go
package profile

import (
	"github.com/go-chi/chi/v5"
	"github.com/presently-app/presently/internal/app/system/auth"
)

// Routes returns the router for profile endpoints. Mounted under /api.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(auth.RequireSignedIn)

	r.Get("/me", h.ServeMe)
	r.Put("/me/name", h.ServeRename)
	r.Put("/me/nickname", h.ServeSetNickname)
	r.Get("/profiles/{userName}", h.ServeLookup)

	return r
}

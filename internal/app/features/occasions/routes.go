// internal/app/features/occasions/routes.go
package occasions

import (
	"github.com/go-chi/chi/v5"
	"github.com/presently-app/presently/internal/app/system/auth"
)

// Routes returns the router for occasion endpoints. Mounted under
// /api/occasions. The gift and claim subrouters are nested here so
// chi resolves /{occasionID}/gifts and /{occasionID}/claims inside the
// same tree; they read occasionID from the inherited route context.
func Routes(h *Handler, giftRoutes, claimRoutes chi.Router) chi.Router {
	r := chi.NewRouter()

	r.Use(auth.RequireSignedIn)

	r.Post("/", h.ServeCreate)
	r.Get("/", h.ServeList)

	r.Route("/{occasionID}", func(r chi.Router) {
		r.Get("/", h.ServeGet)
		r.Put("/", h.ServeUpdate)
		r.Delete("/", h.ServeDelete)

		r.Get("/participants", h.ServeListParticipants)
		r.Delete("/participants/me", h.ServeLeave)
		r.Put("/participants/me/nickname", h.ServeSetNickname)
		r.Delete("/participants/{profileID}", h.ServeRemoveParticipant)

		r.Mount("/gifts", giftRoutes)
		r.Mount("/claims", claimRoutes)
	})

	return r
}

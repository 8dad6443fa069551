// internal/app/features/logout/handler.go
package logout

import (
	"context"
	"net/http"

	"github.com/presently-app/presently/internal/app/store/logins"
	"github.com/presently-app/presently/internal/app/system/auth"
	"github.com/presently-app/presently/internal/app/system/timeouts"
	"go.uber.org/zap"
)

type Handler struct {
	Logins *loginstore.Store
	Log    *zap.Logger
}

func NewHandler(logins *loginstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Logins: logins, Log: logger}
}

// ServeLogout handles POST /logout. Clears the session cookie and
// revokes every login credential issued for the email.
func (h *Handler) ServeLogout(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if ok && u.Email != "" {
		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
		defer cancel()
		n, err := h.Logins.RevokeAll(ctx, u.Email)
		if err != nil {
			h.Log.Error("logout: revoke credentials", zap.Error(err))
		} else {
			h.Log.Info("revoked login credentials",
				zap.Int64("count", n),
				zap.String("profile_id", u.ProfileID.Hex()))
		}
	}

	if err := auth.SignOut(w, r); err != nil {
		h.Log.Error("logout: save session", zap.Error(err))
	}

	w.WriteHeader(http.StatusNoContent)
}

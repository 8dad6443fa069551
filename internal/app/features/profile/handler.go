// internal/app/features/profile/handler.go
package profile

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	uierrors "github.com/presently-app/presently/internal/app/features/errors"
	"github.com/presently-app/presently/internal/app/store/profiles"
	"github.com/presently-app/presently/internal/app/system/apperr"
	"github.com/presently-app/presently/internal/app/system/auth"
	"github.com/presently-app/presently/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Handler serves the caller's own profile and public profile lookups.
type Handler struct {
	Profiles *profilestore.Store
	Log      *zap.Logger
}

func NewHandler(profiles *profilestore.Store, logger *zap.Logger) *Handler {
	return &Handler{Profiles: profiles, Log: logger}
}

// profileResponse is the public shape of a profile.
type profileResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	HashCode int    `json:"hash_code"`
	UserName string `json:"user_name"`
	Nickname string `json:"nickname,omitempty"`
}

// ServeMe handles GET /api/me.
func (h *Handler) ServeMe(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Profiles.GetByID(ctx, u.ProfileID)
	if err != nil {
		uierrors.RenderError(w, h.Log, err)
		return
	}
	uierrors.RenderJSON(w, http.StatusOK, profileResponse{
		ID:       p.ID.Hex(),
		Name:     p.Name,
		HashCode: p.HashCode,
		UserName: p.UserName,
		Nickname: p.Nickname,
	})
}

// renameRequest is the JSON body for the rename endpoint.
type renameRequest struct {
	Name string `json:"name"`
}

// ServeRename handles PUT /api/me/name. Renaming keeps the old hash
// when the new combination is free and re-rolls it otherwise.
func (h *Handler) ServeRename(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	var req renameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		uierrors.RenderError(w, h.Log, apperr.Invalid("malformed request body"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, err := h.Profiles.Rename(ctx, u.ProfileID, req.Name)
	if err != nil {
		uierrors.RenderError(w, h.Log, err)
		return
	}

	h.Log.Info("profile renamed",
		zap.String("profile_id", p.ID.Hex()),
		zap.String("user_name", p.UserName))

	uierrors.RenderJSON(w, http.StatusOK, profileResponse{
		ID:       p.ID.Hex(),
		Name:     p.Name,
		HashCode: p.HashCode,
		UserName: p.UserName,
		Nickname: p.Nickname,
	})
}

// nicknameRequest is the JSON body for the nickname endpoint.
type nicknameRequest struct {
	Nickname string `json:"nickname"`
}

// ServeSetNickname handles PUT /api/me/nickname.
func (h *Handler) ServeSetNickname(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	var req nicknameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		uierrors.RenderError(w, h.Log, apperr.Invalid("malformed request body"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Profiles.SetNickname(ctx, u.ProfileID, req.Nickname); err != nil {
		uierrors.RenderError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ServeLookup handles GET /api/profiles/{userName}. Public within the
// signed-in surface: resolving a full user name is how invitations are
// addressed.
func (h *Handler) ServeLookup(w http.ResponseWriter, r *http.Request) {
	userName := chi.URLParam(r, "userName")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Profiles.GetByUserName(ctx, userName)
	if err != nil {
		uierrors.RenderError(w, h.Log, err)
		return
	}
	uierrors.RenderJSON(w, http.StatusOK, profileResponse{
		ID:       p.ID.Hex(),
		Name:     p.Name,
		HashCode: p.HashCode,
		UserName: p.UserName,
	})
}

// internal/app/features/claims/handler.go
package claims

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	uierrors "github.com/presently-app/presently/internal/app/features/errors"
	"github.com/presently-app/presently/internal/app/policy/claimpolicy"
	"github.com/presently-app/presently/internal/app/store/claims"
	"github.com/presently-app/presently/internal/app/store/gifts"
	"github.com/presently-app/presently/internal/app/store/occasions"
	"github.com/presently-app/presently/internal/app/store/participants"
	"github.com/presently-app/presently/internal/app/system/apperr"
	"github.com/presently-app/presently/internal/app/system/auth"
	"github.com/presently-app/presently/internal/app/system/timeouts"
	"github.com/presently-app/presently/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler serves claims. The claim listing leans on the same
// recipient-blind filter as gifts; anonymous claims never reveal their
// claimant on any path.
type Handler struct {
	Claims       *claimstore.Store
	Gifts        *giftstore.Store
	Occasions    *occasionstore.Store
	Participants *participantstore.Store
	Log          *zap.Logger
}

func NewHandler(
	claims *claimstore.Store,
	gifts *giftstore.Store,
	occasions *occasionstore.Store,
	participants *participantstore.Store,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Claims:       claims,
		Gifts:        gifts,
		Occasions:    occasions,
		Participants: participants,
		Log:          logger,
	}
}

// createRequest is the JSON body for claiming a gift.
type createRequest struct {
	GiftID    string `json:"gift_id"`
	Anonymous bool   `json:"anonymous"`
}

// claimResponse is the wire shape of a claim. ClaimedBy is empty for
// anonymous claims.
type claimResponse struct {
	ID         string `json:"id"`
	GiftID     string `json:"gift_id"`
	OccasionID string `json:"occasion_id"`
	ClaimedBy  string `json:"claimed_by,omitempty"`
	Anonymous  bool   `json:"anonymous"`
}

func toResponse(c models.Claim) claimResponse {
	resp := claimResponse{
		ID:         c.ID.Hex(),
		GiftID:     c.GiftID.Hex(),
		OccasionID: c.OccasionID.Hex(),
		Anonymous:  c.Anonymous,
	}
	if !c.Anonymous && !c.ClaimedBy.IsZero() {
		resp.ClaimedBy = c.ClaimedBy.Hex()
	}
	return resp
}

// ServeCreate handles POST /api/claims.
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		uierrors.RenderError(w, h.Log, apperr.Invalid("malformed request body"))
		return
	}
	giftID, err := primitive.ObjectIDFromHex(req.GiftID)
	if err != nil {
		uierrors.RenderError(w, h.Log, apperr.Invalid("malformed gift id"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	g, err := h.Gifts.GetByID(ctx, giftID)
	if err != nil {
		uierrors.RenderError(w, h.Log, err)
		return
	}
	isMember, err := h.isMember(ctx, g.OccasionID, u.ProfileID)
	if err != nil {
		uierrors.RenderError(w, h.Log, err)
		return
	}
	if err := claimpolicy.CanClaim(g, u.ProfileID, isMember); err != nil {
		uierrors.RenderError(w, h.Log, err)
		return
	}

	c, err := h.Claims.Create(ctx, giftID, u.ProfileID, req.Anonymous)
	if err != nil {
		uierrors.RenderError(w, h.Log, err)
		return
	}

	h.Log.Info("gift claimed",
		zap.String("gift_id", giftID.Hex()),
		zap.Bool("anonymous", req.Anonymous))

	uierrors.RenderJSON(w, http.StatusCreated, toResponse(c))
}

// ServeRelease handles DELETE /api/claims/gift/{giftID}. Claimant only.
func (h *Handler) ServeRelease(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	giftID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "giftID"))
	if err != nil {
		uierrors.RenderError(w, h.Log, apperr.NotFound("gift"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Claims.Delete(ctx, giftID, u.ProfileID); err != nil {
		uierrors.RenderError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ServeList handles GET /api/occasions/{occasionID}/claims. Claims on
// gifts meant for the caller stay hidden, wishlist entries included.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	occID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "occasionID"))
	if err != nil {
		uierrors.RenderError(w, h.Log, apperr.NotFound("occasion"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	isMember, err := h.isMember(ctx, occID, u.ProfileID)
	if err != nil {
		uierrors.RenderError(w, h.Log, err)
		return
	}
	if !isMember {
		uierrors.RenderError(w, h.Log, apperr.NotFound("occasion"))
		return
	}

	claims, err := h.Claims.ListVisible(ctx, occID, u.ProfileID)
	if err != nil {
		uierrors.RenderError(w, h.Log, err)
		return
	}

	resp := make([]claimResponse, 0, len(claims))
	for _, c := range claims {
		resp = append(resp, toResponse(c))
	}
	uierrors.RenderJSON(w, http.StatusOK, resp)
}

// isMember reports whether the profile is the organizer or a
// participant of the occasion.
func (h *Handler) isMember(ctx context.Context, occasionID, profileID primitive.ObjectID) (bool, error) {
	occ, err := h.Occasions.GetByID(ctx, occasionID)
	if err != nil {
		return false, err
	}
	if occ.Organizer == profileID {
		return true, nil
	}
	return h.Participants.Exists(ctx, occ.ID, profileID)
}

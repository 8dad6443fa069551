// internal/app/features/gifts/handler.go
package gifts

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	uierrors "github.com/presently-app/presently/internal/app/features/errors"
	"github.com/presently-app/presently/internal/app/policy/giftpolicy"
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

// Handler serves gift suggestions. Every read goes through the
// recipient-blind visibility filter, so a handler never holds a gift
// the caller is not allowed to see.
type Handler struct {
	Gifts        *giftstore.Store
	Occasions    *occasionstore.Store
	Participants *participantstore.Store
	Log          *zap.Logger
}

func NewHandler(
	gifts *giftstore.Store,
	occasions *occasionstore.Store,
	participants *participantstore.Store,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Gifts:        gifts,
		Occasions:    occasions,
		Participants: participants,
		Log:          logger,
	}
}

// giftRequest is the JSON body for create and update.
type giftRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	ImageURL     string `json:"image_url"`
	ShopURL      string `json:"shop_url"`
	SuggestedFor string `json:"suggested_for"`
}

// giftResponse is the wire shape of a gift.
type giftResponse struct {
	ID           string `json:"id"`
	OccasionID   string `json:"occasion_id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	ImageURL     string `json:"image_url,omitempty"`
	ShopURL      string `json:"shop_url,omitempty"`
	SuggestedBy  string `json:"suggested_by"`
	SuggestedFor string `json:"suggested_for"`
}

func toResponse(g models.Gift) giftResponse {
	return giftResponse{
		ID:           g.ID.Hex(),
		OccasionID:   g.OccasionID.Hex(),
		Name:         g.Name,
		Description:  g.Description,
		ImageURL:     g.ImageURL,
		ShopURL:      g.ShopURL,
		SuggestedBy:  g.SuggestedBy.Hex(),
		SuggestedFor: g.SuggestedFor.Hex(),
	}
}

// ServeCreate handles POST /api/occasions/{occasionID}/gifts. Both the
// suggester and the target must be members of the occasion.
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	occID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "occasionID"))
	if err != nil {
		uierrors.RenderError(w, h.Log, apperr.NotFound("occasion"))
		return
	}

	var req giftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		uierrors.RenderError(w, h.Log, apperr.Invalid("malformed request body"))
		return
	}
	target, err := primitive.ObjectIDFromHex(req.SuggestedFor)
	if err != nil {
		uierrors.RenderError(w, h.Log, apperr.Invalid("malformed suggested_for id"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	occ, err := h.Occasions.GetByID(ctx, occID)
	if err != nil {
		uierrors.RenderError(w, h.Log, err)
		return
	}

	suggesterIsMember, err := h.isMember(ctx, occ, u.ProfileID)
	if err != nil {
		uierrors.RenderError(w, h.Log, err)
		return
	}
	targetIsMember, err := h.isMember(ctx, occ, target)
	if err != nil {
		uierrors.RenderError(w, h.Log, err)
		return
	}
	if err := giftpolicy.CanSuggest(occ, suggesterIsMember, targetIsMember); err != nil {
		uierrors.RenderError(w, h.Log, err)
		return
	}

	g, err := h.Gifts.Create(ctx, models.Gift{
		OccasionID:   occ.ID,
		Name:         req.Name,
		Description:  req.Description,
		ImageURL:     req.ImageURL,
		ShopURL:      req.ShopURL,
		SuggestedBy:  u.ProfileID,
		SuggestedFor: target,
	})
	if err != nil {
		uierrors.RenderError(w, h.Log, err)
		return
	}

	h.Log.Info("gift suggested",
		zap.String("occasion_id", occ.ID.Hex()),
		zap.String("gift_id", g.ID.Hex()))

	uierrors.RenderJSON(w, http.StatusCreated, toResponse(g))
}

// ServeList handles GET /api/occasions/{occasionID}/gifts. Returns the
// gifts the caller may see.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	occID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "occasionID"))
	if err != nil {
		uierrors.RenderError(w, h.Log, apperr.NotFound("occasion"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	occ, err := h.Occasions.GetByID(ctx, occID)
	if err != nil {
		uierrors.RenderError(w, h.Log, err)
		return
	}
	isMember, err := h.isMember(ctx, occ, u.ProfileID)
	if err != nil {
		uierrors.RenderError(w, h.Log, err)
		return
	}
	if !isMember {
		uierrors.RenderError(w, h.Log, apperr.NotFound("occasion"))
		return
	}

	gifts, err := h.Gifts.ListVisible(ctx, occ.ID, u.ProfileID)
	if err != nil {
		uierrors.RenderError(w, h.Log, err)
		return
	}

	resp := make([]giftResponse, 0, len(gifts))
	for _, g := range gifts {
		resp = append(resp, toResponse(g))
	}
	uierrors.RenderJSON(w, http.StatusOK, resp)
}

// ServeGet handles GET /api/gifts/{giftID}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "giftID"))
	if err != nil {
		uierrors.RenderError(w, h.Log, apperr.NotFound("gift"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	g, err := h.Gifts.GetVisible(ctx, id, u.ProfileID)
	if err != nil {
		uierrors.RenderError(w, h.Log, err)
		return
	}
	uierrors.RenderJSON(w, http.StatusOK, toResponse(g))
}

// ServeUpdate handles PUT /api/gifts/{giftID}. Suggester only.
func (h *Handler) ServeUpdate(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	var req giftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		uierrors.RenderError(w, h.Log, apperr.Invalid("malformed request body"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	g, err := h.editableGift(ctx, r, u.ProfileID)
	if err != nil {
		uierrors.RenderError(w, h.Log, err)
		return
	}

	g, err = h.Gifts.Update(ctx, g.ID, req.Name, req.Description, req.ImageURL, req.ShopURL)
	if err != nil {
		uierrors.RenderError(w, h.Log, err)
		return
	}
	uierrors.RenderJSON(w, http.StatusOK, toResponse(g))
}

// ServeDelete handles DELETE /api/gifts/{giftID}. Suggester or the
// occasion's organizer; the gift's claim goes with it.
func (h *Handler) ServeDelete(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "giftID"))
	if err != nil {
		uierrors.RenderError(w, h.Log, apperr.NotFound("gift"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	g, err := h.Gifts.GetVisible(ctx, id, u.ProfileID)
	if err != nil {
		uierrors.RenderError(w, h.Log, err)
		return
	}
	occ, err := h.Occasions.GetByID(ctx, g.OccasionID)
	if err != nil {
		uierrors.RenderError(w, h.Log, err)
		return
	}
	if err := giftpolicy.CanDelete(g, occ, u.ProfileID); err != nil {
		uierrors.RenderError(w, h.Log, err)
		return
	}

	if err := h.Gifts.DeleteCascade(ctx, g.ID); err != nil {
		uierrors.RenderError(w, h.Log, err)
		return
	}

	h.Log.Info("gift deleted", zap.String("gift_id", g.ID.Hex()))
	w.WriteHeader(http.StatusNoContent)
}

// editableGift resolves {giftID} through the visibility filter and
// verifies the caller suggested it.
func (h *Handler) editableGift(ctx context.Context, r *http.Request, caller primitive.ObjectID) (models.Gift, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "giftID"))
	if err != nil {
		return models.Gift{}, apperr.NotFound("gift")
	}
	g, err := h.Gifts.GetVisible(ctx, id, caller)
	if err != nil {
		return models.Gift{}, err
	}
	if err := giftpolicy.CanEdit(g, caller); err != nil {
		return models.Gift{}, err
	}
	return g, nil
}

// isMember reports whether the profile is the organizer or a
// participant of the occasion.
func (h *Handler) isMember(ctx context.Context, occ models.Occasion, profileID primitive.ObjectID) (bool, error) {
	if occ.Organizer == profileID {
		return true, nil
	}
	return h.Participants.Exists(ctx, occ.ID, profileID)
}

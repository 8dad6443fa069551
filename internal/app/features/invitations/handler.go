// internal/app/features/invitations/handler.go
package invitations

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	uierrors "github.com/presently-app/presently/internal/app/features/errors"
	"github.com/presently-app/presently/internal/app/policy/occasionpolicy"
	"github.com/presently-app/presently/internal/app/store/invitations"
	"github.com/presently-app/presently/internal/app/store/occasions"
	"github.com/presently-app/presently/internal/app/store/participants"
	"github.com/presently-app/presently/internal/app/store/profiles"
	"github.com/presently-app/presently/internal/app/store/queries/participation"
	"github.com/presently-app/presently/internal/app/system/apperr"
	"github.com/presently-app/presently/internal/app/system/auth"
	"github.com/presently-app/presently/internal/app/system/timeouts"
	"github.com/presently-app/presently/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler serves invitation endpoints. Invitations are addressed by
// full user name (name plus hash), so guessing a display name is not
// enough to spam someone.
type Handler struct {
	Invitations   *invitationstore.Store
	Occasions     *occasionstore.Store
	Participants  *participantstore.Store
	Profiles      *profilestore.Store
	Participation *participation.Query
	Log           *zap.Logger
}

func NewHandler(
	invitations *invitationstore.Store,
	occasions *occasionstore.Store,
	participants *participantstore.Store,
	profiles *profilestore.Store,
	part *participation.Query,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Invitations:   invitations,
		Occasions:     occasions,
		Participants:  participants,
		Profiles:      profiles,
		Participation: part,
		Log:           logger,
	}
}

// createRequest is the JSON body for sending an invitation.
type createRequest struct {
	OccasionID string `json:"occasion_id"`
	UserName   string `json:"user_name"`
}

// invitationResponse is the wire shape of an invitation.
type invitationResponse struct {
	ID         string `json:"id"`
	OccasionID string `json:"occasion_id"`
	Sender     string `json:"sender"`
	Recipient  string `json:"recipient"`
	Status     string `json:"status"`
}

func toResponse(inv models.Invitation) invitationResponse {
	return invitationResponse{
		ID:         inv.ID.Hex(),
		OccasionID: inv.OccasionID.Hex(),
		Sender:     inv.Sender.Hex(),
		Recipient:  inv.Recipient.Hex(),
		Status:     inv.Status,
	}
}

// ServeCreate handles POST /api/invitations. Only the occasion's
// organizer may invite.
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		uierrors.RenderError(w, h.Log, apperr.Invalid("malformed request body"))
		return
	}
	occID, err := primitive.ObjectIDFromHex(req.OccasionID)
	if err != nil {
		uierrors.RenderError(w, h.Log, apperr.Invalid("malformed occasion id"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	occ, err := h.Occasions.GetByID(ctx, occID)
	if err != nil {
		uierrors.RenderError(w, h.Log, err)
		return
	}
	if err := occasionpolicy.CanManage(occ, u.ProfileID); err != nil {
		uierrors.RenderError(w, h.Log, err)
		return
	}

	recipient, err := h.Profiles.GetByUserName(ctx, req.UserName)
	if err != nil {
		uierrors.RenderError(w, h.Log, err)
		return
	}
	if recipient.ID == u.ProfileID {
		uierrors.RenderError(w, h.Log, apperr.Invalid("you cannot invite yourself"))
		return
	}

	already, err := h.Participants.Exists(ctx, occ.ID, recipient.ID)
	if err != nil {
		uierrors.RenderError(w, h.Log, err)
		return
	}
	if already {
		uierrors.RenderError(w, h.Log, apperr.Conflict("profile already participates in this occasion"))
		return
	}

	inv, err := h.Invitations.Create(ctx, occ.ID, u.ProfileID, recipient.ID)
	if err != nil {
		uierrors.RenderError(w, h.Log, err)
		return
	}

	h.Log.Info("invitation sent",
		zap.String("occasion_id", occ.ID.Hex()),
		zap.String("recipient", recipient.ID.Hex()))

	uierrors.RenderJSON(w, http.StatusCreated, toResponse(inv))
}

// ServeListReceived handles GET /api/invitations. Only pending
// invitations appear; ignored ones stay hidden.
func (h *Handler) ServeListReceived(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	invs, err := h.Invitations.ListByRecipient(ctx, u.ProfileID)
	if err != nil {
		uierrors.RenderError(w, h.Log, err)
		return
	}

	resp := make([]invitationResponse, 0, len(invs))
	for _, inv := range invs {
		resp = append(resp, toResponse(inv))
	}
	uierrors.RenderJSON(w, http.StatusOK, resp)
}

// ServeListSent handles GET /api/invitations/sent. Ignored invitations
// come back as pending, which keeps a quiet decline quiet.
func (h *Handler) ServeListSent(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	invs, err := h.Invitations.ListBySender(ctx, u.ProfileID)
	if err != nil {
		uierrors.RenderError(w, h.Log, err)
		return
	}

	resp := make([]invitationResponse, 0, len(invs))
	for _, inv := range invs {
		resp = append(resp, toResponse(inv))
	}
	uierrors.RenderJSON(w, http.StatusOK, resp)
}

// ServeAccept handles POST /api/invitations/{invitationID}/accept.
func (h *Handler) ServeAccept(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "invitationID"))
	if err != nil {
		uierrors.RenderError(w, h.Log, apperr.NotFound("invitation"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, err := h.Participation.AcceptInvitation(ctx, id, u.ProfileID)
	if err != nil {
		uierrors.RenderError(w, h.Log, err)
		return
	}

	h.Log.Info("invitation accepted",
		zap.String("occasion_id", p.OccasionID.Hex()),
		zap.String("profile_id", u.ProfileID.Hex()))

	uierrors.RenderJSON(w, http.StatusOK, map[string]string{
		"occasion_id": p.OccasionID.Hex(),
	})
}

// ServeIgnore handles POST /api/invitations/{invitationID}/ignore.
func (h *Handler) ServeIgnore(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "invitationID"))
	if err != nil {
		uierrors.RenderError(w, h.Log, apperr.NotFound("invitation"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Participation.IgnoreInvitation(ctx, id, u.ProfileID); err != nil {
		uierrors.RenderError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ServeDelete handles DELETE /api/invitations/{invitationID}. The
// sender may withdraw, the recipient may refuse outright.
func (h *Handler) ServeDelete(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "invitationID"))
	if err != nil {
		uierrors.RenderError(w, h.Log, apperr.NotFound("invitation"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	inv, err := h.Invitations.GetByID(ctx, id)
	if err != nil {
		uierrors.RenderError(w, h.Log, err)
		return
	}
	if inv.Sender != u.ProfileID && inv.Recipient != u.ProfileID {
		// Not yours to see.
		uierrors.RenderError(w, h.Log, apperr.NotFound("invitation"))
		return
	}

	if err := h.Invitations.Delete(ctx, inv.ID); err != nil {
		uierrors.RenderError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// internal/app/features/signups/handler.go
package signups

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	uierrors "github.com/presently-app/presently/internal/app/features/errors"
	"github.com/presently-app/presently/internal/app/policy/occasionpolicy"
	"github.com/presently-app/presently/internal/app/store/occasions"
	"github.com/presently-app/presently/internal/app/store/participants"
	"github.com/presently-app/presently/internal/app/store/profiles"
	"github.com/presently-app/presently/internal/app/store/queries/participation"
	"github.com/presently-app/presently/internal/app/store/signups"
	"github.com/presently-app/presently/internal/app/system/apperr"
	"github.com/presently-app/presently/internal/app/system/auth"
	"github.com/presently-app/presently/internal/app/system/timeouts"
	"github.com/presently-app/presently/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler serves the signup-link flow: a non-participant presents the
// occasion's signup token, files a request, and the organizer approves
// or rejects it.
type Handler struct {
	Signups       *signupstore.Store
	Occasions     *occasionstore.Store
	Participants  *participantstore.Store
	Profiles      *profilestore.Store
	Participation *participation.Query
	Log           *zap.Logger
}

func NewHandler(
	signups *signupstore.Store,
	occasions *occasionstore.Store,
	participants *participantstore.Store,
	profiles *profilestore.Store,
	part *participation.Query,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Signups:       signups,
		Occasions:     occasions,
		Participants:  participants,
		Profiles:      profiles,
		Participation: part,
		Log:           logger,
	}
}

// summaryResponse is what a signup-link holder learns about the
// occasion before joining: enough to recognize it, nothing more.
type summaryResponse struct {
	OccasionID string `json:"occasion_id"`
	Title      string `json:"title"`
	Organizer  string `json:"organizer_user_name"`
}

// requestResponse is the wire shape of a signup request.
type requestResponse struct {
	ID         string `json:"id"`
	OccasionID string `json:"occasion_id"`
	ProfileID  string `json:"profile_id"`
	UserName   string `json:"user_name,omitempty"`
}

func toResponse(req models.SignupRequest) requestResponse {
	return requestResponse{
		ID:         req.ID.Hex(),
		OccasionID: req.OccasionID.Hex(),
		ProfileID:  req.ProfileID.Hex(),
	}
}

// ServePreview handles GET /api/signup/{token}. Resolves a live signup
// link to its occasion summary. A token for an occasion with signups
// disabled reports NotFound, same as a bogus token.
func (h *Handler) ServePreview(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	occ, err := h.Occasions.GetBySignupToken(ctx, token)
	if err != nil {
		uierrors.RenderError(w, h.Log, err)
		return
	}
	if !occ.AllowSignups {
		uierrors.RenderError(w, h.Log, apperr.NotFound("occasion"))
		return
	}

	organizer, err := h.Profiles.GetByID(ctx, occ.Organizer)
	if err != nil {
		uierrors.RenderError(w, h.Log, err)
		return
	}

	uierrors.RenderJSON(w, http.StatusOK, summaryResponse{
		OccasionID: occ.ID.Hex(),
		Title:      occ.Title,
		Organizer:  organizer.UserName,
	})
}

// ServeRequest handles POST /api/signup/{token}. Files a signup request
// for the caller.
func (h *Handler) ServeRequest(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)
	token := chi.URLParam(r, "token")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	occ, err := h.Occasions.GetBySignupToken(ctx, token)
	if err != nil {
		uierrors.RenderError(w, h.Log, err)
		return
	}

	isPart, err := h.Participants.Exists(ctx, occ.ID, u.ProfileID)
	if err != nil {
		uierrors.RenderError(w, h.Log, err)
		return
	}
	if occ.Organizer == u.ProfileID {
		isPart = true
	}
	if err := occasionpolicy.CanSignup(occ, u.ProfileID, isPart); err != nil {
		uierrors.RenderError(w, h.Log, err)
		return
	}

	req, err := h.Signups.Create(ctx, occ.ID, u.ProfileID)
	if err != nil {
		uierrors.RenderError(w, h.Log, err)
		return
	}

	h.Log.Info("signup requested",
		zap.String("occasion_id", occ.ID.Hex()),
		zap.String("profile_id", u.ProfileID.Hex()))

	uierrors.RenderJSON(w, http.StatusCreated, toResponse(req))
}

// ServeListMine handles GET /api/signups. The caller's outstanding
// requests.
func (h *Handler) ServeListMine(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	reqs, err := h.Signups.ListByProfile(ctx, u.ProfileID)
	if err != nil {
		uierrors.RenderError(w, h.Log, err)
		return
	}

	resp := make([]requestResponse, 0, len(reqs))
	for _, req := range reqs {
		resp = append(resp, toResponse(req))
	}
	uierrors.RenderJSON(w, http.StatusOK, resp)
}

// ServeListReceived handles GET /api/signups/received. Every pending
// request across the occasions the caller organizes, with requester
// user names resolved.
func (h *Handler) ServeListReceived(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	occs, err := h.Occasions.ListByOrganizer(ctx, u.ProfileID)
	if err != nil {
		uierrors.RenderError(w, h.Log, err)
		return
	}
	occIDs := make([]primitive.ObjectID, 0, len(occs))
	for _, occ := range occs {
		occIDs = append(occIDs, occ.ID)
	}

	reqs, err := h.Signups.ListByOccasionIDs(ctx, occIDs)
	if err != nil {
		uierrors.RenderError(w, h.Log, err)
		return
	}

	ids := make([]primitive.ObjectID, 0, len(reqs))
	for _, req := range reqs {
		ids = append(ids, req.ProfileID)
	}
	profiles, err := h.Profiles.GetByIDs(ctx, ids)
	if err != nil {
		uierrors.RenderError(w, h.Log, err)
		return
	}
	names := make(map[primitive.ObjectID]string, len(profiles))
	for _, p := range profiles {
		names[p.ID] = p.UserName
	}

	resp := make([]requestResponse, 0, len(reqs))
	for _, req := range reqs {
		rr := toResponse(req)
		rr.UserName = names[req.ProfileID]
		resp = append(resp, rr)
	}
	uierrors.RenderJSON(w, http.StatusOK, resp)
}

// ServeListForOccasion handles GET /api/signups/occasion/{occasionID}.
// Organizer's approval queue, with requester user names resolved.
func (h *Handler) ServeListForOccasion(w http.ResponseWriter, r *http.Request) {
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
	if err := occasionpolicy.CanManage(occ, u.ProfileID); err != nil {
		uierrors.RenderError(w, h.Log, err)
		return
	}

	reqs, err := h.Signups.ListByOccasion(ctx, occ.ID)
	if err != nil {
		uierrors.RenderError(w, h.Log, err)
		return
	}

	ids := make([]primitive.ObjectID, 0, len(reqs))
	for _, req := range reqs {
		ids = append(ids, req.ProfileID)
	}
	profiles, err := h.Profiles.GetByIDs(ctx, ids)
	if err != nil {
		uierrors.RenderError(w, h.Log, err)
		return
	}
	names := make(map[primitive.ObjectID]string, len(profiles))
	for _, p := range profiles {
		names[p.ID] = p.UserName
	}

	resp := make([]requestResponse, 0, len(reqs))
	for _, req := range reqs {
		rr := toResponse(req)
		rr.UserName = names[req.ProfileID]
		resp = append(resp, rr)
	}
	uierrors.RenderJSON(w, http.StatusOK, resp)
}

// ServeApprove handles POST /api/signups/{requestID}/approve. Organizer
// only; converts the request into a participant.
func (h *Handler) ServeApprove(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	req, err := h.ownedRequest(r, u.ProfileID, true)
	if err != nil {
		uierrors.RenderError(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, err := h.Participation.ApproveSignup(ctx, req.ID)
	if err != nil {
		uierrors.RenderError(w, h.Log, err)
		return
	}

	h.Log.Info("signup approved",
		zap.String("occasion_id", p.OccasionID.Hex()),
		zap.String("profile_id", p.ProfileID.Hex()))

	w.WriteHeader(http.StatusNoContent)
}

// ServeDelete handles DELETE /api/signups/{requestID}. The requester
// withdraws, or the organizer rejects.
func (h *Handler) ServeDelete(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	req, err := h.ownedRequest(r, u.ProfileID, false)
	if err != nil {
		uierrors.RenderError(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Signups.Delete(ctx, req.ID); err != nil {
		uierrors.RenderError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ownedRequest resolves {requestID} and checks the caller's standing.
// organizerOnly restricts the action to the occasion's organizer;
// otherwise the requester themself also qualifies.
func (h *Handler) ownedRequest(r *http.Request, caller primitive.ObjectID, organizerOnly bool) (models.SignupRequest, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "requestID"))
	if err != nil {
		return models.SignupRequest{}, apperr.NotFound("signup request")
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	req, err := h.Signups.GetByID(ctx, id)
	if err != nil {
		return models.SignupRequest{}, err
	}
	occ, err := h.Occasions.GetByID(ctx, req.OccasionID)
	if err != nil {
		return models.SignupRequest{}, err
	}

	if occ.Organizer == caller {
		return req, nil
	}
	if !organizerOnly && req.ProfileID == caller {
		return req, nil
	}
	return models.SignupRequest{}, apperr.NotFound("signup request")
}

// internal/app/features/occasions/handler.go
package occasions

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	uierrors "github.com/presently-app/presently/internal/app/features/errors"
	"github.com/presently-app/presently/internal/app/policy/occasionpolicy"
	"github.com/presently-app/presently/internal/app/store/occasions"
	"github.com/presently-app/presently/internal/app/store/participants"
	"github.com/presently-app/presently/internal/app/store/profiles"
	"github.com/presently-app/presently/internal/app/store/queries/cascade"
	"github.com/presently-app/presently/internal/app/store/queries/participation"
	"github.com/presently-app/presently/internal/app/system/apperr"
	"github.com/presently-app/presently/internal/app/system/auth"
	"github.com/presently-app/presently/internal/app/system/timeouts"
	"github.com/presently-app/presently/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler serves occasion CRUD and the participant sub-resources.
type Handler struct {
	Occasions     *occasionstore.Store
	Participants  *participantstore.Store
	Profiles      *profilestore.Store
	Participation *participation.Query
	Cascade       *cascade.Query
	Log           *zap.Logger
}

func NewHandler(
	occasions *occasionstore.Store,
	participants *participantstore.Store,
	profiles *profilestore.Store,
	part *participation.Query,
	casc *cascade.Query,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Occasions:     occasions,
		Participants:  participants,
		Profiles:      profiles,
		Participation: part,
		Cascade:       casc,
		Log:           logger,
	}
}

// occasionRequest is the JSON body for create and update.
type occasionRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	AllowSignups bool   `json:"allow_signups"`
}

// occasionResponse is the occasion as seen by a member. The signup
// token is included only for the organizer.
type occasionResponse struct {
	ID           string `json:"id"`
	Organizer    string `json:"organizer"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	AllowSignups bool   `json:"allow_signups"`
	SignupToken  string `json:"signup_token,omitempty"`
}

func toResponse(occ models.Occasion, viewer primitive.ObjectID) occasionResponse {
	resp := occasionResponse{
		ID:           occ.ID.Hex(),
		Organizer:    occ.Organizer.Hex(),
		Title:        occ.Title,
		Description:  occ.Description,
		AllowSignups: occ.AllowSignups,
	}
	if occ.Organizer == viewer {
		resp.SignupToken = occ.SignupToken
	}
	return resp
}

// participantResponse joins a participant row with its public profile.
type participantResponse struct {
	ProfileID string `json:"profile_id"`
	UserName  string `json:"user_name"`
	Name      string `json:"name"`
	Nickname  string `json:"nickname,omitempty"`
}

// ServeCreate handles POST /api/occasions.
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	var req occasionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		uierrors.RenderError(w, h.Log, apperr.Invalid("malformed request body"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	occ, err := h.Occasions.Create(ctx, u.ProfileID, req.Title, req.Description, req.AllowSignups)
	if err != nil {
		uierrors.RenderError(w, h.Log, err)
		return
	}

	h.Log.Info("occasion created",
		zap.String("occasion_id", occ.ID.Hex()),
		zap.String("organizer", u.ProfileID.Hex()))

	uierrors.RenderJSON(w, http.StatusCreated, toResponse(occ, u.ProfileID))
}

// listResponse groups the caller's occasions by relationship.
type listResponse struct {
	Organizing    []occasionResponse `json:"organizing"`
	Participating []occasionResponse `json:"participating"`
}

// ServeList handles GET /api/occasions.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	organizing, err := h.Occasions.ListByOrganizer(ctx, u.ProfileID)
	if err != nil {
		uierrors.RenderError(w, h.Log, err)
		return
	}
	participating, err := h.Occasions.ListByParticipant(ctx, u.ProfileID)
	if err != nil {
		uierrors.RenderError(w, h.Log, err)
		return
	}

	resp := listResponse{
		Organizing:    make([]occasionResponse, 0, len(organizing)),
		Participating: make([]occasionResponse, 0, len(participating)),
	}
	for _, occ := range organizing {
		resp.Organizing = append(resp.Organizing, toResponse(occ, u.ProfileID))
	}
	for _, occ := range participating {
		resp.Participating = append(resp.Participating, toResponse(occ, u.ProfileID))
	}
	uierrors.RenderJSON(w, http.StatusOK, resp)
}

// ServeGet handles GET /api/occasions/{occasionID}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	occ, err := h.memberOccasion(ctx, r, u.ProfileID)
	if err != nil {
		uierrors.RenderError(w, h.Log, err)
		return
	}
	uierrors.RenderJSON(w, http.StatusOK, toResponse(occ, u.ProfileID))
}

// ServeUpdate handles PUT /api/occasions/{occasionID}.
func (h *Handler) ServeUpdate(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	var req occasionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		uierrors.RenderError(w, h.Log, apperr.Invalid("malformed request body"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	occ, err := h.organizerOccasion(ctx, r, u.ProfileID)
	if err != nil {
		uierrors.RenderError(w, h.Log, err)
		return
	}

	occ, err = h.Occasions.Update(ctx, occ.ID, req.Title, req.Description, req.AllowSignups)
	if err != nil {
		uierrors.RenderError(w, h.Log, err)
		return
	}
	uierrors.RenderJSON(w, http.StatusOK, toResponse(occ, u.ProfileID))
}

// ServeDelete handles DELETE /api/occasions/{occasionID}. Cascades to
// every dependent collection.
func (h *Handler) ServeDelete(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	occ, err := h.organizerOccasion(ctx, r, u.ProfileID)
	if err != nil {
		uierrors.RenderError(w, h.Log, err)
		return
	}

	if err := h.Cascade.DeleteOccasion(ctx, occ.ID); err != nil {
		uierrors.RenderError(w, h.Log, err)
		return
	}

	h.Log.Info("occasion deleted",
		zap.String("occasion_id", occ.ID.Hex()),
		zap.String("organizer", u.ProfileID.Hex()))

	w.WriteHeader(http.StatusNoContent)
}

// ServeListParticipants handles GET /api/occasions/{occasionID}/participants.
func (h *Handler) ServeListParticipants(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	occ, err := h.memberOccasion(ctx, r, u.ProfileID)
	if err != nil {
		uierrors.RenderError(w, h.Log, err)
		return
	}

	parts, err := h.Participants.ListByOccasion(ctx, occ.ID)
	if err != nil {
		uierrors.RenderError(w, h.Log, err)
		return
	}

	ids := make([]primitive.ObjectID, 0, len(parts))
	for _, p := range parts {
		ids = append(ids, p.ProfileID)
	}
	profiles, err := h.Profiles.GetByIDs(ctx, ids)
	if err != nil {
		uierrors.RenderError(w, h.Log, err)
		return
	}
	byID := make(map[primitive.ObjectID]int, len(profiles))
	for i, p := range profiles {
		byID[p.ID] = i
	}

	resp := make([]participantResponse, 0, len(parts))
	for _, part := range parts {
		pr := participantResponse{
			ProfileID: part.ProfileID.Hex(),
			Nickname:  part.Nickname,
		}
		if i, ok := byID[part.ProfileID]; ok {
			pr.UserName = profiles[i].UserName
			pr.Name = profiles[i].Name
		}
		resp = append(resp, pr)
	}
	uierrors.RenderJSON(w, http.StatusOK, resp)
}

// ServeLeave handles DELETE /api/occasions/{occasionID}/participants/me.
func (h *Handler) ServeLeave(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	occ, err := h.memberOccasion(ctx, r, u.ProfileID)
	if err != nil {
		uierrors.RenderError(w, h.Log, err)
		return
	}

	if err := h.Participation.Leave(ctx, occ.ID, u.ProfileID, occ.Organizer); err != nil {
		uierrors.RenderError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ServeRemoveParticipant handles
// DELETE /api/occasions/{occasionID}/participants/{profileID}.
// The organizer removes anyone; everyone else may only remove
// themself.
func (h *Handler) ServeRemoveParticipant(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	target, err := primitive.ObjectIDFromHex(chi.URLParam(r, "profileID"))
	if err != nil {
		uierrors.RenderError(w, h.Log, apperr.NotFound("participant"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	occ, err := h.memberOccasion(ctx, r, u.ProfileID)
	if err != nil {
		uierrors.RenderError(w, h.Log, err)
		return
	}
	if target != u.ProfileID && occ.Organizer != u.ProfileID {
		uierrors.RenderError(w, h.Log, apperr.Forbidden("only the organizer may remove other participants"))
		return
	}

	if err := h.Participation.Leave(ctx, occ.ID, target, occ.Organizer); err != nil {
		uierrors.RenderError(w, h.Log, err)
		return
	}

	h.Log.Info("participant removed",
		zap.String("occasion_id", occ.ID.Hex()),
		zap.String("profile_id", target.Hex()))

	w.WriteHeader(http.StatusNoContent)
}

// nicknameRequest is the JSON body for the occasion-local nickname.
type nicknameRequest struct {
	Nickname string `json:"nickname"`
}

// ServeSetNickname handles PUT /api/occasions/{occasionID}/participants/me/nickname.
func (h *Handler) ServeSetNickname(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	var req nicknameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		uierrors.RenderError(w, h.Log, apperr.Invalid("malformed request body"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	occ, err := h.memberOccasion(ctx, r, u.ProfileID)
	if err != nil {
		uierrors.RenderError(w, h.Log, err)
		return
	}

	if err := h.Participants.SetNickname(ctx, occ.ID, u.ProfileID, req.Nickname); err != nil {
		uierrors.RenderError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// memberOccasion resolves {occasionID} and verifies the caller is the
// organizer or a participant. Outsiders get NotFound.
func (h *Handler) memberOccasion(ctx context.Context, r *http.Request, caller primitive.ObjectID) (models.Occasion, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "occasionID"))
	if err != nil {
		return models.Occasion{}, apperr.NotFound("occasion")
	}
	occ, err := h.Occasions.GetByID(ctx, id)
	if err != nil {
		return models.Occasion{}, err
	}
	isPart, err := h.Participants.Exists(ctx, occ.ID, caller)
	if err != nil {
		return models.Occasion{}, err
	}
	if err := occasionpolicy.CanView(occ, caller, isPart); err != nil {
		return models.Occasion{}, err
	}
	return occ, nil
}

// organizerOccasion resolves {occasionID} and verifies the caller is
// the organizer.
func (h *Handler) organizerOccasion(ctx context.Context, r *http.Request, caller primitive.ObjectID) (models.Occasion, error) {
	occ, err := h.memberOccasion(ctx, r, caller)
	if err != nil {
		return models.Occasion{}, err
	}
	if err := occasionpolicy.CanManage(occ, caller); err != nil {
		return models.Occasion{}, err
	}
	return occ, nil
}

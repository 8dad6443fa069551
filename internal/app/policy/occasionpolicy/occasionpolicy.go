// Package occasionpolicy provides authorization policies for occasions.
//
// Authorization rules:
//   - Only the organizer can update or delete an occasion
//   - Only the organizer can invite profiles and act on signup requests
//   - Participants and the organizer can view an occasion's detail
//   - Anyone holding a live signup link can view the signup summary
package occasionpolicy

import (
	"github.com/presently-app/presently/internal/app/system/apperr"
	"github.com/presently-app/presently/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CanManage reports whether caller may update or delete the occasion.
func CanManage(occ models.Occasion, caller primitive.ObjectID) error {
	if occ.Organizer != caller {
		return apperr.Forbidden("only the organizer may manage this occasion")
	}
	return nil
}

// CanView reports whether caller may see the occasion's detail.
// isParticipant is the participant-row check done by the caller.
func CanView(occ models.Occasion, caller primitive.ObjectID, isParticipant bool) error {
	if occ.Organizer == caller || isParticipant {
		return nil
	}
	// Non-members learn nothing, not even that the occasion exists.
	return apperr.NotFound("occasion")
}

// CanSignup reports whether a signup request may be filed against the
// occasion. isParticipant guards against members re-requesting entry.
func CanSignup(occ models.Occasion, caller primitive.ObjectID, isParticipant bool) error {
	if !occ.AllowSignups {
		return apperr.NotFound("occasion")
	}
	if isParticipant {
		return apperr.Conflict("profile already participates in this occasion")
	}
	return nil
}

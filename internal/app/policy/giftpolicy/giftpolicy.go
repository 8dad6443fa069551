// Package giftpolicy provides authorization policies for gifts.
//
// Authorization rules:
//   - Only occasion participants and the organizer can suggest gifts
//   - Gifts can only be suggested for participants or the organizer
//   - Only the suggester can edit a gift; the organizer may also
//     delete one
//   - The profile a gift is suggested for never sees it, unless they
//     suggested it themselves
package giftpolicy

import (
	"github.com/presently-app/presently/internal/app/system/apperr"
	"github.com/presently-app/presently/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CanSuggest reports whether a member may suggest a gift for the given
// target. Both ends of the suggestion must belong to the occasion.
func CanSuggest(occ models.Occasion, suggesterIsMember, targetIsMember bool) error {
	if !suggesterIsMember {
		return apperr.NotFound("occasion")
	}
	if !targetIsMember {
		return apperr.Invalid("gifts can only be suggested for occasion members")
	}
	return nil
}

// CanEdit reports whether caller may edit the gift.
func CanEdit(g models.Gift, caller primitive.ObjectID) error {
	if g.SuggestedBy != caller {
		return apperr.Forbidden("only the suggester may change a gift")
	}
	return nil
}

// CanDelete reports whether caller may delete the gift. The organizer
// may clean up any suggestion they can see; otherwise only the
// suggester qualifies.
func CanDelete(g models.Gift, occ models.Occasion, caller primitive.ObjectID) error {
	if g.SuggestedBy == caller || occ.Organizer == caller {
		return nil
	}
	return apperr.Forbidden("only the suggester or the organizer may delete a gift")
}

// VisibleTo reports whether caller may see the gift at all.
func VisibleTo(g models.Gift, caller primitive.ObjectID) bool {
	return g.SuggestedFor != caller || g.SuggestedBy == caller
}

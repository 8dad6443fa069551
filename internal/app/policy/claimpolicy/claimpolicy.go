// Package claimpolicy provides authorization policies for claims.
//
// Authorization rules:
//   - Only a profile that can see a gift can claim it, which excludes
//     the gift's recipient
//   - A gift carries at most one claim; the unique index is the final
//     arbiter under races
//   - Only the claimant can release a claim
//   - The claimant of an anonymous claim is withheld from everyone
package claimpolicy

import (
	"github.com/presently-app/presently/internal/app/policy/giftpolicy"
	"github.com/presently-app/presently/internal/app/system/apperr"
	"github.com/presently-app/presently/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CanClaim reports whether caller may claim the gift. A caller who
// cannot see the gift gets NotFound so the attempt does not confirm the
// gift exists.
func CanClaim(g models.Gift, caller primitive.ObjectID, isMember bool) error {
	if !isMember || !giftpolicy.VisibleTo(g, caller) {
		return apperr.NotFound("gift")
	}
	return nil
}

// CanRelease reports whether caller may delete the claim.
func CanRelease(c models.Claim, caller primitive.ObjectID) error {
	if c.ClaimedBy != caller {
		return apperr.Forbidden("only the claimant may release a claim")
	}
	return nil
}

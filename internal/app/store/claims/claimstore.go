// internal/app/store/claims/claimstore.go
package claimstore

import (
	"context"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/presently-app/presently/internal/app/system/apperr"
	"github.com/presently-app/presently/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrAlreadyClaimed reports that the gift already carries a claim.
// Raised by the unique index on gift_id.
var ErrAlreadyClaimed = apperr.Conflict("gift is already claimed")

// Store reads and writes claims. Listings join to gifts and drop every
// claim whose gift is meant for the viewer, which keeps the surprise
// intact: a recipient learns neither that a hidden gift exists nor
// whether any of their gifts, wishlist entries included, are claimed.
type Store struct {
	c     *mongo.Collection
	gifts *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:     db.Collection("claims"),
		gifts: db.Collection("gifts"),
	}
}

// redact withholds the claimant from anonymous claims. Applied to every
// claim leaving the store, for every viewer including the claimant's
// other sessions; callers that need the true claimant (the delete
// permission check) use GetByGift.
func redact(c models.Claim) models.Claim {
	if c.Anonymous {
		c.ClaimedBy = primitive.NilObjectID
	}
	return c
}

// Create records that claimant will give the gift. OccasionID is copied
// from the gift so occasion listings and cascades never need a join.
// The recipient of a gift cannot claim it: the gift is invisible to
// them, so the attempt reports NotFound rather than confirming the gift
// exists.
func (s *Store) Create(ctx context.Context, giftID, claimant primitive.ObjectID, anonymous bool) (models.Claim, error) {
	var g models.Gift
	err := s.gifts.FindOne(ctx, bson.M{"_id": giftID}).Decode(&g)
	if err == mongo.ErrNoDocuments {
		return models.Claim{}, apperr.NotFound("gift")
	}
	if err != nil {
		return models.Claim{}, err
	}
	if g.SuggestedFor == claimant && g.SuggestedBy != claimant {
		return models.Claim{}, apperr.NotFound("gift")
	}

	c := models.Claim{
		GiftID:     giftID,
		OccasionID: g.OccasionID,
		ClaimedBy:  claimant,
		Anonymous:  anonymous,
		CreatedAt:  time.Now().UTC(),
	}
	res, err := s.c.InsertOne(ctx, c)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.Claim{}, ErrAlreadyClaimed
		}
		return models.Claim{}, err
	}
	c.ID = res.InsertedID.(primitive.ObjectID)
	return redact(c), nil
}

// GetByGift returns the gift's claim unredacted. Internal use only:
// the delete path needs the true claimant to authorize the caller.
func (s *Store) GetByGift(ctx context.Context, giftID primitive.ObjectID) (models.Claim, error) {
	var c models.Claim
	err := s.c.FindOne(ctx, bson.M{"gift_id": giftID}).Decode(&c)
	if err == mongo.ErrNoDocuments {
		return models.Claim{}, apperr.NotFound("claim")
	}
	if err != nil {
		return models.Claim{}, err
	}
	return c, nil
}

// ListVisible returns the occasion's claims on gifts not meant for the
// viewer. This is stricter than the gift listing: a wishlist owner can
// see their own suggestion but never its claim, so whether anyone has
// picked it up stays hidden from them. Anonymous claims come back with
// ClaimedBy zeroed.
func (s *Store) ListVisible(ctx context.Context, occasionID, viewer primitive.ObjectID) ([]models.Claim, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"occasion_id": occasionID}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "gifts",
			"localField":   "gift_id",
			"foreignField": "_id",
			"as":           "gift",
		}}},
		{{Key: "$unwind", Value: "$gift"}},
		{{Key: "$match", Value: bson.M{"gift.suggested_for": bson.M{"$ne": viewer}}}},
		{{Key: "$project", Value: bson.M{"gift": 0}}},
	}

	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Claim
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	for i := range out {
		out[i] = redact(out[i])
	}
	return out, nil
}

// Delete releases the gift's claim. Only the claimant may release it;
// anyone else gets Forbidden, and a gift with no claim reports NotFound.
func (s *Store) Delete(ctx context.Context, giftID, caller primitive.ObjectID) error {
	c, err := s.GetByGift(ctx, giftID)
	if err != nil {
		return err
	}
	if c.ClaimedBy != caller {
		return apperr.Forbidden("only the claimant may release a claim")
	}
	_, err = s.c.DeleteOne(ctx, bson.M{"_id": c.ID})
	return err
}

// DeleteByGift removes the gift's claim unconditionally. Used by the
// gift delete cascade.
func (s *Store) DeleteByGift(ctx context.Context, giftID primitive.ObjectID) error {
	_, err := s.c.DeleteMany(ctx, bson.M{"gift_id": giftID})
	return err
}

// DeleteByOccasion removes every claim for the occasion.
func (s *Store) DeleteByOccasion(ctx context.Context, occasionID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"occasion_id": occasionID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

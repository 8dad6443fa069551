// internal/app/store/participants/participantstore.go
package participantstore

import (
	"context"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/presently-app/presently/internal/app/system/apperr"
	"github.com/presently-app/presently/internal/app/system/htmlsanitize"
	"github.com/presently-app/presently/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrDuplicateParticipant reports that the profile already participates
// in the occasion. Raised by the unique (occasion_id, profile_id) index.
var ErrDuplicateParticipant = apperr.Conflict("profile already participates in this occasion")

// Store reads and writes participant rows. Insert is deliberately dumb:
// the invitation/signup bookkeeping around joining an occasion lives in
// store/queries/participation so it can share a transaction.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("participants")}
}

// Insert creates the participant row for (occasion, profile).
func (s *Store) Insert(ctx context.Context, occasionID, profileID primitive.ObjectID) (models.Participant, error) {
	p := models.Participant{
		OccasionID: occasionID,
		ProfileID:  profileID,
		CreatedAt:  time.Now().UTC(),
	}
	res, err := s.c.InsertOne(ctx, p)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.Participant{}, ErrDuplicateParticipant
		}
		return models.Participant{}, err
	}
	p.ID = res.InsertedID.(primitive.ObjectID)
	return p, nil
}

// Get returns the participant row for (occasion, profile).
func (s *Store) Get(ctx context.Context, occasionID, profileID primitive.ObjectID) (models.Participant, error) {
	var p models.Participant
	err := s.c.FindOne(ctx, bson.M{"occasion_id": occasionID, "profile_id": profileID}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return models.Participant{}, apperr.NotFound("participant")
	}
	if err != nil {
		return models.Participant{}, err
	}
	return p, nil
}

// Exists reports whether the profile participates in the occasion.
func (s *Store) Exists(ctx context.Context, occasionID, profileID primitive.ObjectID) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"occasion_id": occasionID, "profile_id": profileID}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListByOccasion returns all participants of an occasion.
func (s *Store) ListByOccasion(ctx context.Context, occasionID primitive.ObjectID) ([]models.Participant, error) {
	cur, err := s.c.Find(ctx, bson.M{"occasion_id": occasionID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Participant
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Remove deletes the participant row for (occasion, profile). Removing
// an absent row is a no-op.
func (s *Store) Remove(ctx context.Context, occasionID, profileID primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"occasion_id": occasionID, "profile_id": profileID})
	return err
}

// SetNickname updates the participant's occasion-local display name.
func (s *Store) SetNickname(ctx context.Context, occasionID, profileID primitive.ObjectID, nickname string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"occasion_id": occasionID, "profile_id": profileID},
		bson.M{"$set": bson.M{"nickname": htmlsanitize.Text(nickname)}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("participant")
	}
	return nil
}

// DeleteByOccasion removes every participant row for the occasion.
// Returns the number of rows deleted.
func (s *Store) DeleteByOccasion(ctx context.Context, occasionID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"occasion_id": occasionID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

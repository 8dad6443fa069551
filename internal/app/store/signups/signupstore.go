// internal/app/store/signups/signupstore.go
package signupstore

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

// ErrDuplicateSignup reports that the profile already has a signup
// request for the occasion. Raised by the unique
// (occasion_id, profile_id) index.
var ErrDuplicateSignup = apperr.Conflict("profile has already requested signup for this occasion")

// Store reads and writes signup requests. Approval converts a request
// into a Participant and lives in store/queries/participation; this
// store only covers the requests themselves.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("signup_requests")}
}

// Create inserts a signup request for (occasion, profile).
func (s *Store) Create(ctx context.Context, occasionID, profileID primitive.ObjectID) (models.SignupRequest, error) {
	req := models.SignupRequest{
		OccasionID: occasionID,
		ProfileID:  profileID,
		CreatedAt:  time.Now().UTC(),
	}
	res, err := s.c.InsertOne(ctx, req)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.SignupRequest{}, ErrDuplicateSignup
		}
		return models.SignupRequest{}, err
	}
	req.ID = res.InsertedID.(primitive.ObjectID)
	return req, nil
}

// GetByID returns the signup request or apperr.ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.SignupRequest, error) {
	var req models.SignupRequest
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&req)
	if err == mongo.ErrNoDocuments {
		return models.SignupRequest{}, apperr.NotFound("signup request")
	}
	if err != nil {
		return models.SignupRequest{}, err
	}
	return req, nil
}

// ListByProfile returns the profile's outstanding signup requests.
func (s *Store) ListByProfile(ctx context.Context, profileID primitive.ObjectID) ([]models.SignupRequest, error) {
	cur, err := s.c.Find(ctx, bson.M{"profile_id": profileID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.SignupRequest
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByOccasion returns the outstanding signup requests for an
// occasion. Used by the organizer's approval view.
func (s *Store) ListByOccasion(ctx context.Context, occasionID primitive.ObjectID) ([]models.SignupRequest, error) {
	cur, err := s.c.Find(ctx, bson.M{"occasion_id": occasionID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.SignupRequest
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByOccasionIDs returns the outstanding signup requests across a
// set of occasions. Used by the organizer's cross-occasion inbox.
func (s *Store) ListByOccasionIDs(ctx context.Context, occasionIDs []primitive.ObjectID) ([]models.SignupRequest, error) {
	if len(occasionIDs) == 0 {
		return nil, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"occasion_id": bson.M{"$in": occasionIDs}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.SignupRequest
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes the signup request by id.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// DeleteForPair removes the request for (occasion, profile), if any.
func (s *Store) DeleteForPair(ctx context.Context, occasionID, profileID primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"occasion_id": occasionID, "profile_id": profileID})
	return err
}

// DeleteByOccasion removes every signup request for the occasion.
func (s *Store) DeleteByOccasion(ctx context.Context, occasionID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"occasion_id": occasionID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

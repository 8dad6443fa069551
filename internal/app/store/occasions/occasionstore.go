// internal/app/store/occasions/occasionstore.go
package occasionstore

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/presently-app/presently/internal/app/system/apperr"
	"github.com/presently-app/presently/internal/app/system/htmlsanitize"
	"github.com/presently-app/presently/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Store reads and writes occasion documents. The cascading delete lives
// in store/queries/cascade; this store only touches the occasions
// collection.
type Store struct {
	c            *mongo.Collection
	participants *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:            db.Collection("occasions"),
		participants: db.Collection("participants"),
	}
}

// Create inserts an occasion with the caller as organizer. The signup
// token is minted only when signups are enabled; it is the capability a
// non-participant presents to request signup.
func (s *Store) Create(ctx context.Context, organizer primitive.ObjectID, title, description string, allowSignups bool) (models.Occasion, error) {
	title = htmlsanitize.Text(title)
	if title == "" {
		return models.Occasion{}, apperr.Invalid("title must not be empty")
	}

	now := time.Now().UTC()
	occ := models.Occasion{
		Organizer:    organizer,
		Title:        title,
		Description:  htmlsanitize.Text(description),
		AllowSignups: allowSignups,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if allowSignups {
		occ.SignupToken = uuid.NewString()
	}

	res, err := s.c.InsertOne(ctx, occ)
	if err != nil {
		return models.Occasion{}, err
	}
	occ.ID = res.InsertedID.(primitive.ObjectID)
	return occ, nil
}

// GetByID returns the occasion or apperr.ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Occasion, error) {
	var occ models.Occasion
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&occ)
	if err == mongo.ErrNoDocuments {
		return models.Occasion{}, apperr.NotFound("occasion")
	}
	if err != nil {
		return models.Occasion{}, err
	}
	return occ, nil
}

// GetBySignupToken resolves a signup link to its occasion.
func (s *Store) GetBySignupToken(ctx context.Context, token string) (models.Occasion, error) {
	if token == "" {
		return models.Occasion{}, apperr.NotFound("occasion")
	}
	var occ models.Occasion
	err := s.c.FindOne(ctx, bson.M{"signup_token": token}).Decode(&occ)
	if err == mongo.ErrNoDocuments {
		return models.Occasion{}, apperr.NotFound("occasion")
	}
	if err != nil {
		return models.Occasion{}, err
	}
	return occ, nil
}

// ListByOrganizer returns the occasions organized by a profile.
func (s *Store) ListByOrganizer(ctx context.Context, organizer primitive.ObjectID) ([]models.Occasion, error) {
	cur, err := s.c.Find(ctx, bson.M{"organizer": organizer})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Occasion
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByParticipant returns the occasions in which the profile is a
// participant, by joining through the participants collection.
func (s *Store) ListByParticipant(ctx context.Context, profileID primitive.ObjectID) ([]models.Occasion, error) {
	cur, err := s.participants.Find(ctx, bson.M{"profile_id": profileID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var ids []primitive.ObjectID
	for cur.Next(ctx) {
		var p models.Participant
		if cur.Decode(&p) == nil {
			ids = append(ids, p.OccasionID)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	occCur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer occCur.Close(ctx)

	var out []models.Occasion
	if err := occCur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update rewrites title, description, and the signup flag. Enabling
// signups on an occasion without a token mints one; disabling keeps the
// token so re-enabling does not invalidate already-shared links.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, title, description string, allowSignups bool) (models.Occasion, error) {
	title = htmlsanitize.Text(title)
	if title == "" {
		return models.Occasion{}, apperr.Invalid("title must not be empty")
	}

	occ, err := s.GetByID(ctx, id)
	if err != nil {
		return models.Occasion{}, err
	}

	set := bson.M{
		"title":         title,
		"description":   htmlsanitize.Text(description),
		"allow_signups": allowSignups,
		"updated_at":    time.Now().UTC(),
	}
	if allowSignups && occ.SignupToken == "" {
		set["signup_token"] = uuid.NewString()
	}

	if _, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set}); err != nil {
		return models.Occasion{}, err
	}
	return s.GetByID(ctx, id)
}

// DeleteDoc removes only the occasion document. Callers must use the
// cascade query for user-facing deletes; this exists for the cascade
// itself and for tests.
func (s *Store) DeleteDoc(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// internal/app/store/invitations/invitationstore.go
package invitationstore

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

// ErrDuplicateInvitation reports that the recipient already has an
// invitation to the occasion. Raised by the unique
// (occasion_id, recipient) index.
var ErrDuplicateInvitation = apperr.Conflict("profile is already invited to this occasion")

// Store reads and writes invitations. Accepting an invitation is a
// cross-collection operation and lives in store/queries/participation.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("invitations")}
}

// Create inserts a pending invitation from sender to recipient.
func (s *Store) Create(ctx context.Context, occasionID, sender, recipient primitive.ObjectID) (models.Invitation, error) {
	now := time.Now().UTC()
	inv := models.Invitation{
		OccasionID: occasionID,
		Sender:     sender,
		Recipient:  recipient,
		Status:     models.InvitationPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	res, err := s.c.InsertOne(ctx, inv)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.Invitation{}, ErrDuplicateInvitation
		}
		return models.Invitation{}, err
	}
	inv.ID = res.InsertedID.(primitive.ObjectID)
	return inv, nil
}

// GetByID returns the invitation or apperr.ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Invitation, error) {
	var inv models.Invitation
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&inv)
	if err == mongo.ErrNoDocuments {
		return models.Invitation{}, apperr.NotFound("invitation")
	}
	if err != nil {
		return models.Invitation{}, err
	}
	return inv, nil
}

// GetForPair returns the invitation addressed to recipient for the
// occasion, regardless of status.
func (s *Store) GetForPair(ctx context.Context, occasionID, recipient primitive.ObjectID) (models.Invitation, error) {
	var inv models.Invitation
	err := s.c.FindOne(ctx, bson.M{"occasion_id": occasionID, "recipient": recipient}).Decode(&inv)
	if err == mongo.ErrNoDocuments {
		return models.Invitation{}, apperr.NotFound("invitation")
	}
	if err != nil {
		return models.Invitation{}, err
	}
	return inv, nil
}

// ListBySender returns invitations the profile has sent. Ignored
// invitations are reported to the sender as pending so a recipient can
// decline quietly.
func (s *Store) ListBySender(ctx context.Context, sender primitive.ObjectID) ([]models.Invitation, error) {
	cur, err := s.c.Find(ctx, bson.M{"sender": sender})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Invitation
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	for i := range out {
		if out[i].Status == models.InvitationIgnored {
			out[i].Status = models.InvitationPending
		}
	}
	return out, nil
}

// ListByOccasion returns invitations for an occasion, with ignored
// masked as pending. Used by the organizer's occasion view.
func (s *Store) ListByOccasion(ctx context.Context, occasionID primitive.ObjectID) ([]models.Invitation, error) {
	cur, err := s.c.Find(ctx, bson.M{"occasion_id": occasionID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Invitation
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	for i := range out {
		if out[i].Status == models.InvitationIgnored {
			out[i].Status = models.InvitationPending
		}
	}
	return out, nil
}

// ListByRecipient returns pending invitations addressed to the profile.
// Ignored invitations stay out of the recipient's inbox.
func (s *Store) ListByRecipient(ctx context.Context, recipient primitive.ObjectID) ([]models.Invitation, error) {
	cur, err := s.c.Find(ctx, bson.M{
		"recipient": recipient,
		"status":    models.InvitationPending,
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Invitation
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SetStatus updates the invitation's status.
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("invitation")
	}
	return nil
}

// Delete removes the invitation by id.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// DeleteForPair removes the invitation addressed to recipient for the
// occasion, if one exists.
func (s *Store) DeleteForPair(ctx context.Context, occasionID, recipient primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"occasion_id": occasionID, "recipient": recipient})
	return err
}

// DeleteByOccasion removes every invitation for the occasion.
func (s *Store) DeleteByOccasion(ctx context.Context, occasionID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"occasion_id": occasionID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

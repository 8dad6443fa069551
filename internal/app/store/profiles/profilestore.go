// internal/app/store/profiles/profilestore.go
package profilestore

import (
	"context"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/presently-app/presently/internal/app/system/apperr"
	"github.com/presently-app/presently/internal/app/system/naming"
	"github.com/presently-app/presently/internal/app/system/normalize"
	"github.com/presently-app/presently/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Store reads and writes public profiles. It is the naming service's
// uniqueness lookup: the unique index on user_name backs both Generate
// and Rename.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("profiles")}
}

// UserNameExists implements naming.Lookup.
func (s *Store) UserNameExists(ctx context.Context, userName string) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"user_name": userName}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Create generates a unique profile for the account and inserts it.
func (s *Store) Create(ctx context.Context, accountID primitive.ObjectID) (models.Profile, error) {
	name, hashCode, userName, err := naming.Generate(ctx, s)
	if err != nil {
		return models.Profile{}, err
	}

	now := time.Now().UTC()
	p := models.Profile{
		AccountID: accountID,
		Name:      name,
		NameCI:    text.Fold(name),
		HashCode:  hashCode,
		UserName:  userName,
		CreatedAt: now,
		UpdatedAt: now,
	}
	res, err := s.c.InsertOne(ctx, p)
	if err != nil {
		return models.Profile{}, err
	}
	p.ID = res.InsertedID.(primitive.ObjectID)
	return p, nil
}

// GetByID returns the profile or apperr.ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Profile, error) {
	var p models.Profile
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return models.Profile{}, apperr.NotFound("profile")
	}
	if err != nil {
		return models.Profile{}, err
	}
	return p, nil
}

// GetByUserName returns the profile with the exact user name, e.g.
// "Laurie#3384".
func (s *Store) GetByUserName(ctx context.Context, userName string) (models.Profile, error) {
	var p models.Profile
	err := s.c.FindOne(ctx, bson.M{"user_name": userName}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return models.Profile{}, apperr.NotFound("profile")
	}
	if err != nil {
		return models.Profile{}, err
	}
	return p, nil
}

// GetByAccountID returns the profile belonging to an account.
func (s *Store) GetByAccountID(ctx context.Context, accountID primitive.ObjectID) (models.Profile, error) {
	var p models.Profile
	err := s.c.FindOne(ctx, bson.M{"account_id": accountID}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return models.Profile{}, apperr.NotFound("profile")
	}
	if err != nil {
		return models.Profile{}, err
	}
	return p, nil
}

// GetByIDs returns the profiles for the given ids, unordered.
func (s *Store) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Profile, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Profile
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Rename changes the profile's display name and recomputes the unique
// user name, keeping the previous hash code when it is still free.
//
// Renaming to the current name is not a no-op: the hash code lookup runs
// again and the user_name is rewritten either way, which is how a user
// refreshes their hash suffix.
func (s *Store) Rename(ctx context.Context, profileID primitive.ObjectID, newName string) (models.Profile, error) {
	newName = normalize.Name(newName)
	if !naming.ValidName(newName) {
		return models.Profile{}, apperr.Invalid("name must contain only letters and digits")
	}

	p, err := s.GetByID(ctx, profileID)
	if err != nil {
		return models.Profile{}, err
	}

	hashCode, userName, err := naming.Rehash(ctx, s, newName, p.HashCode)
	if err != nil {
		return models.Profile{}, err
	}

	_, err = s.c.UpdateByID(ctx, profileID, bson.M{
		"$set": bson.M{
			"name":       newName,
			"name_ci":    text.Fold(newName),
			"hash_code":  hashCode,
			"user_name":  userName,
			"updated_at": time.Now().UTC(),
		},
	})
	if err != nil {
		// Lost a race against another rename picking the same user name
		// between the lookup and the write.
		if wafflemongo.IsDup(err) {
			return models.Profile{}, apperr.Conflict("user name is taken")
		}
		return models.Profile{}, err
	}
	return s.GetByID(ctx, profileID)
}

// SetNickname updates the profile-wide preferred display name.
func (s *Store) SetNickname(ctx context.Context, profileID primitive.ObjectID, nickname string) error {
	res, err := s.c.UpdateByID(ctx, profileID, bson.M{
		"$set": bson.M{"nickname": nickname, "updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("profile")
	}
	return nil
}

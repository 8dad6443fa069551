// internal/app/store/accounts/accountstore.go
package accountstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	profilestore "github.com/presently-app/presently/internal/app/store/profiles"
	"github.com/presently-app/presently/internal/app/system/apperr"
	"github.com/presently-app/presently/internal/app/system/normalize"
	"github.com/presently-app/presently/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Store is the identity seam: it maps identity-provider emails to
// accounts and resolves the caller's profile id. Every other component
// takes a resolved profile id as a parameter instead of reading ambient
// identity.
type Store struct {
	c        *mongo.Collection
	profiles *profilestore.Store
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:        db.Collection("accounts"),
		profiles: profilestore.New(db),
	}
}

// GetByEmail returns the account for the normalized email.
func (s *Store) GetByEmail(ctx context.Context, email string) (models.Account, error) {
	var a models.Account
	err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&a)
	if err == mongo.ErrNoDocuments {
		return models.Account{}, apperr.NotFound("account")
	}
	if err != nil {
		return models.Account{}, err
	}
	return a, nil
}

// ResolveProfileID maps an authenticated email to its profile id.
// NotFound signals that provisioning must run first.
func (s *Store) ResolveProfileID(ctx context.Context, email string) (primitive.ObjectID, error) {
	a, err := s.GetByEmail(ctx, email)
	if err != nil {
		return primitive.NilObjectID, err
	}
	if a.ProfileID == nil {
		// Account exists but provisioning was interrupted before the
		// profile back-reference landed; treat as unprovisioned.
		return primitive.NilObjectID, apperr.NotFound("profile")
	}
	return *a.ProfileID, nil
}

// CreateWithProfile provisions a new account for an email along with a
// generated public profile, and backfills the profile_id reference.
// Duplicate emails surface as Conflict via the unique index.
func (s *Store) CreateWithProfile(ctx context.Context, email string) (models.Account, models.Profile, error) {
	email = normalize.Email(email)
	if email == "" {
		return models.Account{}, models.Profile{}, apperr.Invalid("email must not be empty")
	}

	now := time.Now().UTC()
	acct := models.Account{
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	res, err := s.c.InsertOne(ctx, acct)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.Account{}, models.Profile{}, apperr.Conflict("an account already exists for this email")
		}
		return models.Account{}, models.Profile{}, err
	}
	acct.ID = res.InsertedID.(primitive.ObjectID)

	profile, err := s.profiles.Create(ctx, acct.ID)
	if err != nil {
		return models.Account{}, models.Profile{}, err
	}

	_, err = s.c.UpdateByID(ctx, acct.ID, bson.M{
		"$set": bson.M{"profile_id": profile.ID, "updated_at": time.Now().UTC()},
	})
	if err != nil {
		return models.Account{}, models.Profile{}, err
	}
	acct.ProfileID = &profile.ID
	return acct, profile, nil
}

// EnsureWithProfile returns the existing account and profile for the
// email, provisioning both on first login.
func (s *Store) EnsureWithProfile(ctx context.Context, email string) (models.Account, models.Profile, error) {
	a, err := s.GetByEmail(ctx, email)
	if err == nil {
		if a.ProfileID == nil {
			// Finish interrupted provisioning.
			p, err := s.profiles.Create(ctx, a.ID)
			if err != nil {
				return models.Account{}, models.Profile{}, err
			}
			if _, err := s.c.UpdateByID(ctx, a.ID, bson.M{
				"$set": bson.M{"profile_id": p.ID, "updated_at": time.Now().UTC()},
			}); err != nil {
				return models.Account{}, models.Profile{}, err
			}
			a.ProfileID = &p.ID
			return a, p, nil
		}
		p, err := s.profiles.GetByID(ctx, *a.ProfileID)
		if err != nil {
			return models.Account{}, models.Profile{}, err
		}
		return a, p, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return models.Account{}, models.Profile{}, err
	}

	acct, profile, err := s.CreateWithProfile(ctx, email)
	if err == nil {
		return acct, profile, nil
	}
	if !errors.Is(err, apperr.ErrConflict) {
		return models.Account{}, models.Profile{}, err
	}
	// Concurrent first logins: someone else inserted the account between
	// our lookup and insert. Re-read theirs.
	a, err2 := s.GetByEmail(ctx, email)
	if err2 != nil {
		return models.Account{}, models.Profile{}, err
	}
	if a.ProfileID == nil {
		return models.Account{}, models.Profile{}, apperr.Internal("provision account", err)
	}
	p, err2 := s.profiles.GetByID(ctx, *a.ProfileID)
	if err2 != nil {
		return models.Account{}, models.Profile{}, err2
	}
	return a, p, nil
}

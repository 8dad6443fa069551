// internal/app/store/logins/loginstore.go
package loginstore

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/presently-app/presently/internal/app/system/normalize"
	"github.com/presently-app/presently/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// Store issues and verifies the opaque per-session API credentials that
// accompany the session cookie. Only bcrypt hashes are persisted, so a
// leaked collection yields no usable secrets; logout revokes every
// credential for the email.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("logins")}
}

// secretBytes of entropy per credential, base64-encoded for transport.
const secretBytes = 32

// Issue mints a fresh secret for the email and stores its hash.
// The plaintext secret is returned exactly once.
func (s *Store) Issue(ctx context.Context, email string) (string, error) {
	raw := make([]byte, secretBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	secret := base64.RawURLEncoding.EncodeToString(raw)

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	login := models.Login{
		Email:      normalize.Email(email),
		SecretHash: hash,
		CreatedAt:  time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, login); err != nil {
		return "", err
	}
	return secret, nil
}

// Verify reports whether the secret matches any credential issued for
// the email. Unknown email, revoked credential, and wrong secret all
// return plain false, so callers cannot distinguish them.
func (s *Store) Verify(ctx context.Context, email, secret string) bool {
	cur, err := s.c.Find(ctx, bson.M{"email": normalize.Email(email)})
	if err != nil {
		return false
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var login models.Login
		if cur.Decode(&login) != nil {
			continue
		}
		if bcrypt.CompareHashAndPassword(login.SecretHash, []byte(secret)) == nil {
			return true
		}
	}
	return false
}

// RevokeAll deletes every credential issued for the email (logout).
// Returns the number of credentials revoked.
func (s *Store) RevokeAll(ctx context.Context, email string) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"email": normalize.Email(email)})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// Revoke deletes a single credential by id.
func (s *Store) Revoke(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// internal/domain/models/login.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Login records one issued per-session API credential for an account.
// Only the bcrypt hash of the secret is stored; logout revokes every
// login for the email.
type Login struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email      string             `bson:"email" json:"email"`
	SecretHash []byte             `bson:"secret_hash" json:"-"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
}

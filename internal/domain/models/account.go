// internal/domain/models/account.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Account is the private identity record linked to the external identity
// provider by email. One account is created per first login; the only
// field mutated after creation is the ProfileID back-reference, set once
// the public profile has been generated.
type Account struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Email     string              `bson:"email" json:"email"`
	ProfileID *primitive.ObjectID `bson:"profile_id,omitempty" json:"profile_id,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

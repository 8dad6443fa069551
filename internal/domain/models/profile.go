// internal/domain/models/profile.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Profile is the public identity of an Account, distinct from the private
// account/email. UserName is always Name + "#" + HashCode and is globally
// unique (unique index on user_name). Profiles are mutated only by the
// rename operation and are never deleted in normal operation.
type Profile struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AccountID primitive.ObjectID `bson:"account_id" json:"account_id"`

	// Name is the user-chosen word (letters and digits only).
	Name   string `bson:"name" json:"name"`
	NameCI string `bson:"name_ci" json:"name_ci"` // lowercase, diacritics-stripped

	// HashCode is a server-generated 4-digit number in [1000, 9999] that
	// makes UserName unique.
	HashCode int    `bson:"hash_code" json:"hash_code"`
	UserName string `bson:"user_name" json:"user_name"` // e.g. "Laurie#3384"

	// Nickname is the preferred display name; UserName is used when empty.
	Nickname string `bson:"nickname,omitempty" json:"nickname,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// DisplayName returns the nickname when set, the full user name otherwise.
func (p Profile) DisplayName() string {
	if p.Nickname != "" {
		return p.Nickname
	}
	return p.UserName
}

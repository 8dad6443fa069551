// internal/domain/models/occasion.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Occasion is a gift-giving event. Organizer is the profile that created
// it and is never reassigned; only the organizer may update or delete the
// occasion, and deletion cascades to every dependent collection.
type Occasion struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Organizer   primitive.ObjectID `bson:"organizer" json:"organizer"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`

	// AllowSignups enables the shareable signup link: anyone holding
	// SignupToken may request to participate.
	AllowSignups bool   `bson:"allow_signups" json:"allow_signups"`
	SignupToken  string `bson:"signup_token,omitempty" json:"signup_token,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

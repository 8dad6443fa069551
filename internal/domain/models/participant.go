// internal/domain/models/participant.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Participant is the authoritative join between profiles and occasions.
// Exactly one document per (occasion_id, profile_id), enforced by a
// unique index. Participants are created only by accepting an invitation
// or approving a signup request, never directly.
type Participant struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OccasionID primitive.ObjectID `bson:"occasion_id" json:"occasion_id"`
	ProfileID  primitive.ObjectID `bson:"profile_id" json:"profile_id"`

	// Nickname is an occasion-local display name chosen by the
	// participant.
	Nickname string `bson:"nickname,omitempty" json:"nickname,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

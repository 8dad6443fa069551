// internal/domain/models/signuprequest.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SignupRequest is created by a non-participant holding the occasion's
// signup link. The organizer approves (converting it to a Participant) or
// rejects it; the requester may withdraw it. At most one request exists
// per (occasion_id, profile_id).
type SignupRequest struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OccasionID primitive.ObjectID `bson:"occasion_id" json:"occasion_id"`
	ProfileID  primitive.ObjectID `bson:"profile_id" json:"profile_id"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

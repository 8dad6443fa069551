// internal/domain/models/invitation.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Invitation statuses. An ignored invitation is terminal from the
// recipient's perspective but the sender still sees it as pending, which
// lets a recipient soft-refuse without notifying the organizer.
const (
	InvitationPending  = "pending"
	InvitationIgnored  = "ignored"
	InvitationAccepted = "accepted"
)

// Invitation asks a profile to join an occasion. Sender is always the
// occasion organizer. Accepting converts the invitation into a
// Participant and removes the invitation; either party may delete it.
// At most one invitation exists per (occasion_id, recipient).
type Invitation struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OccasionID primitive.ObjectID `bson:"occasion_id" json:"occasion_id"`
	Sender     primitive.ObjectID `bson:"sender" json:"sender"`
	Recipient  primitive.ObjectID `bson:"recipient" json:"recipient"`
	Status     string             `bson:"status" json:"status"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

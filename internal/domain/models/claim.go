// internal/domain/models/claim.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Claim is a promise by ClaimedBy to give the claimed gift. At most one
// claim exists per gift (unique index on gift_id). OccasionID is copied
// from the gift at creation so occasion-scoped listings need no join.
// Anonymous claims have ClaimedBy withheld from every viewer.
type Claim struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	GiftID     primitive.ObjectID `bson:"gift_id" json:"gift_id"`
	OccasionID primitive.ObjectID `bson:"occasion_id" json:"occasion_id"`

	ClaimedBy primitive.ObjectID `bson:"claimed_by" json:"claimed_by,omitempty"`
	Anonymous bool               `bson:"anonymous" json:"anonymous"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// internal/domain/models/gift.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Gift is a suggestion made by one participant for another (or for
// themself). Visibility is recipient-blind: the profile in SuggestedFor
// never sees the gift unless they suggested it themselves. Deleting a
// gift removes its claims first, atomically.
type Gift struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OccasionID primitive.ObjectID `bson:"occasion_id" json:"occasion_id"`

	Name        string `bson:"name" json:"name"`
	Description string `bson:"description" json:"description"`
	ImageURL    string `bson:"image_url,omitempty" json:"image_url,omitempty"`
	ShopURL     string `bson:"shop_url,omitempty" json:"shop_url,omitempty"`

	SuggestedBy  primitive.ObjectID `bson:"suggested_by" json:"suggested_by"`
	SuggestedFor primitive.ObjectID `bson:"suggested_for" json:"suggested_for"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

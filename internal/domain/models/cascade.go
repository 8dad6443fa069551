// internal/domain/models/cascade.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CascadeRecord marks an occasion delete that is in progress on a
// deployment without multi-document transactions. It is written before
// the first dependent delete and removed after the occasion document is
// gone, so a crash mid-cascade leaves a record the repair pass can
// resume. A record with no surviving occasion means only dependent
// cleanup remains.
type CascadeRecord struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OccasionID primitive.ObjectID `bson:"occasion_id" json:"occasion_id"`
	StartedAt  time.Time          `bson:"started_at" json:"started_at"`
}

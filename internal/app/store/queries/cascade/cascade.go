// internal/app/store/queries/cascade/cascade.go

// Package cascade deletes occasions together with everything hanging
// off them: invitations, signup requests, claims, gifts, participants.
//
// On a replica set the whole cascade is one transaction. On a
// standalone server it degrades to a journaled sequence: a record in
// cascade_journal is written first, the dependents are deleted in an
// order that never leaves a claim without its gift, and the record is
// removed after the occasion document is gone. Repair, run at startup,
// finishes any cascade a crash cut short.
package cascade

import (
	"context"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/presently-app/presently/internal/app/system/txn"
	"github.com/presently-app/presently/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Collections swept by the cascade, in delete order. Claims go before
// gifts so an interrupted sweep never leaves a claim on a deleted gift.
var dependents = []string{
	"invitations",
	"signup_requests",
	"claims",
	"gifts",
	"participants",
}

type Query struct {
	db      *mongo.Database
	client  *mongo.Client
	journal *mongo.Collection
	logger  *zap.Logger
}

func New(db *mongo.Database, logger *zap.Logger) *Query {
	return &Query{
		db:      db,
		client:  db.Client(),
		journal: db.Collection("cascade_journal"),
		logger:  logger,
	}
}

// DeleteOccasion removes the occasion and all its dependents. The
// handler has already verified the caller is the organizer.
func (q *Query) DeleteOccasion(ctx context.Context, occasionID primitive.ObjectID) error {
	err := txn.WithTransaction(ctx, q.client, func(ctx context.Context) error {
		return q.sweep(ctx, occasionID)
	})
	if !txn.IsNotSupported(err) {
		return err
	}
	return q.journaledDelete(ctx, occasionID)
}

// sweep deletes dependents then the occasion document. Run inside a
// transaction or with a journal record standing guard.
func (q *Query) sweep(ctx context.Context, occasionID primitive.ObjectID) error {
	for _, name := range dependents {
		if _, err := q.db.Collection(name).DeleteMany(ctx, bson.M{"occasion_id": occasionID}); err != nil {
			return err
		}
	}
	_, err := q.db.Collection("occasions").DeleteOne(ctx, bson.M{"_id": occasionID})
	return err
}

// journaledDelete is the standalone-server path. The journal record is
// durable before the first dependent delete and removed only once the
// occasion document is gone, so any crash window is covered by Repair.
func (q *Query) journaledDelete(ctx context.Context, occasionID primitive.ObjectID) error {
	rec := models.CascadeRecord{
		OccasionID: occasionID,
		StartedAt:  time.Now().UTC(),
	}
	if _, err := q.journal.InsertOne(ctx, rec); err != nil {
		// A leftover record from an earlier crashed attempt covers the
		// same occasion; the sweep below finishes both.
		if !wafflemongo.IsDup(err) {
			return err
		}
	}

	if err := q.sweep(ctx, occasionID); err != nil {
		return err
	}

	_, err := q.journal.DeleteMany(ctx, bson.M{"occasion_id": occasionID})
	return err
}

// Repair finishes cascades interrupted by a crash. Called once at
// startup, before the server accepts requests.
func (q *Query) Repair(ctx context.Context) error {
	cur, err := q.journal.Find(ctx, bson.M{})
	if err != nil {
		return err
	}
	defer cur.Close(ctx)

	var records []models.CascadeRecord
	if err := cur.All(ctx, &records); err != nil {
		return err
	}

	for _, rec := range records {
		q.logger.Info("resuming interrupted occasion delete",
			zap.String("occasion_id", rec.OccasionID.Hex()),
			zap.Time("started_at", rec.StartedAt))
		if err := q.sweep(ctx, rec.OccasionID); err != nil {
			return err
		}
		if _, err := q.journal.DeleteMany(ctx, bson.M{"occasion_id": rec.OccasionID}); err != nil {
			return err
		}
	}
	return nil
}

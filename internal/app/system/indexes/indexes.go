// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
Errors are aggregated so every problem is visible and startup can fail
fast.

The unique indexes here are load-bearing, not advisory: claim
arbitration (one claim per gift), participant dedup, invitation dedup,
user-name uniqueness, and account-email uniqueness all rely on the
store rejecting the duplicate write.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	ensurers := []struct {
		name string
		fn   func(context.Context, *mongo.Database) error
	}{
		{"accounts", ensureAccounts},
		{"profiles", ensureProfiles},
		{"occasions", ensureOccasions},
		{"participants", ensureParticipants},
		{"invitations", ensureInvitations},
		{"signup_requests", ensureSignupRequests},
		{"gifts", ensureGifts},
		{"claims", ensureClaims},
		{"logins", ensureLogins},
		{"cascade_journal", ensureCascadeJournal},
	}
	for _, e := range ensurers {
		if err := e.fn(ctx, db); err != nil {
			problems = append(problems, e.name+": "+err.Error())
		}
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func sameBoolPtr(a, b *bool) bool {
	av := a != nil && *a
	bv := b != nil && *b
	return av == bv
}

// Best-effort duplicate-detector (works cross-vendors)
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 { // E11000 duplicate key error index
				return true
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	var errs []string

	// Load existing indexes once per collection.
	existing := map[string]existingIndex{} // sig -> index
	cur, err := coll.Indexes().List(ctx)
	if err == nil {
		defer cur.Close(ctx)
		for cur.Next(ctx) {
			var idx existingIndex
			if err := cur.Decode(&idx); err != nil {
				zap.L().Warn("failed to decode existing index",
					zap.String("collection", coll.Name()),
					zap.Error(err))
				continue
			}
			existing[keySig(idx.Key)] = idx
		}
	}

	for _, m := range models {
		var desiredName string
		var desiredUnique *bool
		if m.Options != nil {
			if m.Options.Name != nil {
				desiredName = *m.Options.Name
			}
			if m.Options.Unique != nil {
				desiredUnique = m.Options.Unique
			}
		}
		desiredSig := keySig(m.Keys.(bson.D))
		start := time.Now()

		if ex, ok := existing[desiredSig]; ok {
			if sameBoolPtr(desiredUnique, ex.Unique) {
				// Same keys, same uniqueness: reuse whatever is there.
				continue
			}

			// Options mismatch (e.g. upgrading to unique). Drop & recreate.
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), desiredName, err))
				continue
			}
			if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
				if isDuplicateKeyErr(err) && desiredUnique != nil && *desiredUnique {
					errs = append(errs, fmt.Sprintf("%s(%s): cannot create unique index (duplicates present)", coll.Name(), desiredName))
				} else {
					errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), desiredName, err))
				}
				continue
			}
			zap.L().Info("index dropped and recreated",
				zap.String("collection", coll.Name()),
				zap.String("name", desiredName),
				zap.String("keys", desiredSig),
				zap.Bool("unique", desiredUnique != nil && *desiredUnique),
				zap.String("took", time.Since(start).String()))
			continue
		}

		// No existing index with the same keys: create it.
		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			if isDuplicateKeyErr(err) && desiredUnique != nil && *desiredUnique {
				errs = append(errs, fmt.Sprintf("%s(%s): cannot create unique index (duplicates present)", coll.Name(), desiredName))
			} else {
				errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), desiredName, err))
			}
			continue
		}
		zap.L().Info("index created",
			zap.String("collection", coll.Name()),
			zap.String("name", desiredName),
			zap.String("keys", desiredSig),
			zap.Bool("unique", desiredUnique != nil && *desiredUnique),
			zap.String("took", time.Since(start).String()))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Per-collection index sets                                                  */
/* -------------------------------------------------------------------------- */

func ensureAccounts(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("accounts")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// One account per identity-provider email.
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_accounts_email"),
		},
	})
}

func ensureProfiles(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("profiles")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Global user-name uniqueness; the naming service's re-roll loop
		// depends on lookups against this index.
		{
			Keys:    bson.D{{Key: "user_name", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_profiles_username"),
		},
		// Case/diacritic-insensitive name search.
		{
			Keys:    bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_profiles_nameci__id"),
		},
		{
			Keys:    bson.D{{Key: "account_id", Value: 1}},
			Options: options.Index().SetName("idx_profiles_account"),
		},
	})
}

func ensureOccasions(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("occasions")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "organizer", Value: 1}},
			Options: options.Index().SetName("idx_occasions_organizer"),
		},
		{
			Keys:    bson.D{{Key: "signup_token", Value: 1}},
			Options: options.Index().SetName("idx_occasions_signup_token"),
		},
	})
}

func ensureParticipants(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("participants")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Exactly one participant per (occasion, profile); the prefix also
		// serves occasion-scoped listings.
		{
			Keys:    bson.D{{Key: "occasion_id", Value: 1}, {Key: "profile_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_participants_occasion_profile"),
		},
		// A profile's occasions.
		{
			Keys:    bson.D{{Key: "profile_id", Value: 1}, {Key: "occasion_id", Value: 1}},
			Options: options.Index().SetName("idx_participants_profile_occasion"),
		},
	})
}

func ensureInvitations(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("invitations")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// One live invitation per (occasion, recipient).
		{
			Keys:    bson.D{{Key: "occasion_id", Value: 1}, {Key: "recipient", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_invitations_occasion_recipient"),
		},
		{
			Keys:    bson.D{{Key: "sender", Value: 1}},
			Options: options.Index().SetName("idx_invitations_sender"),
		},
		{
			Keys:    bson.D{{Key: "recipient", Value: 1}},
			Options: options.Index().SetName("idx_invitations_recipient"),
		},
	})
}

func ensureSignupRequests(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("signup_requests")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// One request per (occasion, profile).
		{
			Keys:    bson.D{{Key: "occasion_id", Value: 1}, {Key: "profile_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_signups_occasion_profile"),
		},
		{
			Keys:    bson.D{{Key: "profile_id", Value: 1}},
			Options: options.Index().SetName("idx_signups_profile"),
		},
	})
}

func ensureGifts(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("gifts")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Occasion listings filtered by the recipient-blind predicate.
		{
			Keys:    bson.D{{Key: "occasion_id", Value: 1}, {Key: "suggested_for", Value: 1}},
			Options: options.Index().SetName("idx_gifts_occasion_suggestedfor"),
		},
		{
			Keys:    bson.D{{Key: "suggested_by", Value: 1}},
			Options: options.Index().SetName("idx_gifts_suggestedby"),
		},
	})
}

func ensureClaims(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("claims")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// The one-claim-per-gift invariant. Concurrent claims are
		// serialized here; the loser sees a duplicate-key error.
		{
			Keys:    bson.D{{Key: "gift_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_claims_gift"),
		},
		{
			Keys:    bson.D{{Key: "occasion_id", Value: 1}},
			Options: options.Index().SetName("idx_claims_occasion"),
		},
		{
			Keys:    bson.D{{Key: "claimed_by", Value: 1}},
			Options: options.Index().SetName("idx_claims_claimedby"),
		},
	})
}

func ensureLogins(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("logins")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("idx_logins_email"),
		},
	})
}

func ensureCascadeJournal(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("cascade_journal")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "occasion_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_cascade_occasion"),
		},
	})
}

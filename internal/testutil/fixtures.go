// internal/testutil/fixtures.go
package testutil

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/presently-app/presently/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateAccount inserts an account for the given email.
func (f *Fixtures) CreateAccount(ctx context.Context, email string) models.Account {
	f.t.Helper()

	now := time.Now().UTC()
	acct := models.Account{
		ID:        primitive.NewObjectID(),
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("accounts").InsertOne(ctx, acct); err != nil {
		f.t.Fatalf("failed to create test account: %v", err)
	}
	return acct
}

// CreateProfile inserts a profile with a deterministic hash code and
// links it back to the account.
func (f *Fixtures) CreateProfile(ctx context.Context, accountID primitive.ObjectID, name string, hashCode int) models.Profile {
	f.t.Helper()

	now := time.Now().UTC()
	p := models.Profile{
		ID:        primitive.NewObjectID(),
		AccountID: accountID,
		Name:      name,
		NameCI:    text.Fold(name),
		HashCode:  hashCode,
		UserName:  name + "#" + strconv.Itoa(hashCode),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("profiles").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("failed to create test profile: %v", err)
	}
	if _, err := f.db.Collection("accounts").UpdateByID(ctx, accountID, map[string]any{"$set": map[string]any{"profile_id": p.ID}}); err != nil {
		f.t.Fatalf("failed to link profile to account: %v", err)
	}
	return p
}

// CreateUser creates an account plus linked profile in one call and
// returns the profile. The name doubles as the email local part.
func (f *Fixtures) CreateUser(ctx context.Context, name string, hashCode int) models.Profile {
	f.t.Helper()
	acct := f.CreateAccount(ctx, name+"@example.com")
	return f.CreateProfile(ctx, acct.ID, name, hashCode)
}

// CreateOccasion inserts an occasion organized by the given profile.
func (f *Fixtures) CreateOccasion(ctx context.Context, organizer primitive.ObjectID, title string, allowSignups bool) models.Occasion {
	f.t.Helper()

	now := time.Now().UTC()
	occ := models.Occasion{
		ID:           primitive.NewObjectID(),
		Organizer:    organizer,
		Title:        title,
		AllowSignups: allowSignups,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if allowSignups {
		occ.SignupToken = primitive.NewObjectID().Hex()
	}
	if _, err := f.db.Collection("occasions").InsertOne(ctx, occ); err != nil {
		f.t.Fatalf("failed to create test occasion: %v", err)
	}
	return occ
}

// CreateParticipant attaches a profile to an occasion directly,
// bypassing the invitation flow.
func (f *Fixtures) CreateParticipant(ctx context.Context, occasionID, profileID primitive.ObjectID) models.Participant {
	f.t.Helper()

	p := models.Participant{
		ID:         primitive.NewObjectID(),
		OccasionID: occasionID,
		ProfileID:  profileID,
		CreatedAt:  time.Now().UTC(),
	}
	if _, err := f.db.Collection("participants").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("failed to create test participant: %v", err)
	}
	return p
}

// CreateInvitation inserts a pending invitation.
func (f *Fixtures) CreateInvitation(ctx context.Context, occasionID, sender, recipient primitive.ObjectID) models.Invitation {
	f.t.Helper()

	now := time.Now().UTC()
	inv := models.Invitation{
		ID:         primitive.NewObjectID(),
		OccasionID: occasionID,
		Sender:     sender,
		Recipient:  recipient,
		Status:     models.InvitationPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := f.db.Collection("invitations").InsertOne(ctx, inv); err != nil {
		f.t.Fatalf("failed to create test invitation: %v", err)
	}
	return inv
}

// CreateSignupRequest inserts a signup request.
func (f *Fixtures) CreateSignupRequest(ctx context.Context, occasionID, profileID primitive.ObjectID) models.SignupRequest {
	f.t.Helper()

	req := models.SignupRequest{
		ID:         primitive.NewObjectID(),
		OccasionID: occasionID,
		ProfileID:  profileID,
		CreatedAt:  time.Now().UTC(),
	}
	if _, err := f.db.Collection("signup_requests").InsertOne(ctx, req); err != nil {
		f.t.Fatalf("failed to create test signup request: %v", err)
	}
	return req
}

// CreateGift inserts a gift suggestion.
func (f *Fixtures) CreateGift(ctx context.Context, occasionID, suggestedBy, suggestedFor primitive.ObjectID, name string) models.Gift {
	f.t.Helper()

	now := time.Now().UTC()
	g := models.Gift{
		ID:           primitive.NewObjectID(),
		OccasionID:   occasionID,
		Name:         name,
		SuggestedBy:  suggestedBy,
		SuggestedFor: suggestedFor,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := f.db.Collection("gifts").InsertOne(ctx, g); err != nil {
		f.t.Fatalf("failed to create test gift: %v", err)
	}
	return g
}

// CreateClaim inserts a claim on a gift.
func (f *Fixtures) CreateClaim(ctx context.Context, giftID, occasionID, claimedBy primitive.ObjectID, anonymous bool) models.Claim {
	f.t.Helper()

	c := models.Claim{
		ID:         primitive.NewObjectID(),
		GiftID:     giftID,
		OccasionID: occasionID,
		ClaimedBy:  claimedBy,
		Anonymous:  anonymous,
		CreatedAt:  time.Now().UTC(),
	}
	if _, err := f.db.Collection("claims").InsertOne(ctx, c); err != nil {
		f.t.Fatalf("failed to create test claim: %v", err)
	}
	return c
}

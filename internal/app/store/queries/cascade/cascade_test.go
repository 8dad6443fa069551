package cascade_test

import (
	"testing"
	"time"

	"github.com/presently-app/presently/internal/app/store/queries/cascade"
	"github.com/presently-app/presently/internal/domain/models"
	"github.com/presently-app/presently/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func TestQuery_DeleteOccasion(t *testing.T) {
	db := testutil.SetupTestDB(t)
	q := cascade.New(db, zap.NewNop())
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := fixtures.CreateUser(ctx, "alice", 1234)
	bob := fixtures.CreateUser(ctx, "bob", 2345)
	carol := fixtures.CreateUser(ctx, "carol", 3456)
	dave := fixtures.CreateUser(ctx, "dave", 4567)

	occ := fixtures.CreateOccasion(ctx, alice.ID, "Birthday", true)
	fixtures.CreateParticipant(ctx, occ.ID, bob.ID)
	fixtures.CreateInvitation(ctx, occ.ID, alice.ID, carol.ID)
	fixtures.CreateSignupRequest(ctx, occ.ID, dave.ID)
	g := fixtures.CreateGift(ctx, occ.ID, alice.ID, bob.ID, "Socks")
	fixtures.CreateClaim(ctx, g.ID, occ.ID, alice.ID, false)

	// A second occasion that must survive untouched.
	other := fixtures.CreateOccasion(ctx, alice.ID, "Housewarming", false)
	fixtures.CreateParticipant(ctx, other.ID, carol.ID)
	og := fixtures.CreateGift(ctx, other.ID, alice.ID, carol.ID, "Plant")
	fixtures.CreateClaim(ctx, og.ID, other.ID, bob.ID, false)

	if err := q.DeleteOccasion(ctx, occ.ID); err != nil {
		t.Fatalf("DeleteOccasion failed: %v", err)
	}

	for _, col := range []string{"invitations", "signup_requests", "claims", "gifts", "participants"} {
		n, err := db.Collection(col).CountDocuments(ctx, bson.M{"occasion_id": occ.ID})
		if err != nil {
			t.Fatalf("CountDocuments(%s) failed: %v", col, err)
		}
		if n != 0 {
			t.Errorf("%s: %d documents left for deleted occasion", col, n)
		}
	}
	n, err := db.Collection("occasions").CountDocuments(ctx, bson.M{"_id": occ.ID})
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if n != 0 {
		t.Error("occasion document survived")
	}
	n, err = db.Collection("cascade_journal").CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if n != 0 {
		t.Errorf("%d journal records left after completed cascade", n)
	}

	// The other occasion is intact.
	for col, want := range map[string]int64{"participants": 1, "gifts": 1, "claims": 1} {
		n, err := db.Collection(col).CountDocuments(ctx, bson.M{"occasion_id": other.ID})
		if err != nil {
			t.Fatalf("CountDocuments(%s) failed: %v", col, err)
		}
		if n != want {
			t.Errorf("%s for surviving occasion: got %d, want %d", col, n, want)
		}
	}
}

func TestQuery_Repair(t *testing.T) {
	db := testutil.SetupTestDB(t)
	q := cascade.New(db, zap.NewNop())
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := fixtures.CreateUser(ctx, "alice", 1234)
	bob := fixtures.CreateUser(ctx, "bob", 2345)
	occ := fixtures.CreateOccasion(ctx, alice.ID, "Birthday", false)
	fixtures.CreateParticipant(ctx, occ.ID, bob.ID)
	g := fixtures.CreateGift(ctx, occ.ID, alice.ID, bob.ID, "Socks")
	fixtures.CreateClaim(ctx, g.ID, occ.ID, alice.ID, false)

	// Simulate a crash mid-cascade: the journal record is durable but
	// nothing was deleted yet.
	rec := models.CascadeRecord{OccasionID: occ.ID, StartedAt: time.Now().UTC()}
	if _, err := db.Collection("cascade_journal").InsertOne(ctx, rec); err != nil {
		t.Fatalf("InsertOne failed: %v", err)
	}

	if err := q.Repair(ctx); err != nil {
		t.Fatalf("Repair failed: %v", err)
	}

	for _, col := range []string{"claims", "gifts", "participants", "cascade_journal"} {
		n, err := db.Collection(col).CountDocuments(ctx, bson.M{})
		if err != nil {
			t.Fatalf("CountDocuments(%s) failed: %v", col, err)
		}
		if n != 0 {
			t.Errorf("%s: %d documents left after repair", col, n)
		}
	}
	n, err := db.Collection("occasions").CountDocuments(ctx, bson.M{"_id": occ.ID})
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if n != 0 {
		t.Error("occasion survived repair")
	}
}

func TestQuery_Repair_NothingToDo(t *testing.T) {
	db := testutil.SetupTestDB(t)
	q := cascade.New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := q.Repair(ctx); err != nil {
		t.Fatalf("Repair on empty journal failed: %v", err)
	}
}

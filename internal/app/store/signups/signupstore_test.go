package signupstore_test

import (
	"errors"
	"testing"

	"github.com/presently-app/presently/internal/app/store/signups"
	"github.com/presently-app/presently/internal/app/system/apperr"
	"github.com/presently-app/presently/internal/app/system/indexes"
	"github.com/presently-app/presently/internal/testutil"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := signupstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := fixtures.CreateUser(ctx, "alice", 1234)
	bob := fixtures.CreateUser(ctx, "bob", 2345)
	occ := fixtures.CreateOccasion(ctx, alice.ID, "Birthday", true)

	req, err := store.Create(ctx, occ.ID, bob.ID)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if req.OccasionID != occ.ID || req.ProfileID != bob.ID {
		t.Errorf("request mismatch: %+v", req)
	}
}

func TestStore_Create_Duplicate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := signupstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	alice := fixtures.CreateUser(ctx, "alice", 1234)
	bob := fixtures.CreateUser(ctx, "bob", 2345)
	occ := fixtures.CreateOccasion(ctx, alice.ID, "Birthday", true)

	if _, err := store.Create(ctx, occ.ID, bob.ID); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	_, err := store.Create(ctx, occ.ID, bob.ID)
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("second Create: got %v, want conflict", err)
	}
}

func TestStore_ListByOccasion(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := signupstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := fixtures.CreateUser(ctx, "alice", 1234)
	bob := fixtures.CreateUser(ctx, "bob", 2345)
	carol := fixtures.CreateUser(ctx, "carol", 3456)
	occ := fixtures.CreateOccasion(ctx, alice.ID, "Birthday", true)
	other := fixtures.CreateOccasion(ctx, alice.ID, "Housewarming", true)
	fixtures.CreateSignupRequest(ctx, occ.ID, bob.ID)
	fixtures.CreateSignupRequest(ctx, occ.ID, carol.ID)
	fixtures.CreateSignupRequest(ctx, other.ID, bob.ID)

	got, err := store.ListByOccasion(ctx, occ.ID)
	if err != nil {
		t.Fatalf("ListByOccasion failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %d requests, want 2", len(got))
	}
}

func TestStore_DeleteForPair(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := signupstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := fixtures.CreateUser(ctx, "alice", 1234)
	bob := fixtures.CreateUser(ctx, "bob", 2345)
	occ := fixtures.CreateOccasion(ctx, alice.ID, "Birthday", true)
	fixtures.CreateSignupRequest(ctx, occ.ID, bob.ID)

	if err := store.DeleteForPair(ctx, occ.ID, bob.ID); err != nil {
		t.Fatalf("DeleteForPair failed: %v", err)
	}
	got, err := store.ListByProfile(ctx, bob.ID)
	if err != nil {
		t.Fatalf("ListByProfile failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("request should be gone, got %d", len(got))
	}
}

package profilestore_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/presently-app/presently/internal/app/store/profiles"
	"github.com/presently-app/presently/internal/app/system/apperr"
	"github.com/presently-app/presently/internal/app/system/indexes"
	"github.com/presently-app/presently/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Create_GeneratesName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := profilestore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	acct := fixtures.CreateAccount(ctx, "alice@example.com")

	p, err := store.Create(ctx, acct.ID)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if p.Name == "" {
		t.Fatal("generated profile has no name")
	}
	if p.HashCode < 1000 || p.HashCode > 9999 {
		t.Errorf("HashCode %d out of range", p.HashCode)
	}
	if !strings.Contains(p.UserName, "#") {
		t.Errorf("UserName %q missing hash separator", p.UserName)
	}
}

func TestStore_GetByUserName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := profilestore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := fixtures.CreateUser(ctx, "alice", 1234)

	got, err := store.GetByUserName(ctx, alice.UserName)
	if err != nil {
		t.Fatalf("GetByUserName failed: %v", err)
	}
	if got.ID != alice.ID {
		t.Errorf("resolved wrong profile")
	}

	_, err = store.GetByUserName(ctx, "nobody#1111")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("got %v, want not found", err)
	}
}

func TestStore_Rename(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := profilestore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	alice := fixtures.CreateUser(ctx, "alice", 1234)

	got, err := store.Rename(ctx, alice.ID, "alicia")
	if err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	if got.Name != "alicia" {
		t.Errorf("Name: got %q, want %q", got.Name, "alicia")
	}
	// The previous hash is still free, so it is kept.
	if got.HashCode != 1234 {
		t.Errorf("HashCode: got %d, want 1234", got.HashCode)
	}
	if got.UserName != "alicia#1234" {
		t.Errorf("UserName: got %q, want %q", got.UserName, "alicia#1234")
	}
}

func TestStore_Rename_CollisionRerollsHash(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := profilestore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	// bob#1234 is taken, so renaming alice#1234 to bob must re-roll.
	fixtures.CreateUser(ctx, "bob", 1234)
	alice := fixtures.CreateUser(ctx, "alice", 1234)

	got, err := store.Rename(ctx, alice.ID, "bob")
	if err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	if got.Name != "bob" {
		t.Errorf("Name: got %q, want %q", got.Name, "bob")
	}
	if got.HashCode == 1234 {
		t.Error("hash not re-rolled on collision")
	}
	if got.UserName == "bob#1234" {
		t.Error("user_name collides with existing profile")
	}
}

func TestStore_Rename_RaceSurfacesConflict(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := profilestore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	// Both profiles hold the same hash code and rename to the same word
	// at once, so both availability lookups can see the same user name
	// free before either write lands. The unique index breaks the tie;
	// the loser must come back as a conflict, not a raw driver error.
	for round := 0; round < 10; round++ {
		target := fmt.Sprintf("wren%d", round)
		a := fixtures.CreateUser(ctx, fmt.Sprintf("pat%d", round), 1234)
		b := fixtures.CreateUser(ctx, fmt.Sprintf("quinn%d", round), 1234)

		errs := make(chan error, 2)
		for _, id := range []primitive.ObjectID{a.ID, b.ID} {
			go func(id primitive.ObjectID) {
				_, err := store.Rename(ctx, id, target)
				errs <- err
			}(id)
		}
		for i := 0; i < 2; i++ {
			if err := <-errs; err != nil && !errors.Is(err, apperr.ErrConflict) {
				t.Fatalf("racing rename: got %v, want nil or conflict", err)
			}
		}

		gotA, err := store.GetByID(ctx, a.ID)
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		gotB, err := store.GetByID(ctx, b.ID)
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if gotA.UserName == gotB.UserName {
			t.Fatalf("both profiles hold %q", gotA.UserName)
		}
	}
}

func TestStore_Rename_InvalidName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := profilestore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := fixtures.CreateUser(ctx, "alice", 1234)

	for _, name := range []string{"", "has space", "has#hash", "tilde~"} {
		_, err := store.Rename(ctx, alice.ID, name)
		if !errors.Is(err, apperr.ErrInvalid) {
			t.Errorf("Rename(%q): got %v, want invalid", name, err)
		}
	}
}

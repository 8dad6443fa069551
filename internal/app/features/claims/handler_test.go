package claims_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/presently-app/presently/internal/app/features/claims"
	claimstore "github.com/presently-app/presently/internal/app/store/claims"
	giftstore "github.com/presently-app/presently/internal/app/store/gifts"
	occasionstore "github.com/presently-app/presently/internal/app/store/occasions"
	participantstore "github.com/presently-app/presently/internal/app/store/participants"
	"github.com/presently-app/presently/internal/app/system/auth"
	"github.com/presently-app/presently/internal/app/system/indexes"
	"github.com/presently-app/presently/internal/domain/models"
	"github.com/presently-app/presently/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newHandler(db *mongo.Database) *claims.Handler {
	return claims.NewHandler(
		claimstore.New(db),
		giftstore.New(db),
		occasionstore.New(db),
		participantstore.New(db),
		zap.NewNop(),
	)
}

func signedIn(r *http.Request, p models.Profile) *http.Request {
	return auth.WithTestUser(r, &auth.SessionUser{
		ProfileID: p.ID,
		Email:     p.Name + "@example.com",
		UserName:  p.UserName,
	})
}

func TestServeCreate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	alice := f.CreateUser(ctx, "alice", 4242)
	bob := f.CreateUser(ctx, "bob", 1234)
	carol := f.CreateUser(ctx, "carol", 5678)
	occ := f.CreateOccasion(ctx, alice.ID, "Birthday", false)
	f.CreateParticipant(ctx, occ.ID, bob.ID)
	f.CreateParticipant(ctx, occ.ID, carol.ID)
	gift := f.CreateGift(ctx, occ.ID, alice.ID, bob.ID, "Socks")

	h := newHandler(db)

	body := strings.NewReader(`{"gift_id": "` + gift.ID.Hex() + `"}`)
	req := signedIn(httptest.NewRequest("POST", "/api/claims", body), carol)
	rec := httptest.NewRecorder()
	h.ServeCreate(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		GiftID    string `json:"gift_id"`
		ClaimedBy string `json:"claimed_by"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp.GiftID != gift.ID.Hex() || resp.ClaimedBy != carol.ID.Hex() {
		t.Errorf("unexpected claim: %+v", resp)
	}
}

func TestServeCreate_Anonymous(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	alice := f.CreateUser(ctx, "alice", 4242)
	bob := f.CreateUser(ctx, "bob", 1234)
	carol := f.CreateUser(ctx, "carol", 5678)
	occ := f.CreateOccasion(ctx, alice.ID, "Birthday", false)
	f.CreateParticipant(ctx, occ.ID, bob.ID)
	f.CreateParticipant(ctx, occ.ID, carol.ID)
	gift := f.CreateGift(ctx, occ.ID, alice.ID, bob.ID, "Socks")

	h := newHandler(db)

	body := strings.NewReader(`{"gift_id": "` + gift.ID.Hex() + `", "anonymous": true}`)
	req := signedIn(httptest.NewRequest("POST", "/api/claims", body), carol)
	rec := httptest.NewRecorder()
	h.ServeCreate(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), carol.ID.Hex()) {
		t.Error("anonymous claim leaked the claimant")
	}
}

func TestServeCreate_SecondClaimConflicts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	alice := f.CreateUser(ctx, "alice", 4242)
	bob := f.CreateUser(ctx, "bob", 1234)
	carol := f.CreateUser(ctx, "carol", 5678)
	occ := f.CreateOccasion(ctx, alice.ID, "Birthday", false)
	f.CreateParticipant(ctx, occ.ID, bob.ID)
	f.CreateParticipant(ctx, occ.ID, carol.ID)
	gift := f.CreateGift(ctx, occ.ID, alice.ID, bob.ID, "Socks")
	f.CreateClaim(ctx, gift.ID, occ.ID, alice.ID, false)

	h := newHandler(db)

	body := strings.NewReader(`{"gift_id": "` + gift.ID.Hex() + `"}`)
	req := signedIn(httptest.NewRequest("POST", "/api/claims", body), carol)
	rec := httptest.NewRecorder()
	h.ServeCreate(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("expected status 409 for second claim, got %d", rec.Code)
	}
}

func TestServeCreate_RecipientBlocked(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	alice := f.CreateUser(ctx, "alice", 4242)
	bob := f.CreateUser(ctx, "bob", 1234)
	occ := f.CreateOccasion(ctx, alice.ID, "Birthday", false)
	f.CreateParticipant(ctx, occ.ID, bob.ID)
	gift := f.CreateGift(ctx, occ.ID, alice.ID, bob.ID, "Socks")

	h := newHandler(db)

	body := strings.NewReader(`{"gift_id": "` + gift.ID.Hex() + `"}`)
	req := signedIn(httptest.NewRequest("POST", "/api/claims", body), bob)
	rec := httptest.NewRecorder()
	h.ServeCreate(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status 404 for the recipient, got %d", rec.Code)
	}
}

func TestServeList_AnonymousStaysAnonymous(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	alice := f.CreateUser(ctx, "alice", 4242)
	bob := f.CreateUser(ctx, "bob", 1234)
	carol := f.CreateUser(ctx, "carol", 5678)
	occ := f.CreateOccasion(ctx, alice.ID, "Birthday", false)
	f.CreateParticipant(ctx, occ.ID, bob.ID)
	f.CreateParticipant(ctx, occ.ID, carol.ID)
	gift := f.CreateGift(ctx, occ.ID, alice.ID, bob.ID, "Socks")
	f.CreateClaim(ctx, gift.ID, occ.ID, carol.ID, true)

	h := newHandler(db)

	// Even the organizer does not learn who claimed anonymously.
	req := signedIn(httptest.NewRequest("GET", "/api/occasions/"+occ.ID.Hex()+"/claims", nil), alice)
	req = testutil.WithChiURLParam(req, "occasionID", occ.ID.Hex())
	rec := httptest.NewRecorder()
	h.ServeList(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), carol.ID.Hex()) {
		t.Error("anonymous claimant leaked in listing")
	}
}

func TestServeList_FollowsGiftVisibility(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	alice := f.CreateUser(ctx, "alice", 4242)
	bob := f.CreateUser(ctx, "bob", 1234)
	carol := f.CreateUser(ctx, "carol", 5678)
	occ := f.CreateOccasion(ctx, alice.ID, "Birthday", false)
	f.CreateParticipant(ctx, occ.ID, bob.ID)
	f.CreateParticipant(ctx, occ.ID, carol.ID)
	surprise := f.CreateGift(ctx, occ.ID, alice.ID, bob.ID, "Surprise")
	claim := f.CreateClaim(ctx, surprise.ID, occ.ID, carol.ID, false)

	h := newHandler(db)

	// Bob cannot see the gift, so its claim stays hidden too.
	req := signedIn(httptest.NewRequest("GET", "/api/occasions/"+occ.ID.Hex()+"/claims", nil), bob)
	req = testutil.WithChiURLParam(req, "occasionID", occ.ID.Hex())
	rec := httptest.NewRecorder()
	h.ServeList(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), claim.ID.Hex()) {
		t.Error("claim on a hidden gift leaked to the recipient")
	}
}

func TestServeRelease(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	alice := f.CreateUser(ctx, "alice", 4242)
	bob := f.CreateUser(ctx, "bob", 1234)
	carol := f.CreateUser(ctx, "carol", 5678)
	occ := f.CreateOccasion(ctx, alice.ID, "Birthday", false)
	f.CreateParticipant(ctx, occ.ID, bob.ID)
	f.CreateParticipant(ctx, occ.ID, carol.ID)
	gift := f.CreateGift(ctx, occ.ID, alice.ID, bob.ID, "Socks")
	f.CreateClaim(ctx, gift.ID, occ.ID, carol.ID, false)

	h := newHandler(db)

	req := signedIn(httptest.NewRequest("DELETE", "/api/claims/gift/"+gift.ID.Hex(), nil), carol)
	req = testutil.WithChiURLParam(req, "giftID", gift.ID.Hex())
	rec := httptest.NewRecorder()
	h.ServeRelease(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d: %s", rec.Code, rec.Body.String())
	}
	if n, _ := db.Collection("claims").CountDocuments(ctx, bson.M{"gift_id": gift.ID}); n != 0 {
		t.Error("expected claim released")
	}
}

func TestServeRelease_NonClaimantForbidden(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	alice := f.CreateUser(ctx, "alice", 4242)
	bob := f.CreateUser(ctx, "bob", 1234)
	carol := f.CreateUser(ctx, "carol", 5678)
	occ := f.CreateOccasion(ctx, alice.ID, "Birthday", false)
	f.CreateParticipant(ctx, occ.ID, bob.ID)
	f.CreateParticipant(ctx, occ.ID, carol.ID)
	gift := f.CreateGift(ctx, occ.ID, alice.ID, bob.ID, "Socks")
	f.CreateClaim(ctx, gift.ID, occ.ID, carol.ID, false)

	h := newHandler(db)

	req := signedIn(httptest.NewRequest("DELETE", "/api/claims/gift/"+gift.ID.Hex(), nil), alice)
	req = testutil.WithChiURLParam(req, "giftID", gift.ID.Hex())
	rec := httptest.NewRecorder()
	h.ServeRelease(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected status 403 for non-claimant, got %d", rec.Code)
	}
}

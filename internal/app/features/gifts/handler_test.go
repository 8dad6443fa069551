package gifts_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/presently-app/presently/internal/app/features/gifts"
	giftstore "github.com/presently-app/presently/internal/app/store/gifts"
	occasionstore "github.com/presently-app/presently/internal/app/store/occasions"
	participantstore "github.com/presently-app/presently/internal/app/store/participants"
	"github.com/presently-app/presently/internal/app/system/auth"
	"github.com/presently-app/presently/internal/domain/models"
	"github.com/presently-app/presently/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newHandler(db *mongo.Database) *gifts.Handler {
	return gifts.NewHandler(
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
	occ := f.CreateOccasion(ctx, alice.ID, "Birthday", false)
	f.CreateParticipant(ctx, occ.ID, bob.ID)

	h := newHandler(db)

	body := strings.NewReader(`{"name": "Mystery novel", "suggested_for": "` + bob.ID.Hex() + `"}`)
	req := signedIn(httptest.NewRequest("POST", "/api/occasions/"+occ.ID.Hex()+"/gifts", body), alice)
	req = testutil.WithChiURLParam(req, "occasionID", occ.ID.Hex())
	rec := httptest.NewRecorder()
	h.ServeCreate(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Name         string `json:"name"`
		SuggestedFor string `json:"suggested_for"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp.Name != "Mystery novel" || resp.SuggestedFor != bob.ID.Hex() {
		t.Errorf("unexpected gift: %+v", resp)
	}
}

func TestServeCreate_TargetNotMember(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	alice := f.CreateUser(ctx, "alice", 4242)
	carol := f.CreateUser(ctx, "carol", 5678)
	occ := f.CreateOccasion(ctx, alice.ID, "Birthday", false)

	h := newHandler(db)

	body := strings.NewReader(`{"name": "Socks", "suggested_for": "` + carol.ID.Hex() + `"}`)
	req := signedIn(httptest.NewRequest("POST", "/api/occasions/"+occ.ID.Hex()+"/gifts", body), alice)
	req = testutil.WithChiURLParam(req, "occasionID", occ.ID.Hex())
	rec := httptest.NewRecorder()
	h.ServeCreate(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400 for non-member target, got %d", rec.Code)
	}
}

func TestServeCreate_OutsiderSuggester(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	alice := f.CreateUser(ctx, "alice", 4242)
	mallory := f.CreateUser(ctx, "mallory", 6666)
	occ := f.CreateOccasion(ctx, alice.ID, "Birthday", false)

	h := newHandler(db)

	body := strings.NewReader(`{"name": "Socks", "suggested_for": "` + alice.ID.Hex() + `"}`)
	req := signedIn(httptest.NewRequest("POST", "/api/occasions/"+occ.ID.Hex()+"/gifts", body), mallory)
	req = testutil.WithChiURLParam(req, "occasionID", occ.ID.Hex())
	rec := httptest.NewRecorder()
	h.ServeCreate(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status 404 for outsider, got %d", rec.Code)
	}
}

func TestServeList_RecipientBlind(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	alice := f.CreateUser(ctx, "alice", 4242)
	bob := f.CreateUser(ctx, "bob", 1234)
	occ := f.CreateOccasion(ctx, alice.ID, "Birthday", false)
	f.CreateParticipant(ctx, occ.ID, bob.ID)
	surprise := f.CreateGift(ctx, occ.ID, alice.ID, bob.ID, "Surprise")
	wishlist := f.CreateGift(ctx, occ.ID, bob.ID, bob.ID, "Wishlist item")

	h := newHandler(db)

	req := signedIn(httptest.NewRequest("GET", "/api/occasions/"+occ.ID.Hex()+"/gifts", nil), bob)
	req = testutil.WithChiURLParam(req, "occasionID", occ.ID.Hex())
	rec := httptest.NewRecorder()
	h.ServeList(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if strings.Contains(body, surprise.ID.Hex()) {
		t.Error("recipient can see a gift suggested for them")
	}
	if !strings.Contains(body, wishlist.ID.Hex()) {
		t.Error("recipient cannot see their own wishlist suggestion")
	}
}

func TestServeGet_HiddenFromRecipient(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	alice := f.CreateUser(ctx, "alice", 4242)
	bob := f.CreateUser(ctx, "bob", 1234)
	occ := f.CreateOccasion(ctx, alice.ID, "Birthday", false)
	f.CreateParticipant(ctx, occ.ID, bob.ID)
	surprise := f.CreateGift(ctx, occ.ID, alice.ID, bob.ID, "Surprise")

	h := newHandler(db)

	req := signedIn(httptest.NewRequest("GET", "/api/gifts/"+surprise.ID.Hex(), nil), bob)
	req = testutil.WithChiURLParam(req, "giftID", surprise.ID.Hex())
	rec := httptest.NewRecorder()
	h.ServeGet(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status 404 for the recipient, got %d", rec.Code)
	}
}

func TestServeUpdate_NonSuggesterForbidden(t *testing.T) {
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

	body := strings.NewReader(`{"name": "Better socks"}`)
	req := signedIn(httptest.NewRequest("PUT", "/api/gifts/"+gift.ID.Hex(), body), carol)
	req = testutil.WithChiURLParam(req, "giftID", gift.ID.Hex())
	rec := httptest.NewRecorder()
	h.ServeUpdate(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected status 403 for non-suggester, got %d", rec.Code)
	}
}

func TestServeDelete_OrganizerMay(t *testing.T) {
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
	gift := f.CreateGift(ctx, occ.ID, carol.ID, bob.ID, "Socks")

	h := newHandler(db)

	req := signedIn(httptest.NewRequest("DELETE", "/api/gifts/"+gift.ID.Hex(), nil), alice)
	req = testutil.WithChiURLParam(req, "giftID", gift.ID.Hex())
	rec := httptest.NewRecorder()
	h.ServeDelete(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204 for organizer delete, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestServeDelete_RemovesClaim(t *testing.T) {
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

	req := signedIn(httptest.NewRequest("DELETE", "/api/gifts/"+gift.ID.Hex(), nil), alice)
	req = testutil.WithChiURLParam(req, "giftID", gift.ID.Hex())
	rec := httptest.NewRecorder()
	h.ServeDelete(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d: %s", rec.Code, rec.Body.String())
	}
	if n, _ := db.Collection("gifts").CountDocuments(ctx, bson.M{"_id": gift.ID}); n != 0 {
		t.Error("expected gift gone")
	}
	if n, _ := db.Collection("claims").CountDocuments(ctx, bson.M{"gift_id": gift.ID}); n != 0 {
		t.Error("expected claim gone with the gift")
	}
}

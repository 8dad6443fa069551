package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/presently-app/presently/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func initTestStore(t *testing.T) {
	t.Helper()
	err := auth.InitSessionStore("test-session-key-must-be-32-chars-long", "", false, zap.NewNop())
	if err != nil {
		t.Fatalf("failed to init session store: %v", err)
	}
}

func withTestUser(r *http.Request) *http.Request {
	return auth.WithTestUser(r, &auth.SessionUser{
		ProfileID: primitive.NewObjectID(),
		Email:     "test@example.com",
		UserName:  "brave-otter#4242",
	})
}

func TestRequireSignedIn_NoUser_Returns401(t *testing.T) {
	handler := auth.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/api/occasions", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}
}

func TestRequireSignedIn_WithUser_Proceeds(t *testing.T) {
	called := false
	handler := auth.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	req := withTestUser(httptest.NewRequest("GET", "/api/occasions", nil))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if !called {
		t.Error("expected handler to be called")
	}
}

func TestSignIn_RoundTrip(t *testing.T) {
	initTestStore(t)

	profileID := primitive.NewObjectID()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/auth/callback", nil)
	err := auth.SignIn(rec, req, auth.SessionUser{
		ProfileID: profileID,
		Email:     "alice@example.com",
		UserName:  "brave-otter#4242",
	})
	if err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("SignIn set no cookie")
	}

	// Replay the cookie through the middleware.
	var got *auth.SessionUser
	handler := auth.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.CurrentUser(r)
	}))

	req2 := httptest.NewRequest("GET", "/api/me", nil)
	for _, c := range cookies {
		req2.AddCookie(c)
	}
	handler.ServeHTTP(httptest.NewRecorder(), req2)

	if got == nil {
		t.Fatal("no user loaded from session cookie")
	}
	if got.ProfileID != profileID {
		t.Errorf("ProfileID: got %v, want %v", got.ProfileID, profileID)
	}
	if got.Email != "alice@example.com" {
		t.Errorf("Email: got %q", got.Email)
	}
}

func TestSignOut_ClearsSession(t *testing.T) {
	initTestStore(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/auth/callback", nil)
	err := auth.SignIn(rec, req, auth.SessionUser{
		ProfileID: primitive.NewObjectID(),
		Email:     "alice@example.com",
	})
	if err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}

	rec2 := httptest.NewRecorder()
	req2 := httptest.NewRequest("POST", "/logout", nil)
	for _, c := range rec.Result().Cookies() {
		req2.AddCookie(c)
	}
	if err := auth.SignOut(rec2, req2); err != nil {
		t.Fatalf("SignOut failed: %v", err)
	}

	var got *auth.SessionUser
	handler := auth.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.CurrentUser(r)
	}))
	req3 := httptest.NewRequest("GET", "/api/me", nil)
	for _, c := range rec2.Result().Cookies() {
		req3.AddCookie(c)
	}
	handler.ServeHTTP(httptest.NewRecorder(), req3)

	if got != nil {
		t.Error("user still loaded after sign-out")
	}
}

func TestCurrentUser_NoUser(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)

	user, ok := auth.CurrentUser(req)
	if ok {
		t.Error("expected ok to be false when no user in context")
	}
	if user != nil {
		t.Error("expected user to be nil when no user in context")
	}
}

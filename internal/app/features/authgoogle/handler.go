// internal/app/features/authgoogle/handler.go
package authgoogle

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/securecookie"
	"github.com/presently-app/presently/internal/app/store/accounts"
	"github.com/presently-app/presently/internal/app/store/logins"
	"github.com/presently-app/presently/internal/app/system/auth"
	"github.com/presently-app/presently/internal/app/system/timeouts"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Handler handles Google OAuth authentication. A first login provisions
// an account and a generated profile; later logins resolve them.
type Handler struct {
	Accounts *accountstore.Store
	Logins   *loginstore.Store
	Log      *zap.Logger

	// OAuth configuration
	ClientID     string
	ClientSecret string
	RedirectURL  string // e.g. "https://presently.app/auth/google/callback"

	// stateCodec signs the OAuth state cookie so the callback can tell
	// our redirects from forged ones.
	stateCodec *securecookie.SecureCookie
}

// NewHandler creates a new Google OAuth handler. sessionKey signs the
// short-lived state cookie; reuse the session key so operators manage
// one secret.
func NewHandler(accounts *accountstore.Store, logins *loginstore.Store, clientID, clientSecret, baseURL, sessionKey string, logger *zap.Logger) *Handler {
	return &Handler{
		Accounts:     accounts,
		Logins:       logins,
		Log:          logger,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  baseURL + "/auth/google/callback",
		stateCodec:   securecookie.New([]byte(sessionKey), nil),
	}
}

const stateCookie = "presently-oauth-state"

func (h *Handler) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.ClientID,
		ClientSecret: h.ClientSecret,
		RedirectURL:  h.RedirectURL,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
		},
		Endpoint: google.Endpoint,
	}
}

// IsConfigured returns true if Google OAuth is configured.
func (h *Handler) IsConfigured() bool {
	return h.ClientID != "" && h.ClientSecret != ""
}

// ServeLogin handles GET /auth/google.
// Initiates the OAuth flow by redirecting to Google's consent screen.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if !h.IsConfigured() {
		h.Log.Warn("Google OAuth not configured")
		http.Error(w, "sign-in not configured", http.StatusServiceUnavailable)
		return
	}

	state, err := generateState()
	if err != nil {
		h.Log.Error("failed to generate OAuth state", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	encoded, err := h.stateCodec.Encode(stateCookie, state)
	if err != nil {
		h.Log.Error("failed to sign OAuth state", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    encoded,
		Path:     "/auth/google",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	url := h.oauth2Config().AuthCodeURL(state)
	h.Log.Debug("initiating Google OAuth flow", zap.String("redirect_url", url))
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

// ServeCallback handles GET /auth/google/callback.
// Exchanges the code for tokens, fetches the verified email, provisions
// or resolves the account, and signs the user in.
func (h *Handler) ServeCallback(w http.ResponseWriter, r *http.Request) {
	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.Log.Warn("Google OAuth error",
			zap.String("error", errParam),
			zap.String("description", r.URL.Query().Get("error_description")))
		http.Error(w, "sign-in was denied", http.StatusUnauthorized)
		return
	}

	state := r.URL.Query().Get("state")
	cookie, err := r.Cookie(stateCookie)
	if state == "" || err != nil {
		h.Log.Warn("missing OAuth state")
		http.Error(w, "invalid sign-in state", http.StatusBadRequest)
		return
	}
	var want string
	if err := h.stateCodec.Decode(stateCookie, cookie.Value, &want); err != nil || want != state {
		h.Log.Warn("OAuth state mismatch")
		http.Error(w, "invalid sign-in state", http.StatusBadRequest)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		h.Log.Warn("missing OAuth code parameter")
		http.Error(w, "invalid sign-in code", http.StatusBadRequest)
		return
	}

	token, err := h.oauth2Config().Exchange(r.Context(), code)
	if err != nil {
		h.Log.Error("failed to exchange OAuth code", zap.Error(err))
		http.Error(w, "sign-in failed", http.StatusUnauthorized)
		return
	}

	email, err := fetchGoogleEmail(r.Context(), token)
	if err != nil {
		h.Log.Error("failed to fetch Google user info", zap.Error(err))
		http.Error(w, "sign-in failed", http.StatusUnauthorized)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	acct, profile, err := h.Accounts.EnsureWithProfile(ctx, email)
	if err != nil {
		h.Log.Error("failed to provision account", zap.Error(err), zap.String("email", email))
		http.Error(w, "sign-in failed", http.StatusInternalServerError)
		return
	}

	if _, err := h.Logins.Issue(ctx, acct.Email); err != nil {
		h.Log.Error("failed to issue login credential", zap.Error(err))
		http.Error(w, "sign-in failed", http.StatusInternalServerError)
		return
	}

	err = auth.SignIn(w, r, auth.SessionUser{
		ProfileID: profile.ID,
		Email:     acct.Email,
		UserName:  profile.UserName,
	})
	if err != nil {
		h.Log.Error("failed to save session", zap.Error(err))
		http.Error(w, "sign-in failed", http.StatusInternalServerError)
		return
	}

	h.Log.Info("user signed in",
		zap.String("profile_id", profile.ID.Hex()),
		zap.String("user_name", profile.UserName))

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// googleUserInfo is the slice of Google's userinfo response we need.
type googleUserInfo struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"verified_email"`
}

// fetchGoogleEmail retrieves the verified email from Google's userinfo
// endpoint.
func fetchGoogleEmail(ctx context.Context, token *oauth2.Token) (string, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return "", fmt.Errorf("failed to fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return "", fmt.Errorf("failed to decode user info: %w", err)
	}
	if info.Email == "" || !info.EmailVerified {
		return "", fmt.Errorf("no verified email in user info")
	}
	return info.Email, nil
}

// generateState creates a cryptographically secure random state value.
func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

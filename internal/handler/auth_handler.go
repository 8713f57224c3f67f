package handler

import (
	"crypto/rand"
	"encoding/base64"
	"io"
	"net/http"
	"time"

	"coaching-site/internal/auth"
	"coaching-site/internal/session"

	"github.com/casbin/casbin/v2"
)

// AuthHandler holds the dependencies for the authentication handlers.
type AuthHandler struct {
	auth     *auth.Authenticator
	session  session.Manager
	enforcer casbin.IEnforcer
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(a *auth.Authenticator, sm session.Manager, e casbin.IEnforcer) *AuthHandler {
	return &AuthHandler{auth: a, session: sm, enforcer: e}
}

// handleLogin redirects the user to the OIDC provider to log in.
// It uses a random 'state' string for CSRF protection.
func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	state, err := randString(16)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	// Store the state in a short-lived cookie to verify on callback.
	http.SetCookie(w, &http.Cookie{
		Name:     "state",
		Value:    state,
		Path:     "/",
		MaxAge:   int(10 * time.Minute / time.Second),
		HttpOnly: true,
		Secure:   r.TLS != nil,
	})
	http.Redirect(w, r, h.auth.AuthCodeURL(state), http.StatusFound)
}

// handleCallback is the redirect URL for the OIDC provider.
// It handles the code exchange and token verification.
func (h *AuthHandler) handleCallback(w http.ResponseWriter, r *http.Request) {
	// Verify the state parameter to prevent CSRF attacks.
	stateCookie, err := r.Cookie("state")
	if err != nil {
		http.Error(w, "state cookie not found", http.StatusBadRequest)
		return
	}
	if r.URL.Query().Get("state") != stateCookie.Value {
		http.Error(w, "state did not match", http.StatusBadRequest)
		return
	}

	// Exchange the authorization code for an OAuth2 token.
	oauth2Token, err := h.auth.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		http.Error(w, "Failed to exchange token: "+err.Error(), http.StatusInternalServerError)
		return
	}

	// Extract the ID Token from the OAuth2 token.
	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		http.Error(w, "No id_token field in oauth2 token", http.StatusInternalServerError)
		return
	}

	// Verify the ID Token's signature and claims.
	// The OIDC library internally checks the nonce, issuer, audience, and expiry.
	idToken, err := h.auth.IDTokenVerifier.Verify(r.Context(), rawIDToken)
	if err != nil {
		http.Error(w, "Failed to verify ID Token: "+err.Error(), http.StatusInternalServerError)
		return
	}

	var claims struct {
		Email string `json:"email"`
	}
	if err := idToken.Claims(&claims); err != nil {
		http.Error(w, "Failed to parse ID Token claims", http.StatusInternalServerError)
		return
	}

	// The session subject is the verified email. Role bindings (e.g. email
	// -> admin) live in the casbin_rule table and are granted operationally.
	subject := claims.Email
	if subject == "" {
		subject = idToken.Subject
	}
	h.session.Put(r.Context(), "user_subject", subject)
	h.session.Put(r.Context(), "user_email", claims.Email)

	http.Redirect(w, r, "/admin", http.StatusFound)
}

// handleLogout destroys the session and returns the visitor to the home page.
func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	_ = h.session.Destroy(r.Context())
	http.Redirect(w, r, "/", http.StatusFound)
}

// randString is a helper function to generate a random string for the 'state' parameter.
func randString(nByte int) (string, error) {
	b := make([]byte, nByte)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

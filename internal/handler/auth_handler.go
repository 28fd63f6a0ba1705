package handler

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"go-blog-admin/internal/logger"
	"go-blog-admin/internal/middleware"
	"go-blog-admin/internal/session"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

const stateCookie = "oauth_state"

// LoginProvider is the part of the OIDC client the login flow needs.
type LoginProvider interface {
	AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string
	Exchange(ctx context.Context, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error)
	VerifySubject(ctx context.Context, rawToken string) (string, error)
}

// AuthHandler holds the dependencies for the authentication handlers.
type AuthHandler struct {
	provider LoginProvider
	session  session.Manager
	log      logger.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(p LoginProvider, sm session.Manager, log logger.Logger) *AuthHandler {
	return &AuthHandler{provider: p, session: sm, log: log}
}

// handleLogin redirects the user to the OIDC provider to log in.
// It uses a random 'state' string for CSRF protection.
func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	state, err := randString(16)
	if err != nil {
		middleware.WriteError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}
	// Store the state in a short-lived cookie to verify on callback.
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   int(10 * time.Minute / time.Second),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.provider.AuthCodeURL(state), http.StatusFound)
}

// handleCallback is the redirect URL for the OIDC provider. It exchanges the
// code, verifies the ID token and stores the subject in a fresh session.
func (h *AuthHandler) handleCallback(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(stateCookie)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "state cookie not found")
		return
	}
	if r.URL.Query().Get("state") != cookie.Value {
		middleware.WriteError(w, http.StatusBadRequest, "state did not match")
		return
	}
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Path: "/", MaxAge: -1})

	oauth2Token, err := h.provider.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		h.log.Error(err, "Failed to exchange authorization code")
		middleware.WriteError(w, http.StatusUnauthorized, "Failed to exchange token")
		return
	}

	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, "No id_token field in oauth2 token")
		return
	}

	subject, err := h.provider.VerifySubject(r.Context(), rawIDToken)
	if err != nil {
		h.log.Warn("Failed to verify ID token: " + err.Error())
		middleware.WriteError(w, http.StatusUnauthorized, "Failed to verify ID token")
		return
	}

	// A new token on privilege change prevents session fixation.
	if err := h.session.RenewToken(r.Context()); err != nil {
		h.log.Error(err, "Failed to renew session token")
		middleware.WriteError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}
	h.session.Put(r.Context(), middleware.SessionSubjectKey, subject)
	h.log.With(map[string]interface{}{"subject": subject}).Info("User logged in")

	http.Redirect(w, r, "/posts", http.StatusFound)
}

// handleLogout ends the session and sends the user home.
func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.session.Destroy(r.Context()); err != nil {
		h.log.Error(err, "Failed to destroy session")
		middleware.WriteError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// randString generates a random string for the 'state' parameter.
func randString(nByte int) (string, error) {
	b := make([]byte, nByte)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

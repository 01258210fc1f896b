// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/base64"
	"log/slog"
	"net/http"

	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"autovitrine/internal/middleware"
	"autovitrine/internal/session"
	"autovitrine/internal/store"
)

// totpIssuer is the issuer shown in authenticator apps.
const totpIssuer = "AutoVitrine"

// Auth groups the authentication handlers for the admin API. Login issues
// a session with TwoFADone false; the session only unlocks the admin
// endpoints after the TOTP code verifies.
type Auth struct {
	sessions *session.Store
	users    *store.UserStore
}

// NewAuth creates a new Auth handler group.
func NewAuth(sessions *session.Store, users *store.UserStore) *Auth {
	return &Auth{sessions: sessions, users: users}
}

// Login checks credentials and opens a pre-2FA session. The response
// tells the client whether to run TOTP setup or verification next.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var payload loginPayload
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if msg := payload.validate(); msg != "" {
		writeError(w, msg, http.StatusBadRequest)
		return
	}

	user, err := a.users.FindByEmail(ctx, payload.Email)
	if err != nil {
		slog.Error("login lookup failed", "error", err)
		writeError(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if user == nil || !a.users.CheckPassword(user, payload.Password) {
		writeError(w, "Invalid email or password.", http.StatusUnauthorized)
		return
	}

	if _, err := a.sessions.Create(ctx, w, &session.Data{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        string(user.Role),
		TwoFADone:   false,
	}); err != nil {
		slog.Error("session create failed", "error", err)
		writeError(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"totp_setup_required": !user.TOTPEnabled,
	})
}

// TOTPSetup generates a fresh TOTP secret for the session's user and
// returns it together with a QR code PNG, base64 encoded.
func (a *Auth) TOTPSetup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := middleware.SessionFromCtx(ctx)
	if sess == nil {
		writeError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	user, err := a.users.FindByID(ctx, sess.UserID)
	if err != nil || user == nil {
		slog.Error("user lookup for totp setup failed", "error", err)
		writeError(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if user.TOTPEnabled {
		writeError(w, "Two-factor authentication is already set up.", http.StatusConflict)
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: sess.Email,
	})
	if err != nil {
		slog.Error("totp generate failed", "error", err)
		writeError(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if err := a.users.SetTOTPSecret(ctx, sess.UserID, key.Secret()); err != nil {
		slog.Error("save totp secret failed", "error", err)
		writeError(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	qrPNG, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		slog.Error("qr code generation failed", "error", err)
		writeError(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"secret": key.Secret(),
		"qr_png": base64.StdEncoding.EncodeToString(qrPNG),
	})
}

// TOTPVerify validates a code against the user's secret and completes
// authentication. First-time success enables TOTP on the account.
func (a *Auth) TOTPVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := middleware.SessionFromCtx(ctx)
	if sess == nil {
		writeError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var payload totpPayload
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if msg := payload.validate(); msg != "" {
		writeError(w, msg, http.StatusBadRequest)
		return
	}

	user, err := a.users.FindByID(ctx, sess.UserID)
	if err != nil || user == nil {
		slog.Error("user lookup for totp verify failed", "error", err)
		writeError(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if user.TOTPSecret == nil {
		writeError(w, "Two-factor authentication is not set up.", http.StatusConflict)
		return
	}

	if !totp.Validate(payload.Code, *user.TOTPSecret) {
		writeError(w, "Invalid code. Please try again.", http.StatusUnauthorized)
		return
	}

	if !user.TOTPEnabled {
		if err := a.users.EnableTOTP(ctx, user.ID); err != nil {
			slog.Error("enable totp failed", "error", err)
			writeError(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
	}

	sess.TwoFADone = true
	if err := a.sessions.Update(ctx, r, sess); err != nil {
		slog.Error("session update failed", "error", err)
		writeError(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"email":        user.Email,
		"display_name": user.DisplayName,
		"role":         user.Role,
	})
}

// CSRFToken hands the client its double-submit token before login; the
// middleware sets the matching cookie on this response.
func (a *Auth) CSRFToken(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"csrf_token": middleware.CSRFTokenFromCtx(r.Context()),
	})
}

// Me returns the authenticated user's session identity plus the CSRF
// token the client must echo on mutations.
func (a *Auth) Me(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeError(w, "authentication required", http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"email":        sess.Email,
		"display_name": sess.DisplayName,
		"role":         sess.Role,
		"csrf_token":   middleware.CSRFTokenFromCtx(r.Context()),
	})
}

// Logout destroys the session.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Warn("session destroy failed", "error", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

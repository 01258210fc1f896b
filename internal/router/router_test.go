// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router tests verify the HTTP routing configuration, middleware
// chains, and the health endpoint.
package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"autovitrine/internal/catalog"
	"autovitrine/internal/events"
	"autovitrine/internal/handlers"
	"autovitrine/internal/session"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	src, err := catalog.NewLocalSource()
	if err != nil {
		t.Fatalf("NewLocalSource: %v", err)
	}
	public := handlers.NewPublic(catalog.NewService(src), nil, events.NewHub())
	return New(Options{Public: public})
}

// newAdminTestRouter wires the admin group over an in-process session
// store. The store backends stay nil; requests must be stopped by the
// middleware chain or fail in the handler before any store access.
func newAdminTestRouter(t *testing.T) (http.Handler, *session.Store) {
	t.Helper()

	src, err := catalog.NewLocalSource()
	if err != nil {
		t.Fatalf("NewLocalSource: %v", err)
	}

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	sessions := session.NewStore(client, false)

	router := New(Options{
		Sessions: sessions,
		Public:   handlers.NewPublic(catalog.NewService(src), nil, events.NewHub()),
		Admin:    handlers.NewAdmin(nil, nil, nil, nil, nil, nil),
		Auth:     handlers.NewAuth(sessions, nil),
	})
	return router, sessions
}

// authedCookies logs a fake user in at the session layer and fetches a
// CSRF token, returning the cookies plus the token for mutation requests.
func authedCookies(t *testing.T, router http.Handler, sessions *session.Store, role string) ([]*http.Cookie, string) {
	t.Helper()

	w := httptest.NewRecorder()
	_, err := sessions.Create(context.Background(), w, &session.Data{
		UserID:    uuid.New(),
		Email:     role + "@autovitrine.example",
		Role:      role,
		TwoFADone: true,
	})
	if err != nil {
		t.Fatalf("session create: %v", err)
	}
	cookies := w.Result().Cookies()

	req := httptest.NewRequest("GET", "/admin/api/auth/csrf", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("GET /admin/api/auth/csrf: got %d", rr.Code)
	}

	var body struct {
		Token string `json:"csrf_token"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode csrf response: %v", err)
	}
	cookies = append(cookies, rr.Result().Cookies()...)
	return cookies, body.Token
}

func TestHealthHandler(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/healthz", nil)

	healthHandler(w, r)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}

	ct := resp.Header.Get("Content-Type")
	if ct != "application/json" {
		t.Errorf("content-type: got %q, want %q", ct, "application/json")
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field: got %q, want %q", body["status"], "ok")
	}
}

func TestPublicRoutesMounted(t *testing.T) {
	router := newTestRouter(t)

	paths := []string{
		"/healthz",
		"/api/v1/categories",
		"/api/v1/products",
		"/api/v1/products/phare-led-x1",
		"/api/v1/products/phare-led-x1/related",
		"/api/v1/tags",
	}
	for _, path := range paths {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
		if w.Code != http.StatusOK {
			t.Errorf("GET %s: got %d, want 200", path, w.Code)
		}
	}
}

func TestAdminRoutesAbsentWithoutBackend(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/admin/api/products/", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("admin route without backend: got %d, want 404", w.Code)
	}
}

func TestCORSHeadersPresent(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest("GET", "/api/v1/products", nil)
	req.Header.Set("Origin", "https://storefront.example")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}

func TestSecurityHeadersPresent(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/healthz", nil))
	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
}

func TestAdminOnlyRoutesEnforceRole(t *testing.T) {
	router, sessions := newAdminTestRouter(t)

	send := func(cookies []*http.Cookie, token, method, path string) int {
		req := httptest.NewRequest(method, path, nil)
		for _, c := range cookies {
			req.AddCookie(c)
		}
		req.Header.Set("X-CSRF-Token", token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		return rr.Code
	}

	editorCookies, editorToken := authedCookies(t, router, sessions, "editor")
	adminCookies, adminToken := authedCookies(t, router, sessions, "admin")

	// Editors cannot delete products or touch the category structure.
	if got := send(editorCookies, editorToken, "DELETE", "/admin/api/products/not-a-uuid"); got != http.StatusForbidden {
		t.Errorf("editor product delete: got %d, want 403", got)
	}
	if got := send(editorCookies, editorToken, "POST", "/admin/api/categories/"); got != http.StatusForbidden {
		t.Errorf("editor category create: got %d, want 403", got)
	}
	if got := send(editorCookies, editorToken, "DELETE", "/admin/api/categories/not-a-uuid"); got != http.StatusForbidden {
		t.Errorf("editor category delete: got %d, want 403", got)
	}

	// Admins pass the role gate and reach the handler, which rejects the
	// bogus payloads itself.
	if got := send(adminCookies, adminToken, "DELETE", "/admin/api/products/not-a-uuid"); got != http.StatusBadRequest {
		t.Errorf("admin product delete: got %d, want 400 from the handler", got)
	}
	if got := send(adminCookies, adminToken, "POST", "/admin/api/categories/"); got != http.StatusBadRequest {
		t.Errorf("admin category create: got %d, want 400 from the handler", got)
	}

	// Product content editing stays open to editors.
	if got := send(editorCookies, editorToken, "POST", "/admin/api/products/"); got != http.StatusBadRequest {
		t.Errorf("editor product create: got %d, want 400 from the handler", got)
	}
}

func TestAdminMutationsRejectedWithoutSession(t *testing.T) {
	router, _ := newAdminTestRouter(t)

	// Fetch a CSRF token without logging in; the auth gate must still hold.
	csrfReq := httptest.NewRequest("GET", "/admin/api/auth/csrf", nil)
	csrfRR := httptest.NewRecorder()
	router.ServeHTTP(csrfRR, csrfReq)

	var body struct {
		Token string `json:"csrf_token"`
	}
	if err := json.NewDecoder(csrfRR.Body).Decode(&body); err != nil {
		t.Fatalf("decode csrf response: %v", err)
	}

	req := httptest.NewRequest("DELETE", "/admin/api/products/not-a-uuid", nil)
	for _, c := range csrfRR.Result().Cookies() {
		req.AddCookie(c)
	}
	req.Header.Set("X-CSRF-Token", body.Token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated delete: got %d, want 401", rr.Code)
	}
}

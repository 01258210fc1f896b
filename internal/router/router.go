// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up the HTTP routes and middleware chains for the
// AutoVitrine catalog API. Routes are organized into a public storefront
// group and a session-authed admin group.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"autovitrine/internal/handlers"
	"autovitrine/internal/middleware"
	"autovitrine/internal/session"
)

// loginRateLimit allows a handful of credential attempts per client IP
// before backing off.
const (
	loginRateLimit  = 10
	loginRateWindow = time.Minute
)

// Options carries the handler groups and cross-cutting settings the
// router wires together.
type Options struct {
	Sessions      *session.Store
	Public        *handlers.Public
	Admin         *handlers.Admin
	Auth          *handlers.Auth
	SecureCookies bool
}

// New creates and returns the configured chi router.
func New(opts Options) chi.Router {
	r := chi.NewRouter()

	// Global middleware.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-CSRF-Token"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health check.
	r.Get("/healthz", healthHandler)

	// Public storefront API.
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/categories", opts.Public.Categories)
		r.Get("/products", opts.Public.Products)
		r.Get("/products/{slug}", opts.Public.Product)
		r.Get("/products/{slug}/related", opts.Public.Related)
		r.Get("/tags", opts.Public.Tags)
		r.Get("/events/products", opts.Public.Events)
	})

	// Admin API. Mounted only when the relational backend is up; the
	// mock-data mode has nothing to mutate. Everything in here carries a
	// session lookup and CSRF double-submit; mutations additionally
	// require a fully authed session.
	if opts.Admin == nil || opts.Auth == nil || opts.Sessions == nil {
		return r
	}
	r.Route("/admin/api", func(r chi.Router) {
		r.Use(middleware.LoadSession(opts.Sessions))
		r.Use(middleware.NewCSRF(opts.SecureCookies))

		r.Get("/auth/csrf", opts.Auth.CSRFToken)

		// Credential endpoints sit in front of RequireAuth; the TOTP
		// handlers check the pre-2FA session themselves.
		r.Group(func(r chi.Router) {
			limiter := middleware.NewRateLimiter(loginRateLimit, loginRateWindow)
			r.Use(limiter.Middleware)
			r.Post("/auth/login", opts.Auth.Login)
			r.Post("/auth/totp/setup", opts.Auth.TOTPSetup)
			r.Post("/auth/totp/verify", opts.Auth.TOTPVerify)
		})
		r.Post("/auth/logout", opts.Auth.Logout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			r.Get("/auth/me", opts.Auth.Me)

			r.Route("/products", func(r chi.Router) {
				r.Get("/", opts.Admin.ListProducts)
				r.Post("/", opts.Admin.CreateProduct)
				r.Get("/{id}", opts.Admin.GetProduct)
				r.Put("/{id}", opts.Admin.UpdateProduct)
				r.With(middleware.RequireAdmin).Delete("/{id}", opts.Admin.DeleteProduct)

				r.Post("/{id}/images", opts.Admin.UploadImage)
				r.Delete("/{id}/images/{imageID}", opts.Admin.DeleteImage)
				r.Put("/{id}/images/{imageID}/cover", opts.Admin.SetCover)
			})

			// Category structure and product removal are admin-only;
			// editors manage product content and images.
			r.Route("/categories", func(r chi.Router) {
				r.Get("/", opts.Admin.ListCategories)
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAdmin)
					r.Post("/", opts.Admin.CreateCategory)
					r.Put("/{id}", opts.Admin.UpdateCategory)
					r.Delete("/{id}", opts.Admin.DeleteCategory)
				})
			})
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

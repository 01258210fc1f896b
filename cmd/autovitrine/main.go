// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the AutoVitrine catalog server.
// It loads configuration, picks the catalog backend, wires the cache
// invalidation feed, and starts the HTTP server with graceful shutdown.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"autovitrine/internal/cache"
	"autovitrine/internal/catalog"
	"autovitrine/internal/config"
	"autovitrine/internal/database"
	"autovitrine/internal/events"
	"autovitrine/internal/handlers"
	"autovitrine/internal/router"
	"autovitrine/internal/session"
	"autovitrine/internal/storage"
	"autovitrine/internal/store"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"mock", cfg.UseMock,
		"event_feed", cfg.EventFeed,
	)

	// Connect to Valkey (query cache + session store).
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	queryCache := cache.NewQueryCache(valkeyClient, cache.DefaultQueryTTL)
	hub := events.NewHub()

	// Pick the catalog backend: embedded dataset or PostgreSQL.
	var (
		source        catalog.Source
		adminHandlers *handlers.Admin
		authHandlers  *handlers.Auth
		sessionStore  *session.Store
	)
	secureCookies := !cfg.IsDev()

	if cfg.UseMock {
		local, err := catalog.NewLocalSource()
		if err != nil {
			slog.Error("failed to load embedded dataset", "error", err)
			os.Exit(1)
		}
		source = local
		slog.Info("serving embedded catalog dataset — admin API disabled")
	} else {
		db, err := database.Connect(cfg.DSN())
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		if err := database.Migrate(db); err != nil {
			slog.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		if cfg.IsDev() {
			if err := database.Seed(db); err != nil {
				slog.Error("failed to seed database", "error", err)
				os.Exit(1)
			}
		}

		productStore := store.NewProductStore(db)
		categoryStore := store.NewCategoryStore(db)
		imageStore := store.NewImageStore(db)
		userStore := store.NewUserStore(db)

		source = catalog.NewStoreSource(productStore, categoryStore, true)
		sessionStore = session.NewStore(valkeyClient, secureCookies)

		// S3-compatible object storage is optional; uploads are disabled
		// without it.
		var storageClient *storage.Client
		if cfg.S3Endpoint != "" && cfg.S3AccessKey != "" {
			storageClient, err = storage.New(
				cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
				cfg.S3Bucket, cfg.S3PublicURL,
			)
			if err != nil {
				slog.Error("failed to initialize S3 storage", "error", err)
				os.Exit(1)
			}
			slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
		} else {
			slog.Warn("s3 storage not configured — image uploads disabled")
		}

		adminHandlers = handlers.NewAdmin(productStore, categoryStore, imageStore, storageClient, queryCache, hub)
		authHandlers = handlers.NewAuth(sessionStore, userStore)
	}

	service := catalog.NewService(source)
	publicHandlers := handlers.NewPublic(service, queryCache, hub)

	// The invalidation feed keeps the query cache coherent. With the
	// Postgres feed the admin handlers publish to the hub themselves, so
	// the invalidator only evicts; the SSE feed follows a remote node and
	// re-publishes its events locally.
	feedCtx, stopFeed := context.WithCancel(context.Background())
	defer stopFeed()
	switch cfg.EventFeed {
	case config.FeedPostgres:
		inv := events.NewInvalidator(events.NewPostgresFeed(cfg.DSN()), queryCache, nil)
		go inv.Run(feedCtx)
	case config.FeedSSE:
		inv := events.NewInvalidator(events.NewSSEFeed(cfg.EventsURL), queryCache, hub)
		go inv.Run(feedCtx)
	case config.FeedNone:
		slog.Info("event feed disabled — cache staleness bounded by TTL only")
	}

	r := router.New(router.Options{
		Sessions:      sessionStore,
		Public:        publicHandlers,
		Admin:         adminHandlers,
		Auth:          authHandlers,
		SecureCookies: secureCookies,
	})

	// WriteTimeout stays unset: the product event stream holds its
	// response open indefinitely.
	srv := &http.Server{
		Addr:        cfg.Addr(),
		Handler:     r,
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	stopFeed()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

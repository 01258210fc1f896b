// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package events

import (
	"context"
	"log/slog"

	"autovitrine/internal/cache"
	"autovitrine/internal/models"
)

// Invalidator consumes the event feed and applies each event: cached query
// results are evicted and the event is re-published on the hub for this
// server's own stream subscribers. Either sink may be nil.
type Invalidator struct {
	feed  Feed
	cache *cache.QueryCache
	hub   *Hub
}

// NewInvalidator wires a feed to its sinks.
func NewInvalidator(feed Feed, qc *cache.QueryCache, hub *Hub) *Invalidator {
	return &Invalidator{feed: feed, cache: qc, hub: hub}
}

// Run blocks applying events until ctx is cancelled.
func (inv *Invalidator) Run(ctx context.Context) error {
	out := make(chan models.Event, subscriberBuffer)

	go func() {
		if err := inv.feed.Listen(ctx, out); err != nil && ctx.Err() == nil {
			slog.Error("event feed stopped", "error", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-out:
			inv.apply(ctx, ev)
		}
	}
}

func (inv *Invalidator) apply(ctx context.Context, ev models.Event) {
	slog.Debug("catalog event received", "type", ev.Type, "slug", ev.Slug, "productId", ev.ProductID)
	if inv.cache != nil {
		inv.cache.Invalidate(ctx, ev)
	}
	if inv.hub != nil {
		inv.hub.Publish(ev)
	}
}

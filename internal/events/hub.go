// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package events carries catalog change notifications from their source
// (the database, or an upstream server) to the consumers that act on
// them: the cache invalidator and connected SSE clients.
package events

import (
	"log/slog"
	"sync"

	"autovitrine/internal/models"
)

// subscriberBuffer is the per-subscriber channel capacity. A subscriber
// that falls this far behind starts losing events; SSE clients recover by
// refetching, so dropping beats blocking the publisher.
const subscriberBuffer = 16

// Hub fans catalog events out to in-process subscribers.
type Hub struct {
	mu   sync.Mutex
	subs map[chan models.Event]struct{}
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[chan models.Event]struct{})}
}

// Subscribe registers a new subscriber and returns its channel. The caller
// must Unsubscribe when done.
func (h *Hub) Subscribe() chan models.Event {
	ch := make(chan models.Event, subscriberBuffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (h *Hub) Unsubscribe(ch chan models.Event) {
	h.mu.Lock()
	if _, ok := h.subs[ch]; ok {
		delete(h.subs, ch)
		close(ch)
	}
	h.mu.Unlock()
}

// Publish delivers the event to every subscriber without blocking. Full
// subscriber buffers are skipped.
func (h *Hub) Publish(ev models.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
			slog.Warn("event dropped for slow subscriber", "type", ev.Type, "slug", ev.Slug)
		}
	}
}

// Subscribers returns the current subscriber count.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

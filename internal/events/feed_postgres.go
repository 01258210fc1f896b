// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"autovitrine/internal/models"
)

// Channel is the pg_notify channel the database triggers publish on.
const Channel = "catalog_events"

// reconnectDelay is how long to wait before re-dialing after a connection
// failure.
const reconnectDelay = 3 * time.Second

// Feed is a source of catalog change events. Listen delivers events to out
// until ctx is cancelled; out is never closed by Listen.
type Feed interface {
	Listen(ctx context.Context, out chan<- models.Event) error
}

// PostgresFeed receives catalog events over a dedicated LISTEN connection.
// The database triggers fire pg_notify on every product and image change,
// so mutations made by any writer, not just this process, show up here.
type PostgresFeed struct {
	dsn string
}

// NewPostgresFeed returns a feed that will connect with the given DSN.
func NewPostgresFeed(dsn string) *PostgresFeed {
	return &PostgresFeed{dsn: dsn}
}

// Listen connects, subscribes to the notify channel and forwards decoded
// events. Connection failures are retried until ctx is cancelled.
func (f *PostgresFeed) Listen(ctx context.Context, out chan<- models.Event) error {
	for {
		if err := f.listenOnce(ctx, out); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Warn("event feed connection lost, reconnecting", "error", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(reconnectDelay):
		}
	}
}

func (f *PostgresFeed) listenOnce(ctx context.Context, out chan<- models.Event) error {
	conn, err := pgx.Connect(ctx, f.dsn)
	if err != nil {
		return fmt.Errorf("connect for listen: %w", err)
	}
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, "LISTEN "+Channel); err != nil {
		return fmt.Errorf("listen %s: %w", Channel, err)
	}
	slog.Info("event feed listening", "channel", Channel)

	for {
		notification, err := conn.WaitForNotification(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return ctx.Err()
			}
			return fmt.Errorf("wait for notification: %w", err)
		}
		ev, ok := decodeEvent([]byte(notification.Payload))
		if !ok {
			continue
		}
		select {
		case out <- ev:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// decodeEvent parses a notification payload. Malformed payloads are logged
// and skipped so one bad writer cannot stall the feed.
func decodeEvent(payload []byte) (models.Event, bool) {
	var ev models.Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		slog.Warn("malformed catalog event payload", "payload", string(payload), "error", err)
		return models.Event{}, false
	}
	if ev.Type == "" {
		slog.Warn("catalog event without type", "payload", string(payload))
		return models.Event{}, false
	}
	return ev, true
}

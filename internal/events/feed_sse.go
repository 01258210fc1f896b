// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package events

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"autovitrine/internal/models"
)

// SSEFeed receives catalog events from an upstream server's event stream.
// Used when this instance runs against a remote backend instead of its own
// database, so invalidations still arrive without a LISTEN connection.
type SSEFeed struct {
	url    string
	client *http.Client
}

// NewSSEFeed returns a feed reading from the given text/event-stream URL.
func NewSSEFeed(url string) *SSEFeed {
	// No overall client timeout: the stream stays open indefinitely.
	return &SSEFeed{url: url, client: &http.Client{}}
}

// Listen connects to the stream and forwards decoded events. Dropped
// streams are re-dialed until ctx is cancelled.
func (f *SSEFeed) Listen(ctx context.Context, out chan<- models.Event) error {
	for {
		if err := f.streamOnce(ctx, out); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Warn("event stream lost, reconnecting", "url", f.url, "error", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(reconnectDelay):
		}
	}
}

func (f *SSEFeed) streamOnce(ctx context.Context, out chan<- models.Event) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return fmt.Errorf("build stream request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("open stream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("open stream: unexpected status %d", resp.StatusCode)
	}
	slog.Info("event stream connected", "url", f.url)

	if err := readStream(ctx, resp.Body, out); err != nil {
		return err
	}
	return io.EOF
}

// readStream parses text/event-stream frames and forwards decoded events.
// Comment lines and non-data fields are ignored; a blank line terminates
// a frame.
func readStream(ctx context.Context, r io.Reader, out chan<- models.Event) error {
	scanner := bufio.NewScanner(r)
	var data strings.Builder

	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if data.Len() > 0 {
				if ev, ok := decodeEvent([]byte(data.String())); ok {
					select {
					case out <- ev:
					case <-ctx.Done():
						return ctx.Err()
					}
				}
				data.Reset()
			}
		case strings.HasPrefix(line, "data:"):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}
	return scanner.Err()
}

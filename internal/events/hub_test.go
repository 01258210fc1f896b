// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package events

import (
	"testing"

	"autovitrine/internal/models"
)

func TestHubPublishFanOut(t *testing.T) {
	hub := NewHub()
	a := hub.Subscribe()
	b := hub.Subscribe()

	ev := models.Event{Type: models.EventProductUpdated, Slug: "jante-alu"}
	hub.Publish(ev)

	for name, ch := range map[string]chan models.Event{"a": a, "b": b} {
		select {
		case got := <-ch:
			if got != ev {
				t.Errorf("subscriber %s got %+v, want %+v", name, got, ev)
			}
		default:
			t.Errorf("subscriber %s received nothing", name)
		}
	}
}

func TestHubUnsubscribeClosesChannel(t *testing.T) {
	hub := NewHub()
	ch := hub.Subscribe()

	hub.Unsubscribe(ch)
	if _, open := <-ch; open {
		t.Error("channel still open after unsubscribe")
	}
	if n := hub.Subscribers(); n != 0 {
		t.Errorf("subscribers = %d, want 0", n)
	}

	// Second unsubscribe is a no-op, not a double close.
	hub.Unsubscribe(ch)

	// Publishing with no subscribers must not panic.
	hub.Publish(models.Event{Type: models.EventProductCreated})
}

func TestHubPublishSkipsFullSubscriber(t *testing.T) {
	hub := NewHub()
	slow := hub.Subscribe()
	fast := hub.Subscribe()

	for i := 0; i <= subscriberBuffer; i++ {
		hub.Publish(models.Event{Type: models.EventProductUpdated})
	}

	// The slow subscriber lost the overflow event; the fast one would too,
	// but both channels have the same capacity so both hold a full buffer.
	if got := len(slow); got != subscriberBuffer {
		t.Errorf("slow subscriber buffered %d events, want %d", got, subscriberBuffer)
	}
	if got := len(fast); got != subscriberBuffer {
		t.Errorf("fast subscriber buffered %d events, want %d", got, subscriberBuffer)
	}
}

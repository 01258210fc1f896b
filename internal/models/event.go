// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// Event type values carried on the catalog change stream.
const (
	EventProductCreated = "product.created"
	EventProductUpdated = "product.updated"
	EventProductDeleted = "product.deleted"
	EventImageUpdated   = "image.updated"
)

// Event is a catalog change notification. It tells consumers that
// something changed; it never carries the new data itself. Timestamp is
// Unix epoch milliseconds.
type Event struct {
	Type      string `json:"type"`
	ProductID string `json:"productId"`
	Slug      string `json:"slug"`
	Timestamp int64  `json:"timestamp"`
}

// IsProductEvent reports whether the event type concerns the product
// entity itself rather than its images.
func (e *Event) IsProductEvent() bool {
	switch e.Type {
	case EventProductCreated, EventProductUpdated, EventProductDeleted:
		return true
	}
	return false
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// Category is the canonical category shape used throughout the read path,
// independent of which backend produced it. Categories form an optional
// tree via ParentID; this layer trusts the backend to keep it acyclic.
type Category struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Slug     string  `json:"slug"`
	ParentID *string `json:"parentId,omitempty"`
}

// RawCategory is a category record as it arrives from a backend: nullable
// scalars, snake_case field names. Normalization turns it into a Category.
type RawCategory struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Slug     string  `json:"slug"`
	ParentID *string `json:"parent_id"`
}

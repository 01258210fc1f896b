// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// RawImage is an image row in the backend projection.
type RawImage struct {
	ID      string  `json:"id"`
	URL     string  `json:"url"`
	Alt     *string `json:"alt"`
	IsCover *bool   `json:"is_cover"`
}

// RawCategoryRef is a product-category association row.
type RawCategoryRef struct {
	CategoryID string `json:"category_id"`
}

// RawTagRef is a product-tag association row.
type RawTagRef struct {
	Tag string `json:"tag"`
}

// RawProduct is a product record as it arrives from a backend: nullable
// scalars, snake_case field names, and associations as separate link rows
// rather than flattened arrays. Both the embedded local dataset and the
// relational projection produce this shape; catalog.Normalize turns it
// into the canonical Product.
type RawProduct struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	Slug             string           `json:"slug"`
	ShortDescription *string          `json:"short_description"`
	Description      *string          `json:"description"`
	IsVisible        bool             `json:"is_visible"`
	IsFeatured       *bool            `json:"is_featured"`
	SortOrder        *int             `json:"sort_order"`
	Specs            map[string]any   `json:"specs"`
	Images           []RawImage       `json:"product_images"`
	Categories       []RawCategoryRef `json:"product_categories"`
	Tags             []RawTagRef      `json:"product_tags"`
}

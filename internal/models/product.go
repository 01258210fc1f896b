// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the data structures shared across the catalog:
// the canonical Product/Category shapes served to clients, the raw backend
// shapes they are normalized from, and the change-event payload.
package models

// ProductImage is a single image attached to a product. ID is empty for
// images that have not been persisted yet. URL may be a relative storage
// path (/uploads/... or /files/...) that consumers resolve against the
// configured public base URL.
type ProductImage struct {
	ID      string `json:"id,omitempty"`
	URL     string `json:"url"`
	Alt     string `json:"alt,omitempty"`
	IsCover bool   `json:"isCover"`
}

// Product is the canonical product shape used throughout the read path.
// CategoryIDs, Tags, Images, and Specs are never nil after normalization.
type Product struct {
	ID               string         `json:"id"`
	Name             string         `json:"name"`
	Slug             string         `json:"slug"`
	ShortDescription string         `json:"shortDescription,omitempty"`
	Description      string         `json:"description,omitempty"`
	CategoryIDs      []string       `json:"categoryIds"`
	Tags             []string       `json:"tags"`
	IsVisible        bool           `json:"isVisible"`
	IsFeatured       bool           `json:"isFeatured"`
	SortOrder        int            `json:"sortOrder"`
	Images           []ProductImage `json:"images"`
	Specs            map[string]any `json:"specs"`
}

// Cover returns the designated cover image, falling back to the first
// image when no cover flag is set (the accepted zero-cover window after a
// partially failed cover mutation). Returns nil for products without images.
func (p *Product) Cover() *ProductImage {
	for i := range p.Images {
		if p.Images[i].IsCover {
			return &p.Images[i]
		}
	}
	if len(p.Images) > 0 {
		return &p.Images[0]
	}
	return nil
}

// HasTag reports whether the product carries the given tag (exact match).
func (p *Product) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Meta carries best-effort pagination metadata in a query response.
// Only Total is populated when pagination was not requested.
type Meta struct {
	Page       int `json:"page,omitempty"`
	PerPage    int `json:"perPage,omitempty"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages,omitempty"`
}

// ProductList is the uniform response envelope of the product read path,
// identical regardless of which backend served the query.
type ProductList struct {
	Data []Product `json:"data"`
	Meta Meta      `json:"meta"`
}

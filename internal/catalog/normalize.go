// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package catalog implements the product read path: normalization of raw
// backend records into the canonical model, the pure filter and pagination
// engines, and the query service that orchestrates them over one of two
// interchangeable data sources.
package catalog

import "autovitrine/internal/models"

// Normalize converts a raw backend product record into the canonical
// Product. The mapping is total: absent optional fields map
// to zero values, association collections and specs are never nil on
// output, and the input is left untouched. Records missing id/name/slug
// are a caller contract violation and pass through unvalidated.
func Normalize(raw models.RawProduct) models.Product {
	p := models.Product{
		ID:          raw.ID,
		Name:        raw.Name,
		Slug:        raw.Slug,
		IsVisible:   raw.IsVisible,
		CategoryIDs: make([]string, 0, len(raw.Categories)),
		Tags:        make([]string, 0, len(raw.Tags)),
		Images:      make([]models.ProductImage, 0, len(raw.Images)),
		Specs:       make(map[string]any, len(raw.Specs)),
	}

	if raw.ShortDescription != nil {
		p.ShortDescription = *raw.ShortDescription
	}
	if raw.Description != nil {
		p.Description = *raw.Description
	}
	if raw.IsFeatured != nil {
		p.IsFeatured = *raw.IsFeatured
	}
	if raw.SortOrder != nil {
		p.SortOrder = *raw.SortOrder
	}

	for _, ref := range raw.Categories {
		p.CategoryIDs = append(p.CategoryIDs, ref.CategoryID)
	}
	for _, ref := range raw.Tags {
		p.Tags = append(p.Tags, ref.Tag)
	}
	for _, img := range raw.Images {
		out := models.ProductImage{
			ID:  img.ID,
			URL: img.URL,
			// Images without alt text inherit the product name.
			Alt: raw.Name,
		}
		if img.Alt != nil && *img.Alt != "" {
			out.Alt = *img.Alt
		}
		if img.IsCover != nil {
			out.IsCover = *img.IsCover
		}
		p.Images = append(p.Images, out)
	}
	for k, v := range raw.Specs {
		p.Specs[k] = v
	}

	return p
}

// NormalizeCategory converts a raw backend category record into the
// canonical Category. Same contract as Normalize: total, pure, nil-safe.
func NormalizeCategory(raw models.RawCategory) models.Category {
	c := models.Category{
		ID:   raw.ID,
		Name: raw.Name,
		Slug: raw.Slug,
	}
	if raw.ParentID != nil && *raw.ParentID != "" {
		parent := *raw.ParentID
		c.ParentID = &parent
	}
	return c
}

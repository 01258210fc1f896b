// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import "autovitrine/internal/models"

// Paginate slices items into the requested 1-indexed page and returns the
// page contents plus metadata. Slice bounds are clamped: an out-of-range
// page yields empty data, never an error. perPage must be positive; the
// caller (Service.Products) rejects anything else before reaching here.
func Paginate(items []models.Product, page, perPage int) ([]models.Product, models.Meta) {
	total := len(items)
	meta := models.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: (total + perPage - 1) / perPage,
	}

	start := (page - 1) * perPage
	if start >= total || start < 0 {
		return []models.Product{}, meta
	}
	end := start + perPage
	if end > total {
		end = total
	}
	return items[start:end], meta
}

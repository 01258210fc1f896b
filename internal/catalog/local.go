// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"

	"autovitrine/internal/models"
)

//go:embed data
var localData embed.FS

// LocalSource serves the embedded mock dataset. It never filters: per the
// local strategy, filtering, sorting, and pagination are always performed
// client-side by the service. The parsed slices are shared across calls
// and must be treated as read-only; Normalize copies everything a caller
// could mutate.
type LocalSource struct {
	categories []models.RawCategory
	products   []models.RawProduct
}

// NewLocalSource parses the embedded dataset once and returns a source
// over it. Fails only if the embedded files are malformed, which is a
// build defect rather than a runtime condition.
func NewLocalSource() (*LocalSource, error) {
	s := &LocalSource{}

	raw, err := localData.ReadFile("data/categories.json")
	if err != nil {
		return nil, fmt.Errorf("local dataset categories: %w", err)
	}
	if err := json.Unmarshal(raw, &s.categories); err != nil {
		return nil, fmt.Errorf("parse local categories: %w", err)
	}

	raw, err = localData.ReadFile("data/products.json")
	if err != nil {
		return nil, fmt.Errorf("local dataset products: %w", err)
	}
	if err := json.Unmarshal(raw, &s.products); err != nil {
		return nil, fmt.Errorf("parse local products: %w", err)
	}

	return s, nil
}

// Categories returns the full embedded category list.
func (s *LocalSource) Categories(ctx context.Context) ([]models.RawCategory, error) {
	return s.categories, nil
}

// Products returns the full embedded product list; the query is ignored
// because the local strategy always filters client-side.
func (s *LocalSource) Products(ctx context.Context, q Query) ([]models.RawProduct, error) {
	return s.products, nil
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"context"

	"autovitrine/internal/models"
	"autovitrine/internal/store"
)

// StoreSource serves the relational projection out of PostgreSQL through
// the store layer. In pushdown mode the cheap exact-match criteria
// (visible, featured) are applied server-side in SQL; search, tag, and
// category filtering remain client-side either way, mirroring the two
// integration modes of the swappable backend. With pushdown disabled the
// source returns the full unfiltered projection.
type StoreSource struct {
	products   *store.ProductStore
	categories *store.CategoryStore
	pushdown   bool
}

// NewStoreSource returns a source over the given stores.
func NewStoreSource(products *store.ProductStore, categories *store.CategoryStore, pushdown bool) *StoreSource {
	return &StoreSource{products: products, categories: categories, pushdown: pushdown}
}

// Categories returns all category rows ordered by name.
func (s *StoreSource) Categories(ctx context.Context) ([]models.RawCategory, error) {
	return s.categories.ListRaw(ctx)
}

// Products returns the product projection, pre-filtered by visible and
// featured when pushdown is enabled.
func (s *StoreSource) Products(ctx context.Context, q Query) ([]models.RawProduct, error) {
	if s.pushdown {
		return s.products.ListRaw(ctx, q.Visible, q.Featured)
	}
	return s.products.ListRaw(ctx, nil, nil)
}

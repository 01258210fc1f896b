// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"context"

	"autovitrine/internal/models"
)

// Sort modes applied after filtering and before pagination.
const (
	SortDefault = ""       // ascending SortOrder, stable
	SortName    = "name"   // alphabetical by product name
	SortNewest  = "newest" // descending SortOrder
)

// Query carries the logical read parameters, independent of transport.
// Page/PerPage of zero means "no pagination requested". Category is a
// category slug; the service resolves it to an ID before filtering.
type Query struct {
	Search   string
	Category string
	Tags     []string
	Visible  *bool
	Featured *bool
	Sort     string
	Page     int
	PerPage  int
}

// Paginated reports whether the query requests a specific page.
func (q *Query) Paginated() bool {
	return q.Page != 0 || q.PerPage != 0
}

// Source is a backend that produces raw catalog records. Two
// implementations exist: LocalSource over an embedded dataset and
// StoreSource over PostgreSQL. The choice is made once at startup, never
// per call. A source may pre-apply part of the query server-side (see
// StoreSource's pushdown mode) or return the full unfiltered projection;
// the service re-applies the complete conjunctive filter either way, which
// is safe because filtering is idempotent.
type Source interface {
	Categories(ctx context.Context) ([]models.RawCategory, error)
	Products(ctx context.Context, q Query) ([]models.RawProduct, error)
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"autovitrine/internal/models"
)

// Service is the query layer: it fetches raw records from the configured
// source, normalizes them, and applies filter, sort, and pagination to
// produce the uniform response envelope. It is stateless; the source is
// chosen once at startup.
type Service struct {
	source Source
}

// NewService returns a query service over the given source.
func NewService(source Source) *Service {
	return &Service{source: source}
}

// Categories returns all categories in canonical form, ordered by name.
func (s *Service) Categories(ctx context.Context) ([]models.Category, error) {
	raws, err := s.source.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch categories: %w", err)
	}

	out := make([]models.Category, 0, len(raws))
	for _, raw := range raws {
		out = append(out, NormalizeCategory(raw))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

// CategoryBySlug returns the category with the given slug, or (nil, nil)
// when no such category exists. A miss is a normal result, never an error,
// so callers can render a not-found state without special handling.
func (s *Service) CategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	categories, err := s.Categories(ctx)
	if err != nil {
		return nil, err
	}
	for i := range categories {
		if categories[i].Slug == slug {
			return &categories[i], nil
		}
	}
	return nil, nil
}

// Products runs the full read path: fetch, normalize, filter, sort,
// paginate. Pagination is applied only when the query requests it; a
// requested page with a non-positive perPage is a caller error.
func (s *Service) Products(ctx context.Context, q Query) (*models.ProductList, error) {
	if q.Paginated() && (q.Page < 1 || q.PerPage < 1) {
		return nil, fmt.Errorf("invalid pagination: page %d, per page %d", q.Page, q.PerPage)
	}

	raws, err := s.source.Products(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("fetch products: %w", err)
	}

	items := make([]models.Product, 0, len(raws))
	for _, raw := range raws {
		items = append(items, Normalize(raw))
	}

	criteria := Criteria{
		Search:   q.Search,
		Tags:     q.Tags,
		Visible:  q.Visible,
		Featured: q.Featured,
	}
	if q.Category != "" {
		cat, err := s.CategoryBySlug(ctx, q.Category)
		if err != nil {
			return nil, err
		}
		if cat == nil {
			// Unknown category slug matches nothing.
			return &models.ProductList{Data: []models.Product{}}, nil
		}
		criteria.Category = cat.ID
	}

	items = Filter(items, criteria)
	sortProducts(items, q.Sort)

	if q.Paginated() {
		data, meta := Paginate(items, q.Page, q.PerPage)
		return &models.ProductList{Data: data, Meta: meta}, nil
	}
	return &models.ProductList{Data: items, Meta: models.Meta{Total: len(items)}}, nil
}

// ProductBySlug returns the product with the given slug, or (nil, nil)
// when no product matches.
func (s *Service) ProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	list, err := s.Products(ctx, Query{})
	if err != nil {
		return nil, err
	}
	for i := range list.Data {
		if list.Data[i].Slug == slug {
			return &list.Data[i], nil
		}
	}
	return nil, nil
}

// Related returns up to limit visible products sharing a tag or a category
// with ref, excluding ref itself. Ordering follows the default sort.
func (s *Service) Related(ctx context.Context, ref *models.Product, limit int) ([]models.Product, error) {
	visible := true
	list, err := s.Products(ctx, Query{Visible: &visible})
	if err != nil {
		return nil, err
	}

	out := make([]models.Product, 0, limit)
	for _, p := range list.Data {
		if p.ID == ref.ID {
			continue
		}
		if sharesTag(&p, ref) || sharesCategory(&p, ref) {
			out = append(out, p)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

// AllTags returns the union of tag sets across all visible products,
// deduplicated and sorted lexicographically. Recomputed on every call;
// callers that want caching layer it on top.
func (s *Service) AllTags(ctx context.Context) ([]string, error) {
	visible := true
	list, err := s.Products(ctx, Query{Visible: &visible})
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	for _, p := range list.Data {
		for _, tag := range p.Tags {
			seen[tag] = struct{}{}
		}
	}

	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags, nil
}

// sortProducts orders items in place according to the requested mode.
// All modes are stable: ties keep encounter order.
func sortProducts(items []models.Product, mode string) {
	switch mode {
	case SortName:
		sort.SliceStable(items, func(i, j int) bool {
			return strings.ToLower(items[i].Name) < strings.ToLower(items[j].Name)
		})
	case SortNewest:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].SortOrder > items[j].SortOrder
		})
	default:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].SortOrder < items[j].SortOrder
		})
	}
}

func sharesTag(a, b *models.Product) bool {
	for _, tag := range a.Tags {
		if b.HasTag(tag) {
			return true
		}
	}
	return false
}

func sharesCategory(a, b *models.Product) bool {
	for _, id := range a.CategoryIDs {
		if containsString(b.CategoryIDs, id) {
			return true
		}
	}
	return false
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"strings"

	"autovitrine/internal/models"
)

// Criteria holds the independently optional product filter predicates.
// Criteria combine with AND; multi-valued criteria (Tags, the Search
// fields) match with OR internally. An unset criterion matches everything.
type Criteria struct {
	Search   string
	Category string // category ID (not slug; the service resolves slugs)
	Tags     []string
	Visible  *bool
	Featured *bool
}

// Filter returns the products matching every set criterion. The input
// slice is not mutated; the result is a fresh slice sharing the input's
// elements. Criteria application is commutative, so the order below only
// matters for performance (cheap bool checks run before substring scans).
func Filter(products []models.Product, c Criteria) []models.Product {
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if matches(&p, &c) {
			out = append(out, p)
		}
	}
	return out
}

func matches(p *models.Product, c *Criteria) bool {
	if c.Visible != nil && p.IsVisible != *c.Visible {
		return false
	}
	if c.Featured != nil && p.IsFeatured != *c.Featured {
		return false
	}
	if c.Category != "" && !containsString(p.CategoryIDs, c.Category) {
		return false
	}
	if len(c.Tags) > 0 && !anyTagMatches(p, c.Tags) {
		return false
	}
	if c.Search != "" && !matchesSearch(p, c.Search) {
		return false
	}
	return true
}

// anyTagMatches implements the OR semantics of the tag criterion: the
// product passes if its tag set intersects the requested list at all.
func anyTagMatches(p *models.Product, tags []string) bool {
	for _, tag := range tags {
		if p.HasTag(tag) {
			return true
		}
	}
	return false
}

// matchesSearch performs a case-insensitive substring match against the
// product name, short description, and each tag (OR across the three).
func matchesSearch(p *models.Product, search string) bool {
	needle := strings.ToLower(search)
	if strings.Contains(strings.ToLower(p.Name), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(p.ShortDescription), needle) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

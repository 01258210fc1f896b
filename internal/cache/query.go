// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// query.go provides a Valkey-backed cache for catalog query results.
// Public read endpoints store their JSON responses here so repeat queries
// skip the database entirely; catalog change events evict the affected keys.
package cache

import (
	"context"
	"log/slog"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"autovitrine/internal/models"
)

const (
	productListPrefix = "catalog:products:"
	productKeyPrefix  = "catalog:product:"
	categoriesKey     = "catalog:categories"
	tagsKey           = "catalog:tags"

	// DefaultQueryTTL bounds staleness when an eviction is missed, for
	// example while the event feed is reconnecting.
	DefaultQueryTTL = 5 * time.Minute
)

// QueryCache stores serialized catalog query results in Valkey.
type QueryCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewQueryCache creates a new query cache backed by the given Valkey client.
func NewQueryCache(client *redis.Client, ttl time.Duration) *QueryCache {
	if ttl == 0 {
		ttl = DefaultQueryTTL
	}
	return &QueryCache{client: client, ttl: ttl}
}

// Get retrieves a cached response body. Returns false on miss.
func (qc *QueryCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := qc.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("query cache get error", "key", key, "error", err)
		return nil, false
	}
	slog.Debug("query cache hit", "key", key)
	return val, true
}

// Set stores a response body under the key with the configured TTL.
func (qc *QueryCache) Set(ctx context.Context, key string, body []byte) {
	if err := qc.client.Set(ctx, key, body, qc.ttl).Err(); err != nil {
		slog.Warn("query cache set error", "key", key, "error", err)
	}
}

// Invalidate evicts every key a catalog change event can affect. Product
// list results depend on any product change, so all list keys are dropped
// on every event, and the affected product's detail entry goes with them
// whenever the event names a slug. Image events carry the owning product's
// slug, so an upload or cover change refreshes that product's detail too,
// and the category listing follows every product event. Eviction failures
// are logged and swallowed; the TTL bounds how stale a missed eviction can
// leave the cache.
func (qc *QueryCache) Invalidate(ctx context.Context, ev models.Event) {
	qc.deleteByPattern(ctx, productListPrefix+"*")
	qc.delete(ctx, tagsKey)

	if ev.Slug != "" {
		qc.delete(ctx, ProductKey(ev.Slug))
	}
	if ev.IsProductEvent() {
		qc.delete(ctx, categoriesKey)
	}
	slog.Debug("query cache invalidated", "event", ev.Type, "slug", ev.Slug)
}

// EvictCategories drops the cached category listing. Category rows carry
// no change trigger, so mutations evict directly instead of going through
// the event feed.
func (qc *QueryCache) EvictCategories(ctx context.Context) {
	qc.delete(ctx, categoriesKey)
}

func (qc *QueryCache) delete(ctx context.Context, keys ...string) {
	if err := qc.client.Del(ctx, keys...).Err(); err != nil {
		slog.Warn("query cache delete error", "keys", keys, "error", err)
	}
}

// deleteByPattern removes all keys matching the pattern by scanning.
func (qc *QueryCache) deleteByPattern(ctx context.Context, pattern string) {
	var cursor uint64
	for {
		keys, nextCursor, err := qc.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			slog.Warn("query cache scan error", "pattern", pattern, "error", err)
			return
		}
		if len(keys) > 0 {
			qc.delete(ctx, keys...)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
}

// ProductListKey builds the cache key for a product listing request. The
// query parameters are re-encoded in sorted order so equivalent requests
// share a key regardless of parameter order.
func ProductListKey(params url.Values) string {
	if len(params) == 0 {
		return productListPrefix + "all"
	}
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		values := append([]string(nil), params[name]...)
		sort.Strings(values)
		for _, v := range values {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(name))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(v))
		}
	}
	return productListPrefix + b.String()
}

// ProductKey returns the cache key for a single product by slug.
func ProductKey(slug string) string {
	return productKeyPrefix + slug
}

// CategoriesKey returns the cache key for the category listing.
func CategoriesKey() string {
	return categoriesKey
}

// TagsKey returns the cache key for the tag listing.
func TagsKey() string {
	return tagsKey
}

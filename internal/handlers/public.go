// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"autovitrine/internal/cache"
	"autovitrine/internal/catalog"
	"autovitrine/internal/events"
)

const (
	// defaultPerPage is applied when a page is requested without per_page.
	defaultPerPage = 12

	// maxPerPage caps the page size a client can request.
	maxPerPage = 50

	// defaultRelatedLimit bounds the related products endpoint.
	defaultRelatedLimit = 4

	// keepaliveInterval is how often the event stream sends a comment so
	// proxies do not drop the idle connection.
	keepaliveInterval = 25 * time.Second
)

// Public groups the storefront-facing catalog handlers. Read responses are
// served from the Valkey query cache when possible and stored there on
// miss. queryCache and hub may be nil; the handlers then skip caching and
// the event stream reports unavailable.
type Public struct {
	catalog    *catalog.Service
	queryCache *cache.QueryCache
	hub        *events.Hub
}

// NewPublic creates a new Public handler group.
func NewPublic(svc *catalog.Service, qc *cache.QueryCache, hub *events.Hub) *Public {
	return &Public{catalog: svc, queryCache: qc, hub: hub}
}

// Categories lists all categories in canonical form.
func (p *Public) Categories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if body, ok := p.cacheGet(r, cache.CategoriesKey()); ok {
		writeRawJSON(w, http.StatusOK, body)
		return
	}

	categories, err := p.catalog.Categories(ctx)
	if err != nil {
		slog.Error("list categories failed", "error", err)
		writeError(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	p.respondAndCache(w, r, cache.CategoriesKey(), map[string]any{"data": categories})
}

// Products runs a catalog query described by the request's parameters and
// returns the uniform list envelope.
func (p *Public) Products(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	q, err := parseProductQuery(r)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	key := cache.ProductListKey(r.URL.Query())
	if body, ok := p.cacheGet(r, key); ok {
		writeRawJSON(w, http.StatusOK, body)
		return
	}

	list, err := p.catalog.Products(ctx, q)
	if err != nil {
		slog.Error("product query failed", "error", err)
		writeError(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	p.respondAndCache(w, r, key, list)
}

// Product returns a single product by slug, 404 on miss.
func (p *Public) Product(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slugParam := chi.URLParam(r, "slug")

	key := cache.ProductKey(slugParam)
	if body, ok := p.cacheGet(r, key); ok {
		writeRawJSON(w, http.StatusOK, body)
		return
	}

	product, err := p.catalog.ProductBySlug(ctx, slugParam)
	if err != nil {
		slog.Error("product lookup failed", "error", err, "slug", slugParam)
		writeError(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if product == nil || !product.IsVisible {
		writeError(w, "product not found", http.StatusNotFound)
		return
	}

	p.respondAndCache(w, r, key, map[string]any{"data": product})
}

// Related returns visible products sharing a tag or category with the
// given product.
func (p *Public) Related(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slugParam := chi.URLParam(r, "slug")

	product, err := p.catalog.ProductBySlug(ctx, slugParam)
	if err != nil {
		slog.Error("product lookup failed", "error", err, "slug", slugParam)
		writeError(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if product == nil || !product.IsVisible {
		writeError(w, "product not found", http.StatusNotFound)
		return
	}

	limit := defaultRelatedLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxPerPage {
			writeError(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	related, err := p.catalog.Related(ctx, product, limit)
	if err != nil {
		slog.Error("related products failed", "error", err, "slug", slugParam)
		writeError(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"data": related})
}

// Tags returns the sorted union of visible products' tags.
func (p *Public) Tags(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if body, ok := p.cacheGet(r, cache.TagsKey()); ok {
		writeRawJSON(w, http.StatusOK, body)
		return
	}

	tags, err := p.catalog.AllTags(ctx)
	if err != nil {
		slog.Error("list tags failed", "error", err)
		writeError(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	p.respondAndCache(w, r, cache.TagsKey(), map[string]any{"data": tags})
}

// Events streams catalog change notifications as server-sent events until
// the client disconnects.
func (p *Public) Events(w http.ResponseWriter, r *http.Request) {
	if p.hub == nil {
		writeError(w, "event stream not available", http.StatusServiceUnavailable)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	sub := p.hub.Subscribe()
	defer p.hub.Unsubscribe(sub)

	keepalive := time.NewTicker(keepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-keepalive.C:
			fmt.Fprint(w, ": keepalive\n\n")
			flusher.Flush()
		case ev, open := <-sub:
			if !open {
				return
			}
			payload, err := json.Marshal(ev)
			if err != nil {
				slog.Error("event marshal failed", "error", err)
				continue
			}
			fmt.Fprintf(w, "event: catalog\ndata: %s\n\n", payload)
			flusher.Flush()
		}
	}
}

// cacheGet looks the key up in the query cache, if one is configured.
func (p *Public) cacheGet(r *http.Request, key string) ([]byte, bool) {
	if p.queryCache == nil {
		return nil, false
	}
	return p.queryCache.Get(r.Context(), key)
}

// respondAndCache writes the JSON response and stores the encoded body in
// the query cache for subsequent requests.
func (p *Public) respondAndCache(w http.ResponseWriter, r *http.Request, key string, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		slog.Error("response marshal failed", "error", err)
		writeError(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if p.queryCache != nil {
		p.queryCache.Set(r.Context(), key, body)
	}
	writeRawJSON(w, http.StatusOK, body)
}

// parseProductQuery maps request parameters onto a catalog query. The
// public listing always restricts to visible products; featured is opt-in.
func parseProductQuery(r *http.Request) (catalog.Query, error) {
	params := r.URL.Query()
	visible := true
	q := catalog.Query{
		Search:   strings.TrimSpace(params.Get("search")),
		Category: params.Get("category"),
		Visible:  &visible,
	}

	if raw := params.Get("tags"); raw != "" {
		for _, tag := range strings.Split(raw, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				q.Tags = append(q.Tags, tag)
			}
		}
	}

	if v := params.Get("featured"); v != "" {
		featured, err := strconv.ParseBool(v)
		if err != nil {
			return catalog.Query{}, fmt.Errorf("invalid featured value %q", v)
		}
		q.Featured = &featured
	}

	switch sortMode := params.Get("sort"); sortMode {
	case catalog.SortDefault, catalog.SortName, catalog.SortNewest:
		q.Sort = sortMode
	default:
		return catalog.Query{}, fmt.Errorf("invalid sort %q", sortMode)
	}

	if v := params.Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			return catalog.Query{}, fmt.Errorf("invalid page %q", v)
		}
		q.Page = page
		q.PerPage = defaultPerPage
	}
	if v := params.Get("per_page"); v != "" {
		perPage, err := strconv.Atoi(v)
		if err != nil || perPage < 1 {
			return catalog.Query{}, fmt.Errorf("invalid per_page %q", v)
		}
		if perPage > maxPerPage {
			perPage = maxPerPage
		}
		q.PerPage = perPage
		if q.Page == 0 {
			q.Page = 1
		}
	}

	return q, nil
}

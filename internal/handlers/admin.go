// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"autovitrine/internal/cache"
	"autovitrine/internal/catalog"
	"autovitrine/internal/events"
	"autovitrine/internal/models"
	"autovitrine/internal/slug"
	"autovitrine/internal/storage"
	"autovitrine/internal/store"
)

// Admin groups the session-authed catalog mutation handlers. Successful
// product mutations reach the cache invalidator through the database
// notify triggers; the hub is published directly so the local event
// stream sees the change without a round-trip.
type Admin struct {
	products   *store.ProductStore
	categories *store.CategoryStore
	images     *store.ImageStore
	storage    *storage.Client
	queryCache *cache.QueryCache
	hub        *events.Hub
}

// NewAdmin creates a new Admin handler group. storage, queryCache, and hub
// may be nil; image uploads require storage and fail with 503 without it.
func NewAdmin(products *store.ProductStore, categories *store.CategoryStore, images *store.ImageStore, st *storage.Client, qc *cache.QueryCache, hub *events.Hub) *Admin {
	return &Admin{products: products, categories: categories, images: images, storage: st, queryCache: qc, hub: hub}
}

// ListProducts returns every product, hidden ones included.
func (a *Admin) ListProducts(w http.ResponseWriter, r *http.Request) {
	raws, err := a.products.ListRaw(r.Context(), nil, nil)
	if err != nil {
		slog.Error("admin list products failed", "error", err)
		writeError(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	items := make([]models.Product, len(raws))
	for i, raw := range raws {
		items[i] = catalog.Normalize(raw)
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": items})
}

// GetProduct returns one product by ID.
func (a *Admin) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "invalid product id", http.StatusBadRequest)
		return
	}
	raw, err := a.products.FindRawByID(r.Context(), id)
	if err != nil {
		slog.Error("admin get product failed", "error", err, "id", id)
		writeError(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if raw == nil {
		writeError(w, "product not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": catalog.Normalize(*raw)})
}

// CreateProduct inserts a product with its category and tag links.
func (a *Admin) CreateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var payload productPayload
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if msg := payload.validate(); msg != "" {
		writeError(w, msg, http.StatusBadRequest)
		return
	}

	categoryIDs, ok := parseUUIDs(payload.CategoryIDs)
	if !ok {
		writeError(w, "invalid category id", http.StatusBadRequest)
		return
	}

	base := payload.Slug
	if base == "" {
		base = payload.Name
	}
	productSlug, err := slug.Unique(ctx, slug.Generate(base), a.products.ExistsBySlug)
	if err != nil {
		slog.Error("slug generation failed", "error", err)
		writeError(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	raw, err := a.products.Create(ctx, store.ProductFields{
		Name:             payload.Name,
		Slug:             productSlug,
		ShortDescription: payload.ShortDescription,
		Description:      payload.Description,
		IsVisible:        payload.IsVisible,
		IsFeatured:       payload.IsFeatured,
		SortOrder:        payload.SortOrder,
		Specs:            payload.Specs,
	})
	if err != nil {
		slog.Error("create product failed", "error", err)
		writeError(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	productID := uuid.MustParse(raw.ID)
	if err := a.products.ReplaceCategories(ctx, productID, categoryIDs); err != nil {
		slog.Error("create product categories failed", "error", err, "id", raw.ID)
		writeError(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if err := a.products.ReplaceTags(ctx, productID, payload.Tags); err != nil {
		slog.Error("create product tags failed", "error", err, "id", raw.ID)
		writeError(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	created, err := a.products.FindRawByID(ctx, productID)
	if err != nil || created == nil {
		slog.Error("reload created product failed", "error", err, "id", raw.ID)
		writeError(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.publish(models.EventProductCreated, created.ID, created.Slug)
	writeJSON(w, http.StatusCreated, map[string]any{"data": catalog.Normalize(*created)})
}

// UpdateProduct applies the field, category, and tag updates in sequence.
// A failure partway leaves the earlier steps applied; the client retries
// with the same payload.
func (a *Admin) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "invalid product id", http.StatusBadRequest)
		return
	}

	var payload productPayload
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if msg := payload.validate(); msg != "" {
		writeError(w, msg, http.StatusBadRequest)
		return
	}

	categoryIDs, ok := parseUUIDs(payload.CategoryIDs)
	if !ok {
		writeError(w, "invalid category id", http.StatusBadRequest)
		return
	}

	current, err := a.products.FindRawByID(ctx, id)
	if err != nil {
		slog.Error("load product failed", "error", err, "id", id)
		writeError(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if current == nil {
		writeError(w, "product not found", http.StatusNotFound)
		return
	}

	productSlug := current.Slug
	if payload.Slug != "" {
		if generated := slug.Generate(payload.Slug); generated != current.Slug {
			productSlug, err = slug.Unique(ctx, generated, a.products.ExistsBySlug)
			if err != nil {
				slog.Error("slug generation failed", "error", err)
				writeError(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
		}
	}

	updated, err := a.products.UpdateFields(ctx, id, store.ProductFields{
		Name:             payload.Name,
		Slug:             productSlug,
		ShortDescription: payload.ShortDescription,
		Description:      payload.Description,
		IsVisible:        payload.IsVisible,
		IsFeatured:       payload.IsFeatured,
		SortOrder:        payload.SortOrder,
		Specs:            payload.Specs,
	})
	if err != nil {
		slog.Error("update product failed", "error", err, "id", id)
		writeError(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if !updated {
		writeError(w, "product not found", http.StatusNotFound)
		return
	}
	if err := a.products.ReplaceCategories(ctx, id, categoryIDs); err != nil {
		slog.Error("update product categories failed", "error", err, "id", id)
		writeError(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if err := a.products.ReplaceTags(ctx, id, payload.Tags); err != nil {
		slog.Error("update product tags failed", "error", err, "id", id)
		writeError(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	fresh, err := a.products.FindRawByID(ctx, id)
	if err != nil || fresh == nil {
		slog.Error("reload updated product failed", "error", err, "id", id)
		writeError(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.publish(models.EventProductUpdated, fresh.ID, fresh.Slug)
	writeJSON(w, http.StatusOK, map[string]any{"data": catalog.Normalize(*fresh)})
}

// DeleteProduct removes a product; images and links cascade.
func (a *Admin) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "invalid product id", http.StatusBadRequest)
		return
	}
	raw, err := a.products.Delete(r.Context(), id)
	if err != nil {
		slog.Error("delete product failed", "error", err, "id", id)
		writeError(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if raw == nil {
		writeError(w, "product not found", http.StatusNotFound)
		return
	}
	a.publish(models.EventProductDeleted, raw.ID, raw.Slug)
	w.WriteHeader(http.StatusNoContent)
}

// ListCategories returns every category in canonical form.
func (a *Admin) ListCategories(w http.ResponseWriter, r *http.Request) {
	raws, err := a.categories.ListRaw(r.Context())
	if err != nil {
		slog.Error("admin list categories failed", "error", err)
		writeError(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	items := make([]models.Category, len(raws))
	for i, raw := range raws {
		items[i] = catalog.NormalizeCategory(raw)
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": items})
}

// CreateCategory inserts a category, resolving a unique slug.
func (a *Admin) CreateCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var payload categoryPayload
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if msg := payload.validate(); msg != "" {
		writeError(w, msg, http.StatusBadRequest)
		return
	}

	parentID, ok := parseOptionalUUID(payload.ParentID)
	if !ok {
		writeError(w, "invalid parent id", http.StatusBadRequest)
		return
	}

	base := payload.Slug
	if base == "" {
		base = payload.Name
	}
	categorySlug, err := slug.Unique(ctx, slug.Generate(base), a.categories.ExistsBySlug)
	if err != nil {
		slog.Error("slug generation failed", "error", err)
		writeError(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	raw, err := a.categories.Create(ctx, store.CategoryFields{
		Name:     payload.Name,
		Slug:     categorySlug,
		ParentID: parentID,
	})
	if err != nil {
		slog.Error("create category failed", "error", err)
		writeError(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.evictCategories(ctx)
	writeJSON(w, http.StatusCreated, map[string]any{"data": catalog.NormalizeCategory(*raw)})
}

// UpdateCategory modifies a category's name, slug, or parent.
func (a *Admin) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "invalid category id", http.StatusBadRequest)
		return
	}

	var payload categoryPayload
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if msg := payload.validate(); msg != "" {
		writeError(w, msg, http.StatusBadRequest)
		return
	}

	parentID, ok := parseOptionalUUID(payload.ParentID)
	if !ok {
		writeError(w, "invalid parent id", http.StatusBadRequest)
		return
	}

	current, err := a.categories.FindByID(ctx, id)
	if err != nil {
		slog.Error("load category failed", "error", err, "id", id)
		writeError(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if current == nil {
		writeError(w, "category not found", http.StatusNotFound)
		return
	}

	categorySlug := current.Slug
	if payload.Slug != "" {
		if generated := slug.Generate(payload.Slug); generated != current.Slug {
			categorySlug, err = slug.Unique(ctx, generated, a.categories.ExistsBySlug)
			if err != nil {
				slog.Error("slug generation failed", "error", err)
				writeError(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
		}
	}

	updated, err := a.categories.Update(ctx, id, store.CategoryFields{
		Name:     payload.Name,
		Slug:     categorySlug,
		ParentID: parentID,
	})
	if err != nil {
		slog.Error("update category failed", "error", err, "id", id)
		writeError(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if !updated {
		writeError(w, "category not found", http.StatusNotFound)
		return
	}

	fresh, err := a.categories.FindByID(ctx, id)
	if err != nil || fresh == nil {
		slog.Error("reload category failed", "error", err, "id", id)
		writeError(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.evictCategories(ctx)
	writeJSON(w, http.StatusOK, map[string]any{"data": catalog.NormalizeCategory(*fresh)})
}

// DeleteCategory removes a category. Product links cascade and children
// are re-parented to the root.
func (a *Admin) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "invalid category id", http.StatusBadRequest)
		return
	}

	current, err := a.categories.FindByID(ctx, id)
	if err != nil {
		slog.Error("load category failed", "error", err, "id", id)
		writeError(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if current == nil {
		writeError(w, "category not found", http.StatusNotFound)
		return
	}

	if err := a.categories.Delete(ctx, id); err != nil {
		slog.Error("delete category failed", "error", err, "id", id)
		writeError(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.evictCategories(ctx)
	w.WriteHeader(http.StatusNoContent)
}

// publish hands a catalog event to the in-process hub.
func (a *Admin) publish(eventType, productID, productSlug string) {
	if a.hub == nil {
		return
	}
	a.hub.Publish(models.Event{
		Type:      eventType,
		ProductID: productID,
		Slug:      productSlug,
		Timestamp: time.Now().UnixMilli(),
	})
}

// evictCategories drops the cached category listing after a category
// mutation; categories have no notify trigger to do it for us.
func (a *Admin) evictCategories(ctx context.Context) {
	if a.queryCache != nil {
		a.queryCache.EvictCategories(ctx)
	}
}

func parseUUIDs(raw []string) ([]uuid.UUID, bool) {
	out := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, false
		}
		out = append(out, id)
	}
	return out, true
}

func parseOptionalUUID(raw *string) (*uuid.UUID, bool) {
	if raw == nil || *raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return nil, false
	}
	return &id, true
}

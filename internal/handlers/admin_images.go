// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"autovitrine/internal/imaging"
	"autovitrine/internal/models"
	"autovitrine/internal/store"
)

// maxUploadSize is the maximum allowed image upload size (50 MB).
const maxUploadSize = 50 << 20

// UploadImage handles a multipart image upload for a product. The file
// goes to object storage under a product-scoped key; a JPEG thumbnail is
// uploaded alongside when the source is wide enough to need one.
func (a *Admin) UploadImage(w http.ResponseWriter, r *http.Request) {
	if a.storage == nil {
		writeError(w, "Object storage is not configured.", http.StatusServiceUnavailable)
		return
	}

	ctx := r.Context()
	productID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "invalid product id", http.StatusBadRequest)
		return
	}
	product, err := a.products.FindRawByID(ctx, productID)
	if err != nil {
		slog.Error("load product failed", "error", err, "id", productID)
		writeError(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if product == nil {
		writeError(w, "product not found", http.StatusNotFound)
		return
	}

	// Limit request body to maxUploadSize + some overhead for form fields.
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+1024)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, "File too large. Maximum size is 50 MB.", http.StatusRequestEntityTooLarge)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, "No file provided.", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if header.Size > maxUploadSize {
		writeError(w, "File too large. Maximum size is 50 MB.", http.StatusRequestEntityTooLarge)
		return
	}

	// Detect content type by sniffing the first 512 bytes.
	sniffBuf := make([]byte, 512)
	n, err := file.Read(sniffBuf)
	if err != nil && err != io.EOF {
		writeError(w, "Failed to read file.", http.StatusInternalServerError)
		return
	}
	contentType := http.DetectContentType(sniffBuf[:n])
	if !imaging.IsSupportedType(contentType) {
		writeError(w, fmt.Sprintf("File type %q is not allowed.", contentType), http.StatusBadRequest)
		return
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		writeError(w, "Failed to process file.", http.StatusInternalServerError)
		return
	}
	fileBytes, err := io.ReadAll(file)
	if err != nil {
		writeError(w, "Failed to read file.", http.StatusInternalServerError)
		return
	}

	ext := filepath.Ext(header.Filename)
	if ext == "" {
		ext = imaging.ExtensionForType(contentType)
	}
	key := fmt.Sprintf("products/%s/%d-%s%s", productID, time.Now().Unix(), uuid.New(), ext)

	if err := a.storage.Upload(ctx, key, contentType, bytes.NewReader(fileBytes), int64(len(fileBytes))); err != nil {
		slog.Error("s3 upload failed", "error", err, "key", key)
		writeError(w, "Failed to upload file.", http.StatusInternalServerError)
		return
	}

	// Thumbnail is best-effort; GIFs are skipped to preserve animation.
	var thumbURL string
	if contentType != "image/gif" {
		thumbData, err := imaging.Thumbnail(fileBytes, imaging.ThumbWidth)
		if err != nil {
			slog.Warn("thumbnail generation failed", "error", err, "key", key)
		} else if thumbData != nil {
			tk := thumbKeyFor(key)
			if err := a.storage.Upload(ctx, tk, "image/jpeg", bytes.NewReader(thumbData), int64(len(thumbData))); err != nil {
				slog.Warn("thumbnail upload failed", "error", err, "key", tk)
			} else {
				thumbURL = a.storage.FileURL(tk)
			}
		}
	}

	isCover := r.FormValue("cover") == "true"
	if isCover {
		if err := a.images.ClearCovers(ctx, productID); err != nil {
			slog.Error("clear covers failed", "error", err, "id", productID)
			writeError(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
	}
	sortOrder, err := a.images.CountForProduct(ctx, productID)
	if err != nil {
		slog.Error("count images failed", "error", err, "id", productID)
		writeError(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	fields := store.ImageFields{
		ProductID: productID,
		URL:       a.storage.FileURL(key),
		IsCover:   isCover,
		SortOrder: sortOrder,
	}
	if alt := strings.TrimSpace(r.FormValue("alt")); alt != "" {
		fields.Alt = &alt
	}
	created, err := a.images.Insert(ctx, fields)
	if err != nil {
		slog.Error("image db insert failed", "error", err, "key", key)
		writeError(w, "Failed to save image metadata.", http.StatusInternalServerError)
		return
	}

	a.publish(models.EventImageUpdated, product.ID, product.Slug)
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":        created.ID,
		"url":       created.URL,
		"thumb_url": thumbURL,
		"alt":       created.Alt,
		"is_cover":  isCover,
	})
}

// DeleteImage removes an image record and best-effort cleans up storage.
// A URL that does not match our storage layout skips the storage delete.
func (a *Admin) DeleteImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	productID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "invalid product id", http.StatusBadRequest)
		return
	}
	imageID, err := uuid.Parse(chi.URLParam(r, "imageID"))
	if err != nil {
		writeError(w, "invalid image id", http.StatusBadRequest)
		return
	}

	product, err := a.products.FindRawByID(ctx, productID)
	if err != nil {
		slog.Error("load product failed", "error", err, "id", productID)
		writeError(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if product == nil {
		writeError(w, "product not found", http.StatusNotFound)
		return
	}

	deleted, err := a.images.Delete(ctx, productID, imageID)
	if err != nil {
		slog.Error("image db delete failed", "error", err, "id", imageID)
		writeError(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if deleted == nil {
		writeError(w, "image not found", http.StatusNotFound)
		return
	}

	if a.storage != nil {
		if key, ok := a.storage.ExtractKey(deleted.URL); ok {
			if err := a.storage.Delete(ctx, key); err != nil {
				slog.Warn("s3 delete failed", "error", err, "key", key)
			}
			if err := a.storage.Delete(ctx, thumbKeyFor(key)); err != nil {
				slog.Warn("s3 thumbnail delete failed", "error", err, "key", thumbKeyFor(key))
			}
		} else {
			slog.Warn("image url outside storage, skipping cleanup", "url", deleted.URL)
		}
	}

	a.publish(models.EventImageUpdated, product.ID, product.Slug)
	w.WriteHeader(http.StatusNoContent)
}

// SetCover marks one image as the product's cover, clearing any other.
func (a *Admin) SetCover(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	productID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "invalid product id", http.StatusBadRequest)
		return
	}
	imageID, err := uuid.Parse(chi.URLParam(r, "imageID"))
	if err != nil {
		writeError(w, "invalid image id", http.StatusBadRequest)
		return
	}

	product, err := a.products.FindRawByID(ctx, productID)
	if err != nil {
		slog.Error("load product failed", "error", err, "id", productID)
		writeError(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if product == nil {
		writeError(w, "product not found", http.StatusNotFound)
		return
	}

	if err := a.images.ClearCovers(ctx, productID); err != nil {
		slog.Error("clear covers failed", "error", err, "id", productID)
		writeError(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	ok, err := a.images.SetCover(ctx, productID, imageID)
	if err != nil {
		slog.Error("set cover failed", "error", err, "id", imageID)
		writeError(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if !ok {
		writeError(w, "image not found", http.StatusNotFound)
		return
	}

	a.publish(models.EventImageUpdated, product.ID, product.Slug)
	w.WriteHeader(http.StatusNoContent)
}

// thumbKeyFor derives the thumbnail object key from the original's key.
func thumbKeyFor(key string) string {
	return strings.TrimSuffix(key, filepath.Ext(key)) + "_thumb.jpg"
}

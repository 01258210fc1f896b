// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"autovitrine/internal/models"
)

// ImageStore manages product image records. The binary objects live in
// object storage; only metadata and URLs are kept here.
type ImageStore struct {
	db *sql.DB
}

// NewImageStore returns a new ImageStore.
func NewImageStore(db *sql.DB) *ImageStore {
	return &ImageStore{db: db}
}

// ImageFields holds the attributes of a new image record.
type ImageFields struct {
	ProductID uuid.UUID
	URL       string
	Alt       *string
	IsCover   bool
	SortOrder int
}

// Insert adds an image record and returns it.
func (s *ImageStore) Insert(ctx context.Context, f ImageFields) (*models.RawImage, error) {
	var (
		img models.RawImage
		id  uuid.UUID
	)
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO product_images (product_id, url, alt, is_cover, sort_order)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, url, alt, is_cover
	`, f.ProductID, f.URL, f.Alt, f.IsCover, f.SortOrder).
		Scan(&id, &img.URL, &img.Alt, &img.IsCover)
	if err != nil {
		return nil, fmt.Errorf("insert image: %w", err)
	}
	img.ID = id.String()
	return &img, nil
}

// Delete removes an image record, scoped to the owning product. Returns
// the deleted row so the caller can clean up the storage object, or nil
// if no row matched.
func (s *ImageStore) Delete(ctx context.Context, productID, imageID uuid.UUID) (*models.RawImage, error) {
	var (
		img models.RawImage
		id  uuid.UUID
	)
	err := s.db.QueryRowContext(ctx, `
		DELETE FROM product_images WHERE id = $1 AND product_id = $2
		RETURNING id, url, alt, is_cover
	`, imageID, productID).
		Scan(&id, &img.URL, &img.Alt, &img.IsCover)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("delete image: %w", err)
	}
	img.ID = id.String()
	return &img, nil
}

// ClearCovers unsets the cover flag on every image of the product. This
// is the first half of the two-step clear-then-set cover mutation; a crash
// between the steps leaves the product with zero covers, which readers
// treat as "first image is the cover".
func (s *ImageStore) ClearCovers(ctx context.Context, productID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE product_images SET is_cover = FALSE WHERE product_id = $1`, productID)
	if err != nil {
		return fmt.Errorf("clear covers: %w", err)
	}
	return nil
}

// SetCover marks the given image as the cover. Returns false if the image
// does not exist for that product. Callers must ClearCovers first.
func (s *ImageStore) SetCover(ctx context.Context, productID, imageID uuid.UUID) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE product_images SET is_cover = TRUE
		WHERE id = $1 AND product_id = $2
	`, imageID, productID)
	if err != nil {
		return false, fmt.Errorf("set cover: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("set cover rows: %w", err)
	}
	return n > 0, nil
}

// CountForProduct returns how many images a product has. Used to pick the
// sort_order for a new upload.
func (s *ImageStore) CountForProduct(ctx context.Context, productID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM product_images WHERE product_id = $1`, productID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count images: %w", err)
	}
	return count, nil
}

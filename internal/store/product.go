// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"autovitrine/internal/models"
)

// ProductStore manages products and their association links.
type ProductStore struct {
	db *sql.DB
}

// NewProductStore returns a new ProductStore.
func NewProductStore(db *sql.DB) *ProductStore {
	return &ProductStore{db: db}
}

const productColumns = `id, name, slug, short_description, description,
	is_visible, is_featured, sort_order, specs`

// ProductFields holds the scalar product attributes written by step 1 of
// the three-step update; category and tag links are replaced separately.
type ProductFields struct {
	Name             string
	Slug             string
	ShortDescription *string
	Description      *string
	IsVisible        bool
	IsFeatured       bool
	SortOrder        int
	Specs            map[string]any
}

// scanRawProduct scans a product row without its associations.
func scanRawProduct(scanner interface{ Scan(...any) error }) (*models.RawProduct, error) {
	var (
		p         models.RawProduct
		id        uuid.UUID
		specsJSON []byte
	)
	err := scanner.Scan(
		&id, &p.Name, &p.Slug, &p.ShortDescription, &p.Description,
		&p.IsVisible, &p.IsFeatured, &p.SortOrder, &specsJSON,
	)
	if err != nil {
		return nil, err
	}
	p.ID = id.String()
	if len(specsJSON) > 0 {
		if err := json.Unmarshal(specsJSON, &p.Specs); err != nil {
			return nil, fmt.Errorf("decode specs: %w", err)
		}
	}
	return &p, nil
}

// ListRaw returns the relational product projection with images, category
// links, and tag links attached as raw association rows. visible and
// featured push exact-match predicates into SQL when non-nil; everything
// else is filtered client-side by the catalog service.
func (s *ProductStore) ListRaw(ctx context.Context, visible, featured *bool) ([]models.RawProduct, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	var (
		conds []string
		args  []any
	)
	if visible != nil {
		args = append(args, *visible)
		conds = append(conds, fmt.Sprintf("is_visible = $%d", len(args)))
	}
	if featured != nil {
		args = append(args, *featured)
		conds = append(conds, fmt.Sprintf("is_featured = $%d", len(args)))
	}
	for i, c := range conds {
		if i == 0 {
			query += " WHERE " + c
		} else {
			query += " AND " + c
		}
	}
	query += " ORDER BY sort_order, created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var items []models.RawProduct
	index := make(map[string]int)
	for rows.Next() {
		p, err := scanRawProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		index[p.ID] = len(items)
		items = append(items, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return items, nil
	}

	if err := s.attachAssociations(ctx, items, index); err != nil {
		return nil, err
	}
	return items, nil
}

// attachAssociations loads images, category links, and tag links for the
// given products in three grouped queries.
func (s *ProductStore) attachAssociations(ctx context.Context, items []models.RawProduct, index map[string]int) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT product_id, id, url, alt, is_cover
		FROM product_images
		ORDER BY sort_order, created_at
	`)
	if err != nil {
		return fmt.Errorf("list product images: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			productID, imageID uuid.UUID
			img                models.RawImage
		)
		if err := rows.Scan(&productID, &imageID, &img.URL, &img.Alt, &img.IsCover); err != nil {
			return fmt.Errorf("scan product image: %w", err)
		}
		img.ID = imageID.String()
		if i, ok := index[productID.String()]; ok {
			items[i].Images = append(items[i].Images, img)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	catRows, err := s.db.QueryContext(ctx, `SELECT product_id, category_id FROM product_categories`)
	if err != nil {
		return fmt.Errorf("list product categories: %w", err)
	}
	defer catRows.Close()
	for catRows.Next() {
		var productID, categoryID uuid.UUID
		if err := catRows.Scan(&productID, &categoryID); err != nil {
			return fmt.Errorf("scan product category: %w", err)
		}
		if i, ok := index[productID.String()]; ok {
			items[i].Categories = append(items[i].Categories, models.RawCategoryRef{CategoryID: categoryID.String()})
		}
	}
	if err := catRows.Err(); err != nil {
		return err
	}

	tagRows, err := s.db.QueryContext(ctx, `SELECT product_id, tag FROM product_tags ORDER BY tag`)
	if err != nil {
		return fmt.Errorf("list product tags: %w", err)
	}
	defer tagRows.Close()
	for tagRows.Next() {
		var (
			productID uuid.UUID
			tag       string
		)
		if err := tagRows.Scan(&productID, &tag); err != nil {
			return fmt.Errorf("scan product tag: %w", err)
		}
		if i, ok := index[productID.String()]; ok {
			items[i].Tags = append(items[i].Tags, models.RawTagRef{Tag: tag})
		}
	}
	return tagRows.Err()
}

// FindRawByID retrieves a single product with its associations.
// Returns nil if not found.
func (s *ProductStore) FindRawByID(ctx context.Context, id uuid.UUID) (*models.RawProduct, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	p, err := scanRawProduct(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find product by id: %w", err)
	}
	items := []models.RawProduct{*p}
	if err := s.attachAssociations(ctx, items, map[string]int{p.ID: 0}); err != nil {
		return nil, err
	}
	return &items[0], nil
}

// ExistsBySlug reports whether a product with the given slug exists.
func (s *ProductStore) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM products WHERE slug = $1)`, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("product slug exists: %w", err)
	}
	return exists, nil
}

// Create inserts the scalar product row and returns it. Category and tag
// links are attached afterwards via ReplaceCategories/ReplaceTags.
func (s *ProductStore) Create(ctx context.Context, f ProductFields) (*models.RawProduct, error) {
	specsJSON, err := encodeSpecs(f.Specs)
	if err != nil {
		return nil, err
	}
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO products (name, slug, short_description, description,
			is_visible, is_featured, sort_order, specs)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+productColumns,
		f.Name, f.Slug, f.ShortDescription, f.Description,
		f.IsVisible, f.IsFeatured, f.SortOrder, specsJSON,
	)
	p, err := scanRawProduct(row)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return p, nil
}

// UpdateFields writes the scalar product attributes — step 1 of the
// three-step update sequence. Returns false if no row matched.
func (s *ProductStore) UpdateFields(ctx context.Context, id uuid.UUID, f ProductFields) (bool, error) {
	specsJSON, err := encodeSpecs(f.Specs)
	if err != nil {
		return false, err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE products SET
			name = $1, slug = $2, short_description = $3, description = $4,
			is_visible = $5, is_featured = $6, sort_order = $7, specs = $8,
			updated_at = NOW()
		WHERE id = $9
	`, f.Name, f.Slug, f.ShortDescription, f.Description,
		f.IsVisible, f.IsFeatured, f.SortOrder, specsJSON, id)
	if err != nil {
		return false, fmt.Errorf("update product: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update product rows: %w", err)
	}
	return n > 0, nil
}

// ReplaceCategories synchronizes the product-category links to the given
// desired-state list using delete-then-insert. The two statements are
// independent: a failure after the delete leaves the product with no
// category links until the sequence is retried.
func (s *ProductStore) ReplaceCategories(ctx context.Context, productID uuid.UUID, categoryIDs []uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM product_categories WHERE product_id = $1`, productID); err != nil {
		return fmt.Errorf("clear product categories: %w", err)
	}
	if len(categoryIDs) == 0 {
		return nil
	}

	stmt, err := s.db.PrepareContext(ctx,
		`INSERT INTO product_categories (product_id, category_id) VALUES ($1, $2)`)
	if err != nil {
		return fmt.Errorf("prepare category link insert: %w", err)
	}
	defer stmt.Close()

	for _, categoryID := range categoryIDs {
		if _, err := stmt.ExecContext(ctx, productID, categoryID); err != nil {
			return fmt.Errorf("insert category link %s: %w", categoryID, err)
		}
	}
	return nil
}

// ReplaceTags synchronizes the product-tag links, same delete-then-insert
// shape as ReplaceCategories.
func (s *ProductStore) ReplaceTags(ctx context.Context, productID uuid.UUID, tags []string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM product_tags WHERE product_id = $1`, productID); err != nil {
		return fmt.Errorf("clear product tags: %w", err)
	}
	if len(tags) == 0 {
		return nil
	}

	stmt, err := s.db.PrepareContext(ctx,
		`INSERT INTO product_tags (product_id, tag) VALUES ($1, $2)`)
	if err != nil {
		return fmt.Errorf("prepare tag link insert: %w", err)
	}
	defer stmt.Close()

	for _, tag := range tags {
		if _, err := stmt.ExecContext(ctx, productID, tag); err != nil {
			return fmt.Errorf("insert tag link %q: %w", tag, err)
		}
	}
	return nil
}

// Delete removes a product. Images and links go with it via ON DELETE
// CASCADE. Returns the deleted row (id and slug populated) so the caller
// can publish the change event, or nil if no row matched.
func (s *ProductStore) Delete(ctx context.Context, id uuid.UUID) (*models.RawProduct, error) {
	row := s.db.QueryRowContext(ctx,
		`DELETE FROM products WHERE id = $1 RETURNING `+productColumns, id)
	p, err := scanRawProduct(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("delete product: %w", err)
	}
	return p, nil
}

// encodeSpecs marshals the specs map for the jsonb column, defaulting to
// an empty object so the column is never NULL.
func encodeSpecs(specs map[string]any) ([]byte, error) {
	if specs == nil {
		return []byte(`{}`), nil
	}
	data, err := json.Marshal(specs)
	if err != nil {
		return nil, fmt.Errorf("encode specs: %w", err)
	}
	return data, nil
}

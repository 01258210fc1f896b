// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store implements the PostgreSQL-backed data access layer. Read
// methods project rows into the raw backend shapes consumed by the catalog
// normalization layer; write methods implement the admin mutation path,
// including the deliberately non-atomic replace-all link updates.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"autovitrine/internal/models"
)

// CategoryStore manages categories in the database.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

const categoryColumns = `id, name, slug, parent_id`

// CategoryFields holds the writable category attributes.
type CategoryFields struct {
	Name     string
	Slug     string
	ParentID *uuid.UUID
}

// scanRawCategory scans a row into the raw backend shape.
func scanRawCategory(scanner interface{ Scan(...any) error }) (*models.RawCategory, error) {
	var (
		c        models.RawCategory
		id       uuid.UUID
		parentID *uuid.UUID
	)
	if err := scanner.Scan(&id, &c.Name, &c.Slug, &parentID); err != nil {
		return nil, err
	}
	c.ID = id.String()
	if parentID != nil {
		s := parentID.String()
		c.ParentID = &s
	}
	return &c, nil
}

// ListRaw returns all categories ordered by name.
func (s *CategoryStore) ListRaw(ctx context.Context) ([]models.RawCategory, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var items []models.RawCategory
	for rows.Next() {
		c, err := scanRawCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// FindByID retrieves a category by ID. Returns nil if not found.
func (s *CategoryStore) FindByID(ctx context.Context, id uuid.UUID) (*models.RawCategory, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
	c, err := scanRawCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return c, nil
}

// ExistsBySlug reports whether a category with the given slug exists.
func (s *CategoryStore) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM categories WHERE slug = $1)`, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("category slug exists: %w", err)
	}
	return exists, nil
}

// Create inserts a new category and returns it.
func (s *CategoryStore) Create(ctx context.Context, f CategoryFields) (*models.RawCategory, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO categories (name, slug, parent_id)
		VALUES ($1, $2, $3)
		RETURNING `+categoryColumns,
		f.Name, f.Slug, f.ParentID,
	)
	c, err := scanRawCategory(row)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

// Update modifies an existing category. Returns false if no row matched.
func (s *CategoryStore) Update(ctx context.Context, id uuid.UUID, f CategoryFields) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE categories SET name = $1, slug = $2, parent_id = $3, updated_at = NOW()
		WHERE id = $4
	`, f.Name, f.Slug, f.ParentID, id)
	if err != nil {
		return false, fmt.Errorf("update category: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update category rows: %w", err)
	}
	return n > 0, nil
}

// Delete removes a category by ID. Product links are removed by the
// ON DELETE CASCADE on product_categories; child categories are
// re-parented to NULL.
func (s *CategoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

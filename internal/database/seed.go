package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"autovitrine/internal/catalog"
)

// Seed populates an empty development database: a default admin user
// (2FA enrollment pending) and the embedded mock catalog, so the remote
// strategy serves the same data the local strategy does out of the box.
func Seed(db *sql.DB) error {
	if err := seedAdmin(db); err != nil {
		return err
	}
	return seedCatalog(db)
}

func seedAdmin(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO users (email, password_hash, display_name, role, totp_enabled)
		VALUES ($1, $2, $3, $4, $5)
	`, "admin@autovitrine.local", string(hash), "Admin", "admin", false)
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	slog.Info("database seeded with default admin user",
		"email", "admin@autovitrine.local",
		"password", "admin",
	)
	return nil
}

// seedCatalog copies the embedded mock dataset into PostgreSQL. Dataset
// record IDs are human-readable strings, so fresh UUIDs are generated and
// the category references remapped.
func seedCatalog(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM products").Scan(&count); err != nil {
		return fmt.Errorf("seed check products: %w", err)
	}
	if count > 0 {
		slog.Info("catalog already seeded, skipping")
		return nil
	}

	src, err := catalog.NewLocalSource()
	if err != nil {
		return fmt.Errorf("seed dataset: %w", err)
	}

	ctx := context.Background()
	rawCategories, err := src.Categories(ctx)
	if err != nil {
		return err
	}
	rawProducts, err := src.Products(ctx, catalog.Query{})
	if err != nil {
		return err
	}

	// Insert categories first, remembering dataset-ID → database-ID.
	// Parents are linked in a second pass since a child can precede its
	// parent in the file.
	categoryIDs := make(map[string]string, len(rawCategories))
	for _, c := range rawCategories {
		var id string
		err := db.QueryRow(`
			INSERT INTO categories (name, slug) VALUES ($1, $2) RETURNING id
		`, c.Name, c.Slug).Scan(&id)
		if err != nil {
			return fmt.Errorf("seed category %s: %w", c.Slug, err)
		}
		categoryIDs[c.ID] = id
	}
	for _, c := range rawCategories {
		if c.ParentID == nil {
			continue
		}
		parent, ok := categoryIDs[*c.ParentID]
		if !ok {
			continue
		}
		if _, err := db.Exec(`
			UPDATE categories SET parent_id = $1 WHERE id = $2
		`, parent, categoryIDs[c.ID]); err != nil {
			return fmt.Errorf("seed category parent %s: %w", c.Slug, err)
		}
	}

	for _, p := range rawProducts {
		specs, err := json.Marshal(p.Specs)
		if err != nil {
			return fmt.Errorf("seed specs %s: %w", p.Slug, err)
		}
		if p.Specs == nil {
			specs = []byte(`{}`)
		}

		featured := p.IsFeatured != nil && *p.IsFeatured
		sortOrder := 0
		if p.SortOrder != nil {
			sortOrder = *p.SortOrder
		}

		var id string
		err = db.QueryRow(`
			INSERT INTO products (name, slug, short_description, description,
				is_visible, is_featured, sort_order, specs)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id
		`, p.Name, p.Slug, p.ShortDescription, p.Description,
			p.IsVisible, featured, sortOrder, specs).Scan(&id)
		if err != nil {
			return fmt.Errorf("seed product %s: %w", p.Slug, err)
		}

		for i, img := range p.Images {
			isCover := img.IsCover != nil && *img.IsCover
			if _, err := db.Exec(`
				INSERT INTO product_images (product_id, url, alt, is_cover, sort_order)
				VALUES ($1, $2, $3, $4, $5)
			`, id, img.URL, img.Alt, isCover, i); err != nil {
				return fmt.Errorf("seed image for %s: %w", p.Slug, err)
			}
		}
		for _, ref := range p.Categories {
			categoryID, ok := categoryIDs[ref.CategoryID]
			if !ok {
				continue
			}
			if _, err := db.Exec(`
				INSERT INTO product_categories (product_id, category_id) VALUES ($1, $2)
			`, id, categoryID); err != nil {
				return fmt.Errorf("seed category link for %s: %w", p.Slug, err)
			}
		}
		for _, ref := range p.Tags {
			if _, err := db.Exec(`
				INSERT INTO product_tags (product_id, tag) VALUES ($1, $2)
			`, id, ref.Tag); err != nil {
				return fmt.Errorf("seed tag for %s: %w", p.Slug, err)
			}
		}
	}

	slog.Info("catalog seeded from embedded dataset",
		"categories", len(rawCategories),
		"products", len(rawProducts),
	)
	return nil
}

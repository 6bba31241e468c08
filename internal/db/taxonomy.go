package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// FindOrCreateTaxonomyValue resolves a (category, title) pair to a value ID,
// creating the value if it does not exist. The upsert is a single atomic
// statement so concurrent pipeline runs racing to create the same value both
// receive the winning row's ID; there is no read-then-write window.
// Titles are unique per category case-insensitively; the first writer's casing
// is kept.
func (db *DB) FindOrCreateTaxonomyValue(ctx context.Context, categoryID int64, title string) (int64, error) {
	var id int64
	err := db.pool.QueryRow(ctx,
		`INSERT INTO taxonomy_values (category_id, title)
		 VALUES ($1, $2)
		 ON CONFLICT (category_id, lower(title)) DO UPDATE SET title = taxonomy_values.title
		 RETURNING id`,
		categoryID, title,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to find or create taxonomy value %q: %w", title, err)
	}
	return id, nil
}

// EnsureCategory inserts a category by name if missing and returns its ID.
// Used for startup seeding; categories are resolved by name, never by
// memorized numeric literals.
func (db *DB) EnsureCategory(ctx context.Context, name string) (int64, error) {
	var id int64
	err := db.pool.QueryRow(ctx,
		`INSERT INTO taxonomy_categories (name)
		 VALUES ($1)
		 ON CONFLICT (name) DO UPDATE SET name = taxonomy_categories.name
		 RETURNING id`,
		name,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to ensure taxonomy category %q: %w", name, err)
	}
	return id, nil
}

// ListCategories retrieves all taxonomy categories.
func (db *DB) ListCategories(ctx context.Context) ([]TaxonomyCategory, error) {
	rows, err := db.pool.Query(ctx, `SELECT id, name FROM taxonomy_categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list taxonomy categories: %w", err)
	}
	defer rows.Close()

	var categories []TaxonomyCategory
	for rows.Next() {
		var c TaxonomyCategory
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan taxonomy category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// ReplaceTaxonomyLinks replaces a talent's links for the categories present in
// the update, leaving links in other categories untouched. Runs within tx so
// the replacement set commits atomically.
func ReplaceTaxonomyLinks(ctx context.Context, tx pgx.Tx, talentID uuid.UUID, categoryIDs []int64, valueIDs []int64) error {
	if len(categoryIDs) > 0 {
		_, err := tx.Exec(ctx,
			`DELETE FROM talent_taxonomy_links
			 WHERE talent_id = $1
			   AND value_id IN (SELECT id FROM taxonomy_values WHERE category_id = ANY($2))`,
			talentID, categoryIDs)
		if err != nil {
			return fmt.Errorf("failed to delete taxonomy links: %w", err)
		}
	}
	for _, valueID := range valueIDs {
		_, err := tx.Exec(ctx,
			`INSERT INTO talent_taxonomy_links (talent_id, value_id)
			 VALUES ($1, $2)
			 ON CONFLICT (talent_id, value_id) DO NOTHING`,
			talentID, valueID)
		if err != nil {
			return fmt.Errorf("failed to insert taxonomy link: %w", err)
		}
	}
	return nil
}

// ListTaxonomyLinks retrieves a talent's taxonomy as (category, value) pairs.
func (db *DB) ListTaxonomyLinks(ctx context.Context, talentID uuid.UUID) ([]TaxonomyLink, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT c.name, v.title
		 FROM talent_taxonomy_links l
		 JOIN taxonomy_values v ON v.id = l.value_id
		 JOIN taxonomy_categories c ON c.id = v.category_id
		 WHERE l.talent_id = $1
		 ORDER BY c.id, v.title`, talentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list taxonomy links: %w", err)
	}
	defer rows.Close()

	var links []TaxonomyLink
	for rows.Next() {
		var l TaxonomyLink
		if err := rows.Scan(&l.Category, &l.Value); err != nil {
			return nil, fmt.Errorf("failed to scan taxonomy link: %w", err)
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Child records (experiences, projects, languages) are replace-set: the full
// new set commits inside one transaction or none of it does. The delete only
// happens once the new set has been validated by the caller.

// ReplaceExperiences deletes and reinserts a talent's experiences within tx.
func ReplaceExperiences(ctx context.Context, tx pgx.Tx, talentID uuid.UUID, experiences []Experience) error {
	if _, err := tx.Exec(ctx, `DELETE FROM experiences WHERE talent_id = $1`, talentID); err != nil {
		return fmt.Errorf("failed to delete experiences: %w", err)
	}
	for _, e := range experiences {
		_, err := tx.Exec(ctx,
			`INSERT INTO experiences (talent_id, client, role, period, description)
			 VALUES ($1, $2, $3, $4, $5)`,
			talentID, e.Client, e.Role, e.Period, e.Description)
		if err != nil {
			return fmt.Errorf("failed to insert experience: %w", err)
		}
	}
	return nil
}

// ReplaceProjects deletes and reinserts a talent's projects within tx.
func ReplaceProjects(ctx context.Context, tx pgx.Tx, talentID uuid.UUID, projects []Project) error {
	if _, err := tx.Exec(ctx, `DELETE FROM projects WHERE talent_id = $1`, talentID); err != nil {
		return fmt.Errorf("failed to delete projects: %w", err)
	}
	for _, p := range projects {
		_, err := tx.Exec(ctx,
			`INSERT INTO projects (talent_id, title, roles, views, likes, link)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			talentID, p.Title, p.Roles, p.Views, p.Likes, p.Link)
		if err != nil {
			return fmt.Errorf("failed to insert project: %w", err)
		}
	}
	return nil
}

// ReplaceLanguages deletes and reinserts a talent's languages within tx.
func ReplaceLanguages(ctx context.Context, tx pgx.Tx, talentID uuid.UUID, languages []string) error {
	if _, err := tx.Exec(ctx, `DELETE FROM languages WHERE talent_id = $1`, talentID); err != nil {
		return fmt.Errorf("failed to delete languages: %w", err)
	}
	for _, name := range languages {
		_, err := tx.Exec(ctx,
			`INSERT INTO languages (talent_id, name) VALUES ($1, $2)`, talentID, name)
		if err != nil {
			return fmt.Errorf("failed to insert language: %w", err)
		}
	}
	return nil
}

// UpdateProfileFields updates the talent's basic profile fields within tx.
// Empty strings leave the existing value untouched.
func UpdateProfileFields(ctx context.Context, tx pgx.Tx, talentID uuid.UUID, name, title, description, location, status, availability string) error {
	_, err := tx.Exec(ctx,
		`UPDATE talents SET
		    name = COALESCE(NULLIF($1, ''), name),
		    title = COALESCE(NULLIF($2, ''), title),
		    description = COALESCE(NULLIF($3, ''), description),
		    location = COALESCE(NULLIF($4, ''), location),
		    status = COALESCE(NULLIF($5, ''), status),
		    availability = COALESCE(NULLIF($6, ''), availability),
		    updated_at = NOW()
		 WHERE id = $7`,
		name, title, description, location, status, availability, talentID)
	if err != nil {
		return fmt.Errorf("failed to update profile fields: %w", err)
	}
	return nil
}

// ListExperiences retrieves a talent's experiences.
func (db *DB) ListExperiences(ctx context.Context, talentID uuid.UUID) ([]Experience, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, talent_id, client, COALESCE(role, ''), COALESCE(period, ''), COALESCE(description, '')
		 FROM experiences WHERE talent_id = $1 ORDER BY id`, talentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list experiences: %w", err)
	}
	defer rows.Close()

	var out []Experience
	for rows.Next() {
		var e Experience
		if err := rows.Scan(&e.ID, &e.TalentID, &e.Client, &e.Role, &e.Period, &e.Description); err != nil {
			return nil, fmt.Errorf("failed to scan experience: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ListProjects retrieves a talent's projects.
func (db *DB) ListProjects(ctx context.Context, talentID uuid.UUID) ([]Project, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, talent_id, title, roles, views, likes, COALESCE(link, '')
		 FROM projects WHERE talent_id = $1 ORDER BY id`, talentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var out []Project
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.TalentID, &p.Title, &p.Roles, &p.Views, &p.Likes, &p.Link); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListLanguages retrieves a talent's languages.
func (db *DB) ListLanguages(ctx context.Context, talentID uuid.UUID) ([]Language, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, talent_id, name FROM languages WHERE talent_id = $1 ORDER BY id`, talentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list languages: %w", err)
	}
	defer rows.Close()

	var out []Language
	for rows.Next() {
		var l Language
		if err := rows.Scan(&l.ID, &l.TalentID, &l.Name); err != nil {
			return nil, fmt.Errorf("failed to scan language: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

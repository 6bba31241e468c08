package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"
)

const talentColumns = `id, handle, COALESCE(name, ''), COALESCE(title, ''), COALESCE(description, ''),
	COALESCE(location, ''), COALESCE(status, ''), COALESCE(availability, ''), COALESCE(source_url, ''),
	pipeline_status, COALESCE(pipeline_error, ''), deleted_at, created_at, updated_at`

func scanTalent(row pgx.Row) (*Talent, error) {
	var t Talent
	err := row.Scan(&t.ID, &t.Handle, &t.Name, &t.Title, &t.Description,
		&t.Location, &t.Status, &t.Availability, &t.SourceURL,
		&t.PipelineStatus, &t.PipelineError, &t.DeletedAt, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetTalent retrieves a talent by ID. Returns nil if not found or soft-deleted.
func (db *DB) GetTalent(ctx context.Context, id uuid.UUID) (*Talent, error) {
	t, err := scanTalent(db.pool.QueryRow(ctx,
		`SELECT `+talentColumns+` FROM talents WHERE id = $1 AND deleted_at IS NULL`, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get talent: %w", err)
	}
	return t, nil
}

// SetSourceURL updates a talent's source URL.
func (db *DB) SetSourceURL(ctx context.Context, id uuid.UUID, url string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE talents SET source_url = $1, updated_at = NOW() WHERE id = $2 AND deleted_at IS NULL`,
		url, id)
	if err != nil {
		return fmt.Errorf("failed to set source URL: %w", err)
	}
	return nil
}

// SetPipelineStatus updates a talent's pipeline status, clearing any previous
// pipeline error when the status is not failed.
func (db *DB) SetPipelineStatus(ctx context.Context, id uuid.UUID, status PipelineStatus) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE talents SET pipeline_status = $1, pipeline_error = NULL, updated_at = NOW() WHERE id = $2`,
		status, id)
	if err != nil {
		return fmt.Errorf("failed to set pipeline status: %w", err)
	}
	return nil
}

// MarkPipelineFailed sets pipeline_status = failed with a human-readable error.
func (db *DB) MarkPipelineFailed(ctx context.Context, id uuid.UUID, errText string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE talents SET pipeline_status = 'failed', pipeline_error = $1, updated_at = NOW() WHERE id = $2`,
		errText, id)
	if err != nil {
		return fmt.Errorf("failed to mark pipeline failed: %w", err)
	}
	return nil
}

// ClaimPipeline atomically moves a talent from a terminal pipeline status into
// 'scraping'. Returns false when another run is already active for the talent,
// which is the single-flight guard for concurrent triggers.
func (db *DB) ClaimPipeline(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := db.pool.Exec(ctx,
		`UPDATE talents SET pipeline_status = 'scraping', pipeline_error = NULL, updated_at = NOW()
		 WHERE id = $1 AND deleted_at IS NULL AND pipeline_status IN ('idle', 'completed', 'failed')`,
		id)
	if err != nil {
		return false, fmt.Errorf("failed to claim pipeline: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// UpdateEmbedding replaces the stored embedding vector in place.
// Embeddings are never appended or averaged across versions.
func (db *DB) UpdateEmbedding(ctx context.Context, id uuid.UUID, vec []float32) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE talents SET embedding = $1, updated_at = NOW() WHERE id = $2`,
		pgvector.NewVector(vec), id)
	if err != nil {
		return fmt.Errorf("failed to update embedding: %w", err)
	}
	return nil
}

// ListTalents retrieves a page of talents in the store's default order
// (most recently created first). Used directly and as the search fallback.
func (db *DB) ListTalents(ctx context.Context, limit, offset int) ([]Talent, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.pool.Query(ctx,
		`SELECT `+talentColumns+` FROM talents WHERE deleted_at IS NULL
		 ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list talents: %w", err)
	}
	defer rows.Close()

	var talents []Talent
	for rows.Next() {
		t, err := scanTalent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan talent: %w", err)
		}
		talents = append(talents, *t)
	}
	return talents, rows.Err()
}

// NearestCandidate is a talent ID with its vector distance to a query.
type NearestCandidate struct {
	TalentID uuid.UUID
	Distance float64
}

// NearestTalents returns up to limit talents ordered by cosine distance
// between their stored embedding and the query vector. Talents without an
// embedding or soft-deleted talents are excluded.
func (db *DB) NearestTalents(ctx context.Context, query []float32, limit int) ([]NearestCandidate, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, embedding <=> $1 AS distance FROM talents
		 WHERE embedding IS NOT NULL AND deleted_at IS NULL
		 ORDER BY distance LIMIT $2`,
		pgvector.NewVector(query), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query nearest talents: %w", err)
	}
	defer rows.Close()

	var candidates []NearestCandidate
	for rows.Next() {
		var c NearestCandidate
		if err := rows.Scan(&c.TalentID, &c.Distance); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

// GetFullProfile loads a talent together with its child records and taxonomy
// links. Returns nil if the talent does not exist.
func (db *DB) GetFullProfile(ctx context.Context, id uuid.UUID) (*FullProfile, error) {
	talent, err := db.GetTalent(ctx, id)
	if err != nil {
		return nil, err
	}
	if talent == nil {
		return nil, nil
	}

	profile := &FullProfile{Talent: *talent}

	if profile.Experiences, err = db.ListExperiences(ctx, id); err != nil {
		return nil, err
	}
	if profile.Projects, err = db.ListProjects(ctx, id); err != nil {
		return nil, err
	}
	if profile.Languages, err = db.ListLanguages(ctx, id); err != nil {
		return nil, err
	}
	if profile.Taxonomy, err = db.ListTaxonomyLinks(ctx, id); err != nil {
		return nil, err
	}
	return profile, nil
}

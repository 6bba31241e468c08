package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CreateScrapeRun creates a new run record for a pipeline execution attempt.
// Re-running the pipeline always creates a new run so history stays auditable.
func (db *DB) CreateScrapeRun(ctx context.Context, talentID uuid.UUID, sourceURL string) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO scrape_runs (talent_id, source_url, status)
		 VALUES ($1, $2, 'pending')
		 RETURNING id`,
		talentID, sourceURL,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create scrape run: %w", err)
	}
	return id, nil
}

// SetRunStatus updates a scrape run's status.
func (db *DB) SetRunStatus(ctx context.Context, runID uuid.UUID, status RunStatus) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE scrape_runs SET status = $1, updated_at = NOW() WHERE id = $2`,
		status, runID)
	if err != nil {
		return fmt.Errorf("failed to set run status: %w", err)
	}
	return nil
}

// MarkRunFailed sets status = failed with the causal error text.
func (db *DB) MarkRunFailed(ctx context.Context, runID uuid.UUID, errText string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE scrape_runs SET status = 'failed', error = $1, updated_at = NOW() WHERE id = $2`,
		errText, runID)
	if err != nil {
		return fmt.Errorf("failed to mark run failed: %w", err)
	}
	return nil
}

// SetRunPayloads records the blob-store paths of the raw and processed payloads.
func (db *DB) SetRunPayloads(ctx context.Context, runID uuid.UUID, rawPath, processedPath string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE scrape_runs SET raw_payload_path = COALESCE(NULLIF($1, ''), raw_payload_path),
		        processed_payload_path = COALESCE(NULLIF($2, ''), processed_payload_path),
		        updated_at = NOW()
		 WHERE id = $3`,
		rawPath, processedPath, runID)
	if err != nil {
		return fmt.Errorf("failed to set run payloads: %w", err)
	}
	return nil
}

// MergeRunMetadata merges the given keys into the run's metadata jsonb.
// Stage boundaries use this for counts and timings.
func (db *DB) MergeRunMetadata(ctx context.Context, runID uuid.UUID, meta map[string]any) error {
	if len(meta) == 0 {
		return nil
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to marshal run metadata: %w", err)
	}
	_, err = db.pool.Exec(ctx,
		`UPDATE scrape_runs SET metadata = COALESCE(metadata, '{}'::jsonb) || $1::jsonb, updated_at = NOW()
		 WHERE id = $2`,
		data, runID)
	if err != nil {
		return fmt.Errorf("failed to merge run metadata: %w", err)
	}
	return nil
}

const runColumns = `id, talent_id, source_url, COALESCE(raw_payload_path, ''),
	COALESCE(processed_payload_path, ''), status, COALESCE(error, ''), metadata, created_at, updated_at`

func scanRun(row pgx.Row) (*ScrapeRun, error) {
	var r ScrapeRun
	var metadata []byte
	err := row.Scan(&r.ID, &r.TalentID, &r.SourceURL, &r.RawPayloadPath,
		&r.ProcessedPayloadPath, &r.Status, &r.Error, &metadata, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(metadata) > 0 {
		_ = json.Unmarshal(metadata, &r.Metadata)
	}
	return &r, nil
}

// GetScrapeRun retrieves a run by ID. Returns nil if not found.
func (db *DB) GetScrapeRun(ctx context.Context, runID uuid.UUID) (*ScrapeRun, error) {
	r, err := scanRun(db.pool.QueryRow(ctx,
		`SELECT `+runColumns+` FROM scrape_runs WHERE id = $1`, runID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get scrape run: %w", err)
	}
	return r, nil
}

// LatestScrapeRun retrieves the most recent run for a talent, or nil.
func (db *DB) LatestScrapeRun(ctx context.Context, talentID uuid.UUID) (*ScrapeRun, error) {
	r, err := scanRun(db.pool.QueryRow(ctx,
		`SELECT `+runColumns+` FROM scrape_runs WHERE talent_id = $1
		 ORDER BY created_at DESC LIMIT 1`, talentID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest scrape run: %w", err)
	}
	return r, nil
}

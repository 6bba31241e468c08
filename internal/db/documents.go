package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// CreateDocument records a discovered downloadable link for a scrape run.
func (db *DB) CreateDocument(ctx context.Context, doc *Document) (uuid.UUID, error) {
	var metadata []byte
	if doc.Metadata != nil {
		var err error
		metadata, err = json.Marshal(doc.Metadata)
		if err != nil {
			return uuid.Nil, fmt.Errorf("failed to marshal document metadata: %w", err)
		}
	}

	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO documents (scrape_run_id, talent_id, url, link_text, detected_type,
		        download_status, extraction_status, metadata)
		 VALUES ($1, $2, $3, $4, $5, 'pending', 'pending', $6)
		 RETURNING id`,
		doc.ScrapeRunID, doc.TalentID, doc.URL, doc.LinkText, doc.DetectedType, metadata,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create document: %w", err)
	}
	return id, nil
}

// SetDocumentDownloaded marks a successful download with its storage location,
// size, and the type detected from the body.
func (db *DB) SetDocumentDownloaded(ctx context.Context, id uuid.UUID, storagePath, detectedType string, sizeBytes int64) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE documents SET download_status = 'completed', storage_path = $1,
		        detected_type = $2, size_bytes = $3
		 WHERE id = $4`,
		storagePath, detectedType, sizeBytes, id)
	if err != nil {
		return fmt.Errorf("failed to mark document downloaded: %w", err)
	}
	return nil
}

// SetDocumentDownloadFailed marks a failed download with the causal error.
func (db *DB) SetDocumentDownloadFailed(ctx context.Context, id uuid.UUID, errText string) error {
	return db.setDocumentFailure(ctx, id, "download_status", errText)
}

// SetDocumentExtracted stores the extracted text for a document.
func (db *DB) SetDocumentExtracted(ctx context.Context, id uuid.UUID, text string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE documents SET extraction_status = 'completed', extracted_text = $1 WHERE id = $2`,
		text, id)
	if err != nil {
		return fmt.Errorf("failed to mark document extracted: %w", err)
	}
	return nil
}

// SetDocumentExtractionFailed marks a failed extraction with the causal error.
// A single document's extraction failure is non-fatal to the pipeline.
func (db *DB) SetDocumentExtractionFailed(ctx context.Context, id uuid.UUID, errText string) error {
	return db.setDocumentFailure(ctx, id, "extraction_status", errText)
}

func (db *DB) setDocumentFailure(ctx context.Context, id uuid.UUID, column, errText string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE documents SET `+column+` = 'failed',
		        metadata = COALESCE(metadata, '{}'::jsonb) || jsonb_build_object('error', $1::text)
		 WHERE id = $2`,
		errText, id)
	if err != nil {
		return fmt.Errorf("failed to mark document failure: %w", err)
	}
	return nil
}

const documentColumns = `id, scrape_run_id, talent_id, url, COALESCE(link_text, ''),
	detected_type, COALESCE(storage_path, ''), COALESCE(size_bytes, 0),
	download_status, extraction_status, COALESCE(extracted_text, ''), metadata, created_at`

// ListDocumentsByRun retrieves all documents discovered in a scrape run.
func (db *DB) ListDocumentsByRun(ctx context.Context, runID uuid.UUID) ([]Document, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE scrape_run_id = $1 ORDER BY created_at ASC`,
		runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		var metadata []byte
		if err := rows.Scan(&d.ID, &d.ScrapeRunID, &d.TalentID, &d.URL, &d.LinkText,
			&d.DetectedType, &d.StoragePath, &d.SizeBytes,
			&d.DownloadStatus, &d.ExtractionStatus, &d.ExtractedText, &metadata, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		if len(metadata) > 0 {
			_ = json.Unmarshal(metadata, &d.Metadata)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// ExtractedDocumentTexts returns the successfully extracted texts for a run,
// most recent first, for use in the structuring corpus and embedding summary.
func (db *DB) ExtractedDocumentTexts(ctx context.Context, runID uuid.UUID) ([]Document, error) {
	docs, err := db.ListDocumentsByRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	var out []Document
	for _, d := range docs {
		if d.ExtractionStatus == DocCompleted && d.ExtractedText != "" {
			out = append(out, d)
		}
	}
	return out, nil
}

// LatestExtractedTexts returns up to limit extracted document texts for a
// talent across all runs, most recent first. Used by the embedding summary,
// which only needs a couple of excerpts.
func (db *DB) LatestExtractedTexts(ctx context.Context, talentID uuid.UUID, limit int) ([]string, error) {
	rows, err := db.pool.Query(ctx, `
		SELECT extracted_text FROM documents
		WHERE talent_id = $1 AND extraction_status = 'completed' AND extracted_text <> ''
		ORDER BY created_at DESC
		LIMIT $2`, talentID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query extracted texts: %w", err)
	}
	defer rows.Close()

	var texts []string
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, fmt.Errorf("failed to scan extracted text: %w", err)
		}
		texts = append(texts, text)
	}
	return texts, rows.Err()
}

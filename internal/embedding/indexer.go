package embedding

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/jonathan/talent-scout/internal/db"
	"github.com/jonathan/talent-scout/internal/llm"
)

// Store is the subset of the database layer the indexer needs.
type Store interface {
	GetFullProfile(ctx context.Context, id uuid.UUID) (*db.FullProfile, error)
	LatestExtractedTexts(ctx context.Context, talentID uuid.UUID, limit int) ([]string, error)
	UpdateEmbedding(ctx context.Context, id uuid.UUID, vec []float32) error
}

// Embedder is the subset of the LLM client the indexer needs.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Indexer regenerates a talent's embedding vector from the current profile.
type Indexer struct {
	store    Store
	embedder Embedder
	verbose  bool
}

// NewIndexer creates an Indexer.
func NewIndexer(store Store, embedder Embedder, verbose bool) *Indexer {
	return &Indexer{store: store, embedder: embedder, verbose: verbose}
}

// Index rebuilds the summary, embeds it, and replaces the stored vector in
// place. The latest run always wins; there is never more than one vector per
// talent.
func (ix *Indexer) Index(ctx context.Context, talentID uuid.UUID) error {
	profile, err := ix.store.GetFullProfile(ctx, talentID)
	if err != nil {
		return fmt.Errorf("failed to load profile for embedding: %w", err)
	}

	excerpts, err := ix.store.LatestExtractedTexts(ctx, talentID, maxDocExcerpts)
	if err != nil {
		// Excerpts enrich the summary but are not required for it.
		log.Printf("[EMBED] warning: failed to load document excerpts for %s: %v", talentID, err)
		excerpts = nil
	}

	summary := BuildSummary(profile, excerpts)
	if summary == "" {
		return fmt.Errorf("empty summary for talent %s, nothing to embed", talentID)
	}

	vec, err := ix.embedder.Embed(ctx, summary)
	if err != nil {
		return fmt.Errorf("embedding call failed: %w", err)
	}
	if len(vec) != llm.EmbeddingDimensions {
		return fmt.Errorf("unexpected embedding dimension %d, want %d", len(vec), llm.EmbeddingDimensions)
	}

	if err := ix.store.UpdateEmbedding(ctx, talentID, vec); err != nil {
		return fmt.Errorf("failed to store embedding: %w", err)
	}

	if ix.verbose {
		log.Printf("[EMBED] indexed talent %s (%d summary chars)", talentID, len(summary))
	}
	return nil
}

package embedding

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/talent-scout/internal/db"
	"github.com/jonathan/talent-scout/internal/llm"
)

type fakeStore struct {
	profile    *db.FullProfile
	excerpts   []string
	vectors    [][]float32
	profileErr error
	updateErr  error
}

func (s *fakeStore) GetFullProfile(context.Context, uuid.UUID) (*db.FullProfile, error) {
	return s.profile, s.profileErr
}

func (s *fakeStore) LatestExtractedTexts(context.Context, uuid.UUID, int) ([]string, error) {
	return s.excerpts, nil
}

func (s *fakeStore) UpdateEmbedding(_ context.Context, _ uuid.UUID, vec []float32) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.vectors = append(s.vectors, vec)
	return nil
}

type fakeEmbedder struct {
	dim   int
	err   error
	calls int
}

func (e *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	vec := make([]float32, e.dim)
	for i := range vec {
		vec[i] = float32(len(text) % (i + 2))
	}
	return vec, nil
}

func TestIndex_ReplacesVectorInPlace(t *testing.T) {
	store := &fakeStore{profile: sampleProfile()}
	embedder := &fakeEmbedder{dim: llm.EmbeddingDimensions}
	ix := NewIndexer(store, embedder, false)

	id := uuid.New()
	require.NoError(t, ix.Index(context.Background(), id))
	require.NoError(t, ix.Index(context.Background(), id))

	// Each run issues one UPDATE; the store never accumulates vectors per
	// talent, the latest write simply wins.
	assert.Len(t, store.vectors, 2)
	assert.Equal(t, store.vectors[0], store.vectors[1], "unchanged profile embeds identically")
	assert.Equal(t, 2, embedder.calls)
}

func TestIndex_WrongDimensionRejected(t *testing.T) {
	store := &fakeStore{profile: sampleProfile()}
	ix := NewIndexer(store, &fakeEmbedder{dim: 5}, false)

	err := ix.Index(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dimension")
	assert.Empty(t, store.vectors, "bad vector is never stored")
}

func TestIndex_EmbedFailure(t *testing.T) {
	store := &fakeStore{profile: sampleProfile()}
	ix := NewIndexer(store, &fakeEmbedder{err: fmt.Errorf("quota exceeded")}, false)

	err := ix.Index(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestIndex_EmptyProfile(t *testing.T) {
	store := &fakeStore{profile: &db.FullProfile{}}
	ix := NewIndexer(store, &fakeEmbedder{dim: llm.EmbeddingDimensions}, false)

	err := ix.Index(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to embed")
}

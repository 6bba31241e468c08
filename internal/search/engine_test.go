package search

import (
	"context"
	"fmt"
	"testing"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/talent-scout/internal/db"
	"github.com/jonathan/talent-scout/internal/llm"
)

type fakeSearchStore struct {
	candidates []db.NearestCandidate
	profiles   map[uuid.UUID]*db.FullProfile
	listing    []db.Talent
	nearestErr error
	listErr    error
}

func (s *fakeSearchStore) NearestTalents(_ context.Context, _ []float32, limit int) ([]db.NearestCandidate, error) {
	if s.nearestErr != nil {
		return nil, s.nearestErr
	}
	if len(s.candidates) > limit {
		return s.candidates[:limit], nil
	}
	return s.candidates, nil
}

func (s *fakeSearchStore) GetFullProfile(_ context.Context, id uuid.UUID) (*db.FullProfile, error) {
	return s.profiles[id], nil
}

func (s *fakeSearchStore) ListTalents(_ context.Context, limit, _ int) ([]db.Talent, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	if len(s.listing) > limit {
		return s.listing[:limit], nil
	}
	return s.listing, nil
}

type fakeModel struct {
	rerankJSON string
	rerankErr  error
	embedErr   error
	lastPrompt string
}

func (m *fakeModel) Embed(context.Context, string) ([]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return make([]float32, llm.EmbeddingDimensions), nil
}

func (m *fakeModel) GenerateJSON(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	m.lastPrompt = prompt
	return m.rerankJSON, m.rerankErr
}

func newFixture(t *testing.T) (*fakeSearchStore, uuid.UUID, uuid.UUID) {
	t.Helper()
	near := uuid.New()
	far := uuid.New()
	store := &fakeSearchStore{
		// far is closer by vector distance but will rerank lower.
		candidates: []db.NearestCandidate{
			{TalentID: far, Distance: 0.1},
			{TalentID: near, Distance: 0.4},
		},
		profiles: map[uuid.UUID]*db.FullProfile{
			near: {Talent: db.Talent{ID: near, Name: "High Match"}},
			far:  {Talent: db.Talent{ID: far, Name: "Low Match"}},
		},
		listing: []db.Talent{{Name: "Default One"}, {Name: "Default Two"}},
	}
	return store, near, far
}

func TestSearch_RerankReorders(t *testing.T) {
	store, near, far := newFixture(t)
	model := &fakeModel{
		rerankJSON: fmt.Sprintf(`[{"id": %q, "score": 95}, {"id": %q, "score": 40}]`, near, far),
	}
	engine := NewEngine(store, model, false)

	results, err := engine.Search(context.Background(), "color grading editor", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// The 95-scored candidate outranks the 40-scored one despite worse
	// vector distance.
	assert.Equal(t, "High Match", results[0].Talent.Name)
	assert.Equal(t, 95, *results[0].Score)
	assert.Equal(t, "Low Match", results[1].Talent.Name)
	assert.Equal(t, 40, *results[1].Score)
}

func TestSearch_ScoreClampingAndDefaults(t *testing.T) {
	store, near, far := newFixture(t)
	// Out-of-range score for one candidate, the other omitted entirely.
	model := &fakeModel{rerankJSON: fmt.Sprintf(`[{"id": %q, "score": 150}]`, near)}
	_ = far
	engine := NewEngine(store, model, false)

	results, err := engine.Search(context.Background(), "editor", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 100, *results[0].Score, "150 clamps to 100")
	assert.Equal(t, 0, *results[1].Score, "missing candidate defaults to 0")
}

func TestSearch_RerankPromptCarriesFullProfile(t *testing.T) {
	store, near, far := newFixture(t)
	store.profiles[near] = &db.FullProfile{
		Talent: db.Talent{ID: near, Name: "High Match", Title: "Colorist"},
		Experiences: []db.Experience{
			{Client: "Netflix", Role: "Senior Editor"},
		},
		Projects: []db.Project{{Title: "Brand Film 2024"}},
		Taxonomy: []db.TaxonomyLink{
			{Category: "Skills", Value: "Color Grading"},
			{Category: "Software", Value: "DaVinci Resolve"},
		},
		Languages: []db.Language{{Name: "Spanish"}},
	}
	model := &fakeModel{
		rerankJSON: fmt.Sprintf(`[{"id": %q, "score": 95}, {"id": %q, "score": 40}]`, near, far),
	}
	engine := NewEngine(store, model, false)

	_, err := engine.Search(context.Background(), "colorist with resolve", 10)
	require.NoError(t, err)

	// The scoring prompt must expose the structured profile, not just the
	// talent row, so skill and software matches can move the score.
	assert.Contains(t, model.lastPrompt, "Netflix (Senior Editor)")
	assert.Contains(t, model.lastPrompt, "Brand Film 2024")
	assert.Contains(t, model.lastPrompt, "Color Grading")
	assert.Contains(t, model.lastPrompt, "DaVinci Resolve")
	assert.Contains(t, model.lastPrompt, "Spanish")
}

func TestTruncate_RuneBoundary(t *testing.T) {
	// "é" is two bytes; cutting at byte 3 must not split it.
	s := "abécd"
	cut := truncate(s, 3)
	assert.Equal(t, "ab", cut)
	assert.True(t, utf8.ValidString(cut))
	assert.Equal(t, s, truncate(s, len(s)))
}

func TestSearch_RerankFailureKeepsVectorOrder(t *testing.T) {
	store, _, _ := newFixture(t)
	model := &fakeModel{rerankErr: fmt.Errorf("model unavailable")}
	engine := NewEngine(store, model, false)

	results, err := engine.Search(context.Background(), "editor", 10)
	require.NoError(t, err, "rerank failure must not surface an error")
	require.Len(t, results, 2)
	assert.Equal(t, "Low Match", results[0].Talent.Name, "vector order is kept")
	assert.Nil(t, results[0].Score, "no synthetic scores on fallback")
}

func TestSearch_EmbedFailureFallsBackToListing(t *testing.T) {
	store, _, _ := newFixture(t)
	model := &fakeModel{embedErr: fmt.Errorf("quota exceeded")}
	engine := NewEngine(store, model, false)

	results, err := engine.Search(context.Background(), "editor", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Default One", results[0].Talent.Name)
}

func TestSearch_VectorFailureFallsBackToListing(t *testing.T) {
	store, _, _ := newFixture(t)
	store.nearestErr = fmt.Errorf("connection refused")
	engine := NewEngine(store, &fakeModel{}, false)

	results, err := engine.Search(context.Background(), "editor", 10)
	require.NoError(t, err)
	assert.Equal(t, "Default One", results[0].Talent.Name)
}

func TestSearch_EmptyCandidatesShortCircuit(t *testing.T) {
	store := &fakeSearchStore{listing: []db.Talent{{Name: "Default One"}}}
	model := &fakeModel{rerankErr: fmt.Errorf("must not be called")}
	engine := NewEngine(store, model, false)

	results, err := engine.Search(context.Background(), "editor", 10)
	require.NoError(t, err)
	assert.Empty(t, results, "no candidates means empty results, not the fallback listing")
}

func TestSearch_EmptyQueryIsStrictListing(t *testing.T) {
	store, _, _ := newFixture(t)
	engine := NewEngine(store, &fakeModel{}, false)

	results, err := engine.Search(context.Background(), "", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Default One", results[0].Talent.Name)

	store.listErr = fmt.Errorf("db down")
	_, err = engine.Search(context.Background(), "", 1)
	require.Error(t, err, "plain listing failures stay strict")
}

func TestSearch_PageSizeLimitsResults(t *testing.T) {
	store, near, far := newFixture(t)
	model := &fakeModel{
		rerankJSON: fmt.Sprintf(`[{"id": %q, "score": 95}, {"id": %q, "score": 40}]`, near, far),
	}
	engine := NewEngine(store, model, false)

	results, err := engine.Search(context.Background(), "editor", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "High Match", results[0].Talent.Name)
}

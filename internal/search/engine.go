// Package search implements hybrid talent search: vector similarity recall
// over the stored embeddings followed by a single batched LLM rerank. Every
// failure on that path degrades to the default-order listing rather than
// surfacing an error to the caller.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/jonathan/talent-scout/internal/db"
	"github.com/jonathan/talent-scout/internal/llm"
	"github.com/jonathan/talent-scout/internal/prompts"
	"github.com/jonathan/talent-scout/internal/schemas"
)

// maxCandidates caps vector recall regardless of page size.
const maxCandidates = 100

// Store is the subset of the database layer the engine needs.
type Store interface {
	NearestTalents(ctx context.Context, query []float32, limit int) ([]db.NearestCandidate, error)
	GetFullProfile(ctx context.Context, id uuid.UUID) (*db.FullProfile, error)
	ListTalents(ctx context.Context, limit, offset int) ([]db.Talent, error)
}

// Model is the subset of the LLM client the engine needs.
type Model interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier) (string, error)
}

// Result is one search hit. Score is nil when ranking degraded to vector
// distance or the default listing; no synthetic scores are fabricated.
type Result struct {
	Talent db.Talent `json:"talent"`
	Score  *int      `json:"score,omitempty"`
}

// Engine runs hybrid queries.
type Engine struct {
	store   Store
	model   Model
	verbose bool
}

// NewEngine creates an Engine.
func NewEngine(store Store, model Model, verbose bool) *Engine {
	return &Engine{store: store, model: model, verbose: verbose}
}

// Search runs the hybrid query path. With an empty query it returns the
// default listing directly, and that path stays strict: a listing error is
// returned. With a query, any failure in embedding, vector recall, or
// reranking falls back to the default listing instead of erroring.
func (e *Engine) Search(ctx context.Context, query string, pageSize int) ([]Result, error) {
	if pageSize <= 0 {
		pageSize = 20
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return e.listing(ctx, pageSize)
	}

	results, err := e.hybrid(ctx, query, pageSize)
	if err != nil {
		log.Printf("[SEARCH] hybrid path failed, falling back to default listing: %v", err)
		return e.listing(ctx, pageSize)
	}
	return results, nil
}

func (e *Engine) listing(ctx context.Context, pageSize int) ([]Result, error) {
	talents, err := e.store.ListTalents(ctx, pageSize, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list talents: %w", err)
	}
	results := make([]Result, 0, len(talents))
	for _, t := range talents {
		results = append(results, Result{Talent: t})
	}
	return results, nil
}

func (e *Engine) hybrid(ctx context.Context, query string, pageSize int) ([]Result, error) {
	vec, err := e.model.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query embedding failed: %w", err)
	}

	limit := 3 * pageSize
	if limit > maxCandidates {
		limit = maxCandidates
	}
	candidates, err := e.store.NearestTalents(ctx, vec, limit)
	if err != nil {
		return nil, fmt.Errorf("vector recall failed: %w", err)
	}
	if len(candidates) == 0 {
		return []Result{}, nil
	}

	// The reranker scores against the full structured profile, so load
	// everything up front in vector-distance order.
	profiles := make([]db.FullProfile, 0, len(candidates))
	for _, c := range candidates {
		p, err := e.store.GetFullProfile(ctx, c.TalentID)
		if err != nil {
			return nil, fmt.Errorf("failed to load candidate %s: %w", c.TalentID, err)
		}
		if p == nil {
			continue
		}
		profiles = append(profiles, *p)
	}

	scores, err := e.rerank(ctx, query, profiles)
	if err != nil {
		// Rerank failure keeps vector-distance order (not the default
		// listing order) with scores omitted.
		log.Printf("[SEARCH] rerank failed, keeping vector order: %v", err)
		return page(toResults(profiles, nil), pageSize), nil
	}

	results := toResults(profiles, scores)
	sort.SliceStable(results, func(i, j int) bool {
		return derefScore(results[i].Score) > derefScore(results[j].Score)
	})
	return page(results, pageSize), nil
}

// rerank issues one batched scoring call covering every candidate.
func (e *Engine) rerank(ctx context.Context, query string, profiles []db.FullProfile) (map[uuid.UUID]int, error) {
	template, err := prompts.Get("search.json", "rerank-candidates")
	if err != nil {
		return nil, fmt.Errorf("failed to load rerank prompt: %w", err)
	}

	blocks := make([]string, 0, len(profiles))
	for _, p := range profiles {
		blocks = append(blocks, candidateBlock(p))
	}
	prompt := prompts.Format(template, map[string]string{
		"Query":      query,
		"Candidates": strings.Join(blocks, "\n---\n"),
	})

	raw, err := e.model.GenerateJSON(ctx, prompt, llm.TierLite)
	if err != nil {
		return nil, fmt.Errorf("rerank call failed: %w", err)
	}
	cleaned := llm.CleanJSONBlock(raw)
	if err := schemas.Validate(schemas.RelevanceScores, []byte(cleaned)); err != nil {
		return nil, fmt.Errorf("rerank response rejected: %w", err)
	}

	var entries []struct {
		ID    string  `json:"id"`
		Score float64 `json:"score"`
	}
	if err := json.Unmarshal([]byte(cleaned), &entries); err != nil {
		return nil, fmt.Errorf("failed to parse rerank response: %w", err)
	}

	scores := make(map[uuid.UUID]int, len(entries))
	for _, entry := range entries {
		id, err := uuid.Parse(entry.ID)
		if err != nil {
			log.Printf("[SEARCH] warning: rerank returned unknown id %q", entry.ID)
			continue
		}
		score := int(entry.Score)
		if score < 0 || score > 100 {
			log.Printf("[SEARCH] warning: clamping out-of-range score %d for %s", score, id)
			if score < 0 {
				score = 0
			} else {
				score = 100
			}
		}
		scores[id] = score
	}

	for _, p := range profiles {
		if _, ok := scores[p.Talent.ID]; !ok {
			log.Printf("[SEARCH] warning: rerank omitted candidate %s, scoring 0", p.Talent.ID)
			scores[p.Talent.ID] = 0
		}
	}
	return scores, nil
}

// candidateBlock renders one candidate's structured profile for the rerank
// prompt: identity fields plus experiences, projects, taxonomy, and languages,
// so skill and software matches can move the score.
func candidateBlock(p db.FullProfile) string {
	t := p.Talent
	var sb strings.Builder
	fmt.Fprintf(&sb, "id: %s\nname: %s\ntitle: %s\nlocation: %s\n", t.ID, t.Name, t.Title, t.Location)
	if t.Availability != "" {
		sb.WriteString("availability: " + t.Availability + "\n")
	}
	if t.Description != "" {
		sb.WriteString("summary: " + truncate(t.Description, 300) + "\n")
	}

	if len(p.Experiences) > 0 {
		items := make([]string, 0, len(p.Experiences))
		for _, exp := range p.Experiences {
			item := exp.Client
			if exp.Role != "" {
				item += " (" + exp.Role + ")"
			}
			items = append(items, item)
		}
		sb.WriteString("experience: " + strings.Join(items, "; ") + "\n")
	}
	if len(p.Projects) > 0 {
		titles := make([]string, 0, len(p.Projects))
		for _, proj := range p.Projects {
			titles = append(titles, proj.Title)
		}
		sb.WriteString("projects: " + strings.Join(titles, "; ") + "\n")
	}

	byCategory := map[string][]string{}
	order := []string{}
	for _, link := range p.Taxonomy {
		if _, ok := byCategory[link.Category]; !ok {
			order = append(order, link.Category)
		}
		byCategory[link.Category] = append(byCategory[link.Category], link.Value)
	}
	for _, cat := range order {
		sb.WriteString(strings.ToLower(cat) + ": " + strings.Join(byCategory[cat], ", ") + "\n")
	}

	if len(p.Languages) > 0 {
		names := make([]string, 0, len(p.Languages))
		for _, l := range p.Languages {
			names = append(names, l.Name)
		}
		sb.WriteString("languages: " + strings.Join(names, ", ") + "\n")
	}
	return strings.TrimSpace(sb.String())
}

func toResults(profiles []db.FullProfile, scores map[uuid.UUID]int) []Result {
	results := make([]Result, 0, len(profiles))
	for _, p := range profiles {
		r := Result{Talent: p.Talent}
		if scores != nil {
			if s, ok := scores[p.Talent.ID]; ok {
				score := s
				r.Score = &score
			}
		}
		results = append(results, r)
	}
	return results
}

func page(results []Result, pageSize int) []Result {
	if len(results) > pageSize {
		return results[:pageSize]
	}
	return results
}

func derefScore(s *int) int {
	if s == nil {
		return 0
	}
	return *s
}

// truncate cuts s to at most max bytes at a rune boundary, so a multi-byte
// character is never split.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

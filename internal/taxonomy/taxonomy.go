// Package taxonomy maps the open-vocabulary category arrays of a structured
// profile onto the shared taxonomy tables, creating missing values through
// the atomic find-or-create upsert so concurrent pipelines never duplicate a
// value that differs only by case.
package taxonomy

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/jonathan/talent-scout/internal/extraction"
)

// Store is the subset of the database layer the resolver needs. *db.DB
// satisfies it.
type Store interface {
	EnsureCategory(ctx context.Context, name string) (int64, error)
	FindOrCreateTaxonomyValue(ctx context.Context, categoryID int64, title string) (int64, error)
}

// Category names the fixed set of taxonomy categories. Categories are
// resolved by name at startup; their numeric IDs are never hardcoded.
type Category string

const (
	CategoryJobType           Category = "Job Type"
	CategoryContentVertical   Category = "Content Vertical"
	CategoryPlatformSpecialty Category = "Platform Specialty"
	CategorySkill             Category = "Skills"
	CategorySoftware          Category = "Software"
)

// AllCategories lists every category in seed order.
func AllCategories() []Category {
	return []Category{
		CategoryJobType,
		CategoryContentVertical,
		CategoryPlatformSpecialty,
		CategorySkill,
		CategorySoftware,
	}
}

// ResolvedLinks is the output of resolution: parallel category/value ID
// slices in the shape the link-replacement query expects.
type ResolvedLinks struct {
	CategoryIDs []int64
	ValueIDs    []int64
}

// Resolver resolves category strings to taxonomy value IDs.
type Resolver struct {
	store       Store
	categoryIDs map[Category]int64
	verbose     bool
}

// NewResolver seeds the fixed categories and caches their IDs. Seeding uses
// the same upsert as value creation, so concurrent startups converge on one
// row per category.
func NewResolver(ctx context.Context, store Store, verbose bool) (*Resolver, error) {
	ids := make(map[Category]int64, 5)
	for _, cat := range AllCategories() {
		id, err := store.EnsureCategory(ctx, string(cat))
		if err != nil {
			return nil, fmt.Errorf("failed to seed category %q: %w", cat, err)
		}
		ids[cat] = id
	}
	return &Resolver{store: store, categoryIDs: ids, verbose: verbose}, nil
}

// Resolve maps the profile's five category arrays to value IDs, creating
// missing values. Only categories with at least one entry appear in the
// result, so the link replacement leaves untouched categories alone.
func (r *Resolver) Resolve(ctx context.Context, profile *extraction.ExtractedProfile) (*ResolvedLinks, error) {
	byCategory := map[Category][]string{
		CategoryJobType:           profile.JobTypes,
		CategoryContentVertical:   profile.ContentVerticals,
		CategoryPlatformSpecialty: profile.PlatformSpecialties,
		CategorySkill:             profile.Skills,
		CategorySoftware:          profile.Software,
	}

	links := &ResolvedLinks{}
	for _, cat := range AllCategories() {
		categoryID := r.categoryIDs[cat]
		seen := map[string]bool{}
		for _, title := range byCategory[cat] {
			title = strings.TrimSpace(title)
			if title == "" {
				continue
			}
			key := strings.ToLower(title)
			if seen[key] {
				continue
			}
			seen[key] = true

			valueID, err := r.store.FindOrCreateTaxonomyValue(ctx, categoryID, title)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve %s value %q: %w", cat, title, err)
			}
			links.CategoryIDs = append(links.CategoryIDs, categoryID)
			links.ValueIDs = append(links.ValueIDs, valueID)
		}
	}

	if r.verbose {
		log.Printf("[TAXONOMY] resolved %d links", len(links.ValueIDs))
	}
	return links, nil
}

// CategoryID returns the cached ID for a category name.
func (r *Resolver) CategoryID(cat Category) (int64, bool) {
	id, ok := r.categoryIDs[cat]
	return id, ok
}

// Package profile persists a structured extraction result onto a talent's
// profile in a single transaction.
package profile

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/talent-scout/internal/db"
	"github.com/jonathan/talent-scout/internal/extraction"
	"github.com/jonathan/talent-scout/internal/taxonomy"
)

// Writer applies extraction results to the database. Re-embedding is the
// caller's concern: the pipeline runs its own embed stage after Apply, and
// direct edits go through the reindex endpoint.
type Writer struct {
	db      *db.DB
	verbose bool
}

// NewWriter creates a Writer.
func NewWriter(database *db.DB, verbose bool) *Writer {
	return &Writer{db: database, verbose: verbose}
}

// Apply writes the structured profile in one transaction: basic fields,
// child records (delete-then-insert), and taxonomy links for the categories
// present in the update. The incoming sets were validated before this point,
// so no delete happens for data that cannot be re-inserted.
func (w *Writer) Apply(ctx context.Context, talentID uuid.UUID, extracted *extraction.ExtractedProfile, links *taxonomy.ResolvedLinks) error {
	if extracted == nil {
		return fmt.Errorf("nil extraction result for talent %s", talentID)
	}

	experiences := toDBExperiences(talentID, extracted.Experiences)
	projects := toDBProjects(talentID, extracted.Projects)

	err := w.db.WithTx(ctx, func(tx pgx.Tx) error {
		if err := db.UpdateProfileFields(ctx, tx, talentID,
			deref(extracted.Name),
			deref(extracted.Title),
			deref(extracted.Description),
			deref(extracted.Location),
			deref(extracted.Status),
			deref(extracted.Availability),
		); err != nil {
			return fmt.Errorf("failed to update profile fields: %w", err)
		}
		if err := db.ReplaceExperiences(ctx, tx, talentID, experiences); err != nil {
			return fmt.Errorf("failed to replace experiences: %w", err)
		}
		if err := db.ReplaceProjects(ctx, tx, talentID, projects); err != nil {
			return fmt.Errorf("failed to replace projects: %w", err)
		}
		if err := db.ReplaceLanguages(ctx, tx, talentID, extracted.Languages); err != nil {
			return fmt.Errorf("failed to replace languages: %w", err)
		}
		if links != nil {
			if err := db.ReplaceTaxonomyLinks(ctx, tx, talentID, links.CategoryIDs, links.ValueIDs); err != nil {
				return fmt.Errorf("failed to replace taxonomy links: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if w.verbose {
		log.Printf("[PROFILE] applied update for talent %s: %d experiences, %d projects",
			talentID, len(experiences), len(projects))
	}
	return nil
}

func toDBExperiences(talentID uuid.UUID, in []extraction.ExperienceData) []db.Experience {
	out := make([]db.Experience, 0, len(in))
	for _, e := range in {
		out = append(out, db.Experience{
			TalentID:    talentID,
			Client:      e.Client,
			Role:        deref(e.Role),
			Period:      deref(e.Period),
			Description: deref(e.Description),
		})
	}
	return out
}

func toDBProjects(talentID uuid.UUID, in []extraction.ProjectData) []db.Project {
	out := make([]db.Project, 0, len(in))
	for _, p := range in {
		project := db.Project{
			TalentID: talentID,
			Title:    p.Title,
			Roles:    p.Roles,
			Link:     deref(p.Link),
		}
		if p.Metrics != nil {
			project.Views = p.Metrics.Views.Int64()
			project.Likes = p.Metrics.Likes.Int64()
		}
		out = append(out, project)
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Package embedding builds a compact textual summary of a talent profile and
// indexes it as a vector for similarity search.
package embedding

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/talent-scout/internal/db"
)

// Summary size limits. The blob must stay well under the embedding model's
// token ceiling, so every free-text section is truncated before assembly and
// the whole summary is capped at the end.
const (
	maxSummaryChars     = 6000
	maxDescriptionChars = 600
	maxDocExcerptChars  = 500
	maxDocExcerpts      = 2
	maxProjectTitles    = 3
)

// yearsRe finds "N years" / "N+ years" mentions in experience prose.
var yearsRe = regexp.MustCompile(`(?i)(\d{1,2})\s*\+?\s*years?`)

// BuildSummary renders the profile into the text that gets embedded. The
// same profile always yields the same text, so re-indexing an unchanged
// profile produces an equivalent vector.
func BuildSummary(p *db.FullProfile, docExcerpts []string) string {
	var sb strings.Builder
	t := p.Talent

	writeFact := func(label, value string) {
		if value != "" {
			sb.WriteString(label + ": " + value + "\n")
		}
	}
	writeFact("Name", t.Name)
	writeFact("Title", t.Title)
	writeFact("Location", t.Location)
	writeFact("Status", t.Status)
	writeFact("Availability", t.Availability)

	if t.Description != "" {
		sb.WriteString(truncate(t.Description, maxDescriptionChars) + "\n")
	}

	if years := inferYears(p.Experiences); years > 0 {
		sb.WriteString(fmt.Sprintf("%d years of experience.\n", years))
	}
	if companies := distinctCompanies(p.Experiences); len(companies) > 0 {
		sb.WriteString("Has worked with: " + strings.Join(companies, ", ") + ".\n")
	}

	writeTaxonomy(&sb, p.Taxonomy)

	if len(p.Languages) > 0 {
		names := make([]string, 0, len(p.Languages))
		for _, l := range p.Languages {
			names = append(names, l.Name)
		}
		sb.WriteString("Languages: " + strings.Join(names, ", ") + ".\n")
	}

	for i, proj := range p.Projects {
		if i >= maxProjectTitles {
			break
		}
		line := "Project: " + proj.Title
		if len(proj.Roles) > 0 {
			line += " (" + strings.Join(proj.Roles, ", ") + ")"
		}
		sb.WriteString(line + "\n")
	}

	for i, excerpt := range docExcerpts {
		if i >= maxDocExcerpts {
			break
		}
		excerpt = strings.TrimSpace(excerpt)
		if excerpt == "" {
			continue
		}
		sb.WriteString(truncate(excerpt, maxDocExcerptChars) + "\n")
	}

	return truncate(strings.TrimSpace(sb.String()), maxSummaryChars)
}

// writeTaxonomy emits one list line per category plus searchable phrasing
// for skills and software, which is what recruiters actually query with.
func writeTaxonomy(sb *strings.Builder, links []db.TaxonomyLink) {
	byCategory := map[string][]string{}
	order := []string{}
	for _, link := range links {
		if _, ok := byCategory[link.Category]; !ok {
			order = append(order, link.Category)
		}
		byCategory[link.Category] = append(byCategory[link.Category], link.Value)
	}

	for _, cat := range order {
		values := byCategory[cat]
		sb.WriteString(cat + ": " + strings.Join(values, ", ") + ".\n")
		switch cat {
		case "Skills":
			for _, v := range values {
				sb.WriteString("Skilled in " + v + ".\n")
			}
		case "Software":
			for _, v := range values {
				sb.WriteString("Uses " + v + ".\n")
			}
		}
	}
}

// inferYears scans experience descriptions and periods for an explicit
// years-of-experience claim, taking the largest. With no claim it falls back
// to the record count, one year per engagement as a floor.
func inferYears(experiences []db.Experience) int {
	best := 0
	for _, exp := range experiences {
		for _, text := range []string{exp.Description, exp.Period} {
			for _, m := range yearsRe.FindAllStringSubmatch(text, -1) {
				if n, err := strconv.Atoi(m[1]); err == nil && n > best && n <= 60 {
					best = n
				}
			}
		}
	}
	if best == 0 {
		best = len(experiences)
	}
	return best
}

func distinctCompanies(experiences []db.Experience) []string {
	seen := map[string]bool{}
	var companies []string
	for _, exp := range experiences {
		client := strings.TrimSpace(exp.Client)
		if client == "" {
			continue
		}
		key := strings.ToLower(client)
		if seen[key] {
			continue
		}
		seen[key] = true
		companies = append(companies, client)
	}
	return companies
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

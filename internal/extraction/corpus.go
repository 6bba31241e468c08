package extraction

import (
	"strings"

	"github.com/jonathan/talent-scout/internal/prompts"
	"github.com/jonathan/talent-scout/internal/scrape"
)

// maxCorpusChars bounds the structuring input so a pathological page or
// document cannot blow the model's context window.
const maxCorpusChars = 120_000

// DocumentText is one extracted document entering the corpus.
type DocumentText struct {
	Name string
	Text string
}

// BuildCorpus concatenates the scraped page text and document texts with
// explicit section markers. Documents come after the page content and their
// marker names them as CV/resume material, which the structuring prompt
// instructs the model to prefer for employment periods.
func BuildCorpus(page *scrape.PageData, docs []DocumentText) string {
	var sb strings.Builder

	sb.WriteString(prompts.MustGet("extraction.json", "section-scrape"))
	sb.WriteString("\n")
	if page != nil {
		if page.Title != "" {
			sb.WriteString("Page title: " + page.Title + "\n")
		}
		if desc := page.Meta["description"]; desc != "" {
			sb.WriteString("Page description: " + desc + "\n")
		}
		for _, h := range page.Headings {
			sb.WriteString("# " + h + "\n")
		}
		sb.WriteString(page.FullText)
		sb.WriteString("\n")
	}

	marker := prompts.MustGet("extraction.json", "section-document")
	for _, doc := range docs {
		if strings.TrimSpace(doc.Text) == "" {
			continue
		}
		sb.WriteString("\n")
		sb.WriteString(prompts.Format(marker, map[string]string{"Name": doc.Name}))
		sb.WriteString("\n")
		sb.WriteString(doc.Text)
		sb.WriteString("\n")
	}

	corpus := sb.String()
	if len(corpus) > maxCorpusChars {
		corpus = corpus[:maxCorpusChars]
	}
	return corpus
}

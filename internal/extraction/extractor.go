package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/talent-scout/internal/llm"
	"github.com/jonathan/talent-scout/internal/prompts"
	"github.com/jonathan/talent-scout/internal/schemas"
)

// Extractor runs the structuring call against the LLM and validates the
// response at both the schema and struct level.
type Extractor struct {
	client   llm.Client
	validate *validator.Validate
	verbose  bool
}

// NewExtractor creates an Extractor backed by the given LLM client.
func NewExtractor(client llm.Client, verbose bool) *Extractor {
	return &Extractor{
		client:   client,
		validate: validator.New(),
		verbose:  verbose,
	}
}

// Extract structures the corpus into the profile contract. The raw response
// is schema-validated before unmarshaling so a malformed model reply fails
// here rather than corrupting the write stage.
func (e *Extractor) Extract(ctx context.Context, corpus string) (*ExtractedProfile, error) {
	template, err := prompts.Get("extraction.json", "structure-profile")
	if err != nil {
		return nil, fmt.Errorf("failed to load structuring prompt: %w", err)
	}
	prompt := prompts.Format(template, map[string]string{"Corpus": corpus})

	if e.verbose {
		log.Printf("[EXTRACT] sending structuring request (%d chars of corpus)", len(corpus))
	}

	raw, err := e.client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, fmt.Errorf("structuring call failed: %w", err)
	}

	cleaned := llm.CleanJSONBlock(raw)
	if err := schemas.Validate(schemas.ExtractedProfile, []byte(cleaned)); err != nil {
		return nil, fmt.Errorf("structuring response rejected: %w", err)
	}

	var profile ExtractedProfile
	if err := json.Unmarshal([]byte(cleaned), &profile); err != nil {
		return nil, fmt.Errorf("failed to parse structuring response: %w", err)
	}
	if err := e.validate.Struct(&profile); err != nil {
		return nil, fmt.Errorf("structured profile failed validation: %w", err)
	}

	if e.verbose {
		log.Printf("[EXTRACT] structured profile: %d experiences, %d projects, %d skills",
			len(profile.Experiences), len(profile.Projects), len(profile.Skills))
	}
	return &profile, nil
}

package scrape

import (
	"context"
	"log"
	"strings"
)

// Content-sufficiency thresholds for accepting a static scrape without
// falling back to JavaScript rendering.
const (
	// MinFullTextLength alone is enough to accept a static result.
	MinFullTextLength = 500
	// MinTextWithHeadings is enough when the page also has headings.
	MinTextWithHeadings = 100
)

// Renderer is the JS-render path: the remote browser service, or a local
// browser when no service is configured.
type Renderer interface {
	Health(ctx context.Context) error
	Render(ctx context.Context, url string, opts Options) (*PageData, error)
}

// localRenderer adapts RenderLocal to the Renderer interface.
type localRenderer struct {
	verbose bool
}

func (r *localRenderer) Health(context.Context) error { return nil }

func (r *localRenderer) Render(ctx context.Context, url string, opts Options) (*PageData, error) {
	return RenderLocal(ctx, url, opts, r.verbose)
}

// Service implements the smart-scrape policy: static first, JS rendering only
// when the static result is insufficient or the static fetch errors.
type Service struct {
	renderer Renderer
	verbose  bool
}

// NewService creates a scrape service backed by the remote browser service at
// serviceURL. An empty serviceURL selects the local browser render path.
func NewService(serviceURL string, verbose bool) *Service {
	var renderer Renderer
	if serviceURL != "" {
		renderer = NewRemoteClient(serviceURL)
	} else {
		renderer = &localRenderer{verbose: verbose}
	}
	return &Service{renderer: renderer, verbose: verbose}
}

// NewServiceWithRenderer creates a scrape service with an explicit renderer.
// Used by tests.
func NewServiceWithRenderer(renderer Renderer, verbose bool) *Service {
	return &Service{renderer: renderer, verbose: verbose}
}

// Health checks the JS-render path before stage dispatch. An unhealthy
// remote service is a hard failure for the scrape stage.
func (s *Service) Health(ctx context.Context) error {
	return s.renderer.Health(ctx)
}

// Scrape fetches the page using the smart policy and returns normalized data.
func (s *Service) Scrape(ctx context.Context, url string, opts Options) (*PageData, error) {
	static, err := FetchStatic(ctx, url)
	if err != nil {
		// Any static-fetch failure falls back to JS rendering rather than
		// failing immediately.
		if s.verbose {
			log.Printf("[SCRAPE] Static fetch failed for %s: %v, falling back to browser", url, err)
		}
		return s.renderer.Render(ctx, url, opts)
	}

	if Sufficient(static) {
		if s.verbose {
			log.Printf("[SCRAPE] Static result accepted for %s (%d chars, %d links, %d images)",
				url, len(static.FullText), len(static.Links), len(static.Images))
		}
		return static, nil
	}

	if s.verbose {
		log.Printf("[SCRAPE] Static result insufficient for %s (%d chars), falling back to browser",
			url, len(static.FullText))
	}
	return s.renderer.Render(ctx, url, opts)
}

// Sufficient reports whether a static scrape result carries enough content to
// skip JavaScript rendering: a long body, or links plus images, or headings
// with a modest amount of text.
func Sufficient(data *PageData) bool {
	textLen := len(strings.TrimSpace(data.FullText))
	if textLen > MinFullTextLength {
		return true
	}
	if len(data.Links) > 0 && len(data.Images) > 0 {
		return true
	}
	if len(data.Headings) > 0 && textLen > MinTextWithHeadings {
		return true
	}
	return false
}

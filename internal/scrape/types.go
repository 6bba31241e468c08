// Package scrape turns a talent's public page into normalized page data.
// A cheap static fetch-and-parse path is tried first; JavaScript-heavy pages
// fall back to full rendering, either through a remote headless-browser
// service or a local browser when no service is configured.
package scrape

import "fmt"

// Method identifies which render strategy produced the page data.
type Method string

// Render methods.
const (
	MethodStatic  Method = "static"
	MethodBrowser Method = "browser"
)

// Link is a hyperlink discovered on the page with its anchor text.
type Link struct {
	URL  string `json:"url"`
	Text string `json:"text,omitempty"`
}

// PageData is the normalized scrape payload handed to downstream stages.
type PageData struct {
	URL        string            `json:"url"`
	Title      string            `json:"title,omitempty"`
	Meta       map[string]string `json:"meta,omitempty"`
	Links      []Link            `json:"links,omitempty"`
	Images     []string          `json:"images,omitempty"`
	Videos     []string          `json:"videos,omitempty"`
	Headings   []string          `json:"headings,omitempty"`
	Paragraphs []string          `json:"paragraphs,omitempty"`
	FullText   string            `json:"full_text"`
	Method     Method            `json:"method"`
}

// Options configures a scrape request.
type Options struct {
	// WaitForSelector blocks the JS render until the selector appears.
	WaitForSelector string
	// ScrollToBottom injects a scroll script for infinite-scroll/SPA pages.
	ScrollToBottom bool
	// DelayMillis is an extra post-load wait for late-rendering content.
	DelayMillis int
	// BlockResources skips images/fonts/media in the remote renderer for speed.
	BlockResources bool
}

// Error wraps a scrape failure with the URL and render method that failed.
type Error struct {
	URL     string
	Method  Method
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("scrape error (%s) for %s: %s: %v", e.Method, e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("scrape error (%s) for %s: %s", e.Method, e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// StaticTimeout bounds the cheap fetch-and-parse path.
const StaticTimeout = 30 * time.Second

// userAgent mirrors a real browser; some portfolio hosts reject obvious bots.
const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

// FetchStatic retrieves a page over plain HTTP and parses it without
// executing JavaScript.
func FetchStatic(ctx context.Context, pageURL string) (*PageData, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, &Error{URL: pageURL, Method: MethodStatic, Message: "invalid URL", Cause: err}
	}

	client := &http.Client{Timeout: StaticTimeout}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, &Error{URL: pageURL, Method: MethodStatic, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := client.Do(req)
	if err != nil {
		return nil, &Error{URL: pageURL, Method: MethodStatic, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &Error{URL: pageURL, Method: MethodStatic, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{URL: pageURL, Method: MethodStatic, Message: "failed to read response body", Cause: err}
	}

	data, err := ParseHTML(pageURL, string(body))
	if err != nil {
		return nil, &Error{URL: pageURL, Method: MethodStatic, Message: "failed to parse page", Cause: err}
	}
	data.Method = MethodStatic
	return data, nil
}

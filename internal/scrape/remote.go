package scrape

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Remote render defaults.
const (
	remoteScrapeTimeout = 2 * time.Minute
	remoteHealthTimeout = 5 * time.Second
)

// scrollScript is injected for infinite-scroll/SPA pages so lazily loaded
// content is present before the HTML snapshot is taken.
const scrollScript = `await new Promise((resolve) => {
	let total = 0;
	const step = 600;
	const timer = setInterval(() => {
		window.scrollBy(0, step);
		total += step;
		if (total >= document.body.scrollHeight) {
			clearInterval(timer);
			resolve();
		}
	}, 200);
});`

// RemoteClient talks to the remote headless-browser service.
type RemoteClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewRemoteClient creates a client for the browser service at baseURL.
func NewRemoteClient(baseURL string) *RemoteClient {
	return &RemoteClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: remoteScrapeTimeout},
	}
}

// remoteScrapeRequest is the browser service's POST /scrape body.
type remoteScrapeRequest struct {
	URL     string              `json:"url"`
	Options remoteScrapeOptions `json:"options"`
}

type remoteScrapeOptions struct {
	Viewport        *viewport `json:"viewport,omitempty"`
	WaitUntil       string    `json:"waitUntil,omitempty"`
	WaitForSelector string    `json:"waitForSelector,omitempty"`
	DelayMillis     int       `json:"delay,omitempty"`
	Script          string    `json:"script,omitempty"`
	BlockResources  bool      `json:"blockResources,omitempty"`
}

type viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// remoteScrapeResponse is the browser service's POST /scrape response.
type remoteScrapeResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Data    struct {
		HTML    string         `json:"html"`
		Title   string         `json:"title"`
		URL     string         `json:"url"`
		Metrics map[string]any `json:"metrics,omitempty"`
		Timing  map[string]any `json:"timing,omitempty"`
	} `json:"data"`
}

// Health reports whether the browser service is ready to accept work.
// An unhealthy service is a hard failure for the scrape stage.
func (c *RemoteClient) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, remoteHealthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create health request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("browser service health check failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("browser service unhealthy: HTTP %d", resp.StatusCode)
	}

	var health struct {
		Status  string `json:"status"`
		Browser string `json:"browser"`
		Pages   int    `json:"pages"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return fmt.Errorf("failed to decode health response: %w", err)
	}
	if health.Status != "ok" && health.Status != "healthy" {
		return fmt.Errorf("browser service unhealthy: status %q", health.Status)
	}
	return nil
}

// Render asks the service to fully render the page with JavaScript and
// returns the parsed result.
func (c *RemoteClient) Render(ctx context.Context, pageURL string, opts Options) (*PageData, error) {
	reqBody := remoteScrapeRequest{
		URL: pageURL,
		Options: remoteScrapeOptions{
			Viewport:        &viewport{Width: 1280, Height: 900},
			WaitUntil:       "networkidle",
			WaitForSelector: opts.WaitForSelector,
			DelayMillis:     opts.DelayMillis,
			BlockResources:  opts.BlockResources,
		},
	}
	if opts.ScrollToBottom {
		reqBody.Options.Script = scrollScript
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal scrape request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/scrape", bytes.NewReader(payload))
	if err != nil {
		return nil, &Error{URL: pageURL, Method: MethodBrowser, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{URL: pageURL, Method: MethodBrowser, Message: "browser service request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{URL: pageURL, Method: MethodBrowser, Message: "failed to read response", Cause: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &Error{URL: pageURL, Method: MethodBrowser, Message: fmt.Sprintf("browser service HTTP %d", resp.StatusCode)}
	}

	var scraped remoteScrapeResponse
	if err := json.Unmarshal(body, &scraped); err != nil {
		return nil, &Error{URL: pageURL, Method: MethodBrowser, Message: "failed to decode response", Cause: err}
	}
	if !scraped.Success {
		return nil, &Error{URL: pageURL, Method: MethodBrowser, Message: "browser service reported failure: " + scraped.Error}
	}

	data, err := ParseHTML(pageURL, scraped.Data.HTML)
	if err != nil {
		return nil, &Error{URL: pageURL, Method: MethodBrowser, Message: "failed to parse rendered page", Cause: err}
	}
	if data.Title == "" {
		data.Title = scraped.Data.Title
	}
	data.Method = MethodBrowser
	return data, nil
}

package documents

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Download limits. Responses under MinDocumentSize are likely error pages;
// responses over MaxDocumentSize are rejected before buffering completes.
const (
	MinDocumentSize = 100
	MaxDocumentSize = 50 * 1024 * 1024
	downloadTimeout = 90 * time.Second
)

// DownloadResult holds a fetched document body and its sniffed type.
type DownloadResult struct {
	Body         []byte
	DetectedType string
	Size         int64
}

// DownloadError wraps a download failure with its URL.
type DownloadError struct {
	URL     string
	Message string
	Cause   error
}

func (e *DownloadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("download error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("download error for %s: %s", e.URL, e.Message)
}

func (e *DownloadError) Unwrap() error { return e.Cause }

// Download fetches a document with a realistic browser header set, enforces
// the size bounds, and detects the true type from the body.
func Download(ctx context.Context, rawURL, urlType string) (*DownloadResult, error) {
	directURL := RewriteCloudURL(rawURL)

	client := &http.Client{Timeout: downloadTimeout}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, directURL, nil)
	if err != nil {
		return nil, &DownloadError{URL: rawURL, Message: "failed to create request", Cause: err}
	}
	// Some hosts serve error pages to obvious non-browser clients.
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36")
	req.Header.Set("Accept", "application/pdf,application/msword,application/octet-stream,*/*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Referer", rawURL)

	resp, err := client.Do(req)
	if err != nil {
		return nil, &DownloadError{URL: rawURL, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &DownloadError{URL: rawURL, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}

	// Read one byte past the cap so oversize bodies are detected without
	// buffering the whole stream.
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxDocumentSize+1))
	if err != nil {
		return nil, &DownloadError{URL: rawURL, Message: "failed to read body", Cause: err}
	}

	if len(body) < MinDocumentSize {
		return nil, &DownloadError{URL: rawURL, Message: fmt.Sprintf("response too small (%d bytes), likely an error page", len(body))}
	}
	if len(body) > MaxDocumentSize {
		return nil, &DownloadError{URL: rawURL, Message: fmt.Sprintf("response exceeds %d byte cap", MaxDocumentSize)}
	}

	return &DownloadResult{
		Body:         body,
		DetectedType: DetectType(body, urlType),
		Size:         int64(len(body)),
	}, nil
}

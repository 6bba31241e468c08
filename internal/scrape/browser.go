package scrape

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/chromedp/chromedp"
)

// localRenderTimeout bounds the in-process browser render path.
const localRenderTimeout = 2 * time.Minute

// RenderLocal renders a page in a local headless browser and parses the
// result. Used as the JS-render path when no remote browser service is
// configured. Requires Chrome/Chromium on the host.
func RenderLocal(ctx context.Context, pageURL string, opts Options, verbose bool) (*PageData, error) {
	if verbose {
		log.Printf("[BROWSER] Starting local headless render for: %s", pageURL)
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, localRenderTimeout)
	defer cancel()

	actions := []chromedp.Action{
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body"),
		chromedp.Sleep(3 * time.Second),
	}
	if opts.WaitForSelector != "" {
		actions = append(actions, chromedp.WaitVisible(opts.WaitForSelector))
	}
	if opts.ScrollToBottom {
		actions = append(actions,
			chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
			chromedp.Sleep(1*time.Second),
		)
	}
	if opts.DelayMillis > 0 {
		actions = append(actions, chromedp.Sleep(time.Duration(opts.DelayMillis)*time.Millisecond))
	}

	var html string
	actions = append(actions, chromedp.OuterHTML("html", &html))

	if err := chromedp.Run(browserCtx, actions...); err != nil {
		return nil, &Error{URL: pageURL, Method: MethodBrowser, Message: "local browser rendering failed", Cause: err}
	}

	if verbose {
		log.Printf("[BROWSER] Rendered HTML: %d bytes", len(html))
	}

	data, err := ParseHTML(pageURL, html)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rendered page: %w", err)
	}
	data.Method = MethodBrowser
	return data, nil
}

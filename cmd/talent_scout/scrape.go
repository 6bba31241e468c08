package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/talent-scout/internal/scrape"
)

var (
	scrapeBrowserURL string
	scrapeVerbose    bool
	scrapeTimeoutSec int
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape <url>",
	Short: "Scrape a page and print the normalized result",
	Long:  `Fetch a talent page with the smart-scrape policy (static first, browser fallback) and print the normalized page data as JSON. Useful for debugging source pages without running the full pipeline.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runScrape,
}

func init() {
	scrapeCmd.Flags().StringVar(&scrapeBrowserURL, "browser-url", os.Getenv("BROWSER_SERVICE_URL"), "Remote browser service base URL (empty uses a local browser)")
	scrapeCmd.Flags().BoolVar(&scrapeVerbose, "verbose", false, "Print scrape decisions")
	scrapeCmd.Flags().IntVar(&scrapeTimeoutSec, "timeout", 120, "Overall timeout in seconds")
	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(_ *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(scrapeTimeoutSec)*time.Second)
	defer cancel()

	svc := scrape.NewService(scrapeBrowserURL, scrapeVerbose)
	data, err := svc.Scrape(ctx, args[0], scrape.Options{ScrollToBottom: true})
	if err != nil {
		return fmt.Errorf("scrape failed: %w", err)
	}

	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

// Package main provides the entry point for the talent-scout HTTP API server
// and its supporting command-line tools.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "talent_scout",
	Short: "Talent profile ingestion and search service",
	Long:  "talent_scout scrapes talent portfolio pages, structures them into searchable profiles with an LLM, and serves hybrid vector search over the result via REST API.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

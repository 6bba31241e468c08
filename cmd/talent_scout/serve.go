package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/talent-scout/internal/blobstore"
	"github.com/jonathan/talent-scout/internal/config"
	"github.com/jonathan/talent-scout/internal/db"
	"github.com/jonathan/talent-scout/internal/embedding"
	"github.com/jonathan/talent-scout/internal/extraction"
	"github.com/jonathan/talent-scout/internal/llm"
	"github.com/jonathan/talent-scout/internal/pipeline"
	"github.com/jonathan/talent-scout/internal/profile"
	"github.com/jonathan/talent-scout/internal/scrape"
	"github.com/jonathan/talent-scout/internal/search"
	"github.com/jonathan/talent-scout/internal/server"
	"github.com/jonathan/talent-scout/internal/taxonomy"
)

var (
	serveConfigPath string
	servePort       int
	serveVerbose    bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server exposing the ingestion pipeline and talent search endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to JSON config file")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	serveCmd.Flags().BoolVar(&serveVerbose, "verbose", false, "Print detailed debug information")
	rootCmd.AddCommand(serveCmd)
}

func loadConfig() (*config.Config, error) {
	cfg := &config.Config{}
	if serveConfigPath != "" {
		loaded, err := config.LoadConfig(serveConfigPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	cfg = cfg.FromEnv()
	if servePort != 0 {
		cfg.Port = servePort
	}
	if serveVerbose {
		cfg.Verbose = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := context.Background()

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	client, err := llm.NewClient(ctx, llm.DefaultGeminiConfig(), cfg.APIKey)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer func() { _ = client.Close() }()

	blobs, err := blobstore.New(cfg.BlobDir)
	if err != nil {
		return fmt.Errorf("failed to open blob store: %w", err)
	}

	scraper := scrape.NewService(cfg.BrowserServiceURL, cfg.Verbose)
	extractor := extraction.NewExtractor(client, cfg.Verbose)

	resolver, err := taxonomy.NewResolver(ctx, database, cfg.Verbose)
	if err != nil {
		return fmt.Errorf("failed to seed taxonomy: %w", err)
	}

	indexer := embedding.NewIndexer(database, client, cfg.Verbose)

	writer := profile.NewWriter(database, cfg.Verbose)

	orch, err := pipeline.New(database, blobs, scraper, extractor, resolver, writer, indexer, cfg.Workers, cfg.Verbose)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer orch.Close()

	engine := search.NewEngine(database, client, cfg.Verbose)

	srv := server.New(server.Config{Port: cfg.Port}, database, orch, engine, scraper)
	return srv.Start()
}

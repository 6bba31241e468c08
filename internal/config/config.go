// Package config provides configuration loading and validation for the service.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Config represents the service configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or environment variables.
type Config struct {
	// Server
	Port int `json:"port,omitempty"` // HTTP listen port

	// External collaborators
	DatabaseURL       string `json:"database_url,omitempty"`        // PostgreSQL connection URL (pgvector required)
	APIKey            string `json:"api_key,omitempty"`             // Gemini API key
	BrowserServiceURL string `json:"browser_service_url,omitempty"` // Remote headless-browser service base URL

	// Storage
	BlobDir string `json:"blob_dir,omitempty"` // Directory for raw payloads and downloaded documents

	// Pipeline
	Workers int  `json:"workers,omitempty"` // Stage worker pool size
	Verbose bool `json:"verbose,omitempty"` // Print detailed debug information
}

// Environment variable names recognized by FromEnv.
const (
	EnvPort              = "TALENT_SCOUT_PORT"
	EnvDatabaseURL       = "DATABASE_URL"
	EnvAPIKey            = "GEMINI_API_KEY"
	EnvBrowserServiceURL = "BROWSER_SERVICE_URL"
	EnvBlobDir           = "TALENT_SCOUT_BLOB_DIR"
	EnvWorkers           = "TALENT_SCOUT_WORKERS"
)

// Default values applied when neither config file nor environment sets a field.
const (
	DefaultPort    = 8080
	DefaultBlobDir = "data/blobs"
	DefaultWorkers = 4
)

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv fills empty fields from environment variables, then applies defaults.
// Config-file values win over environment values.
func (c *Config) FromEnv() *Config {
	result := *c

	if result.Port == 0 {
		if v := os.Getenv(EnvPort); v != "" {
			if port, err := strconv.Atoi(v); err == nil {
				result.Port = port
			}
		}
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = os.Getenv(EnvDatabaseURL)
	}
	if result.APIKey == "" {
		result.APIKey = os.Getenv(EnvAPIKey)
	}
	if result.BrowserServiceURL == "" {
		result.BrowserServiceURL = os.Getenv(EnvBrowserServiceURL)
	}
	if result.BlobDir == "" {
		result.BlobDir = os.Getenv(EnvBlobDir)
	}
	if result.Workers == 0 {
		if v := os.Getenv(EnvWorkers); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				result.Workers = n
			}
		}
	}

	// Defaults
	if result.Port == 0 {
		result.Port = DefaultPort
	}
	if result.BlobDir == "" {
		result.BlobDir = DefaultBlobDir
	}
	if result.Workers == 0 {
		result.Workers = DefaultWorkers
	}

	return &result
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' out of range: %d", c.Port)
	}
	if c.Workers < 0 {
		return fmt.Errorf("config error: 'workers' must be non-negative")
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("config error: 'database_url' is required")
	}
	if c.APIKey == "" {
		return fmt.Errorf("config error: 'api_key' is required")
	}
	return nil
}

// Package blobstore provides path-addressable file storage for raw scrape
// payloads, downloaded documents, and processed corpora.
package blobstore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store writes and reads blobs under a base directory. Paths returned by Save
// are relative to the base directory and are what gets persisted on runs and
// documents.
type Store struct {
	baseDir string
}

// New creates a store rooted at baseDir, creating the directory if needed.
func New(baseDir string) (*Store, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("blob store base directory is empty")
	}
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create blob store directory: %w", err)
	}
	return &Store{baseDir: baseDir}, nil
}

// Save writes data under the given relative path, creating parent directories.
// Returns the relative path for persistence.
func (s *Store) Save(relPath string, data []byte) (string, error) {
	relPath = sanitize(relPath)
	if relPath == "" {
		return "", fmt.Errorf("blob path is empty")
	}

	absPath := filepath.Join(s.baseDir, relPath)
	if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create blob directory: %w", err)
	}
	if err := os.WriteFile(absPath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write blob %s: %w", relPath, err)
	}
	return relPath, nil
}

// Read returns the contents of a blob by its relative path.
func (s *Store) Read(relPath string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, sanitize(relPath)))
	if err != nil {
		return nil, fmt.Errorf("failed to read blob %s: %w", relPath, err)
	}
	return data, nil
}

// Path returns the absolute filesystem path for a stored blob. Extraction
// tools that shell out need a real file path.
func (s *Store) Path(relPath string) string {
	return filepath.Join(s.baseDir, sanitize(relPath))
}

// sanitize prevents path traversal outside the base directory.
func sanitize(relPath string) string {
	relPath = filepath.Clean(strings.TrimPrefix(relPath, "/"))
	if relPath == "." || strings.HasPrefix(relPath, "..") {
		return ""
	}
	return relPath
}

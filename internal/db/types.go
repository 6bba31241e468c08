package db

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// PipelineStatus tracks where a talent is in the ingestion pipeline.
type PipelineStatus string

// Pipeline status values for a talent.
const (
	PipelineIdle       PipelineStatus = "idle"
	PipelineScraping   PipelineStatus = "scraping"
	PipelineExtracting PipelineStatus = "extracting"
	PipelineCompleted  PipelineStatus = "completed"
	PipelineFailed     PipelineStatus = "failed"
)

// RunStatus tracks a single scrape run's lifecycle.
type RunStatus string

// Run status values for a scrape run.
const (
	RunPending    RunStatus = "pending"
	RunScraping   RunStatus = "scraping"
	RunProcessing RunStatus = "processing"
	RunCompleted  RunStatus = "completed"
	RunFailed     RunStatus = "failed"
)

// DocumentStatus tracks a document's download or extraction progress.
// Download and extraction advance independently.
type DocumentStatus string

// Document status values.
const (
	DocPending    DocumentStatus = "pending"
	DocInProgress DocumentStatus = "in_progress"
	DocCompleted  DocumentStatus = "completed"
	DocFailed     DocumentStatus = "failed"
	DocSkipped    DocumentStatus = "skipped"
)

// Talent is the subject profile being built and searched.
type Talent struct {
	ID             uuid.UUID        `json:"id"`
	Handle         string           `json:"handle"`
	Name           string           `json:"name"`
	Title          string           `json:"title"`
	Description    string           `json:"description"`
	Location       string           `json:"location"`
	Status         string           `json:"status"`
	Availability   string           `json:"availability"`
	SourceURL      string           `json:"source_url"`
	Embedding      *pgvector.Vector `json:"-"`
	PipelineStatus PipelineStatus   `json:"pipeline_status"`
	PipelineError  string           `json:"pipeline_error,omitempty"`
	DeletedAt      *time.Time       `json:"deleted_at,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// ScrapeRun is one execution attempt of the ingestion pipeline for a talent.
type ScrapeRun struct {
	ID                   uuid.UUID      `json:"id"`
	TalentID             uuid.UUID      `json:"talent_id"`
	SourceURL            string         `json:"source_url"`
	RawPayloadPath       string         `json:"raw_payload_path,omitempty"`
	ProcessedPayloadPath string         `json:"processed_payload_path,omitempty"`
	Status               RunStatus      `json:"status"`
	Error                string         `json:"error,omitempty"`
	Metadata             map[string]any `json:"metadata,omitempty"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
}

// Document is one discovered downloadable link within a scrape run.
type Document struct {
	ID               uuid.UUID      `json:"id"`
	ScrapeRunID      uuid.UUID      `json:"scrape_run_id"`
	TalentID         uuid.UUID      `json:"talent_id"`
	URL              string         `json:"url"`
	LinkText         string         `json:"link_text,omitempty"`
	DetectedType     string         `json:"detected_type"`
	StoragePath      string         `json:"storage_path,omitempty"`
	SizeBytes        int64          `json:"size_bytes"`
	DownloadStatus   DocumentStatus `json:"download_status"`
	ExtractionStatus DocumentStatus `json:"extraction_status"`
	ExtractedText    string         `json:"extracted_text,omitempty"`
	Metadata         map[string]any `json:"metadata,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
}

// Experience is a client/role engagement on a talent's profile.
type Experience struct {
	ID          uuid.UUID `json:"id"`
	TalentID    uuid.UUID `json:"talent_id"`
	Client      string    `json:"client"`
	Role        string    `json:"role,omitempty"`
	Period      string    `json:"period,omitempty"`
	Description string    `json:"description,omitempty"`
}

// Project is a portfolio piece on a talent's profile.
type Project struct {
	ID       uuid.UUID `json:"id"`
	TalentID uuid.UUID `json:"talent_id"`
	Title    string    `json:"title"`
	Roles    []string  `json:"roles,omitempty"`
	Views    *int64    `json:"views,omitempty"`
	Likes    *int64    `json:"likes,omitempty"`
	Link     string    `json:"link,omitempty"`
}

// Language is a spoken language on a talent's profile.
type Language struct {
	ID       uuid.UUID `json:"id"`
	TalentID uuid.UUID `json:"talent_id"`
	Name     string    `json:"name"`
}

// TaxonomyCategory is one of the shared taxonomy's top-level dimensions
// (e.g. "Skills", "Software").
type TaxonomyCategory struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// TaxonomyValue is a deduplicated value within a category
// (e.g. "Adobe Premiere Pro" under "Software"). Unique per
// (category, lower(title)).
type TaxonomyValue struct {
	ID         int64  `json:"id"`
	CategoryID int64  `json:"category_id"`
	Title      string `json:"title"`
}

// TaxonomyLink pairs a category name with a value title for a talent.
type TaxonomyLink struct {
	Category string `json:"category"`
	Value    string `json:"value"`
}

// FullProfile aggregates everything search and embedding need about a talent.
type FullProfile struct {
	Talent      Talent         `json:"talent"`
	Experiences []Experience   `json:"experiences"`
	Projects    []Project      `json:"projects"`
	Languages   []Language     `json:"languages"`
	Taxonomy    []TaxonomyLink `json:"taxonomy"`
}

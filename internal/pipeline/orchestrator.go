// Package pipeline orchestrates the talent ingestion flow: scrape the source
// page, ingest linked documents, structure the combined text with the LLM,
// persist the profile, and refresh the embedding index. Each talent moves
// through one run at a time; stages run on a shared worker pool with
// per-stage timeouts and bounded retries.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/talent-scout/internal/db"
	"github.com/jonathan/talent-scout/internal/documents"
	"github.com/jonathan/talent-scout/internal/extraction"
	"github.com/jonathan/talent-scout/internal/scrape"
	"github.com/jonathan/talent-scout/internal/taxonomy"
)

// Stage timeouts and retry budgets. Writes get no retry: the transaction
// either commits or the run fails.
const (
	healthTimeout    = 5 * time.Second
	scrapeTimeout    = 2 * time.Minute
	structureTimeout = 10 * time.Minute
	embedTimeout     = time.Minute

	scrapeAttempts    = 3
	structureAttempts = 2
	embedAttempts     = 3

	maxConcurrentDownloads = 4
)

// ErrNotFound is returned when the talent does not exist.
var ErrNotFound = fmt.Errorf("talent not found")

// Store is the database surface the orchestrator drives.
type Store interface {
	GetTalent(ctx context.Context, id uuid.UUID) (*db.Talent, error)
	SetSourceURL(ctx context.Context, id uuid.UUID, url string) error
	ClaimPipeline(ctx context.Context, id uuid.UUID) (bool, error)
	SetPipelineStatus(ctx context.Context, id uuid.UUID, status db.PipelineStatus) error
	MarkPipelineFailed(ctx context.Context, id uuid.UUID, errText string) error

	CreateScrapeRun(ctx context.Context, talentID uuid.UUID, sourceURL string) (uuid.UUID, error)
	SetRunStatus(ctx context.Context, runID uuid.UUID, status db.RunStatus) error
	MarkRunFailed(ctx context.Context, runID uuid.UUID, errText string) error
	SetRunPayloads(ctx context.Context, runID uuid.UUID, rawPath, processedPath string) error
	MergeRunMetadata(ctx context.Context, runID uuid.UUID, meta map[string]any) error
	LatestScrapeRun(ctx context.Context, talentID uuid.UUID) (*db.ScrapeRun, error)

	CreateDocument(ctx context.Context, doc *db.Document) (uuid.UUID, error)
	SetDocumentDownloaded(ctx context.Context, id uuid.UUID, storagePath, detectedType string, sizeBytes int64) error
	SetDocumentDownloadFailed(ctx context.Context, id uuid.UUID, errText string) error
	SetDocumentExtracted(ctx context.Context, id uuid.UUID, text string) error
	SetDocumentExtractionFailed(ctx context.Context, id uuid.UUID, errText string) error
	ExtractedDocumentTexts(ctx context.Context, runID uuid.UUID) ([]db.Document, error)
}

// Blobs persists raw and processed run payloads. Path resolves a stored
// blob's relative path to a real filesystem path for tools that read files.
type Blobs interface {
	Save(relPath string, data []byte) (string, error)
	Read(relPath string) ([]byte, error)
	Path(relPath string) string
}

// Scraper is the smart-scrape service.
type Scraper interface {
	Health(ctx context.Context) error
	Scrape(ctx context.Context, url string, opts scrape.Options) (*scrape.PageData, error)
}

// Structurer runs the LLM structuring call.
type Structurer interface {
	Extract(ctx context.Context, corpus string) (*extraction.ExtractedProfile, error)
}

// Resolver maps category arrays onto taxonomy value IDs.
type Resolver interface {
	Resolve(ctx context.Context, profile *extraction.ExtractedProfile) (*taxonomy.ResolvedLinks, error)
}

// Writer persists the structured profile transactionally.
type Writer interface {
	Apply(ctx context.Context, talentID uuid.UUID, extracted *extraction.ExtractedProfile, links *taxonomy.ResolvedLinks) error
}

// Indexer refreshes a talent's embedding vector.
type Indexer interface {
	Index(ctx context.Context, talentID uuid.UUID) error
}

// TriggerResult reports how a scrape trigger was handled.
type TriggerResult struct {
	RunID   uuid.UUID `json:"run_id,omitempty"`
	Started bool      `json:"started"`
}

// StatusResult is the pipeline view of a talent.
type StatusResult struct {
	Talent    *db.Talent    `json:"talent"`
	LatestRun *db.ScrapeRun `json:"latest_run,omitempty"`
}

// Orchestrator runs ingestion pipelines on a shared worker pool.
type Orchestrator struct {
	store      Store
	blobs      Blobs
	scraper    Scraper
	structurer Structurer
	resolver   Resolver
	writer     Writer
	indexer    Indexer
	pool       *ants.Pool
	verbose    bool

	mu         sync.Mutex
	inflight   map[uuid.UUID]bool
	pendingURL map[uuid.UUID]string
}

// New creates an Orchestrator with workers goroutines servicing pipeline jobs.
func New(store Store, blobs Blobs, scraper Scraper, structurer Structurer, resolver Resolver, writer Writer, indexer Indexer, workers int, verbose bool) (*Orchestrator, error) {
	if workers <= 0 {
		workers = 4
	}
	pool, err := ants.NewPool(workers, ants.WithNonblocking(false))
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}
	return &Orchestrator{
		store:      store,
		blobs:      blobs,
		scraper:    scraper,
		structurer: structurer,
		resolver:   resolver,
		writer:     writer,
		indexer:    indexer,
		pool:       pool,
		verbose:    verbose,
		inflight:   map[uuid.UUID]bool{},
		pendingURL: map[uuid.UUID]string{},
	}, nil
}

// Close releases the worker pool.
func (o *Orchestrator) Close() {
	o.pool.Release()
}

// TriggerScrape starts an ingestion run for the talent from url. If a run is
// already active, the new URL is recorded as the pending source and picked up
// when the active run finishes; no second run is spawned.
func (o *Orchestrator) TriggerScrape(ctx context.Context, talentID uuid.UUID, url string) (*TriggerResult, error) {
	talent, err := o.store.GetTalent(ctx, talentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load talent: %w", err)
	}
	if talent == nil {
		return nil, ErrNotFound
	}

	if err := o.store.SetSourceURL(ctx, talentID, url); err != nil {
		return nil, fmt.Errorf("failed to record source URL: %w", err)
	}

	o.mu.Lock()
	if o.inflight[talentID] {
		o.pendingURL[talentID] = url
		o.mu.Unlock()
		log.Printf("[PIPELINE] talent %s already in flight, pending URL updated", talentID)
		return &TriggerResult{Started: false}, nil
	}
	o.mu.Unlock()

	claimed, err := o.store.ClaimPipeline(ctx, talentID)
	if err != nil {
		return nil, fmt.Errorf("failed to claim pipeline: %w", err)
	}
	if !claimed {
		// Another process holds the claim; leave the URL pending there.
		log.Printf("[PIPELINE] talent %s claimed elsewhere, pending URL updated", talentID)
		return &TriggerResult{Started: false}, nil
	}

	runID, err := o.store.CreateScrapeRun(ctx, talentID, url)
	if err != nil {
		o.releaseClaim(talentID, "failed to create run")
		return nil, fmt.Errorf("failed to create scrape run: %w", err)
	}

	o.mu.Lock()
	o.inflight[talentID] = true
	o.mu.Unlock()

	if err := o.pool.Submit(func() { o.run(talentID, runID, url) }); err != nil {
		o.finish(talentID)
		o.releaseClaim(talentID, "worker pool rejected job")
		_ = o.store.MarkRunFailed(context.Background(), runID, "worker pool rejected job")
		return nil, fmt.Errorf("failed to enqueue pipeline job: %w", err)
	}
	return &TriggerResult{RunID: runID, Started: true}, nil
}

// Reprocess re-runs structuring, persistence, and embedding from the latest
// run's stored payloads without scraping again.
func (o *Orchestrator) Reprocess(ctx context.Context, talentID uuid.UUID) (*TriggerResult, error) {
	talent, err := o.store.GetTalent(ctx, talentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load talent: %w", err)
	}
	if talent == nil {
		return nil, ErrNotFound
	}

	prev, err := o.store.LatestScrapeRun(ctx, talentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load latest run: %w", err)
	}
	if prev == nil || prev.RawPayloadPath == "" {
		return nil, fmt.Errorf("no stored payload to reprocess for talent %s", talentID)
	}

	claimed, err := o.store.ClaimPipeline(ctx, talentID)
	if err != nil {
		return nil, fmt.Errorf("failed to claim pipeline: %w", err)
	}
	if !claimed {
		return &TriggerResult{Started: false}, nil
	}

	runID, err := o.store.CreateScrapeRun(ctx, talentID, prev.SourceURL)
	if err != nil {
		o.releaseClaim(talentID, "failed to create run")
		return nil, fmt.Errorf("failed to create reprocess run: %w", err)
	}

	o.mu.Lock()
	o.inflight[talentID] = true
	o.mu.Unlock()

	prevRunID := prev.ID
	rawPath := prev.RawPayloadPath
	if err := o.pool.Submit(func() { o.reprocess(talentID, runID, prevRunID, rawPath) }); err != nil {
		o.finish(talentID)
		o.releaseClaim(talentID, "worker pool rejected job")
		_ = o.store.MarkRunFailed(context.Background(), runID, "worker pool rejected job")
		return nil, fmt.Errorf("failed to enqueue reprocess job: %w", err)
	}
	return &TriggerResult{RunID: runID, Started: true}, nil
}

// ReindexEmbedding refreshes a talent's vector without touching profile data.
// Used after direct profile field edits.
func (o *Orchestrator) ReindexEmbedding(ctx context.Context, talentID uuid.UUID) error {
	talent, err := o.store.GetTalent(ctx, talentID)
	if err != nil {
		return fmt.Errorf("failed to load talent: %w", err)
	}
	if talent == nil {
		return ErrNotFound
	}

	embedCtx, cancel := context.WithTimeout(ctx, embedTimeout)
	defer cancel()
	return Retry(embedCtx, RetryConfig{Attempts: embedAttempts, Delay: 2 * time.Second}, "embedding", func(ctx context.Context) error {
		return o.indexer.Index(ctx, talentID)
	})
}

// Status reports the talent's pipeline status together with its latest run.
func (o *Orchestrator) Status(ctx context.Context, talentID uuid.UUID) (*StatusResult, error) {
	talent, err := o.store.GetTalent(ctx, talentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load talent: %w", err)
	}
	if talent == nil {
		return nil, ErrNotFound
	}
	run, err := o.store.LatestScrapeRun(ctx, talentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load latest run: %w", err)
	}
	return &StatusResult{Talent: talent, LatestRun: run}, nil
}

// run executes the full stage graph for one ingestion run.
func (o *Orchestrator) run(talentID, runID uuid.UUID, url string) {
	ctx := context.Background()
	started := time.Now()

	page, err := o.scrapeStage(ctx, runID, url)
	if err != nil {
		o.fail(talentID, runID, "scrape", err)
		return
	}

	docTexts := o.documentStage(ctx, talentID, runID, page)
	o.processStages(ctx, talentID, runID, page, docTexts, started)
}

// reprocess executes the stage graph from the structuring stage, feeding it
// the stored raw payload and the previous run's extracted document texts.
func (o *Orchestrator) reprocess(talentID, runID, prevRunID uuid.UUID, rawPath string) {
	ctx := context.Background()
	started := time.Now()

	raw, err := o.blobs.Read(rawPath)
	if err != nil {
		o.fail(talentID, runID, "reprocess", fmt.Errorf("failed to read stored payload: %w", err))
		return
	}
	var page scrape.PageData
	if err := json.Unmarshal(raw, &page); err != nil {
		o.fail(talentID, runID, "reprocess", fmt.Errorf("stored payload is corrupt: %w", err))
		return
	}
	if err := o.store.SetRunPayloads(ctx, runID, rawPath, ""); err != nil {
		log.Printf("[PIPELINE] warning: failed to link payload to run %s: %v", runID, err)
	}

	var docTexts []extraction.DocumentText
	docs, err := o.store.ExtractedDocumentTexts(ctx, prevRunID)
	if err != nil {
		log.Printf("[PIPELINE] warning: failed to load prior document texts: %v", err)
	}
	for _, d := range docs {
		docTexts = append(docTexts, extraction.DocumentText{Name: d.LinkText, Text: d.ExtractedText})
	}

	o.processStages(ctx, talentID, runID, &page, docTexts, started)
}

// processStages runs structuring, persistence, and embedding, then completes
// the run. Shared by the full pipeline and the reprocess path.
func (o *Orchestrator) processStages(ctx context.Context, talentID, runID uuid.UUID, page *scrape.PageData, docTexts []extraction.DocumentText, started time.Time) {
	extracted, err := o.structureStage(ctx, talentID, runID, page, docTexts)
	if err != nil {
		o.fail(talentID, runID, "structure", err)
		return
	}

	if err := o.writeStage(ctx, talentID, extracted); err != nil {
		o.fail(talentID, runID, "write", err)
		return
	}

	if err := o.embedStage(ctx, talentID); err != nil {
		o.fail(talentID, runID, "embed", err)
		return
	}

	o.complete(ctx, talentID, runID, started)
}

func (o *Orchestrator) scrapeStage(ctx context.Context, runID uuid.UUID, url string) (*scrape.PageData, error) {
	if err := o.store.SetRunStatus(ctx, runID, db.RunScraping); err != nil {
		return nil, fmt.Errorf("failed to mark run scraping: %w", err)
	}

	healthCtx, cancel := context.WithTimeout(ctx, healthTimeout)
	err := o.scraper.Health(healthCtx)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("browser service unhealthy: %w", err)
	}

	var page *scrape.PageData
	stageStart := time.Now()
	err = Retry(ctx, RetryConfig{Attempts: scrapeAttempts, Delay: 3 * time.Second}, "scrape", func(ctx context.Context) error {
		scrapeCtx, cancel := context.WithTimeout(ctx, scrapeTimeout)
		defer cancel()
		var scrapeErr error
		page, scrapeErr = o.scraper.Scrape(scrapeCtx, url, scrape.Options{ScrollToBottom: true})
		return scrapeErr
	})
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(page)
	if err != nil {
		return nil, fmt.Errorf("failed to encode scrape payload: %w", err)
	}
	rawPath, err := o.blobs.Save(fmt.Sprintf("runs/%s/raw.json", runID), raw)
	if err != nil {
		return nil, fmt.Errorf("failed to store raw payload: %w", err)
	}
	if err := o.store.SetRunPayloads(ctx, runID, rawPath, ""); err != nil {
		return nil, fmt.Errorf("failed to record payload path: %w", err)
	}

	meta := map[string]any{
		"scrape_method":   string(page.Method),
		"scrape_ms":       time.Since(stageStart).Milliseconds(),
		"full_text_chars": len(page.FullText),
		"links_found":     len(page.Links),
		"images_found":    len(page.Images),
	}
	if err := o.store.MergeRunMetadata(ctx, runID, meta); err != nil {
		log.Printf("[PIPELINE] warning: failed to record scrape metadata for run %s: %v", runID, err)
	}
	return page, nil
}

// documentStage discovers, downloads, and extracts linked documents. Every
// failure here is per-document; the stage itself never fails the run.
func (o *Orchestrator) documentStage(ctx context.Context, talentID, runID uuid.UUID, page *scrape.PageData) []extraction.DocumentText {
	links := documents.DiscoverDocuments(page.Links)
	if len(links) == 0 {
		return nil
	}
	if o.verbose {
		log.Printf("[PIPELINE] run %s: %d downloadable documents discovered", runID, len(links))
	}

	type docJob struct {
		id   uuid.UUID
		link scrape.Link
	}
	jobs := make([]docJob, 0, len(links))
	for _, link := range links {
		docID, err := o.store.CreateDocument(ctx, &db.Document{
			ScrapeRunID:  runID,
			TalentID:     talentID,
			URL:          link.URL,
			LinkText:     link.Text,
			DetectedType: documents.GuessType(link),
		})
		if err != nil {
			log.Printf("[PIPELINE] warning: failed to record document %s: %v", link.URL, err)
			continue
		}
		jobs = append(jobs, docJob{id: docID, link: link})
	}

	var mu sync.Mutex
	var texts []extraction.DocumentText

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentDownloads)
	for _, job := range jobs {
		job := job
		g.Go(func() error {
			text, ok := o.ingestDocument(gctx, runID, job.id, job.link)
			if ok {
				mu.Lock()
				texts = append(texts, extraction.DocumentText{Name: job.link.Text, Text: text})
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	completed := len(texts)
	if err := o.store.MergeRunMetadata(ctx, runID, map[string]any{
		"documents_found":     len(links),
		"documents_extracted": completed,
	}); err != nil {
		log.Printf("[PIPELINE] warning: failed to record document metadata for run %s: %v", runID, err)
	}
	return texts
}

// ingestDocument downloads and extracts one document, recording progress on
// its row. Returns the extracted text and whether extraction succeeded.
func (o *Orchestrator) ingestDocument(ctx context.Context, runID, docID uuid.UUID, link scrape.Link) (string, bool) {
	result, err := documents.Download(ctx, link.URL, documents.GuessType(link))
	if err != nil {
		log.Printf("[PIPELINE] document download failed for %s: %v", link.URL, err)
		_ = o.store.SetDocumentDownloadFailed(ctx, docID, err.Error())
		return "", false
	}

	relPath := fmt.Sprintf("runs/%s/docs/%s.%s", runID, docID, result.DetectedType)
	storagePath, err := o.blobs.Save(relPath, result.Body)
	if err != nil {
		log.Printf("[PIPELINE] document store failed for %s: %v", link.URL, err)
		_ = o.store.SetDocumentDownloadFailed(ctx, docID, err.Error())
		return "", false
	}
	if err := o.store.SetDocumentDownloaded(ctx, docID, storagePath, result.DetectedType, result.Size); err != nil {
		log.Printf("[PIPELINE] warning: failed to record download for %s: %v", docID, err)
	}

	text, err := documents.ExtractText(ctx, o.blobs.Path(storagePath), result.DetectedType, o.verbose)
	if err != nil {
		log.Printf("[PIPELINE] document extraction failed for %s: %v", link.URL, err)
		_ = o.store.SetDocumentExtractionFailed(ctx, docID, err.Error())
		return "", false
	}
	if err := o.store.SetDocumentExtracted(ctx, docID, text); err != nil {
		log.Printf("[PIPELINE] warning: failed to record extraction for %s: %v", docID, err)
	}
	return text, true
}

func (o *Orchestrator) structureStage(ctx context.Context, talentID, runID uuid.UUID, page *scrape.PageData, docTexts []extraction.DocumentText) (*extraction.ExtractedProfile, error) {
	if err := o.store.SetPipelineStatus(ctx, talentID, db.PipelineExtracting); err != nil {
		return nil, fmt.Errorf("failed to mark pipeline extracting: %w", err)
	}
	if err := o.store.SetRunStatus(ctx, runID, db.RunProcessing); err != nil {
		return nil, fmt.Errorf("failed to mark run processing: %w", err)
	}

	corpus := extraction.BuildCorpus(page, docTexts)
	processedPath, err := o.blobs.Save(fmt.Sprintf("runs/%s/corpus.txt", runID), []byte(corpus))
	if err != nil {
		return nil, fmt.Errorf("failed to store corpus: %w", err)
	}
	if err := o.store.SetRunPayloads(ctx, runID, "", processedPath); err != nil {
		return nil, fmt.Errorf("failed to record corpus path: %w", err)
	}

	var extracted *extraction.ExtractedProfile
	stageStart := time.Now()
	err = Retry(ctx, RetryConfig{Attempts: structureAttempts, Delay: 5 * time.Second}, "structure", func(ctx context.Context) error {
		structureCtx, cancel := context.WithTimeout(ctx, structureTimeout)
		defer cancel()
		var exErr error
		extracted, exErr = o.structurer.Extract(structureCtx, corpus)
		return exErr
	})
	if err != nil {
		return nil, err
	}

	if err := o.store.MergeRunMetadata(ctx, runID, map[string]any{
		"corpus_chars": len(corpus),
		"structure_ms": time.Since(stageStart).Milliseconds(),
	}); err != nil {
		log.Printf("[PIPELINE] warning: failed to record structure metadata for run %s: %v", runID, err)
	}
	return extracted, nil
}

// writeStage resolves taxonomy links and persists the profile. No retry:
// the transaction either commits or the run fails.
func (o *Orchestrator) writeStage(ctx context.Context, talentID uuid.UUID, extracted *extraction.ExtractedProfile) error {
	links, err := o.resolver.Resolve(ctx, extracted)
	if err != nil {
		return fmt.Errorf("taxonomy resolution failed: %w", err)
	}
	return o.writer.Apply(ctx, talentID, extracted, links)
}

func (o *Orchestrator) embedStage(ctx context.Context, talentID uuid.UUID) error {
	return Retry(ctx, RetryConfig{Attempts: embedAttempts, Delay: 2 * time.Second}, "embed", func(ctx context.Context) error {
		embedCtx, cancel := context.WithTimeout(ctx, embedTimeout)
		defer cancel()
		return o.indexer.Index(embedCtx, talentID)
	})
}

// complete finishes a successful run, then starts a follow-up run when a
// trigger arrived while this one was active.
func (o *Orchestrator) complete(ctx context.Context, talentID, runID uuid.UUID, started time.Time) {
	if err := o.store.MergeRunMetadata(ctx, runID, map[string]any{
		"total_ms": time.Since(started).Milliseconds(),
	}); err != nil {
		log.Printf("[PIPELINE] warning: failed to record run timing for %s: %v", runID, err)
	}
	if err := o.store.SetRunStatus(ctx, runID, db.RunCompleted); err != nil {
		log.Printf("[PIPELINE] warning: failed to complete run %s: %v", runID, err)
	}
	if err := o.store.SetPipelineStatus(ctx, talentID, db.PipelineCompleted); err != nil {
		log.Printf("[PIPELINE] warning: failed to complete pipeline for %s: %v", talentID, err)
	}
	log.Printf("[PIPELINE] run %s completed for talent %s in %s", runID, talentID, time.Since(started).Round(time.Millisecond))

	pending := o.finish(talentID)
	if pending != "" {
		log.Printf("[PIPELINE] starting pending run for talent %s", talentID)
		if _, err := o.TriggerScrape(ctx, talentID, pending); err != nil {
			log.Printf("[PIPELINE] failed to start pending run for %s: %v", talentID, err)
		}
	}
}

// fail records the failure on both the run and the talent and releases the
// in-process slot. A pending trigger still gets its chance.
func (o *Orchestrator) fail(talentID, runID uuid.UUID, stage string, err error) {
	ctx := context.Background()
	msg := fmt.Sprintf("%s stage failed: %v", stage, err)
	log.Printf("[PIPELINE] run %s for talent %s: %s", runID, talentID, msg)

	if dbErr := o.store.MarkRunFailed(ctx, runID, msg); dbErr != nil {
		log.Printf("[PIPELINE] warning: failed to mark run %s failed: %v", runID, dbErr)
	}
	if dbErr := o.store.MarkPipelineFailed(ctx, talentID, msg); dbErr != nil {
		log.Printf("[PIPELINE] warning: failed to mark pipeline failed for %s: %v", talentID, dbErr)
	}

	pending := o.finish(talentID)
	if pending != "" {
		if _, trigErr := o.TriggerScrape(ctx, talentID, pending); trigErr != nil {
			log.Printf("[PIPELINE] failed to start pending run for %s: %v", talentID, trigErr)
		}
	}
}

// finish clears the inflight slot and returns any pending URL.
func (o *Orchestrator) finish(talentID uuid.UUID) string {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.inflight, talentID)
	pending := o.pendingURL[talentID]
	delete(o.pendingURL, talentID)
	return pending
}

func (o *Orchestrator) releaseClaim(talentID uuid.UUID, reason string) {
	if err := o.store.MarkPipelineFailed(context.Background(), talentID, reason); err != nil {
		log.Printf("[PIPELINE] warning: failed to release claim for %s: %v", talentID, err)
	}
}

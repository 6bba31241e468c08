// Package server provides the HTTP API over the ingestion pipeline and
// talent search.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/talent-scout/internal/db"
	"github.com/jonathan/talent-scout/internal/pipeline"
	"github.com/jonathan/talent-scout/internal/search"
	"github.com/jonathan/talent-scout/internal/server/ratelimit"
)

// Pipeline is the orchestration surface the handlers drive.
type Pipeline interface {
	TriggerScrape(ctx context.Context, talentID uuid.UUID, url string) (*pipeline.TriggerResult, error)
	Reprocess(ctx context.Context, talentID uuid.UUID) (*pipeline.TriggerResult, error)
	ReindexEmbedding(ctx context.Context, talentID uuid.UUID) error
	Status(ctx context.Context, talentID uuid.UUID) (*pipeline.StatusResult, error)
}

// Searcher runs talent queries.
type Searcher interface {
	Search(ctx context.Context, query string, pageSize int) ([]search.Result, error)
}

// ProfileStore reads profile data and answers DB health checks.
type ProfileStore interface {
	Ping(ctx context.Context) error
	GetFullProfile(ctx context.Context, id uuid.UUID) (*db.FullProfile, error)
}

// BrowserHealth reports the JS-render path's availability.
type BrowserHealth interface {
	Health(ctx context.Context) error
}

// Server is the HTTP server.
type Server struct {
	httpServer  *http.Server
	store       ProfileStore
	pipe        Pipeline
	searcher    Searcher
	browser     BrowserHealth
	rateLimiter *ratelimit.Limiter
}

// Config holds server configuration.
type Config struct {
	Port int
}

// New creates a server wired to the given components.
func New(cfg Config, store ProfileStore, pipe Pipeline, searcher Searcher, browser BrowserHealth) *Server {
	s := &Server{
		store:       store,
		pipe:        pipe,
		searcher:    searcher,
		browser:     browser,
		rateLimiter: ratelimit.NewLimiter(ratelimit.LoadConfig()),
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(s.routes()))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /talents/{id}/scrape", s.handleTriggerScrape)
	mux.HandleFunc("POST /talents/{id}/reprocess", s.handleReprocess)
	mux.HandleFunc("POST /talents/{id}/reindex", s.handleReindex)
	mux.HandleFunc("GET /talents/{id}/status", s.handleStatus)
	mux.HandleFunc("GET /talents/{id}", s.handleGetProfile)
	mux.HandleFunc("GET /talents", s.handleSearch)
	mux.HandleFunc("GET /search", s.handleSearch)
	return mux
}

// Start listens until an interrupt, then shuts down gracefully.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.rateLimiter.Stop()
	log.Println("Server stopped")
	return nil
}

// Handler exposes the routed handler for tests.
func (s *Server) Handler() http.Handler {
	return s.routes()
}

func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := clientIP(r)
		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)
		if info.Limit > 0 {
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		}
		if !allowed {
			w.Header().Set("Retry-After", strconv.Itoa(int(info.RetryAfter.Seconds())))
			s.errorResponse(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth reports database and browser-service health. The server stays
// "ok" when only the browser path is degraded: reads and search still work.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := map[string]string{"status": "ok", "database": "ok", "browser": "ok"}
	code := http.StatusOK
	if err := s.store.Ping(ctx); err != nil {
		status["status"] = "degraded"
		status["database"] = err.Error()
		code = http.StatusServiceUnavailable
	}
	if err := s.browser.Health(ctx); err != nil {
		status["browser"] = err.Error()
	}
	s.jsonResponse(w, code, status)
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

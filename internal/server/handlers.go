package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/talent-scout/internal/pipeline"
)

// ScrapeRequest is the body for POST /talents/{id}/scrape.
type ScrapeRequest struct {
	SourceURL string `json:"source_url"`
}

func (s *Server) handleTriggerScrape(w http.ResponseWriter, r *http.Request) {
	talentID, ok := s.pathID(w, r)
	if !ok {
		return
	}

	var req ScrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if !validSourceURL(req.SourceURL) {
		s.errorResponse(w, http.StatusBadRequest, "source_url must be a valid http(s) URL")
		return
	}

	result, err := s.pipe.TriggerScrape(r.Context(), talentID, req.SourceURL)
	if err != nil {
		if errors.Is(err, pipeline.ErrNotFound) {
			s.errorResponse(w, http.StatusNotFound, "talent not found")
			return
		}
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusAccepted, result)
}

func (s *Server) handleReprocess(w http.ResponseWriter, r *http.Request) {
	talentID, ok := s.pathID(w, r)
	if !ok {
		return
	}

	result, err := s.pipe.Reprocess(r.Context(), talentID)
	if err != nil {
		if errors.Is(err, pipeline.ErrNotFound) {
			s.errorResponse(w, http.StatusNotFound, "talent not found")
			return
		}
		if strings.Contains(err.Error(), "no stored payload") {
			s.errorResponse(w, http.StatusConflict, err.Error())
			return
		}
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusAccepted, result)
}

// handleReindex refreshes a talent's embedding vector in place. This is the
// path for direct profile edits: only the indexer runs, never the scrape or
// structuring stages.
func (s *Server) handleReindex(w http.ResponseWriter, r *http.Request) {
	talentID, ok := s.pathID(w, r)
	if !ok {
		return
	}

	if err := s.pipe.ReindexEmbedding(r.Context(), talentID); err != nil {
		if errors.Is(err, pipeline.ErrNotFound) {
			s.errorResponse(w, http.StatusNotFound, "talent not found")
			return
		}
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "reindexed"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	talentID, ok := s.pathID(w, r)
	if !ok {
		return
	}

	status, err := s.pipe.Status(r.Context(), talentID)
	if err != nil {
		if errors.Is(err, pipeline.ErrNotFound) {
			s.errorResponse(w, http.StatusNotFound, "talent not found")
			return
		}
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, status)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	talentID, ok := s.pathID(w, r)
	if !ok {
		return
	}

	profile, err := s.store.GetFullProfile(r.Context(), talentID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	if profile == nil {
		s.errorResponse(w, http.StatusNotFound, "talent not found")
		return
	}
	s.jsonResponse(w, http.StatusOK, profile)
}

// handleSearch serves both GET /search?q=... and the plain GET /talents
// listing (empty query).
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	pageSize := 20
	if raw := r.URL.Query().Get("page_size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			s.errorResponse(w, http.StatusBadRequest, "page_size must be an integer between 1 and 100")
			return
		}
		pageSize = n
	}

	results, err := s.searcher.Search(r.Context(), query, pageSize)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"results": results,
		"count":   len(results),
	})
}

// pathID parses the {id} path segment, writing a 400 on failure.
func (s *Server) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid talent id")
		return uuid.Nil, false
	}
	return id, true
}

func validSourceURL(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}

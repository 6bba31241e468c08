package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/talent-scout/internal/db"
	"github.com/jonathan/talent-scout/internal/pipeline"
	"github.com/jonathan/talent-scout/internal/search"
)

type fakePipeline struct {
	triggered  []string
	notFound   bool
	reprocess  *pipeline.TriggerResult
	reprocErr  error
	lastTalent uuid.UUID
	reindexed  []uuid.UUID
}

func (p *fakePipeline) TriggerScrape(_ context.Context, talentID uuid.UUID, url string) (*pipeline.TriggerResult, error) {
	if p.notFound {
		return nil, pipeline.ErrNotFound
	}
	p.lastTalent = talentID
	p.triggered = append(p.triggered, url)
	return &pipeline.TriggerResult{RunID: uuid.New(), Started: true}, nil
}

func (p *fakePipeline) Reprocess(context.Context, uuid.UUID) (*pipeline.TriggerResult, error) {
	if p.notFound {
		return nil, pipeline.ErrNotFound
	}
	return p.reprocess, p.reprocErr
}

func (p *fakePipeline) ReindexEmbedding(_ context.Context, talentID uuid.UUID) error {
	if p.notFound {
		return pipeline.ErrNotFound
	}
	p.reindexed = append(p.reindexed, talentID)
	return nil
}

func (p *fakePipeline) Status(_ context.Context, talentID uuid.UUID) (*pipeline.StatusResult, error) {
	if p.notFound {
		return nil, pipeline.ErrNotFound
	}
	return &pipeline.StatusResult{
		Talent: &db.Talent{ID: talentID, PipelineStatus: db.PipelineCompleted},
	}, nil
}

type fakeProfileStore struct {
	profile *db.FullProfile
	pingErr error
}

func (s *fakeProfileStore) Ping(context.Context) error { return s.pingErr }

func (s *fakeProfileStore) GetFullProfile(context.Context, uuid.UUID) (*db.FullProfile, error) {
	return s.profile, nil
}

type fakeSearcher struct {
	results []search.Result
	query   string
	size    int
}

func (s *fakeSearcher) Search(_ context.Context, query string, pageSize int) ([]search.Result, error) {
	s.query = query
	s.size = pageSize
	return s.results, nil
}

type okBrowser struct{ err error }

func (b okBrowser) Health(context.Context) error { return b.err }

func newTestServer(pipe *fakePipeline, store *fakeProfileStore, searcher *fakeSearcher, browser BrowserHealth) *Server {
	if store == nil {
		store = &fakeProfileStore{}
	}
	if searcher == nil {
		searcher = &fakeSearcher{}
	}
	if browser == nil {
		browser = okBrowser{}
	}
	return New(Config{Port: 0}, store, pipe, searcher, browser)
}

func TestHandleTriggerScrape(t *testing.T) {
	pipe := &fakePipeline{}
	srv := newTestServer(pipe, nil, nil, nil)
	id := uuid.New()

	body := strings.NewReader(`{"source_url": "https://ada.example.com"}`)
	req := httptest.NewRequest(http.MethodPost, "/talents/"+id.String()+"/scrape", body)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, []string{"https://ada.example.com"}, pipe.triggered)
	assert.Equal(t, id, pipe.lastTalent)

	var resp pipeline.TriggerResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Started)
}

func TestHandleTriggerScrape_BadRequests(t *testing.T) {
	srv := newTestServer(&fakePipeline{}, nil, nil, nil)
	id := uuid.New()

	tests := []struct {
		name string
		path string
		body string
	}{
		{"invalid id", "/talents/not-a-uuid/scrape", `{"source_url": "https://x.test"}`},
		{"missing url", "/talents/" + id.String() + "/scrape", `{}`},
		{"non-http url", "/talents/" + id.String() + "/scrape", `{"source_url": "ftp://x.test"}`},
		{"malformed body", "/talents/" + id.String() + "/scrape", `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHandleTriggerScrape_NotFound(t *testing.T) {
	srv := newTestServer(&fakePipeline{notFound: true}, nil, nil, nil)

	body := strings.NewReader(`{"source_url": "https://x.test"}`)
	req := httptest.NewRequest(http.MethodPost, "/talents/"+uuid.NewString()+"/scrape", body)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleReprocess_NoPayloadConflict(t *testing.T) {
	pipe := &fakePipeline{reprocErr: fmt.Errorf("no stored payload to reprocess for talent x")}
	srv := newTestServer(pipe, nil, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/talents/"+uuid.NewString()+"/reprocess", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandleReindex(t *testing.T) {
	pipe := &fakePipeline{}
	srv := newTestServer(pipe, nil, nil, nil)
	id := uuid.New()

	req := httptest.NewRequest(http.MethodPost, "/talents/"+id.String()+"/reindex", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []uuid.UUID{id}, pipe.reindexed)
}

func TestHandleReindex_NotFound(t *testing.T) {
	srv := newTestServer(&fakePipeline{notFound: true}, nil, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/talents/"+uuid.NewString()+"/reindex", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleStatus(t *testing.T) {
	srv := newTestServer(&fakePipeline{}, nil, nil, nil)
	id := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/talents/"+id.String()+"/status", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var status pipeline.StatusResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&status))
	assert.Equal(t, db.PipelineCompleted, status.Talent.PipelineStatus)
}

func TestHandleGetProfile_NotFound(t *testing.T) {
	srv := newTestServer(&fakePipeline{}, &fakeProfileStore{profile: nil}, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/talents/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleSearch(t *testing.T) {
	score := 90
	searcher := &fakeSearcher{results: []search.Result{
		{Talent: db.Talent{Name: "Jane Doe"}, Score: &score},
	}}
	srv := newTestServer(&fakePipeline{}, nil, searcher, nil)

	req := httptest.NewRequest(http.MethodGet, "/search?q=video+editor&page_size=5", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "video editor", searcher.query)
	assert.Equal(t, 5, searcher.size)

	var resp struct {
		Results []search.Result `json:"results"`
		Count   int             `json:"count"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "Jane Doe", resp.Results[0].Talent.Name)
}

func TestHandleSearch_InvalidPageSize(t *testing.T) {
	srv := newTestServer(&fakePipeline{}, nil, &fakeSearcher{}, nil)

	for _, raw := range []string{"0", "-1", "101", "abc"} {
		req := httptest.NewRequest(http.MethodGet, "/search?page_size="+raw, nil)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "page_size=%s", raw)
	}
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(&fakePipeline{}, &fakeProfileStore{}, nil, okBrowser{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var status map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&status))
	assert.Equal(t, "ok", status["status"])
}

func TestHandleHealth_DatabaseDown(t *testing.T) {
	store := &fakeProfileStore{pingErr: fmt.Errorf("connection refused")}
	srv := newTestServer(&fakePipeline{}, store, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandleHealth_BrowserDegradedStaysOK(t *testing.T) {
	srv := newTestServer(&fakePipeline{}, &fakeProfileStore{}, nil, okBrowser{err: fmt.Errorf("browser offline")})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var status map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&status))
	assert.Contains(t, status["browser"], "offline")
}

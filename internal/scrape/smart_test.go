package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRenderer records whether the JS-render path was invoked.
type fakeRenderer struct {
	called    bool
	healthErr error
	data      *PageData
	err       error
}

func (f *fakeRenderer) Health(context.Context) error { return f.healthErr }

func (f *fakeRenderer) Render(_ context.Context, url string, _ Options) (*PageData, error) {
	f.called = true
	if f.err != nil {
		return nil, f.err
	}
	if f.data != nil {
		return f.data, nil
	}
	return &PageData{URL: url, FullText: "rendered content", Method: MethodBrowser}, nil
}

func TestSufficient(t *testing.T) {
	tests := []struct {
		name string
		data PageData
		want bool
	}{
		{
			name: "long text alone",
			data: PageData{FullText: strings.Repeat("a", 501)},
			want: true,
		},
		{
			name: "exactly 500 chars is not enough",
			data: PageData{FullText: strings.Repeat("a", 500)},
			want: false,
		},
		{
			name: "links and images",
			data: PageData{
				FullText: "short",
				Links:    []Link{{URL: "https://x.test/a"}},
				Images:   []string{"https://x.test/img.png"},
			},
			want: true,
		},
		{
			name: "links without images",
			data: PageData{FullText: "short", Links: []Link{{URL: "https://x.test/a"}}},
			want: false,
		},
		{
			name: "headings with modest text",
			data: PageData{FullText: strings.Repeat("b", 101), Headings: []string{"About Me"}},
			want: true,
		},
		{
			name: "headings with too little text",
			data: PageData{FullText: strings.Repeat("b", 80), Headings: []string{"About Me"}},
			want: false,
		},
		{
			name: "short text no structure triggers fallback",
			data: PageData{FullText: strings.Repeat("c", 50)},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sufficient(&tt.data))
		})
	}
}

func TestScrape_StaticAccepted(t *testing.T) {
	long := strings.Repeat("Portfolio text. ", 100)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html><head><title>Ada</title></head><body><p>" + long + "</p></body></html>"))
	}))
	defer server.Close()

	renderer := &fakeRenderer{}
	svc := NewServiceWithRenderer(renderer, false)

	data, err := svc.Scrape(context.Background(), server.URL, Options{})
	require.NoError(t, err)
	assert.Equal(t, MethodStatic, data.Method)
	assert.False(t, renderer.called, "browser should not be invoked for sufficient static content")
}

func TestScrape_ShortContentFallsBackToBrowser(t *testing.T) {
	// 50 chars of text, no links, no images: must invoke JS rendering.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html><body><p>" + strings.Repeat("x", 50) + "</p></body></html>"))
	}))
	defer server.Close()

	renderer := &fakeRenderer{}
	svc := NewServiceWithRenderer(renderer, false)

	data, err := svc.Scrape(context.Background(), server.URL, Options{})
	require.NoError(t, err)
	assert.True(t, renderer.called)
	assert.Equal(t, MethodBrowser, data.Method)
}

func TestScrape_StaticErrorFallsBackToBrowser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	renderer := &fakeRenderer{}
	svc := NewServiceWithRenderer(renderer, false)

	data, err := svc.Scrape(context.Background(), server.URL, Options{})
	require.NoError(t, err)
	assert.True(t, renderer.called)
	assert.Equal(t, "rendered content", data.FullText)
}

func TestParseHTML(t *testing.T) {
	html := `
	<html>
		<head>
			<title>Ada Lovelace — Editor</title>
			<meta name="description" content="Video editor portfolio">
		</head>
		<body>
			<nav>Menu</nav>
			<h1>Ada Lovelace</h1>
			<h2>Selected Work</h2>
			<p>I cut launch films and shorts.</p>
			<a href="/resume.pdf">Download my resume</a>
			<a href="https://drive.google.com/file/d/abc123/view">Portfolio deck</a>
			<a href="#section">skip</a>
			<a href="mailto:ada@example.com">email</a>
			<img src="/stills/frame.png">
			<video src="/reel.mp4"></video>
		</body>
	</html>`

	data, err := ParseHTML("https://ada.example.com/work", html)
	require.NoError(t, err)

	assert.Equal(t, "Ada Lovelace — Editor", data.Title)
	assert.Equal(t, "Video editor portfolio", data.Meta["description"])
	assert.Equal(t, []string{"Ada Lovelace", "Selected Work"}, data.Headings)
	assert.Contains(t, data.FullText, "launch films")
	assert.NotContains(t, data.FullText, "Menu")

	urls := make([]string, 0, len(data.Links))
	for _, l := range data.Links {
		urls = append(urls, l.URL)
	}
	assert.Contains(t, urls, "https://ada.example.com/resume.pdf")
	assert.Contains(t, urls, "https://drive.google.com/file/d/abc123/view")
	assert.Len(t, urls, 2, "anchors and mailto links must be dropped")

	assert.Equal(t, []string{"https://ada.example.com/stills/frame.png"}, data.Images)
	assert.Equal(t, []string{"https://ada.example.com/reel.mp4"}, data.Videos)
}

func TestRemoteClient_Health(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/health", r.URL.Path)
		_, _ = w.Write([]byte(`{"status": "ok", "browser": "running", "pages": 2}`))
	}))
	defer server.Close()

	client := NewRemoteClient(server.URL)
	assert.NoError(t, client.Health(context.Background()))
}

func TestRemoteClient_HealthUnhealthy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status": "degraded"}`))
	}))
	defer server.Close()

	client := NewRemoteClient(server.URL)
	assert.Error(t, client.Health(context.Background()))
}

func TestRemoteClient_Render(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/scrape", r.URL.Path)
		_, _ = w.Write([]byte(`{"success": true, "data": {"html": "<html><head><title>Rendered</title></head><body><p>SPA content</p></body></html>", "title": "Rendered", "url": "https://spa.test"}}`))
	}))
	defer server.Close()

	client := NewRemoteClient(server.URL)
	data, err := client.Render(context.Background(), "https://spa.test", Options{ScrollToBottom: true})
	require.NoError(t, err)
	assert.Equal(t, MethodBrowser, data.Method)
	assert.Contains(t, data.FullText, "SPA content")
}

func TestRemoteClient_RenderFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"success": false, "error": "navigation timeout"}`))
	}))
	defer server.Close()

	client := NewRemoteClient(server.URL)
	_, err := client.Render(context.Background(), "https://spa.test", Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "navigation timeout")
}

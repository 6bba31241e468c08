package documents

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownload_PDF(t *testing.T) {
	body := append([]byte("%PDF-1.7\n"), bytes.Repeat([]byte("x"), 200)...)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		_, _ = w.Write(body)
	}))
	defer server.Close()

	result, err := Download(context.Background(), server.URL+"/resume.txt", "txt")
	require.NoError(t, err)
	assert.Equal(t, "pdf", result.DetectedType, "magic number beats URL type")
	assert.Equal(t, int64(len(body)), result.Size)
}

func TestDownload_TooSmall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("Not Found"))
	}))
	defer server.Close()

	_, err := Download(context.Background(), server.URL+"/resume.pdf", "pdf")
	require.Error(t, err)
	var dlErr *DownloadError
	require.ErrorAs(t, err, &dlErr)
	assert.Contains(t, dlErr.Message, "too small")
}

func TestDownload_TooLarge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		chunk := bytes.Repeat([]byte("a"), 1024*1024)
		for i := 0; i < 51; i++ {
			if _, err := w.Write(chunk); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	_, err := Download(context.Background(), server.URL+"/huge.pdf", "pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cap")
}

func TestDownload_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	_, err := Download(context.Background(), server.URL+"/resume.pdf", "pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestDownload_TextDocument(t *testing.T) {
	text := strings.Repeat("Plain resume text. ", 20)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(text))
	}))
	defer server.Close()

	result, err := Download(context.Background(), server.URL+"/resume", "")
	require.NoError(t, err)
	assert.Equal(t, "txt", result.DetectedType)
}

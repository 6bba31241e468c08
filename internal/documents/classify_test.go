package documents

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/talent-scout/internal/scrape"
)

func TestIsDownloadable(t *testing.T) {
	tests := []struct {
		name string
		link scrape.Link
		want bool
	}{
		{"pdf extension", scrape.Link{URL: "https://x.test/files/resume.pdf"}, true},
		{"docx extension with query", scrape.Link{URL: "https://x.test/cv.docx?v=2"}, true},
		{"drive link without extension", scrape.Link{URL: "https://drive.google.com/file/d/abc/view"}, true},
		{"dropbox link", scrape.Link{URL: "https://www.dropbox.com/s/xyz/deck"}, true},
		{"resume keyword in anchor text", scrape.Link{URL: "https://x.test/about", Text: "View my Resume"}, true},
		{"download keyword", scrape.Link{URL: "https://x.test/get", Text: "Download here"}, true},
		{"plain page link", scrape.Link{URL: "https://x.test/blog", Text: "Blog"}, false},
		{"image is not a document", scrape.Link{URL: "https://x.test/photo.png", Text: "Photo"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDownloadable(tt.link))
		})
	}
}

func TestGuessType(t *testing.T) {
	assert.Equal(t, "pdf", GuessType(scrape.Link{URL: "https://x.test/resume.pdf"}))
	assert.Equal(t, "docx", GuessType(scrape.Link{URL: "https://x.test/cv.docx"}))
	assert.Equal(t, "docx", GuessType(scrape.Link{URL: "https://drive.google.com/file/d/a/view", Text: "cv docx"}))
	assert.Equal(t, "doc", GuessType(scrape.Link{URL: "https://x.test/file", Text: "my doc"}))
	// Unknown links default to pdf; sniffing corrects this after download.
	assert.Equal(t, "pdf", GuessType(scrape.Link{URL: "https://drive.google.com/file/d/a/view", Text: "portfolio"}))
}

func TestDiscoverDocuments_DedupesByRewrittenURL(t *testing.T) {
	links := []scrape.Link{
		{URL: "https://drive.google.com/file/d/abc123/view", Text: "Resume"},
		{URL: "https://drive.google.com/uc?export=download&id=abc123", Text: "Resume (direct)"},
		{URL: "https://x.test/resume.pdf", Text: "PDF"},
		{URL: "https://x.test/blog", Text: "Blog"},
	}

	docs := DiscoverDocuments(links)
	assert.Len(t, docs, 2, "both drive links rewrite to the same direct URL")
}

func TestRewriteCloudURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "drive file view",
			in:   "https://drive.google.com/file/d/1AbC_dEf/view?usp=sharing",
			want: "https://drive.google.com/uc?export=download&id=1AbC_dEf",
		},
		{
			name: "drive open with id param",
			in:   "https://drive.google.com/open?id=1AbC_dEf",
			want: "https://drive.google.com/uc?export=download&id=1AbC_dEf",
		},
		{
			name: "google docs export",
			in:   "https://docs.google.com/document/d/1AbC_dEf/edit",
			want: "https://docs.google.com/document/d/1AbC_dEf/export?format=txt",
		},
		{
			name: "dropbox forces dl=1",
			in:   "https://www.dropbox.com/s/xyz/resume.pdf?dl=0",
			want: "https://www.dropbox.com/s/xyz/resume.pdf?dl=1",
		},
		{
			name: "non-cloud URL untouched",
			in:   "https://x.test/resume.pdf",
			want: "https://x.test/resume.pdf",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RewriteCloudURL(tt.in))
		})
	}
}

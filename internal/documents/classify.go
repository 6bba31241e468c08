// Package documents discovers downloadable documents among scraped links,
// downloads them, detects their true type, and extracts text through a
// cascade of extraction strategies.
package documents

import (
	"net/url"
	"path"
	"strings"

	"github.com/jonathan/talent-scout/internal/scrape"
)

// documentExtensions are URL suffixes treated as downloadable documents.
var documentExtensions = map[string]string{
	".pdf":  "pdf",
	".doc":  "doc",
	".docx": "docx",
	".txt":  "txt",
	".rtf":  "rtf",
	".odt":  "odt",
}

// cloudStorageHosts are host suffixes of cloud-storage services whose links
// are treated as downloadable regardless of extension.
var cloudStorageHosts = []string{
	"drive.google.com",
	"docs.google.com",
	"dropbox.com",
	"www.dropbox.com",
	"onedrive.live.com",
	"1drv.ms",
	"sharepoint.com",
}

// documentKeywords in anchor text mark a link as downloadable
// (case-insensitive substring match).
var documentKeywords = []string{
	"resume", "cv", "portfolio", "document", "pdf",
	"download", "file", "attachment", "certificate", "report",
}

// IsDownloadable reports whether a scraped link should be treated as a
// downloadable document: known extension, cloud-storage host, or document
// keyword in the anchor text.
func IsDownloadable(link scrape.Link) bool {
	if extensionType(link.URL) != "" {
		return true
	}
	if isCloudStorageURL(link.URL) {
		return true
	}
	text := strings.ToLower(link.Text)
	for _, kw := range documentKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// GuessType guesses a document's type from its URL extension, then from
// anchor-text keywords, defaulting to "pdf". The download stage overrides
// this with magic-number sniffing on the body.
func GuessType(link scrape.Link) string {
	if t := extensionType(link.URL); t != "" {
		return t
	}
	text := strings.ToLower(link.Text)
	switch {
	case strings.Contains(text, "docx"):
		return "docx"
	case strings.Contains(text, "doc"):
		return "doc"
	case strings.Contains(text, "txt") || strings.Contains(text, "text"):
		return "txt"
	}
	return "pdf"
}

// DiscoverDocuments filters page links down to downloadable documents,
// deduplicated by rewritten URL.
func DiscoverDocuments(links []scrape.Link) []scrape.Link {
	seen := map[string]bool{}
	var docs []scrape.Link
	for _, link := range links {
		if !IsDownloadable(link) {
			continue
		}
		direct := RewriteCloudURL(link.URL)
		if seen[direct] {
			continue
		}
		seen[direct] = true
		docs = append(docs, link)
	}
	return docs
}

// RewriteCloudURL rewrites cloud-storage file-view URLs to their
// direct-download form. Non-cloud URLs pass through unchanged.
func RewriteCloudURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	host := strings.ToLower(parsed.Host)

	switch {
	case strings.HasSuffix(host, "drive.google.com"):
		// https://drive.google.com/file/d/<id>/view -> uc?export=download&id=<id>
		if id := driveFileID(parsed.Path); id != "" {
			return "https://drive.google.com/uc?export=download&id=" + id
		}
		if id := parsed.Query().Get("id"); id != "" {
			return "https://drive.google.com/uc?export=download&id=" + id
		}
	case strings.HasSuffix(host, "docs.google.com"):
		// https://docs.google.com/document/d/<id>/... -> export as plain text
		if id := driveFileID(parsed.Path); id != "" {
			return "https://docs.google.com/document/d/" + id + "/export?format=txt"
		}
	case strings.HasSuffix(host, "dropbox.com"):
		q := parsed.Query()
		q.Set("dl", "1")
		parsed.RawQuery = q.Encode()
		return parsed.String()
	case host == "1drv.ms" || strings.HasSuffix(host, "onedrive.live.com"):
		q := parsed.Query()
		q.Set("download", "1")
		parsed.RawQuery = q.Encode()
		return parsed.String()
	}
	return rawURL
}

// driveFileID pulls the file ID out of a /file/d/<id>/... or
// /document/d/<id>/... path.
func driveFileID(urlPath string) string {
	parts := strings.Split(strings.Trim(urlPath, "/"), "/")
	for i, part := range parts {
		if part == "d" && i+1 < len(parts) {
			return parts[i+1]
		}
	}
	return ""
}

func extensionType(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	ext := strings.ToLower(path.Ext(parsed.Path))
	return documentExtensions[ext]
}

func isCloudStorageURL(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(parsed.Host)
	for _, suffix := range cloudStorageHosts {
		if host == suffix || strings.HasSuffix(host, "."+suffix) {
			return true
		}
	}
	return false
}

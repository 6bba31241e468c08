package scrape

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ParseHTML normalizes raw HTML into PageData: links resolved against the
// page URL, meta tags, images, videos, headings, and cleaned body text.
func ParseHTML(pageURL, html string) (*PageData, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	base, _ := url.Parse(pageURL)

	data := &PageData{
		URL:   pageURL,
		Title: strings.TrimSpace(doc.Find("title").First().Text()),
		Meta:  map[string]string{},
	}

	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		name, _ := s.Attr("name")
		if name == "" {
			name, _ = s.Attr("property")
		}
		content, _ := s.Attr("content")
		if name != "" && content != "" {
			data.Meta[name] = content
		}
	})

	seen := map[string]bool{}
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		abs := resolveURL(base, href)
		if abs == "" || seen[abs] {
			return
		}
		seen[abs] = true
		data.Links = append(data.Links, Link{
			URL:  abs,
			Text: strings.TrimSpace(s.Text()),
		})
	})

	doc.Find("img[src]").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		if abs := resolveURL(base, src); abs != "" {
			data.Images = append(data.Images, abs)
		}
	})

	doc.Find("video source[src], video[src], iframe[src]").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		if abs := resolveURL(base, src); abs != "" {
			data.Videos = append(data.Videos, abs)
		}
	})

	doc.Find("h1, h2, h3").Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			data.Headings = append(data.Headings, text)
		}
	})

	// Remove noise before text extraction
	doc.Find("nav, footer, header, script, style, noscript, .ad, .advertisement, .cookie-banner, .popup").Remove()

	doc.Find("p, li").Each(func(_ int, s *goquery.Selection) {
		if text := cleanWhitespace(s.Text()); text != "" {
			data.Paragraphs = append(data.Paragraphs, text)
		}
	})

	body := doc.Find("body")
	data.FullText = cleanWhitespace(body.Text())

	return data, nil
}

// resolveURL makes href absolute against the page base, dropping anchors,
// javascript: pseudo-links, and mailto links.
func resolveURL(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") ||
		strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "mailto:") {
		return ""
	}
	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base != nil {
		parsed = base.ResolveReference(parsed)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return ""
	}
	parsed.Fragment = ""
	return parsed.String()
}

// cleanWhitespace collapses runs of whitespace and drops blank lines.
func cleanWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	var cleaned []string
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}

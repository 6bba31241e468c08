package documents

import (
	"bytes"
	"unicode/utf8"
)

// Magic-number prefixes for supported document types.
var (
	magicPDF = []byte("%PDF")
	magicZIP = []byte("PK\x03\x04") // docx (and other OOXML) containers
	magicOLE = []byte{0xD0, 0xCF, 0x11, 0xE0} // legacy .doc compound files
)

// DetectType classifies a downloaded byte stream by magic-number sniffing.
// The claimed URL extension is only a fallback when the body is ambiguous:
// a stream beginning with %PDF is "pdf" regardless of what the URL said.
func DetectType(body []byte, urlType string) string {
	switch {
	case bytes.HasPrefix(body, magicPDF):
		return "pdf"
	case bytes.HasPrefix(body, magicZIP):
		return "docx"
	case bytes.HasPrefix(body, magicOLE):
		return "doc"
	}

	if looksLikeText(body) {
		return "txt"
	}

	if urlType != "" {
		return urlType
	}
	return "pdf"
}

// looksLikeText reports whether the first chunk of the body is valid UTF-8
// with a high proportion of printable characters.
func looksLikeText(body []byte) bool {
	if len(body) == 0 {
		return false
	}
	sample := body
	if len(sample) > 1024 {
		sample = sample[:1024]
	}
	if !utf8.Valid(sample) {
		return false
	}

	printable := 0
	total := 0
	for _, r := range string(sample) {
		total++
		if r == '\n' || r == '\r' || r == '\t' || (r >= 0x20 && r != 0x7f) {
			printable++
		}
	}
	return total > 0 && float64(printable)/float64(total) > 0.95
}

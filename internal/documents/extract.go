package documents

import (
	"archive/zip"
	"bytes"
	"compress/flate"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"regexp"
	"strings"
)

// maxFallbackSize bounds the in-memory PDF stream-decode fallback so a large
// file cannot exhaust memory when the external tools are unavailable.
const maxFallbackSize = 10 * 1024 * 1024

// ErrExtractionExhausted is returned when every strategy in the cascade fails.
var ErrExtractionExhausted = fmt.Errorf("all extraction strategies failed")

// ExtractText extracts plain text from a downloaded document at filePath.
// Each strategy's failure falls through to the next; only when the whole
// cascade is exhausted does the document's extraction fail, and that failure
// is scoped to the document, never to the pipeline run.
func ExtractText(ctx context.Context, filePath, docType string, verbose bool) (string, error) {
	var strategies []extractStrategy
	switch docType {
	case "pdf":
		strategies = []extractStrategy{extractPDFTool, extractPDFScript, extractPDFStream}
	case "docx":
		strategies = []extractStrategy{extractDocxZip, extractWithPandoc, extractDocxScript}
	case "doc":
		strategies = []extractStrategy{extractDocAntiword, extractWithPandoc, extractDocScript}
	case "txt":
		strategies = []extractStrategy{extractPlainText}
	case "rtf":
		strategies = []extractStrategy{extractWithPandoc, extractRTFStrip}
	case "odt":
		strategies = []extractStrategy{extractODTZip, extractWithPandoc}
	default:
		strategies = []extractStrategy{extractPlainText}
	}

	var lastErr error
	for _, strategy := range strategies {
		text, err := strategy(ctx, filePath)
		if err == nil && strings.TrimSpace(text) != "" {
			return strings.TrimSpace(text), nil
		}
		if err != nil {
			lastErr = err
			if verbose {
				log.Printf("[EXTRACT] strategy failed for %s: %v", filePath, err)
			}
		}
	}

	if lastErr != nil {
		return "", fmt.Errorf("%w: %v", ErrExtractionExhausted, lastErr)
	}
	return "", ErrExtractionExhausted
}

type extractStrategy func(ctx context.Context, filePath string) (string, error)

// extractPDFTool shells out to pdftotext, the preferred PDF path.
func extractPDFTool(ctx context.Context, filePath string) (string, error) {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return "", fmt.Errorf("pdftotext not available: %w", err)
	}
	out, err := exec.CommandContext(ctx, "pdftotext", "-layout", filePath, "-").Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext failed: %w", err)
	}
	return string(out), nil
}

// extractPDFScript runs a small pdfminer script as the second PDF path.
func extractPDFScript(ctx context.Context, filePath string) (string, error) {
	if _, err := exec.LookPath("python3"); err != nil {
		return "", fmt.Errorf("python3 not available: %w", err)
	}
	script := "import sys; from pdfminer.high_level import extract_text; sys.stdout.write(extract_text(sys.argv[1]))"
	out, err := exec.CommandContext(ctx, "python3", "-c", script, filePath).Output()
	if err != nil {
		return "", fmt.Errorf("pdfminer script failed: %w", err)
	}
	return string(out), nil
}

// pdfTextRe matches parenthesized string operands of Tj/TJ show operators.
var pdfTextRe = regexp.MustCompile(`\(((?:[^()\\]|\\.)*)\)\s*(?:Tj|TJ|')`)

// extractPDFStream is the best-effort last resort: inflate the PDF's content
// streams and pull show-text operands out with a regex. Bounded by
// maxFallbackSize to avoid unbounded memory use.
func extractPDFStream(_ context.Context, filePath string) (string, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return "", err
	}
	if info.Size() > maxFallbackSize {
		return "", fmt.Errorf("file too large for stream fallback (%d bytes)", info.Size())
	}

	raw, err := os.ReadFile(filePath)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	collect := func(data []byte) {
		for _, m := range pdfTextRe.FindAllSubmatch(data, -1) {
			sb.Write(unescapePDFString(m[1]))
			sb.WriteByte(' ')
		}
	}

	// Uncompressed streams first, then every FlateDecode stream we can inflate.
	collect(raw)
	for _, stream := range pdfStreams(raw) {
		reader := flate.NewReader(bytes.NewReader(skipZlibHeader(stream)))
		inflated, err := io.ReadAll(io.LimitReader(reader, maxFallbackSize))
		_ = reader.Close()
		if err == nil {
			collect(inflated)
		}
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("no text recovered from PDF streams")
	}
	return text, nil
}

// pdfStreams slices out stream...endstream payloads.
func pdfStreams(raw []byte) [][]byte {
	var streams [][]byte
	rest := raw
	for {
		start := bytes.Index(rest, []byte("stream"))
		if start < 0 {
			break
		}
		rest = rest[start+len("stream"):]
		rest = bytes.TrimLeft(rest, "\r\n")
		end := bytes.Index(rest, []byte("endstream"))
		if end < 0 {
			break
		}
		streams = append(streams, rest[:end])
		rest = rest[end:]
	}
	return streams
}

// skipZlibHeader drops the two-byte zlib header when present so flate can
// read the deflate payload.
func skipZlibHeader(data []byte) []byte {
	if len(data) > 2 && data[0] == 0x78 {
		return data[2:]
	}
	return data
}

func unescapePDFString(s []byte) []byte {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
			switch s[i] {
			case 'n':
				out = append(out, '\n')
			case 't':
				out = append(out, '\t')
			case 'r':
			default:
				out = append(out, s[i])
			}
			continue
		}
		out = append(out, s[i])
	}
	return out
}

// xmlTagRe strips XML tags in the docx/odt unpack paths.
var xmlTagRe = regexp.MustCompile(`<[^>]+>`)

// extractDocxZip unpacks word/document.xml from the OOXML container.
func extractDocxZip(_ context.Context, filePath string) (string, error) {
	reader, err := zip.OpenReader(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open docx container: %w", err)
	}
	defer func() { _ = reader.Close() }()

	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return "", fmt.Errorf("failed to open document.xml: %w", err)
		}
		data, err := io.ReadAll(io.LimitReader(rc, maxFallbackSize))
		_ = rc.Close()
		if err != nil {
			return "", fmt.Errorf("failed to read document.xml: %w", err)
		}
		// Paragraph and break tags become newlines before tags are stripped.
		text := string(data)
		text = strings.ReplaceAll(text, "</w:p>", "\n")
		text = strings.ReplaceAll(text, "<w:br/>", "\n")
		text = xmlTagRe.ReplaceAllString(text, "")
		return text, nil
	}
	return "", fmt.Errorf("word/document.xml not found in container")
}

// extractODTZip unpacks content.xml from an OpenDocument container.
func extractODTZip(_ context.Context, filePath string) (string, error) {
	reader, err := zip.OpenReader(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open odt container: %w", err)
	}
	defer func() { _ = reader.Close() }()

	for _, file := range reader.File {
		if file.Name != "content.xml" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return "", err
		}
		data, err := io.ReadAll(io.LimitReader(rc, maxFallbackSize))
		_ = rc.Close()
		if err != nil {
			return "", err
		}
		text := strings.ReplaceAll(string(data), "</text:p>", "\n")
		return xmlTagRe.ReplaceAllString(text, ""), nil
	}
	return "", fmt.Errorf("content.xml not found in container")
}

// extractWithPandoc is the generic converter path for word-family formats.
func extractWithPandoc(ctx context.Context, filePath string) (string, error) {
	if _, err := exec.LookPath("pandoc"); err != nil {
		return "", fmt.Errorf("pandoc not available: %w", err)
	}
	out, err := exec.CommandContext(ctx, "pandoc", "-t", "plain", filePath).Output()
	if err != nil {
		return "", fmt.Errorf("pandoc failed: %w", err)
	}
	return string(out), nil
}

// extractDocAntiword handles legacy .doc compound files.
func extractDocAntiword(ctx context.Context, filePath string) (string, error) {
	if _, err := exec.LookPath("antiword"); err != nil {
		return "", fmt.Errorf("antiword not available: %w", err)
	}
	out, err := exec.CommandContext(ctx, "antiword", filePath).Output()
	if err != nil {
		return "", fmt.Errorf("antiword failed: %w", err)
	}
	return string(out), nil
}

// extractDocxScript is the scripted fallback for OOXML files.
func extractDocxScript(ctx context.Context, filePath string) (string, error) {
	if _, err := exec.LookPath("python3"); err != nil {
		return "", fmt.Errorf("python3 not available: %w", err)
	}
	script := "import sys, docx2txt; sys.stdout.write(docx2txt.process(sys.argv[1]))"
	out, err := exec.CommandContext(ctx, "python3", "-c", script, filePath).Output()
	if err != nil {
		return "", fmt.Errorf("docx2txt script failed: %w", err)
	}
	return string(out), nil
}

// extractDocScript is the scripted fallback for legacy .doc files.
func extractDocScript(ctx context.Context, filePath string) (string, error) {
	if _, err := exec.LookPath("python3"); err != nil {
		return "", fmt.Errorf("python3 not available: %w", err)
	}
	script := "import sys, textract; sys.stdout.buffer.write(textract.process(sys.argv[1]))"
	out, err := exec.CommandContext(ctx, "python3", "-c", script, filePath).Output()
	if err != nil {
		return "", fmt.Errorf("textract script failed: %w", err)
	}
	return string(out), nil
}

// extractPlainText reads the file directly.
func extractPlainText(_ context.Context, filePath string) (string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// rtfControlRe strips RTF control words in the best-effort RTF path.
var rtfControlRe = regexp.MustCompile(`\\[a-zA-Z]+-?\d*\s?|[{}]`)

func extractRTFStrip(_ context.Context, filePath string) (string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", err
	}
	return rtfControlRe.ReplaceAllString(string(data), ""), nil
}

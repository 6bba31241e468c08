package documents

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestExtractText_PlainText(t *testing.T) {
	path := writeTempFile(t, "resume.txt", []byte("  Jane Doe\nVideo editor\n"))

	text, err := ExtractText(context.Background(), path, "txt", false)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\nVideo editor", text)
}

func TestExtractText_DocxZip(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = f.Write([]byte(`<w:document><w:body><w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p><w:p><w:r><w:t>Editor at Studio</w:t></w:r></w:p></w:body></w:document>`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	path := writeTempFile(t, "resume.docx", buf.Bytes())

	text, err := ExtractText(context.Background(), path, "docx", false)
	require.NoError(t, err)
	assert.Contains(t, text, "Jane Doe")
	assert.Contains(t, text, "Editor at Studio")
}

func TestExtractText_DocxMissingDocumentXML(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create("other.xml")
	require.NoError(t, err)
	_, err = f.Write([]byte("<x/>"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	path := writeTempFile(t, "broken.docx", buf.Bytes())

	// The zip unpack fails and the converter fallbacks are unlikely to be
	// installed in CI, but either way the call must not panic; an error here
	// stays scoped to the one document.
	_, err = ExtractText(context.Background(), path, "docx", false)
	if err != nil {
		assert.ErrorIs(t, err, ErrExtractionExhausted)
	}
}

func TestExtractText_PDFStreamFallback(t *testing.T) {
	// Minimal uncompressed content stream with Tj operators. pdftotext and
	// pdfminer reject it (or are absent), so the stream fallback handles it.
	pdf := []byte("%PDF-1.4\n1 0 obj\n<< /Length 60 >>\nstream\nBT /F1 12 Tf (Jane Doe) Tj (Video Editor) Tj ET\nendstream\nendobj\n%%EOF")
	path := writeTempFile(t, "mini.pdf", pdf)

	text, err := ExtractText(context.Background(), path, "pdf", false)
	require.NoError(t, err)
	assert.Contains(t, text, "Jane Doe")
	assert.Contains(t, text, "Video Editor")
}

func TestExtractText_EmptyResultExhaustsCascade(t *testing.T) {
	path := writeTempFile(t, "empty.txt", []byte("   \n  "))

	_, err := ExtractText(context.Background(), path, "txt", false)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExtractionExhausted)
}

func TestUnescapePDFString(t *testing.T) {
	assert.Equal(t, []byte("a(b)c"), unescapePDFString([]byte(`a\(b\)c`)))
	assert.Equal(t, []byte("line\nnext"), unescapePDFString([]byte(`line\nnext`)))
}

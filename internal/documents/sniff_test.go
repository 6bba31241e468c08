package documents

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectType(t *testing.T) {
	tests := []struct {
		name    string
		body    []byte
		urlType string
		want    string
	}{
		{
			// Body wins over whatever the URL claimed.
			name:    "PDF magic overrides txt extension",
			body:    []byte("%PDF-1.7 rest of file"),
			urlType: "txt",
			want:    "pdf",
		},
		{
			name:    "zip container is docx",
			body:    []byte("PK\x03\x04..."),
			urlType: "pdf",
			want:    "docx",
		},
		{
			name:    "OLE compound file is doc",
			body:    []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1},
			urlType: "pdf",
			want:    "doc",
		},
		{
			name:    "printable utf8 is txt",
			body:    []byte("Jane Doe\nVideo editor with ten years of experience.\n"),
			urlType: "pdf",
			want:    "txt",
		},
		{
			name:    "binary junk falls back to url type",
			body:    []byte{0x00, 0x01, 0x02, 0xFF, 0xFE, 0x80},
			urlType: "doc",
			want:    "doc",
		},
		{
			name:    "binary junk with no url type defaults to pdf",
			body:    []byte{0x00, 0x01, 0x02, 0xFF, 0xFE, 0x80},
			urlType: "",
			want:    "pdf",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectType(tt.body, tt.urlType))
		})
	}
}

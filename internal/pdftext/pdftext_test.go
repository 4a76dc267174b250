package pdftext

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildPDF assembles a minimal PDF with one page per entry in pages,
// each page showing its text in Helvetica.
func buildPDF(pages ...string) []byte {
	var objects []string
	kids := ""
	pageObjs := make([]int, len(pages))
	// 1 catalog, 2 pages tree, 3 font, then page/content pairs.
	for i := range pages {
		pageObjs[i] = 4 + i*2
		kids += fmt.Sprintf("%d 0 R ", pageObjs[i])
	}
	objects = append(objects,
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids, len(pages)),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
	)
	for i, text := range pages {
		stream := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", pageObjs[i]+1),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream),
		)
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func TestSniff(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"pdf", []byte("%PDF-1.7\n..."), MediaPDF},
		{"pdf with leading whitespace", []byte("\r\n%PDF-1.4"), MediaPDF},
		{"plain text", []byte("John Smith\nEngineer"), MediaText},
		{"utf-8 text", []byte("José da Silva"), MediaText},
		{"binary", []byte{0xff, 0xfe, 0x00, 0x81}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sniff(tt.data))
		})
	}
}

func TestReader_PlainTextPassthrough(t *testing.T) {
	input := "Maria Souza\nmaria@example.com\n"
	got, err := NewReader(0).Text([]byte(input))
	require.NoError(t, err)
	assert.Equal(t, input, got)
}

func TestReader_RejectsBinary(t *testing.T) {
	_, err := NewReader(0).Text([]byte{0xff, 0xd8, 0xff, 0xe0})
	assert.Error(t, err)
}

func TestReader_CorruptPDF(t *testing.T) {
	got, err := NewReader(0).Text([]byte("%PDF-1.4\nnot really a pdf"))
	if err == nil {
		assert.Empty(t, strings.TrimSpace(got))
	}
}

func TestReader_PDFPagesInOrder(t *testing.T) {
	data := buildPDF("Jane Doe", "Experience")

	got, err := NewReader(0).Text(data)
	require.NoError(t, err)

	first := bytes.Index([]byte(got), []byte("Jane Doe"))
	second := bytes.Index([]byte(got), []byte("Experience"))
	require.GreaterOrEqual(t, first, 0)
	require.Greater(t, second, first)
}

func TestReader_MaxPages(t *testing.T) {
	data := buildPDF("First", "Second")

	got, err := NewReader(1).Text(data)
	require.NoError(t, err)
	assert.Contains(t, got, "First")
	assert.NotContains(t, got, "Second")
}

package pdfextract

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildPDF assembles a single-page PDF whose content stream is content,
// with a correct cross-reference table.
func buildPDF(content string) []byte {
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 5 0 R >> >> /Contents 4 0 R >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func TestExtractText(t *testing.T) {
	doc := buildPDF("BT /F1 12 Tf 72 712 Td (Metformin is first-line therapy for type 2 diabetes.) Tj ET")

	text, err := ExtractText(bytes.NewReader(doc))
	require.NoError(t, err)
	assert.Contains(t, text, "Metformin is first-line therapy for type 2 diabetes.")
}

func TestExtractText_Failures(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
	}{
		{name: "empty input", input: nil},
		{name: "not a pdf", input: []byte("this is plain text, not a PDF")},
		{name: "truncated pdf", input: []byte("%PDF-1.4\n1 0 obj\n<<")},
		{name: "no text", input: buildPDF("0 0 m 100 100 l S")},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			text, err := ExtractText(bytes.NewReader(tc.input))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrExtraction)
			assert.Empty(t, text)
		})
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, fmt.Errorf("connection reset")
}

func TestExtractText_ReadError(t *testing.T) {
	_, err := ExtractText(failingReader{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExtraction)
	assert.True(t, strings.Contains(err.Error(), "connection reset"))
}

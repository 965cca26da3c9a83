package pdfextract

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrExtraction is returned when a document cannot be read as a PDF or has no text.
var ErrExtraction = errors.New("pdf extraction failed")

// ExtractText reads the entire content of r and extracts plain text from the PDF.
// Pages are concatenated in page order. A PDF without extractable text
// (for example a scanned image) is an ErrExtraction.
func ExtractText(r io.Reader) (text string, err error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read document: %w", ErrExtraction, err)
	}
	if len(b) == 0 {
		return "", fmt.Errorf("%w: empty document", ErrExtraction)
	}

	// The parser panics on some malformed inputs.
	defer func() {
		if rec := recover(); rec != nil {
			text = ""
			err = fmt.Errorf("%w: malformed pdf: %v", ErrExtraction, rec)
		}
	}()

	readerAt := bytes.NewReader(b)
	pdfReader, err := pdf.NewReader(readerAt, int64(len(b)))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrExtraction, err)
	}
	plainReader, err := pdfReader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrExtraction, err)
	}
	out, err := io.ReadAll(plainReader)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrExtraction, err)
	}
	if strings.TrimSpace(string(out)) == "" {
		return "", fmt.Errorf("%w: no extractable text", ErrExtraction)
	}
	return string(out), nil
}

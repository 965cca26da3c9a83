package indexer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"medichat/internal/contextutil"
	"medichat/internal/pdfextract"
)

// ExtractFunc turns a document body into plain text.
type ExtractFunc func(r io.Reader) (string, error)

// Document is one uploaded file.
type Document struct {
	Name string
	Data []byte
}

// FileResult reports what happened to a single document.
type FileResult struct {
	Name   string
	Chunks int
	Err    error
}

// Result holds the chunks of all documents that were extracted successfully,
// in upload order.
type Result struct {
	Chunks []string
	Files  []FileResult
}

// Failures returns the documents that could not be processed.
func (r *Result) Failures() []FileResult {
	var failed []FileResult
	for _, f := range r.Files {
		if f.Err != nil {
			failed = append(failed, f)
		}
	}
	return failed
}

// Pipeline extracts text from uploaded documents and splits it into chunks.
type Pipeline struct {
	splitter *Splitter
	extract  ExtractFunc
	logger   *slog.Logger
}

// NewPipeline creates a pipeline. A nil extract uses the PDF extractor.
func NewPipeline(splitter *Splitter, extract ExtractFunc) *Pipeline {
	if splitter == nil {
		splitter = NewSplitter()
	}
	if extract == nil {
		extract = pdfextract.ExtractText
	}
	return &Pipeline{
		splitter: splitter,
		extract:  extract,
		logger:   slog.Default(),
	}
}

func (p *Pipeline) getLogger(ctx context.Context) *slog.Logger {
	return contextutil.LoggerOr(ctx, p.logger)
}

// ChunkDocument extracts and splits a single document.
func (p *Pipeline) ChunkDocument(doc Document) ([]string, error) {
	text, err := p.extract(bytes.NewReader(doc.Data))
	if err != nil {
		return nil, fmt.Errorf("failed to extract %s: %w", doc.Name, err)
	}
	return p.splitter.Split(text), nil
}

// ChunkDocuments processes every document in order.
// Errors for individual files are recorded in the result and don't stop the others.
// Only context cancellation aborts the run.
func (p *Pipeline) ChunkDocuments(ctx context.Context, docs []Document) (*Result, error) {
	logger := p.getLogger(ctx)
	logger.InfoContext(ctx, "chunking documents", "total_files", len(docs))

	result := &Result{
		Chunks: []string{},
		Files:  make([]FileResult, 0, len(docs)),
	}

	var errorCount int
	for _, doc := range docs {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		chunks, err := p.ChunkDocument(doc)
		if err != nil {
			errorCount++
			logger.ErrorContext(ctx, "failed to process file", "file", doc.Name, "error", err)
			result.Files = append(result.Files, FileResult{Name: doc.Name, Err: err})
			continue
		}

		logger.DebugContext(ctx, "chunked file", "file", doc.Name, "chunks", len(chunks))
		result.Chunks = append(result.Chunks, chunks...)
		result.Files = append(result.Files, FileResult{Name: doc.Name, Chunks: len(chunks)})
	}

	logger.InfoContext(ctx, "chunking completed",
		"total_files", len(docs),
		"success", len(docs)-errorCount,
		"errors", errorCount,
		"chunks", len(result.Chunks),
	)

	return result, nil
}

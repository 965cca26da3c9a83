package index

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_embedder.go -package=mocks medichat/internal/index Embedder

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"medichat/internal/contextutil"
	"medichat/internal/vectorstore"
)

// FingerprintFileName holds the hex fingerprint of the indexed corpus.
const FingerprintFileName = "text_hash.txt"

var (
	// ErrProvider is returned when the embedding provider fails.
	ErrProvider = errors.New("embedding provider error")
	// ErrIndexStorage is returned when the vector backend or index directory fails.
	ErrIndexStorage = errors.New("index storage error")
	// ErrEmptyCorpus is returned when there is nothing to index.
	ErrEmptyCorpus = errors.New("no chunks to index")
	// ErrNoIndex is returned when no persisted index exists.
	ErrNoIndex = errors.New("no index available")
)

// Embedder turns texts into vectors, one per text, in order.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Index is a handle to a persisted vector index.
type Index struct {
	Fingerprint string
	Chunks      []string
	Collection  string
}

// Len returns the number of indexed chunks.
func (i *Index) Len() int {
	if i == nil {
		return 0
	}
	return len(i.Chunks)
}

// Passage is one retrieved chunk.
type Passage struct {
	Rank     int // 1-based
	Position int
	Score    float32
	Text     string
}

// Store builds, reopens and queries the vector index kept in dir and the backend.
type Store struct {
	dir        string
	collection string
	vectorSize int
	batchSize  int
	embedder   Embedder
	vectors    vectorstore.VectorStore
	logger     *slog.Logger
}

// NewStore creates a Store. batchSize <= 0 embeds everything in one request.
func NewStore(dir, collection string, vectorSize, batchSize int, embedder Embedder, vectors vectorstore.VectorStore) *Store {
	return &Store{
		dir:        dir,
		collection: collection,
		vectorSize: vectorSize,
		batchSize:  batchSize,
		embedder:   embedder,
		vectors:    vectors,
		logger:     slog.Default(),
	}
}

func (s *Store) getLogger(ctx context.Context) *slog.Logger {
	return contextutil.LoggerOr(ctx, s.logger)
}

// Fingerprint returns the hex MD5 of the chunk texts concatenated in order.
func Fingerprint(chunks []string) string {
	h := md5.New()
	for _, c := range chunks {
		_, _ = h.Write([]byte(c))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// BuildOrReuse returns the persisted index when its fingerprint matches chunks,
// and otherwise embeds every chunk and replaces the persisted index.
// The second return value reports whether the persisted index was reused.
func (s *Store) BuildOrReuse(ctx context.Context, chunks []string) (*Index, bool, error) {
	logger := s.getLogger(ctx)

	if len(chunks) == 0 {
		return nil, false, ErrEmptyCorpus
	}

	fingerprint := Fingerprint(chunks)

	stored, err := s.readFingerprint()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, false, fmt.Errorf("%w: failed to read fingerprint: %w", ErrIndexStorage, err)
	}
	if stored == fingerprint {
		idx, err := s.open(ctx, fingerprint)
		if err == nil && idx.Len() == len(chunks) {
			logger.InfoContext(ctx, "reusing persisted index", "fingerprint", fingerprint, "chunks", idx.Len())
			return idx, true, nil
		}
		logger.WarnContext(ctx, "fingerprint matches but backend is incomplete, rebuilding", "fingerprint", fingerprint, "error", err)
	}

	vectors, err := s.embedAll(ctx, chunks)
	if err != nil {
		return nil, false, err
	}

	points := make([]vectorstore.Point, len(chunks))
	for i, text := range chunks {
		points[i] = vectorstore.Point{
			ID:       uuid.NewString(),
			Position: i,
			Text:     text,
			Vec:      vectors[i],
		}
	}

	if err := s.vectors.Replace(ctx, s.collection, s.vectorSize, points); err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrIndexStorage, err)
	}

	// Written last: a crash before this point leaves a stale fingerprint and forces a rebuild.
	if err := s.writeFingerprint(fingerprint); err != nil {
		return nil, false, fmt.Errorf("%w: failed to write fingerprint: %w", ErrIndexStorage, err)
	}

	logger.InfoContext(ctx, "built index", "fingerprint", fingerprint, "chunks", len(chunks))
	return &Index{
		Fingerprint: fingerprint,
		Chunks:      append([]string(nil), chunks...),
		Collection:  s.collection,
	}, false, nil
}

// Load reopens the persisted index. Returns ErrNoIndex when there is none or
// when the backend no longer matches the stored fingerprint.
func (s *Store) Load(ctx context.Context) (*Index, error) {
	stored, err := s.readFingerprint()
	if errors.Is(err, os.ErrNotExist) || (err == nil && stored == "") {
		return nil, ErrNoIndex
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read fingerprint: %w", ErrIndexStorage, err)
	}
	return s.open(ctx, stored)
}

func (s *Store) open(ctx context.Context, fingerprint string) (*Index, error) {
	points, err := s.vectors.List(ctx, s.collection)
	if errors.Is(err, vectorstore.ErrCollectionNotFound) {
		return nil, ErrNoIndex
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIndexStorage, err)
	}

	chunks := make([]string, len(points))
	for i, p := range points {
		chunks[i] = p.Text
	}
	if len(chunks) == 0 || Fingerprint(chunks) != fingerprint {
		s.getLogger(ctx).WarnContext(ctx, "persisted index does not match fingerprint", "fingerprint", fingerprint, "chunks", len(chunks))
		return nil, ErrNoIndex
	}

	return &Index{Fingerprint: fingerprint, Chunks: chunks, Collection: s.collection}, nil
}

// Query returns up to min(k, idx.Len()) passages by descending similarity.
func (s *Store) Query(ctx context.Context, idx *Index, text string, k int) ([]Passage, error) {
	if k <= 0 {
		return []Passage{}, nil
	}
	if idx == nil {
		return nil, ErrNoIndex
	}
	k = min(k, idx.Len())
	if k == 0 {
		return []Passage{}, nil
	}

	vectors, err := s.embedder.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProvider, err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("%w: expected 1 query vector, got %d", ErrProvider, len(vectors))
	}

	results, err := s.vectors.Search(ctx, idx.Collection, vectors[0], k)
	if errors.Is(err, vectorstore.ErrCollectionNotFound) {
		return nil, ErrNoIndex
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIndexStorage, err)
	}
	if len(results) > k {
		results = results[:k]
	}

	passages := make([]Passage, len(results))
	for i, r := range results {
		passages[i] = Passage{Rank: i + 1, Position: r.Position, Score: r.Score, Text: r.Text}
	}

	s.getLogger(ctx).DebugContext(ctx, "retrieved passages", "k", k, "count", len(passages))
	return passages, nil
}

func (s *Store) embedAll(ctx context.Context, chunks []string) ([][]float32, error) {
	batch := s.batchSize
	if batch <= 0 {
		batch = len(chunks)
	}

	vectors := make([][]float32, 0, len(chunks))
	for start := 0; start < len(chunks); start += batch {
		end := min(start+batch, len(chunks))
		out, err := s.embedder.EmbedTexts(ctx, chunks[start:end])
		if err != nil {
			s.getLogger(ctx).ErrorContext(ctx, "embedding failed", "batch_start", start, "batch_end", end, "error", err)
			return nil, fmt.Errorf("%w: %w", ErrProvider, err)
		}
		if len(out) != end-start {
			return nil, fmt.Errorf("%w: expected %d vectors, got %d", ErrProvider, end-start, len(out))
		}
		vectors = append(vectors, out...)
	}
	return vectors, nil
}

func (s *Store) fingerprintPath() string {
	return filepath.Join(s.dir, FingerprintFileName)
}

func (s *Store) readFingerprint() (string, error) {
	data, err := os.ReadFile(s.fingerprintPath())
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// writeFingerprint replaces the fingerprint file via temp file + rename.
func (s *Store) writeFingerprint(fingerprint string) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.dir, FingerprintFileName+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	if _, err := tmp.WriteString(fingerprint); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.fingerprintPath())
}

package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"medichat/internal/contextutil"
	"medichat/internal/storage"
)

// LocalStore implements VectorStore on top of a SQLite chunk table.
// Search is a brute-force cosine scan over every stored vector.
type LocalStore struct {
	chunks storage.ChunkStore
	logger *slog.Logger
}

// NewLocalStore creates a LocalStore backed by chunks.
func NewLocalStore(chunks storage.ChunkStore) *LocalStore {
	return &LocalStore{
		chunks: chunks,
		logger: slog.Default(),
	}
}

func (s *LocalStore) getLogger(ctx context.Context) *slog.Logger {
	return contextutil.LoggerOr(ctx, s.logger)
}

// Replace drops the collection and stores points in its place.
func (s *LocalStore) Replace(ctx context.Context, collection string, vectorSize int, points []Point) error {
	records := make([]storage.ChunkRecord, len(points))
	for i, p := range points {
		records[i] = storage.ChunkRecord{
			ID:         p.ID,
			Collection: collection,
			Position:   p.Position,
			Text:       p.Text,
			Embedding:  p.Vec,
		}
	}

	if err := s.chunks.ReplaceCollection(ctx, collection, vectorSize, records); err != nil {
		s.getLogger(ctx).ErrorContext(ctx, "failed to replace collection", "collection", collection, "count", len(points), "error", err)
		return fmt.Errorf("failed to replace collection: %w", err)
	}

	s.getLogger(ctx).InfoContext(ctx, "replaced collection", "collection", collection, "count", len(points))
	return nil
}

// Search ranks every stored point against query.
func (s *LocalStore) Search(ctx context.Context, collection string, query []float32, k int) ([]SearchResult, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be greater than 0")
	}

	records, err := s.chunks.ListByCollection(ctx, collection)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrCollectionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load collection: %w", err)
	}

	results := make([]SearchResult, 0, len(records))
	for _, r := range records {
		if len(r.Embedding) != len(query) {
			return nil, fmt.Errorf("vector size mismatch for point %s: %d != %d", r.ID, len(r.Embedding), len(query))
		}
		results = append(results, SearchResult{
			PointID:  r.ID,
			Position: r.Position,
			Text:     r.Text,
			Score:    cosine(query, r.Embedding),
		})
	}

	SortResults(results)
	if len(results) > k {
		results = results[:k]
	}

	s.getLogger(ctx).DebugContext(ctx, "search completed", "collection", collection, "k", k, "results", len(results))
	return results, nil
}

// List returns every point ordered by position.
func (s *LocalStore) List(ctx context.Context, collection string) ([]Point, error) {
	records, err := s.chunks.ListByCollection(ctx, collection)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrCollectionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list collection: %w", err)
	}

	points := make([]Point, len(records))
	for i, r := range records {
		points[i] = Point{ID: r.ID, Position: r.Position, Text: r.Text, Vec: r.Embedding}
	}
	return points, nil
}

// Count returns the number of stored points.
func (s *LocalStore) Count(ctx context.Context, collection string) (int, error) {
	n, err := s.chunks.CountByCollection(ctx, collection)
	if err != nil {
		return 0, fmt.Errorf("failed to count points: %w", err)
	}
	return n, nil
}

// SortResults orders results by descending score, then ascending position.
func SortResults(results []SearchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Position < results[j].Position
	})
}

func sortPoints(points []Point) {
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Position < points[j].Position
	})
}

// cosine returns the cosine similarity of a and b, 0 if either is a zero vector.
func cosine(a, b []float32) float32 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}

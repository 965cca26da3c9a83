package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks medichat/internal/vectorstore VectorStore

import (
	"context"
	"errors"
)

// ErrCollectionNotFound is returned when a collection has never been written.
var ErrCollectionNotFound = errors.New("collection not found")

// Point is one indexed chunk: its vector plus the text and position it came from.
type Point struct {
	ID       string
	Position int
	Text     string
	Vec      []float32
}

// SearchResult is a single hit from a similarity search.
type SearchResult struct {
	PointID  string
	Position int
	Text     string
	Score    float32
}

// VectorStore defines the interface for vector storage operations.
type VectorStore interface {
	// Replace drops the collection and stores points in its place.
	Replace(ctx context.Context, collection string, vectorSize int, points []Point) error

	// Search returns up to k points by descending cosine similarity.
	// Equal scores are ordered by ascending position.
	Search(ctx context.Context, collection string, query []float32, k int) ([]SearchResult, error)

	// List returns every point ordered by position. Vectors may be omitted.
	// Returns ErrCollectionNotFound when the collection does not exist.
	List(ctx context.Context, collection string) ([]Point, error)

	// Count returns the number of points. A missing collection counts as zero.
	Count(ctx context.Context, collection string) (int, error)
}

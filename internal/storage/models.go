package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a record is not found.
var ErrNotFound = errors.New("record not found")

// Collection is a named set of chunks sharing one vector size.
type Collection struct {
	Name       string
	VectorSize int
	CreatedAt  time.Time
}

// ChunkRecord is one indexed chunk with its embedding.
type ChunkRecord struct {
	ID         string    // UUID
	Collection string    // collections.name
	Position   int       // 0-based order within the collection
	Text       string
	Embedding  []float32 // stored as a JSON array
}

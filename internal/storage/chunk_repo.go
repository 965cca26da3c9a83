package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chunk_store.go -package=mocks medichat/internal/storage ChunkStore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// ChunkStore defines the interface for chunk storage operations.
type ChunkStore interface {
	// ReplaceCollection drops the collection and writes chunks in a single transaction.
	ReplaceCollection(ctx context.Context, collection string, vectorSize int, chunks []ChunkRecord) error
	// ListByCollection returns all chunks ordered by position.
	// Returns ErrNotFound if the collection does not exist.
	ListByCollection(ctx context.Context, collection string) ([]ChunkRecord, error)
	// CountByCollection returns the number of chunks in the collection.
	CountByCollection(ctx context.Context, collection string) (int, error)
}

// ChunkRepo provides methods for chunk operations.
// It implements the ChunkStore interface.
type ChunkRepo struct {
	db          *sql.DB
	collections *CollectionRepo
}

// NewChunkRepo creates a new ChunkRepo.
func NewChunkRepo(db *sql.DB) *ChunkRepo {
	return &ChunkRepo{db: db, collections: NewCollectionRepo(db)}
}

// ReplaceCollection removes any existing collection of that name and inserts
// the given chunks. Either every chunk is written or none is.
func (r *ChunkRepo) ReplaceCollection(ctx context.Context, collection string, vectorSize int, chunks []ChunkRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE collection = ?", collection); err != nil {
		return fmt.Errorf("failed to delete chunks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM collections WHERE name = ?", collection); err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO collections (name, vector_size) VALUES (?, ?)",
		collection, vectorSize,
	); err != nil {
		return fmt.Errorf("failed to insert collection: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO chunks (id, collection, position, text, embedding) VALUES (?, ?, ?, ?, ?)",
	)
	if err != nil {
		return fmt.Errorf("failed to prepare chunk insert: %w", err)
	}
	defer func() {
		_ = stmt.Close()
	}()

	for _, chunk := range chunks {
		if len(chunk.Embedding) != vectorSize {
			return fmt.Errorf("chunk %d has vector size %d, expected %d", chunk.Position, len(chunk.Embedding), vectorSize)
		}
		embedding, err := json.Marshal(chunk.Embedding)
		if err != nil {
			return fmt.Errorf("failed to marshal embedding: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, chunk.ID, collection, chunk.Position, chunk.Text, string(embedding)); err != nil {
			return fmt.Errorf("failed to insert chunk: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListByCollection returns all chunks of a collection ordered by position.
func (r *ChunkRepo) ListByCollection(ctx context.Context, collection string) ([]ChunkRecord, error) {
	exists, err := r.collections.Exists(ctx, collection)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotFound
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT id, collection, position, text, embedding FROM chunks WHERE collection = ? ORDER BY position",
		collection,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	chunks := []ChunkRecord{}
	for rows.Next() {
		var chunk ChunkRecord
		var embedding string
		if err := rows.Scan(&chunk.ID, &chunk.Collection, &chunk.Position, &chunk.Text, &embedding); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		if err := json.Unmarshal([]byte(embedding), &chunk.Embedding); err != nil {
			return nil, fmt.Errorf("failed to unmarshal embedding of chunk %s: %w", chunk.ID, err)
		}
		chunks = append(chunks, chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return chunks, nil
}

// CountByCollection returns the number of chunks stored for the collection.
// A missing collection counts as zero.
func (r *ChunkRepo) CountByCollection(ctx context.Context, collection string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM chunks WHERE collection = ?",
		collection,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count chunks: %w", err)
	}
	return count, nil
}

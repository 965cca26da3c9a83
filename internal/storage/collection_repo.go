package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// CollectionRepo provides methods for collection operations.
type CollectionRepo struct {
	db *sql.DB
}

// NewCollectionRepo creates a new CollectionRepo.
func NewCollectionRepo(db *sql.DB) *CollectionRepo {
	return &CollectionRepo{db: db}
}

// Get returns the named collection, or ErrNotFound.
func (r *CollectionRepo) Get(ctx context.Context, name string) (Collection, error) {
	var c Collection
	err := r.db.QueryRowContext(ctx,
		"SELECT name, vector_size, created_at FROM collections WHERE name = ?",
		name,
	).Scan(&c.Name, &c.VectorSize, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Collection{}, ErrNotFound
	}
	if err != nil {
		return Collection{}, fmt.Errorf("failed to query collection: %w", err)
	}
	return c, nil
}

// Exists reports whether the named collection exists.
func (r *CollectionRepo) Exists(ctx context.Context, name string) (bool, error) {
	_, err := r.Get(ctx, name)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Delete removes the named collection and, by cascade, its chunks.
func (r *CollectionRepo) Delete(ctx context.Context, name string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM collections WHERE name = ?", name); err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}
	return nil
}

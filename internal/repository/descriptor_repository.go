package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/mediavault/mediavault/internal/models"
)

// DescriptorRepository manages persistence for content descriptors.
type DescriptorRepository struct {
	db *sqlx.DB
}

// NewDescriptorRepository constructs a DescriptorRepository.
func NewDescriptorRepository(db *sqlx.DB) *DescriptorRepository {
	return &DescriptorRepository{db: db}
}

// FindByID fetches a descriptor by id.
func (r *DescriptorRepository) FindByID(ctx context.Context, id int64) (*models.ContentDescriptor, error) {
	const query = `SELECT id, location_id, hash, size, created_at FROM content_descriptors WHERE id = $1`
	var descriptor models.ContentDescriptor
	if err := r.db.GetContext(ctx, &descriptor, query, id); err != nil {
		return nil, err
	}
	return &descriptor, nil
}

// FindByHash fetches a descriptor by its hash within a storage location.
func (r *DescriptorRepository) FindByHash(ctx context.Context, locationID int64, hash string) (*models.ContentDescriptor, error) {
	const query = `SELECT id, location_id, hash, size, created_at FROM content_descriptors WHERE location_id = $1 AND hash = $2`
	var descriptor models.ContentDescriptor
	if err := r.db.GetContext(ctx, &descriptor, query, locationID, hash); err != nil {
		return nil, err
	}
	return &descriptor, nil
}

// GetOrCreate resolves the descriptor for a hash, inserting when absent. The
// unique index on (location_id, hash) turns concurrent inserts of identical
// content into a single row; the insert-or-fetch never duplicates. The second
// return value reports whether this call created the row.
func (r *DescriptorRepository) GetOrCreate(ctx context.Context, locationID int64, hash string, size int64) (*models.ContentDescriptor, bool, error) {
	const insert = `INSERT INTO content_descriptors (location_id, hash, size)
		VALUES ($1, $2, $3)
		ON CONFLICT (location_id, hash) DO NOTHING
		RETURNING id, location_id, hash, size, created_at`
	var descriptor models.ContentDescriptor
	err := r.db.GetContext(ctx, &descriptor, insert, locationID, hash, size)
	if err == nil {
		return &descriptor, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("create content descriptor: %w", err)
	}

	existing, err := r.FindByHash(ctx, locationID, hash)
	if err != nil {
		return nil, false, fmt.Errorf("fetch content descriptor after conflict: %w", err)
	}
	return existing, false, nil
}

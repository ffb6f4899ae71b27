package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/mediavault/mediavault/internal/models"
)

// LocationRepository manages persistence for storage locations.
type LocationRepository struct {
	db *sqlx.DB
}

// NewLocationRepository constructs a LocationRepository.
func NewLocationRepository(db *sqlx.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

// FindByName fetches a storage location by its unique name.
func (r *LocationRepository) FindByName(ctx context.Context, name string) (*models.StorageLocation, error) {
	const query = `SELECT id, name, path, created_at FROM storage_locations WHERE name = $1`
	var location models.StorageLocation
	if err := r.db.GetContext(ctx, &location, query, name); err != nil {
		return nil, err
	}
	return &location, nil
}

// GetOrCreate resolves a location by name, creating it when absent. The unique
// index on name makes concurrent calls converge to one row.
func (r *LocationRepository) GetOrCreate(ctx context.Context, name, path string) (*models.StorageLocation, error) {
	const insert = `INSERT INTO storage_locations (name, path)
		VALUES ($1, $2)
		ON CONFLICT (name) DO NOTHING
		RETURNING id, name, path, created_at`
	var location models.StorageLocation
	err := r.db.GetContext(ctx, &location, insert, name, path)
	if err == nil {
		return &location, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("create storage location: %w", err)
	}
	return r.FindByName(ctx, name)
}

// List returns all storage locations.
func (r *LocationRepository) List(ctx context.Context) ([]models.StorageLocation, error) {
	const query = `SELECT id, name, path, created_at FROM storage_locations ORDER BY id`
	var locations []models.StorageLocation
	if err := r.db.SelectContext(ctx, &locations, query); err != nil {
		return nil, fmt.Errorf("list storage locations: %w", err)
	}
	return locations, nil
}

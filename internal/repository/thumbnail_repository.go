package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/mediavault/mediavault/internal/models"
)

const thumbnailColumns = `th.id, th.file_id, th.descriptor_id, th.location_id, th.height, th.width, th.mime_type, th.created_at, cd.hash`

const thumbnailJoin = `FROM thumbnails th JOIN content_descriptors cd ON cd.id = th.descriptor_id`

// ThumbnailRepository manages persistence for thumbnails.
type ThumbnailRepository struct {
	db *sqlx.DB
}

// NewThumbnailRepository constructs a ThumbnailRepository.
func NewThumbnailRepository(db *sqlx.DB) *ThumbnailRepository {
	return &ThumbnailRepository{db: db}
}

// Create inserts a thumbnail row and fills in its generated id.
func (r *ThumbnailRepository) Create(ctx context.Context, thumb *models.Thumbnail) error {
	const query = `INSERT INTO thumbnails (file_id, descriptor_id, location_id, height, width, mime_type)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	if err := r.db.GetContext(ctx, &thumb.ID, query,
		thumb.FileID, thumb.DescriptorID, thumb.LocationID, thumb.Height, thumb.Width, thumb.MimeType); err != nil {
		return fmt.Errorf("create thumbnail: %w", err)
	}
	return nil
}

// ListByFile returns all thumbnails stored for a file.
func (r *ThumbnailRepository) ListByFile(ctx context.Context, fileID int64) ([]models.ThumbnailWithHash, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE th.file_id = $1 ORDER BY th.height, th.width`, thumbnailColumns, thumbnailJoin)
	var thumbs []models.ThumbnailWithHash
	if err := r.db.SelectContext(ctx, &thumbs, query, fileID); err != nil {
		return nil, fmt.Errorf("list thumbnails: %w", err)
	}
	return thumbs, nil
}

// FindByHash fetches a thumbnail by its content hash.
func (r *ThumbnailRepository) FindByHash(ctx context.Context, hash string) (*models.ThumbnailWithHash, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE cd.hash = $1`, thumbnailColumns, thumbnailJoin)
	var thumb models.ThumbnailWithHash
	if err := r.db.GetContext(ctx, &thumb, query, hash); err != nil {
		return nil, err
	}
	return &thumb, nil
}

package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/mediavault/mediavault/internal/models"
	appErrors "github.com/mediavault/mediavault/pkg/errors"
	"github.com/mediavault/mediavault/pkg/thumbnailer"
)

type thumbnailStore interface {
	Create(ctx context.Context, thumb *models.Thumbnail) error
	ListByFile(ctx context.Context, fileID int64) ([]models.ThumbnailWithHash, error)
	FindByHash(ctx context.Context, hash string) (*models.ThumbnailWithHash, error)
}

// SourceLoader fetches the original bytes of a file when a render is needed.
// Cache hits never invoke it.
type SourceLoader func() ([]byte, error)

const thumbnailMime = "image/png"

// ThumbnailService renders and caches file previews. Rendered thumbnails go
// through their own content-addressed store, so identical previews dedupe the
// same way file content does.
type ThumbnailService struct {
	thumbs   thumbnailStore
	content  *ContentService
	renderer thumbnailer.Renderer
	logger   *zap.Logger
}

// NewThumbnailService constructs a ThumbnailService. A nil content service
// means no thumbnail storage is configured; every operation then fails
// eagerly with a storage error.
func NewThumbnailService(thumbs thumbnailStore, content *ContentService, renderer thumbnailer.Renderer, logger *zap.Logger) *ThumbnailService {
	if renderer == nil {
		renderer = thumbnailer.NewImageRenderer()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ThumbnailService{thumbs: thumbs, content: content, renderer: renderer, logger: logger}
}

func (s *ThumbnailService) requireStorage() error {
	if s.content == nil {
		return appErrors.Clone(appErrors.ErrStorageUnavailable, "thumbnail storage not configured")
	}
	return nil
}

// GetOrCreate returns a thumbnail satisfying the tolerance window around the
// requested dimensions, rendering one when no stored thumbnail qualifies. The
// storage check runs before any lookup so an unconfigured store fails the same
// way whether or not a cached thumbnail would have matched.
func (s *ThumbnailService) GetOrCreate(ctx context.Context, file *models.File, reqHeight, reqWidth int, load SourceLoader) (*models.ThumbnailWithHash, []byte, error) {
	if err := s.requireStorage(); err != nil {
		return nil, nil, err
	}
	if reqHeight <= 0 || reqWidth <= 0 {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "thumbnail dimensions must be positive")
	}

	stored, err := s.thumbs.ListByFile(ctx, file.ID)
	if err != nil {
		return nil, nil, err
	}
	for i := range stored {
		if stored[i].InWindow(reqHeight, reqWidth) {
			data, err := s.content.Read(ctx, stored[i].Hash)
			if err != nil {
				return nil, nil, err
			}
			return &stored[i], data, nil
		}
	}

	tier := thumbnailer.TierFor(reqHeight, reqWidth)
	return s.render(ctx, file, tier, load)
}

// CreateForTier renders and stores a thumbnail at a named tier without
// consulting the tolerance window.
func (s *ThumbnailService) CreateForTier(ctx context.Context, file *models.File, tier thumbnailer.Tier, load SourceLoader) (*models.ThumbnailWithHash, []byte, error) {
	if err := s.requireStorage(); err != nil {
		return nil, nil, err
	}
	return s.render(ctx, file, tier, load)
}

func (s *ThumbnailService) render(ctx context.Context, file *models.File, tier thumbnailer.Tier, load SourceLoader) (*models.ThumbnailWithHash, []byte, error) {
	source, err := load()
	if err != nil {
		return nil, nil, err
	}

	mimeHint := ""
	if file.MimeType != nil {
		mimeHint = *file.MimeType
	}
	result, err := s.renderer.Render(source, mimeHint, tier)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "source cannot be thumbnailed")
	}

	descriptor, err := s.content.Store(ctx, result.Data)
	if err != nil {
		return nil, nil, err
	}

	mime := thumbnailMime
	thumb := models.Thumbnail{
		FileID:       file.ID,
		DescriptorID: descriptor.ID,
		LocationID:   s.content.Location().ID,
		Height:       result.Height,
		Width:        result.Width,
		MimeType:     &mime,
	}
	if err := s.thumbs.Create(ctx, &thumb); err != nil {
		return nil, nil, err
	}

	s.logger.Debug("thumbnail rendered",
		zap.Int64("file_id", file.ID),
		zap.String("tier", string(tier)),
		zap.Int("height", result.Height),
		zap.Int("width", result.Width))

	return &models.ThumbnailWithHash{Thumbnail: thumb, Hash: descriptor.Hash}, result.Data, nil
}

// ListForFile returns the stored thumbnails of a file.
func (s *ThumbnailService) ListForFile(ctx context.Context, fileID int64) ([]models.ThumbnailWithHash, error) {
	if err := s.requireStorage(); err != nil {
		return nil, err
	}
	return s.thumbs.ListByFile(ctx, fileID)
}

// Read returns the bytes of a stored thumbnail by content hash.
func (s *ThumbnailService) Read(ctx context.Context, hash string) ([]byte, error) {
	if err := s.requireStorage(); err != nil {
		return nil, err
	}
	return s.content.Read(ctx, hash)
}

package service

import (
	"context"
	"encoding/hex"
	"errors"
	"io/fs"

	"github.com/zeebo/blake3"
	"go.uber.org/zap"

	"github.com/mediavault/mediavault/internal/models"
	"github.com/mediavault/mediavault/pkg/blob"
	appErrors "github.com/mediavault/mediavault/pkg/errors"
)

// ContentHash computes the hex-encoded blake3 digest used to address content.
func ContentHash(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

type descriptorStore interface {
	FindByHash(ctx context.Context, locationID int64, hash string) (*models.ContentDescriptor, error)
	GetOrCreate(ctx context.Context, locationID int64, hash string, size int64) (*models.ContentDescriptor, bool, error)
}

// ContentService is a content-addressed byte store bound to one storage
// location. Identical content is stored once: one descriptor row, one blob.
type ContentService struct {
	location    models.StorageLocation
	blobs       *blob.Store
	descriptors descriptorStore
	logger      *zap.Logger
}

// NewContentService constructs a ContentService for a storage location.
func NewContentService(location models.StorageLocation, blobs *blob.Store, descriptors descriptorStore, logger *zap.Logger) *ContentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContentService{location: location, blobs: blobs, descriptors: descriptors, logger: logger}
}

// Location returns the storage location this service writes to.
func (s *ContentService) Location() models.StorageLocation {
	return s.location
}

// Store persists content and returns its descriptor. Storing the same bytes
// twice returns the existing descriptor without writing a second copy; the
// database uniqueness constraint makes this hold under concurrency.
func (s *ContentService) Store(ctx context.Context, data []byte) (*models.ContentDescriptor, error) {
	hash := ContentHash(data)

	descriptor, created, err := s.descriptors.GetOrCreate(ctx, s.location.ID, hash, int64(len(data)))
	if err != nil {
		return nil, err
	}

	// The blob write also runs for pre-existing rows whose bytes are missing
	// on disk, which repairs a previously detected integrity violation.
	if created || !s.blobs.Exists(hash) {
		if err := s.blobs.Write(hash, data); err != nil {
			return nil, err
		}
		if created {
			s.logger.Debug("content stored",
				zap.String("hash", hash),
				zap.Int64("location_id", s.location.ID),
				zap.Int("size", len(data)))
		}
	}

	return descriptor, nil
}

// Read returns the bytes for a content hash. A database row whose blob is
// missing on disk is an integrity violation and is reported, never ignored.
func (s *ContentService) Read(ctx context.Context, hash string) ([]byte, error) {
	data, err := s.blobs.Read(hash)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if _, dbErr := s.descriptors.FindByHash(ctx, s.location.ID, hash); dbErr == nil {
				s.logger.Error("content missing from byte store",
					zap.String("hash", hash),
					zap.Int64("location_id", s.location.ID))
				return nil, appErrors.Wrap(err, appErrors.ErrIntegrity.Code, appErrors.ErrIntegrity.Status, appErrors.ErrIntegrity.Message)
			}
			return nil, appErrors.Clone(appErrors.ErrNotFound, "unknown content hash")
		}
		return nil, err
	}
	return data, nil
}

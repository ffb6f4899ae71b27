package service

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/mediavault/mediavault/internal/dto"
	"github.com/mediavault/mediavault/internal/models"
	"github.com/mediavault/mediavault/internal/repository"
	"github.com/mediavault/mediavault/pkg/blob"
	"github.com/mediavault/mediavault/pkg/config"
	appErrors "github.com/mediavault/mediavault/pkg/errors"
	"github.com/mediavault/mediavault/pkg/thumbnailer"
)

const queryCachePrefix = "vault:query:"

// VaultOptions carries the optional collaborators of a vault.
type VaultOptions struct {
	Cache         *repository.CacheRepository
	QueryCacheTTL time.Duration
	Metrics       *MetricsService
	Renderer      thumbnailer.Renderer
	Logger        *zap.Logger
}

// VaultService is the facade over one open repository: the database catalog,
// the main byte store and the thumbnail store. A process may swap vaults at
// runtime; each vault owns its database handle and closes it on Close.
type VaultService struct {
	db      *sqlx.DB
	storage config.StorageConfig

	files      *repository.FileRepository
	tags       *TagService
	thumbnails *ThumbnailService
	main       *ContentService

	cache    *repository.CacheRepository
	queryTTL time.Duration
	metrics  *MetricsService
	logger   *zap.Logger
}

// OpenVault binds a database handle to the two designated storage locations,
// creating their catalog rows and directories as needed.
func OpenVault(ctx context.Context, db *sqlx.DB, storage config.StorageConfig, opts VaultOptions) (*VaultService, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	locations := repository.NewLocationRepository(db)
	descriptors := repository.NewDescriptorRepository(db)

	mainLoc, err := locations.GetOrCreate(ctx, storage.MainName, storage.MainDir)
	if err != nil {
		return nil, fmt.Errorf("resolve main storage location: %w", err)
	}
	mainBlobs, err := blob.NewStore(storage.MainDir)
	if err != nil {
		return nil, err
	}
	main := NewContentService(*mainLoc, mainBlobs, descriptors, logger)

	var thumbContent *ContentService
	if storage.ThumbnailDir != "" {
		thumbLoc, err := locations.GetOrCreate(ctx, storage.ThumbnailName, storage.ThumbnailDir)
		if err != nil {
			return nil, fmt.Errorf("resolve thumbnail storage location: %w", err)
		}
		thumbBlobs, err := blob.NewStore(storage.ThumbnailDir)
		if err != nil {
			return nil, err
		}
		thumbContent = NewContentService(*thumbLoc, thumbBlobs, descriptors, logger)
	}

	return &VaultService{
		db:         db,
		storage:    storage,
		files:      repository.NewFileRepository(db),
		tags:       NewTagService(repository.NewTagRepository(db), logger),
		thumbnails: NewThumbnailService(repository.NewThumbnailRepository(db), thumbContent, opts.Renderer, logger),
		main:       main,
		cache:      opts.Cache,
		queryTTL:   opts.QueryCacheTTL,
		metrics:    opts.Metrics,
		logger:     logger,
	}, nil
}

// Close releases the vault's database handle. In-flight queries finish before
// the pool shuts down.
func (s *VaultService) Close() error {
	return s.db.Close()
}

// Storage reports the directories the vault is bound to.
func (s *VaultService) Storage() config.StorageConfig {
	return s.storage
}

// Tags exposes the tag catalog of this vault.
func (s *VaultService) Tags() *TagService {
	return s.tags
}

// AddFile stores content and creates its catalog entry. Re-adding identical
// content creates a new file row over the existing descriptor; the bytes are
// stored once.
func (s *VaultService) AddFile(ctx context.Context, req dto.AddFileRequest) (*models.FileWithHash, error) {
	if len(req.Content) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "content must not be empty")
	}

	mime := ""
	if req.MimeType != nil && *req.MimeType != "" {
		mime = *req.MimeType
	} else {
		mime = mimetype.Detect(req.Content).String()
	}

	descriptor, err := s.main.Store(ctx, req.Content)
	if err != nil {
		return nil, err
	}

	file := models.File{
		Name:         req.Name,
		DescriptorID: descriptor.ID,
		LocationID:   s.main.Location().ID,
		FileType:     models.FileTypeFromMime(mime),
		MimeType:     &mime,
		Size:         int64(len(req.Content)),
	}
	if req.CreationTime != nil {
		file.CreationTime = *req.CreationTime
	}
	if req.ChangeTime != nil {
		file.ChangeTime = *req.ChangeTime
	}
	if err := s.files.Create(ctx, &file); err != nil {
		return nil, err
	}

	s.invalidateQueryCache(ctx)
	s.logger.Info("file added",
		zap.Int64("file_id", file.ID),
		zap.String("hash", descriptor.Hash),
		zap.String("mime", mime))

	return &models.FileWithHash{File: file, Hash: descriptor.Hash}, nil
}

// AddFileFromPath imports a file readable on the daemon host, carrying over
// its filesystem name and modification time.
func (s *VaultService) AddFileFromPath(ctx context.Context, path string) (*models.FileWithHash, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "path does not exist")
		}
		return nil, err
	}
	if info.IsDir() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "path is a directory")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	name := info.Name()
	modTime := info.ModTime().UTC()
	return s.AddFile(ctx, dto.AddFileRequest{
		Name:         &name,
		Content:      data,
		CreationTime: &modTime,
		ChangeTime:   &modTime,
	})
}

// FileByID fetches a file.
func (s *VaultService) FileByID(ctx context.Context, id int64) (*models.FileWithHash, error) {
	file, err := s.files.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "unknown file id")
	}
	return file, nil
}

// FileByHash fetches a file by its content hash.
func (s *VaultService) FileByHash(ctx context.Context, hash string) (*models.FileWithHash, error) {
	file, err := s.files.FindByHash(ctx, hash)
	if err != nil {
		return nil, notFoundOr(err, "unknown file hash")
	}
	return file, nil
}

// Files lists all files.
func (s *VaultService) Files(ctx context.Context, sortBy []models.SortKey) ([]models.FileWithHash, error) {
	return s.files.List(ctx, sortBy)
}

// FindFilesByTags evaluates a conjunction of tag predicates. A non-negated
// clause naming an unknown tag can match nothing, so the query short-circuits
// to an empty result; a negated unknown tag is vacuously satisfied and is
// dropped from the predicate set.
func (s *VaultService) FindFilesByTags(ctx context.Context, req dto.FindFilesRequest) ([]models.FileWithHash, error) {
	sortBy := make([]models.SortKey, 0, len(req.SortBy))
	for _, key := range req.SortBy {
		sortBy = append(sortBy, models.SortKey{Field: key.Field, Ascending: key.Ascending})
	}

	if cached, ok := s.lookupQueryCache(ctx, req); ok {
		return cached, nil
	}

	pairs := make([]models.TagPair, 0, len(req.Tags))
	for _, clause := range req.Tags {
		pair, err := ParseTag(clause.Tag)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, pair)
	}

	resolved, err := s.tags.repo.ListTagsByPairs(ctx, dedupePairs(pairs))
	if err != nil {
		return nil, err
	}
	byKey := make(map[string]models.Tag, len(resolved))
	for _, tag := range resolved {
		byKey[tag.Pair().Key()] = tag
	}

	var predicates []models.TagPredicate
	for i, clause := range req.Tags {
		tag, known := byKey[pairs[i].Key()]
		if !known {
			if !clause.Negate {
				return []models.FileWithHash{}, nil
			}
			continue
		}
		predicates = append(predicates, models.TagPredicate{TagID: tag.ID, Negate: clause.Negate})
	}

	var files []models.FileWithHash
	if len(predicates) == 0 {
		files, err = s.files.List(ctx, sortBy)
	} else {
		files, err = s.files.FindByTagPredicates(ctx, predicates, sortBy)
	}
	if err != nil {
		return nil, err
	}

	s.storeQueryCache(ctx, req, files)
	return files, nil
}

// ReadFileContent returns the raw bytes and mime type of a file.
func (s *VaultService) ReadFileContent(ctx context.Context, hash string) ([]byte, string, error) {
	file, err := s.FileByHash(ctx, hash)
	if err != nil {
		return nil, "", err
	}
	data, err := s.main.Read(ctx, hash)
	if err != nil {
		return nil, "", err
	}
	mime := "application/octet-stream"
	if file.MimeType != nil && *file.MimeType != "" {
		mime = *file.MimeType
	}
	return data, mime, nil
}

// UpdateFileName renames a file.
func (s *VaultService) UpdateFileName(ctx context.Context, id int64, name string) (*models.FileWithHash, error) {
	if _, err := s.FileByID(ctx, id); err != nil {
		return nil, err
	}
	if err := s.files.UpdateName(ctx, id, name); err != nil {
		return nil, err
	}
	return s.FileByID(ctx, id)
}

// UpdateFileStatus moves a file through its lifecycle.
func (s *VaultService) UpdateFileStatus(ctx context.Context, id int64, raw string) (*models.FileWithHash, error) {
	status, ok := models.ParseFileStatus(raw)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown file status")
	}
	if _, err := s.FileByID(ctx, id); err != nil {
		return nil, err
	}
	if err := s.files.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	s.invalidateQueryCache(ctx)
	return s.FileByID(ctx, id)
}

// TagsForFileHash returns the tags of the file with the given content hash.
func (s *VaultService) TagsForFileHash(ctx context.Context, hash string) ([]models.Tag, error) {
	file, err := s.FileByHash(ctx, hash)
	if err != nil {
		return nil, err
	}
	return s.tags.ForFile(ctx, file.ID)
}

// ChangeFileTags adds and removes tags on the file with the given hash.
func (s *VaultService) ChangeFileTags(ctx context.Context, hash string, add, remove []string) ([]models.Tag, error) {
	file, err := s.FileByHash(ctx, hash)
	if err != nil {
		return nil, err
	}
	addPairs, err := ParseTags(add)
	if err != nil {
		return nil, err
	}
	removePairs, err := ParseTags(remove)
	if err != nil {
		return nil, err
	}
	if err := s.tags.ChangeFileTags(ctx, file.ID, addPairs, removePairs); err != nil {
		return nil, err
	}
	s.invalidateQueryCache(ctx)
	return s.tags.ForFile(ctx, file.ID)
}

// ThumbnailsForFile lists the stored thumbnails of a file by content hash.
func (s *VaultService) ThumbnailsForFile(ctx context.Context, hash string) ([]models.ThumbnailWithHash, error) {
	file, err := s.FileByHash(ctx, hash)
	if err != nil {
		return nil, err
	}
	return s.thumbnails.ListForFile(ctx, file.ID)
}

// GetOrCreateThumbnail returns a thumbnail within the tolerance window of the
// requested dimensions, rendering one on demand.
func (s *VaultService) GetOrCreateThumbnail(ctx context.Context, hash string, height, width int) (*models.ThumbnailWithHash, []byte, error) {
	file, err := s.FileByHash(ctx, hash)
	if err != nil {
		return nil, nil, err
	}
	return s.thumbnails.GetOrCreate(ctx, &file.File, height, width, func() ([]byte, error) {
		return s.main.Read(ctx, hash)
	})
}

// CreateThumbnailTier renders a thumbnail at a named tier regardless of what
// is already stored.
func (s *VaultService) CreateThumbnailTier(ctx context.Context, hash string, tier thumbnailer.Tier) (*models.ThumbnailWithHash, []byte, error) {
	file, err := s.FileByHash(ctx, hash)
	if err != nil {
		return nil, nil, err
	}
	return s.thumbnails.CreateForTier(ctx, &file.File, tier, func() ([]byte, error) {
		return s.main.Read(ctx, hash)
	})
}

func (s *VaultService) lookupQueryCache(ctx context.Context, req dto.FindFilesRequest) ([]models.FileWithHash, bool) {
	if s.cache == nil {
		return nil, false
	}
	var files []models.FileWithHash
	err := s.cache.Get(ctx, queryCacheKey(req), &files)
	if err != nil {
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("query cache read failed", zap.Error(err))
		}
		s.metrics.RecordQueryCache(false)
		return nil, false
	}
	s.metrics.RecordQueryCache(true)
	return files, true
}

func (s *VaultService) storeQueryCache(ctx context.Context, req dto.FindFilesRequest, files []models.FileWithHash) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, queryCacheKey(req), files, s.queryTTL); err != nil {
		s.logger.Warn("query cache write failed", zap.Error(err))
	}
}

func (s *VaultService) invalidateQueryCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, queryCachePrefix+"*"); err != nil {
		s.logger.Warn("query cache invalidation failed", zap.Error(err))
	}
}

func queryCacheKey(req dto.FindFilesRequest) string {
	payload, _ := json.Marshal(req)
	sum := sha256.Sum256(payload)
	return queryCachePrefix + hex.EncodeToString(sum[:])
}

func notFoundOr(err error, message string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, message)
	}
	return err
}

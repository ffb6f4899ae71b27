package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/mediavault/mediavault/internal/models"
	appErrors "github.com/mediavault/mediavault/pkg/errors"
)

type tagCatalog interface {
	GetOrCreateNamespace(ctx context.Context, name string) (*models.Namespace, error)
	ListNamespacesByNames(ctx context.Context, names []string) ([]models.Namespace, error)
	BulkInsertNamespaces(ctx context.Context, names []string) error
	FindTag(ctx context.Context, namespaceID *int64, name string) (*models.Tag, error)
	GetOrCreateTag(ctx context.Context, namespaceID *int64, name string) (*models.Tag, error)
	ListTagsByPairs(ctx context.Context, pairs []models.TagPair) ([]models.Tag, error)
	BulkInsertTags(ctx context.Context, tags []models.Tag) error
	ListAll(ctx context.Context) ([]models.Tag, error)
	ListForFile(ctx context.Context, fileID int64) ([]models.Tag, error)
	ListForHashes(ctx context.Context, hashes []string) ([]models.Tag, error)
	AddFileTags(ctx context.Context, fileID int64, tagIDs []int64) error
	RemoveFileTags(ctx context.Context, fileID int64, tagIDs []int64) error
}

// TagService implements the hierarchical tag catalog.
type TagService struct {
	repo   tagCatalog
	logger *zap.Logger
}

// NewTagService constructs a TagService.
func NewTagService(repo tagCatalog, logger *zap.Logger) *TagService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TagService{repo: repo, logger: logger}
}

// ParseTag splits a raw tag string on the first colon into an optional
// namespace and a name. "artist:jane" and "ARTIST: Jane" parse to the same
// pair; a string without a colon is an unnamespaced tag.
func ParseTag(raw string) (models.TagPair, error) {
	var pair models.TagPair
	if idx := strings.Index(raw, ":"); idx >= 0 {
		ns := normalizeTagPart(raw[:idx])
		pair.Name = normalizeTagPart(raw[idx+1:])
		if ns != "" {
			pair.Namespace = &ns
		}
	} else {
		pair.Name = normalizeTagPart(raw)
	}
	if pair.Name == "" {
		return pair, appErrors.Clone(appErrors.ErrValidation, "tag name must not be empty")
	}
	return pair, nil
}

func normalizeTagPart(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ParseTags parses a list of raw tag strings, rejecting the whole batch on the
// first malformed entry.
func ParseTags(raws []string) ([]models.TagPair, error) {
	pairs := make([]models.TagPair, 0, len(raws))
	for _, raw := range raws {
		pair, err := ParseTag(raw)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, pair)
	}
	return pairs, nil
}

// FindOrCreate resolves a tag by identity, creating the namespace and tag rows
// as needed. Calling it twice with the same pair returns the same row.
func (s *TagService) FindOrCreate(ctx context.Context, pair models.TagPair) (*models.Tag, error) {
	var namespaceID *int64
	if pair.Namespace != nil {
		ns, err := s.repo.GetOrCreateNamespace(ctx, *pair.Namespace)
		if err != nil {
			return nil, err
		}
		namespaceID = &ns.ID
	}
	return s.repo.GetOrCreateTag(ctx, namespaceID, pair.Name)
}

// Find resolves a tag without creating it.
func (s *TagService) Find(ctx context.Context, pair models.TagPair) (*models.Tag, error) {
	var namespaceID *int64
	if pair.Namespace != nil {
		ns, err := s.repo.ListNamespacesByNames(ctx, []string{*pair.Namespace})
		if err != nil {
			return nil, err
		}
		if len(ns) == 0 {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "unknown tag")
		}
		namespaceID = &ns[0].ID
	}
	tag, err := s.repo.FindTag(ctx, namespaceID, pair.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "unknown tag")
		}
		return nil, err
	}
	return tag, nil
}

// AddAll resolves a batch of tag pairs to rows, creating whatever is missing.
// It diffs against the catalog instead of resolving pair by pair: one query
// for existing namespaces, one bulk insert for the missing ones, and the same
// two steps for tags. Duplicate pairs in the input collapse to one row.
func (s *TagService) AddAll(ctx context.Context, pairs []models.TagPair) ([]models.Tag, error) {
	unique := dedupePairs(pairs)
	if len(unique) == 0 {
		return nil, nil
	}

	nsIDs, err := s.ensureNamespaces(ctx, unique)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.ListTagsByPairs(ctx, unique)
	if err != nil {
		return nil, err
	}
	found := make(map[string]bool, len(existing))
	for _, tag := range existing {
		found[tag.Pair().Key()] = true
	}

	var missing []models.TagPair
	var inserts []models.Tag
	for _, pair := range unique {
		if found[pair.Key()] {
			continue
		}
		missing = append(missing, pair)
		tag := models.Tag{Name: pair.Name}
		if pair.Namespace != nil {
			id := nsIDs[*pair.Namespace]
			tag.NamespaceID = &id
		}
		inserts = append(inserts, tag)
	}
	if len(inserts) == 0 {
		return existing, nil
	}

	if err := s.repo.BulkInsertTags(ctx, inserts); err != nil {
		return nil, err
	}
	// Refetch instead of trusting the insert: a concurrent writer may have
	// won some of the conflicts, and their rows are just as good.
	created, err := s.repo.ListTagsByPairs(ctx, missing)
	if err != nil {
		return nil, err
	}
	return append(existing, created...), nil
}

func (s *TagService) ensureNamespaces(ctx context.Context, pairs []models.TagPair) (map[string]int64, error) {
	var names []string
	seen := make(map[string]bool)
	for _, pair := range pairs {
		if pair.Namespace != nil && !seen[*pair.Namespace] {
			seen[*pair.Namespace] = true
			names = append(names, *pair.Namespace)
		}
	}
	if len(names) == 0 {
		return nil, nil
	}

	existing, err := s.repo.ListNamespacesByNames(ctx, names)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]int64, len(names))
	for _, ns := range existing {
		ids[ns.Name] = ns.ID
	}

	var missing []string
	for _, name := range names {
		if _, ok := ids[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		if err := s.repo.BulkInsertNamespaces(ctx, missing); err != nil {
			return nil, err
		}
		created, err := s.repo.ListNamespacesByNames(ctx, missing)
		if err != nil {
			return nil, err
		}
		for _, ns := range created {
			ids[ns.Name] = ns.ID
		}
	}
	return ids, nil
}

func dedupePairs(pairs []models.TagPair) []models.TagPair {
	seen := make(map[string]bool, len(pairs))
	unique := make([]models.TagPair, 0, len(pairs))
	for _, pair := range pairs {
		key := pair.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, pair)
	}
	return unique
}

// All returns every tag in the catalog.
func (s *TagService) All(ctx context.Context) ([]models.Tag, error) {
	return s.repo.ListAll(ctx)
}

// ForFile returns the tags linked to a file.
func (s *TagService) ForFile(ctx context.Context, fileID int64) ([]models.Tag, error) {
	return s.repo.ListForFile(ctx, fileID)
}

// ForHashes returns the distinct tags across the files with the given hashes.
func (s *TagService) ForHashes(ctx context.Context, hashes []string) ([]models.Tag, error) {
	tags, err := s.repo.ListForHashes(ctx, hashes)
	if err != nil {
		return nil, err
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].NormalizedName() < tags[j].NormalizedName() })
	return tags, nil
}

// ChangeFileTags adds and removes tag links on one file. Added tags are
// created on the fly; removals referencing unknown tags are ignored.
func (s *TagService) ChangeFileTags(ctx context.Context, fileID int64, add, remove []models.TagPair) error {
	if len(add) > 0 {
		tags, err := s.AddAll(ctx, add)
		if err != nil {
			return err
		}
		ids := make([]int64, len(tags))
		for i, tag := range tags {
			ids[i] = tag.ID
		}
		if err := s.repo.AddFileTags(ctx, fileID, ids); err != nil {
			return err
		}
	}
	if len(remove) > 0 {
		tags, err := s.repo.ListTagsByPairs(ctx, dedupePairs(remove))
		if err != nil {
			return err
		}
		if len(tags) > 0 {
			ids := make([]int64, len(tags))
			for i, tag := range tags {
				ids[i] = tag.ID
			}
			if err := s.repo.RemoveFileTags(ctx, fileID, ids); err != nil {
				return err
			}
		}
	}
	return nil
}

// Link attaches already resolved tag ids to a file.
func (s *TagService) Link(ctx context.Context, fileID int64, tagIDs []int64) error {
	return s.repo.AddFileTags(ctx, fileID, tagIDs)
}

package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mediavault/mediavault/internal/models"
	appErrors "github.com/mediavault/mediavault/pkg/errors"
)

type tagCatalogStub struct {
	namespaces map[string]int64
	tags       map[string]*models.Tag
	links      map[int64]map[int64]bool

	nextNamespaceID int64
	nextTagID       int64

	tagInserts int
	nsInserts  int
}

func newTagCatalogStub() *tagCatalogStub {
	return &tagCatalogStub{
		namespaces:      map[string]int64{},
		tags:            map[string]*models.Tag{},
		links:           map[int64]map[int64]bool{},
		nextNamespaceID: 1,
		nextTagID:       1,
	}
}

func (s *tagCatalogStub) namespaceName(id int64) *string {
	for name, nsID := range s.namespaces {
		if nsID == id {
			n := name
			return &n
		}
	}
	return nil
}

func (s *tagCatalogStub) GetOrCreateNamespace(ctx context.Context, name string) (*models.Namespace, error) {
	if id, ok := s.namespaces[name]; ok {
		return &models.Namespace{ID: id, Name: name}, nil
	}
	id := s.nextNamespaceID
	s.nextNamespaceID++
	s.namespaces[name] = id
	s.nsInserts++
	return &models.Namespace{ID: id, Name: name}, nil
}

func (s *tagCatalogStub) ListNamespacesByNames(ctx context.Context, names []string) ([]models.Namespace, error) {
	var out []models.Namespace
	for _, name := range names {
		if id, ok := s.namespaces[name]; ok {
			out = append(out, models.Namespace{ID: id, Name: name})
		}
	}
	return out, nil
}

func (s *tagCatalogStub) BulkInsertNamespaces(ctx context.Context, names []string) error {
	for _, name := range names {
		if _, ok := s.namespaces[name]; !ok {
			s.namespaces[name] = s.nextNamespaceID
			s.nextNamespaceID++
			s.nsInserts++
		}
	}
	return nil
}

func (s *tagCatalogStub) key(namespaceID *int64, name string) string {
	if namespaceID == nil {
		return name
	}
	if ns := s.namespaceName(*namespaceID); ns != nil {
		return *ns + ":" + name
	}
	return name
}

func (s *tagCatalogStub) FindTag(ctx context.Context, namespaceID *int64, name string) (*models.Tag, error) {
	if tag, ok := s.tags[s.key(namespaceID, name)]; ok {
		return tag, nil
	}
	return nil, sql.ErrNoRows
}

func (s *tagCatalogStub) GetOrCreateTag(ctx context.Context, namespaceID *int64, name string) (*models.Tag, error) {
	key := s.key(namespaceID, name)
	if tag, ok := s.tags[key]; ok {
		return tag, nil
	}
	tag := &models.Tag{ID: s.nextTagID, Name: name, NamespaceID: namespaceID}
	if namespaceID != nil {
		tag.Namespace = s.namespaceName(*namespaceID)
	}
	s.nextTagID++
	s.tags[key] = tag
	s.tagInserts++
	return tag, nil
}

func (s *tagCatalogStub) ListTagsByPairs(ctx context.Context, pairs []models.TagPair) ([]models.Tag, error) {
	var out []models.Tag
	for _, pair := range pairs {
		if tag, ok := s.tags[pair.Key()]; ok {
			out = append(out, *tag)
		}
	}
	return out, nil
}

func (s *tagCatalogStub) BulkInsertTags(ctx context.Context, tags []models.Tag) error {
	for i := range tags {
		tag := tags[i]
		if tag.NamespaceID != nil {
			tag.Namespace = s.namespaceName(*tag.NamespaceID)
		}
		key := tag.Pair().Key()
		if _, ok := s.tags[key]; ok {
			continue
		}
		tag.ID = s.nextTagID
		s.nextTagID++
		s.tags[key] = &tag
		s.tagInserts++
	}
	return nil
}

func (s *tagCatalogStub) ListAll(ctx context.Context) ([]models.Tag, error) {
	var out []models.Tag
	for _, tag := range s.tags {
		out = append(out, *tag)
	}
	return out, nil
}

func (s *tagCatalogStub) ListForFile(ctx context.Context, fileID int64) ([]models.Tag, error) {
	var out []models.Tag
	for _, tag := range s.tags {
		if s.links[fileID][tag.ID] {
			out = append(out, *tag)
		}
	}
	return out, nil
}

func (s *tagCatalogStub) ListForHashes(ctx context.Context, hashes []string) ([]models.Tag, error) {
	return nil, nil
}

func (s *tagCatalogStub) AddFileTags(ctx context.Context, fileID int64, tagIDs []int64) error {
	if s.links[fileID] == nil {
		s.links[fileID] = map[int64]bool{}
	}
	for _, id := range tagIDs {
		s.links[fileID][id] = true
	}
	return nil
}

func (s *tagCatalogStub) RemoveFileTags(ctx context.Context, fileID int64, tagIDs []int64) error {
	for _, id := range tagIDs {
		delete(s.links[fileID], id)
	}
	return nil
}

func TestParseTagNormalizes(t *testing.T) {
	pair, err := ParseTag("  ARTIST : Jane Doe ")
	require.NoError(t, err)
	require.NotNil(t, pair.Namespace)
	require.Equal(t, "artist", *pair.Namespace)
	require.Equal(t, "jane doe", pair.Name)

	pair, err = ParseTag("Landscape")
	require.NoError(t, err)
	require.Nil(t, pair.Namespace)
	require.Equal(t, "landscape", pair.Name)

	// Only the first colon splits; the rest belongs to the name.
	pair, err = ParseTag("source:https://example.com")
	require.NoError(t, err)
	require.Equal(t, "source", *pair.Namespace)
	require.Equal(t, "https://example.com", pair.Name)
}

func TestParseTagRejectsEmptyName(t *testing.T) {
	_, err := ParseTag("   ")
	require.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = ParseTag("artist:")
	require.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestParseTagEmptyNamespaceMeansNone(t *testing.T) {
	pair, err := ParseTag(":loose")
	require.NoError(t, err)
	require.Nil(t, pair.Namespace)
	require.Equal(t, "loose", pair.Name)
}

func TestTagServiceFindOrCreateIsIdempotent(t *testing.T) {
	catalog := newTagCatalogStub()
	svc := NewTagService(catalog, nil)
	ctx := context.Background()

	pair, err := ParseTag("character:alice")
	require.NoError(t, err)

	first, err := svc.FindOrCreate(ctx, pair)
	require.NoError(t, err)
	second, err := svc.FindOrCreate(ctx, pair)
	require.NoError(t, err)

	require.Equal(t, first.ID, second.ID)
	require.Equal(t, 1, catalog.tagInserts)
	require.Equal(t, 1, catalog.nsInserts)
}

func TestTagServiceAddAllCreatesMissingOnly(t *testing.T) {
	catalog := newTagCatalogStub()
	svc := NewTagService(catalog, nil)
	ctx := context.Background()

	existing, err := svc.FindOrCreate(ctx, mustPair(t, "character:alice"))
	require.NoError(t, err)

	tags, err := svc.AddAll(ctx, []models.TagPair{
		mustPair(t, "character:alice"),
		mustPair(t, "character:bob"),
		mustPair(t, "landscape"),
		mustPair(t, "landscape"),
	})
	require.NoError(t, err)
	require.Len(t, tags, 3)

	names := make(map[string]int64)
	for _, tag := range tags {
		names[tag.NormalizedName()] = tag.ID
	}
	require.Equal(t, existing.ID, names["character:alice"])
	require.Contains(t, names, "character:bob")
	require.Contains(t, names, "landscape")
	require.Equal(t, 3, catalog.tagInserts)
	require.Equal(t, 1, catalog.nsInserts)
}

func TestTagServiceAddAllSecondRunInsertsNothing(t *testing.T) {
	catalog := newTagCatalogStub()
	svc := NewTagService(catalog, nil)
	ctx := context.Background()

	pairs := []models.TagPair{mustPair(t, "a:x"), mustPair(t, "b:y"), mustPair(t, "z")}

	first, err := svc.AddAll(ctx, pairs)
	require.NoError(t, err)
	require.Len(t, first, 3)
	inserts := catalog.tagInserts

	second, err := svc.AddAll(ctx, pairs)
	require.NoError(t, err)
	require.Len(t, second, 3)
	require.Equal(t, inserts, catalog.tagInserts)
}

func TestTagServiceChangeFileTags(t *testing.T) {
	catalog := newTagCatalogStub()
	svc := NewTagService(catalog, nil)
	ctx := context.Background()

	require.NoError(t, svc.ChangeFileTags(ctx, 7,
		[]models.TagPair{mustPair(t, "character:alice"), mustPair(t, "landscape")}, nil))

	tags, err := svc.ForFile(ctx, 7)
	require.NoError(t, err)
	require.Len(t, tags, 2)

	require.NoError(t, svc.ChangeFileTags(ctx, 7, nil,
		[]models.TagPair{mustPair(t, "landscape"), mustPair(t, "never:existed")}))

	tags, err = svc.ForFile(ctx, 7)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	require.Equal(t, "character:alice", tags[0].NormalizedName())
}

func mustPair(t *testing.T, raw string) models.TagPair {
	t.Helper()
	pair, err := ParseTag(raw)
	require.NoError(t, err)
	return pair
}

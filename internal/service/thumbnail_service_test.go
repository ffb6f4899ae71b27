package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mediavault/mediavault/internal/models"
	appErrors "github.com/mediavault/mediavault/pkg/errors"
	"github.com/mediavault/mediavault/pkg/thumbnailer"
)

type thumbnailStoreStub struct {
	thumbs []models.ThumbnailWithHash
	nextID int64
}

func (s *thumbnailStoreStub) Create(ctx context.Context, thumb *models.Thumbnail) error {
	s.nextID++
	thumb.ID = s.nextID
	return nil
}

func (s *thumbnailStoreStub) ListByFile(ctx context.Context, fileID int64) ([]models.ThumbnailWithHash, error) {
	var out []models.ThumbnailWithHash
	for _, t := range s.thumbs {
		if t.FileID == fileID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *thumbnailStoreStub) FindByHash(ctx context.Context, hash string) (*models.ThumbnailWithHash, error) {
	for i := range s.thumbs {
		if s.thumbs[i].Hash == hash {
			return &s.thumbs[i], nil
		}
	}
	return nil, appErrors.ErrNotFound
}

type countingRenderer struct {
	renders int
	height  int
	width   int
}

func (r *countingRenderer) Render(source []byte, mimeHint string, tier thumbnailer.Tier) (*thumbnailer.Result, error) {
	r.renders++
	h, w := r.height, r.width
	if h == 0 {
		h, w = tier.Dimensions()
	}
	return &thumbnailer.Result{Data: []byte("png:" + string(tier)), Height: h, Width: w}, nil
}

func newTestThumbnailService(t *testing.T) (*ThumbnailService, *thumbnailStoreStub, *countingRenderer, *ContentService) {
	t.Helper()
	content, _, _ := newTestContentService(t)
	store := &thumbnailStoreStub{}
	renderer := &countingRenderer{}
	svc := NewThumbnailService(store, content, renderer, nil)
	return svc, store, renderer, content
}

func loaderFor(t *testing.T, data []byte, calls *int) SourceLoader {
	t.Helper()
	return func() ([]byte, error) {
		*calls++
		return data, nil
	}
}

func TestThumbnailServiceRendersWhenNothingStored(t *testing.T) {
	svc, store, renderer, _ := newTestThumbnailService(t)
	file := &models.File{ID: 1}
	var loads int

	thumb, data, err := svc.GetOrCreate(context.Background(), file, 250, 250, loaderFor(t, []byte("source"), &loads))
	require.NoError(t, err)
	require.Equal(t, 1, renderer.renders)
	require.Equal(t, 1, loads)
	require.NotEmpty(t, data)
	require.Equal(t, int64(1), thumb.FileID)
	require.Equal(t, int64(1), store.nextID)
	// 250x250 needs the medium box.
	require.Equal(t, 256, thumb.Height)
	require.Equal(t, 256, thumb.Width)
}

func TestThumbnailServiceReusesStoredWithinWindow(t *testing.T) {
	svc, store, renderer, content := newTestThumbnailService(t)
	file := &models.File{ID: 1}
	ctx := context.Background()

	descriptor, err := content.Store(ctx, []byte("stored png"))
	require.NoError(t, err)
	store.thumbs = append(store.thumbs, models.ThumbnailWithHash{
		Thumbnail: models.Thumbnail{ID: 1, FileID: 1, DescriptorID: descriptor.ID, Height: 256, Width: 256},
		Hash:      descriptor.Hash,
	})

	var loads int
	thumb, data, err := svc.GetOrCreate(ctx, file, 250, 250, loaderFor(t, nil, &loads))
	require.NoError(t, err)
	require.Equal(t, 0, renderer.renders)
	require.Equal(t, 0, loads)
	require.Equal(t, []byte("stored png"), data)
	require.Equal(t, int64(1), thumb.ID)
}

func TestThumbnailServiceWindowBoundsAreInclusive(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name      string
		stored    int
		requested int
		reused    bool
	}{
		{"exact lower bound", 200, 250, true},
		{"exact upper bound", 300, 250, true},
		{"just under lower", 199, 250, false},
		{"just over upper", 301, 250, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, store, renderer, content := newTestThumbnailService(t)
			descriptor, err := content.Store(ctx, []byte("stored"))
			require.NoError(t, err)
			store.thumbs = []models.ThumbnailWithHash{{
				Thumbnail: models.Thumbnail{ID: 1, FileID: 1, Height: tc.stored, Width: tc.stored},
				Hash:      descriptor.Hash,
			}}

			var loads int
			_, _, err = svc.GetOrCreate(ctx, &models.File{ID: 1}, tc.requested, tc.requested, loaderFor(t, []byte("src"), &loads))
			require.NoError(t, err)
			if tc.reused {
				require.Equal(t, 0, renderer.renders)
			} else {
				require.Equal(t, 1, renderer.renders)
			}
		})
	}
}

func TestThumbnailServiceFailsEagerlyWithoutStorage(t *testing.T) {
	store := &thumbnailStoreStub{thumbs: []models.ThumbnailWithHash{{
		Thumbnail: models.Thumbnail{ID: 1, FileID: 1, Height: 256, Width: 256},
		Hash:      "deadbeef",
	}}}
	svc := NewThumbnailService(store, nil, &countingRenderer{}, nil)

	// Even though a stored thumbnail would satisfy the request, the missing
	// storage surfaces before any lookup.
	var loads int
	_, _, err := svc.GetOrCreate(context.Background(), &models.File{ID: 1}, 250, 250, loaderFor(t, nil, &loads))
	require.ErrorIs(t, err, appErrors.ErrStorageUnavailable)
	require.Equal(t, 0, loads)

	_, err = svc.ListForFile(context.Background(), 1)
	require.ErrorIs(t, err, appErrors.ErrStorageUnavailable)
}

func TestThumbnailServiceRejectsNonPositiveDimensions(t *testing.T) {
	svc, _, _, _ := newTestThumbnailService(t)

	var loads int
	_, _, err := svc.GetOrCreate(context.Background(), &models.File{ID: 1}, 0, 250, loaderFor(t, nil, &loads))
	require.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestThumbnailServiceCreateForTierIgnoresStored(t *testing.T) {
	svc, store, renderer, content := newTestThumbnailService(t)
	ctx := context.Background()

	descriptor, err := content.Store(ctx, []byte("stored"))
	require.NoError(t, err)
	store.thumbs = []models.ThumbnailWithHash{{
		Thumbnail: models.Thumbnail{ID: 1, FileID: 1, Height: 128, Width: 128},
		Hash:      descriptor.Hash,
	}}

	var loads int
	thumb, _, err := svc.CreateForTier(ctx, &models.File{ID: 1}, thumbnailer.TierSmall, loaderFor(t, []byte("src"), &loads))
	require.NoError(t, err)
	require.Equal(t, 1, renderer.renders)
	require.Equal(t, 128, thumb.Height)
}

package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mediavault/mediavault/internal/dto"
	"github.com/mediavault/mediavault/internal/repository"
)

func newQueryTestVault(t *testing.T, catalog *tagCatalogStub) (*VaultService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	return &VaultService{
		db:     sqlxDB,
		files:  repository.NewFileRepository(sqlxDB),
		tags:   NewTagService(catalog, nil),
		logger: zap.NewNop(),
	}, mock
}

func queryFileRows() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "name", "descriptor_id", "location_id", "file_type", "mime_type",
		"status", "size", "creation_time", "change_time", "import_time", "hash",
	}).AddRow(int64(1), nil, int64(1), int64(1), "IMAGE", "image/png", "IMPORTED", int64(10), now, now, now, "aa")
}

func TestFindFilesByTagsMissingRequiredTagShortCircuits(t *testing.T) {
	catalog := newTagCatalogStub()
	vault, mock := newQueryTestVault(t, catalog)

	// No tag named "ghost" exists, so no file can carry it. The database is
	// never queried.
	files, err := vault.FindFilesByTags(context.Background(), dto.FindFilesRequest{
		Tags: []dto.TagQuery{{Tag: "ghost"}},
	})
	require.NoError(t, err)
	require.Empty(t, files)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindFilesByTagsMissingNegatedTagIsVacuous(t *testing.T) {
	catalog := newTagCatalogStub()
	vault, mock := newQueryTestVault(t, catalog)

	// Excluding a tag nothing carries excludes nothing; the query degrades
	// to a plain listing.
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY f.import_time DESC")).
		WillReturnRows(queryFileRows())

	files, err := vault.FindFilesByTags(context.Background(), dto.FindFilesRequest{
		Tags: []dto.TagQuery{{Tag: "ghost", Negate: true}},
	})
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindFilesByTagsMixedKnownAndMissingNegated(t *testing.T) {
	catalog := newTagCatalogStub()
	svc := NewTagService(catalog, nil)
	known, err := svc.FindOrCreate(context.Background(), mustPair(t, "character:alice"))
	require.NoError(t, err)

	vault, mock := newQueryTestVault(t, catalog)

	// The unknown negated clause drops out; the known positive clause
	// becomes the sole predicate.
	mock.ExpectQuery(regexp.QuoteMeta("HAVING COUNT(DISTINCT tag_id) = 1")).
		WithArgs(known.ID).
		WillReturnRows(queryFileRows())

	files, err := vault.FindFilesByTags(context.Background(), dto.FindFilesRequest{
		Tags: []dto.TagQuery{
			{Tag: "character:alice"},
			{Tag: "ghost", Negate: true},
		},
	})
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateFileStatusRejectsUnknownStatus(t *testing.T) {
	catalog := newTagCatalogStub()
	vault, _ := newQueryTestVault(t, catalog)

	_, err := vault.UpdateFileStatus(context.Background(), 1, "purged")
	require.Error(t, err)
}

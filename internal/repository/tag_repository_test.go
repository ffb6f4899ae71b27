package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/mediavault/mediavault/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func tagRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "namespace_id", "namespace"})
}

func TestTagRepositoryGetOrCreateTagInserts(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTagRepository(db)
	nsID := int64(3)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO tags (name, namespace_id)")).
		WithArgs("alice", &nsID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE t.id = $1")).
		WithArgs(int64(7)).
		WillReturnRows(tagRows().AddRow(int64(7), "alice", nsID, "character"))

	tag, err := repo.GetOrCreateTag(context.Background(), &nsID, "alice")
	require.NoError(t, err)
	require.Equal(t, int64(7), tag.ID)
	require.Equal(t, "character:alice", tag.NormalizedName())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTagRepositoryGetOrCreateTagFallsBackOnConflict(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTagRepository(db)

	// DO NOTHING means the insert returns no row when another writer won.
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO tags (name, namespace_id)")).
		WithArgs("alice", nil).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(regexp.QuoteMeta("t.namespace_id IS NULL AND t.name = $1")).
		WithArgs("alice").
		WillReturnRows(tagRows().AddRow(int64(4), "alice", nil, nil))

	tag, err := repo.GetOrCreateTag(context.Background(), nil, "alice")
	require.NoError(t, err)
	require.Equal(t, int64(4), tag.ID)
	require.Nil(t, tag.NamespaceID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTagRepositoryListTagsByPairsMixesNamespaces(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTagRepository(db)
	ns := "character"

	mock.ExpectQuery(regexp.QuoteMeta("(n.name = $1 AND t.name = $2) OR (t.namespace_id IS NULL AND t.name = $3)")).
		WithArgs("character", "alice", "landscape").
		WillReturnRows(tagRows().
			AddRow(int64(1), "alice", int64(3), "character").
			AddRow(int64(2), "landscape", nil, nil))

	tags, err := repo.ListTagsByPairs(context.Background(), []models.TagPair{
		{Namespace: &ns, Name: "alice"},
		{Name: "landscape"},
	})
	require.NoError(t, err)
	require.Len(t, tags, 2)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTagRepositoryBulkInsertNamespaces(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTagRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO namespaces (name) VALUES ($1),($2) ON CONFLICT (name) DO NOTHING")).
		WithArgs("character", "artist").
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, repo.BulkInsertNamespaces(context.Background(), []string{"character", "artist"}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTagRepositoryAddFileTagsIgnoresExistingLinks(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTagRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO file_tags (file_id, tag_id) VALUES ($1, $2),($1, $3) ON CONFLICT DO NOTHING")).
		WithArgs(int64(9), int64(1), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.AddFileTags(context.Background(), 9, []int64{1, 2}))
	require.NoError(t, mock.ExpectationsWereMet())
}

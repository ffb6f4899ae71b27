package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func descriptorRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "location_id", "hash", "size", "created_at"})
}

func TestDescriptorRepositoryGetOrCreateInserts(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewDescriptorRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO content_descriptors")).
		WithArgs(int64(1), "abc", int64(5)).
		WillReturnRows(descriptorRows().AddRow(int64(10), int64(1), "abc", int64(5), time.Now()))

	descriptor, created, err := repo.GetOrCreate(context.Background(), 1, "abc", 5)
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, int64(10), descriptor.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDescriptorRepositoryGetOrCreateReturnsExistingOnConflict(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewDescriptorRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO content_descriptors")).
		WithArgs(int64(1), "abc", int64(5)).
		WillReturnRows(descriptorRows())
	mock.ExpectQuery(regexp.QuoteMeta("WHERE location_id = $1 AND hash = $2")).
		WithArgs(int64(1), "abc").
		WillReturnRows(descriptorRows().AddRow(int64(10), int64(1), "abc", int64(5), time.Now()))

	descriptor, created, err := repo.GetOrCreate(context.Background(), 1, "abc", 5)
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, int64(10), descriptor.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

package service

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	appErrors "github.com/mediavault/mediavault/pkg/errors"
)

func newMockVault(t *testing.T) (*VaultService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return &VaultService{db: sqlx.NewDb(db, "sqlmock")}, mock
}

func TestConnectionServiceAcquireWithoutVault(t *testing.T) {
	svc := NewConnectionService(nil)

	_, err := svc.Acquire()
	require.ErrorIs(t, err, appErrors.ErrUpstreamDisconnected)
	require.False(t, svc.Connected())
}

func TestConnectionServiceSwapClosesPrevious(t *testing.T) {
	svc := NewConnectionService(nil)
	ctx := context.Background()

	first, firstMock := newMockVault(t)
	firstMock.ExpectClose()
	second, _ := newMockVault(t)

	svc.Swap(ctx, first)
	require.True(t, svc.Connected())

	svc.Swap(ctx, second)
	require.NoError(t, firstMock.ExpectationsWereMet())

	active, err := svc.Acquire()
	require.NoError(t, err)
	require.Same(t, second, active)
}

func TestConnectionServiceDisconnect(t *testing.T) {
	svc := NewConnectionService(nil)
	ctx := context.Background()

	vault, mock := newMockVault(t)
	mock.ExpectClose()
	svc.Swap(ctx, vault)

	require.NoError(t, svc.Disconnect(ctx))
	require.NoError(t, mock.ExpectationsWereMet())
	require.False(t, svc.Connected())

	// Disconnecting again reports the missing connection.
	require.ErrorIs(t, svc.Disconnect(ctx), appErrors.ErrUpstreamDisconnected)
}

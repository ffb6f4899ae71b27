package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	appErrors "github.com/mediavault/mediavault/pkg/errors"
)

// ConnectionService holds the process-wide active vault. Handlers acquire the
// vault per request; Connect swaps the active vault atomically, closing the
// old one before the new one becomes visible.
type ConnectionService struct {
	mu     sync.RWMutex
	vault  *VaultService
	logger *zap.Logger
}

// NewConnectionService starts with no active vault.
func NewConnectionService(logger *zap.Logger) *ConnectionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConnectionService{logger: logger}
}

// Acquire returns the active vault, or an error when nothing is connected.
func (s *ConnectionService) Acquire() (*VaultService, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.vault == nil {
		return nil, appErrors.ErrUpstreamDisconnected
	}
	return s.vault, nil
}

// Connected reports whether a vault is active.
func (s *ConnectionService) Connected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.vault != nil
}

// Swap installs a fully constructed vault as the active one. The previous
// vault is drained and closed under the write lock, so no request can reach
// it once the new vault is visible. A close failure is logged; the swap
// proceeds regardless.
func (s *ConnectionService) Swap(ctx context.Context, vault *VaultService) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.vault != nil {
		if err := s.vault.Close(); err != nil {
			s.logger.Warn("closing previous vault failed", zap.Error(err))
		}
	}
	s.vault = vault
	if vault != nil {
		s.logger.Info("vault connected",
			zap.String("main_dir", vault.Storage().MainDir),
			zap.String("thumbnail_dir", vault.Storage().ThumbnailDir))
	}
}

// Disconnect closes and clears the active vault. Disconnecting when nothing
// is connected is an error so clients notice double disconnects.
func (s *ConnectionService) Disconnect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.vault == nil {
		return appErrors.ErrUpstreamDisconnected
	}
	err := s.vault.Close()
	s.vault = nil
	if err != nil {
		s.logger.Warn("closing vault failed", zap.Error(err))
	}
	s.logger.Info("vault disconnected")
	return nil
}

// Package memory provides in-memory store implementations. All state is
// process-local and lost on restart.
package memory

import (
	"context"
	"sync"

	"solana-trading-agent/internal/domain"
	"solana-trading-agent/internal/storage"
)

// WalletStore is an in-memory implementation of storage.WalletStore.
type WalletStore struct {
	mu      sync.RWMutex
	wallets map[string]*domain.UserWallet // keyed by user id
}

// NewWalletStore creates a new in-memory wallet store.
func NewWalletStore() *WalletStore {
	return &WalletStore{
		wallets: make(map[string]*domain.UserWallet),
	}
}

// Create stores a new wallet. Returns ErrDuplicateKey if one exists.
// The check and the write happen under one lock so concurrent first-time
// requests cannot both succeed.
func (s *WalletStore) Create(_ context.Context, w *domain.UserWallet) error {
	if w == nil || w.UserID == "" || w.PublicKey == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.wallets[w.UserID]; exists {
		return storage.ErrDuplicateKey
	}

	walletCopy := *w
	s.wallets[w.UserID] = &walletCopy
	return nil
}

// Get retrieves the wallet for a user. Returns ErrNotFound if absent.
func (s *WalletStore) Get(_ context.Context, userID string) (*domain.UserWallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, exists := s.wallets[userID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	walletCopy := *w
	return &walletCopy, nil
}

var _ storage.WalletStore = (*WalletStore)(nil)

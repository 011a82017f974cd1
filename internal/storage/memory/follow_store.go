package memory

import (
	"context"
	"sync"

	"solana-trading-agent/internal/domain"
	"solana-trading-agent/internal/storage"
)

// FollowStore is an in-memory implementation of storage.FollowStore.
type FollowStore struct {
	mu    sync.RWMutex
	links map[string]*domain.FollowLink // keyed by follower id
}

// NewFollowStore creates a new in-memory follow store.
func NewFollowStore() *FollowStore {
	return &FollowStore{
		links: make(map[string]*domain.FollowLink),
	}
}

// Set records the follower's leader, overwriting any existing link.
func (s *FollowStore) Set(_ context.Context, link *domain.FollowLink) error {
	if link == nil || link.FollowerID == "" || link.Leader == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	linkCopy := *link
	s.links[link.FollowerID] = &linkCopy
	return nil
}

// Delete removes the follower's link and returns the removed leader.
func (s *FollowStore) Delete(_ context.Context, followerID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	link, exists := s.links[followerID]
	if !exists {
		return "", storage.ErrNotFound
	}

	delete(s.links, followerID)
	return link.Leader, nil
}

// Get retrieves the follower's link. Returns ErrNotFound if absent.
func (s *FollowStore) Get(_ context.Context, followerID string) (*domain.FollowLink, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	link, exists := s.links[followerID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	linkCopy := *link
	return &linkCopy, nil
}

var _ storage.FollowStore = (*FollowStore)(nil)

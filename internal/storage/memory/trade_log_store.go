package memory

import (
	"context"
	"sort"
	"sync"

	"solana-trading-agent/internal/domain"
	"solana-trading-agent/internal/storage"
)

// TradeLogStore is an in-memory implementation of storage.TradeLogStore.
type TradeLogStore struct {
	mu     sync.RWMutex
	byID   map[string]*domain.TradeRecord
	byUser map[string][]*domain.TradeRecord
}

// NewTradeLogStore creates a new in-memory trade log store.
func NewTradeLogStore() *TradeLogStore {
	return &TradeLogStore{
		byID:   make(map[string]*domain.TradeRecord),
		byUser: make(map[string][]*domain.TradeRecord),
	}
}

// Insert appends a trade record. Returns ErrDuplicateKey if the id exists.
func (s *TradeLogStore) Insert(_ context.Context, t *domain.TradeRecord) error {
	if t == nil || t.TradeID == "" || t.UserID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[t.TradeID]; exists {
		return storage.ErrDuplicateKey
	}

	recordCopy := *t
	s.byID[t.TradeID] = &recordCopy
	s.byUser[t.UserID] = append(s.byUser[t.UserID], &recordCopy)
	return nil
}

// GetByUser retrieves all records for a user, ordered by submission time.
func (s *TradeLogStore) GetByUser(_ context.Context, userID string) ([]*domain.TradeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := s.byUser[userID]
	out := make([]*domain.TradeRecord, len(records))
	for i, r := range records {
		recordCopy := *r
		out[i] = &recordCopy
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SubmittedAt.Before(out[j].SubmittedAt)
	})
	return out, nil
}

var _ storage.TradeLogStore = (*TradeLogStore)(nil)

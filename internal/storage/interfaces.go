// Package storage defines the persistence interfaces for the agent's
// entities. Implementations live in the memory, postgres, and clickhouse
// subpackages.
package storage

import (
	"context"

	"solana-trading-agent/internal/domain"
)

// WalletStore provides access to custodial wallet storage. Creation is
// check-and-create: concurrent first-time requests for the same user must
// resolve to exactly one stored wallet.
type WalletStore interface {
	// Create stores a new wallet. Returns ErrDuplicateKey if a wallet
	// already exists for the user.
	Create(ctx context.Context, w *domain.UserWallet) error

	// Get retrieves the wallet for a user. Returns ErrNotFound if absent.
	Get(ctx context.Context, userID string) (*domain.UserWallet, error)
}

// FollowStore provides access to copy-trading follow links.
type FollowStore interface {
	// Set records the follower's leader, overwriting any existing link.
	Set(ctx context.Context, link *domain.FollowLink) error

	// Delete removes the follower's link and returns the removed leader.
	// Returns ErrNotFound if no link exists.
	Delete(ctx context.Context, followerID string) (string, error)

	// Get retrieves the follower's link. Returns ErrNotFound if absent.
	Get(ctx context.Context, followerID string) (*domain.FollowLink, error)
}

// TradeLogStore provides access to the executed-trade audit log.
type TradeLogStore interface {
	// Insert appends a trade record. Returns ErrDuplicateKey if the trade
	// id already exists.
	Insert(ctx context.Context, t *domain.TradeRecord) error

	// GetByUser retrieves all records for a user, ordered by submission
	// time ascending.
	GetByUser(ctx context.Context, userID string) ([]*domain.TradeRecord, error)
}

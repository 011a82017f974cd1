package postgres

import (
	"context"
	"fmt"

	"solana-trading-agent/internal/domain"
	"solana-trading-agent/internal/storage"
)

// FollowStore implements storage.FollowStore using PostgreSQL.
type FollowStore struct {
	pool *Pool
}

// NewFollowStore creates a new FollowStore.
func NewFollowStore(pool *Pool) *FollowStore {
	return &FollowStore{pool: pool}
}

// Compile-time interface check.
var _ storage.FollowStore = (*FollowStore)(nil)

// Set records the follower's leader, overwriting any existing link.
func (s *FollowStore) Set(ctx context.Context, link *domain.FollowLink) error {
	query := `
		INSERT INTO follow_links (follower_id, leader, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (follower_id)
		DO UPDATE SET leader = EXCLUDED.leader, created_at = EXCLUDED.created_at
	`

	_, err := s.pool.Exec(ctx, query, link.FollowerID, link.Leader, link.CreatedAt)
	if err != nil {
		return fmt.Errorf("set follow link: %w", err)
	}
	return nil
}

// Delete removes the follower's link and returns the removed leader.
// Returns ErrNotFound if no link exists.
func (s *FollowStore) Delete(ctx context.Context, followerID string) (string, error) {
	query := `
		DELETE FROM follow_links
		WHERE follower_id = $1
		RETURNING leader
	`

	var leader string
	err := s.pool.QueryRow(ctx, query, followerID).Scan(&leader)
	if err != nil {
		if isNotFoundError(err) {
			return "", storage.ErrNotFound
		}
		return "", fmt.Errorf("delete follow link: %w", err)
	}
	return leader, nil
}

// Get retrieves the follower's link. Returns ErrNotFound if absent.
func (s *FollowStore) Get(ctx context.Context, followerID string) (*domain.FollowLink, error) {
	query := `
		SELECT follower_id, leader, created_at
		FROM follow_links
		WHERE follower_id = $1
	`

	var link domain.FollowLink
	err := s.pool.QueryRow(ctx, query, followerID).Scan(
		&link.FollowerID,
		&link.Leader,
		&link.CreatedAt,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get follow link: %w", err)
	}
	return &link, nil
}

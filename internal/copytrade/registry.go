// Package copytrade tracks which trader each user copies.
package copytrade

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"solana-trading-agent/internal/domain"
	"solana-trading-agent/internal/storage"
)

// ErrNotFollowing is returned by Unfollow when the user has no active
// follow link.
var ErrNotFollowing = errors.New("not following anyone")

// Ranker scores traders for copy-trading discovery. The registry calls it
// from the periodic refresh loop when one is configured; without a Ranker
// the refresh is a no-op.
type Ranker interface {
	RankTraders(ctx context.Context) ([]domain.TraderScore, error)
}

// Registry manages follow links. Leader handles are opaque strings; no
// check is made that they name a real identity.
type Registry struct {
	store  storage.FollowStore
	ranker Ranker
	logger *log.Logger
}

// Options for creating a Registry.
type Options struct {
	Store storage.FollowStore
	// Ranker is optional.
	Ranker Ranker
	Logger *log.Logger
}

// NewRegistry creates a new copy-trading registry.
func NewRegistry(opts Options) *Registry {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Registry{store: opts.Store, ranker: opts.Ranker, logger: logger}
}

// Follow records followerID copying leader, replacing any previous link.
func (r *Registry) Follow(ctx context.Context, followerID, leader string) error {
	link := &domain.FollowLink{
		FollowerID: followerID,
		Leader:     leader,
		CreatedAt:  time.Now().UTC(),
	}
	if err := r.store.Set(ctx, link); err != nil {
		return fmt.Errorf("store follow link: %w", err)
	}
	r.logger.Printf("user %s now follows %s", followerID, leader)
	return nil
}

// Unfollow removes the follower's link and returns the leader they were
// following. Returns ErrNotFollowing if no link exists.
func (r *Registry) Unfollow(ctx context.Context, followerID string) (string, error) {
	leader, err := r.store.Delete(ctx, followerID)
	if errors.Is(err, storage.ErrNotFound) {
		return "", ErrNotFollowing
	}
	if err != nil {
		return "", fmt.Errorf("delete follow link: %w", err)
	}
	r.logger.Printf("user %s unfollowed %s", followerID, leader)
	return leader, nil
}

// Leader returns who the follower currently copies, or ErrNotFollowing.
func (r *Registry) Leader(ctx context.Context, followerID string) (string, error) {
	link, err := r.store.Get(ctx, followerID)
	if errors.Is(err, storage.ErrNotFound) {
		return "", ErrNotFollowing
	}
	if err != nil {
		return "", fmt.Errorf("get follow link: %w", err)
	}
	return link.Leader, nil
}

// RefreshRankings recomputes trader scores via the configured Ranker.
// Without one it returns immediately.
func (r *Registry) RefreshRankings(ctx context.Context) error {
	if r.ranker == nil {
		return nil
	}
	scores, err := r.ranker.RankTraders(ctx)
	if err != nil {
		return fmt.Errorf("rank traders: %w", err)
	}
	r.logger.Printf("refreshed rankings for %d traders", len(scores))
	return nil
}

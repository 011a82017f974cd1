package copytrade

import (
	"context"
	"errors"
	"testing"

	"solana-trading-agent/internal/domain"
	"solana-trading-agent/internal/storage/memory"
)

func TestFollowOverwriteAndUnfollow(t *testing.T) {
	reg := NewRegistry(Options{Store: memory.NewFollowStore()})
	ctx := context.Background()

	if err := reg.Follow(ctx, "user1", "alpha"); err != nil {
		t.Fatalf("Follow: %v", err)
	}
	if err := reg.Follow(ctx, "user1", "bravo"); err != nil {
		t.Fatalf("Follow overwrite: %v", err)
	}

	leader, err := reg.Leader(ctx, "user1")
	if err != nil {
		t.Fatalf("Leader: %v", err)
	}
	if leader != "bravo" {
		t.Errorf("leader = %q, want bravo (latest follow wins)", leader)
	}

	removed, err := reg.Unfollow(ctx, "user1")
	if err != nil {
		t.Fatalf("Unfollow: %v", err)
	}
	if removed != "bravo" {
		t.Errorf("removed leader = %q, want bravo", removed)
	}

	if _, err := reg.Unfollow(ctx, "user1"); !errors.Is(err, ErrNotFollowing) {
		t.Fatalf("second unfollow err = %v, want ErrNotFollowing", err)
	}
}

func TestLeaderNotFollowing(t *testing.T) {
	reg := NewRegistry(Options{Store: memory.NewFollowStore()})

	if _, err := reg.Leader(context.Background(), "nobody"); !errors.Is(err, ErrNotFollowing) {
		t.Fatalf("err = %v, want ErrNotFollowing", err)
	}
}

type staticRanker struct {
	scores []domain.TraderScore
	err    error
	calls  int
}

func (r *staticRanker) RankTraders(ctx context.Context) ([]domain.TraderScore, error) {
	r.calls++
	return r.scores, r.err
}

func TestRefreshRankings(t *testing.T) {
	reg := NewRegistry(Options{Store: memory.NewFollowStore()})
	if err := reg.RefreshRankings(context.Background()); err != nil {
		t.Fatalf("refresh without ranker must be a no-op, got %v", err)
	}

	ranker := &staticRanker{scores: []domain.TraderScore{{UserID: "alpha", Score: 0.9}}}
	reg = NewRegistry(Options{Store: memory.NewFollowStore(), Ranker: ranker})
	if err := reg.RefreshRankings(context.Background()); err != nil {
		t.Fatalf("RefreshRankings: %v", err)
	}
	if ranker.calls != 1 {
		t.Errorf("ranker called %d times, want 1", ranker.calls)
	}

	ranker.err = errors.New("scoring backend down")
	if err := reg.RefreshRankings(context.Background()); err == nil {
		t.Fatal("expected ranker error to propagate")
	}
}

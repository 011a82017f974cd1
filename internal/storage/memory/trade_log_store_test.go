package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"solana-trading-agent/internal/domain"
	"solana-trading-agent/internal/storage"
)

func TestTradeLogStore_InsertAndGetByUser(t *testing.T) {
	store := NewTradeLogStore()
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	records := []*domain.TradeRecord{
		{TradeID: "t2", UserID: "u1", Side: domain.TradeSideSell, Amount: 50, SubmittedAt: base.Add(time.Minute)},
		{TradeID: "t1", UserID: "u1", Side: domain.TradeSideBuy, Amount: 1, SubmittedAt: base},
		{TradeID: "t3", UserID: "u2", Side: domain.TradeSideBuy, Amount: 2, SubmittedAt: base},
	}
	for _, r := range records {
		if err := store.Insert(ctx, r); err != nil {
			t.Fatalf("Insert %s failed: %v", r.TradeID, err)
		}
	}

	got, err := store.GetByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("GetByUser failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0].TradeID != "t1" || got[1].TradeID != "t2" {
		t.Errorf("records not ordered by submission time: %s, %s", got[0].TradeID, got[1].TradeID)
	}
}

func TestTradeLogStore_DuplicateID(t *testing.T) {
	store := NewTradeLogStore()
	ctx := context.Background()

	r := &domain.TradeRecord{TradeID: "t1", UserID: "u1"}
	if err := store.Insert(ctx, r); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := store.Insert(ctx, r); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestTradeLogStore_EmptyUser(t *testing.T) {
	store := NewTradeLogStore()

	got, err := store.GetByUser(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("GetByUser failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no records, got %d", len(got))
	}
}

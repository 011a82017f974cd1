package wallet

import (
	"context"
	"crypto/ed25519"
	"errors"
	"testing"

	"solana-trading-agent/internal/solana/stub"
	"solana-trading-agent/internal/storage"
	"solana-trading-agent/internal/storage/memory"
)

func newTestCustodian(opts Options) *Custodian {
	if opts.Store == nil {
		opts.Store = memory.NewWalletStore()
	}
	return NewCustodian(opts)
}

func TestCustodian_CreateWallet_Idempotent(t *testing.T) {
	c := newTestCustodian(Options{})
	ctx := context.Background()

	first, created, err := c.CreateWallet(ctx, "user1")
	if err != nil {
		t.Fatalf("first CreateWallet: %v", err)
	}
	if !created {
		t.Error("first call should report created")
	}

	second, created, err := c.CreateWallet(ctx, "user1")
	if err != nil {
		t.Fatalf("second CreateWallet: %v", err)
	}
	if created {
		t.Error("second call must not create")
	}

	if first.PublicKey != second.PublicKey {
		t.Errorf("public key changed: %s vs %s", first.PublicKey, second.PublicKey)
	}
	if first.RecoveryPhrase != second.RecoveryPhrase {
		t.Error("recovery phrase changed between calls")
	}
}

func TestCustodian_PhraseRegeneratesKeypair(t *testing.T) {
	c := newTestCustodian(Options{})
	ctx := context.Background()

	w, _, err := c.CreateWallet(ctx, "user1")
	if err != nil {
		t.Fatalf("CreateWallet: %v", err)
	}

	derived, err := KeypairFromPhrase(w.RecoveryPhrase)
	if err != nil {
		t.Fatalf("KeypairFromPhrase: %v", err)
	}
	if PublicKeyBase58(derived) != w.PublicKey {
		t.Error("phrase does not regenerate the stored keypair")
	}
}

func TestCustodian_ExportPhrase(t *testing.T) {
	c := newTestCustodian(Options{})
	ctx := context.Background()

	if _, err := c.ExportPhrase(ctx, "user1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound before creation, got %v", err)
	}

	w, _, err := c.CreateWallet(ctx, "user1")
	if err != nil {
		t.Fatalf("CreateWallet: %v", err)
	}

	phrase, err := c.ExportPhrase(ctx, "user1")
	if err != nil {
		t.Fatalf("ExportPhrase: %v", err)
	}
	if phrase != w.RecoveryPhrase {
		t.Error("exported phrase differs from stored phrase")
	}
}

func TestCustodian_GetWallet_NotFound(t *testing.T) {
	c := newTestCustodian(Options{})

	_, err := c.GetWallet(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCustodian_FundsPrivilegedOnFirstCreate(t *testing.T) {
	rpc := stub.NewRPCClient()
	funderKey := ed25519.NewKeyFromSeed(make([]byte, 32))
	funder, err := NewFunder(rpc, funderKey, 1_000_000_000, []string{"admin"})
	if err != nil {
		t.Fatalf("NewFunder: %v", err)
	}

	c := newTestCustodian(Options{Funder: funder})
	ctx := context.Background()

	if _, _, err := c.CreateWallet(ctx, "admin"); err != nil {
		t.Fatalf("CreateWallet: %v", err)
	}
	if got := rpc.SentTransactions.Load(); got != 1 {
		t.Errorf("expected 1 funding transfer, got %d", got)
	}

	// Second create must not fund again.
	if _, _, err := c.CreateWallet(ctx, "admin"); err != nil {
		t.Fatalf("CreateWallet: %v", err)
	}
	if got := rpc.SentTransactions.Load(); got != 1 {
		t.Errorf("expected funding to stay at 1 transfer, got %d", got)
	}
}

func TestCustodian_NoFundingForOrdinaryUsers(t *testing.T) {
	rpc := stub.NewRPCClient()
	funderKey := ed25519.NewKeyFromSeed(make([]byte, 32))
	funder, err := NewFunder(rpc, funderKey, 1_000_000_000, []string{"admin"})
	if err != nil {
		t.Fatalf("NewFunder: %v", err)
	}

	c := newTestCustodian(Options{Funder: funder})

	if _, _, err := c.CreateWallet(context.Background(), "user1"); err != nil {
		t.Fatalf("CreateWallet: %v", err)
	}
	if got := rpc.SentTransactions.Load(); got != 0 {
		t.Errorf("expected no funding transfer, got %d", got)
	}
}

func TestCustodian_FundingFailureDoesNotFailCreate(t *testing.T) {
	rpc := stub.NewRPCClient()
	rpc.FailSend = true
	funderKey := ed25519.NewKeyFromSeed(make([]byte, 32))
	funder, err := NewFunder(rpc, funderKey, 1_000_000_000, []string{"admin"})
	if err != nil {
		t.Fatalf("NewFunder: %v", err)
	}

	c := newTestCustodian(Options{Funder: funder})

	w, created, err := c.CreateWallet(context.Background(), "admin")
	if err != nil {
		t.Fatalf("CreateWallet must not surface funding failure: %v", err)
	}
	if !created || w == nil {
		t.Error("wallet should still be created when funding fails")
	}
}

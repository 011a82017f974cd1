package wallet

import (
	"context"
	"crypto/ed25519"
	"fmt"

	"solana-trading-agent/internal/solana"
)

// Funder performs the one-time funding transfer for privileged identities
// when their wallet is first created.
type Funder struct {
	rpc        solana.RPCClient
	key        ed25519.PrivateKey
	lamports   uint64
	privileged map[string]struct{}
}

// NewFunder creates a Funder sending lamports from the given key to newly
// created wallets of the listed identities. The key is either a full 64-byte
// ed25519 private key or a 32-byte seed.
func NewFunder(rpc solana.RPCClient, key []byte, lamports uint64, privileged []string) (*Funder, error) {
	var priv ed25519.PrivateKey
	switch len(key) {
	case ed25519.PrivateKeySize:
		priv = ed25519.PrivateKey(key)
	case ed25519.SeedSize:
		priv = ed25519.NewKeyFromSeed(key)
	default:
		return nil, fmt.Errorf("funder key must be %d or %d bytes, got %d",
			ed25519.SeedSize, ed25519.PrivateKeySize, len(key))
	}

	set := make(map[string]struct{}, len(privileged))
	for _, id := range privileged {
		set[id] = struct{}{}
	}
	return &Funder{
		rpc:        rpc,
		key:        priv,
		lamports:   lamports,
		privileged: set,
	}, nil
}

// IsPrivileged reports whether the identity receives initial funding.
func (f *Funder) IsPrivileged(userID string) bool {
	_, ok := f.privileged[userID]
	return ok
}

// Fund builds, signs, and broadcasts the funding transfer.
func (f *Funder) Fund(ctx context.Context, destination string) error {
	blockhash, err := f.rpc.GetLatestBlockhash(ctx)
	if err != nil {
		return fmt.Errorf("fetch blockhash: %w", err)
	}

	from := PublicKeyBase58(f.key)
	raw, err := solana.BuildTransfer(from, destination, f.lamports, blockhash)
	if err != nil {
		return fmt.Errorf("build transfer: %w", err)
	}

	tx, err := solana.ParseTransaction(raw)
	if err != nil {
		return fmt.Errorf("parse transfer: %w", err)
	}
	if err := tx.Sign(f.key); err != nil {
		return fmt.Errorf("sign transfer: %w", err)
	}

	if _, err := f.rpc.SendTransaction(ctx, tx.Serialize()); err != nil {
		return fmt.Errorf("broadcast transfer: %w", err)
	}
	return nil
}

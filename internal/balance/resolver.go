// Package balance reads native and token balances from the chain. Both
// lookups are read-only and failure-tolerant: a failed query degrades to a
// zero amount tagged Degraded instead of an error, so callers can tell
// "genuinely empty" from "query failed".
package balance

import (
	"context"
	"io"
	"log"

	"solana-trading-agent/internal/solana"
)

// Amount is a resolved balance in display units. Degraded is set when the
// underlying query failed and the zero value is a stand-in.
type Amount struct {
	Value    float64
	Degraded bool
}

// Resolver queries account balances.
type Resolver struct {
	rpc    solana.RPCClient
	logger *log.Logger
}

// NewResolver creates a new balance resolver.
func NewResolver(rpc solana.RPCClient, logger *log.Logger) *Resolver {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Resolver{rpc: rpc, logger: logger}
}

// Native returns the account's SOL balance.
func (r *Resolver) Native(ctx context.Context, publicKey string) Amount {
	lamports, err := r.rpc.GetBalance(ctx, publicKey)
	if err != nil {
		r.logger.Printf("native balance for %s failed: %v", publicKey, err)
		return Amount{Degraded: true}
	}
	return Amount{Value: float64(lamports) / solana.LamportsPerSOL}
}

// Token returns the owner's balance of a token mint. When the owner holds
// several accounts for the mint, the first one's balance is reported.
func (r *Resolver) Token(ctx context.Context, publicKey, mint string) Amount {
	accounts, err := r.rpc.GetTokenAccountsByOwner(ctx, publicKey, mint)
	if err != nil {
		r.logger.Printf("token accounts for %s mint %s failed: %v", publicKey, mint, err)
		return Amount{Degraded: true}
	}
	if len(accounts) == 0 {
		return Amount{}
	}

	amount, err := r.rpc.GetTokenAccountBalance(ctx, accounts[0].Pubkey)
	if err != nil {
		r.logger.Printf("token balance for account %s failed: %v", accounts[0].Pubkey, err)
		return Amount{Degraded: true}
	}
	return Amount{Value: amount.UIAmount()}
}

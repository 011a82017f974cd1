// Package stub provides an in-memory RPCClient for tests.
package stub

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"solana-trading-agent/internal/solana"
)

// ErrUnavailable simulates an unreachable RPC endpoint.
var ErrUnavailable = errors.New("rpc unavailable")

// RPCClient implements solana.RPCClient for testing.
type RPCClient struct {
	Balances      map[string]uint64                // pubkey -> lamports
	TokenAccounts map[string][]solana.TokenAccount // owner|mint -> accounts
	TokenAmounts  map[string]*solana.TokenAmount   // token account -> amount
	Blockhash     string

	// FailReads makes every read method return ErrUnavailable.
	FailReads bool
	// FailSend makes SendTransaction return ErrUnavailable.
	FailSend bool
	// SendSignature is returned by SendTransaction when it succeeds.
	SendSignature string

	// SentTransactions counts successful broadcasts.
	SentTransactions atomic.Int64
	// LastSent holds the most recently broadcast transaction bytes.
	LastSent []byte
}

// NewRPCClient creates a new stub RPC client.
func NewRPCClient() *RPCClient {
	return &RPCClient{
		Balances:      make(map[string]uint64),
		TokenAccounts: make(map[string][]solana.TokenAccount),
		TokenAmounts:  make(map[string]*solana.TokenAmount),
		Blockhash:     "GfVcyD4kkTrj4bKc7WA9sZCin9JDbdT4Zkd3EittNR1W",
		SendSignature: "stubsig",
	}
}

// GetBalance retrieves the native balance from the stub store.
func (c *RPCClient) GetBalance(_ context.Context, pubkey string) (uint64, error) {
	if c.FailReads {
		return 0, ErrUnavailable
	}
	return c.Balances[pubkey], nil
}

// GetTokenAccountsByOwner retrieves token accounts from the stub store.
func (c *RPCClient) GetTokenAccountsByOwner(_ context.Context, owner, mint string) ([]solana.TokenAccount, error) {
	if c.FailReads {
		return nil, ErrUnavailable
	}
	return c.TokenAccounts[ownerMintKey(owner, mint)], nil
}

// GetTokenAccountBalance retrieves a token balance from the stub store.
func (c *RPCClient) GetTokenAccountBalance(_ context.Context, account string) (*solana.TokenAmount, error) {
	if c.FailReads {
		return nil, ErrUnavailable
	}
	amount, ok := c.TokenAmounts[account]
	if !ok {
		return nil, fmt.Errorf("unknown token account %s", account)
	}
	return amount, nil
}

// GetLatestBlockhash returns the configured blockhash.
func (c *RPCClient) GetLatestBlockhash(_ context.Context) (string, error) {
	if c.FailReads {
		return "", ErrUnavailable
	}
	return c.Blockhash, nil
}

// SendTransaction records the broadcast and returns the configured signature.
func (c *RPCClient) SendTransaction(_ context.Context, rawTx []byte) (string, error) {
	if c.FailSend {
		return "", ErrUnavailable
	}
	c.LastSent = append([]byte(nil), rawTx...)
	c.SentTransactions.Add(1)
	return c.SendSignature, nil
}

// SetTokenHolding configures a single token account with a balance for an
// owner/mint pair.
func (c *RPCClient) SetTokenHolding(owner, mint, account string, amount uint64, decimals uint8) {
	c.TokenAccounts[ownerMintKey(owner, mint)] = []solana.TokenAccount{
		{Pubkey: account, Mint: mint, Owner: owner},
	}
	c.TokenAmounts[account] = &solana.TokenAmount{Amount: amount, Decimals: decimals}
}

func ownerMintKey(owner, mint string) string {
	return owner + "|" + mint
}

var _ solana.RPCClient = (*RPCClient)(nil)

package wallet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"solana-trading-agent/internal/domain"
	"solana-trading-agent/internal/observability"
	"solana-trading-agent/internal/storage"
)

// Custodian issues and holds one wallet per user identity over an injected
// WalletStore.
type Custodian struct {
	store  storage.WalletStore
	funder *Funder // optional; nil disables the funding side-channel
	logger *log.Logger
}

// Options for creating a Custodian.
type Options struct {
	Store  storage.WalletStore
	Funder *Funder
	Logger *log.Logger
}

// NewCustodian creates a new Custodian.
func NewCustodian(opts Options) *Custodian {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Custodian{
		store:  opts.Store,
		funder: opts.Funder,
		logger: logger,
	}
}

// CreateWallet returns the user's wallet, creating it if none exists.
// Creation is idempotent: a second call returns the stored wallet untouched,
// and concurrent first-time calls resolve to one stored wallet via the
// store's check-and-create contract. The created flag reports whether this
// call made the wallet.
//
// When a wallet is created for a privileged identity the funder performs a
// one-time transfer to it; funding failures are logged, never returned, and
// the attempt completes before this method returns.
func (c *Custodian) CreateWallet(ctx context.Context, userID string) (*domain.UserWallet, bool, error) {
	if userID == "" {
		return nil, false, storage.ErrInvalidInput
	}

	existing, err := c.store.Get(ctx, userID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, false, fmt.Errorf("look up wallet: %w", err)
	}

	phrase, err := NewRecoveryPhrase()
	if err != nil {
		return nil, false, fmt.Errorf("generate recovery phrase: %w", err)
	}
	priv, err := KeypairFromPhrase(phrase)
	if err != nil {
		return nil, false, fmt.Errorf("derive keypair: %w", err)
	}

	w := &domain.UserWallet{
		UserID:         userID,
		PublicKey:      PublicKeyBase58(priv),
		PrivateKey:     priv,
		RecoveryPhrase: phrase,
		CreatedAt:      time.Now().UTC(),
	}

	if err := c.store.Create(ctx, w); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			// Lost a concurrent first-time race; the stored wallet wins.
			stored, getErr := c.store.Get(ctx, userID)
			if getErr != nil {
				return nil, false, fmt.Errorf("refetch wallet after race: %w", getErr)
			}
			return stored, false, nil
		}
		return nil, false, fmt.Errorf("store wallet: %w", err)
	}

	observability.RecordWalletCreated()

	if c.funder != nil && c.funder.IsPrivileged(userID) {
		fundErr := c.funder.Fund(ctx, w.PublicKey)
		observability.RecordFundingAttempt(fundErr)
		if fundErr != nil {
			c.logger.Printf("funding transfer for %s failed: %v", userID, fundErr)
		}
	}

	return w, true, nil
}

// GetWallet retrieves the stored wallet. Returns storage.ErrNotFound if the
// user has none.
func (c *Custodian) GetWallet(ctx context.Context, userID string) (*domain.UserWallet, error) {
	return c.store.Get(ctx, userID)
}

// ExportPhrase returns the stored recovery phrase. Returns
// storage.ErrNotFound if the user has no wallet.
func (c *Custodian) ExportPhrase(ctx context.Context, userID string) (string, error) {
	w, err := c.store.Get(ctx, userID)
	if err != nil {
		return "", err
	}
	return w.RecoveryPhrase, nil
}

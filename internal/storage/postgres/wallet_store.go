package postgres

import (
	"context"
	"crypto/ed25519"
	"fmt"

	"solana-trading-agent/internal/domain"
	"solana-trading-agent/internal/storage"
)

// WalletStore implements storage.WalletStore using PostgreSQL. The recovery
// phrase and private key are sealed with the configured cipher; only the
// public key is stored in the clear.
type WalletStore struct {
	pool   *Pool
	cipher *Cipher
}

// NewWalletStore creates a new WalletStore.
func NewWalletStore(pool *Pool, cipher *Cipher) *WalletStore {
	return &WalletStore{pool: pool, cipher: cipher}
}

// Compile-time interface check.
var _ storage.WalletStore = (*WalletStore)(nil)

// Create stores a new wallet. Returns ErrDuplicateKey if the user already
// has one; the unique constraint on user_id makes concurrent first-time
// creation resolve to a single row.
func (s *WalletStore) Create(ctx context.Context, w *domain.UserWallet) error {
	phraseEnc, err := s.cipher.Seal([]byte(w.RecoveryPhrase))
	if err != nil {
		return fmt.Errorf("seal recovery phrase: %w", err)
	}
	keyEnc, err := s.cipher.Seal(w.PrivateKey)
	if err != nil {
		return fmt.Errorf("seal private key: %w", err)
	}

	query := `
		INSERT INTO wallets (
			user_id, public_key, recovery_phrase_enc, private_key_enc, created_at
		) VALUES ($1, $2, $3, $4, $5)
	`

	_, err = s.pool.Exec(ctx, query,
		w.UserID,
		w.PublicKey,
		phraseEnc,
		keyEnc,
		w.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert wallet: %w", err)
	}
	return nil
}

// Get retrieves and unseals the wallet for a user. Returns ErrNotFound if
// absent.
func (s *WalletStore) Get(ctx context.Context, userID string) (*domain.UserWallet, error) {
	query := `
		SELECT user_id, public_key, recovery_phrase_enc, private_key_enc, created_at
		FROM wallets
		WHERE user_id = $1
	`

	var (
		w         domain.UserWallet
		phraseEnc []byte
		keyEnc    []byte
	)
	err := s.pool.QueryRow(ctx, query, userID).Scan(
		&w.UserID,
		&w.PublicKey,
		&phraseEnc,
		&keyEnc,
		&w.CreatedAt,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get wallet: %w", err)
	}

	phrase, err := s.cipher.Open(phraseEnc)
	if err != nil {
		return nil, fmt.Errorf("unseal recovery phrase: %w", err)
	}
	key, err := s.cipher.Open(keyEnc)
	if err != nil {
		return nil, fmt.Errorf("unseal private key: %w", err)
	}

	w.RecoveryPhrase = string(phrase)
	w.PrivateKey = ed25519.PrivateKey(key)
	return &w, nil
}

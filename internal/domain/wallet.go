// Package domain defines the core entities of the trading agent.
package domain

import (
	"crypto/ed25519"
	"time"
)

// UserWallet is a custodial Solana wallet held for one user identity.
// Exactly one wallet exists per user; it is created lazily on first
// interaction and never deleted.
type UserWallet struct {
	UserID         string
	PublicKey      string // base58
	PrivateKey     ed25519.PrivateKey
	RecoveryPhrase string // BIP39 mnemonic; regenerates PrivateKey deterministically
	CreatedAt      time.Time
}

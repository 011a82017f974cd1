// Package wallet implements custodial key generation and storage. One
// keypair and recovery phrase exist per user identity; the phrase
// deterministically regenerates the keypair.
package wallet

import (
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"
	bip39 "github.com/tyler-smith/go-bip39"
)

// entropyBits is the entropy strength for new recovery phrases
// (128 bits, 12 words).
const entropyBits = 128

// NewRecoveryPhrase generates a fresh BIP39 mnemonic.
func NewRecoveryPhrase() (string, error) {
	entropy, err := bip39.NewEntropy(entropyBits)
	if err != nil {
		return "", fmt.Errorf("generate entropy: %w", err)
	}
	phrase, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("encode mnemonic: %w", err)
	}
	return phrase, nil
}

// KeypairFromPhrase derives the ed25519 keypair from a recovery phrase.
// The key seed is the first 32 bytes of the BIP39 seed, so the same phrase
// always yields the same keypair.
func KeypairFromPhrase(phrase string) (ed25519.PrivateKey, error) {
	if !bip39.IsMnemonicValid(phrase) {
		return nil, fmt.Errorf("invalid recovery phrase")
	}
	seed := bip39.NewSeed(phrase, "")
	return ed25519.NewKeyFromSeed(seed[:32]), nil
}

// PublicKeyBase58 returns the base58 address of the keypair's public half.
func PublicKeyBase58(priv ed25519.PrivateKey) string {
	return base58.Encode(priv.Public().(ed25519.PublicKey))
}

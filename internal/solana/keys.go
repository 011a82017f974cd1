package solana

import (
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// DecodePubkey decodes a base58 address into its 32 raw bytes.
func DecodePubkey(addr string) ([]byte, error) {
	raw, err := base58.Decode(addr)
	if err != nil {
		return nil, fmt.Errorf("decode base58: %w", err)
	}
	if len(raw) != 32 {
		return nil, fmt.Errorf("pubkey is %d bytes, want 32", len(raw))
	}
	return raw, nil
}

// EncodePubkey encodes 32 raw bytes as a base58 address.
func EncodePubkey(raw []byte) string {
	return base58.Encode(raw)
}

// IsOnCurve reports whether the point is on the ed25519 curve. Wallet
// addresses are curve points; program-derived addresses are not.
func IsOnCurve(point []byte) bool {
	if len(point) != 32 {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(point)
	return err == nil
}

// ValidateWalletAddress checks that addr is a well-formed base58 wallet
// address backed by a curve point.
func ValidateWalletAddress(addr string) error {
	raw, err := DecodePubkey(addr)
	if err != nil {
		return err
	}
	if !IsOnCurve(raw) {
		return fmt.Errorf("address %s is not an ed25519 curve point", addr)
	}
	return nil
}

package postgres

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// ErrCipherKeySize means the custody key is not KeySize bytes after hex
// decoding.
var ErrCipherKeySize = errors.New("custody key must be 32 bytes")

// KeySize is the required custody key length in bytes.
const KeySize = chacha20poly1305.KeySize

// Cipher seals wallet key material before it is written to the database.
// XChaCha20-Poly1305 with a random nonce prefixed to each ciphertext.
type Cipher struct {
	key []byte
}

// NewCipher creates a Cipher from a hex-encoded 32-byte key.
func NewCipher(hexKey string) (*Cipher, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("decode custody key: %w", err)
	}
	if len(key) != KeySize {
		return nil, ErrCipherKeySize
	}
	return &Cipher{key: key}, nil
}

// Seal encrypts plaintext and returns nonce||ciphertext.
func (c *Cipher) Seal(plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(c.key)
	if err != nil {
		return nil, fmt.Errorf("init aead: %w", err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Open decrypts a value produced by Seal.
func (c *Cipher) Open(sealed []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(c.key)
	if err != nil {
		return nil, fmt.Errorf("init aead: %w", err)
	}

	if len(sealed) < aead.NonceSize() {
		return nil, errors.New("sealed value too short")
	}
	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]

	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("open sealed value: %w", err)
	}
	return plaintext, nil
}

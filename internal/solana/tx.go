package solana

import (
	"bytes"
	"crypto/ed25519"
	"encoding/binary"
	"fmt"
)

// systemProgramID is the native System Program (32 zero bytes in base58).
const systemProgramID = "11111111111111111111111111111111"

// transfer instruction index within the System Program.
const sysTransferIndex = 2

// WireTransaction is a Solana transaction split into its two wire-level
// parts: the signature list and the serialized message. The message is kept
// opaque; signing never needs to rewrite it.
type WireTransaction struct {
	Signatures [][]byte // 64 bytes each, one per required signer
	Message    []byte   // legacy or v0 message, signed as-is
}

// ParseTransaction splits a serialized transaction into signatures and
// message. Both legacy and versioned payloads parse identically at this
// level: a compact-u16 signature count, the signatures, then the message.
func ParseTransaction(raw []byte) (*WireTransaction, error) {
	count, n, err := decodeCompactU16(raw)
	if err != nil {
		return nil, fmt.Errorf("signature count: %w", err)
	}
	if count > 16 {
		return nil, fmt.Errorf("implausible signature count %d", count)
	}

	offset := n
	sigs := make([][]byte, 0, count)
	for i := 0; i < count; i++ {
		if len(raw) < offset+ed25519.SignatureSize {
			return nil, fmt.Errorf("truncated signature %d", i)
		}
		sig := make([]byte, ed25519.SignatureSize)
		copy(sig, raw[offset:offset+ed25519.SignatureSize])
		sigs = append(sigs, sig)
		offset += ed25519.SignatureSize
	}

	if offset >= len(raw) {
		return nil, fmt.Errorf("transaction has no message")
	}

	msg := make([]byte, len(raw)-offset)
	copy(msg, raw[offset:])

	return &WireTransaction{Signatures: sigs, Message: msg}, nil
}

// Sign signs the message with the given key and places the signature at the
// signer's slot. The slot is located by matching the key's public half
// against the message's required-signer accounts.
func (tx *WireTransaction) Sign(priv ed25519.PrivateKey) error {
	pub, ok := priv.Public().(ed25519.PublicKey)
	if !ok {
		return fmt.Errorf("private key has no ed25519 public half")
	}

	signers, err := messageSigners(tx.Message)
	if err != nil {
		return fmt.Errorf("parse message signers: %w", err)
	}

	idx := -1
	for i, s := range signers {
		if bytes.Equal(s, pub) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("key %x is not a required signer", pub[:4])
	}
	if idx >= len(tx.Signatures) {
		return fmt.Errorf("signer slot %d beyond signature list (%d)", idx, len(tx.Signatures))
	}

	tx.Signatures[idx] = ed25519.Sign(priv, tx.Message)
	return nil
}

// Serialize reassembles the wire transaction.
func (tx *WireTransaction) Serialize() []byte {
	var buf bytes.Buffer
	buf.Write(encodeCompactU16(len(tx.Signatures)))
	for _, sig := range tx.Signatures {
		buf.Write(sig)
	}
	buf.Write(tx.Message)
	return buf.Bytes()
}

// messageSigners returns the required-signer public keys of a message.
// Versioned messages carry a prefix byte with the high bit set; the header
// and static account keys that follow share the legacy layout.
func messageSigners(msg []byte) ([][]byte, error) {
	offset := 0
	if len(msg) > 0 && msg[0]&0x80 != 0 {
		offset = 1 // version prefix
	}

	if len(msg) < offset+3 {
		return nil, fmt.Errorf("message too short for header")
	}
	numRequired := int(msg[offset])
	offset += 3

	numKeys, n, err := decodeCompactU16(msg[offset:])
	if err != nil {
		return nil, fmt.Errorf("account count: %w", err)
	}
	offset += n

	if numRequired > numKeys {
		return nil, fmt.Errorf("header requires %d signers but message has %d keys", numRequired, numKeys)
	}
	if len(msg) < offset+numKeys*32 {
		return nil, fmt.Errorf("truncated account keys")
	}

	signers := make([][]byte, numRequired)
	for i := 0; i < numRequired; i++ {
		signers[i] = msg[offset+i*32 : offset+(i+1)*32]
	}
	return signers, nil
}

// BuildTransfer builds an unsigned legacy transaction moving lamports from
// one wallet to another. The caller signs and submits it.
func BuildTransfer(from, to string, lamports uint64, recentBlockhash string) ([]byte, error) {
	fromKey, err := DecodePubkey(from)
	if err != nil {
		return nil, fmt.Errorf("from address: %w", err)
	}
	toKey, err := DecodePubkey(to)
	if err != nil {
		return nil, fmt.Errorf("to address: %w", err)
	}
	program, err := DecodePubkey(systemProgramID)
	if err != nil {
		return nil, fmt.Errorf("system program: %w", err)
	}
	blockhash, err := DecodePubkey(recentBlockhash)
	if err != nil {
		return nil, fmt.Errorf("recent blockhash: %w", err)
	}

	var msg bytes.Buffer

	// Header: 1 required signature, 0 readonly signed, 1 readonly unsigned.
	msg.Write([]byte{1, 0, 1})

	// Account keys: from (writable signer), to (writable), system program.
	msg.Write(encodeCompactU16(3))
	msg.Write(fromKey)
	msg.Write(toKey)
	msg.Write(program)

	msg.Write(blockhash)

	// One transfer instruction: u32 index + u64 lamports, little endian.
	data := make([]byte, 12)
	binary.LittleEndian.PutUint32(data[0:4], sysTransferIndex)
	binary.LittleEndian.PutUint64(data[4:12], lamports)

	msg.Write(encodeCompactU16(1))
	msg.WriteByte(2) // program id index
	msg.Write(encodeCompactU16(2))
	msg.Write([]byte{0, 1}) // account indexes
	msg.Write(encodeCompactU16(len(data)))
	msg.Write(data)

	tx := &WireTransaction{
		Signatures: [][]byte{make([]byte, ed25519.SignatureSize)},
		Message:    msg.Bytes(),
	}
	return tx.Serialize(), nil
}

// encodeCompactU16 encodes n in Solana's compact-u16 format.
func encodeCompactU16(n int) []byte {
	var out []byte
	for {
		b := byte(n & 0x7f)
		n >>= 7
		if n == 0 {
			out = append(out, b)
			return out
		}
		out = append(out, b|0x80)
	}
}

// decodeCompactU16 decodes a compact-u16 value, returning it and the number
// of bytes consumed.
func decodeCompactU16(data []byte) (int, int, error) {
	value := 0
	for i := 0; i < 3; i++ {
		if i >= len(data) {
			return 0, 0, fmt.Errorf("truncated compact-u16")
		}
		b := data[i]
		value |= int(b&0x7f) << (7 * i)
		if b&0x80 == 0 {
			return value, i + 1, nil
		}
	}
	return 0, 0, fmt.Errorf("compact-u16 longer than 3 bytes")
}

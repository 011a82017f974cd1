package solana

import "context"

// WSClient defines the Solana WebSocket subscription interface.
type WSClient interface {
	// SubscribeSignature subscribes to the confirmation of one transaction
	// signature. The returned channel receives at most one notification and
	// is closed afterwards; it is also closed without a value if the
	// connection drops before the signature is observed.
	SubscribeSignature(ctx context.Context, signature string, commitment Commitment) (<-chan SignatureNotification, error)

	// Close closes the WebSocket connection.
	Close() error
}

// SignatureNotification reports a transaction reaching the subscribed
// commitment level. Err is non-nil when the transaction failed on-chain.
type SignatureNotification struct {
	Signature string
	Slot      int64
	Err       interface{}
}

package submit

import (
	"context"
	"io"
	"log"
	"time"

	"solana-trading-agent/internal/solana"
)

// DefaultConfirmTimeout bounds how long a watch waits for a signature
// notification before giving up.
const DefaultConfirmTimeout = 60 * time.Second

// ConfirmationWatcher follows submitted signatures over a websocket
// subscription and reports whether they landed. Submission itself never
// waits on it; the watcher exists for logging and metrics.
type ConfirmationWatcher struct {
	ws      solana.WSClient
	timeout time.Duration
	logger  *log.Logger
}

// NewConfirmationWatcher creates a watcher over ws. A zero timeout uses
// DefaultConfirmTimeout.
func NewConfirmationWatcher(ws solana.WSClient, timeout time.Duration, logger *log.Logger) *ConfirmationWatcher {
	if timeout <= 0 {
		timeout = DefaultConfirmTimeout
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &ConfirmationWatcher{ws: ws, timeout: timeout, logger: logger}
}

// Watch subscribes to the signature and blocks until it is confirmed, fails,
// or the timeout elapses. The bool reports whether the transaction landed
// without an error. Callers typically run it in its own goroutine.
func (w *ConfirmationWatcher) Watch(ctx context.Context, signature string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	ch, err := w.ws.SubscribeSignature(ctx, signature, solana.CommitmentConfirmed)
	if err != nil {
		return false, err
	}

	select {
	case notif, ok := <-ch:
		if !ok {
			w.logger.Printf("subscription for %s closed before notification", signature)
			return false, nil
		}
		if notif.Err != nil {
			w.logger.Printf("transaction %s failed on chain: %v", signature, notif.Err)
			return false, nil
		}
		w.logger.Printf("transaction %s confirmed at slot %d", signature, notif.Slot)
		return true, nil
	case <-ctx.Done():
		w.logger.Printf("confirmation wait for %s: %v", signature, ctx.Err())
		return false, ctx.Err()
	}
}

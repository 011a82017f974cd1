package submit

import (
	"context"
	"errors"
	"testing"
	"time"

	"solana-trading-agent/internal/solana"
)

type fakeWS struct {
	notif   *solana.SignatureNotification
	fail    bool
	silence bool
}

func (f *fakeWS) SubscribeSignature(ctx context.Context, signature string, commitment solana.Commitment) (<-chan solana.SignatureNotification, error) {
	if f.fail {
		return nil, errors.New("connection closed")
	}
	ch := make(chan solana.SignatureNotification, 1)
	if !f.silence && f.notif != nil {
		ch <- *f.notif
	}
	close(ch)
	return ch, nil
}

func (f *fakeWS) Close() error { return nil }

func TestWatchConfirmed(t *testing.T) {
	ws := &fakeWS{notif: &solana.SignatureNotification{Signature: "sig", Slot: 1234}}
	w := NewConfirmationWatcher(ws, time.Second, nil)

	ok, err := w.Watch(context.Background(), "sig")
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	if !ok {
		t.Error("expected confirmation")
	}
}

func TestWatchOnChainFailure(t *testing.T) {
	ws := &fakeWS{notif: &solana.SignatureNotification{Signature: "sig", Err: map[string]any{"InstructionError": []any{}}}}
	w := NewConfirmationWatcher(ws, time.Second, nil)

	ok, err := w.Watch(context.Background(), "sig")
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	if ok {
		t.Error("expected failure report")
	}
}

func TestWatchSubscribeError(t *testing.T) {
	w := NewConfirmationWatcher(&fakeWS{fail: true}, time.Second, nil)

	if _, err := w.Watch(context.Background(), "sig"); err == nil {
		t.Fatal("expected subscribe error")
	}
}

func TestWatchClosedWithoutNotification(t *testing.T) {
	w := NewConfirmationWatcher(&fakeWS{silence: true}, time.Second, nil)

	ok, err := w.Watch(context.Background(), "sig")
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	if ok {
		t.Error("a closed subscription must not count as confirmation")
	}
}

// Package submit signs prebuilt transactions and broadcasts them to the
// chain.
package submit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"solana-trading-agent/internal/domain"
	"solana-trading-agent/internal/observability"
	"solana-trading-agent/internal/solana"
)

// ErrSubmissionFailed wraps every failure in the sign-and-broadcast path.
// There is no retry; callers decide whether to rebuild and resubmit.
var ErrSubmissionFailed = errors.New("transaction submission failed")

// Submitter signs raw transaction payloads and sends them over RPC. It does
// not wait for confirmation; a returned signature means the transaction was
// accepted for processing, and callers should allow around 30 seconds for
// it to land.
type Submitter struct {
	rpc    solana.RPCClient
	logger *log.Logger
}

// Options for creating a Submitter.
type Options struct {
	RPC    solana.RPCClient
	Logger *log.Logger
}

// NewSubmitter creates a new transaction submitter.
func NewSubmitter(opts Options) *Submitter {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Submitter{rpc: opts.RPC, logger: logger}
}

// SignAndSubmit deserializes rawTx, signs it with the wallet's key,
// reserializes, and broadcasts. The returned string is the transaction
// signature in base58.
func (s *Submitter) SignAndSubmit(ctx context.Context, wallet *domain.UserWallet, rawTx []byte) (string, error) {
	tx, err := solana.ParseTransaction(rawTx)
	if err != nil {
		return "", s.failed("parse transaction", err)
	}

	if err := tx.Sign(wallet.PrivateKey); err != nil {
		return "", s.failed("sign transaction", err)
	}

	signature, err := s.rpc.SendTransaction(ctx, tx.Serialize())
	observability.RecordSubmission(err)
	if err != nil {
		return "", s.failed("send transaction", err)
	}

	s.logger.Printf("submitted transaction %s for user %s", signature, wallet.UserID)
	return signature, nil
}

func (s *Submitter) failed(op string, err error) error {
	s.logger.Printf("%s: %v", op, err)
	return fmt.Errorf("%w: %s: %v", ErrSubmissionFailed, op, err)
}

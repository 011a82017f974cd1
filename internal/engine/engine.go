// Package engine is the operation surface of the trading agent. Each method
// maps to one user command; the dispatcher that parses commands and renders
// results lives outside this module.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"time"

	"github.com/google/uuid"

	"solana-trading-agent/internal/balance"
	"solana-trading-agent/internal/copytrade"
	"solana-trading-agent/internal/domain"
	"solana-trading-agent/internal/fees"
	"solana-trading-agent/internal/observability"
	"solana-trading-agent/internal/pricing"
	"solana-trading-agent/internal/solana"
	"solana-trading-agent/internal/storage"
	"solana-trading-agent/internal/submit"
	"solana-trading-agent/internal/swaproute"
	"solana-trading-agent/internal/wallet"
)

// SwapBuilder assembles an unsigned swap transaction for a trade.
type SwapBuilder interface {
	BuildSwap(ctx context.Context, signerPubkey, inputMint, outputMint string, amount float64) (*domain.SwapQuote, error)
}

// TxSubmitter signs and broadcasts a raw transaction payload.
type TxSubmitter interface {
	SignAndSubmit(ctx context.Context, w *domain.UserWallet, rawTx []byte) (string, error)
}

// PriceSource resolves token unit prices.
type PriceSource interface {
	GetPrice(ctx context.Context, mint string) domain.PriceQuote
}

var (
	_ SwapBuilder = (*swaproute.Builder)(nil)
	_ TxSubmitter = (*submit.Submitter)(nil)
	_ PriceSource = (*pricing.Oracle)(nil)
)

// BalanceReport is the full balance view for one user.
type BalanceReport struct {
	PublicKey  string
	SOL        balance.Amount
	Token      balance.Amount
	TokenPrice domain.PriceQuote
	// TokenValue is the token holding priced in quote currency.
	TokenValue float64
}

// Engine executes user commands against the custody, pricing, and trading
// components. All methods are safe for concurrent use.
type Engine struct {
	custody   *wallet.Custodian
	rpc       solana.RPCClient
	prices    PriceSource
	balances  *balance.Resolver
	fees      *fees.Calculator
	builder   SwapBuilder
	submitter TxSubmitter
	registry  *copytrade.Registry
	trades    storage.TradeLogStore
	tokenMint string
	logger    *log.Logger
}

// Options for creating an Engine.
type Options struct {
	Custodian *wallet.Custodian
	RPC       solana.RPCClient
	Prices    PriceSource
	Balances  *balance.Resolver
	// Fees defaults to the standard platform and network fee constants.
	Fees      *fees.Calculator
	Builder   SwapBuilder
	Submitter TxSubmitter
	Registry  *copytrade.Registry
	Trades    storage.TradeLogStore
	// TokenMint is the token the agent trades against the native asset.
	TokenMint string
	Logger    *log.Logger
}

// New creates a new Engine.
func New(opts Options) *Engine {
	calc := opts.Fees
	if calc == nil {
		calc = fees.NewCalculator(fees.DefaultPlatformFeeRate, fees.DefaultNetworkFee)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Engine{
		custody:   opts.Custodian,
		rpc:       opts.RPC,
		prices:    opts.Prices,
		balances:  opts.Balances,
		fees:      calc,
		builder:   opts.Builder,
		submitter: opts.Submitter,
		registry:  opts.Registry,
		trades:    opts.Trades,
		tokenMint: opts.TokenMint,
		logger:    logger,
	}
}

// CreateWallet returns the user's wallet, creating one on first request.
func (e *Engine) CreateWallet(ctx context.Context, userID string) (*domain.UserWallet, bool, error) {
	return e.custody.CreateWallet(ctx, userID)
}

// DepositAddress returns the user's wallet address for inbound transfers.
// Returns storage.ErrNotFound if no wallet exists yet.
func (e *Engine) DepositAddress(ctx context.Context, userID string) (string, error) {
	w, err := e.custody.GetWallet(ctx, userID)
	if err != nil {
		return "", err
	}
	return w.PublicKey, nil
}

// ExportPhrase returns the user's recovery phrase.
func (e *Engine) ExportPhrase(ctx context.Context, userID string) (string, error) {
	return e.custody.ExportPhrase(ctx, userID)
}

// Balances reports the user's native and token holdings plus the token's
// current price. Balance and price lookups degrade instead of failing, so
// the only error here is a missing wallet.
func (e *Engine) Balances(ctx context.Context, userID string) (*BalanceReport, error) {
	w, err := e.custody.GetWallet(ctx, userID)
	if err != nil {
		return nil, err
	}

	sol := e.balances.Native(ctx, w.PublicKey)
	token := e.balances.Token(ctx, w.PublicKey, e.tokenMint)
	price := e.prices.GetPrice(ctx, e.tokenMint)

	return &BalanceReport{
		PublicKey:  w.PublicKey,
		SOL:        sol,
		Token:      token,
		TokenPrice: price,
		TokenValue: token.Value * price.Price,
	}, nil
}

// Withdraw sends amount SOL from the user's wallet to destination. The
// gross requirement including fees must be covered by the native balance.
// Returns the transaction signature.
func (e *Engine) Withdraw(ctx context.Context, userID, destination string, amount float64) (string, error) {
	if err := validAmount(amount); err != nil {
		observability.RecordTradeFailure(domain.TradeSideWithdraw, "invalid_amount")
		return "", err
	}
	if err := solana.ValidateWalletAddress(destination); err != nil {
		observability.RecordTradeFailure(domain.TradeSideWithdraw, "invalid_destination")
		return "", fmt.Errorf("%w: %v", ErrInvalidDestination, err)
	}

	w, err := e.custody.GetWallet(ctx, userID)
	if err != nil {
		return "", err
	}

	if err := e.checkNativeGross(ctx, w.PublicKey, amount); err != nil {
		observability.RecordTradeFailure(domain.TradeSideWithdraw, failureReason(err))
		return "", err
	}

	blockhash, err := e.rpc.GetLatestBlockhash(ctx)
	if err != nil {
		observability.RecordTradeFailure(domain.TradeSideWithdraw, "blockhash")
		return "", fmt.Errorf("fetch blockhash: %w", err)
	}

	rawTx, err := solana.BuildTransfer(w.PublicKey, destination, uint64(amount*solana.LamportsPerSOL), blockhash)
	if err != nil {
		observability.RecordTradeFailure(domain.TradeSideWithdraw, "build")
		return "", fmt.Errorf("build transfer: %w", err)
	}

	sig, err := e.submitter.SignAndSubmit(ctx, w, rawTx)
	if err != nil {
		observability.RecordTradeFailure(domain.TradeSideWithdraw, "submission")
		return "", err
	}

	e.recordTrade(ctx, userID, domain.TradeSideWithdraw, solana.NativeMint, "", amount, sig)
	return sig, nil
}

// Buy swaps amount SOL into the configured token. The affordability gate
// runs before any aggregator request: when the native balance is below the
// gross requirement, no quote is issued. Returns the transaction signature.
func (e *Engine) Buy(ctx context.Context, userID string, amount float64) (string, error) {
	if err := validAmount(amount); err != nil {
		observability.RecordTradeFailure(domain.TradeSideBuy, "invalid_amount")
		return "", err
	}

	w, err := e.custody.GetWallet(ctx, userID)
	if err != nil {
		return "", err
	}

	if err := e.checkNativeGross(ctx, w.PublicKey, amount); err != nil {
		observability.RecordTradeFailure(domain.TradeSideBuy, failureReason(err))
		return "", err
	}

	quote, err := e.builder.BuildSwap(ctx, w.PublicKey, solana.NativeMint, e.tokenMint, amount)
	if err != nil {
		observability.RecordTradeFailure(domain.TradeSideBuy, "swap_build")
		return "", err
	}

	sig, err := e.submitter.SignAndSubmit(ctx, w, quote.Payload)
	if err != nil {
		observability.RecordTradeFailure(domain.TradeSideBuy, "submission")
		return "", err
	}

	e.recordTrade(ctx, userID, domain.TradeSideBuy, solana.NativeMint, e.tokenMint, amount, sig)
	return sig, nil
}

// Sell swaps amount of the configured token back into SOL. The gate checks
// the token holding only; network fees for the swap come out of the
// received SOL. Returns the transaction signature.
func (e *Engine) Sell(ctx context.Context, userID string, amount float64) (string, error) {
	if err := validAmount(amount); err != nil {
		observability.RecordTradeFailure(domain.TradeSideSell, "invalid_amount")
		return "", err
	}

	w, err := e.custody.GetWallet(ctx, userID)
	if err != nil {
		return "", err
	}

	holding := e.balances.Token(ctx, w.PublicKey, e.tokenMint)
	if holding.Degraded {
		observability.RecordTradeFailure(domain.TradeSideSell, "upstream_unavailable")
		return "", ErrUpstreamUnavailable
	}
	if holding.Value < amount {
		observability.RecordTradeFailure(domain.TradeSideSell, "insufficient_funds")
		return "", fmt.Errorf("%w: have %.2f tokens", ErrInsufficientFunds, holding.Value)
	}

	quote, err := e.builder.BuildSwap(ctx, w.PublicKey, e.tokenMint, solana.NativeMint, amount)
	if err != nil {
		observability.RecordTradeFailure(domain.TradeSideSell, "swap_build")
		return "", err
	}

	sig, err := e.submitter.SignAndSubmit(ctx, w, quote.Payload)
	if err != nil {
		observability.RecordTradeFailure(domain.TradeSideSell, "submission")
		return "", err
	}

	e.recordTrade(ctx, userID, domain.TradeSideSell, e.tokenMint, solana.NativeMint, amount, sig)
	return sig, nil
}

// Follow records the user copying leader, replacing any previous link.
func (e *Engine) Follow(ctx context.Context, userID, leader string) error {
	return e.registry.Follow(ctx, userID, leader)
}

// Unfollow removes the user's follow link and returns the leader they were
// following, or copytrade.ErrNotFollowing.
func (e *Engine) Unfollow(ctx context.Context, userID string) (string, error) {
	return e.registry.Unfollow(ctx, userID)
}

// TradeHistory returns the user's executed trades in submission order.
func (e *Engine) TradeHistory(ctx context.Context, userID string) ([]*domain.TradeRecord, error) {
	return e.trades.GetByUser(ctx, userID)
}

// checkNativeGross verifies the native balance covers amount plus fees.
func (e *Engine) checkNativeGross(ctx context.Context, publicKey string, amount float64) error {
	sol := e.balances.Native(ctx, publicKey)
	if sol.Degraded {
		return ErrUpstreamUnavailable
	}
	required := e.fees.RequiredGross(amount)
	if sol.Value < required {
		return fmt.Errorf("%w: need %.6f SOL", ErrInsufficientFunds, required)
	}
	return nil
}

// recordTrade appends to the audit log. The trade already broadcast, so a
// failed write is logged and swallowed.
func (e *Engine) recordTrade(ctx context.Context, userID, side, inputMint, outputMint string, amount float64, sig string) {
	observability.RecordTrade(side)
	rec := &domain.TradeRecord{
		TradeID:     uuid.New().String(),
		UserID:      userID,
		Side:        side,
		InputMint:   inputMint,
		OutputMint:  outputMint,
		Amount:      amount,
		Signature:   sig,
		SubmittedAt: time.Now().UTC(),
	}
	if err := e.trades.Insert(ctx, rec); err != nil {
		e.logger.Printf("record %s trade for %s: %v", side, userID, err)
	}
}

func validAmount(amount float64) error {
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return ErrInvalidAmount
	}
	return nil
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, ErrUpstreamUnavailable):
		return "upstream_unavailable"
	default:
		return "error"
	}
}

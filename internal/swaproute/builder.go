// Package swaproute requests swap quotes and prebuilt transactions from an
// external aggregator.
package swaproute

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"net/url"
	"time"

	"solana-trading-agent/internal/domain"
	"solana-trading-agent/internal/observability"
)

// DefaultSlippageBps is the fixed slippage tolerance sent with every quote
// request.
const DefaultSlippageBps = 50

// DefaultTokenDecimals converts display amounts to base units when Options
// leaves TokenDecimals unset.
const DefaultTokenDecimals = 6

var (
	// ErrNoRoute means the aggregator answered with zero candidate routes.
	ErrNoRoute = errors.New("no swap route available")
	// ErrInvalidSwapResponse means the build response had no transaction
	// payload even though a route existed.
	ErrInvalidSwapResponse = errors.New("invalid swap response")
	// ErrSwapBuildFailed wraps transport and decoding failures on either
	// aggregator call.
	ErrSwapBuildFailed = errors.New("swap build failed")
)

// Builder obtains swap quotes and unsigned transaction payloads.
type Builder struct {
	quoteURL string
	swapURL  string
	decimals int
	client   *http.Client
	logger   *log.Logger
}

// Options for creating a Builder.
type Options struct {
	// QuoteURL is the aggregator quote endpoint.
	QuoteURL string
	// SwapURL is the aggregator transaction-build endpoint.
	SwapURL string
	// TokenDecimals scales display amounts to base units. Zero means
	// DefaultTokenDecimals.
	TokenDecimals int
	// HTTPClient sets a custom http.Client.
	HTTPClient *http.Client
	Logger     *log.Logger
}

// NewBuilder creates a new swap route builder.
func NewBuilder(opts Options) *Builder {
	decimals := opts.TokenDecimals
	if decimals == 0 {
		decimals = DefaultTokenDecimals
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Builder{
		quoteURL: opts.QuoteURL,
		swapURL:  opts.SwapURL,
		decimals: decimals,
		client:   client,
		logger:   logger,
	}
}

// BuildSwap requests a quote for swapping amount (display units, scaled to
// base units via the configured decimals) of inputMint into outputMint,
// picks the first candidate route, and asks the aggregator for an unsigned
// transaction addressed to signerPubkey with native wrap/unwrap enabled.
// Transport and decoding failures come back as ErrSwapBuildFailed; an empty
// route set is ErrNoRoute; a build response without a payload is
// ErrInvalidSwapResponse.
func (b *Builder) BuildSwap(ctx context.Context, signerPubkey, inputMint, outputMint string, amount float64) (*domain.SwapQuote, error) {
	baseUnits := uint64(amount * math.Pow10(b.decimals))

	route, err := b.fetchQuote(ctx, inputMint, outputMint, baseUnits)
	if err != nil {
		observability.RecordSwapBuild(err)
		return nil, err
	}

	payload, err := b.fetchTransaction(ctx, signerPubkey, route)
	observability.RecordSwapBuild(err)
	if err != nil {
		return nil, err
	}

	return &domain.SwapQuote{
		InputMint:   inputMint,
		OutputMint:  outputMint,
		InputAmount: baseUnits,
		Route:       route,
		Payload:     payload,
	}, nil
}

// fetchQuote returns the first candidate route from the aggregator.
func (b *Builder) fetchQuote(ctx context.Context, inputMint, outputMint string, amount uint64) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("inputMint", inputMint)
	params.Set("outputMint", outputMint)
	params.Set("amount", fmt.Sprintf("%d", amount))
	params.Set("slippageBps", fmt.Sprintf("%d", DefaultSlippageBps))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.quoteURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, b.failed("create quote request", err)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, b.failed("quote request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, b.failed("quote request", fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, b.failed("read quote response", err)
	}

	var parsed struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, b.failed("unmarshal quote response", err)
	}
	if len(parsed.Data) == 0 {
		return nil, ErrNoRoute
	}
	return parsed.Data[0], nil
}

// fetchTransaction posts the selected route and returns the decoded unsigned
// transaction bytes.
func (b *Builder) fetchTransaction(ctx context.Context, signerPubkey string, route json.RawMessage) ([]byte, error) {
	reqBody, err := json.Marshal(map[string]any{
		"route":         route,
		"userPublicKey": signerPubkey,
		"wrapUnwrapSOL": true,
	})
	if err != nil {
		return nil, b.failed("marshal swap request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.swapURL, bytes.NewReader(reqBody))
	if err != nil {
		return nil, b.failed("create swap request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, b.failed("swap request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, b.failed("swap request", fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, b.failed("read swap response", err)
	}

	var parsed struct {
		SwapTransaction string `json:"swapTransaction"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, b.failed("unmarshal swap response", err)
	}
	if parsed.SwapTransaction == "" {
		return nil, ErrInvalidSwapResponse
	}

	payload, err := base64.StdEncoding.DecodeString(parsed.SwapTransaction)
	if err != nil {
		return nil, b.failed("decode swap transaction", err)
	}
	return payload, nil
}

func (b *Builder) failed(op string, err error) error {
	b.logger.Printf("%s: %v", op, err)
	return fmt.Errorf("%w: %s: %v", ErrSwapBuildFailed, op, err)
}

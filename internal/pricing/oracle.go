// Package pricing resolves token unit prices from a primary price service
// with a market-pairs fallback and a TTL cache. Resolution is total: it
// always returns a finite non-negative price, tagged with its source.
package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"solana-trading-agent/internal/domain"
	"solana-trading-agent/internal/observability"
)

// DefaultFallbackPrice is returned when both price sources fail or have no
// entry for the mint. It is never written to the cache, so a later
// successful resolution still populates the real price.
const DefaultFallbackPrice = 0.001

// Oracle resolves token prices.
type Oracle struct {
	primaryURL string
	pairsURL   string
	client     *http.Client
	cache      *priceCache
	logger     *log.Logger
}

// Options for creating an Oracle.
type Options struct {
	// PrimaryURL is the primary price endpoint; the mint is passed as the
	// id query parameter.
	PrimaryURL string
	// PairsURL is the fallback market-pairs endpoint returning a JSON
	// array of pairs with baseMint and price fields.
	PairsURL string
	// HTTPClient sets a custom http.Client.
	HTTPClient *http.Client
	// CacheTTL overrides the default cache lifetime.
	CacheTTL time.Duration
	Logger   *log.Logger
}

// NewOracle creates a new price oracle.
func NewOracle(opts Options) *Oracle {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Oracle{
		primaryURL: opts.PrimaryURL,
		pairsURL:   opts.PairsURL,
		client:     client,
		cache:      newPriceCache(opts.CacheTTL),
		logger:     logger,
	}
}

// GetPrice resolves the unit price for a mint. Cache first, then the
// primary service, then the pairs fallback, then the fixed default. Network
// and parsing failures are logged and never propagate.
func (o *Oracle) GetPrice(ctx context.Context, mint string) domain.PriceQuote {
	quote := o.resolve(ctx, mint)
	observability.RecordPriceLookup(string(quote.Source))
	return quote
}

func (o *Oracle) resolve(ctx context.Context, mint string) domain.PriceQuote {
	if price, ok := o.cache.get(mint); ok {
		return domain.PriceQuote{Mint: mint, Price: price, Source: domain.PriceSourceCache}
	}

	if price, err := o.queryPrimary(ctx, mint); err != nil {
		o.logger.Printf("primary price lookup for %s failed: %v", mint, err)
	} else if price > 0 {
		o.cache.put(mint, price)
		return domain.PriceQuote{Mint: mint, Price: price, Source: domain.PriceSourcePrimary}
	}

	if price, err := o.queryPairs(ctx, mint); err != nil {
		o.logger.Printf("pairs price lookup for %s failed: %v", mint, err)
	} else if price > 0 {
		o.cache.put(mint, price)
		return domain.PriceQuote{Mint: mint, Price: price, Source: domain.PriceSourcePairs}
	}

	return domain.PriceQuote{Mint: mint, Price: DefaultFallbackPrice, Source: domain.PriceSourceDefault}
}

// queryPrimary asks the primary service for one mint. A zero return with
// nil error means the service answered but had no entry.
func (o *Oracle) queryPrimary(ctx context.Context, mint string) (float64, error) {
	reqURL := fmt.Sprintf("%s?id=%s", o.primaryURL, url.QueryEscape(mint))
	body, err := o.fetch(ctx, reqURL)
	if err != nil {
		return 0, err
	}

	var parsed struct {
		Data map[string]struct {
			Price float64 `json:"price"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return 0, fmt.Errorf("unmarshal primary response: %w", err)
	}

	entry, ok := parsed.Data[mint]
	if !ok {
		return 0, nil
	}
	return entry.Price, nil
}

// queryPairs scans the full fallback pair set for a matching base mint.
func (o *Oracle) queryPairs(ctx context.Context, mint string) (float64, error) {
	body, err := o.fetch(ctx, o.pairsURL)
	if err != nil {
		return 0, err
	}

	var pairs []struct {
		BaseMint string  `json:"baseMint"`
		Price    float64 `json:"price"`
	}
	if err := json.Unmarshal(body, &pairs); err != nil {
		return 0, fmt.Errorf("unmarshal pairs response: %w", err)
	}

	for _, pair := range pairs {
		if pair.BaseMint == mint {
			return pair.Price, nil
		}
	}
	return 0, nil
}

// fetch performs a GET and returns the body for 200 responses.
func (o *Oracle) fetch(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}

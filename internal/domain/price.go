package domain

// PriceSource identifies where a price quote was resolved from.
type PriceSource string

const (
	// PriceSourcePrimary means the primary price service returned the quote.
	PriceSourcePrimary PriceSource = "primary"

	// PriceSourcePairs means the fallback market-pairs service returned it.
	PriceSourcePairs PriceSource = "pairs"

	// PriceSourceCache means the quote was served from the process cache.
	PriceSourceCache PriceSource = "cache"

	// PriceSourceDefault means both services failed and the fixed default
	// price was used. Default quotes are never cached.
	PriceSourceDefault PriceSource = "default"
)

// PriceQuote is a resolved token price in quote-currency units per token.
type PriceQuote struct {
	Mint   string
	Price  float64
	Source PriceSource
}

// Resolved reports whether the quote came from a real source rather than
// the fixed default.
func (q PriceQuote) Resolved() bool {
	return q.Source != PriceSourceDefault
}

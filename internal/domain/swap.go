package domain

import "encoding/json"

// SwapQuote is an aggregator-priced route plus the unsigned transaction
// payload that executes it. It is built per trade request, consumed
// immediately by the submitter, and never stored.
type SwapQuote struct {
	InputMint   string
	OutputMint  string
	InputAmount uint64 // base units
	Route       json.RawMessage
	Payload     []byte // unsigned transaction, wire format
}

package domain

import "time"

// Trade sides.
const (
	TradeSideBuy      = "buy"
	TradeSideSell     = "sell"
	TradeSideWithdraw = "withdraw"
)

// TradeRecord is the audit entry for an executed operation. Records are
// written after broadcast; confirmation is not tracked here.
type TradeRecord struct {
	TradeID     string // uuid
	UserID      string
	Side        string // buy | sell | withdraw
	InputMint   string
	OutputMint  string
	Amount      float64 // display units of the input asset
	Signature   string  // base58 transaction signature
	SubmittedAt time.Time
}

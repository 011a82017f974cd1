package solana

// Commitment is the finality guarantee requested when reading chain state.
type Commitment string

const (
	CommitmentProcessed Commitment = "processed"
	CommitmentConfirmed Commitment = "confirmed"
	CommitmentFinalized Commitment = "finalized"
)

// NativeMint is the wrapped SOL mint address.
const NativeMint = "So11111111111111111111111111111111111111112"

// LamportsPerSOL converts between lamports and display units.
const LamportsPerSOL = 1_000_000_000

// TokenAccount identifies one SPL token account owned by a wallet.
type TokenAccount struct {
	Pubkey string
	Mint   string
	Owner  string
}

// TokenAmount is a token account balance in base units.
type TokenAmount struct {
	Amount   uint64
	Decimals uint8
}

// UIAmount converts the base-unit amount to display units.
func (a TokenAmount) UIAmount() float64 {
	div := 1.0
	for i := uint8(0); i < a.Decimals; i++ {
		div *= 10
	}
	return float64(a.Amount) / div
}

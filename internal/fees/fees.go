// Package fees computes the gross amount an operation must cover.
package fees

// Defaults matching mainnet conditions: a flat network fee in SOL and a 1%
// platform fee. One rate/fee pair is shared by buy, sell, and withdraw; if
// per-operation rates are ever wanted, they are resolved in configuration,
// not here.
const (
	DefaultNetworkFee      = 0.000005
	DefaultPlatformFeeRate = 0.01
)

// Calculator computes gross requirements for a configured fee schedule.
type Calculator struct {
	PlatformFeeRate float64
	NetworkFee      float64
}

// NewCalculator creates a Calculator with the given schedule.
func NewCalculator(platformFeeRate, networkFee float64) *Calculator {
	return &Calculator{PlatformFeeRate: platformFeeRate, NetworkFee: networkFee}
}

// RequiredGross returns the total balance needed to move amount:
// the amount itself, the platform fee on it, and the flat network fee.
func (c *Calculator) RequiredGross(amount float64) float64 {
	return RequiredGross(amount, c.PlatformFeeRate, c.NetworkFee)
}

// RequiredGross is the pure form: amount + amount*feeRate + networkFee.
func RequiredGross(amount, feeRate, networkFee float64) float64 {
	return amount + amount*feeRate + networkFee
}

package fees

import "testing"

func TestRequiredGross(t *testing.T) {
	tests := []struct {
		name       string
		amount     float64
		feeRate    float64
		networkFee float64
		want       float64
	}{
		{"typical buy", 1.0, 0.01, 0.000005, 1.010005},
		{"zero amount yields network fee", 0, 0.01, 0.000005, 0.000005},
		{"zero rate", 2.0, 0, 0.000005, 2.000005},
		{"zero everything", 0, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RequiredGross(tt.amount, tt.feeRate, tt.networkFee)
			if got != tt.want {
				t.Errorf("RequiredGross(%v, %v, %v) = %v, want %v",
					tt.amount, tt.feeRate, tt.networkFee, got, tt.want)
			}
		})
	}
}

func TestRequiredGross_Monotonic(t *testing.T) {
	base := RequiredGross(1.0, 0.01, 0.000005)

	if RequiredGross(1.5, 0.01, 0.000005) <= base {
		t.Error("not monotonic in amount")
	}
	if RequiredGross(1.0, 0.02, 0.000005) <= base {
		t.Error("not monotonic in fee rate")
	}
	if RequiredGross(1.0, 0.01, 0.00001) <= base {
		t.Error("not monotonic in network fee")
	}
}

func TestCalculator(t *testing.T) {
	c := NewCalculator(DefaultPlatformFeeRate, DefaultNetworkFee)

	if got := c.RequiredGross(1.0); got != 1.010005 {
		t.Errorf("RequiredGross(1.0) = %v, want 1.010005", got)
	}
	if got := c.RequiredGross(0); got != DefaultNetworkFee {
		t.Errorf("RequiredGross(0) = %v, want the bare network fee", got)
	}
}

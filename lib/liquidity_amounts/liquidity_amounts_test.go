package liquidity_amounts

import (
	"testing"

	"github.com/ftchann/yevefi-simulator/lib/tickmath"

	"lukechampine.com/uint128"
)

func TestGetLiquidityForAmounts(t *testing.T) {
	lower := tickmath.SqrtPriceFromTickIndex(-128)
	upper := tickmath.SqrtPriceFromTickIndex(128)
	tests := []struct {
		name             string
		current          uint128.Uint128
		amountA, amountB uint64
		want             uint64
	}{
		{"inside, balanced", uint128.New(0, 1), 6379246, 6379246, 1000000049},
		{"inside, limited by a", uint128.New(0, 1), 1_000_000, 10_000_000, 156758345},
		{"below range", tickmath.SqrtPriceFromTickIndex(-200), 12799448, 0, 1000000046},
		{"above range", tickmath.SqrtPriceFromTickIndex(200), 0, 12799448, 1000000046},
		{"prices swapped", uint128.New(0, 1), 1_000_000, 10_000_000, 156758345},
	}
	for i, tt := range tests {
		a, b := lower, upper
		if i == len(tests)-1 {
			a, b = upper, lower
		}
		got, err := GetLiquidityForAmounts(tt.current, a, b, tt.amountA, tt.amountB)
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if got != uint128.From64(tt.want) {
			t.Errorf("%s: got %s, want %d", tt.name, got, tt.want)
		}
	}
}

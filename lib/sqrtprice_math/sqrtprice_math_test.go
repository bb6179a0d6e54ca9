package sqrtprice_math

import (
	"errors"
	"fmt"
	"testing"

	"github.com/ftchann/yevefi-simulator/lib/errcode"
	"github.com/ftchann/yevefi-simulator/lib/tickmath"

	"lukechampine.com/uint128"
)

func TestGetAmountDeltas(t *testing.T) {
	lower := tickmath.SqrtPriceFromTickIndex(-100)
	upper := tickmath.SqrtPriceFromTickIndex(100)
	liquidity := uint128.From64(1_000_000_000_000)
	tests := []struct {
		name    string
		fn      func(p0, p1, l uint128.Uint128, roundUp bool) (uint64, error)
		roundUp bool
		want    uint64
	}{
		{"a round up", GetAmountDeltaA, true, 9999541694},
		{"a round down", GetAmountDeltaA, false, 9999541693},
		{"b round up", GetAmountDeltaB, true, 9999541694},
		{"b round down", GetAmountDeltaB, false, 9999541693},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.fn(lower, upper, liquidity, tt.roundUp)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Fatalf("want=%v result=%v", tt.want, got)
			}
			// argument order of the prices does not matter
			swapped, _ := tt.fn(upper, lower, liquidity, tt.roundUp)
			if swapped != got {
				t.Fatalf("swapped prices gave %v", swapped)
			}
		})
	}
}

func TestGetAmountDeltaExceedsU64(t *testing.T) {
	lower := tickmath.MinSqrtPriceX64
	upper := tickmath.MaxSqrtPriceX64
	if _, err := GetAmountDeltaB(lower, upper, uint128.Max.Rsh(1), false); !errors.Is(err, errcode.TokenMaxExceeded) {
		t.Fatalf("want TokenMaxExceeded got %v", err)
	}
	if _, err := GetAmountDeltaA(lower, upper, uint128.Max, false); !errors.Is(err, errcode.MultiplicationOverflow) {
		t.Fatalf("want MultiplicationOverflow got %v", err)
	}
	if TryGetAmountDeltaB(lower, lower, uint128.Max, true).Sign() != 0 {
		t.Fatal("empty range must be zero")
	}
}

func TestGetNextSqrtPrice(t *testing.T) {
	price := tickmath.SqrtPriceFromTickIndex(0)
	liquidity := uint128.From64(1_000_000_000_000)
	tests := []struct {
		input, aToB bool
		want        string
	}{
		{true, true, "18446725626983924633"},
		{true, false, "18446762520453625325"},
		{false, true, "18446725626965477906"},
		{false, false, "18446762520472072089"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.input, tt.aToB), func(t *testing.T) {
			want, _ := uint128.FromString(tt.want)
			got, err := GetNextSqrtPrice(price, liquidity, 1_000_000, tt.input, tt.aToB)
			if err != nil {
				t.Fatal(err)
			}
			if got != want {
				t.Fatalf("want=%v result=%v", want, got)
			}
		})
	}
}

func TestGetNextSqrtPriceErrors(t *testing.T) {
	price := tickmath.SqrtPriceFromTickIndex(0)
	if got, err := GetNextSqrtPrice(price, uint128.From64(10), 0, true, true); err != nil || got != price {
		t.Fatalf("zero amount must not move the price: %v %v", got, err)
	}
	// removing more A than the curve holds
	if _, err := GetNextSqrtPrice(price, uint128.From64(10), 11, false, false); !errors.Is(err, errcode.DivideByZero) {
		t.Fatalf("want DivideByZero got %v", err)
	}
	if _, err := GetNextSqrtPrice(price, uint128.Zero, 10, true, false); !errors.Is(err, errcode.DivideByZero) {
		t.Fatalf("want DivideByZero got %v", err)
	}
	// removing more B than the price supports
	if _, err := GetNextSqrtPrice(price, uint128.From64(1), 2, false, true); !errors.Is(err, errcode.SqrtPriceOutOfBounds) {
		t.Fatalf("want SqrtPriceOutOfBounds got %v", err)
	}
	// pushing A in until the price falls off the curve
	if _, err := GetNextSqrtPrice(price, uint128.From64(1), ^uint64(0), true, true); !errors.Is(err, errcode.TokenMinSubceeded) {
		t.Fatalf("want TokenMinSubceeded got %v", err)
	}
}

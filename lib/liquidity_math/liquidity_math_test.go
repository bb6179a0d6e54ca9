package liquidity_math

import (
	"errors"
	"fmt"
	"testing"

	"github.com/ftchann/yevefi-simulator/lib/errcode"

	ui "github.com/holiman/uint256"
	"lukechampine.com/uint128"
)

func TestAddLiquidityDelta(t *testing.T) {
	tests := []struct {
		liquidity uint128.Uint128
		delta     int64
		want      uint128.Uint128
		err       error
	}{
		{uint128.From64(100), 0, uint128.From64(100), nil},
		{uint128.From64(100), 50, uint128.From64(150), nil},
		{uint128.From64(100), -100, uint128.Zero, nil},
		{uint128.From64(100), -101, uint128.Zero, errcode.LiquidityUnderflow},
		{uint128.Max, 1, uint128.Zero, errcode.LiquidityOverflow},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.liquidity, tt.delta), func(t *testing.T) {
			delta := ui.NewInt(uint64(abs(tt.delta)))
			if tt.delta < 0 {
				delta.Neg(delta)
			}
			got, err := AddLiquidityDelta(tt.liquidity, delta)
			if !errors.Is(err, tt.err) {
				t.Fatalf("want err %v got %v", tt.err, err)
			}
			if got != tt.want {
				t.Fatalf("want=%v result=%v", tt.want, got)
			}
		})
	}
}

func TestConvertToLiquidityDelta(t *testing.T) {
	d, err := ConvertToLiquidityDelta(uint128.From64(7), false)
	if err != nil {
		t.Fatal(err)
	}
	if FormatI128(&d) != "-7" {
		t.Fatalf("want -7 got %s", FormatI128(&d))
	}
	if _, err := ConvertToLiquidityDelta(uint128.Max, true); !errors.Is(err, errcode.LiquidityTooHigh) {
		t.Fatalf("want LiquidityTooHigh got %v", err)
	}
	max := uint128.Max.Rsh(1)
	d, err = ConvertToLiquidityDelta(max, false)
	if err != nil {
		t.Fatal(err)
	}
	if !InI128(&d) {
		t.Fatal("-(2^127-1) must be an i128")
	}
}

func TestCheckedI128(t *testing.T) {
	max, _ := ParseI128("170141183460469231731687303715884105727")
	if _, ok := CheckedAddI128(&max, ui.NewInt(1)); ok {
		t.Fatal("i128 max + 1 must overflow")
	}
	min, _ := ParseI128("-170141183460469231731687303715884105728")
	if _, ok := CheckedSubI128(&min, ui.NewInt(1)); ok {
		t.Fatal("i128 min - 1 must overflow")
	}
	sum, ok := CheckedAddI128(&min, &max)
	if !ok || FormatI128(&sum) != "-1" {
		t.Fatalf("want -1 got %s", FormatI128(&sum))
	}
	if _, err := ParseI128("170141183460469231731687303715884105728"); err == nil {
		t.Fatal("2^127 must not parse as i128")
	}
}

func abs(x int64) int64 {
	if x < 0 {
		return -x
	}
	return x
}

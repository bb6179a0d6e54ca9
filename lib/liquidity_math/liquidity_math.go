// Package liquidity_math applies signed liquidity deltas. Signed values are
// i128 quantities held in a uint256.Int as two's complement.
package liquidity_math

import (
	"fmt"
	"math/big"

	cons "github.com/ftchann/yevefi-simulator/lib/constants"
	"github.com/ftchann/yevefi-simulator/lib/errcode"
	fm "github.com/ftchann/yevefi-simulator/lib/fullmath"

	ui "github.com/holiman/uint256"
	"lukechampine.com/uint128"
)

// InI128 reports whether x lies in [-2^127, 2^127).
func InI128(x *ui.Int) bool {
	return !x.Slt(cons.I128Min) && !x.Sgt(cons.I128Max)
}

// ConvertToLiquidityDelta turns an unsigned liquidity amount into a signed
// delta, negated for removals.
func ConvertToLiquidityDelta(liquidity uint128.Uint128, positive bool) (ui.Int, error) {
	amount := fm.U256(liquidity)
	if amount.Gt(cons.I128Max) {
		return ui.Int{}, errcode.LiquidityTooHigh
	}
	if !positive {
		amount.Neg(amount)
	}
	return *amount, nil
}

func AddLiquidityDelta(liquidity uint128.Uint128, delta *ui.Int) (uint128.Uint128, error) {
	if delta.IsZero() {
		return liquidity, nil
	}
	if delta.Sign() > 0 {
		sum := new(ui.Int).Add(fm.U256(liquidity), delta)
		next, ok := fm.U128(sum)
		if !ok {
			return uint128.Zero, errcode.LiquidityOverflow
		}
		return next, nil
	}
	abs := new(ui.Int).Neg(delta)
	if fm.U256(liquidity).Lt(abs) {
		return uint128.Zero, errcode.LiquidityUnderflow
	}
	next, _ := fm.U128(new(ui.Int).Sub(fm.U256(liquidity), abs))
	return next, nil
}

// CheckedAddI128 adds two i128 values, reporting false when the result leaves i128.
func CheckedAddI128(a, b *ui.Int) (ui.Int, bool) {
	var sum ui.Int
	sum.Add(a, b)
	return sum, InI128(&sum)
}

func CheckedSubI128(a, b *ui.Int) (ui.Int, bool) {
	var diff ui.Int
	diff.Sub(a, b)
	return diff, InI128(&diff)
}

func I128ToBig(x *ui.Int) *big.Int {
	if x.Sign() < 0 {
		return new(big.Int).Neg(new(ui.Int).Neg(x).ToBig())
	}
	return x.ToBig()
}

func I128FromBig(b *big.Int) (ui.Int, error) {
	abs, overflow := ui.FromBig(new(big.Int).Abs(b))
	if overflow {
		return ui.Int{}, fmt.Errorf("i128 %s: out of range", b)
	}
	if b.Sign() < 0 {
		abs.Neg(abs)
	}
	if !InI128(abs) {
		return ui.Int{}, fmt.Errorf("i128 %s: out of range", b)
	}
	return *abs, nil
}

// FormatI128 renders x as a signed decimal.
func FormatI128(x *ui.Int) string {
	return I128ToBig(x).String()
}

func ParseI128(s string) (ui.Int, error) {
	b, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return ui.Int{}, fmt.Errorf("i128 %q: invalid decimal", s)
	}
	return I128FromBig(b)
}

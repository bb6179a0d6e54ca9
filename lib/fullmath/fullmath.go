package fullmath

import (
	cons "github.com/ftchann/yevefi-simulator/lib/constants"
	"github.com/ftchann/yevefi-simulator/lib/errcode"

	ui "github.com/holiman/uint256"
	"lukechampine.com/uint128"
)

// U256 widens a u128 into a fresh 256-bit integer.
func U256(v uint128.Uint128) *ui.Int {
	return &ui.Int{v.Lo, v.Hi, 0, 0}
}

// U128 narrows x, reporting false when x does not fit in 128 bits.
func U128(x *ui.Int) (uint128.Uint128, bool) {
	if x[2] != 0 || x[3] != 0 {
		return uint128.Zero, false
	}
	return uint128.New(x[0], x[1]), true
}

func MulDivRoundingUp(a, b, denominator *ui.Int) (*ui.Int, error) {
	if a.IsZero() || b.IsZero() {
		return ui.NewInt(0), nil
	}
	result, err := MulDiv(a, b, denominator)
	if err != nil {
		return nil, err
	}
	rem := new(ui.Int).MulMod(a, b, denominator)
	if !rem.IsZero() {
		if result.Eq(cons.MaxUint256) {
			return nil, errcode.MulDivOverflow
		}
		result.Add(result, cons.One)
	}
	return result, nil
}

func MulDiv(a, b, denominator *ui.Int) (*ui.Int, error) {
	if denominator.IsZero() {
		return nil, errcode.DivideByZero
	}
	result, overflow := new(ui.Int).MulDivOverflow(a, b, denominator)
	if overflow {
		return nil, errcode.MulDivOverflow
	}
	return result, nil
}

func mul128(n0, n1 uint128.Uint128) (uint128.Uint128, bool) {
	p, overflow := new(ui.Int).MulOverflow(U256(n0), U256(n1))
	if overflow {
		return uint128.Zero, false
	}
	return U128(p)
}

func CheckedMulDiv(n0, n1, d uint128.Uint128) (uint128.Uint128, error) {
	return CheckedMulDivRoundUpIf(n0, n1, d, false)
}

func CheckedMulDivRoundUp(n0, n1, d uint128.Uint128) (uint128.Uint128, error) {
	return CheckedMulDivRoundUpIf(n0, n1, d, true)
}

// CheckedMulDivRoundUpIf computes n0*n1/d with a product that must fit in 128 bits.
func CheckedMulDivRoundUpIf(n0, n1, d uint128.Uint128, roundUp bool) (uint128.Uint128, error) {
	if d.IsZero() {
		return uint128.Zero, errcode.DivideByZero
	}
	p, ok := mul128(n0, n1)
	if !ok {
		return uint128.Zero, errcode.MulDivOverflow
	}
	q, r := p.QuoRem(d)
	if roundUp && !r.IsZero() {
		return q.AddWrap64(1), nil
	}
	return q, nil
}

func CheckedMulShiftRight(n0, n1 uint128.Uint128) (uint64, error) {
	return CheckedMulShiftRightRoundUpIf(n0, n1, false)
}

// CheckedMulShiftRightRoundUpIf computes (n0*n1)>>64 as a u64. The product
// itself must fit in 128 bits.
func CheckedMulShiftRightRoundUpIf(n0, n1 uint128.Uint128, roundUp bool) (uint64, error) {
	if n0.IsZero() || n1.IsZero() {
		return 0, nil
	}
	p, ok := mul128(n0, n1)
	if !ok {
		return 0, errcode.MultiplicationShiftRightOverflow
	}
	result := p.Hi
	shouldRound := roundUp && p.Lo > 0
	if shouldRound && result == ^uint64(0) {
		return 0, errcode.MultiplicationOverflow
	}
	if shouldRound {
		return result + 1, nil
	}
	return result, nil
}

func DivRoundUpIf(n, d uint128.Uint128, roundUp bool) (uint128.Uint128, error) {
	if d.IsZero() {
		return uint128.Zero, errcode.DivideByZero
	}
	q, r := n.QuoRem(d)
	if roundUp && !r.IsZero() {
		return q.AddWrap64(1), nil
	}
	return q, nil
}

package sqrtprice_math

import (
	cons "github.com/ftchann/yevefi-simulator/lib/constants"
	"github.com/ftchann/yevefi-simulator/lib/errcode"
	fm "github.com/ftchann/yevefi-simulator/lib/fullmath"
	"github.com/ftchann/yevefi-simulator/lib/tickmath"

	ui "github.com/holiman/uint256"
	"lukechampine.com/uint128"
)

var q64Mask = new(ui.Int).Sub(cons.Q64, cons.One)

func increasingPriceOrder(p0, p1 uint128.Uint128) (uint128.Uint128, uint128.Uint128) {
	if p0.Cmp(p1) > 0 {
		return p1, p0
	}
	return p0, p1
}

// TryGetAmountDeltaA returns liquidity * (upper - lower) / (upper * lower) in
// 256 bits. Callers that can tolerate a result above u64 use it directly.
func TryGetAmountDeltaA(sqrtPrice0, sqrtPrice1, liquidity uint128.Uint128, roundUp bool) (*ui.Int, error) {
	lower, upper := increasingPriceOrder(sqrtPrice0, sqrtPrice1)
	diff := upper.Sub(lower)

	product := new(ui.Int).Mul(fm.U256(liquidity), fm.U256(diff))
	if product[3] != 0 {
		return nil, errcode.MultiplicationOverflow
	}
	numerator := new(ui.Int).Lsh(product, 64)
	denominator := new(ui.Int).Mul(fm.U256(upper), fm.U256(lower))
	if denominator.IsZero() {
		return nil, errcode.DivideByZero
	}
	quotient := new(ui.Int).Div(numerator, denominator)
	remainder := new(ui.Int).Mod(numerator, denominator)
	if roundUp && !remainder.IsZero() {
		quotient.AddUint64(quotient, 1)
	}
	return quotient, nil
}

// TryGetAmountDeltaB returns (liquidity * (upper - lower)) >> 64 in 256 bits.
func TryGetAmountDeltaB(sqrtPrice0, sqrtPrice1, liquidity uint128.Uint128, roundUp bool) *ui.Int {
	lower, upper := increasingPriceOrder(sqrtPrice0, sqrtPrice1)
	diff := upper.Sub(lower)
	if liquidity.IsZero() || diff.IsZero() {
		return new(ui.Int)
	}
	product := new(ui.Int).Mul(fm.U256(liquidity), fm.U256(diff))
	shouldRound := roundUp && !new(ui.Int).And(product, q64Mask).IsZero()
	result := product.Rsh(product, 64)
	if shouldRound {
		result.AddUint64(result, 1)
	}
	return result
}

func GetAmountDeltaA(sqrtPrice0, sqrtPrice1, liquidity uint128.Uint128, roundUp bool) (uint64, error) {
	delta, err := TryGetAmountDeltaA(sqrtPrice0, sqrtPrice1, liquidity, roundUp)
	if err != nil {
		return 0, err
	}
	if !delta.IsUint64() {
		return 0, errcode.TokenMaxExceeded
	}
	return delta.Uint64(), nil
}

func GetAmountDeltaB(sqrtPrice0, sqrtPrice1, liquidity uint128.Uint128, roundUp bool) (uint64, error) {
	delta := TryGetAmountDeltaB(sqrtPrice0, sqrtPrice1, liquidity, roundUp)
	if !delta.IsUint64() {
		return 0, errcode.TokenMaxExceeded
	}
	return delta.Uint64(), nil
}

// GetNextSqrtPrice moves sqrtPrice by amount of the token whose side of the
// trade is fixed. Token A is fixed when the input side is A.
func GetNextSqrtPrice(sqrtPrice, liquidity uint128.Uint128, amount uint64, amountSpecifiedIsInput, aToB bool) (uint128.Uint128, error) {
	if amountSpecifiedIsInput == aToB {
		return getNextSqrtPriceFromARoundUp(sqrtPrice, liquidity, amount, amountSpecifiedIsInput)
	}
	return getNextSqrtPriceFromBRoundDown(sqrtPrice, liquidity, amount, amountSpecifiedIsInput)
}

// price' = (L * p) / (L +- amount * p), rounded up so the pool never gives away extra A.
func getNextSqrtPriceFromARoundUp(sqrtPrice, liquidity uint128.Uint128, amount uint64, amountSpecifiedIsInput bool) (uint128.Uint128, error) {
	if amount == 0 {
		return sqrtPrice, nil
	}
	product := new(ui.Int).Mul(fm.U256(sqrtPrice), ui.NewInt(amount))
	lp := new(ui.Int).Mul(fm.U256(liquidity), fm.U256(sqrtPrice))
	if lp[3] != 0 {
		return uint128.Zero, errcode.MultiplicationOverflow
	}
	numerator := new(ui.Int).Lsh(lp, 64)
	liquidityShiftLeft := new(ui.Int).Lsh(fm.U256(liquidity), 64)

	if !amountSpecifiedIsInput && liquidityShiftLeft.Cmp(product) <= 0 {
		return uint128.Zero, errcode.DivideByZero
	}
	var denominator *ui.Int
	if amountSpecifiedIsInput {
		denominator = new(ui.Int).Add(liquidityShiftLeft, product)
	} else {
		denominator = new(ui.Int).Sub(liquidityShiftLeft, product)
	}
	if denominator.IsZero() {
		return uint128.Zero, errcode.DivideByZero
	}
	quotient := new(ui.Int).Div(numerator, denominator)
	remainder := new(ui.Int).Mod(numerator, denominator)
	if !remainder.IsZero() {
		quotient.AddUint64(quotient, 1)
	}
	price, ok := fm.U128(quotient)
	if !ok {
		return uint128.Zero, errcode.NumberDownCastError
	}
	if price.Cmp(tickmath.MinSqrtPriceX64) < 0 {
		return uint128.Zero, errcode.TokenMinSubceeded
	}
	if price.Cmp(tickmath.MaxSqrtPriceX64) > 0 {
		return uint128.Zero, errcode.TokenMaxExceeded
	}
	return price, nil
}

// price' = price +- amount / L, rounded down.
func getNextSqrtPriceFromBRoundDown(sqrtPrice, liquidity uint128.Uint128, amount uint64, amountSpecifiedIsInput bool) (uint128.Uint128, error) {
	amountX64 := uint128.New(0, amount)
	delta, err := fm.DivRoundUpIf(amountX64, liquidity, !amountSpecifiedIsInput)
	if err != nil {
		return uint128.Zero, err
	}
	if amountSpecifiedIsInput {
		next := sqrtPrice.AddWrap(delta)
		if next.Cmp(sqrtPrice) < 0 {
			return uint128.Zero, errcode.SqrtPriceOutOfBounds
		}
		return next, nil
	}
	if sqrtPrice.Cmp(delta) < 0 {
		return uint128.Zero, errcode.SqrtPriceOutOfBounds
	}
	return sqrtPrice.Sub(delta), nil
}

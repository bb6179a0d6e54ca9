// Package liquidity_amounts quotes how much liquidity a pair of token
// amounts buys over a price range. Results round down.
package liquidity_amounts

import (
	cons "github.com/ftchann/yevefi-simulator/lib/constants"
	"github.com/ftchann/yevefi-simulator/lib/errcode"
	fm "github.com/ftchann/yevefi-simulator/lib/fullmath"

	ui "github.com/holiman/uint256"
	"lukechampine.com/uint128"
)

func toLiquidity(x *ui.Int) (uint128.Uint128, error) {
	liquidity, ok := fm.U128(x)
	if !ok {
		return uint128.Zero, errcode.LiquidityOverflow
	}
	return liquidity, nil
}

func GetLiquidityForAmountA(sqrtPriceA, sqrtPriceB uint128.Uint128, amountA uint64) (uint128.Uint128, error) {
	if sqrtPriceA.Cmp(sqrtPriceB) > 0 {
		sqrtPriceA, sqrtPriceB = sqrtPriceB, sqrtPriceA
	}
	intermediate, err := fm.MulDiv(fm.U256(sqrtPriceA), fm.U256(sqrtPriceB), cons.Q64)
	if err != nil {
		return uint128.Zero, err
	}
	liquidity, err := fm.MulDiv(ui.NewInt(amountA), intermediate, fm.U256(sqrtPriceB.Sub(sqrtPriceA)))
	if err != nil {
		return uint128.Zero, err
	}
	return toLiquidity(liquidity)
}

func GetLiquidityForAmountB(sqrtPriceA, sqrtPriceB uint128.Uint128, amountB uint64) (uint128.Uint128, error) {
	if sqrtPriceA.Cmp(sqrtPriceB) > 0 {
		sqrtPriceA, sqrtPriceB = sqrtPriceB, sqrtPriceA
	}
	liquidity, err := fm.MulDiv(ui.NewInt(amountB), cons.Q64, fm.U256(sqrtPriceB.Sub(sqrtPriceA)))
	if err != nil {
		return uint128.Zero, err
	}
	return toLiquidity(liquidity)
}

// GetLiquidityForAmounts returns the largest liquidity over
// [sqrtPriceA, sqrtPriceB] that neither amount falls short of at sqrtPrice.
func GetLiquidityForAmounts(sqrtPrice, sqrtPriceA, sqrtPriceB uint128.Uint128, amountA, amountB uint64) (liquidity uint128.Uint128, err error) {
	if sqrtPriceA.Cmp(sqrtPriceB) > 0 {
		sqrtPriceA, sqrtPriceB = sqrtPriceB, sqrtPriceA
	}
	if sqrtPrice.Cmp(sqrtPriceA) <= 0 {
		liquidity, err = GetLiquidityForAmountA(sqrtPriceA, sqrtPriceB, amountA)
	} else if sqrtPrice.Cmp(sqrtPriceB) < 0 {
		liquidityA, err := GetLiquidityForAmountA(sqrtPrice, sqrtPriceB, amountA)
		if err != nil {
			return uint128.Zero, err
		}
		liquidityB, err := GetLiquidityForAmountB(sqrtPriceA, sqrtPrice, amountB)
		if err != nil {
			return uint128.Zero, err
		}

		if liquidityA.Cmp(liquidityB) < 0 {
			liquidity = liquidityA
		} else {
			liquidity = liquidityB
		}
	} else {
		liquidity, err = GetLiquidityForAmountB(sqrtPriceA, sqrtPriceB, amountB)
	}
	return liquidity, err
}

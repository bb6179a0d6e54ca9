package swapmath

import (
	cons "github.com/ftchann/yevefi-simulator/lib/constants"
	"github.com/ftchann/yevefi-simulator/lib/errcode"
	fm "github.com/ftchann/yevefi-simulator/lib/fullmath"
	sqrtmath "github.com/ftchann/yevefi-simulator/lib/sqrtprice_math"

	ui "github.com/holiman/uint256"
	"lukechampine.com/uint128"
)

var feeRateMulValue = uint128.From64(cons.FeeRateMulValue)

type SwapStepComputation struct {
	AmountIn  uint64
	AmountOut uint64
	NextPrice uint128.Uint128
	FeeAmount uint64
}

// ComputeSwap runs one constant-liquidity step from sqrtPriceCurrent toward
// sqrtPriceTarget, consuming at most amount of the specified side.
func ComputeSwap(amount uint64, feeRate uint16, liquidity, sqrtPriceCurrent, sqrtPriceTarget uint128.Uint128, amountSpecifiedIsInput, aToB bool) (SwapStepComputation, error) {
	amountFixedDelta, err := getAmountFixedDelta(sqrtPriceCurrent, sqrtPriceTarget, liquidity, amountSpecifiedIsInput, aToB)
	if err != nil {
		return SwapStepComputation{}, err
	}

	amountCalc := amount
	if amountSpecifiedIsInput {
		lessFee, err := fm.CheckedMulDiv(uint128.From64(amount), feeRateMulValue.Sub64(uint64(feeRate)), feeRateMulValue)
		if err != nil {
			return SwapStepComputation{}, err
		}
		amountCalc = lessFee.Lo
	}

	var nextSqrtPrice uint128.Uint128
	if amountFixedDelta.Cmp(ui.NewInt(amountCalc)) <= 0 {
		nextSqrtPrice = sqrtPriceTarget
	} else {
		nextSqrtPrice, err = sqrtmath.GetNextSqrtPrice(sqrtPriceCurrent, liquidity, amountCalc, amountSpecifiedIsInput, aToB)
		if err != nil {
			return SwapStepComputation{}, err
		}
	}

	isMaxSwap := nextSqrtPrice == sqrtPriceTarget

	amountUnfixedDelta, err := getAmountUnfixedDelta(sqrtPriceCurrent, nextSqrtPrice, liquidity, amountSpecifiedIsInput, aToB)
	if err != nil {
		return SwapStepComputation{}, err
	}

	if !isMaxSwap {
		amountFixedDelta, err = getAmountFixedDelta(sqrtPriceCurrent, nextSqrtPrice, liquidity, amountSpecifiedIsInput, aToB)
		if err != nil {
			return SwapStepComputation{}, err
		}
	}
	if !amountFixedDelta.IsUint64() {
		return SwapStepComputation{}, errcode.TokenMaxExceeded
	}

	var amountIn, amountOut uint64
	if amountSpecifiedIsInput {
		amountIn, amountOut = amountFixedDelta.Uint64(), amountUnfixedDelta
	} else {
		amountIn, amountOut = amountUnfixedDelta, amountFixedDelta.Uint64()
	}

	if !amountSpecifiedIsInput && amountOut > amount {
		amountOut = amount
	}

	var feeAmount uint64
	if amountSpecifiedIsInput && !isMaxSwap {
		// we didn't reach the target, so take the remainder of the maximum input as fee
		feeAmount = amount - amountIn
	} else {
		fee, err := fm.CheckedMulDivRoundUp(uint128.From64(amountIn), uint128.From64(uint64(feeRate)), feeRateMulValue.Sub64(uint64(feeRate)))
		if err != nil {
			return SwapStepComputation{}, err
		}
		if fee.Hi != 0 {
			return SwapStepComputation{}, errcode.NumberDownCastError
		}
		feeAmount = fee.Lo
	}

	return SwapStepComputation{
		AmountIn:  amountIn,
		AmountOut: amountOut,
		NextPrice: nextSqrtPrice,
		FeeAmount: feeAmount,
	}, nil
}

// The fixed side is the one the caller specified; it may exceed u64 until
// the step is known to stop short of the target.
func getAmountFixedDelta(sqrtPriceCurrent, sqrtPriceTarget, liquidity uint128.Uint128, amountSpecifiedIsInput, aToB bool) (*ui.Int, error) {
	if aToB == amountSpecifiedIsInput {
		return sqrtmath.TryGetAmountDeltaA(sqrtPriceCurrent, sqrtPriceTarget, liquidity, amountSpecifiedIsInput)
	}
	return sqrtmath.TryGetAmountDeltaB(sqrtPriceCurrent, sqrtPriceTarget, liquidity, amountSpecifiedIsInput), nil
}

func getAmountUnfixedDelta(sqrtPriceCurrent, sqrtPriceTarget, liquidity uint128.Uint128, amountSpecifiedIsInput, aToB bool) (uint64, error) {
	if aToB == amountSpecifiedIsInput {
		return sqrtmath.GetAmountDeltaB(sqrtPriceCurrent, sqrtPriceTarget, liquidity, !amountSpecifiedIsInput)
	}
	return sqrtmath.GetAmountDeltaA(sqrtPriceCurrent, sqrtPriceTarget, liquidity, !amountSpecifiedIsInput)
}

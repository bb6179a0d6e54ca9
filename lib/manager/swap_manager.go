package manager

import (
	cons "github.com/ftchann/yevefi-simulator/lib/constants"
	"github.com/ftchann/yevefi-simulator/lib/errcode"
	lm "github.com/ftchann/yevefi-simulator/lib/liquidity_math"
	"github.com/ftchann/yevefi-simulator/lib/pool"
	"github.com/ftchann/yevefi-simulator/lib/swapmath"
	"github.com/ftchann/yevefi-simulator/lib/tick"
	"github.com/ftchann/yevefi-simulator/lib/tickmath"

	"lukechampine.com/uint128"
)

type PostSwapUpdate struct {
	AmountA             uint64
	AmountB             uint64
	NextLiquidity       uint128.Uint128
	NextTickIndex       int32
	NextSqrtPrice       uint128.Uint128
	NextFeeGrowthGlobal uint128.Uint128
	NextRewardInfos     [cons.NumRewards]pool.RewardInfo
	NextProtocolFee     uint64

	// growth of the input side fee accumulator over this swap, for analytics
	FeeGrowthDelta uint128.Uint128
}

// Swap walks the price from the pool's current sqrt price toward
// sqrtPriceLimit until amount is used up. Ticks crossed on the way are
// written into seq as the loop runs, so a caller that gets an error must
// discard seq together with the update.
func Swap(p *pool.Pool, seq *tick.SwapTickSequence, amount uint64, sqrtPriceLimit uint128.Uint128,
	amountSpecifiedIsInput, aToB bool, timestamp uint64) (PostSwapUpdate, error) {
	if err := tickmath.CheckSqrtPrice(sqrtPriceLimit); err != nil {
		return PostSwapUpdate{}, err
	}
	if aToB && sqrtPriceLimit.Cmp(p.SqrtPrice) > 0 || !aToB && sqrtPriceLimit.Cmp(p.SqrtPrice) < 0 {
		return PostSwapUpdate{}, errcode.InvalidSqrtPriceLimitDirection
	}
	if amount == 0 {
		return PostSwapUpdate{}, errcode.ZeroTradableAmount
	}

	tickSpacing := p.TickSpacing
	nextRewardInfos, err := NextPoolRewardInfos(p, timestamp)
	if err != nil {
		return PostSwapUpdate{}, err
	}

	amountRemaining := amount
	amountCalculated := uint64(0)
	currSqrtPrice := p.SqrtPrice
	currTickIndex := p.TickCurrentIndex
	currLiquidity := p.Liquidity
	currProtocolFee := uint64(0)
	currArrayIndex := 0
	currFeeGrowthGlobalInput := p.FeeGrowthGlobalB
	if aToB {
		currFeeGrowthGlobalInput = p.FeeGrowthGlobalA
	}

	for amountRemaining > 0 && sqrtPriceLimit != currSqrtPrice {
		nextArrayIndex, nextTickIndex, err := seq.GetNextInitializedTickIndex(currTickIndex, tickSpacing, aToB, currArrayIndex)
		if err != nil {
			return PostSwapUpdate{}, err
		}

		nextTickSqrtPrice, sqrtPriceTarget := nextSqrtPrices(nextTickIndex, sqrtPriceLimit, aToB)

		step, err := swapmath.ComputeSwap(amountRemaining, p.FeeRate, currLiquidity, currSqrtPrice, sqrtPriceTarget, amountSpecifiedIsInput, aToB)
		if err != nil {
			return PostSwapUpdate{}, err
		}

		if amountSpecifiedIsInput {
			if amountRemaining, err = checkedSub(amountRemaining, errcode.AmountRemainingOverflow, step.AmountIn, step.FeeAmount); err != nil {
				return PostSwapUpdate{}, err
			}
			if amountCalculated, err = checkedAdd(amountCalculated, errcode.AmountCalcOverflow, step.AmountOut); err != nil {
				return PostSwapUpdate{}, err
			}
		} else {
			if amountRemaining, err = checkedSub(amountRemaining, errcode.AmountRemainingOverflow, step.AmountOut); err != nil {
				return PostSwapUpdate{}, err
			}
			if amountCalculated, err = checkedAdd(amountCalculated, errcode.AmountCalcOverflow, step.AmountIn, step.FeeAmount); err != nil {
				return PostSwapUpdate{}, err
			}
		}

		currProtocolFee, currFeeGrowthGlobalInput = calculateFees(step.FeeAmount, p.ProtocolFeeRate, currLiquidity, currProtocolFee, currFeeGrowthGlobalInput)

		if step.NextPrice == nextTickSqrtPrice {
			// a tick outside the loaded arrays is treated as uninitialized
			nextTick, err := seq.GetTick(nextArrayIndex, nextTickIndex, tickSpacing)
			if err == nil && nextTick.Initialized {
				feeGrowthGlobalA, feeGrowthGlobalB := p.FeeGrowthGlobalA, currFeeGrowthGlobalInput
				if aToB {
					feeGrowthGlobalA, feeGrowthGlobalB = currFeeGrowthGlobalInput, p.FeeGrowthGlobalB
				}
				update, nextLiquidity, err := calculateUpdate(nextTick, aToB, currLiquidity, feeGrowthGlobalA, feeGrowthGlobalB, &nextRewardInfos)
				if err != nil {
					return PostSwapUpdate{}, err
				}
				currLiquidity = nextLiquidity
				if err := seq.UpdateTick(nextArrayIndex, nextTickIndex, tickSpacing, update); err != nil {
					return PostSwapUpdate{}, err
				}
			}

			tickOffset, err := seq.GetTickOffset(nextArrayIndex, nextTickIndex, tickSpacing)
			if err != nil {
				return PostSwapUpdate{}, err
			}

			// move to the next array when leaving the edge of this one
			currArrayIndex = nextArrayIndex
			if aToB && tickOffset == 0 || !aToB && tickOffset == cons.TickArraySize-1 {
				currArrayIndex = nextArrayIndex + 1
			}

			// the a to b search includes its start, step past the crossed tick
			currTickIndex = nextTickIndex
			if aToB {
				currTickIndex = nextTickIndex - 1
			}
		} else if step.NextPrice != currSqrtPrice {
			currTickIndex = tickmath.TickIndexFromSqrtPrice(step.NextPrice)
		}

		currSqrtPrice = step.NextPrice
	}

	var amountA, amountB uint64
	if aToB == amountSpecifiedIsInput {
		amountA, amountB = amount-amountRemaining, amountCalculated
	} else {
		amountA, amountB = amountCalculated, amount-amountRemaining
	}

	feeGrowthDelta := currFeeGrowthGlobalInput.SubWrap(p.FeeGrowthGlobalB)
	if aToB {
		feeGrowthDelta = currFeeGrowthGlobalInput.SubWrap(p.FeeGrowthGlobalA)
	}

	return PostSwapUpdate{
		AmountA:             amountA,
		AmountB:             amountB,
		NextLiquidity:       currLiquidity,
		NextTickIndex:       currTickIndex,
		NextSqrtPrice:       currSqrtPrice,
		NextFeeGrowthGlobal: currFeeGrowthGlobalInput,
		NextRewardInfos:     nextRewardInfos,
		NextProtocolFee:     currProtocolFee,
		FeeGrowthDelta:      feeGrowthDelta,
	}, nil
}

func checkedSub(a uint64, code errcode.ErrorCode, subs ...uint64) (uint64, error) {
	for _, s := range subs {
		if s > a {
			return 0, code
		}
		a -= s
	}
	return a, nil
}

func checkedAdd(a uint64, code errcode.ErrorCode, adds ...uint64) (uint64, error) {
	for _, s := range adds {
		if a+s < a {
			return 0, code
		}
		a += s
	}
	return a, nil
}

// calculateFees splits a step fee into the protocol cut and the growth it
// adds per unit of liquidity. With no liquidity the LP share is not tracked.
func calculateFees(feeAmount uint64, protocolFeeRate uint16, currLiquidity uint128.Uint128, currProtocolFee uint64,
	currFeeGrowthGlobalInput uint128.Uint128) (uint64, uint128.Uint128) {
	nextProtocolFee := currProtocolFee
	nextFeeGrowthGlobalInput := currFeeGrowthGlobalInput
	globalFee := feeAmount
	if protocolFeeRate > 0 {
		delta := calculateProtocolFee(globalFee, protocolFeeRate)
		globalFee -= delta
		nextProtocolFee += delta
	}
	if !currLiquidity.IsZero() {
		growth := uint128.New(0, globalFee).Div(currLiquidity)
		nextFeeGrowthGlobalInput = nextFeeGrowthGlobalInput.AddWrap(growth)
	}
	return nextProtocolFee, nextFeeGrowthGlobalInput
}

func calculateProtocolFee(globalFee uint64, protocolFeeRate uint16) uint64 {
	return uint128.From64(globalFee).Mul64(uint64(protocolFeeRate)).Div64(cons.ProtocolFeeRateMulValue).Lo
}

// calculateUpdate crosses t and applies its liquidity net, negated when the
// price moves left.
func calculateUpdate(t *tick.Tick, aToB bool, liquidity, feeGrowthGlobalA, feeGrowthGlobalB uint128.Uint128,
	rewardInfos *[cons.NumRewards]pool.RewardInfo) (tick.TickUpdate, uint128.Uint128, error) {
	signedLiquidityNet := t.LiquidityNet
	if aToB {
		signedLiquidityNet.Neg(&t.LiquidityNet)
	}
	update := NextTickCrossUpdate(t, feeGrowthGlobalA, feeGrowthGlobalB, rewardInfos)
	nextLiquidity, err := lm.AddLiquidityDelta(liquidity, &signedLiquidityNet)
	if err != nil {
		return tick.TickUpdate{}, uint128.Zero, err
	}
	return update, nextLiquidity, nil
}

func nextSqrtPrices(nextTickIndex int32, sqrtPriceLimit uint128.Uint128, aToB bool) (uint128.Uint128, uint128.Uint128) {
	nextTickPrice := tickmath.SqrtPriceFromTickIndex(nextTickIndex)
	target := nextTickPrice
	if aToB && sqrtPriceLimit.Cmp(nextTickPrice) > 0 || !aToB && sqrtPriceLimit.Cmp(nextTickPrice) < 0 {
		target = sqrtPriceLimit
	}
	return nextTickPrice, target
}

// TransferFeeMint resolves the amounts on either side of a token's transfer
// fee. Mints without a fee return their input unchanged.
type TransferFeeMint interface {
	TransferFeeExcludedAmount(transferFeeIncludedAmount uint64) (uint64, error)
	TransferFeeIncludedAmount(transferFeeExcludedAmount uint64) (uint64, error)
}

// SwapWithTransferFee runs Swap on the amount that actually reaches or
// leaves the pool and reports both legs as the amounts the trader sends and
// the pool sends. With zero fees it is identical to Swap.
func SwapWithTransferFee(p *pool.Pool, mintA, mintB TransferFeeMint, seq *tick.SwapTickSequence, amount uint64,
	sqrtPriceLimit uint128.Uint128, amountSpecifiedIsInput, aToB bool, timestamp uint64) (PostSwapUpdate, error) {
	inputMint, outputMint := mintB, mintA
	if aToB {
		inputMint, outputMint = mintA, mintB
	}

	if amountSpecifiedIsInput {
		transferFeeExcludedInput, err := inputMint.TransferFeeExcludedAmount(amount)
		if err != nil {
			return PostSwapUpdate{}, err
		}
		update, err := Swap(p, seq, transferFeeExcludedInput, sqrtPriceLimit, amountSpecifiedIsInput, aToB, timestamp)
		if err != nil {
			return PostSwapUpdate{}, err
		}
		amountInput, amountOutput := swapLegs(update, aToB)

		adjustedInput := amount
		if amountInput != transferFeeExcludedInput {
			adjustedInput, err = inputMint.TransferFeeIncludedAmount(amountInput)
			if err != nil {
				return PostSwapUpdate{}, err
			}
		}
		setSwapLegs(&update, aToB, adjustedInput, amountOutput)
		return update, nil
	}

	transferFeeIncludedOutput, err := outputMint.TransferFeeIncludedAmount(amount)
	if err != nil {
		return PostSwapUpdate{}, err
	}
	update, err := Swap(p, seq, transferFeeIncludedOutput, sqrtPriceLimit, amountSpecifiedIsInput, aToB, timestamp)
	if err != nil {
		return PostSwapUpdate{}, err
	}
	amountInput, amountOutput := swapLegs(update, aToB)
	transferFeeIncludedInput, err := inputMint.TransferFeeIncludedAmount(amountInput)
	if err != nil {
		return PostSwapUpdate{}, err
	}
	setSwapLegs(&update, aToB, transferFeeIncludedInput, amountOutput)
	return update, nil
}

func swapLegs(update PostSwapUpdate, aToB bool) (input, output uint64) {
	if aToB {
		return update.AmountA, update.AmountB
	}
	return update.AmountB, update.AmountA
}

func setSwapLegs(update *PostSwapUpdate, aToB bool, input, output uint64) {
	if aToB {
		update.AmountA, update.AmountB = input, output
	} else {
		update.AmountA, update.AmountB = output, input
	}
}

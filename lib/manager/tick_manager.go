package manager

import (
	cons "github.com/ftchann/yevefi-simulator/lib/constants"
	"github.com/ftchann/yevefi-simulator/lib/errcode"
	lm "github.com/ftchann/yevefi-simulator/lib/liquidity_math"
	"github.com/ftchann/yevefi-simulator/lib/pool"
	"github.com/ftchann/yevefi-simulator/lib/tick"

	ui "github.com/holiman/uint256"
	"lukechampine.com/uint128"
)

// NextTickCrossUpdate flips the outside growths of a tick being crossed:
// outside becomes global - outside. Uninitialized reward slots are left alone.
func NextTickCrossUpdate(t *tick.Tick, feeGrowthGlobalA, feeGrowthGlobalB uint128.Uint128, rewardInfos *[cons.NumRewards]pool.RewardInfo) tick.TickUpdate {
	update := tick.NewTickUpdate(*t)
	update.FeeGrowthOutsideA = feeGrowthGlobalA.SubWrap(t.FeeGrowthOutsideA)
	update.FeeGrowthOutsideB = feeGrowthGlobalB.SubWrap(t.FeeGrowthOutsideB)
	for i, r := range rewardInfos {
		if !r.Initialized() {
			continue
		}
		update.RewardGrowthsOutside[i] = r.GrowthGlobalX64.SubWrap(t.RewardGrowthsOutside[i])
	}
	return update
}

func NextTickModifyLiquidityUpdate(t *tick.Tick, tickIndex, tickCurrentIndex int32, feeGrowthGlobalA, feeGrowthGlobalB uint128.Uint128,
	rewardInfos *[cons.NumRewards]pool.RewardInfo, liquidityDelta *ui.Int, isUpperTick bool) (tick.TickUpdate, error) {
	if liquidityDelta.IsZero() {
		return tick.NewTickUpdate(*t), nil
	}

	liquidityGross, err := lm.AddLiquidityDelta(t.LiquidityGross, liquidityDelta)
	if err != nil {
		return tick.TickUpdate{}, err
	}
	// all liquidity removed, the tick goes back to uninitialized
	if liquidityGross.IsZero() {
		return tick.TickUpdate{}, nil
	}

	var feeGrowthOutsideA, feeGrowthOutsideB uint128.Uint128
	var rewardGrowthsOutside [cons.NumRewards]uint128.Uint128
	if t.LiquidityGross.IsZero() {
		// By convention, assume all prior growth happened below the tick
		if tickCurrentIndex >= tickIndex {
			feeGrowthOutsideA = feeGrowthGlobalA
			feeGrowthOutsideB = feeGrowthGlobalB
			rewardGrowthsOutside = pool.ToRewardGrowths(*rewardInfos)
		}
	} else {
		feeGrowthOutsideA = t.FeeGrowthOutsideA
		feeGrowthOutsideB = t.FeeGrowthOutsideB
		rewardGrowthsOutside = t.RewardGrowthsOutside
	}

	var liquidityNet ui.Int
	var ok bool
	if isUpperTick {
		liquidityNet, ok = lm.CheckedSubI128(&t.LiquidityNet, liquidityDelta)
	} else {
		liquidityNet, ok = lm.CheckedAddI128(&t.LiquidityNet, liquidityDelta)
	}
	if !ok {
		return tick.TickUpdate{}, errcode.LiquidityNetError
	}

	return tick.TickUpdate{
		Initialized:          true,
		LiquidityNet:         liquidityNet,
		LiquidityGross:       liquidityGross,
		FeeGrowthOutsideA:    feeGrowthOutsideA,
		FeeGrowthOutsideB:    feeGrowthOutsideB,
		RewardGrowthsOutside: rewardGrowthsOutside,
	}, nil
}

// growthInside is global - below - above, with below and above resolved
// from the outside values by the side of the range the current tick is on.
// An uninitialized lower tick counts all growth as below, an uninitialized
// upper tick counts none as above.
func growthInside(tickCurrentIndex int32, lowerInitialized bool, lowerOutside uint128.Uint128, tickLowerIndex int32,
	upperInitialized bool, upperOutside uint128.Uint128, tickUpperIndex int32, global uint128.Uint128) uint128.Uint128 {
	var below, above uint128.Uint128
	switch {
	case !lowerInitialized:
		below = global
	case tickCurrentIndex < tickLowerIndex:
		below = global.SubWrap(lowerOutside)
	default:
		below = lowerOutside
	}
	switch {
	case !upperInitialized:
		above = uint128.Zero
	case tickCurrentIndex < tickUpperIndex:
		above = upperOutside
	default:
		above = global.SubWrap(upperOutside)
	}
	return global.SubWrap(below).SubWrap(above)
}

func NextFeeGrowthsInside(tickCurrentIndex int32, tickLower *tick.Tick, tickLowerIndex int32, tickUpper *tick.Tick, tickUpperIndex int32,
	feeGrowthGlobalA, feeGrowthGlobalB uint128.Uint128) (uint128.Uint128, uint128.Uint128) {
	insideA := growthInside(tickCurrentIndex, tickLower.Initialized, tickLower.FeeGrowthOutsideA, tickLowerIndex,
		tickUpper.Initialized, tickUpper.FeeGrowthOutsideA, tickUpperIndex, feeGrowthGlobalA)
	insideB := growthInside(tickCurrentIndex, tickLower.Initialized, tickLower.FeeGrowthOutsideB, tickLowerIndex,
		tickUpper.Initialized, tickUpper.FeeGrowthOutsideB, tickUpperIndex, feeGrowthGlobalB)
	return insideA, insideB
}

func NextRewardGrowthsInside(tickCurrentIndex int32, tickLower *tick.Tick, tickLowerIndex int32, tickUpper *tick.Tick, tickUpperIndex int32,
	rewardInfos *[cons.NumRewards]pool.RewardInfo) [cons.NumRewards]uint128.Uint128 {
	var inside [cons.NumRewards]uint128.Uint128
	for i, r := range rewardInfos {
		if !r.Initialized() {
			continue
		}
		inside[i] = growthInside(tickCurrentIndex, tickLower.Initialized, tickLower.RewardGrowthsOutside[i], tickLowerIndex,
			tickUpper.Initialized, tickUpper.RewardGrowthsOutside[i], tickUpperIndex, r.GrowthGlobalX64)
	}
	return inside
}

package manager

import (
	cons "github.com/ftchann/yevefi-simulator/lib/constants"
	fm "github.com/ftchann/yevefi-simulator/lib/fullmath"
	lm "github.com/ftchann/yevefi-simulator/lib/liquidity_math"
	"github.com/ftchann/yevefi-simulator/lib/position"

	ui "github.com/holiman/uint256"
	"lukechampine.com/uint128"
)

// owedDelta converts a growth difference into whole tokens. Overflow forfeits
// the increment instead of failing.
func owedDelta(liquidity, growthDelta uint128.Uint128) uint64 {
	delta, err := fm.CheckedMulShiftRight(liquidity, growthDelta)
	if err != nil {
		return 0
	}
	return delta
}

func NextPositionModifyLiquidityUpdate(p *position.Position, liquidityDelta *ui.Int, feeGrowthInsideA, feeGrowthInsideB uint128.Uint128,
	rewardGrowthsInside [cons.NumRewards]uint128.Uint128) (position.PositionUpdate, error) {
	var update position.PositionUpdate

	feeDeltaA := owedDelta(p.Liquidity, feeGrowthInsideA.SubWrap(p.FeeGrowthCheckpointA))
	feeDeltaB := owedDelta(p.Liquidity, feeGrowthInsideB.SubWrap(p.FeeGrowthCheckpointB))
	update.FeeGrowthCheckpointA = feeGrowthInsideA
	update.FeeGrowthCheckpointB = feeGrowthInsideB
	// owed amounts wrap, collection is expected long before that
	update.FeeOwedA = p.FeeOwedA + feeDeltaA
	update.FeeOwedB = p.FeeOwedB + feeDeltaB

	for i := range rewardGrowthsInside {
		curr := p.RewardInfos[i]
		amountOwedDelta := owedDelta(p.Liquidity, rewardGrowthsInside[i].SubWrap(curr.GrowthInsideCheckpoint))
		update.RewardInfos[i] = position.PositionRewardInfo{
			GrowthInsideCheckpoint: rewardGrowthsInside[i],
			AmountOwed:             curr.AmountOwed + amountOwedDelta,
		}
	}

	liquidity, err := lm.AddLiquidityDelta(p.Liquidity, liquidityDelta)
	if err != nil {
		return position.PositionUpdate{}, err
	}
	update.Liquidity = liquidity
	return update, nil
}

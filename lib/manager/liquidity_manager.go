package manager

import (
	cons "github.com/ftchann/yevefi-simulator/lib/constants"
	"github.com/ftchann/yevefi-simulator/lib/errcode"
	"github.com/ftchann/yevefi-simulator/lib/pool"
	"github.com/ftchann/yevefi-simulator/lib/position"
	sqrtmath "github.com/ftchann/yevefi-simulator/lib/sqrtprice_math"
	"github.com/ftchann/yevefi-simulator/lib/tick"
	"github.com/ftchann/yevefi-simulator/lib/tickmath"

	ui "github.com/holiman/uint256"
	"lukechampine.com/uint128"
)

// ModifyLiquidityUpdate is everything a liquidity change writes. Nothing is
// applied until SyncModifyLiquidityValues.
type ModifyLiquidityUpdate struct {
	PoolLiquidity   uint128.Uint128
	TickLowerUpdate tick.TickUpdate
	TickUpperUpdate tick.TickUpdate
	RewardInfos     [cons.NumRewards]pool.RewardInfo
	PositionUpdate  position.PositionUpdate
}

func boundaryTicks(p *pool.Pool, pos *position.Position, tickArrayLower, tickArrayUpper *tick.TickArray) (*tick.Tick, *tick.Tick, error) {
	tickLower, err := tickArrayLower.GetTick(pos.TickLowerIndex, p.TickSpacing)
	if err != nil {
		return nil, nil, err
	}
	tickUpper, err := tickArrayUpper.GetTick(pos.TickUpperIndex, p.TickSpacing)
	if err != nil {
		return nil, nil, err
	}
	return tickLower, tickUpper, nil
}

// CalculateModifyLiquidity computes the effect of changing the liquidity of
// pos by liquidityDelta at timestamp. A zero delta on an empty position is
// rejected with LiquidityZero.
func CalculateModifyLiquidity(p *pool.Pool, pos *position.Position, tickArrayLower, tickArrayUpper *tick.TickArray,
	liquidityDelta *ui.Int, timestamp uint64) (ModifyLiquidityUpdate, error) {
	tickLower, tickUpper, err := boundaryTicks(p, pos, tickArrayLower, tickArrayUpper)
	if err != nil {
		return ModifyLiquidityUpdate{}, err
	}
	return calculateModifyLiquidity(p, pos, tickLower, tickUpper, liquidityDelta, timestamp)
}

func calculateModifyLiquidity(p *pool.Pool, pos *position.Position, tickLower, tickUpper *tick.Tick,
	liquidityDelta *ui.Int, timestamp uint64) (ModifyLiquidityUpdate, error) {
	if liquidityDelta.IsZero() && pos.Liquidity.IsZero() {
		return ModifyLiquidityUpdate{}, errcode.LiquidityZero
	}

	nextRewardInfos, err := NextPoolRewardInfos(p, timestamp)
	if err != nil {
		return ModifyLiquidityUpdate{}, err
	}

	nextGlobalLiquidity, err := NextPoolLiquidity(p, pos.TickUpperIndex, pos.TickLowerIndex, liquidityDelta)
	if err != nil {
		return ModifyLiquidityUpdate{}, err
	}

	tickLowerUpdate, err := NextTickModifyLiquidityUpdate(tickLower, pos.TickLowerIndex, p.TickCurrentIndex,
		p.FeeGrowthGlobalA, p.FeeGrowthGlobalB, &nextRewardInfos, liquidityDelta, false)
	if err != nil {
		return ModifyLiquidityUpdate{}, err
	}
	tickUpperUpdate, err := NextTickModifyLiquidityUpdate(tickUpper, pos.TickUpperIndex, p.TickCurrentIndex,
		p.FeeGrowthGlobalA, p.FeeGrowthGlobalB, &nextRewardInfos, liquidityDelta, true)
	if err != nil {
		return ModifyLiquidityUpdate{}, err
	}

	// inside growths are taken from the ticks as they were before this change
	feeGrowthInsideA, feeGrowthInsideB := NextFeeGrowthsInside(p.TickCurrentIndex, tickLower, pos.TickLowerIndex,
		tickUpper, pos.TickUpperIndex, p.FeeGrowthGlobalA, p.FeeGrowthGlobalB)
	rewardGrowthsInside := NextRewardGrowthsInside(p.TickCurrentIndex, tickLower, pos.TickLowerIndex,
		tickUpper, pos.TickUpperIndex, &nextRewardInfos)

	positionUpdate, err := NextPositionModifyLiquidityUpdate(pos, liquidityDelta, feeGrowthInsideA, feeGrowthInsideB, rewardGrowthsInside)
	if err != nil {
		return ModifyLiquidityUpdate{}, err
	}

	return ModifyLiquidityUpdate{
		PoolLiquidity:   nextGlobalLiquidity,
		TickLowerUpdate: tickLowerUpdate,
		TickUpperUpdate: tickUpperUpdate,
		RewardInfos:     nextRewardInfos,
		PositionUpdate:  positionUpdate,
	}, nil
}

// CalculateFeeAndRewardGrowths refreshes the owed fees and rewards of pos
// without changing its liquidity. A position without liquidity has nothing
// to refresh and is rejected with LiquidityZero.
func CalculateFeeAndRewardGrowths(p *pool.Pool, pos *position.Position, tickArrayLower, tickArrayUpper *tick.TickArray,
	timestamp uint64) (position.PositionUpdate, [cons.NumRewards]pool.RewardInfo, error) {
	if pos.Liquidity.IsZero() {
		return position.PositionUpdate{}, [cons.NumRewards]pool.RewardInfo{}, errcode.LiquidityZero
	}

	tickLower, tickUpper, err := boundaryTicks(p, pos, tickArrayLower, tickArrayUpper)
	if err != nil {
		return position.PositionUpdate{}, [cons.NumRewards]pool.RewardInfo{}, err
	}

	nextRewardInfos, err := NextPoolRewardInfos(p, timestamp)
	if err != nil {
		return position.PositionUpdate{}, [cons.NumRewards]pool.RewardInfo{}, err
	}

	feeGrowthInsideA, feeGrowthInsideB := NextFeeGrowthsInside(p.TickCurrentIndex, tickLower, pos.TickLowerIndex,
		tickUpper, pos.TickUpperIndex, p.FeeGrowthGlobalA, p.FeeGrowthGlobalB)
	rewardGrowthsInside := NextRewardGrowthsInside(p.TickCurrentIndex, tickLower, pos.TickLowerIndex,
		tickUpper, pos.TickUpperIndex, &nextRewardInfos)

	update, err := NextPositionModifyLiquidityUpdate(pos, new(ui.Int), feeGrowthInsideA, feeGrowthInsideB, rewardGrowthsInside)
	if err != nil {
		return position.PositionUpdate{}, [cons.NumRewards]pool.RewardInfo{}, err
	}
	return update, nextRewardInfos, nil
}

// CalculateLiquidityTokenDeltas returns the token amounts moved by a
// liquidity change of pos at the given price. Deposits round up and
// withdrawals round down.
func CalculateLiquidityTokenDeltas(currentTickIndex int32, sqrtPrice uint128.Uint128, pos *position.Position,
	liquidityDelta *ui.Int) (uint64, uint64, error) {
	if liquidityDelta.IsZero() {
		return 0, 0, errcode.LiquidityZero
	}

	roundUp := liquidityDelta.Sign() > 0
	abs := new(ui.Int).Abs(liquidityDelta)
	liquidity := uint128.New(abs[0], abs[1])

	lowerPrice := tickmath.SqrtPriceFromTickIndex(pos.TickLowerIndex)
	upperPrice := tickmath.SqrtPriceFromTickIndex(pos.TickUpperIndex)

	var deltaA, deltaB uint64
	var err error
	switch {
	case currentTickIndex < pos.TickLowerIndex:
		// current tick below position
		deltaA, err = sqrtmath.GetAmountDeltaA(lowerPrice, upperPrice, liquidity, roundUp)
	case currentTickIndex < pos.TickUpperIndex:
		// current tick inside position
		deltaA, err = sqrtmath.GetAmountDeltaA(sqrtPrice, upperPrice, liquidity, roundUp)
		if err == nil {
			deltaB, err = sqrtmath.GetAmountDeltaB(lowerPrice, sqrtPrice, liquidity, roundUp)
		}
	default:
		// current tick above position
		deltaB, err = sqrtmath.GetAmountDeltaB(lowerPrice, upperPrice, liquidity, roundUp)
	}
	if err != nil {
		return 0, 0, err
	}
	return deltaA, deltaB, nil
}

// SyncModifyLiquidityValues writes update into the position, both boundary
// ticks and the pool. Both ticks are resolved before anything is written, so
// a failure leaves every entity untouched.
func SyncModifyLiquidityValues(p *pool.Pool, pos *position.Position, tickArrayLower, tickArrayUpper *tick.TickArray,
	update ModifyLiquidityUpdate, timestamp uint64) error {
	if _, _, err := boundaryTicks(p, pos, tickArrayLower, tickArrayUpper); err != nil {
		return err
	}

	pos.Update(update.PositionUpdate)
	if err := tickArrayLower.UpdateTick(pos.TickLowerIndex, p.TickSpacing, update.TickLowerUpdate); err != nil {
		return err
	}
	if err := tickArrayUpper.UpdateTick(pos.TickUpperIndex, p.TickSpacing, update.TickUpperUpdate); err != nil {
		return err
	}
	p.UpdateRewardsAndLiquidity(update.RewardInfos, update.PoolLiquidity, timestamp)
	return nil
}

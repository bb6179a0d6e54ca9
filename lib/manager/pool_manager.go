package manager

import (
	cons "github.com/ftchann/yevefi-simulator/lib/constants"
	"github.com/ftchann/yevefi-simulator/lib/errcode"
	fm "github.com/ftchann/yevefi-simulator/lib/fullmath"
	lm "github.com/ftchann/yevefi-simulator/lib/liquidity_math"
	"github.com/ftchann/yevefi-simulator/lib/pool"

	ui "github.com/holiman/uint256"
	"lukechampine.com/uint128"
)

// NextPoolRewardInfos rolls the reward growth of every initialized slot
// forward to nextTimestamp. A slot whose delta overflows accrues nothing for
// this period; the other slots are unaffected.
func NextPoolRewardInfos(p *pool.Pool, nextTimestamp uint64) ([cons.NumRewards]pool.RewardInfo, error) {
	currTimestamp := p.RewardLastUpdatedTimestamp
	if nextTimestamp < currTimestamp {
		return [cons.NumRewards]pool.RewardInfo{}, errcode.InvalidTimestamp
	}

	next := p.RewardInfos
	if p.Liquidity.IsZero() || nextTimestamp == currTimestamp {
		return next, nil
	}

	timeDelta := uint128.From64(nextTimestamp - currTimestamp)
	for i := range next {
		if !next[i].Initialized() {
			continue
		}
		delta, err := fm.CheckedMulDiv(timeDelta, next[i].EmissionsPerSecondX64, p.Liquidity)
		if err != nil {
			delta = uint128.Zero
		}
		next[i].GrowthGlobalX64 = next[i].GrowthGlobalX64.AddWrap(delta)
	}
	return next, nil
}

// NextPoolLiquidity is the pool liquidity after a position over
// [tickLower, tickUpper) changes by liquidityDelta. Only ranges holding the
// current tick are active.
func NextPoolLiquidity(p *pool.Pool, tickUpper, tickLower int32, liquidityDelta *ui.Int) (uint128.Uint128, error) {
	if p.TickCurrentIndex < tickUpper && p.TickCurrentIndex >= tickLower {
		return lm.AddLiquidityDelta(p.Liquidity, liquidityDelta)
	}
	return p.Liquidity, nil
}

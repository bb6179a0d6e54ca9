package manager

import (
	"testing"

	"github.com/ftchann/yevefi-simulator/lib/errcode"
	lm "github.com/ftchann/yevefi-simulator/lib/liquidity_math"
	"github.com/ftchann/yevefi-simulator/lib/pool"
	"github.com/ftchann/yevefi-simulator/lib/position"
	"github.com/ftchann/yevefi-simulator/lib/tick"
	"github.com/ftchann/yevefi-simulator/lib/tickmath"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
	"lukechampine.com/uint128"
)

const liquidity = uint64(1_000_000_000)

func TestModifyLiquidityRoundTrip(t *testing.T) {
	w := newWorld(t)
	pos := w.openPosition(t, -128, 128)
	before := *pos

	w.modify(t, pos, liquidity, true, 0)
	require.Equal(t, uint128.From64(liquidity), w.pool.Liquidity)
	require.Equal(t, uint128.From64(liquidity), pos.Liquidity)
	lower, upper := w.tickAt(t, -128), w.tickAt(t, 128)
	require.True(t, lower.Initialized)
	require.True(t, upper.Initialized)
	require.Equal(t, "1000000000", lm.FormatI128(&lower.LiquidityNet))
	require.Equal(t, "-1000000000", lm.FormatI128(&upper.LiquidityNet))
	require.Equal(t, uint128.From64(liquidity), upper.LiquidityGross)
	require.Equal(t, "0", w.sumLiquidityNet(t))

	w.modify(t, pos, liquidity, false, 0)
	require.True(t, w.pool.Liquidity.IsZero())
	require.Equal(t, before, *pos)
	require.Equal(t, tick.Tick{}, *w.tickAt(t, -128))
	require.Equal(t, tick.Tick{}, *w.tickAt(t, 128))
	require.Equal(t, "0", w.sumLiquidityNet(t))
}

func TestModifyLiquidityOverlappingPositions(t *testing.T) {
	w := newWorld(t)
	a := w.openPosition(t, -128, 128)
	b := w.openPosition(t, -64, 192)
	c := w.openPosition(t, 128, 256)

	w.modify(t, a, 300, true, 0)
	w.modify(t, b, 200, true, 0)
	w.modify(t, c, 100, true, 0)
	// c does not hold the current tick
	require.Equal(t, uint128.From64(500), w.pool.Liquidity)
	require.Equal(t, "-200", lm.FormatI128(&w.tickAt(t, 128).LiquidityNet))
	require.Equal(t, uint128.From64(400), w.tickAt(t, 128).LiquidityGross)
	require.Equal(t, "0", w.sumLiquidityNet(t))

	w.modify(t, b, 50, false, 0)
	require.Equal(t, uint128.From64(450), w.pool.Liquidity)
	require.Equal(t, "0", w.sumLiquidityNet(t))
}

func TestModifyLiquidityOutsideGrowthConvention(t *testing.T) {
	w := newWorld(t)
	w.pool.FeeGrowthGlobalA = uint128.New(0, 7)
	pos := w.openPosition(t, -128, 128)
	w.modify(t, pos, liquidity, true, 0)

	// growth so far is assumed to have happened below a fresh tick
	require.Equal(t, uint128.New(0, 7), w.tickAt(t, -128).FeeGrowthOutsideA)
	require.True(t, w.tickAt(t, 128).FeeGrowthOutsideA.IsZero())
	require.True(t, pos.FeeGrowthCheckpointA.IsZero())
	require.Zero(t, pos.FeeOwedA)
}

func TestCalculateFeeAndRewardGrowths(t *testing.T) {
	w := newWorld(t)
	w.pool.FeeGrowthGlobalA = uint128.New(0, 7)
	w.pool.RewardInfos[0] = pool.RewardInfo{Mint: common.HexToAddress("0xa1"), EmissionsPerSecondX64: uint128.New(0, 1)}
	pos := w.openPosition(t, -128, 128)
	w.modify(t, pos, liquidity, true, 0)

	w.pool.FeeGrowthGlobalA = uint128.New(0, 10)
	lower, upper := w.array(-128), w.array(128)
	update, rewardInfos, err := CalculateFeeAndRewardGrowths(w.pool, pos, lower, upper, 1000)
	require.NoError(t, err)

	require.Equal(t, uint128.New(0, 3), update.FeeGrowthCheckpointA)
	require.Equal(t, uint64(3*liquidity), update.FeeOwedA)
	require.Zero(t, update.FeeOwedB)
	require.Equal(t, uint128.From64(liquidity), update.Liquidity)

	// 1000 tokens emitted over 1000s to a single position, floored twice
	require.Equal(t, uint128.From64(18446744073709), rewardInfos[0].GrowthGlobalX64)
	require.Equal(t, uint64(999), update.RewardInfos[0].AmountOwed)

	// nothing was written
	require.Equal(t, uint64(0), w.pool.RewardLastUpdatedTimestamp)
	require.Zero(t, pos.FeeOwedA)
}

func TestCalculateFeeAndRewardGrowthsRequiresLiquidity(t *testing.T) {
	w := newWorld(t)
	pos := w.openPosition(t, -128, 128)
	lower, upper := w.array(-128), w.array(128)

	_, _, err := CalculateFeeAndRewardGrowths(w.pool, pos, lower, upper, 10)
	require.ErrorIs(t, err, errcode.LiquidityZero)

	w.modify(t, pos, liquidity, true, 0)
	w.modify(t, pos, liquidity, false, 5)
	require.True(t, pos.Liquidity.IsZero())

	_, _, err = CalculateFeeAndRewardGrowths(w.pool, pos, lower, upper, 10)
	require.ErrorIs(t, err, errcode.LiquidityZero)
}

func TestCalculateModifyLiquidityErrors(t *testing.T) {
	w := newWorld(t)
	pos := w.openPosition(t, -128, 128)
	lower, upper := w.array(-128), w.array(128)

	zero := liquidityDelta(t, 0, true)
	_, err := CalculateModifyLiquidity(w.pool, pos, lower, upper, &zero, 0)
	require.ErrorIs(t, err, errcode.LiquidityZero)

	remove := liquidityDelta(t, 1, false)
	_, err = CalculateModifyLiquidity(w.pool, pos, lower, upper, &remove, 0)
	require.ErrorIs(t, err, errcode.LiquidityUnderflow)

	w.pool.RewardLastUpdatedTimestamp = 100
	add := liquidityDelta(t, 1, true)
	_, err = CalculateModifyLiquidity(w.pool, pos, lower, upper, &add, 99)
	require.ErrorIs(t, err, errcode.InvalidTimestamp)

	// the lower tick is not in the array passed for it
	_, err = CalculateModifyLiquidity(w.pool, pos, upper, upper, &add, 100)
	require.ErrorIs(t, err, errcode.TickNotFound)
}

func TestSyncModifyLiquidityValuesIsAllOrNothing(t *testing.T) {
	w := newWorld(t)
	pos := w.openPosition(t, -128, 128)
	lower, upper := w.array(-128), w.array(128)
	add := liquidityDelta(t, liquidity, true)
	update, err := CalculateModifyLiquidity(w.pool, pos, lower, upper, &add, 0)
	require.NoError(t, err)

	poolBefore, posBefore, upperBefore := *w.pool, *pos, *upper
	err = SyncModifyLiquidityValues(w.pool, pos, lower, w.arrays[5632], update, 0)
	require.ErrorIs(t, err, errcode.TickNotFound)
	require.Equal(t, poolBefore, *w.pool)
	require.Equal(t, posBefore, *pos)
	require.Equal(t, upperBefore, *upper)
	require.False(t, w.tickAt(t, -128).Initialized)
}

func TestCalculateLiquidityTokenDeltas(t *testing.T) {
	pos := &position.Position{TickLowerIndex: -128, TickUpperIndex: 128}
	tests := []struct {
		name         string
		current      int32
		positive     bool
		wantA, wantB uint64
	}{
		{"deposit inside", 0, true, 6379246, 6379246},
		{"withdraw inside", 0, false, 6379245, 6379245},
		{"below range", -200, true, 12799448, 0},
		{"above range", 200, true, 0, 12799448},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			delta := liquidityDelta(t, liquidity, tt.positive)
			a, b, err := CalculateLiquidityTokenDeltas(tt.current, tickmath.SqrtPriceFromTickIndex(tt.current), pos, &delta)
			require.NoError(t, err)
			require.Equal(t, tt.wantA, a)
			require.Equal(t, tt.wantB, b)
		})
	}

	zero := liquidityDelta(t, 0, true)
	_, _, err := CalculateLiquidityTokenDeltas(0, uint128.New(0, 1), pos, &zero)
	require.ErrorIs(t, err, errcode.LiquidityZero)
}

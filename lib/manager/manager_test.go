package manager

import (
	"testing"

	lm "github.com/ftchann/yevefi-simulator/lib/liquidity_math"
	"github.com/ftchann/yevefi-simulator/lib/pool"
	"github.com/ftchann/yevefi-simulator/lib/position"
	"github.com/ftchann/yevefi-simulator/lib/tick"

	"github.com/ethereum/go-ethereum/common"
	ui "github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
	"lukechampine.com/uint128"
)

const spacing uint16 = 64

func liquidityDelta(t *testing.T, amount uint64, positive bool) ui.Int {
	delta, err := lm.ConvertToLiquidityDelta(uint128.From64(amount), positive)
	require.NoError(t, err)
	return delta
}

// world is a pool at tick 0 with fee rate 3000, protocol fee rate 300 and
// four tick arrays around the current price.
type world struct {
	pool   *pool.Pool
	arrays map[int32]*tick.TickArray
}

func newWorld(t *testing.T) *world {
	var p pool.Pool
	cfg := pool.Config{Key: common.Hash{1}, DefaultProtocolFeeRate: 300}
	err := p.Initialize(common.Hash{2}, cfg, spacing, uint128.New(0, 1), 3000,
		common.HexToAddress("0x01"), common.HexToAddress("0x11"), common.HexToAddress("0x02"), common.HexToAddress("0x12"))
	require.NoError(t, err)

	w := &world{pool: &p, arrays: map[int32]*tick.TickArray{}}
	for _, start := range []int32{-11264, -5632, 0, 5632} {
		ta, err := tick.NewTickArray(p.Key, start, spacing)
		require.NoError(t, err)
		w.arrays[start] = ta
	}
	return w
}

func (w *world) array(tickIndex int32) *tick.TickArray {
	start, ok := tick.StartTickIndex(tickIndex, spacing, 0)
	if !ok {
		return nil
	}
	return w.arrays[start]
}

func (w *world) tickAt(t *testing.T, tickIndex int32) *tick.Tick {
	tk, err := w.array(tickIndex).GetTick(tickIndex, spacing)
	require.NoError(t, err)
	return tk
}

func (w *world) openPosition(t *testing.T, lower, upper int32) *position.Position {
	var pos position.Position
	require.NoError(t, pos.OpenPosition(w.pool.Key, spacing, common.HexToAddress("0xfe"), lower, upper))
	return &pos
}

func (w *world) modify(t *testing.T, pos *position.Position, amount uint64, positive bool, timestamp uint64) {
	delta := liquidityDelta(t, amount, positive)
	lower, upper := w.array(pos.TickLowerIndex), w.array(pos.TickUpperIndex)
	update, err := CalculateModifyLiquidity(w.pool, pos, lower, upper, &delta, timestamp)
	require.NoError(t, err)
	require.NoError(t, SyncModifyLiquidityValues(w.pool, pos, lower, upper, update, timestamp))
}

func (w *world) sequence(aToB bool) *tick.SwapTickSequence {
	starts := tick.SwapTickArrayStarts(w.pool.TickCurrentIndex, spacing, aToB)
	arrays := make([]*tick.TickArray, len(starts))
	for i, start := range starts {
		arrays[i] = w.arrays[start]
	}
	return tick.NewSwapTickSequence(arrays[0], arrays[1:]...)
}

func (w *world) sumLiquidityNet(t *testing.T) string {
	var sum ui.Int
	for _, ta := range w.arrays {
		for i := range ta.Ticks {
			var ok bool
			sum, ok = lm.CheckedAddI128(&sum, &ta.Ticks[i].LiquidityNet)
			require.True(t, ok)
		}
	}
	return lm.FormatI128(&sum)
}

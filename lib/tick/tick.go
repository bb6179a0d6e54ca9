package tick

import (
	cons "github.com/ftchann/yevefi-simulator/lib/constants"
	"github.com/ftchann/yevefi-simulator/lib/tickmath"

	ui "github.com/holiman/uint256"
	"lukechampine.com/uint128"
)

// Tick holds the accounting of one tick index. LiquidityNet is an i128 in
// two's complement.
type Tick struct {
	Initialized          bool
	LiquidityNet         ui.Int
	LiquidityGross       uint128.Uint128
	FeeGrowthOutsideA    uint128.Uint128
	FeeGrowthOutsideB    uint128.Uint128
	RewardGrowthsOutside [cons.NumRewards]uint128.Uint128
}

type TickUpdate struct {
	Initialized          bool
	LiquidityNet         ui.Int
	LiquidityGross       uint128.Uint128
	FeeGrowthOutsideA    uint128.Uint128
	FeeGrowthOutsideB    uint128.Uint128
	RewardGrowthsOutside [cons.NumRewards]uint128.Uint128
}

func NewTickUpdate(t Tick) TickUpdate {
	return TickUpdate(t)
}

func (t *Tick) Update(update TickUpdate) {
	*t = Tick(update)
}

func CheckIsOutOfBounds(tickIndex int32) bool {
	return tickIndex < tickmath.MinTickIndex || tickIndex > tickmath.MaxTickIndex
}

// CheckIsUsableTick reports whether tickIndex can be initialized in a pool
// with the given spacing.
func CheckIsUsableTick(tickIndex int32, tickSpacing uint16) bool {
	if CheckIsOutOfBounds(tickIndex) {
		return false
	}
	return tickIndex%int32(tickSpacing) == 0
}

func FullRangeIndexes(tickSpacing uint16) (int32, int32) {
	s := int32(tickSpacing)
	return tickmath.MinTickIndex / s * s, tickmath.MaxTickIndex / s * s
}

// CheckIsValidStartTick accepts multiples of the array width, plus the one
// left-edge array whose start lies below MinTickIndex.
func CheckIsValidStartTick(tickIndex int32, tickSpacing uint16) bool {
	ticksInArray := int32(cons.TickArraySize) * int32(tickSpacing)
	if CheckIsOutOfBounds(tickIndex) {
		if tickIndex > tickmath.MinTickIndex {
			return false
		}
		return tickIndex == minArrayStartIndex(tickSpacing)
	}
	return tickIndex%ticksInArray == 0
}

func minArrayStartIndex(tickSpacing uint16) int32 {
	ticksInArray := int32(cons.TickArraySize) * int32(tickSpacing)
	return tickmath.MinTickIndex - (tickmath.MinTickIndex%ticksInArray + ticksInArray)
}

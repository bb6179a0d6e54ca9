package tick

import (
	cons "github.com/ftchann/yevefi-simulator/lib/constants"
	"github.com/ftchann/yevefi-simulator/lib/errcode"
	"github.com/ftchann/yevefi-simulator/lib/tickmath"

	"github.com/ethereum/go-ethereum/common"
)

// TickArray is a fixed block of TickArraySize ticks starting at
// StartTickIndex. It is addressed by (pool, start tick index).
type TickArray struct {
	Pool           common.Hash
	StartTickIndex int32
	Ticks          [cons.TickArraySize]Tick
}

func NewTickArray(pool common.Hash, startTickIndex int32, tickSpacing uint16) (*TickArray, error) {
	if tickSpacing == 0 {
		return nil, errcode.InvalidTickSpacing
	}
	if !CheckIsValidStartTick(startTickIndex, tickSpacing) {
		return nil, errcode.InvalidStartTick
	}
	return &TickArray{Pool: pool, StartTickIndex: startTickIndex}, nil
}

func (ta *TickArray) IsMinTickArray() bool {
	return ta.StartTickIndex <= tickmath.MinTickIndex
}

func (ta *TickArray) IsMaxTickArray(tickSpacing uint16) bool {
	return ta.StartTickIndex+int32(cons.TickArraySize)*int32(tickSpacing) > tickmath.MaxTickIndex
}

// GetNextInitTickIndex searches this array for the next initialized tick.
// An a to b search includes tickIndex itself, b to a starts one spacing
// above it. ok is false when the array holds no initialized tick in that
// direction.
func (ta *TickArray) GetNextInitTickIndex(tickIndex int32, tickSpacing uint16, aToB bool) (next int32, ok bool, err error) {
	if !ta.inSearchRange(tickIndex, tickSpacing, !aToB) {
		return 0, false, errcode.InvalidTickArraySequence
	}
	offset, err := ta.TickOffset(tickIndex, tickSpacing)
	if err != nil {
		return 0, false, err
	}
	if !aToB {
		offset++
	}
	for offset >= 0 && offset < cons.TickArraySize {
		if ta.Ticks[offset].Initialized {
			return int32(offset)*int32(tickSpacing) + ta.StartTickIndex, true, nil
		}
		if aToB {
			offset--
		} else {
			offset++
		}
	}
	return 0, false, nil
}

func (ta *TickArray) GetTick(tickIndex int32, tickSpacing uint16) (*Tick, error) {
	offset, err := ta.usableOffset(tickIndex, tickSpacing)
	if err != nil {
		return nil, err
	}
	return &ta.Ticks[offset], nil
}

func (ta *TickArray) UpdateTick(tickIndex int32, tickSpacing uint16, update TickUpdate) error {
	offset, err := ta.usableOffset(tickIndex, tickSpacing)
	if err != nil {
		return err
	}
	ta.Ticks[offset].Update(update)
	return nil
}

func (ta *TickArray) usableOffset(tickIndex int32, tickSpacing uint16) (int, error) {
	if !ta.checkInArrayBounds(tickIndex, tickSpacing) || !CheckIsUsableTick(tickIndex, tickSpacing) {
		return 0, errcode.TickNotFound
	}
	offset, err := ta.TickOffset(tickIndex, tickSpacing)
	if err != nil {
		return 0, err
	}
	if offset < 0 {
		return 0, errcode.TickNotFound
	}
	return offset, nil
}

// TickOffset is the floor-divided position of tickIndex relative to the start.
func (ta *TickArray) TickOffset(tickIndex int32, tickSpacing uint16) (int, error) {
	if tickSpacing == 0 {
		return 0, errcode.InvalidTickSpacing
	}
	return getOffset(tickIndex, ta.StartTickIndex, tickSpacing), nil
}

func (ta *TickArray) checkInArrayBounds(tickIndex int32, tickSpacing uint16) bool {
	lower := ta.StartTickIndex
	upper := ta.StartTickIndex + int32(cons.TickArraySize)*int32(tickSpacing)
	return tickIndex >= lower && tickIndex < upper
}

// shifted moves the range one spacing to the left, for b to a searches
// that start from the last tick of the previous array.
func (ta *TickArray) inSearchRange(tickIndex int32, tickSpacing uint16, shifted bool) bool {
	lower := ta.StartTickIndex
	upper := ta.StartTickIndex + int32(cons.TickArraySize)*int32(tickSpacing)
	if shifted {
		lower -= int32(tickSpacing)
		upper -= int32(tickSpacing)
	}
	return tickIndex >= lower && tickIndex < upper
}

func getOffset(tickIndex, startTickIndex int32, tickSpacing uint16) int {
	lhs := tickIndex - startTickIndex
	rhs := int32(tickSpacing)
	d := lhs / rhs
	r := lhs % rhs
	if r < 0 {
		d--
	}
	return int(d)
}

// StartTickIndex returns the start of the array holding tickIndex, moved by
// offset whole arrays. ok is false when that array would lie outside the
// tick range.
func StartTickIndex(tickIndex int32, tickSpacing uint16, offset int32) (int32, bool) {
	ticksInArray := int32(cons.TickArraySize) * int32(tickSpacing)
	realIndex := floorDiv(tickIndex, ticksInArray)
	start := (realIndex + offset) * ticksInArray
	if start < minArrayStartIndex(tickSpacing) || start > tickmath.MaxTickIndex {
		return 0, false
	}
	return start, true
}

// SwapTickArrayStarts lists the start indexes of the arrays a swap from
// tickCurrent walks through, nearest first.
func SwapTickArrayStarts(tickCurrent int32, tickSpacing uint16, aToB bool) []int32 {
	shift := int32(0)
	step := int32(1)
	if !aToB {
		shift = int32(tickSpacing)
	} else {
		step = -1
	}
	starts := make([]int32, 0, cons.MaxSwapTickArrays)
	offset := int32(0)
	for i := 0; i < cons.MaxSwapTickArrays; i++ {
		start, ok := StartTickIndex(tickCurrent+shift, tickSpacing, offset)
		if !ok {
			break
		}
		starts = append(starts, start)
		offset += step
	}
	return starts
}

func floorDiv(a, b int32) int32 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

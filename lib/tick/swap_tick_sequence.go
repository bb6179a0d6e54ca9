package tick

import (
	cons "github.com/ftchann/yevefi-simulator/lib/constants"
	"github.com/ftchann/yevefi-simulator/lib/errcode"
	"github.com/ftchann/yevefi-simulator/lib/tickmath"
)

// SwapTickSequence is the ordered set of tick arrays one swap may walk
// through. Arrays are addressed by their position in the sequence.
type SwapTickSequence struct {
	arrays []*TickArray
}

// NewSwapTickSequence takes the first array and up to two followers. Nil
// followers are skipped, shortening the sequence.
func NewSwapTickSequence(ta0 *TickArray, rest ...*TickArray) *SwapTickSequence {
	arrays := make([]*TickArray, 0, cons.MaxSwapTickArrays)
	arrays = append(arrays, ta0)
	for _, ta := range rest {
		if ta != nil && len(arrays) < cons.MaxSwapTickArrays {
			arrays = append(arrays, ta)
		}
	}
	return &SwapTickSequence{arrays: arrays}
}

func (s *SwapTickSequence) Len() int {
	return len(s.arrays)
}

func (s *SwapTickSequence) Array(arrayIndex int) *TickArray {
	if arrayIndex < 0 || arrayIndex >= len(s.arrays) {
		return nil
	}
	return s.arrays[arrayIndex]
}

func (s *SwapTickSequence) GetTick(arrayIndex int, tickIndex int32, tickSpacing uint16) (*Tick, error) {
	ta := s.Array(arrayIndex)
	if ta == nil {
		return nil, errcode.TickArrayIndexOutofBounds
	}
	return ta.GetTick(tickIndex, tickSpacing)
}

func (s *SwapTickSequence) UpdateTick(arrayIndex int, tickIndex int32, tickSpacing uint16, update TickUpdate) error {
	ta := s.Array(arrayIndex)
	if ta == nil {
		return errcode.TickArrayIndexOutofBounds
	}
	return ta.UpdateTick(tickIndex, tickSpacing, update)
}

func (s *SwapTickSequence) GetTickOffset(arrayIndex int, tickIndex int32, tickSpacing uint16) (int, error) {
	ta := s.Array(arrayIndex)
	if ta == nil {
		return 0, errcode.TickArrayIndexOutofBounds
	}
	return ta.TickOffset(tickIndex, tickSpacing)
}

// GetNextInitializedTickIndex walks the arrays from startArrayIndex until an
// initialized tick is found. When the arrays run out it returns the
// boundary of the last one searched, or the global tick bound for the
// edge arrays.
func (s *SwapTickSequence) GetNextInitializedTickIndex(tickIndex int32, tickSpacing uint16, aToB bool, startArrayIndex int) (int, int32, error) {
	ticksInArray := int32(cons.TickArraySize) * int32(tickSpacing)
	searchIndex := tickIndex
	arrayIndex := startArrayIndex

	for {
		if arrayIndex < 0 || arrayIndex >= len(s.arrays) {
			return 0, 0, errcode.TickArraySequenceInvalidIndex
		}
		ta := s.arrays[arrayIndex]
		next, ok, err := ta.GetNextInitTickIndex(searchIndex, tickSpacing, aToB)
		if err != nil {
			return 0, 0, err
		}
		if ok {
			return arrayIndex, next, nil
		}

		if aToB && ta.IsMinTickArray() {
			return arrayIndex, tickmath.MinTickIndex, nil
		} else if !aToB && ta.IsMaxTickArray(tickSpacing) {
			return arrayIndex, tickmath.MaxTickIndex, nil
		}

		if arrayIndex+1 == len(s.arrays) {
			if aToB {
				return arrayIndex, ta.StartTickIndex, nil
			}
			return arrayIndex, ta.StartTickIndex + ticksInArray - 1, nil
		}

		// first search position of the next array
		if aToB {
			searchIndex = ta.StartTickIndex - 1
		} else {
			searchIndex = ta.StartTickIndex + ticksInArray - 1
		}
		arrayIndex++
	}
}

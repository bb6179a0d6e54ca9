package tick

import (
	"fmt"
	"testing"

	"github.com/ftchann/yevefi-simulator/lib/errcode"
	"github.com/ftchann/yevefi-simulator/lib/tickmath"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
	"lukechampine.com/uint128"
)

const spacing uint16 = 64

func initialized(ta *TickArray, tickIndex int32) {
	t, err := ta.GetTick(tickIndex, spacing)
	if err != nil {
		panic(err)
	}
	t.Initialized = true
	t.LiquidityGross = uint128.From64(1)
}

func newArray(t *testing.T, start int32) *TickArray {
	ta, err := NewTickArray(common.Hash{1}, start, spacing)
	require.NoError(t, err)
	return ta
}

func TestCheckIsValidStartTick(t *testing.T) {
	tests := []struct {
		tick int32
		want bool
	}{
		{0, true},
		{5632, true},
		{-439296, true},
		{-444928, true}, // left edge array, starts below the min tick
		{-450560, false},
		{100, false},
		{-5631, false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.tick), func(t *testing.T) {
			require.Equal(t, tt.want, CheckIsValidStartTick(tt.tick, spacing))
		})
	}
	_, err := NewTickArray(common.Hash{}, 100, spacing)
	require.ErrorIs(t, err, errcode.InvalidStartTick)
}

func TestUsableTicks(t *testing.T) {
	require.True(t, CheckIsUsableTick(-128, spacing))
	require.False(t, CheckIsUsableTick(-100, spacing))
	require.False(t, CheckIsUsableTick(tickmath.MaxTickIndex+1, 1))
	lower, upper := FullRangeIndexes(spacing)
	require.Equal(t, int32(-443584), lower)
	require.Equal(t, int32(443584), upper)
}

func TestGetNextInitTickIndex(t *testing.T) {
	ta := newArray(t, 0)
	initialized(ta, 640)
	initialized(ta, 1280)

	tests := []struct {
		name  string
		from  int32
		aToB  bool
		want  int32
		found bool
	}{
		{"a to b finds lower tick", 1300, true, 1280, true},
		{"a to b is inclusive", 1280, true, 1280, true},
		{"b to a is exclusive", 640, false, 1280, true},
		{"b to a from shifted range", -64, false, 640, true},
		{"b to a past last", 1280, false, 0, false},
		{"a to b below first", 600, true, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := ta.GetNextInitTickIndex(tt.from, spacing, tt.aToB)
			require.NoError(t, err)
			require.Equal(t, tt.found, ok)
			if ok {
				require.Equal(t, tt.want, got)
			}
		})
	}

	_, _, err := ta.GetNextInitTickIndex(-1, spacing, true)
	require.ErrorIs(t, err, errcode.InvalidTickArraySequence)
}

func TestGetAndUpdateTick(t *testing.T) {
	ta := newArray(t, -5632)
	_, err := ta.GetTick(-5631, spacing)
	require.ErrorIs(t, err, errcode.TickNotFound)
	_, err = ta.GetTick(0, spacing)
	require.ErrorIs(t, err, errcode.TickNotFound)

	update := TickUpdate{Initialized: true, LiquidityGross: uint128.From64(5), FeeGrowthOutsideA: uint128.From64(9)}
	require.NoError(t, ta.UpdateTick(-64, spacing, update))
	got, err := ta.GetTick(-64, spacing)
	require.NoError(t, err)
	require.Equal(t, update, NewTickUpdate(*got))
	require.True(t, ta.Ticks[87].Initialized)
}

func TestSwapTickSequenceCrossesArrays(t *testing.T) {
	ta0 := newArray(t, 0)
	ta1 := newArray(t, -5632)
	ta2 := newArray(t, -11264)
	initialized(ta1, -5312)
	seq := NewSwapTickSequence(ta0, ta1, ta2)
	require.Equal(t, 3, seq.Len())

	arrayIndex, next, err := seq.GetNextInitializedTickIndex(100, spacing, true, 0)
	require.NoError(t, err)
	require.Equal(t, 1, arrayIndex)
	require.Equal(t, int32(-5312), next)
}

func TestSwapTickSequenceBoundaries(t *testing.T) {
	seq := NewSwapTickSequence(newArray(t, 0), nil, nil)
	require.Equal(t, 1, seq.Len())

	arrayIndex, next, err := seq.GetNextInitializedTickIndex(100, spacing, true, 0)
	require.NoError(t, err)
	require.Equal(t, 0, arrayIndex)
	require.Equal(t, int32(0), next)

	_, next, err = seq.GetNextInitializedTickIndex(100, spacing, false, 0)
	require.NoError(t, err)
	require.Equal(t, int32(5631), next)

	_, _, err = seq.GetNextInitializedTickIndex(100, spacing, true, 1)
	require.ErrorIs(t, err, errcode.TickArraySequenceInvalidIndex)

	minSeq := NewSwapTickSequence(newArray(t, -444928))
	_, next, err = minSeq.GetNextInitializedTickIndex(-443600, spacing, true, 0)
	require.NoError(t, err)
	require.Equal(t, tickmath.MinTickIndex, next)

	maxSeq := NewSwapTickSequence(newArray(t, 439296))
	_, next, err = maxSeq.GetNextInitializedTickIndex(440000, spacing, false, 0)
	require.NoError(t, err)
	require.Equal(t, tickmath.MaxTickIndex, next)
}

func TestSwapTickArrayStarts(t *testing.T) {
	require.Equal(t, []int32{0, -5632, -11264}, SwapTickArrayStarts(100, spacing, true))
	require.Equal(t, []int32{0, 5632, 11264}, SwapTickArrayStarts(100, spacing, false))
	// b to a from the last tick of an array starts in the next one
	require.Equal(t, []int32{5632, 11264, 16896}, SwapTickArrayStarts(5600, spacing, false))
	require.Equal(t, []int32{439296}, SwapTickArrayStarts(440000, spacing, false))
	require.Equal(t, []int32{-444928}, SwapTickArrayStarts(tickmath.MinTickIndex, spacing, true))

	start, ok := StartTickIndex(-1, spacing, 0)
	require.True(t, ok)
	require.Equal(t, int32(-5632), start)
}

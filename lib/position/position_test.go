package position

import (
	"testing"

	"github.com/ftchann/yevefi-simulator/lib/errcode"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
	"lukechampine.com/uint128"
)

func TestOpenPosition(t *testing.T) {
	tests := []struct {
		name         string
		lower, upper int32
		err          error
	}{
		{"valid", -128, 128, nil},
		{"unaligned lower", -100, 128, errcode.InvalidTickIndex},
		{"unaligned upper", -128, 100, errcode.InvalidTickIndex},
		{"lower equals upper", 128, 128, errcode.InvalidTickIndex},
		{"lower above upper", 256, 128, errcode.InvalidTickIndex},
		{"out of bounds", -443648, 128, errcode.InvalidTickIndex},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p Position
			err := p.OpenPosition(common.Hash{7}, 64, common.Address{9}, tt.lower, tt.upper)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, common.Hash{7}, p.Pool)
			require.Equal(t, tt.lower, p.TickLowerIndex)
			require.Equal(t, tt.upper, p.TickUpperIndex)
			require.True(t, p.IsPositionEmpty())
		})
	}
}

func TestIsPositionEmpty(t *testing.T) {
	var p Position
	require.True(t, p.IsPositionEmpty())

	p.UpdateRewardOwed(2, 1)
	require.False(t, p.IsPositionEmpty())
	p.UpdateRewardOwed(2, 0)

	p.FeeOwedB = 5
	require.False(t, p.IsPositionEmpty())
	p.ResetFeesOwed()
	require.True(t, p.IsPositionEmpty())

	p.Update(PositionUpdate{Liquidity: uint128.From64(1)})
	require.False(t, p.IsPositionEmpty())
}

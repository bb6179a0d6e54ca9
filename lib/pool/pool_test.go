package pool

import (
	"testing"

	cons "github.com/ftchann/yevefi-simulator/lib/constants"
	"github.com/ftchann/yevefi-simulator/lib/errcode"
	"github.com/ftchann/yevefi-simulator/lib/tickmath"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
	"lukechampine.com/uint128"
)

var (
	mintA = common.HexToAddress("0x01")
	mintB = common.HexToAddress("0x02")
	super = common.HexToAddress("0xaa")
)

func newPool(t *testing.T) *Pool {
	var p Pool
	cfg := Config{Key: common.Hash{1}, RewardEmissionsSuperAuthority: super, DefaultProtocolFeeRate: 300}
	err := p.Initialize(common.Hash{2}, cfg, 64, tickmath.SqrtPriceFromTickIndex(100), 3000, mintA, common.HexToAddress("0x11"), mintB, common.HexToAddress("0x12"))
	require.NoError(t, err)
	return &p
}

func TestInitialize(t *testing.T) {
	p := newPool(t)
	require.Equal(t, int32(100), p.TickCurrentIndex)
	require.Equal(t, uint16(3000), p.FeeRate)
	require.Equal(t, uint16(300), p.ProtocolFeeRate)
	for _, r := range p.RewardInfos {
		require.Equal(t, super, r.Authority)
		require.False(t, r.Initialized())
	}
}

func TestInitializeErrors(t *testing.T) {
	cfg := Config{DefaultProtocolFeeRate: 300}
	price := tickmath.SqrtPriceFromTickIndex(0)
	tests := []struct {
		name         string
		a, b         common.Address
		spacing      uint16
		price        uint128.Uint128
		fee          uint16
		protocolRate uint16
		err          error
	}{
		{"mints reversed", mintB, mintA, 64, price, 3000, 300, errcode.InvalidTokenMintOrder},
		{"mints equal", mintA, mintA, 64, price, 3000, 300, errcode.InvalidTokenMintOrder},
		{"price below min", mintA, mintB, 64, tickmath.MinSqrtPriceX64.Sub64(1), 3000, 300, errcode.SqrtPriceOutOfBounds},
		{"price above max", mintA, mintB, 64, tickmath.MaxSqrtPriceX64.Add64(1), 3000, 300, errcode.SqrtPriceOutOfBounds},
		{"zero spacing", mintA, mintB, 0, price, 3000, 300, errcode.InvalidTickSpacing},
		{"fee too high", mintA, mintB, 64, price, cons.MaxFeeRate + 1, 300, errcode.FeeRateMaxExceeded},
		{"protocol fee too high", mintA, mintB, 64, price, 3000, cons.MaxProtocolFeeRate + 1, errcode.ProtocolFeeRateMaxExceeded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p Pool
			cfg.DefaultProtocolFeeRate = tt.protocolRate
			err := p.Initialize(common.Hash{}, cfg, tt.spacing, tt.price, tt.fee, tt.a, common.Address{}, tt.b, common.Address{})
			require.ErrorIs(t, err, tt.err)
		})
	}
}

func TestInitializeReward(t *testing.T) {
	p := newPool(t)
	require.ErrorIs(t, p.InitializeReward(1, common.HexToAddress("0x21"), common.Address{}), errcode.InvalidRewardIndex)
	require.ErrorIs(t, p.InitializeReward(cons.NumRewards, common.HexToAddress("0x21"), common.Address{}), errcode.InvalidRewardIndex)
	require.NoError(t, p.InitializeReward(0, common.HexToAddress("0x21"), common.HexToAddress("0x31")))
	require.True(t, p.RewardInfos[0].Initialized())
	require.ErrorIs(t, p.InitializeReward(0, common.HexToAddress("0x22"), common.Address{}), errcode.InvalidRewardIndex)
	require.NoError(t, p.InitializeReward(1, common.HexToAddress("0x22"), common.Address{}))
	require.NoError(t, p.InitializeReward(2, common.HexToAddress("0x23"), common.Address{}))
	require.ErrorIs(t, p.InitializeReward(2, common.HexToAddress("0x24"), common.Address{}), errcode.InvalidRewardIndex)
}

func TestUpdateEmissions(t *testing.T) {
	p := newPool(t)
	infos := p.RewardInfos
	infos[0].GrowthGlobalX64 = uint128.From64(55)
	require.ErrorIs(t, p.UpdateEmissions(3, infos, 10, uint128.From64(1)), errcode.InvalidRewardIndex)
	require.NoError(t, p.UpdateEmissions(0, infos, 10, uint128.From64(7)))
	require.Equal(t, uint64(10), p.RewardLastUpdatedTimestamp)
	require.Equal(t, uint128.From64(55), p.RewardInfos[0].GrowthGlobalX64)
	require.Equal(t, uint128.From64(7), p.RewardInfos[0].EmissionsPerSecondX64)
}

func TestUpdateAfterSwap(t *testing.T) {
	p := newPool(t)
	p.UpdateAfterSwap(uint128.From64(10), -5, tickmath.SqrtPriceFromTickIndex(-5), uint128.From64(99), p.RewardInfos, 4, false, 20)
	require.Equal(t, uint128.From64(99), p.FeeGrowthGlobalB)
	require.True(t, p.FeeGrowthGlobalA.IsZero())
	require.Equal(t, uint64(4), p.ProtocolFeeOwedB)
	require.Equal(t, int32(-5), p.TickCurrentIndex)

	p.UpdateAfterSwap(uint128.From64(10), -5, p.SqrtPrice, uint128.From64(3), p.RewardInfos, 6, true, 21)
	require.Equal(t, uint64(6), p.ProtocolFeeOwedA)
	p.ResetProtocolFeesOwed()
	require.Zero(t, p.ProtocolFeeOwedA)
	require.Zero(t, p.ProtocolFeeOwedB)
}

func TestCopyIsIndependent(t *testing.T) {
	p := newPool(t)
	cp := *p
	cp.RewardInfos[0].GrowthGlobalX64 = uint128.From64(1)
	cp.Liquidity = uint128.From64(1)
	require.True(t, p.RewardInfos[0].GrowthGlobalX64.IsZero())
	require.True(t, p.Liquidity.IsZero())
}

package store

import (
	"encoding/json"
	"fmt"

	cons "github.com/ftchann/yevefi-simulator/lib/constants"
	lm "github.com/ftchann/yevefi-simulator/lib/liquidity_math"
	"github.com/ftchann/yevefi-simulator/lib/pool"
	"github.com/ftchann/yevefi-simulator/lib/position"
	"github.com/ftchann/yevefi-simulator/lib/tick"

	"github.com/ethereum/go-ethereum/common"
	ui "github.com/holiman/uint256"
	"lukechampine.com/uint128"
)

// u128 and i128 travel as decimal strings so JSON readers keep full precision.
type u128 uint128.Uint128

func (v u128) MarshalText() ([]byte, error) {
	return []byte(uint128.Uint128(v).String()), nil
}

func (v *u128) UnmarshalText(b []byte) error {
	x, err := uint128.FromString(string(b))
	if err != nil {
		return fmt.Errorf("u128 %q: %w", b, err)
	}
	*v = u128(x)
	return nil
}

type i128 ui.Int

func (v i128) MarshalText() ([]byte, error) {
	x := ui.Int(v)
	return []byte(lm.FormatI128(&x)), nil
}

func (v *i128) UnmarshalText(b []byte) error {
	x, err := lm.ParseI128(string(b))
	if err != nil {
		return err
	}
	*v = i128(x)
	return nil
}

type configRecord struct {
	Key                           common.Hash    `json:"key"`
	FeeAuthority                  common.Address `json:"feeAuthority"`
	CollectProtocolFeesAuthority  common.Address `json:"collectProtocolFeesAuthority"`
	RewardEmissionsSuperAuthority common.Address `json:"rewardEmissionsSuperAuthority"`
	DefaultProtocolFeeRate        uint16         `json:"defaultProtocolFeeRate"`
}

type rewardInfoRecord struct {
	Mint                  common.Address `json:"mint"`
	Vault                 common.Address `json:"vault"`
	Authority             common.Address `json:"authority"`
	EmissionsPerSecondX64 u128           `json:"emissionsPerSecondX64"`
	GrowthGlobalX64       u128           `json:"growthGlobalX64"`
}

type poolRecord struct {
	Key                        common.Hash                       `json:"key"`
	Config                     common.Hash                       `json:"config"`
	TickSpacing                uint16                            `json:"tickSpacing"`
	FeeRate                    uint16                            `json:"feeRate"`
	ProtocolFeeRate            uint16                            `json:"protocolFeeRate"`
	Liquidity                  u128                              `json:"liquidity"`
	SqrtPrice                  u128                              `json:"sqrtPrice"`
	TickCurrentIndex           int32                             `json:"tickCurrentIndex"`
	ProtocolFeeOwedA           uint64                            `json:"protocolFeeOwedA"`
	ProtocolFeeOwedB           uint64                            `json:"protocolFeeOwedB"`
	TokenMintA                 common.Address                    `json:"tokenMintA"`
	TokenVaultA                common.Address                    `json:"tokenVaultA"`
	FeeGrowthGlobalA           u128                              `json:"feeGrowthGlobalA"`
	TokenMintB                 common.Address                    `json:"tokenMintB"`
	TokenVaultB                common.Address                    `json:"tokenVaultB"`
	FeeGrowthGlobalB           u128                              `json:"feeGrowthGlobalB"`
	RewardLastUpdatedTimestamp uint64                            `json:"rewardLastUpdatedTimestamp"`
	RewardInfos                [cons.NumRewards]rewardInfoRecord `json:"rewardInfos"`
}

type tickRecord struct {
	Offset               int                   `json:"offset"`
	Initialized          bool                  `json:"initialized"`
	LiquidityNet         i128                  `json:"liquidityNet"`
	LiquidityGross       u128                  `json:"liquidityGross"`
	FeeGrowthOutsideA    u128                  `json:"feeGrowthOutsideA"`
	FeeGrowthOutsideB    u128                  `json:"feeGrowthOutsideB"`
	RewardGrowthsOutside [cons.NumRewards]u128 `json:"rewardGrowthsOutside"`
}

// Only ticks that differ from the zero tick are stored.
type tickArrayRecord struct {
	Pool           common.Hash  `json:"pool"`
	StartTickIndex int32        `json:"startTickIndex"`
	Ticks          []tickRecord `json:"ticks"`
}

type positionRewardRecord struct {
	GrowthInsideCheckpoint u128   `json:"growthInsideCheckpoint"`
	AmountOwed             uint64 `json:"amountOwed"`
}

type positionRecord struct {
	Pool                 common.Hash                           `json:"pool"`
	PositionMint         common.Address                        `json:"positionMint"`
	Liquidity            u128                                  `json:"liquidity"`
	TickLowerIndex       int32                                 `json:"tickLowerIndex"`
	TickUpperIndex       int32                                 `json:"tickUpperIndex"`
	FeeGrowthCheckpointA u128                                  `json:"feeGrowthCheckpointA"`
	FeeOwedA             uint64                                `json:"feeOwedA"`
	FeeGrowthCheckpointB u128                                  `json:"feeGrowthCheckpointB"`
	FeeOwedB             uint64                                `json:"feeOwedB"`
	RewardInfos          [cons.NumRewards]positionRewardRecord `json:"rewardInfos"`
}

func toU128s(vs [cons.NumRewards]uint128.Uint128) [cons.NumRewards]u128 {
	var out [cons.NumRewards]u128
	for i, v := range vs {
		out[i] = u128(v)
	}
	return out
}

func fromU128s(vs [cons.NumRewards]u128) [cons.NumRewards]uint128.Uint128 {
	var out [cons.NumRewards]uint128.Uint128
	for i, v := range vs {
		out[i] = uint128.Uint128(v)
	}
	return out
}

func newPoolRecord(p pool.Pool) poolRecord {
	r := poolRecord{
		Key:                        p.Key,
		Config:                     p.Config,
		TickSpacing:                p.TickSpacing,
		FeeRate:                    p.FeeRate,
		ProtocolFeeRate:            p.ProtocolFeeRate,
		Liquidity:                  u128(p.Liquidity),
		SqrtPrice:                  u128(p.SqrtPrice),
		TickCurrentIndex:           p.TickCurrentIndex,
		ProtocolFeeOwedA:           p.ProtocolFeeOwedA,
		ProtocolFeeOwedB:           p.ProtocolFeeOwedB,
		TokenMintA:                 p.TokenMintA,
		TokenVaultA:                p.TokenVaultA,
		FeeGrowthGlobalA:           u128(p.FeeGrowthGlobalA),
		TokenMintB:                 p.TokenMintB,
		TokenVaultB:                p.TokenVaultB,
		FeeGrowthGlobalB:           u128(p.FeeGrowthGlobalB),
		RewardLastUpdatedTimestamp: p.RewardLastUpdatedTimestamp,
	}
	for i, ri := range p.RewardInfos {
		r.RewardInfos[i] = rewardInfoRecord{
			Mint:                  ri.Mint,
			Vault:                 ri.Vault,
			Authority:             ri.Authority,
			EmissionsPerSecondX64: u128(ri.EmissionsPerSecondX64),
			GrowthGlobalX64:       u128(ri.GrowthGlobalX64),
		}
	}
	return r
}

func (r poolRecord) pool() pool.Pool {
	p := pool.Pool{
		Key:                        r.Key,
		Config:                     r.Config,
		TickSpacing:                r.TickSpacing,
		FeeRate:                    r.FeeRate,
		ProtocolFeeRate:            r.ProtocolFeeRate,
		Liquidity:                  uint128.Uint128(r.Liquidity),
		SqrtPrice:                  uint128.Uint128(r.SqrtPrice),
		TickCurrentIndex:           r.TickCurrentIndex,
		ProtocolFeeOwedA:           r.ProtocolFeeOwedA,
		ProtocolFeeOwedB:           r.ProtocolFeeOwedB,
		TokenMintA:                 r.TokenMintA,
		TokenVaultA:                r.TokenVaultA,
		FeeGrowthGlobalA:           uint128.Uint128(r.FeeGrowthGlobalA),
		TokenMintB:                 r.TokenMintB,
		TokenVaultB:                r.TokenVaultB,
		FeeGrowthGlobalB:           uint128.Uint128(r.FeeGrowthGlobalB),
		RewardLastUpdatedTimestamp: r.RewardLastUpdatedTimestamp,
	}
	for i, ri := range r.RewardInfos {
		p.RewardInfos[i] = pool.RewardInfo{
			Mint:                  ri.Mint,
			Vault:                 ri.Vault,
			Authority:             ri.Authority,
			EmissionsPerSecondX64: uint128.Uint128(ri.EmissionsPerSecondX64),
			GrowthGlobalX64:       uint128.Uint128(ri.GrowthGlobalX64),
		}
	}
	return p
}

func newTickArrayRecord(ta tick.TickArray) tickArrayRecord {
	r := tickArrayRecord{Pool: ta.Pool, StartTickIndex: ta.StartTickIndex, Ticks: []tickRecord{}}
	for offset, t := range ta.Ticks {
		if t == (tick.Tick{}) {
			continue
		}
		r.Ticks = append(r.Ticks, tickRecord{
			Offset:               offset,
			Initialized:          t.Initialized,
			LiquidityNet:         i128(t.LiquidityNet),
			LiquidityGross:       u128(t.LiquidityGross),
			FeeGrowthOutsideA:    u128(t.FeeGrowthOutsideA),
			FeeGrowthOutsideB:    u128(t.FeeGrowthOutsideB),
			RewardGrowthsOutside: toU128s(t.RewardGrowthsOutside),
		})
	}
	return r
}

func (r tickArrayRecord) tickArray() (tick.TickArray, error) {
	ta := tick.TickArray{Pool: r.Pool, StartTickIndex: r.StartTickIndex}
	for _, t := range r.Ticks {
		if t.Offset < 0 || t.Offset >= cons.TickArraySize {
			return tick.TickArray{}, fmt.Errorf("tick array %d: tick offset %d out of range", r.StartTickIndex, t.Offset)
		}
		ta.Ticks[t.Offset] = tick.Tick{
			Initialized:          t.Initialized,
			LiquidityNet:         ui.Int(t.LiquidityNet),
			LiquidityGross:       uint128.Uint128(t.LiquidityGross),
			FeeGrowthOutsideA:    uint128.Uint128(t.FeeGrowthOutsideA),
			FeeGrowthOutsideB:    uint128.Uint128(t.FeeGrowthOutsideB),
			RewardGrowthsOutside: fromU128s(t.RewardGrowthsOutside),
		}
	}
	return ta, nil
}

func newPositionRecord(p position.Position) positionRecord {
	r := positionRecord{
		Pool:                 p.Pool,
		PositionMint:         p.PositionMint,
		Liquidity:            u128(p.Liquidity),
		TickLowerIndex:       p.TickLowerIndex,
		TickUpperIndex:       p.TickUpperIndex,
		FeeGrowthCheckpointA: u128(p.FeeGrowthCheckpointA),
		FeeOwedA:             p.FeeOwedA,
		FeeGrowthCheckpointB: u128(p.FeeGrowthCheckpointB),
		FeeOwedB:             p.FeeOwedB,
	}
	for i, ri := range p.RewardInfos {
		r.RewardInfos[i] = positionRewardRecord{
			GrowthInsideCheckpoint: u128(ri.GrowthInsideCheckpoint),
			AmountOwed:             ri.AmountOwed,
		}
	}
	return r
}

func (r positionRecord) position() position.Position {
	p := position.Position{
		Pool:                 r.Pool,
		PositionMint:         r.PositionMint,
		Liquidity:            uint128.Uint128(r.Liquidity),
		TickLowerIndex:       r.TickLowerIndex,
		TickUpperIndex:       r.TickUpperIndex,
		FeeGrowthCheckpointA: uint128.Uint128(r.FeeGrowthCheckpointA),
		FeeOwedA:             r.FeeOwedA,
		FeeGrowthCheckpointB: uint128.Uint128(r.FeeGrowthCheckpointB),
		FeeOwedB:             r.FeeOwedB,
	}
	for i, ri := range r.RewardInfos {
		p.RewardInfos[i] = position.PositionRewardInfo{
			GrowthInsideCheckpoint: uint128.Uint128(ri.GrowthInsideCheckpoint),
			AmountOwed:             ri.AmountOwed,
		}
	}
	return p
}

// Encode renders a record value held by a Write as JSON.
func Encode(v any) ([]byte, error) {
	switch x := v.(type) {
	case pool.Config:
		return json.Marshal(configRecord(x))
	case pool.Pool:
		return json.Marshal(newPoolRecord(x))
	case tick.TickArray:
		return json.Marshal(newTickArrayRecord(x))
	case position.Position:
		return json.Marshal(newPositionRecord(x))
	}
	return nil, fmt.Errorf("encode: unsupported record %T", v)
}

func DecodeConfig(data []byte) (pool.Config, error) {
	var r configRecord
	if err := json.Unmarshal(data, &r); err != nil {
		return pool.Config{}, fmt.Errorf("decode config: %w", err)
	}
	return pool.Config(r), nil
}

func DecodePool(data []byte) (pool.Pool, error) {
	var r poolRecord
	if err := json.Unmarshal(data, &r); err != nil {
		return pool.Pool{}, fmt.Errorf("decode pool: %w", err)
	}
	return r.pool(), nil
}

func DecodeTickArray(data []byte) (tick.TickArray, error) {
	var r tickArrayRecord
	if err := json.Unmarshal(data, &r); err != nil {
		return tick.TickArray{}, fmt.Errorf("decode tick array: %w", err)
	}
	return r.tickArray()
}

func DecodePosition(data []byte) (position.Position, error) {
	var r positionRecord
	if err := json.Unmarshal(data, &r); err != nil {
		return position.Position{}, fmt.Errorf("decode position: %w", err)
	}
	return r.position(), nil
}

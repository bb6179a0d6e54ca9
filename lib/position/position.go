package position

import (
	cons "github.com/ftchann/yevefi-simulator/lib/constants"
	"github.com/ftchann/yevefi-simulator/lib/errcode"
	"github.com/ftchann/yevefi-simulator/lib/tick"

	"github.com/ethereum/go-ethereum/common"
	"lukechampine.com/uint128"
)

type PositionRewardInfo struct {
	// Q64.64
	GrowthInsideCheckpoint uint128.Uint128
	AmountOwed             uint64
}

// Position is one liquidity range owned by the holder of PositionMint.
type Position struct {
	Pool           common.Hash
	PositionMint   common.Address
	Liquidity      uint128.Uint128
	TickLowerIndex int32
	TickUpperIndex int32

	// Q64.64
	FeeGrowthCheckpointA uint128.Uint128
	FeeOwedA             uint64
	// Q64.64
	FeeGrowthCheckpointB uint128.Uint128
	FeeOwedB             uint64

	RewardInfos [cons.NumRewards]PositionRewardInfo
}

type PositionUpdate struct {
	Liquidity            uint128.Uint128
	FeeGrowthCheckpointA uint128.Uint128
	FeeOwedA             uint64
	FeeGrowthCheckpointB uint128.Uint128
	FeeOwedB             uint64
	RewardInfos          [cons.NumRewards]PositionRewardInfo
}

// OpenPosition binds an empty position to a pool range. Both bounds must be
// usable ticks for tickSpacing and lower must be strictly below upper.
func (p *Position) OpenPosition(pool common.Hash, tickSpacing uint16, positionMint common.Address, tickLowerIndex, tickUpperIndex int32) error {
	if !tick.CheckIsUsableTick(tickLowerIndex, tickSpacing) ||
		!tick.CheckIsUsableTick(tickUpperIndex, tickSpacing) ||
		tickLowerIndex >= tickUpperIndex {
		return errcode.InvalidTickIndex
	}
	p.Pool = pool
	p.PositionMint = positionMint
	p.TickLowerIndex = tickLowerIndex
	p.TickUpperIndex = tickUpperIndex
	return nil
}

func (p *Position) IsPositionEmpty() bool {
	rewardsNotOwed := true
	for _, r := range p.RewardInfos {
		rewardsNotOwed = rewardsNotOwed && r.AmountOwed == 0
	}
	return p.Liquidity.IsZero() && p.FeeOwedA == 0 && p.FeeOwedB == 0 && rewardsNotOwed
}

func (p *Position) Update(update PositionUpdate) {
	p.Liquidity = update.Liquidity
	p.FeeGrowthCheckpointA = update.FeeGrowthCheckpointA
	p.FeeGrowthCheckpointB = update.FeeGrowthCheckpointB
	p.FeeOwedA = update.FeeOwedA
	p.FeeOwedB = update.FeeOwedB
	p.RewardInfos = update.RewardInfos
}

func (p *Position) ResetFeesOwed() {
	p.FeeOwedA = 0
	p.FeeOwedB = 0
}

func (p *Position) UpdateRewardOwed(index int, amountOwed uint64) {
	p.RewardInfos[index].AmountOwed = amountOwed
}

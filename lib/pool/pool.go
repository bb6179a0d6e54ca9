package pool

import (
	"bytes"

	cons "github.com/ftchann/yevefi-simulator/lib/constants"
	"github.com/ftchann/yevefi-simulator/lib/errcode"
	"github.com/ftchann/yevefi-simulator/lib/tickmath"

	"github.com/ethereum/go-ethereum/common"
	"lukechampine.com/uint128"
)

// Config is the administrative record a pool is created under.
type Config struct {
	Key                           common.Hash
	FeeAuthority                  common.Address
	CollectProtocolFeesAuthority  common.Address
	RewardEmissionsSuperAuthority common.Address
	DefaultProtocolFeeRate        uint16
}

type RewardInfo struct {
	// Reward token mint. The zero address marks an unused slot.
	Mint      common.Address
	Vault     common.Address
	Authority common.Address
	// Q64.64 tokens emitted per second
	EmissionsPerSecondX64 uint128.Uint128
	// Q64.64 reward per unit of liquidity, wraps
	GrowthGlobalX64 uint128.Uint128
}

func NewRewardInfo(authority common.Address) RewardInfo {
	return RewardInfo{Authority: authority}
}

func (r RewardInfo) Initialized() bool {
	return r.Mint != (common.Address{})
}

func ToRewardGrowths(rewardInfos [cons.NumRewards]RewardInfo) [cons.NumRewards]uint128.Uint128 {
	var growths [cons.NumRewards]uint128.Uint128
	for i, r := range rewardInfos {
		growths[i] = r.GrowthGlobalX64
	}
	return growths
}

// Pool holds the global state of one token pair at one tick spacing. All
// fields are values, so assigning a Pool copies it completely.
type Pool struct {
	Key             common.Hash
	Config          common.Hash
	TickSpacing     uint16
	FeeRate         uint16
	ProtocolFeeRate uint16

	Liquidity        uint128.Uint128
	SqrtPrice        uint128.Uint128
	TickCurrentIndex int32

	ProtocolFeeOwedA uint64
	ProtocolFeeOwedB uint64

	TokenMintA       common.Address
	TokenVaultA      common.Address
	FeeGrowthGlobalA uint128.Uint128

	TokenMintB       common.Address
	TokenVaultB      common.Address
	FeeGrowthGlobalB uint128.Uint128

	RewardLastUpdatedTimestamp uint64
	RewardInfos                [cons.NumRewards]RewardInfo
}

func (p *Pool) Initialize(key common.Hash, config Config, tickSpacing uint16, sqrtPrice uint128.Uint128, defaultFeeRate uint16,
	tokenMintA, tokenVaultA, tokenMintB, tokenVaultB common.Address) error {
	if bytes.Compare(tokenMintA.Bytes(), tokenMintB.Bytes()) >= 0 {
		return errcode.InvalidTokenMintOrder
	}
	if tickSpacing == 0 {
		return errcode.InvalidTickSpacing
	}
	if err := tickmath.CheckSqrtPrice(sqrtPrice); err != nil {
		return err
	}
	p.Key = key
	p.Config = config.Key
	p.TickSpacing = tickSpacing
	if err := p.UpdateFeeRate(defaultFeeRate); err != nil {
		return err
	}
	if err := p.UpdateProtocolFeeRate(config.DefaultProtocolFeeRate); err != nil {
		return err
	}

	p.Liquidity = uint128.Zero
	p.SqrtPrice = sqrtPrice
	p.TickCurrentIndex = tickmath.TickIndexFromSqrtPrice(sqrtPrice)

	p.ProtocolFeeOwedA = 0
	p.ProtocolFeeOwedB = 0

	p.TokenMintA = tokenMintA
	p.TokenVaultA = tokenVaultA
	p.FeeGrowthGlobalA = uint128.Zero

	p.TokenMintB = tokenMintB
	p.TokenVaultB = tokenVaultB
	p.FeeGrowthGlobalB = uint128.Zero

	for i := range p.RewardInfos {
		p.RewardInfos[i] = NewRewardInfo(config.RewardEmissionsSuperAuthority)
	}
	return nil
}

func (p *Pool) UpdateRewards(rewardInfos [cons.NumRewards]RewardInfo, rewardLastUpdatedTimestamp uint64) {
	p.RewardLastUpdatedTimestamp = rewardLastUpdatedTimestamp
	p.RewardInfos = rewardInfos
}

func (p *Pool) UpdateRewardsAndLiquidity(rewardInfos [cons.NumRewards]RewardInfo, liquidity uint128.Uint128, rewardLastUpdatedTimestamp uint64) {
	p.UpdateRewards(rewardInfos, rewardLastUpdatedTimestamp)
	p.Liquidity = liquidity
}

// UpdateEmissions rolls rewards forward to timestamp before changing the rate
// of one slot, so growth already earned accrues at the old rate.
func (p *Pool) UpdateEmissions(index int, rewardInfos [cons.NumRewards]RewardInfo, timestamp uint64, emissionsPerSecondX64 uint128.Uint128) error {
	if index < 0 || index >= cons.NumRewards {
		return errcode.InvalidRewardIndex
	}
	p.UpdateRewards(rewardInfos, timestamp)
	p.RewardInfos[index].EmissionsPerSecondX64 = emissionsPerSecondX64
	return nil
}

// InitializeReward fills the lowest unused reward slot. index must name it.
func (p *Pool) InitializeReward(index int, mint, vault common.Address) error {
	if index < 0 || index >= cons.NumRewards {
		return errcode.InvalidRewardIndex
	}
	lowest := -1
	for i, r := range p.RewardInfos {
		if !r.Initialized() {
			lowest = i
			break
		}
	}
	if lowest != index {
		return errcode.InvalidRewardIndex
	}
	p.RewardInfos[index].Mint = mint
	p.RewardInfos[index].Vault = vault
	return nil
}

func (p *Pool) UpdateAfterSwap(liquidity uint128.Uint128, tickIndex int32, sqrtPrice, feeGrowthGlobal uint128.Uint128,
	rewardInfos [cons.NumRewards]RewardInfo, protocolFee uint64, isTokenFeeInA bool, rewardLastUpdatedTimestamp uint64) {
	p.TickCurrentIndex = tickIndex
	p.SqrtPrice = sqrtPrice
	p.Liquidity = liquidity
	p.RewardInfos = rewardInfos
	p.RewardLastUpdatedTimestamp = rewardLastUpdatedTimestamp
	if isTokenFeeInA {
		p.FeeGrowthGlobalA = feeGrowthGlobal
		p.ProtocolFeeOwedA += protocolFee
	} else {
		p.FeeGrowthGlobalB = feeGrowthGlobal
		p.ProtocolFeeOwedB += protocolFee
	}
}

func (p *Pool) UpdateFeeRate(feeRate uint16) error {
	if feeRate > cons.MaxFeeRate {
		return errcode.FeeRateMaxExceeded
	}
	p.FeeRate = feeRate
	return nil
}

func (p *Pool) UpdateProtocolFeeRate(protocolFeeRate uint16) error {
	if protocolFeeRate > cons.MaxProtocolFeeRate {
		return errcode.ProtocolFeeRateMaxExceeded
	}
	p.ProtocolFeeRate = protocolFeeRate
	return nil
}

func (p *Pool) ResetProtocolFeesOwed() {
	p.ProtocolFeeOwedA = 0
	p.ProtocolFeeOwedB = 0
}

package instruction

import (
	"context"

	cons "github.com/ftchann/yevefi-simulator/lib/constants"
	"github.com/ftchann/yevefi-simulator/lib/errcode"
	fm "github.com/ftchann/yevefi-simulator/lib/fullmath"
	"github.com/ftchann/yevefi-simulator/lib/manager"
	"github.com/ftchann/yevefi-simulator/lib/pda"
	"github.com/ftchann/yevefi-simulator/lib/store"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"lukechampine.com/uint128"
)

// InitializeReward opens the reward vault of slot index for mint.
func (p *Processor) InitializeReward(ctx context.Context, poolKey common.Hash, index int, mint common.Address) error {
	return p.apply(ctx, "initialize_reward", func(b *store.Batch) error {
		pl, err := p.store.Pool(ctx, poolKey)
		if err != nil {
			return err
		}
		supported, err := p.ledger.IsSupported(pl.Config, mint)
		if err != nil {
			return err
		}
		if !supported {
			return errcode.UnsupportedTokenMint
		}
		vault := pda.RewardVault(poolKey, index)
		if err := pl.InitializeReward(index, mint, vault); err != nil {
			return err
		}
		if err := p.ledger.OpenAccount(vault, mint, poolAuthority(poolKey)); err != nil {
			return err
		}
		b.PutPool(pl)
		return nil
	})
}

// SetRewardEmissions changes the emission rate of one reward slot. The vault
// must already hold a full day of emissions at the new rate.
func (p *Processor) SetRewardEmissions(ctx context.Context, poolKey common.Hash, index int,
	emissionsPerSecondX64 uint128.Uint128, timestamp uint64) error {
	return p.apply(ctx, "set_reward_emissions", func(b *store.Batch) error {
		pl, err := p.store.Pool(ctx, poolKey)
		if err != nil {
			return err
		}
		if index < 0 || index >= cons.NumRewards {
			return errcode.InvalidRewardIndex
		}
		reward := pl.RewardInfos[index]
		if !reward.Initialized() {
			return errcode.RewardNotInitialized
		}

		emissionsPerDay, err := fm.CheckedMulShiftRight(uint128.From64(cons.DayInSeconds), emissionsPerSecondX64)
		if err != nil {
			return err
		}
		if p.ledger.Balance(reward.Vault) < emissionsPerDay {
			return errcode.RewardVaultAmountInsufficient
		}

		nextRewardInfos, err := manager.NextPoolRewardInfos(&pl, timestamp)
		if err != nil {
			return err
		}
		if err := pl.UpdateEmissions(index, nextRewardInfos, timestamp, emissionsPerSecondX64); err != nil {
			return err
		}
		b.PutPool(pl)
		p.log.Debug("reward emissions set",
			zap.Stringer("pool", poolKey),
			zap.Int("index", index),
			zap.Stringer("emissions_per_second_x64", emissionsPerSecondX64),
		)
		return nil
	})
}

// CollectReward pays out what the reward vault can cover of the amount owed
// in slot index. The rest stays owed.
func (p *Processor) CollectReward(ctx context.Context, key common.Hash, owner common.Address, index int) (uint64, error) {
	var paid uint64
	err := p.apply(ctx, "collect_reward", func(b *store.Batch) error {
		pos, err := p.store.Position(ctx, key)
		if err != nil {
			return err
		}
		if err := p.checkPositionAuthority(&pos, owner); err != nil {
			return err
		}
		pl, err := p.store.Pool(ctx, pos.Pool)
		if err != nil {
			return err
		}
		if index < 0 || index >= cons.NumRewards {
			return errcode.InvalidRewardIndex
		}
		reward := pl.RewardInfos[index]
		if !reward.Initialized() {
			return errcode.RewardNotInitialized
		}

		transferAmount, owed := manager.CalculateCollectReward(pos.RewardInfos[index], p.ledger.Balance(reward.Vault))
		pos.UpdateRewardOwed(index, owed)
		if err := p.payOut(reward.Vault, owner, reward.Mint, transferAmount); err != nil {
			return err
		}
		b.PutPosition(key, pos)
		paid = transferAmount
		return nil
	})
	return paid, err
}

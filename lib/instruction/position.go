package instruction

import (
	"context"

	"github.com/ftchann/yevefi-simulator/lib/errcode"
	lm "github.com/ftchann/yevefi-simulator/lib/liquidity_math"
	"github.com/ftchann/yevefi-simulator/lib/manager"
	"github.com/ftchann/yevefi-simulator/lib/pda"
	"github.com/ftchann/yevefi-simulator/lib/position"
	"github.com/ftchann/yevefi-simulator/lib/store"
	"github.com/ftchann/yevefi-simulator/lib/token"

	"github.com/ethereum/go-ethereum/common"
	ui "github.com/holiman/uint256"
	"go.uber.org/zap"
	"lukechampine.com/uint128"
)

var positionMetadata = token.Metadata{Name: "Yevefi Position", Symbol: "YVP"}

type OpenPositionParams struct {
	Pool  common.Hash
	Owner common.Address
	// Name tells apart positions of one owner in one pool.
	Name           string
	TickLowerIndex int32
	TickUpperIndex int32
}

// OpenPosition creates an empty position and issues its ownership token to
// the owner.
func (p *Processor) OpenPosition(ctx context.Context, params OpenPositionParams) (common.Hash, error) {
	mint := pda.PositionMint(params.Pool, params.Owner, params.Name)
	key := pda.Position(mint)
	err := p.apply(ctx, "open_position", func(b *store.Batch) error {
		pl, err := p.store.Pool(ctx, params.Pool)
		if err != nil {
			return err
		}
		found, err := exists(p.store.Position(ctx, key))
		if err != nil {
			return err
		}
		if found {
			return errcode.AlreadyInitialized
		}
		var pos position.Position
		if err := pos.OpenPosition(pl.Key, pl.TickSpacing, mint, params.TickLowerIndex, params.TickUpperIndex); err != nil {
			return err
		}
		metadata := positionMetadata
		if err := p.ledger.MintPositionToken(mint, pda.AssociatedTokenAccount(params.Owner, mint), params.Owner, &metadata); err != nil {
			return err
		}
		b.PutPosition(key, pos)
		p.log.Debug("position opened",
			zap.Stringer("pool", pl.Key),
			zap.Stringer("position", key),
			zap.Int32("tick_lower", params.TickLowerIndex),
			zap.Int32("tick_upper", params.TickUpperIndex),
		)
		return nil
	})
	if err != nil {
		return common.Hash{}, err
	}
	return key, nil
}

// ClosePosition deletes an empty position and burns its ownership token.
func (p *Processor) ClosePosition(ctx context.Context, key common.Hash, owner common.Address) error {
	return p.apply(ctx, "close_position", func(b *store.Batch) error {
		pos, err := p.store.Position(ctx, key)
		if err != nil {
			return err
		}
		if err := p.checkPositionAuthority(&pos, owner); err != nil {
			return err
		}
		if !pos.IsPositionEmpty() {
			return errcode.ClosePositionNotEmpty
		}
		if err := p.ledger.BurnPositionToken(pos.PositionMint, pda.AssociatedTokenAccount(owner, pos.PositionMint)); err != nil {
			return err
		}
		b.DeletePosition(key)
		return nil
	})
}

type ModifyLiquidityParams struct {
	Owner     common.Address
	Liquidity uint128.Uint128
	// token_max for an increase, token_min for a decrease
	TokenThresholdA uint64
	TokenThresholdB uint64
	Timestamp       uint64
}

// LiquidityResult holds the token amounts an owner paid or received,
// transfer fees included.
type LiquidityResult struct {
	AmountA uint64
	AmountB uint64
}

func (p *Processor) IncreaseLiquidity(ctx context.Context, key common.Hash, params ModifyLiquidityParams) (LiquidityResult, error) {
	var res LiquidityResult
	err := p.apply(ctx, "increase_liquidity", func(b *store.Batch) error {
		s, delta, err := p.modifyLiquidity(ctx, key, params, true)
		if err != nil {
			return err
		}
		deltaA, deltaB, err := manager.CalculateLiquidityTokenDeltas(s.pool.TickCurrentIndex, s.pool.SqrtPrice, &s.position, delta)
		if err != nil {
			return err
		}

		feeA, err := p.transferFee(s.pool.TokenMintA)
		if err != nil {
			return err
		}
		feeB, err := p.transferFee(s.pool.TokenMintB)
		if err != nil {
			return err
		}
		includedA, err := feeA.TransferFeeIncludedAmount(deltaA)
		if err != nil {
			return err
		}
		includedB, err := feeB.TransferFeeIncludedAmount(deltaB)
		if err != nil {
			return err
		}
		if includedA > params.TokenThresholdA || includedB > params.TokenThresholdB {
			return errcode.TokenMaxExceeded
		}

		if err := p.payIn(params.Owner, s.pool.TokenVaultA, s.pool.TokenMintA, includedA); err != nil {
			return err
		}
		if err := p.payIn(params.Owner, s.pool.TokenVaultB, s.pool.TokenMintB, includedB); err != nil {
			return err
		}
		s.stage(b)
		res = LiquidityResult{AmountA: includedA, AmountB: includedB}
		p.log.Debug("liquidity increased",
			zap.Stringer("position", key),
			zap.Stringer("liquidity", params.Liquidity),
			zap.Uint64("amount_a", includedA),
			zap.Uint64("amount_b", includedB),
		)
		return nil
	})
	return res, err
}

func (p *Processor) DecreaseLiquidity(ctx context.Context, key common.Hash, params ModifyLiquidityParams) (LiquidityResult, error) {
	var res LiquidityResult
	err := p.apply(ctx, "decrease_liquidity", func(b *store.Batch) error {
		s, delta, err := p.modifyLiquidity(ctx, key, params, false)
		if err != nil {
			return err
		}
		deltaA, deltaB, err := manager.CalculateLiquidityTokenDeltas(s.pool.TickCurrentIndex, s.pool.SqrtPrice, &s.position, delta)
		if err != nil {
			return err
		}

		feeA, err := p.transferFee(s.pool.TokenMintA)
		if err != nil {
			return err
		}
		feeB, err := p.transferFee(s.pool.TokenMintB)
		if err != nil {
			return err
		}
		excludedA, err := feeA.TransferFeeExcludedAmount(deltaA)
		if err != nil {
			return err
		}
		excludedB, err := feeB.TransferFeeExcludedAmount(deltaB)
		if err != nil {
			return err
		}
		if excludedA < params.TokenThresholdA || excludedB < params.TokenThresholdB {
			return errcode.TokenMinSubceeded
		}

		if err := p.payOut(s.pool.TokenVaultA, params.Owner, s.pool.TokenMintA, deltaA); err != nil {
			return err
		}
		if err := p.payOut(s.pool.TokenVaultB, params.Owner, s.pool.TokenMintB, deltaB); err != nil {
			return err
		}
		s.stage(b)
		res = LiquidityResult{AmountA: deltaA, AmountB: deltaB}
		p.log.Debug("liquidity decreased",
			zap.Stringer("position", key),
			zap.Stringer("liquidity", params.Liquidity),
			zap.Uint64("amount_a", deltaA),
			zap.Uint64("amount_b", deltaB),
		)
		return nil
	})
	return res, err
}

// modifyLiquidity loads the position and applies the liquidity change to the
// loaded copies.
func (p *Processor) modifyLiquidity(ctx context.Context, key common.Hash, params ModifyLiquidityParams, increase bool) (*positionScope, *ui.Int, error) {
	if params.Liquidity.IsZero() {
		return nil, nil, errcode.LiquidityZero
	}
	delta, err := lm.ConvertToLiquidityDelta(params.Liquidity, increase)
	if err != nil {
		return nil, nil, err
	}
	s, err := p.loadPosition(ctx, key)
	if err != nil {
		return nil, nil, err
	}
	if err := p.checkPositionAuthority(&s.position, params.Owner); err != nil {
		return nil, nil, err
	}
	update, err := manager.CalculateModifyLiquidity(&s.pool, &s.position, s.lower, s.upper, &delta, params.Timestamp)
	if err != nil {
		return nil, nil, err
	}
	if err := manager.SyncModifyLiquidityValues(&s.pool, &s.position, s.lower, s.upper, update, params.Timestamp); err != nil {
		return nil, nil, err
	}
	return s, &delta, nil
}

// UpdateFeesAndRewards brings the owed fees and rewards of a position up to
// timestamp.
func (p *Processor) UpdateFeesAndRewards(ctx context.Context, key common.Hash, timestamp uint64) error {
	return p.apply(ctx, "update_fees_and_rewards", func(b *store.Batch) error {
		s, err := p.loadPosition(ctx, key)
		if err != nil {
			return err
		}
		update, rewardInfos, err := manager.CalculateFeeAndRewardGrowths(&s.pool, &s.position, s.lower, s.upper, timestamp)
		if err != nil {
			return err
		}
		s.pool.UpdateRewards(rewardInfos, timestamp)
		s.position.Update(update)
		b.PutPool(s.pool)
		b.PutPosition(s.key, s.position)
		return nil
	})
}

// CollectFees pays out the fees owed to a position. Amounts are what left
// the vaults; transfer fees are taken from them on the way.
func (p *Processor) CollectFees(ctx context.Context, key common.Hash, owner common.Address) (LiquidityResult, error) {
	var res LiquidityResult
	err := p.apply(ctx, "collect_fees", func(b *store.Batch) error {
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
		res = LiquidityResult{AmountA: pos.FeeOwedA, AmountB: pos.FeeOwedB}
		pos.ResetFeesOwed()
		if err := p.payOut(pl.TokenVaultA, owner, pl.TokenMintA, res.AmountA); err != nil {
			return err
		}
		if err := p.payOut(pl.TokenVaultB, owner, pl.TokenMintB, res.AmountB); err != nil {
			return err
		}
		b.PutPosition(key, pos)
		return nil
	})
	return res, err
}

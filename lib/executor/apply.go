package executor

import (
	"context"
	"fmt"

	"github.com/ftchann/yevefi-simulator/lib/instruction"
	"github.com/ftchann/yevefi-simulator/lib/pda"
	ent "github.com/ftchann/yevefi-simulator/lib/transaction"
)

// apply dispatches one transaction and returns the token amounts it moved.
func (e *Execution) apply(ctx context.Context, trans ent.Transaction) (ent.Expect, error) {
	switch trans.Type {
	case ent.CreateMint:
		m := trans.Mint
		m.Address = pda.Mint(trans.Symbol)
		if trans.FreezeAuthority != "" {
			m.FreezeAuthority = pda.Wallet(trans.FreezeAuthority)
		}
		return ent.Expect{}, e.proc.Ledger().CreateMint(m)

	case ent.Fund:
		ledger := e.proc.Ledger()
		owner, mint := pda.Wallet(trans.Owner), pda.Mint(trans.Symbol)
		acct := pda.AssociatedTokenAccount(owner, mint)
		if err := ledger.OpenAccount(acct, mint, owner); err != nil {
			return ent.Expect{}, err
		}
		return ent.Expect{}, ledger.MintTo(mint, acct, trans.Amount)

	case ent.SetTokenBadge:
		return ent.Expect{}, e.proc.SetTokenBadge(ctx, e.cfg.ConfigKey, pda.Mint(trans.Symbol), trans.Badged)

	case ent.InitializePool:
		if _, ok := e.pools[trans.Pool]; ok {
			return ent.Expect{}, fmt.Errorf("pool label %q already used", trans.Pool)
		}
		key, err := e.proc.InitializePool(ctx, instruction.InitializePoolParams{
			Config:           e.cfg.ConfigKey,
			TokenMintA:       pda.Mint(trans.MintA),
			TokenMintB:       pda.Mint(trans.MintB),
			TickSpacing:      trans.TickSpacing,
			InitialSqrtPrice: trans.SqrtPrice,
			DefaultFeeRate:   trans.FeeRate,
		})
		if err != nil {
			return ent.Expect{}, err
		}
		e.pools[trans.Pool] = key
		return ent.Expect{}, nil
	}

	poolKey, err := e.poolKey(trans.Pool)
	if err != nil {
		return ent.Expect{}, err
	}
	owner := pda.Wallet(trans.Owner)

	switch trans.Type {
	case ent.InitializeTickArray:
		return ent.Expect{}, e.proc.InitializeTickArraysFor(ctx, poolKey, trans.Tick)

	case ent.InitializeReward:
		return ent.Expect{}, e.proc.InitializeReward(ctx, poolKey, trans.Index, pda.Mint(trans.Symbol))

	case ent.SetRewardEmissions:
		return ent.Expect{}, e.proc.SetRewardEmissions(ctx, poolKey, trans.Index, trans.EmissionsPerSecondX64, trans.Timestamp)

	case ent.SetFeeRate:
		return ent.Expect{}, e.proc.SetFeeRate(ctx, poolKey, trans.FeeRate)

	case ent.SetProtocolFeeRate:
		return ent.Expect{}, e.proc.SetProtocolFeeRate(ctx, poolKey, trans.ProtocolFeeRate)

	case ent.CollectProtocolFees:
		amountA, amountB, err := e.proc.CollectProtocolFees(ctx, poolKey, owner)
		return ent.Expect{AmountA: amountA, AmountB: amountB}, err

	case ent.Swap:
		res, err := e.proc.Swap(ctx, instruction.SwapParams{
			Pool:                   poolKey,
			Trader:                 owner,
			Amount:                 trans.Amount,
			OtherAmountThreshold:   trans.OtherAmountThreshold,
			SqrtPriceLimit:         trans.SqrtPriceLimit,
			AmountSpecifiedIsInput: trans.AmountSpecifiedIsInput,
			AToB:                   trans.AToB,
			Timestamp:              trans.Timestamp,
		})
		return ent.Expect{AmountA: res.AmountA, AmountB: res.AmountB}, err

	case ent.OpenPosition:
		// recorded histories never initialize tick arrays themselves
		if err := e.proc.InitializeTickArraysFor(ctx, poolKey, trans.TickLower, trans.TickUpper); err != nil {
			return ent.Expect{}, err
		}
		_, err := e.proc.OpenPosition(ctx, instruction.OpenPositionParams{
			Pool:           poolKey,
			Owner:          owner,
			Name:           trans.Position,
			TickLowerIndex: trans.TickLower,
			TickUpperIndex: trans.TickUpper,
		})
		return ent.Expect{}, err
	}

	key, err := e.positionKey(trans)
	if err != nil {
		return ent.Expect{}, err
	}
	switch trans.Type {
	case ent.IncreaseLiquidity, ent.DecreaseLiquidity:
		params := instruction.ModifyLiquidityParams{
			Owner:           owner,
			Liquidity:       trans.Liquidity,
			TokenThresholdA: trans.ThresholdA,
			TokenThresholdB: trans.ThresholdB,
			Timestamp:       trans.Timestamp,
		}
		modify := e.proc.IncreaseLiquidity
		if trans.Type == ent.DecreaseLiquidity {
			modify = e.proc.DecreaseLiquidity
		}
		res, err := modify(ctx, key, params)
		return ent.Expect{AmountA: res.AmountA, AmountB: res.AmountB}, err

	case ent.UpdateFeesAndRewards:
		return ent.Expect{}, e.proc.UpdateFeesAndRewards(ctx, key, trans.Timestamp)

	case ent.CollectFees:
		res, err := e.proc.CollectFees(ctx, key, owner)
		return ent.Expect{AmountA: res.AmountA, AmountB: res.AmountB}, err

	case ent.CollectReward:
		paid, err := e.proc.CollectReward(ctx, key, owner, trans.Index)
		return ent.Expect{AmountA: paid}, err

	case ent.ClosePosition:
		return ent.Expect{}, e.proc.ClosePosition(ctx, key, owner)
	}
	return ent.Expect{}, fmt.Errorf("unsupported instruction type %q", trans.Type)
}

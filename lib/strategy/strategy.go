// Package strategy provides liquidity strategies that trade alongside a
// replayed history. A strategy owns one wallet and manages its positions in
// one pool through the instruction Processor, so it pays the same fees and
// rounding as every other participant.
package strategy

import (
	"context"
	"errors"
	"fmt"

	"github.com/ftchann/yevefi-simulator/lib/errcode"
	fm "github.com/ftchann/yevefi-simulator/lib/fullmath"
	"github.com/ftchann/yevefi-simulator/lib/instruction"
	la "github.com/ftchann/yevefi-simulator/lib/liquidity_amounts"
	"github.com/ftchann/yevefi-simulator/lib/pda"
	"github.com/ftchann/yevefi-simulator/lib/pool"
	sqrtmath "github.com/ftchann/yevefi-simulator/lib/sqrtprice_math"
	"github.com/ftchann/yevefi-simulator/lib/tick"
	"github.com/ftchann/yevefi-simulator/lib/tickmath"

	"github.com/ethereum/go-ethereum/common"
	ui "github.com/holiman/uint256"
	"lukechampine.com/uint128"
)

type Strategy interface {
	// Init deposits the starting funds and returns the holdings it started with.
	Init(ctx context.Context, timestamp uint64) (amountA, amountB uint64, err error)
	// Rebalance withdraws everything, then deposits again. It returns the
	// holdings between the two steps.
	Rebalance(ctx context.Context, timestamp uint64) (amountA, amountB uint64, err error)
	BurnAll(ctx context.Context, timestamp uint64) (amountA, amountB uint64, err error)
	MakeSnapshot(ctx context.Context) error
	GetAmounts(ctx context.Context) (amountA, amountB uint64, err error)
}

// provider holds the wallet and positions of one strategy.
type provider struct {
	proc      *instruction.Processor
	pool      common.Hash
	owner     common.Address
	positions []common.Hash
	minted    int
}

func newProvider(proc *instruction.Processor, poolKey common.Hash, owner common.Address) provider {
	return provider{proc: proc, pool: poolKey, owner: owner}
}

func (p *provider) loadPool(ctx context.Context) (pool.Pool, error) {
	return p.proc.Store().Pool(ctx, p.pool)
}

func (p *provider) balances(pl pool.Pool) (uint64, uint64) {
	ledger := p.proc.Ledger()
	return ledger.Balance(pda.AssociatedTokenAccount(p.owner, pl.TokenMintA)),
		ledger.Balance(pda.AssociatedTokenAccount(p.owner, pl.TokenMintB))
}

func (p *provider) walletAmounts(ctx context.Context) (uint64, uint64, error) {
	pl, err := p.loadPool(ctx)
	if err != nil {
		return 0, 0, err
	}
	amountA, amountB := p.balances(pl)
	return amountA, amountB, nil
}

// GetAmounts values the wallet plus the tokens every position would return
// at the current price, rounded down. Uncollected fees are not counted.
func (p *provider) GetAmounts(ctx context.Context) (uint64, uint64, error) {
	pl, err := p.loadPool(ctx)
	if err != nil {
		return 0, 0, err
	}
	amountA, amountB := p.balances(pl)
	for _, key := range p.positions {
		pos, err := p.proc.Store().Position(ctx, key)
		if err != nil {
			return 0, 0, err
		}
		a, b, err := positionAmounts(pl, pos.TickLowerIndex, pos.TickUpperIndex, pos.Liquidity)
		if err != nil {
			return 0, 0, err
		}
		amountA += a
		amountB += b
	}
	return amountA, amountB, nil
}

func positionAmounts(pl pool.Pool, tickLower, tickUpper int32, liquidity uint128.Uint128) (uint64, uint64, error) {
	lower := tickmath.SqrtPriceFromTickIndex(tickLower)
	upper := tickmath.SqrtPriceFromTickIndex(tickUpper)
	switch {
	case pl.TickCurrentIndex < tickLower:
		a, err := sqrtmath.GetAmountDeltaA(lower, upper, liquidity, false)
		return a, 0, err
	case pl.TickCurrentIndex < tickUpper:
		a, err := sqrtmath.GetAmountDeltaA(pl.SqrtPrice, upper, liquidity, false)
		if err != nil {
			return 0, 0, err
		}
		b, err := sqrtmath.GetAmountDeltaB(lower, pl.SqrtPrice, liquidity, false)
		return a, b, err
	default:
		b, err := sqrtmath.GetAmountDeltaB(lower, upper, liquidity, false)
		return 0, b, err
	}
}

// alignRange widens [tickLower, tickUpper] to usable ticks inside the full
// range. The result spans at least one tick spacing.
func alignRange(tickLower, tickUpper int32, tickSpacing uint16) (int32, int32) {
	minTick, maxTick := tick.FullRangeIndexes(tickSpacing)
	tickLower = tickmath.Floor(max(tickLower, minTick), tickSpacing)
	tickUpper = tickmath.Ceil(min(tickUpper, maxTick), tickSpacing)
	if tickUpper <= tickLower {
		if tickLower+int32(tickSpacing) <= maxTick {
			tickUpper = tickLower + int32(tickSpacing)
		} else {
			tickLower = tickUpper - int32(tickSpacing)
		}
	}
	return tickLower, tickUpper
}

// budgets returns what of the wallet reaches the vaults after transfer fees.
func (p *provider) budgets(pl pool.Pool) (uint64, uint64, error) {
	balanceA, balanceB := p.balances(pl)
	feeA, err := p.proc.Ledger().TransferFee(pl.TokenMintA)
	if err != nil {
		return 0, 0, err
	}
	feeB, err := p.proc.Ledger().TransferFee(pl.TokenMintB)
	if err != nil {
		return 0, 0, err
	}
	budgetA, err := feeA.TransferFeeExcludedAmount(balanceA)
	if err != nil {
		return 0, 0, err
	}
	budgetB, err := feeB.TransferFeeExcludedAmount(balanceB)
	if err != nil {
		return 0, 0, err
	}
	return budgetA, budgetB, nil
}

// liquidityFor is the liquidity the wallet buys in an aligned range.
func (p *provider) liquidityFor(pl pool.Pool, tickLower, tickUpper int32) (uint128.Uint128, error) {
	budgetA, budgetB, err := p.budgets(pl)
	if err != nil {
		return uint128.Zero, err
	}
	liquidity, err := la.GetLiquidityForAmounts(pl.SqrtPrice, tickmath.SqrtPriceFromTickIndex(tickLower),
		tickmath.SqrtPriceFromTickIndex(tickUpper), budgetA, budgetB)
	if err != nil {
		return uint128.Zero, fmt.Errorf("liquidity for [%d, %d]: %w", tickLower, tickUpper, err)
	}
	return liquidity, nil
}

// mintPosition puts as much of the wallet as the range takes into a new
// position. Nothing happens when the wallet buys no liquidity.
func (p *provider) mintPosition(ctx context.Context, tickLower, tickUpper int32, timestamp uint64) error {
	return p.mintShare(ctx, tickLower, tickUpper, 1, timestamp)
}

// mintShare is mintPosition with the liquidity divided by divisor.
func (p *provider) mintShare(ctx context.Context, tickLower, tickUpper int32, divisor uint64, timestamp uint64) error {
	pl, err := p.loadPool(ctx)
	if err != nil {
		return err
	}
	tickLower, tickUpper = alignRange(tickLower, tickUpper, pl.TickSpacing)
	liquidity, err := p.liquidityFor(pl, tickLower, tickUpper)
	if err != nil {
		return err
	}
	liquidity = liquidity.Div64(divisor)
	if liquidity.IsZero() {
		return nil
	}

	if err := p.proc.InitializeTickArraysFor(ctx, p.pool, tickLower, tickUpper); err != nil {
		return err
	}
	key, err := p.proc.OpenPosition(ctx, instruction.OpenPositionParams{
		Pool:           p.pool,
		Owner:          p.owner,
		Name:           fmt.Sprintf("strategy-%d", p.minted),
		TickLowerIndex: tickLower,
		TickUpperIndex: tickUpper,
	})
	if err != nil {
		return err
	}
	p.minted++
	balanceA, balanceB := p.balances(pl)
	_, err = p.proc.IncreaseLiquidity(ctx, key, instruction.ModifyLiquidityParams{
		Owner:           p.owner,
		Liquidity:       liquidity,
		TokenThresholdA: balanceA,
		TokenThresholdB: balanceB,
		Timestamp:       timestamp,
	})
	if err != nil {
		if closeErr := p.proc.ClosePosition(ctx, key, p.owner); closeErr != nil {
			return errors.Join(err, closeErr)
		}
		return err
	}
	p.positions = append(p.positions, key)
	return nil
}

// swapExcessHalf swaps half of whatever the wallet holds beyond what the
// range takes at the current price. The excess side is picked by value in
// token B. The swap never pushes the price out of the range, and a pool
// without active liquidity is left alone.
func (p *provider) swapExcessHalf(ctx context.Context, tickLower, tickUpper int32, timestamp uint64) error {
	pl, err := p.loadPool(ctx)
	if err != nil {
		return err
	}
	if pl.Liquidity.IsZero() {
		return nil
	}
	tickLower, tickUpper = alignRange(tickLower, tickUpper, pl.TickSpacing)
	liquidity, err := p.liquidityFor(pl, tickLower, tickUpper)
	if err != nil {
		return err
	}
	usedA, usedB, err := positionAmounts(pl, tickLower, tickUpper, liquidity)
	if err != nil {
		return err
	}
	budgetA, budgetB, err := p.budgets(pl)
	if err != nil {
		return err
	}
	excessA, excessB := budgetA-min(usedA, budgetA), budgetB-min(usedB, budgetB)

	// value of excessA in B is excessA * (sqrtPrice / 2^64)^2
	sqrtPrice := fm.U256(pl.SqrtPrice)
	valueA := new(ui.Int).Mul(ui.NewInt(excessA), sqrtPrice)
	valueA.Rsh(valueA, 64)
	valueA.Mul(valueA, sqrtPrice)
	valueA.Rsh(valueA, 64)

	params := instruction.SwapParams{
		Pool:                   p.pool,
		Trader:                 p.owner,
		AmountSpecifiedIsInput: true,
		Timestamp:              timestamp,
	}
	if valueA.Cmp(ui.NewInt(excessB)) > 0 {
		params.Amount = excessA / 2
		params.AToB = true
		params.SqrtPriceLimit = tickmath.SqrtPriceFromTickIndex(tickLower)
	} else {
		params.Amount = excessB / 2
		params.SqrtPriceLimit = tickmath.SqrtPriceFromTickIndex(tickUpper)
	}
	if params.Amount == 0 {
		return nil
	}
	// the price already sits on the range bound
	cmp := params.SqrtPriceLimit.Cmp(pl.SqrtPrice)
	if (params.AToB && cmp >= 0) || (!params.AToB && cmp <= 0) {
		return nil
	}
	if err := p.proc.InitializeTickArraysFor(ctx, p.pool, tickLower, pl.TickCurrentIndex, tickUpper); err != nil {
		return err
	}
	_, err = p.proc.Swap(ctx, params)
	return err
}

// burnAll withdraws every position and collects its fees and rewards.
// Positions still owed rewards that their vault cannot pay stay open.
func (p *provider) burnAll(ctx context.Context, timestamp uint64) error {
	pl, err := p.loadPool(ctx)
	if err != nil {
		return err
	}
	var open []common.Hash
	for _, key := range p.positions {
		pos, err := p.proc.Store().Position(ctx, key)
		if err != nil {
			return err
		}
		if !pos.Liquidity.IsZero() {
			_, err = p.proc.DecreaseLiquidity(ctx, key, instruction.ModifyLiquidityParams{
				Owner:     p.owner,
				Liquidity: pos.Liquidity,
				Timestamp: timestamp,
			})
			if err != nil {
				return err
			}
		}
		if _, err := p.proc.CollectFees(ctx, key, p.owner); err != nil {
			return err
		}
		for i, reward := range pl.RewardInfos {
			if !reward.Initialized() {
				continue
			}
			if _, err := p.proc.CollectReward(ctx, key, p.owner, i); err != nil {
				return err
			}
		}
		err = p.proc.ClosePosition(ctx, key, p.owner)
		switch {
		case errors.Is(err, errcode.ClosePositionNotEmpty):
			open = append(open, key)
		case err != nil:
			return err
		}
	}
	p.positions = open
	return nil
}

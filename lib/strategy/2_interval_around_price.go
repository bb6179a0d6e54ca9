package strategy

import (
	"context"

	"github.com/ftchann/yevefi-simulator/lib/instruction"
	"github.com/ftchann/yevefi-simulator/lib/tickmath"

	"github.com/ethereum/go-ethereum/common"
)

/* 2 Interval Around Price
One Symmetric Interval around the price. [p-a,p+a]
And the remaining liquidity in a limit order [p, p + b] or [p - b, p]
*/
type TwoIntervalAroundPriceStrategy struct {
	provider
	a int32 // a in ticks
	b int32 // b in ticks
}

func NewTwoIntervalAroundPriceStrategy(proc *instruction.Processor, poolKey common.Hash, owner common.Address, a, b int32) *TwoIntervalAroundPriceStrategy {
	return &TwoIntervalAroundPriceStrategy{
		provider: newProvider(proc, poolKey, owner),
		a:        a,
		b:        b,
	}
}

func (s *TwoIntervalAroundPriceStrategy) MakeSnapshot(context.Context) error {
	return nil
}

func (s *TwoIntervalAroundPriceStrategy) setPositions(ctx context.Context, timestamp uint64) error {
	pl, err := s.loadPool(ctx)
	if err != nil {
		return err
	}
	// MainPosition
	if err := s.mintPosition(ctx, pl.TickCurrentIndex-s.a, pl.TickCurrentIndex+s.a, timestamp); err != nil {
		return err
	}

	// SecondaryPosition, strictly on one side of the price
	floor := tickmath.Floor(pl.TickCurrentIndex, pl.TickSpacing)
	if amountA, _ := s.balances(pl); amountA > 0 {
		tickLower := floor + int32(pl.TickSpacing)
		if err := s.mintPosition(ctx, tickLower, tickLower+s.b, timestamp); err != nil {
			return err
		}
	}
	if _, amountB := s.balances(pl); amountB > 0 {
		if err := s.mintPosition(ctx, floor-s.b, floor, timestamp); err != nil {
			return err
		}
	}
	return nil
}

func (s *TwoIntervalAroundPriceStrategy) Init(ctx context.Context, timestamp uint64) (currAmountA, currAmountB uint64, err error) {
	currAmountA, currAmountB, err = s.walletAmounts(ctx)
	if err != nil {
		return
	}
	err = s.setPositions(ctx, timestamp)
	return
}

func (s *TwoIntervalAroundPriceStrategy) Rebalance(ctx context.Context, timestamp uint64) (currAmountA, currAmountB uint64, err error) {
	currAmountA, currAmountB, err = s.BurnAll(ctx, timestamp)
	if err != nil {
		return
	}
	err = s.setPositions(ctx, timestamp)
	return
}

func (s *TwoIntervalAroundPriceStrategy) BurnAll(ctx context.Context, timestamp uint64) (uint64, uint64, error) {
	if err := s.burnAll(ctx, timestamp); err != nil {
		return 0, 0, err
	}
	return s.walletAmounts(ctx)
}

package strategy

import (
	"context"

	"github.com/ftchann/yevefi-simulator/lib/instruction"
	"github.com/ftchann/yevefi-simulator/lib/tickmath"

	"github.com/ethereum/go-ethereum/common"
)

// FillUpStrategy [pc-a, pc+a] where pc is the current price. What the main
// range leaves over fills the part of it on the side of the price that
// takes that token alone.
type FillUpStrategy struct {
	provider
	IntervalWidth int32 // a in ticks
}

func NewFillUpStrategy(proc *instruction.Processor, poolKey common.Hash, owner common.Address, intervalWidth int32) *FillUpStrategy {
	return &FillUpStrategy{
		provider:      newProvider(proc, poolKey, owner),
		IntervalWidth: intervalWidth,
	}
}

func (s *FillUpStrategy) MakeSnapshot(context.Context) error {
	return nil
}

func (s *FillUpStrategy) setPositions(ctx context.Context, timestamp uint64) error {
	pl, err := s.loadPool(ctx)
	if err != nil {
		return err
	}
	tickLower, tickUpper := alignRange(pl.TickCurrentIndex-s.IntervalWidth, pl.TickCurrentIndex+s.IntervalWidth, pl.TickSpacing)
	if err := s.mintPosition(ctx, tickLower, tickUpper, timestamp); err != nil {
		return err
	}

	floor := tickmath.Floor(pl.TickCurrentIndex, pl.TickSpacing)
	amountA, amountB := s.balances(pl)
	switch {
	case amountA > 0:
		if above := floor + int32(pl.TickSpacing); above < tickUpper {
			return s.mintPosition(ctx, above, tickUpper, timestamp)
		}
	case amountB > 0:
		if tickLower < floor {
			return s.mintPosition(ctx, tickLower, floor, timestamp)
		}
	}
	return nil
}

func (s *FillUpStrategy) Init(ctx context.Context, timestamp uint64) (currAmountA, currAmountB uint64, err error) {
	currAmountA, currAmountB, err = s.walletAmounts(ctx)
	if err != nil {
		return
	}
	err = s.setPositions(ctx, timestamp)
	return
}

func (s *FillUpStrategy) Rebalance(ctx context.Context, timestamp uint64) (currAmountA, currAmountB uint64, err error) {
	currAmountA, currAmountB, err = s.BurnAll(ctx, timestamp)
	if err != nil {
		return
	}
	err = s.setPositions(ctx, timestamp)
	return
}

func (s *FillUpStrategy) BurnAll(ctx context.Context, timestamp uint64) (uint64, uint64, error) {
	if err := s.burnAll(ctx, timestamp); err != nil {
		return 0, 0, err
	}
	return s.walletAmounts(ctx)
}

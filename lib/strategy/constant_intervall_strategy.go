package strategy

import (
	"context"

	"github.com/ftchann/yevefi-simulator/lib/instruction"

	"github.com/ethereum/go-ethereum/common"
)

// ConstantIntervalStrategy [p-a, p+a] where p is the price at Init. Every
// rebalance re-deposits into the same range.
type ConstantIntervalStrategy struct {
	provider
	IntervalWidth int32 // a in ticks
	tickLower     int32
	tickUpper     int32
}

func NewConstantIntervallStrategy(proc *instruction.Processor, poolKey common.Hash, owner common.Address, intervalWidth int32) *ConstantIntervalStrategy {
	return &ConstantIntervalStrategy{
		provider:      newProvider(proc, poolKey, owner),
		IntervalWidth: intervalWidth,
	}
}

func (s *ConstantIntervalStrategy) Init(ctx context.Context, timestamp uint64) (currAmountA, currAmountB uint64, err error) {
	pl, err := s.loadPool(ctx)
	if err != nil {
		return 0, 0, err
	}
	currAmountA, currAmountB = s.balances(pl)
	s.tickLower, s.tickUpper = alignRange(pl.TickCurrentIndex-s.IntervalWidth, pl.TickCurrentIndex+s.IntervalWidth, pl.TickSpacing)
	err = s.mintPosition(ctx, s.tickLower, s.tickUpper, timestamp)
	return
}

func (s *ConstantIntervalStrategy) Rebalance(ctx context.Context, timestamp uint64) (currAmountA, currAmountB uint64, err error) {
	currAmountA, currAmountB, err = s.BurnAll(ctx, timestamp)
	if err != nil {
		return
	}
	err = s.mintPosition(ctx, s.tickLower, s.tickUpper, timestamp)
	return
}

func (s *ConstantIntervalStrategy) BurnAll(ctx context.Context, timestamp uint64) (uint64, uint64, error) {
	if err := s.burnAll(ctx, timestamp); err != nil {
		return 0, 0, err
	}
	return s.walletAmounts(ctx)
}

func (s *ConstantIntervalStrategy) MakeSnapshot(context.Context) error {
	return nil
}

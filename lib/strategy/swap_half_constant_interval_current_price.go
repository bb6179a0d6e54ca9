package strategy

import (
	"context"

	"github.com/ftchann/yevefi-simulator/lib/instruction"

	"github.com/ethereum/go-ethereum/common"
)

// IntervalAroundPriceAndSwapStrategy [pc-a, pc+a]
// Where pc is the current price. Before every deposit half of the token the
// range cannot take is swapped into the other one.
type IntervalAroundPriceAndSwapStrategy struct {
	provider
	IntervalWidth int32 // a in ticks
}

func NewIntervalAroundPriceAndSwapStrategy(proc *instruction.Processor, poolKey common.Hash, owner common.Address, intervalWidth int32) *IntervalAroundPriceAndSwapStrategy {
	return &IntervalAroundPriceAndSwapStrategy{
		provider:      newProvider(proc, poolKey, owner),
		IntervalWidth: intervalWidth,
	}
}

func (s *IntervalAroundPriceAndSwapStrategy) MakeSnapshot(context.Context) error {
	return nil
}

func (s *IntervalAroundPriceAndSwapStrategy) swapAndMint(ctx context.Context, timestamp uint64) error {
	pl, err := s.loadPool(ctx)
	if err != nil {
		return err
	}
	tickLower, tickUpper := pl.TickCurrentIndex-s.IntervalWidth, pl.TickCurrentIndex+s.IntervalWidth
	if err := s.swapExcessHalf(ctx, tickLower, tickUpper, timestamp); err != nil {
		return err
	}
	return s.mintPosition(ctx, tickLower, tickUpper, timestamp)
}

func (s *IntervalAroundPriceAndSwapStrategy) Init(ctx context.Context, timestamp uint64) (currAmountA, currAmountB uint64, err error) {
	currAmountA, currAmountB, err = s.walletAmounts(ctx)
	if err != nil {
		return
	}
	err = s.swapAndMint(ctx, timestamp)
	return
}

func (s *IntervalAroundPriceAndSwapStrategy) Rebalance(ctx context.Context, timestamp uint64) (currAmountA, currAmountB uint64, err error) {
	currAmountA, currAmountB, err = s.BurnAll(ctx, timestamp)
	if err != nil {
		return
	}
	err = s.swapAndMint(ctx, timestamp)
	return
}

func (s *IntervalAroundPriceAndSwapStrategy) BurnAll(ctx context.Context, timestamp uint64) (uint64, uint64, error) {
	if err := s.burnAll(ctx, timestamp); err != nil {
		return 0, 0, err
	}
	return s.walletAmounts(ctx)
}

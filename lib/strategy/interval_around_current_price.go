package strategy

import (
	"context"

	"github.com/ftchann/yevefi-simulator/lib/instruction"

	"github.com/ethereum/go-ethereum/common"
)

// IntervalAroundPriceStrategy [pc-a, pc+a]
// Where pc is the current price
type IntervalAroundPriceStrategy struct {
	provider
	IntervalWidth int32 // a in ticks
}

func NewIntervalAroundPriceStrategy(proc *instruction.Processor, poolKey common.Hash, owner common.Address, intervalWidth int32) *IntervalAroundPriceStrategy {
	return &IntervalAroundPriceStrategy{
		provider:      newProvider(proc, poolKey, owner),
		IntervalWidth: intervalWidth,
	}
}

func (s *IntervalAroundPriceStrategy) mintAroundPrice(ctx context.Context, timestamp uint64) error {
	pl, err := s.loadPool(ctx)
	if err != nil {
		return err
	}
	return s.mintPosition(ctx, pl.TickCurrentIndex-s.IntervalWidth, pl.TickCurrentIndex+s.IntervalWidth, timestamp)
}

func (s *IntervalAroundPriceStrategy) Init(ctx context.Context, timestamp uint64) (currAmountA, currAmountB uint64, err error) {
	currAmountA, currAmountB, err = s.walletAmounts(ctx)
	if err != nil {
		return
	}
	err = s.mintAroundPrice(ctx, timestamp)
	return
}

func (s *IntervalAroundPriceStrategy) Rebalance(ctx context.Context, timestamp uint64) (currAmountA, currAmountB uint64, err error) {
	currAmountA, currAmountB, err = s.BurnAll(ctx, timestamp)
	if err != nil {
		return
	}
	err = s.mintAroundPrice(ctx, timestamp)
	return
}

func (s *IntervalAroundPriceStrategy) BurnAll(ctx context.Context, timestamp uint64) (uint64, uint64, error) {
	if err := s.burnAll(ctx, timestamp); err != nil {
		return 0, 0, err
	}
	return s.walletAmounts(ctx)
}

func (s *IntervalAroundPriceStrategy) MakeSnapshot(context.Context) error {
	return nil
}

package strategy

import (
	"context"

	"github.com/ftchann/yevefi-simulator/lib/instruction"
	"github.com/ftchann/yevefi-simulator/lib/prices"

	"github.com/ethereum/go-ethereum/common"
)

// IntervalAroundAverageStrategy [pa-a, pa+a]
// Where pa is the average of the last observed prices
type IntervalAroundAverageStrategy struct {
	provider
	IntervalWidth int32 // a in ticks
	PriceHistory  *prices.Prices
}

func NewIntervalAroundAverageStrategy(proc *instruction.Processor, poolKey common.Hash, owner common.Address, intervalWidth int32, amountAverageSnapshots int) *IntervalAroundAverageStrategy {
	return &IntervalAroundAverageStrategy{
		provider:      newProvider(proc, poolKey, owner),
		IntervalWidth: intervalWidth,
		PriceHistory:  prices.NewPrices(amountAverageSnapshots),
	}
}

func (s *IntervalAroundAverageStrategy) MakeSnapshot(ctx context.Context) error {
	pl, err := s.loadPool(ctx)
	if err != nil {
		return err
	}
	s.PriceHistory.Add(pl.TickCurrentIndex)
	return nil
}

func (s *IntervalAroundAverageStrategy) mintAroundAverage(ctx context.Context, timestamp uint64) error {
	pl, err := s.loadPool(ctx)
	if err != nil {
		return err
	}
	center := pl.TickCurrentIndex
	if s.PriceHistory.Len() > 0 {
		center = s.PriceHistory.Average()
	}
	return s.mintPosition(ctx, center-s.IntervalWidth, center+s.IntervalWidth, timestamp)
}

func (s *IntervalAroundAverageStrategy) Init(ctx context.Context, timestamp uint64) (currAmountA, currAmountB uint64, err error) {
	currAmountA, currAmountB, err = s.walletAmounts(ctx)
	if err != nil {
		return
	}
	err = s.mintAroundAverage(ctx, timestamp)
	return
}

func (s *IntervalAroundAverageStrategy) Rebalance(ctx context.Context, timestamp uint64) (currAmountA, currAmountB uint64, err error) {
	currAmountA, currAmountB, err = s.BurnAll(ctx, timestamp)
	if err != nil {
		return
	}
	err = s.mintAroundAverage(ctx, timestamp)
	return
}

func (s *IntervalAroundAverageStrategy) BurnAll(ctx context.Context, timestamp uint64) (uint64, uint64, error) {
	if err := s.burnAll(ctx, timestamp); err != nil {
		return 0, 0, err
	}
	return s.walletAmounts(ctx)
}

package strategy

import (
	"context"

	"github.com/ftchann/yevefi-simulator/lib/instruction"
	"github.com/ftchann/yevefi-simulator/lib/prices"

	"github.com/ethereum/go-ethereum/common"
)

// VolatilitySizedIntervalStrategy [pc - c*o, pc + c*o]
// Where pc is the current price
// c is a constant
// o is the volatility of the observed ticks
type VolatilitySizedIntervalStrategy struct {
	provider
	MultiplierX8 uint32 // Q24.8
	PriceHistory *prices.Prices
}

func NewVolatilitySizedIntervalStrategy(proc *instruction.Processor, poolKey common.Hash, owner common.Address, amountAverageSnapshots int, multiplierX8 uint32) *VolatilitySizedIntervalStrategy {
	return &VolatilitySizedIntervalStrategy{
		provider:     newProvider(proc, poolKey, owner),
		MultiplierX8: multiplierX8,
		PriceHistory: prices.NewPrices(amountAverageSnapshots),
	}
}

func (s *VolatilitySizedIntervalStrategy) MakeSnapshot(ctx context.Context) error {
	pl, err := s.loadPool(ctx)
	if err != nil {
		return err
	}
	s.PriceHistory.Add(pl.TickCurrentIndex)
	return nil
}

// getTicks sizes the range by the observed volatility. alignRange widens a
// zero width to one tick spacing.
func (s *VolatilitySizedIntervalStrategy) getTicks(current int32) (tickLower, tickUpper int32) {
	width := uint64(s.PriceHistory.Volatility()) * uint64(s.MultiplierX8) >> 8
	if width > 1<<30 {
		width = 1 << 30
	}
	return current - int32(width), current + int32(width)
}

func (s *VolatilitySizedIntervalStrategy) mintSized(ctx context.Context, timestamp uint64) error {
	pl, err := s.loadPool(ctx)
	if err != nil {
		return err
	}
	tickLower, tickUpper := s.getTicks(pl.TickCurrentIndex)
	return s.mintPosition(ctx, tickLower, tickUpper, timestamp)
}

func (s *VolatilitySizedIntervalStrategy) Init(ctx context.Context, timestamp uint64) (currAmountA, currAmountB uint64, err error) {
	currAmountA, currAmountB, err = s.walletAmounts(ctx)
	if err != nil {
		return
	}
	err = s.mintSized(ctx, timestamp)
	return
}

func (s *VolatilitySizedIntervalStrategy) Rebalance(ctx context.Context, timestamp uint64) (currAmountA, currAmountB uint64, err error) {
	currAmountA, currAmountB, err = s.BurnAll(ctx, timestamp)
	if err != nil {
		return
	}
	err = s.mintSized(ctx, timestamp)
	return
}

func (s *VolatilitySizedIntervalStrategy) BurnAll(ctx context.Context, timestamp uint64) (uint64, uint64, error) {
	if err := s.burnAll(ctx, timestamp); err != nil {
		return 0, 0, err
	}
	return s.walletAmounts(ctx)
}

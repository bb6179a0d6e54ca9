package strategy

import (
	"context"

	"github.com/ftchann/yevefi-simulator/lib/instruction"
	"github.com/ftchann/yevefi-simulator/lib/prices"

	"github.com/ethereum/go-ethereum/common"
)

// BollingerBandsStrategy [pa - c*o, pa + c*o]
// Where pa is the average of the observed ticks
// c is a constant
// o is the volatility
type BollingerBandsStrategy struct {
	provider
	MultiplierX8 uint32 // Q24.8
	PriceHistory *prices.Prices
}

func NewBollingerBandsStrategy(proc *instruction.Processor, poolKey common.Hash, owner common.Address, amountAverageSnapshots int, multiplierX8 uint32) *BollingerBandsStrategy {
	return &BollingerBandsStrategy{
		provider:     newProvider(proc, poolKey, owner),
		MultiplierX8: multiplierX8,
		PriceHistory: prices.NewPrices(amountAverageSnapshots),
	}
}

func (s *BollingerBandsStrategy) MakeSnapshot(ctx context.Context) error {
	pl, err := s.loadPool(ctx)
	if err != nil {
		return err
	}
	s.PriceHistory.Add(pl.TickCurrentIndex)
	return nil
}

// getTicks centers the band on the average tick, or on current before
// anything was observed.
func (s *BollingerBandsStrategy) getTicks(current int32) (tickLower, tickUpper int32) {
	center := current
	if s.PriceHistory.Len() > 0 {
		center = s.PriceHistory.Average()
	}
	width := uint64(s.PriceHistory.Volatility()) * uint64(s.MultiplierX8) >> 8
	if width > 1<<30 {
		width = 1 << 30
	}
	return center - int32(width), center + int32(width)
}

func (s *BollingerBandsStrategy) mintBand(ctx context.Context, timestamp uint64) error {
	pl, err := s.loadPool(ctx)
	if err != nil {
		return err
	}
	tickLower, tickUpper := s.getTicks(pl.TickCurrentIndex)
	return s.mintPosition(ctx, tickLower, tickUpper, timestamp)
}

func (s *BollingerBandsStrategy) Init(ctx context.Context, timestamp uint64) (currAmountA, currAmountB uint64, err error) {
	currAmountA, currAmountB, err = s.walletAmounts(ctx)
	if err != nil {
		return
	}
	err = s.mintBand(ctx, timestamp)
	return
}

func (s *BollingerBandsStrategy) Rebalance(ctx context.Context, timestamp uint64) (currAmountA, currAmountB uint64, err error) {
	currAmountA, currAmountB, err = s.BurnAll(ctx, timestamp)
	if err != nil {
		return
	}
	err = s.mintBand(ctx, timestamp)
	return
}

func (s *BollingerBandsStrategy) BurnAll(ctx context.Context, timestamp uint64) (uint64, uint64, error) {
	if err := s.burnAll(ctx, timestamp); err != nil {
		return 0, 0, err
	}
	return s.walletAmounts(ctx)
}

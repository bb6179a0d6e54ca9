package strategy

import (
	"context"

	"github.com/ftchann/yevefi-simulator/lib/instruction"
	"github.com/ftchann/yevefi-simulator/lib/tickmath"

	"github.com/ethereum/go-ethereum/common"
)

// LimitOrderStrategy [pc-a, pc+a] plus half of what is left in a single
// spacing range next to the price, which fills like a limit order when the
// price crosses it.
type LimitOrderStrategy struct {
	provider
	IntervalWidth    int32 // a in ticks
	CurrentLimitTick int32
	Direction        bool // true sells A above the price
}

func NewLimitOrderStrategy(proc *instruction.Processor, poolKey common.Hash, owner common.Address, intervalWidth int32) *LimitOrderStrategy {
	return &LimitOrderStrategy{
		provider:      newProvider(proc, poolKey, owner),
		IntervalWidth: intervalWidth,
	}
}

func (s *LimitOrderStrategy) GetCurrentLimitTick() int32 {
	return s.CurrentLimitTick
}

func (s *LimitOrderStrategy) GetDirection() bool {
	return s.Direction
}

func (s *LimitOrderStrategy) MakeSnapshot(context.Context) error {
	return nil
}

func (s *LimitOrderStrategy) setPositions(ctx context.Context, timestamp uint64) error {
	pl, err := s.loadPool(ctx)
	if err != nil {
		return err
	}
	if err := s.mintPosition(ctx, pl.TickCurrentIndex-s.IntervalWidth, pl.TickCurrentIndex+s.IntervalWidth, timestamp); err != nil {
		return err
	}

	// Secondary position
	spacing := int32(pl.TickSpacing)
	floor := tickmath.Floor(pl.TickCurrentIndex, pl.TickSpacing)
	if amountA, _ := s.balances(pl); amountA > 0 {
		tickLower := floor + spacing
		if err := s.mintShare(ctx, tickLower, tickLower+spacing, 2, timestamp); err != nil {
			return err
		}
		s.CurrentLimitTick = tickLower + spacing
		s.Direction = true
	}
	if _, amountB := s.balances(pl); amountB > 0 {
		if err := s.mintShare(ctx, floor-spacing, floor, 2, timestamp); err != nil {
			return err
		}
		s.CurrentLimitTick = floor - spacing
		s.Direction = false
	}
	return nil
}

func (s *LimitOrderStrategy) Init(ctx context.Context, timestamp uint64) (currAmountA, currAmountB uint64, err error) {
	currAmountA, currAmountB, err = s.walletAmounts(ctx)
	if err != nil {
		return
	}
	err = s.setPositions(ctx, timestamp)
	return
}

func (s *LimitOrderStrategy) Rebalance(ctx context.Context, timestamp uint64) (currAmountA, currAmountB uint64, err error) {
	currAmountA, currAmountB, err = s.BurnAll(ctx, timestamp)
	if err != nil {
		return
	}
	err = s.setPositions(ctx, timestamp)
	return
}

func (s *LimitOrderStrategy) BurnAll(ctx context.Context, timestamp uint64) (uint64, uint64, error) {
	if err := s.burnAll(ctx, timestamp); err != nil {
		return 0, 0, err
	}
	return s.walletAmounts(ctx)
}

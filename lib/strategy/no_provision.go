package strategy

import (
	"context"

	"github.com/ftchann/yevefi-simulator/lib/instruction"

	"github.com/ethereum/go-ethereum/common"
)

// NoProvisionStrategy holds its funds and never provides liquidity. It is the
// baseline the other strategies are measured against.
type NoProvisionStrategy struct {
	provider
}

func NewNoProvisionStrategy(proc *instruction.Processor, poolKey common.Hash, owner common.Address) *NoProvisionStrategy {
	return &NoProvisionStrategy{provider: newProvider(proc, poolKey, owner)}
}

func (s *NoProvisionStrategy) Init(ctx context.Context, _ uint64) (uint64, uint64, error) {
	return s.walletAmounts(ctx)
}

func (s *NoProvisionStrategy) Rebalance(ctx context.Context, _ uint64) (uint64, uint64, error) {
	return s.walletAmounts(ctx)
}

func (s *NoProvisionStrategy) BurnAll(ctx context.Context, _ uint64) (uint64, uint64, error) {
	return s.walletAmounts(ctx)
}

func (s *NoProvisionStrategy) MakeSnapshot(context.Context) error {
	return nil
}

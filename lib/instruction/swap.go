package instruction

import (
	"context"
	"fmt"

	"github.com/ftchann/yevefi-simulator/lib/errcode"
	"github.com/ftchann/yevefi-simulator/lib/manager"
	"github.com/ftchann/yevefi-simulator/lib/pda"
	"github.com/ftchann/yevefi-simulator/lib/pool"
	"github.com/ftchann/yevefi-simulator/lib/store"
	"github.com/ftchann/yevefi-simulator/lib/tick"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"lukechampine.com/uint128"
)

type SwapParams struct {
	Pool   common.Hash
	Trader common.Address
	Amount uint64
	// minimum output for exact input, maximum input for exact output
	OtherAmountThreshold   uint64
	SqrtPriceLimit         uint128.Uint128
	AmountSpecifiedIsInput bool
	AToB                   bool
	Timestamp              uint64
}

// SwapResult reports both legs as sent by their sender, transfer fees
// included. OutputReceived is what reaches the trader.
type SwapResult struct {
	AmountA        uint64
	AmountB        uint64
	OutputReceived uint64
	TickIndex      int32
	SqrtPrice      uint128.Uint128
	FeeGrowthDelta uint128.Uint128
}

type swapScope struct {
	pool   pool.Pool
	keys   []common.Hash
	arrays []*tick.TickArray
	seq    *tick.SwapTickSequence
}

// loadSwap loads the pool and the tick arrays a swap from the current tick
// walks through. Missing trailing arrays shorten the sequence.
func (p *Processor) loadSwap(ctx context.Context, params SwapParams) (*swapScope, error) {
	pl, err := p.store.Pool(ctx, params.Pool)
	if err != nil {
		return nil, err
	}
	s := &swapScope{pool: pl}
	for _, start := range tick.SwapTickArrayStarts(pl.TickCurrentIndex, pl.TickSpacing, params.AToB) {
		key := pda.TickArray(params.Pool, start)
		ta, err := p.store.TickArray(ctx, key)
		if err != nil {
			found, lookupErr := exists(ta, err)
			if lookupErr != nil {
				return nil, lookupErr
			}
			if !found {
				break
			}
		}
		s.keys = append(s.keys, key)
		s.arrays = append(s.arrays, &ta)
	}
	if len(s.arrays) == 0 {
		return nil, fmt.Errorf("no tick array at tick %d: %w", pl.TickCurrentIndex, errcode.TickArraySequenceInvalidIndex)
	}
	s.seq = tick.NewSwapTickSequence(s.arrays[0], s.arrays[1:]...)
	return s, nil
}

func (p *Processor) computeSwap(ctx context.Context, params SwapParams) (*swapScope, manager.PostSwapUpdate, SwapResult, error) {
	s, err := p.loadSwap(ctx, params)
	if err != nil {
		return nil, manager.PostSwapUpdate{}, SwapResult{}, err
	}
	feeA, err := p.transferFee(s.pool.TokenMintA)
	if err != nil {
		return nil, manager.PostSwapUpdate{}, SwapResult{}, err
	}
	feeB, err := p.transferFee(s.pool.TokenMintB)
	if err != nil {
		return nil, manager.PostSwapUpdate{}, SwapResult{}, err
	}

	update, err := manager.SwapWithTransferFee(&s.pool, feeA, feeB, s.seq, params.Amount, params.SqrtPriceLimit,
		params.AmountSpecifiedIsInput, params.AToB, params.Timestamp)
	if err != nil {
		return nil, manager.PostSwapUpdate{}, SwapResult{}, err
	}

	input, output, outputFee := update.AmountB, update.AmountA, feeA
	if params.AToB {
		input, output, outputFee = update.AmountA, update.AmountB, feeB
	}
	received, err := outputFee.TransferFeeExcludedAmount(output)
	if err != nil {
		return nil, manager.PostSwapUpdate{}, SwapResult{}, err
	}
	if params.AmountSpecifiedIsInput {
		if received < params.OtherAmountThreshold {
			return nil, manager.PostSwapUpdate{}, SwapResult{}, errcode.AmountOutBelowMinimum
		}
	} else if input > params.OtherAmountThreshold {
		return nil, manager.PostSwapUpdate{}, SwapResult{}, errcode.AmountInAboveMaximum
	}

	return s, update, SwapResult{
		AmountA:        update.AmountA,
		AmountB:        update.AmountB,
		OutputReceived: received,
		TickIndex:      update.NextTickIndex,
		SqrtPrice:      update.NextSqrtPrice,
		FeeGrowthDelta: update.FeeGrowthDelta,
	}, nil
}

// Quote runs a swap against the stored state without changing it.
func (p *Processor) Quote(ctx context.Context, params SwapParams) (SwapResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _, res, err := p.computeSwap(ctx, params)
	if err != nil {
		return SwapResult{}, fmt.Errorf("quote: %w", err)
	}
	return res, nil
}

func (p *Processor) Swap(ctx context.Context, params SwapParams) (SwapResult, error) {
	var res SwapResult
	err := p.apply(ctx, "swap", func(b *store.Batch) error {
		s, update, result, err := p.computeSwap(ctx, params)
		if err != nil {
			return err
		}
		s.pool.UpdateAfterSwap(update.NextLiquidity, update.NextTickIndex, update.NextSqrtPrice, update.NextFeeGrowthGlobal,
			update.NextRewardInfos, update.NextProtocolFee, params.AToB, params.Timestamp)

		inputMint, inputVault := s.pool.TokenMintB, s.pool.TokenVaultB
		outputMint, outputVault := s.pool.TokenMintA, s.pool.TokenVaultA
		input, output := update.AmountB, update.AmountA
		if params.AToB {
			inputMint, inputVault, outputMint, outputVault = outputMint, outputVault, inputMint, inputVault
			input, output = output, input
		}
		if err := p.payIn(params.Trader, inputVault, inputMint, input); err != nil {
			return err
		}
		if err := p.payOut(outputVault, params.Trader, outputMint, output); err != nil {
			return err
		}

		b.PutPool(s.pool)
		for i, key := range s.keys {
			b.PutTickArray(key, *s.arrays[i])
		}
		res = result
		p.log.Debug("swap",
			zap.Stringer("pool", params.Pool),
			zap.Bool("a_to_b", params.AToB),
			zap.Uint64("amount_a", update.AmountA),
			zap.Uint64("amount_b", update.AmountB),
			zap.Int32("tick", update.NextTickIndex),
			zap.Stringer("sqrt_price", update.NextSqrtPrice),
			zap.Stringer("fee_growth", update.FeeGrowthDelta),
		)
		return nil
	})
	return res, err
}

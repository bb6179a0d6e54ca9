package instruction

import (
	"context"
	"fmt"

	cons "github.com/ftchann/yevefi-simulator/lib/constants"
	"github.com/ftchann/yevefi-simulator/lib/errcode"
	"github.com/ftchann/yevefi-simulator/lib/pda"
	"github.com/ftchann/yevefi-simulator/lib/pool"
	"github.com/ftchann/yevefi-simulator/lib/store"
	"github.com/ftchann/yevefi-simulator/lib/tick"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"lukechampine.com/uint128"
)

func (p *Processor) InitializeConfig(ctx context.Context, config pool.Config) error {
	return p.apply(ctx, "initialize_config", func(b *store.Batch) error {
		found, err := exists(p.store.Config(ctx, config.Key))
		if err != nil {
			return err
		}
		if found {
			return errcode.AlreadyInitialized
		}
		if config.DefaultProtocolFeeRate > cons.MaxProtocolFeeRate {
			return errcode.ProtocolFeeRateMaxExceeded
		}
		b.PutConfig(config)
		p.log.Debug("config initialized", zap.Stringer("config", config.Key))
		return nil
	})
}

// SetTokenBadge issues (badged) or deletes a token badge for mint under
// config. Badged mints may carry a freeze authority and the delegating
// extensions.
func (p *Processor) SetTokenBadge(ctx context.Context, config common.Hash, mint common.Address, badged bool) error {
	return p.apply(ctx, "set_token_badge", func(*store.Batch) error {
		if _, err := p.store.Config(ctx, config); err != nil {
			return err
		}
		if _, ok := p.ledger.Mint(mint); !ok {
			return fmt.Errorf("mint %s: not found", mint)
		}
		p.ledger.SetTokenBadge(config, mint, badged)
		return nil
	})
}

type InitializePoolParams struct {
	Config           common.Hash
	TokenMintA       common.Address
	TokenMintB       common.Address
	TickSpacing      uint16
	InitialSqrtPrice uint128.Uint128
	DefaultFeeRate   uint16
}

func (p *Processor) InitializePool(ctx context.Context, params InitializePoolParams) (common.Hash, error) {
	key := pda.Pool(params.Config, params.TokenMintA, params.TokenMintB, params.TickSpacing)
	err := p.apply(ctx, "initialize_pool", func(b *store.Batch) error {
		config, err := p.store.Config(ctx, params.Config)
		if err != nil {
			return err
		}
		found, err := exists(p.store.Pool(ctx, key))
		if err != nil {
			return err
		}
		if found {
			return errcode.AlreadyInitialized
		}

		var pl pool.Pool
		vaultA := pda.Vault(key, params.TokenMintA)
		vaultB := pda.Vault(key, params.TokenMintB)
		if err := pl.Initialize(key, config, params.TickSpacing, params.InitialSqrtPrice, params.DefaultFeeRate,
			params.TokenMintA, vaultA, params.TokenMintB, vaultB); err != nil {
			return err
		}

		for _, mint := range []common.Address{params.TokenMintA, params.TokenMintB} {
			supported, err := p.ledger.IsSupported(config.Key, mint)
			if err != nil {
				return err
			}
			if !supported {
				return errcode.UnsupportedTokenMint
			}
		}
		if err := p.ledger.OpenAccount(vaultA, params.TokenMintA, poolAuthority(key)); err != nil {
			return err
		}
		if err := p.ledger.OpenAccount(vaultB, params.TokenMintB, poolAuthority(key)); err != nil {
			return err
		}

		b.PutPool(pl)
		p.log.Debug("pool initialized",
			zap.Stringer("pool", key),
			zap.Uint16("tick_spacing", pl.TickSpacing),
			zap.Int32("tick", pl.TickCurrentIndex),
			zap.Stringer("sqrt_price", pl.SqrtPrice),
		)
		return nil
	})
	if err != nil {
		return common.Hash{}, err
	}
	return key, nil
}

func (p *Processor) InitializeTickArray(ctx context.Context, poolKey common.Hash, startTickIndex int32) (common.Hash, error) {
	key := pda.TickArray(poolKey, startTickIndex)
	err := p.apply(ctx, "initialize_tick_array", func(b *store.Batch) error {
		pl, err := p.store.Pool(ctx, poolKey)
		if err != nil {
			return err
		}
		found, err := exists(p.store.TickArray(ctx, key))
		if err != nil {
			return err
		}
		if found {
			return errcode.AlreadyInitialized
		}
		ta, err := tick.NewTickArray(poolKey, startTickIndex, pl.TickSpacing)
		if err != nil {
			return err
		}
		b.PutTickArray(key, *ta)
		return nil
	})
	if err != nil {
		return common.Hash{}, err
	}
	return key, nil
}

// InitializeTickArraysFor creates every missing array that ticks fall into.
func (p *Processor) InitializeTickArraysFor(ctx context.Context, poolKey common.Hash, ticks ...int32) error {
	pl, err := p.store.Pool(ctx, poolKey)
	if err != nil {
		return err
	}
	for _, t := range ticks {
		start, ok := tick.StartTickIndex(t, pl.TickSpacing, 0)
		if !ok {
			return fmt.Errorf("tick %d: %w", t, errcode.InvalidTickIndex)
		}
		found, err := exists(p.store.TickArray(ctx, pda.TickArray(poolKey, start)))
		if err != nil {
			return err
		}
		if found {
			continue
		}
		if _, err := p.InitializeTickArray(ctx, poolKey, start); err != nil {
			return err
		}
	}
	return nil
}

func (p *Processor) SetFeeRate(ctx context.Context, poolKey common.Hash, feeRate uint16) error {
	return p.updatePool(ctx, "set_fee_rate", poolKey, func(pl *pool.Pool) error {
		return pl.UpdateFeeRate(feeRate)
	})
}

func (p *Processor) SetProtocolFeeRate(ctx context.Context, poolKey common.Hash, protocolFeeRate uint16) error {
	return p.updatePool(ctx, "set_protocol_fee_rate", poolKey, func(pl *pool.Pool) error {
		return pl.UpdateProtocolFeeRate(protocolFeeRate)
	})
}

func (p *Processor) updatePool(ctx context.Context, name string, poolKey common.Hash, fn func(*pool.Pool) error) error {
	return p.apply(ctx, name, func(b *store.Batch) error {
		pl, err := p.store.Pool(ctx, poolKey)
		if err != nil {
			return err
		}
		if err := fn(&pl); err != nil {
			return err
		}
		b.PutPool(pl)
		return nil
	})
}

// CollectProtocolFees pays the protocol fees owed by a pool to recipient.
func (p *Processor) CollectProtocolFees(ctx context.Context, poolKey common.Hash, recipient common.Address) (amountA, amountB uint64, err error) {
	err = p.apply(ctx, "collect_protocol_fees", func(b *store.Batch) error {
		pl, err := p.store.Pool(ctx, poolKey)
		if err != nil {
			return err
		}
		amountA, amountB = pl.ProtocolFeeOwedA, pl.ProtocolFeeOwedB
		if err := p.payOut(pl.TokenVaultA, recipient, pl.TokenMintA, amountA); err != nil {
			return err
		}
		if err := p.payOut(pl.TokenVaultB, recipient, pl.TokenMintB, amountB); err != nil {
			return err
		}
		pl.ResetProtocolFeesOwed()
		b.PutPool(pl)
		return nil
	})
	return amountA, amountB, err
}

// payOut moves amount of mint from a pool vault to owner's account.
func (p *Processor) payOut(vault, owner, mint common.Address, amount uint64) error {
	to, err := p.ownerAccount(owner, mint)
	if err != nil {
		return err
	}
	return p.ledger.Transfer(vault, to, amount)
}

// payIn moves amount of mint from owner's account into a pool vault.
func (p *Processor) payIn(owner, vault, mint common.Address, amount uint64) error {
	from, err := p.ownerAccount(owner, mint)
	if err != nil {
		return err
	}
	return p.ledger.Transfer(from, vault, amount)
}

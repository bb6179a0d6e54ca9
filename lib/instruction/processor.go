// Package instruction is the boundary of the pool state machine. A
// Processor loads the records an instruction touches, runs the managers on
// copies, enforces slippage thresholds and moves tokens. The store writes and
// the token movements of one instruction land together or not at all.
package instruction

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ftchann/yevefi-simulator/lib/pda"
	"github.com/ftchann/yevefi-simulator/lib/pool"
	"github.com/ftchann/yevefi-simulator/lib/position"
	"github.com/ftchann/yevefi-simulator/lib/store"
	"github.com/ftchann/yevefi-simulator/lib/tick"
	"github.com/ftchann/yevefi-simulator/lib/token"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// ErrMissingPositionToken is returned when the caller does not hold the
// ownership token of the position it acts on.
var ErrMissingPositionToken = errors.New("position token not held by caller")

type Processor struct {
	mu     sync.Mutex
	store  store.Store
	ledger *token.Ledger
	log    *zap.Logger
}

func NewProcessor(s store.Store, ledger *token.Ledger, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{store: s, ledger: ledger, log: logger}
}

func (p *Processor) Store() store.Store {
	return p.store
}

func (p *Processor) Ledger() *token.Ledger {
	return p.ledger
}

// apply runs one instruction. fn stages record writes into the batch and
// moves tokens on the ledger; if fn or the commit fails, the ledger is
// rolled back and nothing is written.
func (p *Processor) apply(ctx context.Context, name string, fn func(b *store.Batch) error) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	checkpoint := p.ledger.Checkpoint()
	b := store.NewBatch()
	if err := fn(b); err != nil {
		p.ledger.Revert(checkpoint)
		return fmt.Errorf("%s: %w", name, err)
	}
	if err := p.store.Commit(ctx, b); err != nil {
		p.ledger.Revert(checkpoint)
		return fmt.Errorf("%s: commit: %w", name, err)
	}
	p.ledger.Release(checkpoint)
	return nil
}

// poolAuthority owns the vaults of a pool.
func poolAuthority(key common.Hash) common.Address {
	return common.BytesToAddress(key.Bytes())
}

// ownerAccount returns owner's account for mint, opening it if needed.
func (p *Processor) ownerAccount(owner, mint common.Address) (common.Address, error) {
	addr := pda.AssociatedTokenAccount(owner, mint)
	if err := p.ledger.OpenAccount(addr, mint, owner); err != nil {
		return common.Address{}, err
	}
	return addr, nil
}

func (p *Processor) transferFee(mint common.Address) (token.TransferFee, error) {
	return p.ledger.TransferFee(mint)
}

// exists turns a store lookup into found or not found. Errors other than
// ErrNotFound pass through.
func exists[T any](_ T, err error) (bool, error) {
	if err == nil {
		return true, nil
	}
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	return false, err
}

// positionScope holds the records one position instruction works on.
type positionScope struct {
	key      common.Hash
	pool     pool.Pool
	position position.Position
	lowerKey common.Hash
	upperKey common.Hash
	lower    *tick.TickArray
	upper    *tick.TickArray
}

func (p *Processor) loadPosition(ctx context.Context, key common.Hash) (*positionScope, error) {
	pos, err := p.store.Position(ctx, key)
	if err != nil {
		return nil, err
	}
	pl, err := p.store.Pool(ctx, pos.Pool)
	if err != nil {
		return nil, err
	}
	s := &positionScope{key: key, pool: pl, position: pos}

	lowerStart, _ := tick.StartTickIndex(pos.TickLowerIndex, pl.TickSpacing, 0)
	upperStart, _ := tick.StartTickIndex(pos.TickUpperIndex, pl.TickSpacing, 0)
	s.lowerKey = pda.TickArray(pos.Pool, lowerStart)
	s.upperKey = pda.TickArray(pos.Pool, upperStart)

	lower, err := p.store.TickArray(ctx, s.lowerKey)
	if err != nil {
		return nil, fmt.Errorf("lower tick array %d: %w", lowerStart, err)
	}
	s.lower = &lower
	if s.upperKey == s.lowerKey {
		// both bounds share one array and must see each other's writes
		s.upper = s.lower
		return s, nil
	}
	upper, err := p.store.TickArray(ctx, s.upperKey)
	if err != nil {
		return nil, fmt.Errorf("upper tick array %d: %w", upperStart, err)
	}
	s.upper = &upper
	return s, nil
}

func (s *positionScope) stage(b *store.Batch) {
	b.PutPool(s.pool)
	b.PutPosition(s.key, s.position)
	b.PutTickArray(s.lowerKey, *s.lower)
	b.PutTickArray(s.upperKey, *s.upper)
}

// checkPositionAuthority requires owner to hold the ownership token of pos.
func (p *Processor) checkPositionAuthority(pos *position.Position, owner common.Address) error {
	acct, ok := p.ledger.Account(pda.AssociatedTokenAccount(owner, pos.PositionMint))
	if !ok || acct.Owner != owner || acct.Mint != pos.PositionMint || acct.Amount != 1 {
		return ErrMissingPositionToken
	}
	return nil
}

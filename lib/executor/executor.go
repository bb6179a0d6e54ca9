// Package executor replays a transaction script against a fresh world and
// optionally runs a liquidity strategy alongside it.
package executor

import (
	"context"
	"errors"
	"fmt"

	"github.com/ftchann/yevefi-simulator/lib/instruction"
	"github.com/ftchann/yevefi-simulator/lib/pda"
	"github.com/ftchann/yevefi-simulator/lib/pool"
	"github.com/ftchann/yevefi-simulator/lib/result"
	"github.com/ftchann/yevefi-simulator/lib/storage"
	"github.com/ftchann/yevefi-simulator/lib/store"
	strat "github.com/ftchann/yevefi-simulator/lib/strategy"
	ent "github.com/ftchann/yevefi-simulator/lib/transaction"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// ErrMismatch is returned when a replayed instruction moves other amounts
// than the script recorded.
var ErrMismatch = errors.New("replayed amounts differ from recorded amounts")

const snapshotBatchSize = 500

// StrategyFactory builds the strategy once its pool exists.
type StrategyFactory func(proc *instruction.Processor, poolKey common.Hash) strat.Strategy

type Config struct {
	ConfigKey              common.Hash
	DefaultProtocolFeeRate uint16
	// ledger epoch = timestamp / EpochSeconds; selects transfer fee schedules
	EpochSeconds uint64
	StopOnError  bool

	Strategy         StrategyFactory
	StrategyName     string
	StrategyPool     string
	StartTime        uint64
	UpdateInterval   uint64
	SnapshotInterval uint64
}

type Execution struct {
	cfg     Config
	proc    *instruction.Processor
	storage storage.Storage
	log     *zap.Logger

	pools    map[string]common.Hash
	strategy strat.Strategy
	started  bool

	nextUpdate   uint64
	nextSnapshot uint64
	summary      result.Summary
}

func CreateExecution(cfg Config, proc *instruction.Processor, sink storage.Storage, logger *zap.Logger) *Execution {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.EpochSeconds == 0 {
		cfg.EpochSeconds = 1
	}
	return &Execution{
		cfg:     cfg,
		proc:    proc,
		storage: sink,
		log:     logger,
		pools:   make(map[string]common.Hash),
	}
}

// Pool resolves a pool label used by the script.
func (e *Execution) Pool(label string) (common.Hash, bool) {
	key, ok := e.pools[label]
	return key, ok
}

// Run applies every transaction in order. A failed instruction is recorded
// in its snapshot and the replay goes on unless StopOnError is set; a
// mismatch against recorded amounts always stops it.
func (e *Execution) Run(ctx context.Context, transactions []ent.Transaction) (result.Summary, error) {
	if err := e.ensureConfig(ctx); err != nil {
		return e.summary, err
	}
	e.summary.Strategy = e.cfg.StrategyName
	if len(transactions) > 0 {
		e.summary.StartTime = transactions[0].Timestamp
	}
	e.log.Info("replay started", zap.Int("instructions", len(transactions)), zap.String("strategy", e.cfg.StrategyName))

	snapshots := make([]result.Snapshot, 0, snapshotBatchSize)
	flush := func() error {
		if err := e.storage.PutSnapshots(snapshots); err != nil {
			return fmt.Errorf("store snapshots: %w", err)
		}
		snapshots = snapshots[:0]
		return nil
	}

	var last uint64
	for i, trans := range transactions {
		if err := ctx.Err(); err != nil {
			return e.summary, err
		}
		last = trans.Timestamp
		e.proc.Ledger().SetEpoch(trans.Timestamp / e.cfg.EpochSeconds)

		if err := e.runStrategy(ctx, trans.Timestamp); err != nil {
			return e.summary, fmt.Errorf("strategy at %d: %w", trans.Timestamp, err)
		}

		snapshot, err := e.step(ctx, i, trans)
		snapshots = append(snapshots, snapshot)
		e.summary.Instructions++
		if err != nil {
			e.summary.Failed++
			e.log.Warn("instruction failed",
				zap.Int("index", i),
				zap.String("id", trans.ID),
				zap.String("type", string(trans.Type)),
				zap.Error(err),
			)
			if e.cfg.StopOnError || errors.Is(err, ErrMismatch) {
				if flushErr := flush(); flushErr != nil {
					return e.summary, errors.Join(err, flushErr)
				}
				return e.summary, fmt.Errorf("instruction %d (%s): %w", i, trans.Type, err)
			}
		} else {
			e.summary.Applied++
		}
		if len(snapshots) == snapshotBatchSize {
			if err := flush(); err != nil {
				return e.summary, err
			}
		}
	}
	if err := flush(); err != nil {
		return e.summary, err
	}

	if e.strategy != nil {
		amountA, amountB, err := e.strategy.BurnAll(ctx, last)
		if err != nil {
			return e.summary, fmt.Errorf("strategy burn all: %w", err)
		}
		e.summary.EndAmountA, e.summary.EndAmountB = amountA, amountB
	}
	e.summary.EndTime = last
	if err := e.storage.PutSummary(e.summary); err != nil {
		return e.summary, fmt.Errorf("store summary: %w", err)
	}
	e.log.Info("replay finished",
		zap.Int("applied", e.summary.Applied),
		zap.Int("failed", e.summary.Failed),
		zap.Int("rebalances", e.summary.Rebalances),
	)
	return e.summary, nil
}

func (e *Execution) ensureConfig(ctx context.Context) error {
	_, err := e.proc.Store().Config(ctx, e.cfg.ConfigKey)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}
	return e.proc.InitializeConfig(ctx, pool.Config{
		Key:                    e.cfg.ConfigKey,
		DefaultProtocolFeeRate: e.cfg.DefaultProtocolFeeRate,
	})
}

// runStrategy starts, observes and rebalances the strategy before the
// instruction at timestamp is applied.
func (e *Execution) runStrategy(ctx context.Context, timestamp uint64) error {
	if e.cfg.Strategy == nil {
		return nil
	}
	if !e.started {
		poolKey, ok := e.pools[e.cfg.StrategyPool]
		if !ok || timestamp < e.cfg.StartTime {
			return nil
		}
		e.strategy = e.cfg.Strategy(e.proc, poolKey)
		// observe before Init so price-based ranges have a first sample
		if err := e.strategy.MakeSnapshot(ctx); err != nil {
			return err
		}
		amountA, amountB, err := e.strategy.Init(ctx, timestamp)
		if err != nil {
			return err
		}
		e.summary.StartAmountA, e.summary.StartAmountB = amountA, amountB
		e.nextUpdate = timestamp + e.cfg.UpdateInterval
		e.nextSnapshot = timestamp + e.cfg.SnapshotInterval
		e.started = true
		return nil
	}

	if e.cfg.SnapshotInterval > 0 && timestamp >= e.nextSnapshot {
		if err := e.strategy.MakeSnapshot(ctx); err != nil {
			return err
		}
		e.nextSnapshot = timestamp + e.cfg.SnapshotInterval
	}
	if e.cfg.UpdateInterval > 0 && timestamp >= e.nextUpdate {
		amountA, amountB, err := e.strategy.Rebalance(ctx, timestamp)
		if err != nil {
			return err
		}
		e.summary.Rebalances++
		e.nextUpdate = timestamp + e.cfg.UpdateInterval
		e.log.Debug("strategy rebalanced",
			zap.Uint64("timestamp", timestamp),
			zap.Uint64("amount_a", amountA),
			zap.Uint64("amount_b", amountB),
		)
	}
	return nil
}

func (e *Execution) step(ctx context.Context, index int, trans ent.Transaction) (result.Snapshot, error) {
	snapshot := result.Snapshot{
		Index:     index,
		ID:        trans.ID,
		Type:      string(trans.Type),
		Timestamp: trans.Timestamp,
	}
	amounts, err := e.apply(ctx, trans)
	if err == nil && trans.Expect != nil && amounts != *trans.Expect {
		err = fmt.Errorf("%w: want a=%d b=%d, got a=%d b=%d", ErrMismatch,
			trans.Expect.AmountA, trans.Expect.AmountB, amounts.AmountA, amounts.AmountB)
	}
	snapshot.AmountA, snapshot.AmountB = amounts.AmountA, amounts.AmountB
	if err != nil {
		snapshot.SetError(err)
	}
	if poolKey, ok := e.pools[trans.Pool]; ok {
		pl, loadErr := e.proc.Store().Pool(ctx, poolKey)
		if loadErr != nil {
			return snapshot, errors.Join(err, loadErr)
		}
		snapshot.SetPool(pl)
	}
	return snapshot, err
}

func (e *Execution) poolKey(label string) (common.Hash, error) {
	key, ok := e.pools[label]
	if !ok {
		return common.Hash{}, fmt.Errorf("unknown pool %q", label)
	}
	return key, nil
}

func (e *Execution) positionKey(trans ent.Transaction) (common.Hash, error) {
	poolKey, err := e.poolKey(trans.Pool)
	if err != nil {
		return common.Hash{}, err
	}
	return pda.Position(pda.PositionMint(poolKey, pda.Wallet(trans.Owner), trans.Position)), nil
}

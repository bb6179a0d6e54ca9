package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/ftchann/yevefi-simulator/lib/config"
	"github.com/ftchann/yevefi-simulator/lib/executor"
	"github.com/ftchann/yevefi-simulator/lib/instruction"
	"github.com/ftchann/yevefi-simulator/lib/pda"
	"github.com/ftchann/yevefi-simulator/lib/storage"
	"github.com/ftchann/yevefi-simulator/lib/store"
	"github.com/ftchann/yevefi-simulator/lib/store/postgres"
	strat "github.com/ftchann/yevefi-simulator/lib/strategy"
	"github.com/ftchann/yevefi-simulator/lib/tickmath"
	"github.com/ftchann/yevefi-simulator/lib/token"
	ent "github.com/ftchann/yevefi-simulator/lib/transaction"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"lukechampine.com/uint128"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "yevefi",
		Short:        "Concentrated liquidity pool simulator",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	replayCmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay a transaction script and write pool snapshots",
		RunE:  runReplay,
	}
	addReplayFlags(replayCmd)
	replayCmd.Flags().String("out", "./data/snapshots.jsonl", "output snapshots JSONL")
	replayCmd.Flags().String("pg-dsn", "", "Postgres DSN for world state (in-memory when empty)")
	replayCmd.Flags().String("strategy", "none", "strategy (none, hold, constant, current, swap-half, average, volatility, bollinger, limit-order, two-interval, fill-up)")
	replayCmd.Flags().String("strategy-owner", "strategy", "wallet name the strategy trades from")
	replayCmd.Flags().String("strategy-pool", "main", "pool label the strategy provides to")
	replayCmd.Flags().Int32("strategy-width", 1000, "interval width in ticks")
	replayCmd.Flags().Int32("strategy-limit-width", 500, "width in ticks of the second range of the two-interval strategy")
	replayCmd.Flags().Int("strategy-window", 24, "observations kept by the average, volatility and bollinger strategies")
	replayCmd.Flags().Uint32("strategy-multiplier", 256, "volatility multiplier as x/256")
	replayCmd.Flags().Uint64("start-timestamp", 0, "timestamp the strategy enters the pool")
	replayCmd.Flags().Uint64("update-interval", 86_400, "seconds between rebalances")
	replayCmd.Flags().Uint64("observe-interval", 3_600, "seconds between price observations")
	root.AddCommand(replayCmd)

	quoteCmd := &cobra.Command{
		Use:   "quote",
		Short: "Replay a transaction script, then quote a swap against the final state",
		RunE:  runQuote,
	}
	addReplayFlags(quoteCmd)
	quoteCmd.Flags().String("pool", "main", "pool label to quote against")
	quoteCmd.Flags().Uint64("amount", 0, "swap amount")
	quoteCmd.Flags().Bool("a-to-b", true, "swap token A for token B")
	quoteCmd.Flags().Bool("exact-out", false, "amount is the exact output")
	root.AddCommand(quoteCmd)

	tickCmd := &cobra.Command{
		Use:   "tick [tick-index | sqrt-price]",
		Short: "Convert between tick indexes and Q64.64 sqrt prices",
		Args:  cobra.ExactArgs(1),
		RunE:  runTick,
	}
	tickCmd.Flags().Bool("sqrt-price", false, "argument is a sqrt price")
	root.AddCommand(tickCmd)

	return root
}

func addReplayFlags(cmd *cobra.Command) {
	cmd.Flags().String("in", "./data/script.json", "input transaction script (JSON array)")
	cmd.Flags().String("config-key", "default", "label of the pools config account")
	cmd.Flags().Uint16("default-protocol-fee-rate", 300, "protocol fee rate of a created config")
	cmd.Flags().Uint64("epoch-seconds", 432_000, "seconds per transfer fee epoch")
	cmd.Flags().Bool("stop-on-error", false, "stop at the first failed instruction")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
}

func runReplay(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	transactions, err := readScript(cfg.In)
	if err != nil {
		return err
	}

	var world store.Store = store.NewMemStore()
	if cfg.PgDSN != "" {
		pg, err := postgres.NewStore(ctx, cfg.PgDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pg.Close()
		if err := pg.Migrate(ctx); err != nil {
			return err
		}
		if err := pg.Reset(ctx); err != nil {
			return err
		}
		world = pg
	}

	factory, err := newStrategyFactory(cfg)
	if err != nil {
		return err
	}

	proc := instruction.NewProcessor(world, token.NewLedger(), logger)
	exec := executor.CreateExecution(executionConfig(cfg, factory), proc, storage.NewJsonlStorage(cfg.Out), logger)

	summary, err := exec.Run(ctx, transactions)
	if err != nil {
		return err
	}
	logger.Info("snapshots written",
		zap.String("out", cfg.Out),
		zap.Int("applied", summary.Applied),
		zap.Int("failed", summary.Failed),
	)
	return nil
}

func runQuote(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	label, _ := cmd.Flags().GetString("pool")
	amount, _ := cmd.Flags().GetUint64("amount")
	aToB, _ := cmd.Flags().GetBool("a-to-b")
	exactOut, _ := cmd.Flags().GetBool("exact-out")

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	transactions, err := readScript(cfg.In)
	if err != nil {
		return err
	}

	proc := instruction.NewProcessor(store.NewMemStore(), token.NewLedger(), logger)
	exec := executor.CreateExecution(executionConfig(cfg, nil), proc, &storage.MemoryStorage{}, logger)
	if _, err := exec.Run(ctx, transactions); err != nil {
		return err
	}

	poolKey, ok := exec.Pool(label)
	if !ok {
		return fmt.Errorf("unknown pool %q", label)
	}
	p, err := proc.Store().Pool(ctx, poolKey)
	if err != nil {
		return err
	}

	limit := tickmath.MinSqrtPriceX64
	if !aToB {
		limit = tickmath.MaxSqrtPriceX64
	}
	threshold := uint64(0)
	if exactOut {
		threshold = ^uint64(0)
	}
	quote, err := proc.Quote(ctx, instruction.SwapParams{
		Pool:                   poolKey,
		Amount:                 amount,
		OtherAmountThreshold:   threshold,
		SqrtPriceLimit:         limit,
		AmountSpecifiedIsInput: !exactOut,
		AToB:                   aToB,
		Timestamp:              p.RewardLastUpdatedTimestamp,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "amount_a=%d amount_b=%d tick=%d sqrt_price=%s\n",
		quote.AmountA, quote.AmountB, quote.TickIndex, quote.SqrtPrice)
	return nil
}

func runTick(cmd *cobra.Command, args []string) error {
	isPrice, _ := cmd.Flags().GetBool("sqrt-price")
	out := cmd.OutOrStdout()
	if isPrice {
		sqrtPrice, err := uint128.FromString(args[0])
		if err != nil {
			return fmt.Errorf("parse sqrt price: %w", err)
		}
		if err := tickmath.CheckSqrtPrice(sqrtPrice); err != nil {
			return err
		}
		fmt.Fprintln(out, tickmath.TickIndexFromSqrtPrice(sqrtPrice))
		return nil
	}
	tickIndex, err := strconv.ParseInt(args[0], 10, 32)
	if err != nil {
		return fmt.Errorf("parse tick index: %w", err)
	}
	if err := tickmath.CheckTickIndex(int32(tickIndex)); err != nil {
		return err
	}
	fmt.Fprintln(out, tickmath.SqrtPriceFromTickIndex(int32(tickIndex)))
	return nil
}

func readScript(path string) ([]ent.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open script: %w", err)
	}
	defer f.Close()
	return ent.Decode(f)
}

func executionConfig(cfg config.Config, factory executor.StrategyFactory) executor.Config {
	ec := executor.Config{
		ConfigKey:              pda.Config(cfg.ConfigKey),
		DefaultProtocolFeeRate: cfg.DefaultProtocolFeeRate,
		EpochSeconds:           cfg.EpochSeconds,
		StopOnError:            cfg.StopOnError,
	}
	if factory != nil {
		ec.Strategy = factory
		ec.StrategyName = cfg.Strategy
		ec.StrategyPool = cfg.StrategyPool
		ec.StartTime = cfg.StartTimestamp
		ec.UpdateInterval = cfg.UpdateInterval
		ec.SnapshotInterval = cfg.ObserveInterval
	}
	return ec
}

// newStrategyFactory returns nil for "none": the replay then runs without
// a liquidity provider of its own.
func newStrategyFactory(cfg config.Config) (executor.StrategyFactory, error) {
	owner := pda.Wallet(cfg.StrategyOwner)
	switch cfg.Strategy {
	case "", "none":
		return nil, nil
	case "hold":
		return func(proc *instruction.Processor, poolKey common.Hash) strat.Strategy {
			return strat.NewNoProvisionStrategy(proc, poolKey, owner)
		}, nil
	case "constant":
		return func(proc *instruction.Processor, poolKey common.Hash) strat.Strategy {
			return strat.NewConstantIntervallStrategy(proc, poolKey, owner, cfg.StrategyWidth)
		}, nil
	case "current":
		return func(proc *instruction.Processor, poolKey common.Hash) strat.Strategy {
			return strat.NewIntervalAroundPriceStrategy(proc, poolKey, owner, cfg.StrategyWidth)
		}, nil
	case "swap-half":
		return func(proc *instruction.Processor, poolKey common.Hash) strat.Strategy {
			return strat.NewIntervalAroundPriceAndSwapStrategy(proc, poolKey, owner, cfg.StrategyWidth)
		}, nil
	case "average":
		return func(proc *instruction.Processor, poolKey common.Hash) strat.Strategy {
			return strat.NewIntervalAroundAverageStrategy(proc, poolKey, owner, cfg.StrategyWidth, cfg.StrategyWindow)
		}, nil
	case "volatility":
		return func(proc *instruction.Processor, poolKey common.Hash) strat.Strategy {
			return strat.NewVolatilitySizedIntervalStrategy(proc, poolKey, owner, cfg.StrategyWindow, cfg.StrategyMultiplier)
		}, nil
	case "bollinger":
		return func(proc *instruction.Processor, poolKey common.Hash) strat.Strategy {
			return strat.NewBollingerBandsStrategy(proc, poolKey, owner, cfg.StrategyWindow, cfg.StrategyMultiplier)
		}, nil
	case "limit-order":
		return func(proc *instruction.Processor, poolKey common.Hash) strat.Strategy {
			return strat.NewLimitOrderStrategy(proc, poolKey, owner, cfg.StrategyWidth)
		}, nil
	case "two-interval":
		return func(proc *instruction.Processor, poolKey common.Hash) strat.Strategy {
			return strat.NewTwoIntervalAroundPriceStrategy(proc, poolKey, owner, cfg.StrategyWidth, cfg.StrategyLimitWidth)
		}, nil
	case "fill-up":
		return func(proc *instruction.Processor, poolKey common.Hash) strat.Strategy {
			return strat.NewFillUpStrategy(proc, poolKey, owner, cfg.StrategyWidth)
		}, nil
	default:
		return nil, fmt.Errorf("unknown strategy %q", cfg.Strategy)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	In                     string
	Out                    string
	PgDSN                  string
	LogLevel               string
	ConfigKey              string
	DefaultProtocolFeeRate uint16
	StartTimestamp         uint64
	EpochSeconds           uint64
	Strategy               string
	StrategyOwner          string
	StrategyPool           string
	StrategyWidth          int32
	StrategyLimitWidth     int32
	StrategyWindow         int
	StrategyMultiplier     uint32
	UpdateInterval         uint64
	ObserveInterval        uint64
	StopOnError            bool
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("YEVEFI")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("in", "./data/script.json")
	v.SetDefault("out", "./data/snapshots.jsonl")
	v.SetDefault("log-level", "info")
	v.SetDefault("config-key", "default")
	v.SetDefault("default-protocol-fee-rate", 300)
	v.SetDefault("epoch-seconds", 432_000)
	v.SetDefault("strategy", "none")
	v.SetDefault("strategy-owner", "strategy")
	v.SetDefault("strategy-pool", "main")
	v.SetDefault("strategy-width", 1_000)
	v.SetDefault("strategy-limit-width", 500)
	v.SetDefault("strategy-window", 24)
	v.SetDefault("strategy-multiplier", 256)
	v.SetDefault("update-interval", 86_400)
	v.SetDefault("observe-interval", 3_600)

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	protocolFeeRate := v.GetUint("default-protocol-fee-rate")
	if protocolFeeRate > 0xffff {
		return Config{}, fmt.Errorf("default-protocol-fee-rate %d out of range", protocolFeeRate)
	}
	epochSeconds := v.GetUint64("epoch-seconds")
	if epochSeconds == 0 {
		return Config{}, fmt.Errorf("epoch-seconds must be positive")
	}

	cfg := Config{
		In:                     v.GetString("in"),
		Out:                    v.GetString("out"),
		PgDSN:                  v.GetString("pg-dsn"),
		LogLevel:               v.GetString("log-level"),
		ConfigKey:              v.GetString("config-key"),
		DefaultProtocolFeeRate: uint16(protocolFeeRate),
		StartTimestamp:         v.GetUint64("start-timestamp"),
		EpochSeconds:           epochSeconds,
		Strategy:               v.GetString("strategy"),
		StrategyOwner:          v.GetString("strategy-owner"),
		StrategyPool:           v.GetString("strategy-pool"),
		StrategyWidth:          v.GetInt32("strategy-width"),
		StrategyLimitWidth:     v.GetInt32("strategy-limit-width"),
		StrategyWindow:         v.GetInt("strategy-window"),
		StrategyMultiplier:     v.GetUint32("strategy-multiplier"),
		UpdateInterval:         v.GetUint64("update-interval"),
		ObserveInterval:        v.GetUint64("observe-interval"),
		StopOnError:            v.GetBool("stop-on-error"),
	}

	return cfg, nil
}

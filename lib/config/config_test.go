package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	cfg, err := Load("", nil)
	require.NoError(t, err)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, uint16(300), cfg.DefaultProtocolFeeRate)
	require.Equal(t, uint64(432_000), cfg.EpochSeconds)
	require.Equal(t, "none", cfg.Strategy)
	require.Equal(t, "main", cfg.StrategyPool)
	require.Equal(t, int32(500), cfg.StrategyLimitWidth)
	require.Empty(t, cfg.PgDSN)
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "yevefi.yaml")
	require.NoError(t, os.WriteFile(path, []byte("out: from-file.jsonl\nlog-level: warn\nstrategy-width: 640\n"), 0o644))
	t.Setenv("YEVEFI_LOG_LEVEL", "debug")
	t.Setenv("YEVEFI_PG_DSN", "postgres://localhost/yevefi")

	flags := pflag.NewFlagSet("replay", pflag.ContinueOnError)
	flags.String("in", "", "")
	require.NoError(t, flags.Parse([]string{"--in", "script.json"}))

	cfg, err := Load(path, flags)
	require.NoError(t, err)
	require.Equal(t, "script.json", cfg.In)
	require.Equal(t, "from-file.jsonl", cfg.Out)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, "postgres://localhost/yevefi", cfg.PgDSN)
	require.Equal(t, int32(640), cfg.StrategyWidth)
}

func TestLoadRejectsZeroEpoch(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("YEVEFI_EPOCH_SECONDS", "0")
	_, err := Load("", nil)
	require.Error(t, err)
}

// chdir keeps Load away from a config.yaml in the package directory.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

package storage

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/ftchann/yevefi-simulator/lib/result"

	"github.com/stretchr/testify/require"
)

func TestJsonlStorageAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "snapshots.jsonl")
	s := NewJsonlStorage(path)

	require.NoError(t, s.PutSnapshots(nil))
	require.NoError(t, s.PutSnapshots([]result.Snapshot{
		{Index: 0, Type: "initialize_pool", SqrtPrice: "18446744073709551616"},
		{Index: 1, Type: "swap", TickCurrentIndex: -20, AmountA: 1_000_000, AmountB: 996_006},
	}))
	require.NoError(t, s.PutSummary(result.Summary{Instructions: 2, Applied: 2}))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	var lines []map[string]any
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var line map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &line))
		lines = append(lines, line)
	}
	require.NoError(t, scanner.Err())
	require.Len(t, lines, 3)
	require.Equal(t, "swap", lines[1]["type"])
	require.Equal(t, float64(-20), lines[1]["tick"])
	require.Equal(t, float64(2), lines[2]["applied"])
}

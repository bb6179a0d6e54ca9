package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/ftchann/yevefi-simulator/lib/pool"
	"github.com/ftchann/yevefi-simulator/lib/position"
	"github.com/ftchann/yevefi-simulator/lib/store"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
	"lukechampine.com/uint128"
)

// Runs against a live database only when YEVEFI_TEST_PG_DSN is set.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("YEVEFI_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("YEVEFI_TEST_PG_DSN not set")
	}
	ctx := context.Background()
	s, err := NewStore(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	require.NoError(t, s.Migrate(ctx))
	return s
}

func TestNewStoreRequiresDSN(t *testing.T) {
	_, err := NewStore(context.Background(), "")
	require.Error(t, err)
}

func TestCommitAndLoad(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	key := common.HexToHash("0x5eed")
	p := pool.Pool{Key: key, TickSpacing: 64, FeeRate: 3000, SqrtPrice: uint128.New(0, 1), Liquidity: uint128.Max}
	pos := position.Position{Pool: key, TickLowerIndex: -128, TickUpperIndex: 128}

	b := store.NewBatch()
	b.PutPool(p)
	b.PutPosition(common.HexToHash("0x1"), pos)
	require.NoError(t, s.Commit(ctx, b))

	got, err := s.Pool(ctx, key)
	require.NoError(t, err)
	require.Equal(t, p, got)

	b = store.NewBatch()
	b.DeletePosition(common.HexToHash("0x1"))
	require.NoError(t, s.Commit(ctx, b))
	_, err = s.Position(ctx, common.HexToHash("0x1"))
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestReset(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	key := common.HexToHash("0x5eee")
	b := store.NewBatch()
	b.PutPool(pool.Pool{Key: key, TickSpacing: 1})
	require.NoError(t, s.Commit(ctx, b))

	require.NoError(t, s.Reset(ctx))
	_, err := s.Pool(ctx, key)
	require.ErrorIs(t, err, store.ErrNotFound)
}

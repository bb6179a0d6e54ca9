package pda

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestDerivationsAreStable(t *testing.T) {
	config := Config("default")
	require.Equal(t, config, Config("default"))
	require.NotEqual(t, config, Config("other"))

	mintA, mintB := Mint("SOL"), Mint("USDC")
	pool := Pool(config, mintA, mintB, 64)
	require.Equal(t, pool, Pool(config, mintA, mintB, 64))
	require.NotEqual(t, pool, Pool(config, mintA, mintB, 128))
	require.NotEqual(t, pool, Pool(config, mintB, mintA, 64))
}

func TestTickArrayKeys(t *testing.T) {
	pool := Pool(Config("default"), Mint("A"), Mint("B"), 64)
	seen := map[common.Hash]int32{}
	for _, start := range []int32{-11264, -5632, 0, 5632, 11264} {
		key := TickArray(pool, start)
		_, dup := seen[key]
		require.False(t, dup)
		seen[key] = start
	}
}

func TestSeedsAreSeparated(t *testing.T) {
	pool := Pool(Config("default"), Mint("A"), Mint("B"), 64)
	alice := Wallet("alice")
	mint := PositionMint(pool, alice, "p1")
	require.NotEqual(t, mint, PositionMint(pool, Wallet("bob"), "p1"))
	require.NotEqual(t, mint, PositionMint(pool, alice, "p2"))
	require.NotEqual(t, Vault(pool, Mint("A")), Vault(pool, Mint("B")))
	require.NotEqual(t, RewardVault(pool, 0), RewardVault(pool, 1))
	require.NotEqual(t, AssociatedTokenAccount(alice, Mint("A")), AssociatedTokenAccount(alice, Mint("B")))
	require.NotEqual(t, Position(mint), TokenBadge(Config("default"), mint))
}

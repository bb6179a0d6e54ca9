package transaction

import (
	"math"
	"strings"
	"testing"

	"github.com/ftchann/yevefi-simulator/lib/tickmath"
	"github.com/ftchann/yevefi-simulator/lib/token"

	"github.com/stretchr/testify/require"
	"lukechampine.com/uint128"
)

const script = `[
  {"type": "create_mint", "symbol": "USDC", "decimals": 6, "transfer_fee_bps": 100, "maximum_fee": "5000"},
  {"type": "initialize_pool", "pool": "main", "mint_a": "SOL", "mint_b": "USDC", "fee_rate": 3000},
  {"type": "increase_liquidity", "timestamp": 10, "pool": "main", "owner": "alice", "position": "p1",
   "liquidity": "340282366920938463463374607431768211455", "threshold_a": "100"},
  {"type": "swap", "timestamp": 20, "pool": "main", "owner": "bob", "amount": "1000000", "a_to_b": true,
   "amount_specified_is_input": true, "expect_a": "1000000", "expect_b": "996006"}
]`

func TestDecodeScript(t *testing.T) {
	txs, err := Decode(strings.NewReader(script))
	require.NoError(t, err)
	require.Len(t, txs, 4)

	mint := txs[0].Mint
	require.Equal(t, token.ProgramExtension, mint.Program)
	require.Equal(t, uint8(6), mint.Decimals)
	require.True(t, mint.HasExtension(token.ExtensionTransferFeeConfig))
	require.Equal(t, uint16(100), mint.TransferFeeConfig.NewerTransferFee.TransferFeeBasisPoints)
	require.Equal(t, uint64(5000), mint.TransferFeeConfig.NewerTransferFee.MaximumFee)

	pool := txs[1]
	require.Equal(t, uint16(64), pool.TickSpacing)
	require.Equal(t, uint128.New(0, 1), pool.SqrtPrice)

	increase := txs[2]
	require.Equal(t, uint128.Max, increase.Liquidity)
	require.Equal(t, uint64(100), increase.ThresholdA)
	require.Equal(t, uint64(math.MaxUint64), increase.ThresholdB)
	require.Nil(t, increase.Expect)

	swap := txs[3]
	require.Equal(t, tickmath.MinSqrtPriceX64, swap.SqrtPriceLimit)
	require.Zero(t, swap.OtherAmountThreshold)
	require.Equal(t, &Expect{AmountA: 1_000_000, AmountB: 996_006}, swap.Expect)
}

func TestParseDefaults(t *testing.T) {
	exactOut, err := Parse(TransactionInput{Type: "swap", Amount: "10"})
	require.NoError(t, err)
	require.Equal(t, uint64(math.MaxUint64), exactOut.OtherAmountThreshold)
	require.Equal(t, tickmath.MaxSqrtPriceX64, exactOut.SqrtPriceLimit)

	decrease, err := Parse(TransactionInput{Type: "decrease_liquidity", Liquidity: "5"})
	require.NoError(t, err)
	require.Zero(t, decrease.ThresholdA)

	atTick, err := Parse(TransactionInput{Type: "initialize_pool", FeeRate: 500, Tick: -64})
	require.NoError(t, err)
	require.Equal(t, uint16(8), atTick.TickSpacing)
	require.Equal(t, tickmath.SqrtPriceFromTickIndex(-64), atTick.SqrtPrice)

	legacy, err := Parse(TransactionInput{Type: "create_mint", Symbol: "SOL"})
	require.NoError(t, err)
	require.Equal(t, token.ProgramLegacy, legacy.Mint.Program)
	require.Nil(t, legacy.Mint.TransferFeeConfig)
}

func TestParseErrors(t *testing.T) {
	for _, in := range []TransactionInput{
		{Type: "flash"},
		{Type: "swap", Amount: "-1"},
		{Type: "swap", Amount: "18446744073709551616"},
		{Type: "increase_liquidity", Liquidity: "340282366920938463463374607431768211456"},
		{Type: "initialize_pool", FeeRate: 42},
		{Type: "initialize_pool", FeeRate: 3000, Tick: 500_000},
		{Type: "create_mint", Extensions: []string{"Unheard"}},
		{Type: "create_mint", Program: "v3"},
	} {
		_, err := Parse(in)
		require.Error(t, err, "%+v", in)
	}
}

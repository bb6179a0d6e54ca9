// Package transaction reads replay scripts. A script is a JSON array of
// instruction records; accounts are referred to by name (wallets, mint
// symbols, pool and position labels) and resolved by the executor.
package transaction

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"

	cons "github.com/ftchann/yevefi-simulator/lib/constants"
	"github.com/ftchann/yevefi-simulator/lib/tickmath"
	"github.com/ftchann/yevefi-simulator/lib/token"

	"lukechampine.com/uint128"
)

type Type string

const (
	CreateMint           Type = "create_mint"
	Fund                 Type = "fund"
	SetTokenBadge        Type = "set_token_badge"
	InitializePool       Type = "initialize_pool"
	InitializeTickArray  Type = "initialize_tick_array"
	InitializeReward     Type = "initialize_reward"
	SetRewardEmissions   Type = "set_reward_emissions"
	SetFeeRate           Type = "set_fee_rate"
	SetProtocolFeeRate   Type = "set_protocol_fee_rate"
	OpenPosition         Type = "open_position"
	IncreaseLiquidity    Type = "increase_liquidity"
	DecreaseLiquidity    Type = "decrease_liquidity"
	UpdateFeesAndRewards Type = "update_fees_and_rewards"
	CollectFees          Type = "collect_fees"
	CollectReward        Type = "collect_reward"
	CollectProtocolFees  Type = "collect_protocol_fees"
	ClosePosition        Type = "close_position"
	Swap                 Type = "swap"
)

var knownTypes = map[Type]bool{
	CreateMint: true, Fund: true, SetTokenBadge: true, InitializePool: true, InitializeTickArray: true,
	InitializeReward: true, SetRewardEmissions: true, SetFeeRate: true, SetProtocolFeeRate: true,
	OpenPosition: true, IncreaseLiquidity: true, DecreaseLiquidity: true, UpdateFeesAndRewards: true,
	CollectFees: true, CollectReward: true, CollectProtocolFees: true, ClosePosition: true, Swap: true,
}

// TransactionInput is one script record as it appears in JSON. Token amounts
// and Q64.64 values are decimal strings.
type TransactionInput struct {
	Type      string `json:"type"`
	ID        string `json:"id,omitempty"`
	Timestamp uint64 `json:"timestamp"`

	Pool     string `json:"pool,omitempty"`
	Owner    string `json:"owner,omitempty"`
	Position string `json:"position,omitempty"`
	Symbol   string `json:"symbol,omitempty"`
	MintA    string `json:"mint_a,omitempty"`
	MintB    string `json:"mint_b,omitempty"`

	Program                string   `json:"program,omitempty"`
	Decimals               uint8    `json:"decimals,omitempty"`
	Extensions             []string `json:"extensions,omitempty"`
	TransferFeeBasisPoints uint16   `json:"transfer_fee_bps,omitempty"`
	MaximumFee             string   `json:"maximum_fee,omitempty"`
	TransferFeeEpoch       uint64   `json:"transfer_fee_epoch,omitempty"`
	FreezeAuthority        string   `json:"freeze_authority,omitempty"`
	Badged                 bool     `json:"badged,omitempty"`

	TickSpacing     uint16 `json:"tick_spacing,omitempty"`
	FeeRate         uint16 `json:"fee_rate,omitempty"`
	ProtocolFeeRate uint16 `json:"protocol_fee_rate,omitempty"`
	SqrtPrice       string `json:"sqrt_price,omitempty"`
	Tick            int32  `json:"tick,omitempty"`
	TickLower       int32  `json:"tick_lower,omitempty"`
	TickUpper       int32  `json:"tick_upper,omitempty"`
	Index           int    `json:"index,omitempty"`

	Amount                 string `json:"amount,omitempty"`
	Liquidity              string `json:"liquidity,omitempty"`
	EmissionsPerSecondX64  string `json:"emissions_per_second_x64,omitempty"`
	ThresholdA             string `json:"threshold_a,omitempty"`
	ThresholdB             string `json:"threshold_b,omitempty"`
	OtherAmountThreshold   string `json:"other_amount_threshold,omitempty"`
	SqrtPriceLimit         string `json:"sqrt_price_limit,omitempty"`
	AmountSpecifiedIsInput bool   `json:"amount_specified_is_input,omitempty"`
	AToB                   bool   `json:"a_to_b,omitempty"`

	ExpectA string `json:"expect_a,omitempty"`
	ExpectB string `json:"expect_b,omitempty"`
}

// Expect holds the amounts a recorded instruction moved. Replaying the
// instruction must reproduce them.
type Expect struct {
	AmountA uint64
	AmountB uint64
}

type Transaction struct {
	Type      Type
	ID        string
	Timestamp uint64

	Pool     string
	Owner    string
	Position string
	Symbol   string
	MintA    string
	MintB    string

	Mint            token.Mint
	FreezeAuthority string
	Badged          bool

	TickSpacing     uint16
	FeeRate         uint16
	ProtocolFeeRate uint16
	SqrtPrice       uint128.Uint128
	Tick            int32
	TickLower       int32
	TickUpper       int32
	Index           int

	Amount                 uint64
	Liquidity              uint128.Uint128
	EmissionsPerSecondX64  uint128.Uint128
	ThresholdA             uint64
	ThresholdB             uint64
	OtherAmountThreshold   uint64
	SqrtPriceLimit         uint128.Uint128
	AmountSpecifiedIsInput bool
	AToB                   bool

	Expect *Expect
}

// Decode reads a whole script.
func Decode(r io.Reader) ([]Transaction, error) {
	var inputs []TransactionInput
	if err := json.NewDecoder(r).Decode(&inputs); err != nil {
		return nil, fmt.Errorf("decode script: %w", err)
	}
	transactions := make([]Transaction, 0, len(inputs))
	for i, in := range inputs {
		t, err := Parse(in)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		transactions = append(transactions, t)
	}
	return transactions, nil
}

// Parse validates one record and fills in the defaults of its type: an
// initialize_pool without tick_spacing takes the spacing of its fee tier and
// one without sqrt_price starts at tick; missing slippage thresholds and
// price limits do not bind.
func Parse(in TransactionInput) (Transaction, error) {
	t := Transaction{
		Type:                   Type(in.Type),
		ID:                     in.ID,
		Timestamp:              in.Timestamp,
		Pool:                   in.Pool,
		Owner:                  in.Owner,
		Position:               in.Position,
		Symbol:                 in.Symbol,
		MintA:                  in.MintA,
		MintB:                  in.MintB,
		FreezeAuthority:        in.FreezeAuthority,
		Badged:                 in.Badged,
		TickSpacing:            in.TickSpacing,
		FeeRate:                in.FeeRate,
		ProtocolFeeRate:        in.ProtocolFeeRate,
		Tick:                   in.Tick,
		TickLower:              in.TickLower,
		TickUpper:              in.TickUpper,
		Index:                  in.Index,
		AmountSpecifiedIsInput: in.AmountSpecifiedIsInput,
		AToB:                   in.AToB,
	}
	if !knownTypes[t.Type] {
		return Transaction{}, fmt.Errorf("unknown instruction type %q", in.Type)
	}

	var err error
	if t.Amount, err = parseU64(in.Amount, "amount", 0); err != nil {
		return Transaction{}, err
	}
	if t.Liquidity, err = parseU128(in.Liquidity, "liquidity"); err != nil {
		return Transaction{}, err
	}
	if t.EmissionsPerSecondX64, err = parseU128(in.EmissionsPerSecondX64, "emissions_per_second_x64"); err != nil {
		return Transaction{}, err
	}
	if t.SqrtPrice, err = parseU128(in.SqrtPrice, "sqrt_price"); err != nil {
		return Transaction{}, err
	}
	if t.SqrtPriceLimit, err = parseU128(in.SqrtPriceLimit, "sqrt_price_limit"); err != nil {
		return Transaction{}, err
	}

	// thresholds bound from above for deposits and exact-output swaps
	unbound := uint64(0)
	if t.Type == IncreaseLiquidity || (t.Type == Swap && !t.AmountSpecifiedIsInput) {
		unbound = math.MaxUint64
	}
	if t.ThresholdA, err = parseU64(in.ThresholdA, "threshold_a", unbound); err != nil {
		return Transaction{}, err
	}
	if t.ThresholdB, err = parseU64(in.ThresholdB, "threshold_b", unbound); err != nil {
		return Transaction{}, err
	}
	if t.OtherAmountThreshold, err = parseU64(in.OtherAmountThreshold, "other_amount_threshold", unbound); err != nil {
		return Transaction{}, err
	}

	if in.ExpectA != "" || in.ExpectB != "" {
		var expect Expect
		if expect.AmountA, err = parseU64(in.ExpectA, "expect_a", 0); err != nil {
			return Transaction{}, err
		}
		if expect.AmountB, err = parseU64(in.ExpectB, "expect_b", 0); err != nil {
			return Transaction{}, err
		}
		t.Expect = &expect
	}

	switch t.Type {
	case CreateMint:
		if t.Mint, err = parseMint(in); err != nil {
			return Transaction{}, err
		}
	case InitializePool:
		if t.TickSpacing == 0 {
			spacing, ok := cons.TickSpaces[t.FeeRate]
			if !ok {
				return Transaction{}, fmt.Errorf("no default tick spacing for fee rate %d", t.FeeRate)
			}
			t.TickSpacing = spacing
		}
		if t.SqrtPrice.IsZero() {
			if err := tickmath.CheckTickIndex(t.Tick); err != nil {
				return Transaction{}, fmt.Errorf("initial tick %d: %w", t.Tick, err)
			}
			t.SqrtPrice = tickmath.SqrtPriceFromTickIndex(t.Tick)
		}
	case Swap:
		if t.SqrtPriceLimit.IsZero() {
			t.SqrtPriceLimit = tickmath.MaxSqrtPriceX64
			if t.AToB {
				t.SqrtPriceLimit = tickmath.MinSqrtPriceX64
			}
		}
	}
	return t, nil
}

func parseMint(in TransactionInput) (token.Mint, error) {
	m := token.Mint{Program: token.ProgramLegacy, Decimals: in.Decimals}
	switch in.Program {
	case "", "legacy":
	case "extension":
		m.Program = token.ProgramExtension
	default:
		return token.Mint{}, fmt.Errorf("unknown token program %q", in.Program)
	}
	for _, name := range in.Extensions {
		ext, err := token.ParseExtension(name)
		if err != nil {
			return token.Mint{}, err
		}
		m.Program = token.ProgramExtension
		m.Extensions = append(m.Extensions, ext)
	}
	if in.TransferFeeBasisPoints > 0 {
		if !m.HasExtension(token.ExtensionTransferFeeConfig) {
			m.Program = token.ProgramExtension
			m.Extensions = append(m.Extensions, token.ExtensionTransferFeeConfig)
		}
		maximumFee, err := parseU64(in.MaximumFee, "maximum_fee", math.MaxUint64)
		if err != nil {
			return token.Mint{}, err
		}
		m.TransferFeeConfig = &token.TransferFeeConfig{
			NewerTransferFee: token.TransferFee{
				Epoch:                  in.TransferFeeEpoch,
				MaximumFee:             maximumFee,
				TransferFeeBasisPoints: in.TransferFeeBasisPoints,
			},
		}
	}
	return m, nil
}

func parseU64(s, field string, empty uint64) (uint64, error) {
	if s == "" {
		return empty, nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", field, err)
	}
	return v, nil
}

func parseU128(s, field string) (uint128.Uint128, error) {
	if s == "" {
		return uint128.Zero, nil
	}
	v, err := uint128.FromString(s)
	if err != nil {
		return uint128.Zero, fmt.Errorf("parse %s: %w", field, err)
	}
	return v, nil
}

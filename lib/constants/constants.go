package constants

import (
	ui "github.com/holiman/uint256"
	"lukechampine.com/uint128"
)

const (
	Q64Resolution = 64

	NumRewards        = 3
	TickArraySize     = 88
	MaxSwapTickArrays = 3

	// fee_rate is stored in hundredths of a basis point
	FeeRateMulValue = 1_000_000
	MaxFeeRate      = 30_000
	// protocol_fee_rate is stored in basis points of the fee
	ProtocolFeeRateMulValue = 10_000
	MaxProtocolFeeRate      = 2_500

	DayInSeconds = 86_400

	// bps denominator of the token transfer fee extension
	MaxFeeBasisPoints = 10_000
)

var (
	Zero          = new(ui.Int)
	One           = new(ui.Int).SetOne()
	Q64           = new(ui.Int).Lsh(ui.NewInt(1), 64)
	MaxUint256, _ = ui.FromHex("0xffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff")
	U64Max        = new(ui.Int).SetUint64(^uint64(0))
	U128Max       = new(ui.Int).Sub(new(ui.Int).Lsh(ui.NewInt(1), 128), One)
	// i128 bounds in two's complement 256-bit form
	I128Max = new(ui.Int).Sub(new(ui.Int).Lsh(ui.NewInt(1), 127), One)
	I128Min = new(ui.Int).Neg(new(ui.Int).Lsh(ui.NewInt(1), 127))

	Q64U128 = uint128.New(0, 1)
)

// TickSpaces maps a fee tier (hundredths of a bp) to its default tick spacing.
var TickSpaces = map[uint16]uint16{
	100:   1,
	500:   8,
	3000:  64,
	10000: 128,
}

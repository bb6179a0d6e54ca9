// Package errcode holds the error codes surfaced by the pool state machine.
// Codes are comparable values, so callers match them with errors.Is even
// after a boundary layer has wrapped them with context.
package errcode

import (
	"errors"
	"fmt"
)

type Kind uint8

const (
	// KindInput rejects a request before any state is touched.
	KindInput Kind = iota
	// KindSlippage is a caller threshold violated by a speculative result.
	KindSlippage
	// KindArithmetic is a fatal overflow. The invocation is aborted.
	KindArithmetic
	// KindTemporal is a clock regression supplied by the caller.
	KindTemporal
	// KindPolicy is a precondition owned by an administrative collaborator.
	KindPolicy
)

func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindSlippage:
		return "slippage"
	case KindArithmetic:
		return "arithmetic"
	case KindTemporal:
		return "temporal"
	case KindPolicy:
		return "policy"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

type ErrorCode uint32

const (
	InvalidEnum ErrorCode = iota + 6000
	InvalidStartTick
	TickArrayExistInPool
	TickArrayIndexOutofBounds
	InvalidTickSpacing
	ClosePositionNotEmpty
	DivideByZero
	NumberCastError
	NumberDownCastError
	TickNotFound
	InvalidTickIndex
	SqrtPriceOutOfBounds
	LiquidityZero
	LiquidityTooHigh
	LiquidityOverflow
	LiquidityUnderflow
	LiquidityNetError
	TokenMaxExceeded
	TokenMinSubceeded
	InvalidTimestamp
	InvalidTickArraySequence
	InvalidTokenMintOrder
	RewardNotInitialized
	InvalidRewardIndex
	RewardVaultAmountInsufficient
	FeeRateMaxExceeded
	ProtocolFeeRateMaxExceeded
	MultiplicationShiftRightOverflow
	MulDivOverflow
	MulDivInvalidInput
	MultiplicationOverflow
	InvalidSqrtPriceLimitDirection
	ZeroTradableAmount
	AmountOutBelowMinimum
	AmountInAboveMaximum
	TickArraySequenceInvalidIndex
	AmountCalcOverflow
	AmountRemainingOverflow
	UnsupportedTokenMint
	TransferFeeCalculationError
	InsufficientFunds
	AlreadyInitialized
)

type info struct {
	name string
	msg  string
	kind Kind
}

var infos = map[ErrorCode]info{
	InvalidEnum:                      {"InvalidEnum", "Enum value could not be converted", KindInput},
	InvalidStartTick:                 {"InvalidStartTick", "Invalid start tick index provided.", KindInput},
	TickArrayExistInPool:             {"TickArrayExistInPool", "Tick-array already exists in this pool", KindInput},
	TickArrayIndexOutofBounds:        {"TickArrayIndexOutofBounds", "Attempt to search for a tick-array failed", KindInput},
	InvalidTickSpacing:               {"InvalidTickSpacing", "Tick-spacing is not supported", KindInput},
	ClosePositionNotEmpty:            {"ClosePositionNotEmpty", "Position is not empty It cannot be closed", KindInput},
	DivideByZero:                     {"DivideByZero", "Unable to divide by zero", KindArithmetic},
	NumberCastError:                  {"NumberCastError", "Unable to cast number into BigInt", KindArithmetic},
	NumberDownCastError:              {"NumberDownCastError", "Unable to down cast number", KindArithmetic},
	TickNotFound:                     {"TickNotFound", "Tick not found within tick array", KindInput},
	InvalidTickIndex:                 {"InvalidTickIndex", "Provided tick index is either out of bounds or uninitializable", KindInput},
	SqrtPriceOutOfBounds:             {"SqrtPriceOutOfBounds", "Provided sqrt price out of bounds", KindInput},
	LiquidityZero:                    {"LiquidityZero", "Liquidity amount must be greater than zero", KindInput},
	LiquidityTooHigh:                 {"LiquidityTooHigh", "Liquidity amount must be less than i128::MAX", KindInput},
	LiquidityOverflow:                {"LiquidityOverflow", "Liquidity overflow", KindArithmetic},
	LiquidityUnderflow:               {"LiquidityUnderflow", "Liquidity underflow", KindArithmetic},
	LiquidityNetError:                {"LiquidityNetError", "Tick liquidity net underflowed or overflowed", KindArithmetic},
	TokenMaxExceeded:                 {"TokenMaxExceeded", "Exceeded token max", KindSlippage},
	TokenMinSubceeded:                {"TokenMinSubceeded", "Did not meet token min", KindSlippage},
	InvalidTimestamp:                 {"InvalidTimestamp", "Invalid timestamp", KindTemporal},
	InvalidTickArraySequence:         {"InvalidTickArraySequence", "Invalid tick array sequence provided for instruction.", KindInput},
	InvalidTokenMintOrder:            {"InvalidTokenMintOrder", "Token Mint in wrong order", KindInput},
	RewardNotInitialized:             {"RewardNotInitialized", "Reward not initialized", KindInput},
	InvalidRewardIndex:               {"InvalidRewardIndex", "Invalid reward index", KindInput},
	RewardVaultAmountInsufficient:    {"RewardVaultAmountInsufficient", "Reward vault requires amount to support emissions for at least one day", KindPolicy},
	FeeRateMaxExceeded:               {"FeeRateMaxExceeded", "Exceeded max fee rate", KindInput},
	ProtocolFeeRateMaxExceeded:       {"ProtocolFeeRateMaxExceeded", "Exceeded max protocol fee rate", KindInput},
	MultiplicationShiftRightOverflow: {"MultiplicationShiftRightOverflow", "Multiplication with shift right overflow", KindArithmetic},
	MulDivOverflow:                   {"MulDivOverflow", "Muldiv overflow", KindArithmetic},
	MulDivInvalidInput:               {"MulDivInvalidInput", "Invalid div_u256 input", KindArithmetic},
	MultiplicationOverflow:           {"MultiplicationOverflow", "Multiplication overflow", KindArithmetic},
	InvalidSqrtPriceLimitDirection:   {"InvalidSqrtPriceLimitDirection", "Provided SqrtPriceLimit not in the same direction as the swap.", KindInput},
	ZeroTradableAmount:               {"ZeroTradableAmount", "There are no tradable amount to swap.", KindInput},
	AmountOutBelowMinimum:            {"AmountOutBelowMinimum", "Amount out below minimum threshold", KindSlippage},
	AmountInAboveMaximum:             {"AmountInAboveMaximum", "Amount in above maximum threshold", KindSlippage},
	TickArraySequenceInvalidIndex:    {"TickArraySequenceInvalidIndex", "Invalid index for tick array sequence", KindInput},
	AmountCalcOverflow:               {"AmountCalcOverflow", "Amount calculated overflows", KindArithmetic},
	AmountRemainingOverflow:          {"AmountRemainingOverflow", "Amount remaining overflows", KindArithmetic},
	UnsupportedTokenMint:             {"UnsupportedTokenMint", "Token Mint has unsupported attributes", KindPolicy},
	TransferFeeCalculationError:      {"TransferFeeCalculationError", "Transfer fee calculation failed", KindArithmetic},
	InsufficientFunds:                {"InsufficientFunds", "Token account balance is insufficient", KindPolicy},
	AlreadyInitialized:               {"AlreadyInitialized", "Account is already initialized", KindInput},
}

func (e ErrorCode) Error() string {
	if i, ok := infos[e]; ok {
		return fmt.Sprintf("%s (%d): %s", i.name, uint32(e), i.msg)
	}
	return fmt.Sprintf("error code %d", uint32(e))
}

func (e ErrorCode) Name() string {
	if i, ok := infos[e]; ok {
		return i.name
	}
	return fmt.Sprintf("ErrorCode(%d)", uint32(e))
}

func (e ErrorCode) Kind() Kind {
	return infos[e].kind
}

// KindOf reports the kind of the ErrorCode wrapped by err.
func KindOf(err error) (Kind, bool) {
	var code ErrorCode
	if !errors.As(err, &code) {
		return 0, false
	}
	return code.Kind(), true
}

package token

import (
	"math/bits"

	cons "github.com/ftchann/yevefi-simulator/lib/constants"
	"github.com/ftchann/yevefi-simulator/lib/errcode"
)

// TransferFee is one fee schedule of the transfer fee extension. Fees are
// charged in basis points of the transferred amount, capped at MaximumFee.
type TransferFee struct {
	Epoch                  uint64
	MaximumFee             uint64
	TransferFeeBasisPoints uint16
}

// CalculateFee returns the fee withheld from a transfer of preFeeAmount.
func (f TransferFee) CalculateFee(preFeeAmount uint64) uint64 {
	bps := uint64(f.TransferFeeBasisPoints)
	if bps == 0 || preFeeAmount == 0 {
		return 0
	}
	hi, lo := bits.Mul64(preFeeAmount, bps)
	if hi >= cons.MaxFeeBasisPoints {
		return f.MaximumFee
	}
	q, r := bits.Div64(hi, lo, cons.MaxFeeBasisPoints)
	if r != 0 {
		q++
	}
	if q < f.MaximumFee {
		return q
	}
	return f.MaximumFee
}

// CalculatePreFeeAmount returns the smallest amount that still leaves
// postFeeAmount after the fee is withheld.
func (f TransferFee) CalculatePreFeeAmount(postFeeAmount uint64) (uint64, bool) {
	bps := uint64(f.TransferFeeBasisPoints)
	switch {
	case bps == 0:
		return postFeeAmount, true
	case postFeeAmount == 0:
		return 0, true
	case bps == cons.MaxFeeBasisPoints:
		sum, carry := bits.Add64(postFeeAmount, f.MaximumFee, 0)
		return sum, carry == 0
	}
	hi, lo := bits.Mul64(postFeeAmount, cons.MaxFeeBasisPoints)
	denominator := cons.MaxFeeBasisPoints - bps
	if hi >= denominator {
		return 0, false
	}
	raw, r := bits.Div64(hi, lo, denominator)
	if r != 0 {
		raw++
	}
	if raw-postFeeAmount >= f.MaximumFee {
		sum, carry := bits.Add64(postFeeAmount, f.MaximumFee, 0)
		return sum, carry == 0
	}
	return raw, true
}

// CalculateInverseFee returns the fee that a transfer landing postFeeAmount
// was charged.
func (f TransferFee) CalculateInverseFee(postFeeAmount uint64) (uint64, bool) {
	preFeeAmount, ok := f.CalculatePreFeeAmount(postFeeAmount)
	if !ok {
		return 0, false
	}
	return f.CalculateFee(preFeeAmount), true
}

// TransferFeeConfig holds the fee schedule in force and the one that takes
// over at NewerTransferFee.Epoch.
type TransferFeeConfig struct {
	OlderTransferFee TransferFee
	NewerTransferFee TransferFee
}

func (c TransferFeeConfig) EpochFee(epoch uint64) TransferFee {
	if epoch >= c.NewerTransferFee.Epoch {
		return c.NewerTransferFee
	}
	return c.OlderTransferFee
}

// TransferFeeIncludedAmount returns how much must be sent so that the
// recipient receives excludedAmount.
func (fee TransferFee) TransferFeeIncludedAmount(excludedAmount uint64) (uint64, error) {
	if excludedAmount == 0 {
		return 0, nil
	}
	var feeAmount uint64
	if uint64(fee.TransferFeeBasisPoints) == cons.MaxFeeBasisPoints {
		feeAmount = fee.MaximumFee
	} else {
		inverse, ok := fee.CalculateInverseFee(excludedAmount)
		if !ok {
			return 0, errcode.TransferFeeCalculationError
		}
		feeAmount = inverse
	}
	includedAmount, carry := bits.Add64(excludedAmount, feeAmount, 0)
	if carry != 0 {
		return 0, errcode.TransferFeeCalculationError
	}
	// the inverse may land one unit off the forward fee
	if fee.CalculateFee(includedAmount) != feeAmount {
		return 0, errcode.TransferFeeCalculationError
	}
	return includedAmount, nil
}

// TransferFeeExcludedAmount returns what the recipient of a transfer of
// includedAmount receives.
func (fee TransferFee) TransferFeeExcludedAmount(includedAmount uint64) (uint64, error) {
	feeAmount := fee.CalculateFee(includedAmount)
	if feeAmount > includedAmount {
		return 0, errcode.TransferFeeCalculationError
	}
	return includedAmount - feeAmount, nil
}

package token

import (
	"testing"

	"github.com/ftchann/yevefi-simulator/lib/errcode"

	"github.com/stretchr/testify/require"
)

func TestCalculateFee(t *testing.T) {
	tests := []struct {
		name   string
		fee    TransferFee
		amount uint64
		want   uint64
	}{
		{"zero bps", TransferFee{MaximumFee: 100}, 10_000, 0},
		{"zero amount", TransferFee{TransferFeeBasisPoints: 100, MaximumFee: 100}, 0, 0},
		{"one percent", TransferFee{TransferFeeBasisPoints: 100, MaximumFee: 1_000_000}, 10_000, 100},
		{"rounds up", TransferFee{TransferFeeBasisPoints: 100, MaximumFee: 1_000_000}, 1, 1},
		{"capped", TransferFee{TransferFeeBasisPoints: 100, MaximumFee: 5}, 10_000, 5},
		{"full", TransferFee{TransferFeeBasisPoints: 10_000, MaximumFee: 50}, 20, 20},
		{"large amount", TransferFee{TransferFeeBasisPoints: 10_000, MaximumFee: 1 << 62}, ^uint64(0), 1 << 62},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.fee.CalculateFee(tt.amount))
		})
	}
}

func TestTransferFeeIncludedAmount(t *testing.T) {
	tests := []struct {
		name     string
		fee      TransferFee
		excluded uint64
		want     uint64
	}{
		{"no fee", TransferFee{}, 9_900, 9_900},
		{"zero amount", TransferFee{TransferFeeBasisPoints: 100, MaximumFee: 1_000_000}, 0, 0},
		{"one percent", TransferFee{TransferFeeBasisPoints: 100, MaximumFee: 1_000_000}, 9_900, 10_000},
		{"capped", TransferFee{TransferFeeBasisPoints: 100, MaximumFee: 5}, 9_900, 9_905},
		{"full", TransferFee{TransferFeeBasisPoints: 10_000, MaximumFee: 50}, 100, 150},
		{"dust", TransferFee{TransferFeeBasisPoints: 250, MaximumFee: 1_000_000_000_000}, 1, 2},
		{"large", TransferFee{TransferFeeBasisPoints: 250, MaximumFee: 1_000_000_000_000}, 1_000_000_000, 1_025_641_026},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.fee.TransferFeeIncludedAmount(tt.excluded)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestTransferFeeIncludedAmountOverflow(t *testing.T) {
	fee := TransferFee{TransferFeeBasisPoints: 10_000, MaximumFee: 10}
	_, err := fee.TransferFeeIncludedAmount(^uint64(0) - 5)
	require.ErrorIs(t, err, errcode.TransferFeeCalculationError)
}

func TestTransferFeeRoundTrip(t *testing.T) {
	for _, bps := range []uint16{1, 250, 999, 5_000} {
		fee := TransferFee{TransferFeeBasisPoints: bps, MaximumFee: 1_000_000_000_000}
		for _, amount := range []uint64{1, 2, 3, 17, 100, 9_999, 12_345, 1_000_000} {
			included, err := fee.TransferFeeIncludedAmount(amount)
			require.NoError(t, err)
			excluded, err := fee.TransferFeeExcludedAmount(included)
			require.NoError(t, err)
			require.Equal(t, amount, excluded, "bps %d amount %d", bps, amount)
		}
	}
}

func TestTransferFeeExcludedAmount(t *testing.T) {
	fee := TransferFee{TransferFeeBasisPoints: 250, MaximumFee: 1_000_000_000_000}
	got, err := fee.TransferFeeExcludedAmount(1_000_000_000)
	require.NoError(t, err)
	require.Equal(t, uint64(975_000_000), got)
}

func TestEpochFee(t *testing.T) {
	config := TransferFeeConfig{
		OlderTransferFee: TransferFee{Epoch: 0, TransferFeeBasisPoints: 0},
		NewerTransferFee: TransferFee{Epoch: 10, TransferFeeBasisPoints: 100, MaximumFee: 7},
	}
	require.Equal(t, uint16(0), config.EpochFee(9).TransferFeeBasisPoints)
	require.Equal(t, uint16(100), config.EpochFee(10).TransferFeeBasisPoints)
	require.Equal(t, uint16(100), config.EpochFee(11).TransferFeeBasisPoints)
}

package result

import (
	"errors"

	"github.com/ftchann/yevefi-simulator/lib/errcode"
	"github.com/ftchann/yevefi-simulator/lib/pool"
)

// Snapshot is the pool state after one replayed instruction. Amounts are the
// token movements the instruction reported; u128 values are decimal strings.
type Snapshot struct {
	Index            int    `json:"index"`
	ID               string `json:"id,omitempty"`
	Type             string `json:"type"`
	Timestamp        uint64 `json:"timestamp"`
	Pool             string `json:"pool,omitempty"`
	TickCurrentIndex int32  `json:"tick"`
	SqrtPrice        string `json:"sqrt_price"`
	Liquidity        string `json:"liquidity"`
	FeeRate          uint16 `json:"fee_rate"`
	FeeGrowthGlobalA string `json:"fee_growth_global_a"`
	FeeGrowthGlobalB string `json:"fee_growth_global_b"`
	ProtocolFeeOwedA uint64 `json:"protocol_fee_owed_a"`
	ProtocolFeeOwedB uint64 `json:"protocol_fee_owed_b"`
	AmountA          uint64 `json:"amount_a"`
	AmountB          uint64 `json:"amount_b"`
	Error            string `json:"error,omitempty"`
	ErrorCode        string `json:"error_code,omitempty"`
	ErrorKind        string `json:"error_kind,omitempty"`
}

// SetPool copies the observable pool fields into the snapshot.
func (s *Snapshot) SetPool(p pool.Pool) {
	s.Pool = p.Key.Hex()
	s.TickCurrentIndex = p.TickCurrentIndex
	s.SqrtPrice = p.SqrtPrice.String()
	s.Liquidity = p.Liquidity.String()
	s.FeeRate = p.FeeRate
	s.FeeGrowthGlobalA = p.FeeGrowthGlobalA.String()
	s.FeeGrowthGlobalB = p.FeeGrowthGlobalB.String()
	s.ProtocolFeeOwedA = p.ProtocolFeeOwedA
	s.ProtocolFeeOwedB = p.ProtocolFeeOwedB
}

// SetError records a failed instruction. Program errors also carry their
// code name and kind.
func (s *Snapshot) SetError(err error) {
	s.Error = err.Error()
	var code errcode.ErrorCode
	if errors.As(err, &code) {
		s.ErrorCode = code.Name()
		s.ErrorKind = code.Kind().String()
	}
}

// Summary closes a replay run.
type Summary struct {
	Instructions int    `json:"instructions"`
	Applied      int    `json:"applied"`
	Failed       int    `json:"failed"`
	StartTime    uint64 `json:"start_time"`
	EndTime      uint64 `json:"end_time"`
	Strategy     string `json:"strategy,omitempty"`
	Rebalances   int    `json:"rebalances,omitempty"`
	// strategy holdings before the first deposit and after the final withdrawal
	StartAmountA uint64 `json:"start_amount_a,omitempty"`
	StartAmountB uint64 `json:"start_amount_b,omitempty"`
	EndAmountA   uint64 `json:"end_amount_a,omitempty"`
	EndAmountB   uint64 `json:"end_amount_b,omitempty"`
}

package prices

import (
	ui "github.com/holiman/uint256"
)

// Prices is a ring buffer of observed tick indexes. Ticks are log prices, so
// their mean is a geometric mean of prices and their deviation a volatility.
type Prices struct {
	ticks  []int32
	index  int
	filled int
}

func NewPrices(length int) *Prices {
	if length < 1 {
		length = 1
	}
	return &Prices{ticks: make([]int32, length)}
}

func (p *Prices) Add(tick int32) {
	p.ticks[p.index] = tick
	p.index = (p.index + 1) % len(p.ticks)
	if p.filled < len(p.ticks) {
		p.filled++
	}
}

func (p *Prices) Len() int {
	return p.filled
}

func (p *Prices) Full() bool {
	return p.filled == len(p.ticks)
}

// Average is the mean observed tick, rounded toward negative infinity.
func (p *Prices) Average() int32 {
	if p.filled == 0 {
		return 0
	}
	var sum int64
	for _, t := range p.ticks[:p.filled] {
		sum += int64(t)
	}
	n := int64(p.filled)
	avg := sum / n
	if sum%n != 0 && sum < 0 {
		avg--
	}
	return int32(avg)
}

// Volatility is the sample standard deviation of the observed ticks, rounded
// down. Fewer than two observations have no volatility.
func (p *Prices) Volatility() uint32 {
	if p.filled < 2 {
		return 0
	}
	var sum int64
	for _, t := range p.ticks[:p.filled] {
		sum += int64(t)
	}
	n := int64(p.filled)

	// n*sum((t - mean)^2) = sum((n*t - sum)^2), kept exact in 256 bits
	squares := new(ui.Int)
	for _, t := range p.ticks[:p.filled] {
		diff := n*int64(t) - sum
		if diff < 0 {
			diff = -diff
		}
		d := ui.NewInt(uint64(diff))
		squares.Add(squares, d.Mul(d, d))
	}
	denominator := ui.NewInt(uint64(n * n * (n - 1)))
	variance := new(ui.Int).Div(squares, denominator)
	return uint32(new(ui.Int).Sqrt(variance).Uint64())
}

package prices

import "testing"

func TestAverage(t *testing.T) {
	tests := []struct {
		name  string
		ticks []int32
		want  int32
	}{
		{"empty", nil, 0},
		{"single", []int32{-7}, -7},
		{"exact", []int32{10, 20, 30}, 20},
		{"floor positive", []int32{1, 2}, 1},
		{"floor negative", []int32{-1, -2}, -2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPrices(4)
			for _, tick := range tt.ticks {
				p.Add(tick)
			}
			if got := p.Average(); got != tt.want {
				t.Fatalf("Average() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestWindowEvictsOldest(t *testing.T) {
	p := NewPrices(3)
	for _, tick := range []int32{1000, 0, 0, 0} {
		p.Add(tick)
	}
	if !p.Full() || p.Len() != 3 {
		t.Fatalf("window not full: len %d", p.Len())
	}
	if got := p.Average(); got != 0 {
		t.Fatalf("Average() = %d, want 0", got)
	}
	if got := p.Volatility(); got != 0 {
		t.Fatalf("Volatility() = %d, want 0", got)
	}
}

func TestVolatility(t *testing.T) {
	p := NewPrices(8)
	if got := p.Volatility(); got != 0 {
		t.Fatalf("Volatility() on empty window = %d", got)
	}
	// sample variance of 2,4,4,4,5,5,7,9 is 32/7
	for _, tick := range []int32{2, 4, 4, 4, 5, 5, 7, 9} {
		p.Add(tick)
	}
	if got := p.Volatility(); got != 2 {
		t.Fatalf("Volatility() = %d, want 2", got)
	}

	q := NewPrices(2)
	q.Add(-443636)
	q.Add(443636)
	// sqrt(2 * 443636^2)
	if got := q.Volatility(); got != 627396 {
		t.Fatalf("Volatility() = %d, want 627396", got)
	}
}

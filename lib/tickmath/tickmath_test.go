package tickmath

import (
	"fmt"
	"testing"

	"lukechampine.com/uint128"
)

func TestSqrtPriceFromTickIndex(t *testing.T) {
	tests := []struct {
		tick int32
		want string
	}{
		{MinTickIndex, "4295048016"},
		{-100000, "124324258982887573"},
		{-22000, "6140725398613005606"},
		{-12345, "9950957148631419635"},
		{-1000, "17547129613991598777"},
		{-100, "18354745142194483561"},
		{-1, "18445821805675392311"},
		{0, "18446744073709551616"},
		{1, "18447666387855959850"},
		{100, "18539204128674405812"},
		{1000, "19392480388906836277"},
		{22000, "55414034146160878325"},
		{100000, "2737055259406582257880"},
		{MaxTickIndex, "79226673515401279992447579055"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.tick), func(t *testing.T) {
			want, err := uint128.FromString(tt.want)
			if err != nil {
				t.Fatal(err)
			}
			if got := SqrtPriceFromTickIndex(tt.tick); got != want {
				t.Fatalf("want=%v result=%v", want, got)
			}
		})
	}
}

func TestTickIndexFromSqrtPriceRoundTrip(t *testing.T) {
	for _, tick := range []int32{MinTickIndex, MinTickIndex + 1, -300000, -22000, -128, -1, 0, 1, 64, 22000, 300000, MaxTickIndex - 1, MaxTickIndex} {
		price := SqrtPriceFromTickIndex(tick)
		if got := TickIndexFromSqrtPrice(price); got != tick {
			t.Fatalf("tick %d: round trip gave %d", tick, got)
		}
		// one unit below the tick's price still belongs to the previous tick
		if tick > MinTickIndex {
			if got := TickIndexFromSqrtPrice(price.Sub64(1)); got != tick-1 {
				t.Fatalf("tick %d: price-1 gave %d", tick, got)
			}
		}
	}
}

func TestSqrtPriceIsStrictlyIncreasing(t *testing.T) {
	prev := SqrtPriceFromTickIndex(-5000)
	for tick := int32(-4999); tick <= 5000; tick++ {
		next := SqrtPriceFromTickIndex(tick)
		if next.Cmp(prev) <= 0 {
			t.Fatalf("price at %d is not above price at %d", tick, tick-1)
		}
		prev = next
	}
}

func TestCheckBounds(t *testing.T) {
	if err := CheckTickIndex(MaxTickIndex + 1); err == nil {
		t.Fatal("expected out of bounds tick to fail")
	}
	if err := CheckSqrtPrice(MinSqrtPriceX64.Sub64(1)); err == nil {
		t.Fatal("expected out of bounds price to fail")
	}
	if err := CheckSqrtPrice(MaxSqrtPriceX64); err != nil {
		t.Fatal(err)
	}
	if err := CheckSqrtPrice(MaxSqrtPriceX64.Add64(1)); err == nil {
		t.Fatal("expected price above the max tick to fail")
	}
	if MinSqrtPriceX64 != uint128.From64(4295048016) {
		t.Fatalf("min sqrt price %v", MinSqrtPriceX64)
	}
	if want, _ := uint128.FromString("79226673515401279992447579055"); MaxSqrtPriceX64 != want {
		t.Fatalf("max sqrt price %v", MaxSqrtPriceX64)
	}
}

func TestFloorCeil(t *testing.T) {
	tests := [][4]int32{
		// tick, spacing, floor, ceil
		{-1, 64, -64, 0},
		{0, 64, 0, 0},
		{65, 64, 64, 128},
		{-128, 64, -128, -128},
		{-129, 64, -192, -128},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt), func(t *testing.T) {
			if got := Floor(tt[0], uint16(tt[1])); got != tt[2] {
				t.Fatalf("floor want=%v result=%v", tt[2], got)
			}
			if got := Ceil(tt[0], uint16(tt[1])); got != tt[3] {
				t.Fatalf("ceil want=%v result=%v", tt[3], got)
			}
		})
	}
}

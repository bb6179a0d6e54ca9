package tickmath

import (
	"fmt"

	"github.com/ftchann/yevefi-simulator/lib/errcode"
	fm "github.com/ftchann/yevefi-simulator/lib/fullmath"

	ui "github.com/holiman/uint256"
	"lukechampine.com/uint128"
)

const (
	MinTickIndex int32 = -443636       // The minimum tick that can be used on any pool.
	MaxTickIndex int32 = -MinTickIndex // The maximum tick that can be used on any pool.
)

var (
	// Positive ticks multiply Q96 ratios and drop 32 bits at the end.
	positiveOddRatio  = mustDecimal("79232123823359799118286999567")
	positiveEvenRatio = mustDecimal("79228162514264337593543950336")
	positiveRatios    = []*ui.Int{
		mustDecimal("79236085330515764027303304731"),
		mustDecimal("79244008939048815603706035061"),
		mustDecimal("79259858533276714757314932305"),
		mustDecimal("79291567232598584799939703904"),
		mustDecimal("79355022692464371645785046466"),
		mustDecimal("79482085999252804386437311141"),
		mustDecimal("79736823300114093921829183326"),
		mustDecimal("80248749790819932309965073892"),
		mustDecimal("81282483887344747381513967011"),
		mustDecimal("83390072131320151908154831281"),
		mustDecimal("87770609709833776024991924138"),
		mustDecimal("97234110755111693312479820773"),
		mustDecimal("119332217159966728226237229890"),
		mustDecimal("179736315981702064433883588727"),
		mustDecimal("407748233172238350107850275304"),
		mustDecimal("2098478828474011932436660412517"),
		mustDecimal("55581415166113811149459800483533"),
		mustDecimal("38992368544603139932233054999993551"),
	}
	// Negative ticks multiply Q64 ratios of sqrt(1.0001)^-(2^i).
	negativeOddRatio  = mustDecimal("18445821805675392311")
	negativeEvenRatio = mustDecimal("18446744073709551616")
	negativeRatios    = []*ui.Int{
		mustDecimal("18444899583751176498"),
		mustDecimal("18443055278223354162"),
		mustDecimal("18439367220385604838"),
		mustDecimal("18431993317065449817"),
		mustDecimal("18417254355718160513"),
		mustDecimal("18387811781193591352"),
		mustDecimal("18329067761203520168"),
		mustDecimal("18212142134806087854"),
		mustDecimal("17980523815641551639"),
		mustDecimal("17526086738831147013"),
		mustDecimal("16651378430235024244"),
		mustDecimal("15030750278693429944"),
		mustDecimal("12247334978882834399"),
		mustDecimal("8131365268884726200"),
		mustDecimal("3584323654723342297"),
		mustDecimal("696457651847595233"),
		mustDecimal("26294789957452057"),
		mustDecimal("37481735321082"),
	}
	// The sqrt prices corresponding to the minimum and maximum tick.
	MinSqrtPriceX64 = sqrtPriceAtTick(MinTickIndex)
	MaxSqrtPriceX64 = sqrtPriceAtTick(MaxTickIndex)
)

func mustDecimal(s string) *ui.Int {
	v, err := ui.FromDecimal(s)
	if err != nil {
		panic(err)
	}
	return v
}

// SqrtPriceFromTickIndex returns sqrt(1.0001^tick) as a Q64.64. Ticks outside
// [MinTickIndex, MaxTickIndex] panic; boundary code validates with CheckTickIndex.
func SqrtPriceFromTickIndex(tick int32) uint128.Uint128 {
	if tick < MinTickIndex || tick > MaxTickIndex {
		panic(fmt.Sprintf("tick %d out of range", tick))
	}
	return sqrtPriceAtTick(tick)
}

func CheckTickIndex(tick int32) error {
	if tick < MinTickIndex || tick > MaxTickIndex {
		return errcode.InvalidTickIndex
	}
	return nil
}

func CheckSqrtPrice(sqrtPrice uint128.Uint128) error {
	if sqrtPrice.Cmp(MinSqrtPriceX64) < 0 || sqrtPrice.Cmp(MaxSqrtPriceX64) > 0 {
		return errcode.SqrtPriceOutOfBounds
	}
	return nil
}

// TickIndexFromSqrtPrice returns the greatest tick whose sqrt price is at or
// below sqrtPrice. Prices outside the valid range clamp to the tick bounds.
func TickIndexFromSqrtPrice(sqrtPrice uint128.Uint128) int32 {
	l := MinTickIndex
	r := MaxTickIndex
	for l < r {
		// l+r+1 never overflows an int32 in this range
		mid := floorDiv(l+r+1, 2)
		if sqrtPriceAtTick(mid).Cmp(sqrtPrice) > 0 {
			r = mid - 1
		} else {
			l = mid
		}
	}
	return l
}

func sqrtPriceAtTick(tick int32) uint128.Uint128 {
	if tick >= 0 {
		ratio := mulShiftBits(positiveOddRatio, positiveEvenRatio, positiveRatios, tick, 96)
		price, _ := fm.U128(ratio.Rsh(ratio, 32))
		return price
	}
	ratio := mulShiftBits(negativeOddRatio, negativeEvenRatio, negativeRatios, -tick, 64)
	price, _ := fm.U128(ratio)
	return price
}

// mulShiftBits multiplies in one ratio per set bit of absTick. The largest
// intermediate product stays below 2^225.
func mulShiftBits(odd, even *ui.Int, ratios []*ui.Int, absTick int32, shift uint) *ui.Int {
	var ratio *ui.Int
	if absTick&0x1 != 0 {
		ratio = odd.Clone()
	} else {
		ratio = even.Clone()
	}
	for i, mulBy := range ratios {
		if absTick&(int32(2)<<i) != 0 {
			ratio.Mul(ratio, mulBy)
			ratio.Rsh(ratio, shift)
		}
	}
	return ratio
}

func floorDiv(a, b int32) int32 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// Floor aligns tick down to a multiple of spacing.
func Floor(tick int32, spacing uint16) int32 {
	s := int32(spacing)
	return floorDiv(tick, s) * s
}

// Ceil aligns tick up to a multiple of spacing.
func Ceil(tick int32, spacing uint16) int32 {
	s := int32(spacing)
	return -floorDiv(-tick, s) * s
}

package tax

import "math"

// CartDiscountType discriminates cart-level discounts.
type CartDiscountType string

const (
	CartDiscountNone    CartDiscountType = "none"
	CartDiscountPercent CartDiscountType = "percent"
	CartDiscountYen     CartDiscountType = "yen"
)

// CartDiscountTarget selects what the cart discount applies to.
type CartDiscountTarget string

const (
	// DiscountTargetBase applies before policy rounding, distributed
	// proportionally across line bases.
	DiscountTargetBase CartDiscountTarget = "base"
	// DiscountTargetTotal applies to the rounded tax-included grand total.
	DiscountTargetTotal CartDiscountTarget = "total"
)

// CartDiscount is the at-most-one cart-level discount for a transaction.
type CartDiscount struct {
	Type   CartDiscountType   `json:"type"`
	Value  float64            `json:"value"`
	Target CartDiscountTarget `json:"target"`
}

// NormalizeCartDiscount clamps the discount into its legal range. Percent
// values land in [0,100]; yen values become non-negative whole yen.
func NormalizeCartDiscount(d CartDiscount) CartDiscount {
	switch d.Type {
	case CartDiscountPercent:
		if d.Value < 0 {
			d.Value = 0
		}
		if d.Value > 100 {
			d.Value = 100
		}
	case CartDiscountYen:
		if d.Value < 0 {
			d.Value = 0
		}
		d.Value = math.Floor(d.Value)
	default:
		d.Type = CartDiscountNone
		d.Value = 0
	}
	if d.Target != DiscountTargetTotal {
		d.Target = DiscountTargetBase
	}
	return d
}

// DistributeOverBases applies a base-targeted cart discount across line
// bases and returns a new slice; the input is never mutated. For yen
// discounts each line takes its proportional share and the final line
// absorbs the allocation remainder, so the reductions sum to exactly
// min(value, total base).
func DistributeOverBases(lines []RatedBase, d CartDiscount) []RatedBase {
	out := make([]RatedBase, len(lines))
	copy(out, lines)
	d = NormalizeCartDiscount(d)
	if d.Type == CartDiscountNone || d.Value <= 0 {
		return out
	}

	if d.Type == CartDiscountPercent {
		keep := 1 - d.Value/100
		for i := range out {
			out[i].Base *= keep
			if out[i].Base < 0 {
				out[i].Base = 0
			}
		}
		return out
	}

	var total float64
	for _, ln := range out {
		total += ln.Base
	}
	if total <= 0 {
		return out
	}
	if d.Value >= total {
		for i := range out {
			out[i].Base = 0
		}
		return out
	}
	remaining := d.Value
	for i := range out {
		if i == len(out)-1 {
			out[i].Base -= remaining
		} else {
			cut := d.Value * out[i].Base / total
			out[i].Base -= cut
			remaining -= cut
		}
		if out[i].Base < 0 {
			out[i].Base = 0
		}
	}
	return out
}

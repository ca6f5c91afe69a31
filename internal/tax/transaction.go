package tax

import "strings"

// Notes surfaced when a transaction cannot be computed.
const (
	NoteNoShop    = "店が未登録のため、計算できません。"
	NoteEmptyCart = "商品が入力されていないため、計算できません。"
)

// Result is the receipt-comparable outcome of a transaction. It is
// derived data: recomputed from shop, cart and discount on every call and
// never stored as authoritative state.
type Result struct {
	OK                  bool   `json:"ok"`
	Subtotal            Money  `json:"subtotal"`
	Tax                 Money  `json:"tax"`
	TotalBeforeDiscount Money  `json:"totalBeforeDiscount"`
	DiscountAmount      Money  `json:"discountAmount"`
	PayTotal            Money  `json:"payTotal"`
	TaxApproximate      bool   `json:"taxApproximate"`
	Note                string `json:"note"`
}

func unavailable(note string) Result {
	return Result{Note: note}
}

func coerceRate(r Rate, accepted []Rate) Rate {
	for _, a := range accepted {
		if a == r {
			return r
		}
	}
	return accepted[0]
}

// Compute runs the full transaction for a shop profile, cart lines and
// cart-level discount. Inputs are never mutated; every failure mode is
// data (ok=false with zeroed amounts), not an error.
func Compute(profile *Profile, lines []Line, discount CartDiscount) Result {
	if profile == nil {
		return unavailable(NoteNoShop)
	}
	if len(lines) == 0 {
		return unavailable(NoteEmptyCart)
	}

	p := NormalizePolicy(profile.Policy)
	rates := NormalizeRates(profile.Rates)
	discount = NormalizeCartDiscount(discount)

	rated := make([]RatedBase, 0, len(lines))
	for _, ln := range lines {
		ln.Rate = coerceRate(ln.Rate, rates)
		base := ApplyLineDiscount(LineBase(ln, p), ln.Discount)
		rated = append(rated, RatedBase{Base: base, Rate: ln.Rate})
	}

	baseline := TotalsByPolicy(rated, p)
	res := Result{
		OK:                  true,
		Subtotal:            baseline.Subtotal,
		Tax:                 baseline.Tax,
		TotalBeforeDiscount: baseline.Total,
		PayTotal:            baseline.Total,
	}

	applied := discount.Type != CartDiscountNone && discount.Value > 0
	switch {
	case !applied:
	case discount.Target == DiscountTargetBase:
		adjusted := TotalsByPolicy(DistributeOverBases(rated, discount), p)
		res.Subtotal = adjusted.Subtotal
		res.Tax = adjusted.Tax
		res.PayTotal = adjusted.Total
		if diff := baseline.Total - adjusted.Total; diff > 0 {
			res.DiscountAmount = diff
		}
	default:
		// Discounting the tax-included figure has no unique re-split into
		// base and tax, so subtotal and tax stay at their baseline values
		// and the tax figure is flagged as a reference value.
		var pay Money
		if discount.Type == CartDiscountPercent {
			pay = RoundTo(float64(baseline.Total)*(1-discount.Value/100), p.Rounding, 1)
		} else {
			pay = baseline.Total - Money(discount.Value)
		}
		if pay < 0 {
			pay = 0
		}
		res.PayTotal = pay
		res.DiscountAmount = baseline.Total - pay
		res.TaxApproximate = true
	}

	res.Note = buildNote(p, discount, applied)
	return res
}

func buildNote(p Policy, d CartDiscount, applied bool) string {
	var b strings.Builder
	b.WriteString(p.Describe())
	if applied {
		if d.Target == DiscountTargetTotal {
			b.WriteString(" / 割引: 税込合計に適用（税額は参考値）")
		} else {
			b.WriteString(" / 割引: 税抜合計に適用")
		}
	}
	return b.String()
}

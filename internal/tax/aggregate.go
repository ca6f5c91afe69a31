package tax

// RatedBase is a discounted line base tagged with its effective rate.
type RatedBase struct {
	Base float64
	Rate Rate
}

// Totals is the rounded outcome of an aggregation pass.
type Totals struct {
	Subtotal Money
	Tax      Money
	Total    Money
}

// TotalsByPolicy combines line bases into subtotal, tax and total under
// the policy's aggregation mode. Both modes model a real register
// behaviour: per-item rounding and per-rate-bracket rounding can differ
// by a few yen on the same cart, and that divergence is the point.
func TotalsByPolicy(lines []RatedBase, p Policy) Totals {
	p = NormalizePolicy(p)
	var t Totals

	if p.Aggregation == AggregateRateGroup {
		for _, rate := range LegalRates() {
			var sum float64
			seen := false
			for _, ln := range lines {
				if ln.Rate == rate {
					sum += ln.Base
					seen = true
				}
			}
			if !seen {
				continue
			}
			t.Subtotal += RoundTo(sum, p.Rounding, p.Unit)
			t.Total += RoundTo(sum*(1+float64(rate)), p.Rounding, p.Unit)
		}
	} else {
		for _, ln := range lines {
			t.Subtotal += RoundTo(ln.Base, p.Rounding, p.Unit)
			t.Total += RoundTo(ln.Base*(1+float64(ln.Rate)), p.Rounding, p.Unit)
		}
	}

	t.Tax = t.Total - t.Subtotal
	if t.Tax < 0 {
		t.Tax = 0
	}
	return t
}

package tax

import "sort"

// MaxSuggestions caps both result lists of a receipt verification.
const MaxSuggestions = 8

// Candidate is one evaluated policy configuration.
type Candidate struct {
	Policy   Policy `json:"policy"`
	PayTotal Money  `json:"payTotal"`
	Diff     Money  `json:"diff"`
}

// Suggestion holds the outcome of a receipt verification search.
type Suggestion struct {
	Matches []Candidate `json:"matches"`
	Closest []Candidate `json:"closest"`
}

// Suggest brute-forces every policy configuration (2 aggregations x 3
// rounding methods x 3 units x 4 conversion settings = 72 candidates)
// against the current cart and reports which ones reproduce the receipt
// total. The space is small and fixed, so exhaustive enumeration beats
// anything cleverer.
func Suggest(profile *Profile, lines []Line, discount CartDiscount, receiptTotal Money) Suggestion {
	if profile == nil || receiptTotal < 0 {
		return Suggestion{}
	}

	candidates := make([]Candidate, 0, 72)
	for _, agg := range []Aggregation{AggregateItem, AggregateRateGroup} {
		for _, method := range []RoundingMethod{RoundFloor, RoundNearest, RoundCeil} {
			for _, unit := range RoundingUnits {
				for _, incl := range []InclRounding{InclRoundNone, InclRounding(RoundFloor), InclRounding(RoundNearest), InclRounding(RoundCeil)} {
					trial := *profile
					trial.Policy = Policy{Aggregation: agg, Rounding: method, Unit: unit, InclToBase: incl}
					res := Compute(&trial, lines, discount)
					if !res.OK {
						return Suggestion{}
					}
					diff := res.PayTotal - receiptTotal
					if diff < 0 {
						diff = -diff
					}
					candidates = append(candidates, Candidate{
						Policy:   trial.Policy,
						PayTotal: res.PayTotal,
						Diff:     diff,
					})
				}
			}
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Diff < candidates[j].Diff
	})

	var out Suggestion
	for _, c := range candidates {
		if c.Diff == 0 && len(out.Matches) < MaxSuggestions {
			out.Matches = append(out.Matches, c)
		}
		if len(out.Closest) < MaxSuggestions {
			out.Closest = append(out.Closest, c)
		}
	}
	return out
}

// RateShortfall is the minimum additional tax-exclusive spend at one rate
// that closes the gap to a target amount.
type RateShortfall struct {
	Rate Rate  `json:"rate"`
	Base Money `json:"base"`
}

// ShortfallResult describes how far the current total is from a target
// pay amount, e.g. the face value of a gift voucher.
type ShortfallResult struct {
	OK      bool            `json:"ok"`
	Deficit Money           `json:"deficit"`
	Excess  Money           `json:"excess"`
	ByRate  []RateShortfall `json:"byRate,omitempty"`
}

// ShortfallToTarget reports, per accepted rate, the smallest pre-tax
// amount whose tax-included price covers the gap between the current
// total and the target.
func ShortfallToTarget(target, current Money, rates []Rate) ShortfallResult {
	if target <= 0 {
		return ShortfallResult{}
	}
	diff := target - current
	if diff <= 0 {
		return ShortfallResult{OK: true, Excess: -diff}
	}
	out := ShortfallResult{OK: true, Deficit: diff}
	for _, r := range NormalizeRates(rates) {
		// Integer percent arithmetic keeps ceil exact on round amounts.
		pct := Money(r.Percent())
		need := (diff*100 + (100 + pct) - 1) / (100 + pct)
		out.ByRate = append(out.ByRate, RateShortfall{Rate: r, Base: need})
	}
	return out
}

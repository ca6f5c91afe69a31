package tax

import "fmt"

// Rate is a consumption tax rate. Only the reduced 8% rate and the
// standard 10% rate are legal values.
type Rate float64

const (
	// Rate8 is the reduced rate applied to food and beverages.
	Rate8 Rate = 0.08
	// Rate10 is the standard rate.
	Rate10 Rate = 0.10
)

// LegalRates returns the rates a shop may accept, lowest first.
func LegalRates() []Rate {
	return []Rate{Rate8, Rate10}
}

// Valid reports whether r is a legal rate.
func (r Rate) Valid() bool {
	return r == Rate8 || r == Rate10
}

// Percent returns the rate as a whole percentage.
func (r Rate) Percent() int {
	return int(float64(r)*100 + 0.5)
}

// NormalizeRates filters rates down to legal values, preserving order and
// dropping duplicates. An empty result defaults to the standard rate.
func NormalizeRates(rates []Rate) []Rate {
	out := make([]Rate, 0, len(rates))
	for _, r := range rates {
		if !r.Valid() {
			continue
		}
		dup := false
		for _, seen := range out {
			if seen == r {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		out = append(out, Rate10)
	}
	return out
}

// Aggregation selects how line amounts are combined before rounding.
type Aggregation string

const (
	// AggregateItem rounds every line independently and sums the results.
	AggregateItem Aggregation = "item"
	// AggregateRateGroup sums raw bases per tax rate and rounds each group.
	AggregateRateGroup Aggregation = "rate_group"
)

// Valid reports whether a is a known aggregation mode.
func (a Aggregation) Valid() bool {
	return a == AggregateItem || a == AggregateRateGroup
}

// Label returns the Japanese wording for the aggregation mode.
func (a Aggregation) Label() string {
	if a == AggregateRateGroup {
		return "税率別合算方式"
	}
	return "個別課税方式"
}

// InclRounding governs rounding when converting a tax-included price back
// to its pre-tax base. InclRoundNone carries the full-precision division
// forward.
type InclRounding string

const InclRoundNone InclRounding = "none"

// Valid reports whether i is a known conversion rounding setting.
func (i InclRounding) Valid() bool {
	return i == InclRoundNone || RoundingMethod(i).Valid()
}

// Label returns the Japanese wording for the conversion rounding setting.
func (i InclRounding) Label() string {
	if i == InclRoundNone {
		return "端数処理なし"
	}
	return RoundingMethod(i).Label()
}

// Policy is a shop's rounding and tax-aggregation policy.
type Policy struct {
	Aggregation Aggregation    `json:"aggregation"`
	Rounding    RoundingMethod `json:"rounding"`
	Unit        int64          `json:"unit"`
	InclToBase  InclRounding   `json:"inclToBase"`
}

// NormalizePolicy is the canonical constructor for policies: every field
// that falls outside the legal variants is replaced with its default.
// Both freshly created and deserialized policies pass through here.
func NormalizePolicy(p Policy) Policy {
	if !p.Aggregation.Valid() {
		p.Aggregation = AggregateItem
	}
	if !p.Rounding.Valid() {
		p.Rounding = RoundFloor
	}
	if !ValidUnit(p.Unit) {
		p.Unit = 1
	}
	if !p.InclToBase.Valid() {
		p.InclToBase = InclRoundNone
	}
	return p
}

// Describe renders the policy the way it would be explained on a receipt
// check, e.g. 個別課税方式 / 切り捨て・1円単位 / 税込→税抜: 端数処理なし.
func (p Policy) Describe() string {
	p = NormalizePolicy(p)
	return fmt.Sprintf("%s / %s・%d円単位 / 税込→税抜: %s",
		p.Aggregation.Label(), p.Rounding.Label(), p.Unit, p.InclToBase.Label())
}

// Profile is the subset of a shop the engine needs: its policy and the
// tax rates it accepts.
type Profile struct {
	Name   string
	Policy Policy
	Rates  []Rate
}

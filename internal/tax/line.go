package tax

// PriceMode declares whether a line's price already includes tax.
type PriceMode string

const (
	PriceExcl PriceMode = "excl"
	PriceIncl PriceMode = "incl"
)

// LineDiscountType discriminates per-line discounts.
type LineDiscountType string

const (
	LineDiscountNone    LineDiscountType = "none"
	LineDiscountPercent LineDiscountType = "percent"
	LineDiscountYen     LineDiscountType = "yen"
)

// LineDiscount is an optional discount attached to a single line.
type LineDiscount struct {
	Type  LineDiscountType `json:"type"`
	Value float64          `json:"value"`
}

// Line is one cart entry as the engine sees it. Price carries whatever
// the caller parsed out of free-form input; negative or NaN-ish values
// are clamped during valuation.
type Line struct {
	Name      string       `json:"name"`
	Price     float64      `json:"price"`
	Qty       int          `json:"qty"`
	Rate      Rate         `json:"rate"`
	PriceMode PriceMode    `json:"priceMode"`
	Discount  LineDiscount `json:"discount"`
}

// BaseFromInclusive derives the pre-tax base of a tax-included price.
// When incl names a rounding method the division result is rounded to
// whole yen immediately; otherwise full precision is carried forward.
func BaseFromInclusive(priceIncl float64, rate Rate, incl InclRounding) float64 {
	base := priceIncl / (1 + float64(rate))
	if incl != InclRoundNone && RoundingMethod(incl).Valid() {
		base = float64(RoundTo(base, RoundingMethod(incl), 1))
	}
	return base
}

// LineBase computes a line's raw pre-tax amount. Rounding is deferred to
// aggregation; only the inclusive-price conversion may round here, and it
// does so per unit, before quantity is applied.
func LineBase(line Line, p Policy) float64 {
	qty := line.Qty
	if qty < 1 {
		qty = 1
	}
	price := line.Price
	if price < 0 {
		price = 0
	}
	if line.PriceMode == PriceIncl {
		price = BaseFromInclusive(price, line.Rate, p.InclToBase)
	}
	base := price * float64(qty)
	if base < 0 {
		base = 0
	}
	return base
}

// ApplyLineDiscount reduces a line base by its discount. Percent values
// are clamped to [0,100], yen values to >= 0, and the result never goes
// negative.
func ApplyLineDiscount(base float64, d LineDiscount) float64 {
	switch d.Type {
	case LineDiscountPercent:
		pct := d.Value
		if pct < 0 {
			pct = 0
		}
		if pct > 100 {
			pct = 100
		}
		base *= 1 - pct/100
	case LineDiscountYen:
		off := d.Value
		if off < 0 {
			off = 0
		}
		base -= off
	}
	if base < 0 {
		base = 0
	}
	return base
}

package cart

import (
	"strings"
	"time"

	"github.com/mitti-app/backend-regi/internal/common"
	"github.com/mitti-app/backend-regi/internal/tax"
)

// Line is one cart entry as typed by the user. Price, quantity and
// discount value stay free-form strings so typing never errors; they are
// converted leniently when a computation runs.
type Line struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Price         string  `json:"price"`
	Qty           string  `json:"qty"`
	Rate          float64 `json:"rate"`
	PriceMode     string  `json:"priceMode"`
	DiscountType  string  `json:"discountType"`
	DiscountValue string  `json:"discountValue"`
}

// Discount is the cart-level discount setting, at most one per cart.
type Discount struct {
	Type   string `json:"type"`
	Value  string `json:"value"`
	Target string `json:"target"`
}

// Cart is an in-progress receipt entry. It lives in Redis with a sliding
// TTL and is the only mutable state the engine's callers own.
type Cart struct {
	ID        string    `json:"id"`
	Lines     []Line    `json:"lines"`
	Discount  Discount  `json:"discount"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TaxLines converts the cart's free-form lines into engine input.
// Unparseable prices count as 0, unparseable quantities as 1; line order
// is preserved for display even though aggregation ignores it.
func (c Cart) TaxLines() []tax.Line {
	out := make([]tax.Line, 0, len(c.Lines))
	for _, ln := range c.Lines {
		out = append(out, tax.Line{
			Name:      ln.Name,
			Price:     common.AmountOrDefault(ln.Price, 0),
			Qty:       common.QtyOrDefault(ln.Qty, 1),
			Rate:      tax.Rate(ln.Rate),
			PriceMode: priceMode(ln.PriceMode),
			Discount: tax.LineDiscount{
				Type:  lineDiscountType(ln.DiscountType),
				Value: common.AmountOrDefault(ln.DiscountValue, 0),
			},
		})
	}
	return out
}

// TaxDiscount converts the cart-level discount into engine input.
func (c Cart) TaxDiscount() tax.CartDiscount {
	return tax.NormalizeCartDiscount(tax.CartDiscount{
		Type:   cartDiscountType(c.Discount.Type),
		Value:  common.AmountOrDefault(c.Discount.Value, 0),
		Target: tax.CartDiscountTarget(strings.TrimSpace(c.Discount.Target)),
	})
}

func priceMode(raw string) tax.PriceMode {
	if strings.TrimSpace(raw) == string(tax.PriceIncl) {
		return tax.PriceIncl
	}
	return tax.PriceExcl
}

func lineDiscountType(raw string) tax.LineDiscountType {
	switch strings.TrimSpace(raw) {
	case string(tax.LineDiscountPercent):
		return tax.LineDiscountPercent
	case string(tax.LineDiscountYen):
		return tax.LineDiscountYen
	}
	return tax.LineDiscountNone
}

func cartDiscountType(raw string) tax.CartDiscountType {
	switch strings.TrimSpace(raw) {
	case string(tax.CartDiscountPercent):
		return tax.CartDiscountPercent
	case string(tax.CartDiscountYen):
		return tax.CartDiscountYen
	}
	return tax.CartDiscountNone
}

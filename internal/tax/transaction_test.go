package tax_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mitti-app/backend-regi/internal/tax"
)

func itemFloorShop() *tax.Profile {
	return &tax.Profile{
		Name:   "店A",
		Policy: tax.Policy{Aggregation: tax.AggregateItem, Rounding: tax.RoundFloor, Unit: 1},
		Rates:  []tax.Rate{tax.Rate8, tax.Rate10},
	}
}

func groupFloorShop() *tax.Profile {
	p := itemFloorShop()
	p.Name = "店B"
	p.Policy.Aggregation = tax.AggregateRateGroup
	return p
}

func twoLineCart() []tax.Line {
	return []tax.Line{
		{Name: "牛乳", Price: 298, Qty: 1, Rate: tax.Rate8},
		{Name: "パン", Price: 198, Qty: 1, Rate: tax.Rate8},
	}
}

func TestAggregationModesDiverge(t *testing.T) {
	perItem := tax.Compute(itemFloorShop(), twoLineCart(), tax.CartDiscount{})
	require.True(t, perItem.OK)
	require.EqualValues(t, 534, perItem.PayTotal) // floor(321.84)+floor(213.84)
	require.EqualValues(t, 496, perItem.Subtotal)

	grouped := tax.Compute(groupFloorShop(), twoLineCart(), tax.CartDiscount{})
	require.True(t, grouped.OK)
	require.EqualValues(t, 535, grouped.PayTotal) // floor(496*1.08)
	require.EqualValues(t, 496, grouped.Subtotal)

	require.NotEqual(t, perItem.PayTotal, grouped.PayTotal)
}

func TestInclusivePriceRoundTrips(t *testing.T) {
	shop := &tax.Profile{
		Policy: tax.Policy{Aggregation: tax.AggregateItem, Rounding: tax.RoundNearest, Unit: 1},
		Rates:  []tax.Rate{tax.Rate10},
	}
	lines := []tax.Line{{Price: 108, Qty: 1, Rate: tax.Rate10, PriceMode: tax.PriceIncl}}
	res := tax.Compute(shop, lines, tax.CartDiscount{})
	require.True(t, res.OK)
	require.EqualValues(t, 108, res.PayTotal)
	require.EqualValues(t, 98, res.Subtotal)
}

func TestGuards(t *testing.T) {
	res := tax.Compute(nil, twoLineCart(), tax.CartDiscount{})
	require.False(t, res.OK)
	require.Equal(t, tax.NoteNoShop, res.Note)
	require.Zero(t, res.PayTotal)
	require.Zero(t, res.Subtotal)

	res = tax.Compute(itemFloorShop(), nil, tax.CartDiscount{})
	require.False(t, res.OK)
	require.Equal(t, tax.NoteEmptyCart, res.Note)
	require.Zero(t, res.PayTotal)
}

func TestRateCoercedToAcceptedSet(t *testing.T) {
	shop := &tax.Profile{
		Policy: tax.Policy{Aggregation: tax.AggregateItem, Rounding: tax.RoundFloor, Unit: 1},
		Rates:  []tax.Rate{tax.Rate10},
	}
	// The 8% line is coerced to the shop's first accepted rate.
	lines := []tax.Line{{Price: 100, Qty: 1, Rate: tax.Rate8}}
	res := tax.Compute(shop, lines, tax.CartDiscount{})
	require.True(t, res.OK)
	require.EqualValues(t, 110, res.PayTotal)
	require.EqualValues(t, 10, res.Tax)

	// Caller's line is untouched.
	require.Equal(t, tax.Rate8, lines[0].Rate)
}

func TestTaxNeverNegative(t *testing.T) {
	shops := []*tax.Profile{itemFloorShop(), groupFloorShop()}
	carts := [][]tax.Line{
		twoLineCart(),
		{{Price: 1, Qty: 1, Rate: tax.Rate8}},
		{{Price: 108, Qty: 5, Rate: tax.Rate10, PriceMode: tax.PriceIncl}},
		{{Price: 999, Qty: 2, Rate: tax.Rate10, Discount: tax.LineDiscount{Type: tax.LineDiscountPercent, Value: 95}}},
	}
	for _, shop := range shops {
		for _, m := range []tax.RoundingMethod{tax.RoundFloor, tax.RoundNearest, tax.RoundCeil} {
			trial := *shop
			trial.Policy.Rounding = m
			for _, cart := range carts {
				res := tax.Compute(&trial, cart, tax.CartDiscount{})
				require.True(t, res.OK)
				require.GreaterOrEqual(t, res.Tax, tax.Money(0))
				require.Equal(t, res.Tax, res.PayTotal-res.Subtotal)
			}
		}
	}
}

func TestBaseTargetCartDiscount(t *testing.T) {
	d := tax.CartDiscount{Type: tax.CartDiscountYen, Value: 100, Target: tax.DiscountTargetBase}
	res := tax.Compute(groupFloorShop(), twoLineCart(), d)
	require.True(t, res.OK)
	require.False(t, res.TaxApproximate)
	// Bases 496-100=396 summed per rate: floor(396)=396, floor(396*1.08)=427.
	require.EqualValues(t, 396, res.Subtotal)
	require.EqualValues(t, 427, res.PayTotal)
	require.EqualValues(t, 535, res.TotalBeforeDiscount)
	require.EqualValues(t, 108, res.DiscountAmount)
}

func TestTotalTargetCartDiscountKeepsBaselineTax(t *testing.T) {
	d := tax.CartDiscount{Type: tax.CartDiscountYen, Value: 35, Target: tax.DiscountTargetTotal}
	res := tax.Compute(groupFloorShop(), twoLineCart(), d)
	require.True(t, res.OK)
	require.True(t, res.TaxApproximate)
	require.EqualValues(t, 500, res.PayTotal)
	require.EqualValues(t, 35, res.DiscountAmount)
	// Subtotal and tax stay at their pre-discount values.
	require.EqualValues(t, 496, res.Subtotal)
	require.EqualValues(t, 39, res.Tax)
	require.Contains(t, res.Note, "税額は参考値")
}

func TestTotalTargetPercentReRounded(t *testing.T) {
	d := tax.CartDiscount{Type: tax.CartDiscountPercent, Value: 10, Target: tax.DiscountTargetTotal}
	res := tax.Compute(groupFloorShop(), twoLineCart(), d)
	require.True(t, res.OK)
	require.EqualValues(t, 481, res.PayTotal) // floor(535*0.9)=481
	require.EqualValues(t, 54, res.DiscountAmount)
}

func TestOversizedDiscountClampsToZero(t *testing.T) {
	d := tax.CartDiscount{Type: tax.CartDiscountYen, Value: 100000, Target: tax.DiscountTargetTotal}
	res := tax.Compute(itemFloorShop(), twoLineCart(), d)
	require.True(t, res.OK)
	require.Zero(t, res.PayTotal)
	require.EqualValues(t, res.TotalBeforeDiscount, res.DiscountAmount)
}

func TestZeroValueDiscountIsIgnored(t *testing.T) {
	d := tax.CartDiscount{Type: tax.CartDiscountPercent, Value: 0, Target: tax.DiscountTargetTotal}
	res := tax.Compute(itemFloorShop(), twoLineCart(), d)
	require.True(t, res.OK)
	require.Zero(t, res.DiscountAmount)
	require.Equal(t, res.TotalBeforeDiscount, res.PayTotal)
	require.NotContains(t, res.Note, "割引")
}

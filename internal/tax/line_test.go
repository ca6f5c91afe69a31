package tax_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mitti-app/backend-regi/internal/tax"
)

func TestBaseFromInclusive(t *testing.T) {
	base := tax.BaseFromInclusive(108, tax.Rate10, tax.InclRoundNone)
	require.InDelta(t, 98.1818, base, 0.001)

	require.EqualValues(t, 98, tax.BaseFromInclusive(108, tax.Rate10, tax.InclRounding(tax.RoundFloor)))
	require.EqualValues(t, 99, tax.BaseFromInclusive(108, tax.Rate10, tax.InclRounding(tax.RoundCeil)))
	require.EqualValues(t, 100, tax.BaseFromInclusive(108, tax.Rate8, tax.InclRounding(tax.RoundNearest)))
}

func TestLineBaseClamps(t *testing.T) {
	p := tax.NormalizePolicy(tax.Policy{})

	// Quantity below one counts as one; negative price counts as zero.
	require.InDelta(t, 298, tax.LineBase(tax.Line{Price: 298, Qty: 0, Rate: tax.Rate10}, p), 1e-9)
	require.InDelta(t, 0, tax.LineBase(tax.Line{Price: -50, Qty: 3, Rate: tax.Rate10}, p), 1e-9)
	require.InDelta(t, 894, tax.LineBase(tax.Line{Price: 298, Qty: 3, Rate: tax.Rate10}, p), 1e-9)
}

func TestLineBaseInclusiveConversionBeforeQuantity(t *testing.T) {
	p := tax.NormalizePolicy(tax.Policy{InclToBase: tax.InclRounding(tax.RoundFloor)})
	line := tax.Line{Price: 103, Qty: 3, Rate: tax.Rate10, PriceMode: tax.PriceIncl}
	// floor(103/1.10)=93 per unit, then x3 = 279. Converting after
	// quantity would give floor(309/1.10)=280 instead.
	require.InDelta(t, 279, tax.LineBase(line, p), 1e-9)
	require.EqualValues(t, 93*3, tax.LineBase(line, p))
}

func TestApplyLineDiscount(t *testing.T) {
	require.InDelta(t, 90, tax.ApplyLineDiscount(100, tax.LineDiscount{Type: tax.LineDiscountPercent, Value: 10}), 1e-9)
	require.InDelta(t, 70, tax.ApplyLineDiscount(100, tax.LineDiscount{Type: tax.LineDiscountYen, Value: 30}), 1e-9)
	require.InDelta(t, 100, tax.ApplyLineDiscount(100, tax.LineDiscount{}), 1e-9)

	// Percent above 100 behaves like a full discount; yen discounts never
	// push a base negative.
	require.InDelta(t, 0, tax.ApplyLineDiscount(100, tax.LineDiscount{Type: tax.LineDiscountPercent, Value: 150}), 1e-9)
	require.InDelta(t, 0, tax.ApplyLineDiscount(100, tax.LineDiscount{Type: tax.LineDiscountYen, Value: 500}), 1e-9)
	require.InDelta(t, 100, tax.ApplyLineDiscount(100, tax.LineDiscount{Type: tax.LineDiscountPercent, Value: -20}), 1e-9)
}

package tax

import "math"

// Money is a monetary value in whole yen.
type Money = int64

// RoundingMethod selects how fractional amounts are resolved.
type RoundingMethod string

const (
	// RoundFloor rounds down.
	RoundFloor RoundingMethod = "floor"
	// RoundCeil rounds up.
	RoundCeil RoundingMethod = "ceil"
	// RoundNearest rounds half up.
	RoundNearest RoundingMethod = "round"
)

// Valid reports whether m is a known rounding method.
func (m RoundingMethod) Valid() bool {
	switch m {
	case RoundFloor, RoundCeil, RoundNearest:
		return true
	}
	return false
}

// Label returns the Japanese receipt wording for the method.
func (m RoundingMethod) Label() string {
	switch m {
	case RoundCeil:
		return "切り上げ"
	case RoundNearest:
		return "四捨五入"
	default:
		return "切り捨て"
	}
}

// RoundingUnits lists the units a shop may round to.
var RoundingUnits = []int64{1, 10, 100}

// ValidUnit reports whether unit is an accepted rounding unit.
func ValidUnit(unit int64) bool {
	for _, u := range RoundingUnits {
		if unit == u {
			return true
		}
	}
	return false
}

// RoundTo rounds value to the given unit. Every monetary rounding in the
// engine goes through here so all components agree on half-up semantics.
func RoundTo(value float64, method RoundingMethod, unit int64) Money {
	if unit < 1 {
		unit = 1
	}
	q := value / float64(unit)
	var r float64
	switch method {
	case RoundCeil:
		r = math.Ceil(q)
	case RoundNearest:
		r = math.Floor(q + 0.5)
	default:
		r = math.Floor(q)
	}
	return Money(r) * unit
}

package common

import (
	"strconv"
	"strings"
)

// The calculator accepts price, quantity and discount fields as free-form
// text so typing is never interrupted; parsing is lenient and falls back
// to each field's identity default instead of erroring.

// AmountOrDefault parses a free-form monetary string. Unparseable input
// yields def.
func AmountOrDefault(value string, def float64) float64 {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return def
	}
	return parsed
}

// QtyOrDefault parses a free-form quantity string. Unparseable input
// yields def.
func QtyOrDefault(value string, def int) int {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return def
	}
	parsed, err := strconv.Atoi(trimmed)
	if err != nil {
		return def
	}
	return parsed
}

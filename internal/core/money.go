// Package core holds the ledger domain: dates, money amounts, entries and
// the weekday localization table. It has no dependencies beyond the standard
// library so every store backend can build on it.
package core

import (
	"fmt"
	"strconv"
	"strings"
)

// Euros returns the euro value as a float64 for display purposes.
// Use cents for calculations to avoid floating-point precision issues.
func (m Money) Euros() float64 {
	return float64(m.Cents) / 100.0
}

// Format renders the amount as a human-readable euro string, dropping the
// fractional part when it is zero ("20" rather than "20.00").
func (m Money) Format() string {
	if m.Cents%100 == 0 {
		return strconv.FormatInt(m.Cents/100, 10)
	}
	return strings.TrimRight(fmt.Sprintf("%.2f", m.Euros()), "0")
}

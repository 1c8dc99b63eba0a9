// Package units normalizes physical quantities per product unit. The litre
// unit is continuous and kept at one fractional digit; every other unit is
// discrete and kept integral.
package units

import (
	"github.com/shopspring/decimal"
)

// Litre is the only continuous unit the catalog knows.
const Litre = "litre"

// Format renders a quantity for display: one fractional digit for litres,
// the integer part for discrete units.
func Format(quantity float64, unit string) string {
	d := decimal.NewFromFloat(quantity)
	if unit == Litre {
		return d.StringFixed(1)
	}
	return d.Floor().String()
}

// Normalize snaps a quantity to the unit's precision: nearest 0.1 for litres,
// floor for discrete units.
func Normalize(quantity float64, unit string) float64 {
	d := decimal.NewFromFloat(quantity)
	if unit == Litre {
		f, _ := d.Round(1).Float64()
		return f
	}
	f, _ := d.Floor().Float64()
	return f
}

// Step returns the input increment for a unit.
func Step(unit string) float64 {
	if unit == Litre {
		return 0.1
	}
	return 1
}

// LineTotal computes quantity * unitPrice without accumulating float error.
func LineTotal(quantity, unitPrice float64) float64 {
	total, _ := decimal.NewFromFloat(quantity).Mul(decimal.NewFromFloat(unitPrice)).Float64()
	return total
}

package units

import (
	"fmt"
	"math"
)

// Unit is a user-facing weight display unit. Storage is always kilograms.
type Unit string

const (
	Kilograms Unit = "kg"
	Pounds    Unit = "lb"
)

const kgPerLb = 0.45359237

// Default weekly overload increments when an exercise doesn't configure one.
const (
	DefaultIncrementKg = 2.5
	DefaultIncrementLb = 5.0
)

// KgToLb converts a canonical kilogram value for display.
func KgToLb(kg float64) float64 {
	return kg / kgPerLb
}

// LbToKg converts user input in pounds to the canonical storage unit.
func LbToKg(lb float64) float64 {
	return lb * kgPerLb
}

// DefaultIncrement returns the default weekly increment in kilograms for the
// given display unit. The pound default is a round 5 lb, converted.
func DefaultIncrement(u Unit) float64 {
	if u == Pounds {
		return LbToKg(DefaultIncrementLb)
	}
	return DefaultIncrementKg
}

// Format renders a kilogram weight in the given unit. Negative weights are
// assisted (weight removed, not added) and are labelled rather than clamped.
func Format(kg float64, u Unit) string {
	v := kg
	if u == Pounds {
		v = KgToLb(kg)
	}
	if v < 0 {
		return fmt.Sprintf("%s %s assisted", trimZeros(math.Abs(v)), u)
	}
	return fmt.Sprintf("%s %s", trimZeros(v), u)
}

func trimZeros(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	for len(s) > 0 && s[len(s)-1] == '0' {
		s = s[:len(s)-1]
	}
	if len(s) > 0 && s[len(s)-1] == '.' {
		s = s[:len(s)-1]
	}
	return s
}

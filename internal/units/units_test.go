package units

import (
	"math"
	"testing"
)

// TestConversionRoundTrip verifies kg/lb conversion against the exact
// definition of the pound.
func TestConversionRoundTrip(t *testing.T) {
	if got := LbToKg(1); got != 0.45359237 {
		t.Errorf("LbToKg(1) = %v, want 0.45359237", got)
	}
	for _, kg := range []float64{0, 2.5, 100, -20} {
		back := LbToKg(KgToLb(kg))
		if math.Abs(back-kg) > 1e-9 {
			t.Errorf("round trip of %v kg drifted to %v", kg, back)
		}
	}
}

// TestDefaultIncrement verifies the per-unit default weekly increment, always
// expressed in kilograms.
func TestDefaultIncrement(t *testing.T) {
	if got := DefaultIncrement(Kilograms); got != 2.5 {
		t.Errorf("kg default = %v, want 2.5", got)
	}
	want := LbToKg(5)
	if got := DefaultIncrement(Pounds); got != want {
		t.Errorf("lb default = %v, want %v", got, want)
	}
}

// TestFormat verifies display formatting, including the assisted label for
// negative weights.
func TestFormat(t *testing.T) {
	cases := []struct {
		kg   float64
		unit Unit
		want string
	}{
		{100, Kilograms, "100 kg"},
		{102.5, Kilograms, "102.5 kg"},
		{0, Kilograms, "0 kg"},
		{-20, Kilograms, "20 kg assisted"},
		{45.359237, Pounds, "100 lb"},
	}
	for _, tc := range cases {
		if got := Format(tc.kg, tc.unit); got != tc.want {
			t.Errorf("Format(%v, %s) = %q, want %q", tc.kg, tc.unit, got, tc.want)
		}
	}
}

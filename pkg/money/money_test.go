package money

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		raw  string
		want float64
	}{
		{"2.300,50", 2300.50},
		{"45,00", 45.00},
		{"45.00", 45.00},
		{"", 0},
		{"abc", 0},
		{"$ 1.234,56", 1234.56},
		{"1.234.567,89", 1234567.89},
		{"1200", 1200},
		{"0,99", 0.99},
		{"12,34,56", 0},
		{"ARS 45", 45},
	}
	for _, tc := range cases {
		if got := Normalize(tc.raw); got != tc.want {
			t.Fatalf("Normalize(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func TestFromAny(t *testing.T) {
	if got := FromAny(19.99); got != 19.99 {
		t.Fatalf("float64 price: got %v", got)
	}
	if got := FromAny("2.300,50"); got != 2300.50 {
		t.Fatalf("string price: got %v", got)
	}
	if got := FromAny(nil); got != 0 {
		t.Fatalf("nil price: got %v", got)
	}
	if got := FromAny(map[string]any{}); got != 0 {
		t.Fatalf("unsupported price type: got %v", got)
	}
}

func TestSubtotalAvoidsFloatDrift(t *testing.T) {
	// 0.1 * 3 under plain float64 math is 0.30000000000000004.
	if got := Subtotal(0.1, 3); got != 0.3 {
		t.Fatalf("Subtotal(0.1, 3) = %v, want 0.3", got)
	}
	if got := Subtotal(10, 2); got != 20 {
		t.Fatalf("Subtotal(10, 2) = %v, want 20", got)
	}
}

func TestSum(t *testing.T) {
	if got := Sum(0.1, 0.2); got != 0.3 {
		t.Fatalf("Sum(0.1, 0.2) = %v, want 0.3", got)
	}
	if got := Sum(); got != 0 {
		t.Fatalf("empty Sum = %v, want 0", got)
	}
}

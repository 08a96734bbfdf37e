package precise

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestStringArithmetic(t *testing.T) {
	tests := []struct {
		name string
		fn   func(a, b string) string
		a, b string
		want string
	}{
		{"mul exact", StringMul, "0.1", "0.2", "0.02"},
		{"mul cost", StringMul, "11881.06", "0.0148", "175.839688"},
		{"add", StringAdd, "0.1", "0.2", "0.3"},
		{"sub", StringSub, "0.02", "0.0052", "0.0148"},
		{"div", StringDiv, "1", "8", "0.125"},
		{"div by zero", StringDiv, "1", "0", ""},
		{"empty operand", StringMul, "", "2", ""},
		{"garbage operand", StringAdd, "abc", "2", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(tt.a, tt.b); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func num(t *testing.T, s string) *decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return &d
}

func TestPointerArithmetic(t *testing.T) {
	a := num(t, "0.02")
	b := num(t, "0.0052")
	if got := Sub(a, b); got == nil || got.String() != "0.0148" {
		t.Errorf("Sub = %v, want 0.0148", got)
	}
	if got := Sub(a, nil); got != nil {
		t.Errorf("Sub with nil = %v, want nil", got)
	}
	if got := Add(a, b); got == nil || got.String() != "0.0252" {
		t.Errorf("Add = %v, want 0.0252", got)
	}
	if got := Div(a, num(t, "0")); got != nil {
		t.Errorf("Div by zero = %v, want nil", got)
	}
	neg := num(t, "-5")
	if got := Abs(neg); got == nil || got.String() != "5" {
		t.Errorf("Abs = %v, want 5", got)
	}
}

func TestCostOf(t *testing.T) {
	price := num(t, "0.07")
	amount := num(t, "3")
	got := CostOf(price, amount, 2)
	if got == nil || got.String() != "0.21" {
		t.Errorf("CostOf = %v, want 0.21", got)
	}
	if CostOf(nil, amount, 2) != nil {
		t.Error("CostOf with nil price should be nil")
	}
}

func TestPrecisionFromTickSize(t *testing.T) {
	tests := []struct {
		tick string
		want int32
	}{
		{"0.0001", 4},
		{"0.00000001", 8},
		{"0.1", 1},
		{"1", 0},
		{"10", 0},
		{"", 0},
		{"0", 0},
		{"0.0100", 2},
	}
	for _, tt := range tests {
		if got := PrecisionFromTickSize(tt.tick); got != tt.want {
			t.Errorf("PrecisionFromTickSize(%q) = %d, want %d", tt.tick, got, tt.want)
		}
	}
}

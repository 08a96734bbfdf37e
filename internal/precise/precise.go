// Package precise provides decimal-string arithmetic for normalizers.
// Cost and amount derivations must not go through raw float math: values
// round-trip back into new orders and float drift there is a real bug.
package precise

import (
	"strings"

	"github.com/shopspring/decimal"
)

// StringMul multiplies two decimal strings. Empty input yields "".
func StringMul(a, b string) string {
	x, y, ok := pair(a, b)
	if !ok {
		return ""
	}
	return x.Mul(y).String()
}

// StringAdd adds two decimal strings. Empty input yields "".
func StringAdd(a, b string) string {
	x, y, ok := pair(a, b)
	if !ok {
		return ""
	}
	return x.Add(y).String()
}

// StringSub subtracts b from a. Empty input yields "".
func StringSub(a, b string) string {
	x, y, ok := pair(a, b)
	if !ok {
		return ""
	}
	return x.Sub(y).String()
}

// StringDiv divides a by b. Empty input or division by zero yields "".
func StringDiv(a, b string) string {
	x, y, ok := pair(a, b)
	if !ok || y.IsZero() {
		return ""
	}
	return x.Div(y).String()
}

func pair(a, b string) (decimal.Decimal, decimal.Decimal, bool) {
	if a == "" || b == "" {
		return decimal.Decimal{}, decimal.Decimal{}, false
	}
	x, err := decimal.NewFromString(a)
	if err != nil {
		return decimal.Decimal{}, decimal.Decimal{}, false
	}
	y, err := decimal.NewFromString(b)
	if err != nil {
		return decimal.Decimal{}, decimal.Decimal{}, false
	}
	return x, y, true
}

// Mul multiplies two optional numerics, nil when either is absent.
func Mul(a, b *decimal.Decimal) *decimal.Decimal {
	if a == nil || b == nil {
		return nil
	}
	d := a.Mul(*b)
	return &d
}

// Add adds two optional numerics, nil when either is absent.
func Add(a, b *decimal.Decimal) *decimal.Decimal {
	if a == nil || b == nil {
		return nil
	}
	d := a.Add(*b)
	return &d
}

// Sub subtracts b from a, nil when either is absent.
func Sub(a, b *decimal.Decimal) *decimal.Decimal {
	if a == nil || b == nil {
		return nil
	}
	d := a.Sub(*b)
	return &d
}

// Div divides a by b, nil when either is absent or b is zero.
func Div(a, b *decimal.Decimal) *decimal.Decimal {
	if a == nil || b == nil || b.IsZero() {
		return nil
	}
	d := a.Div(*b)
	return &d
}

// Abs returns the absolute value of an optional numeric.
func Abs(a *decimal.Decimal) *decimal.Decimal {
	if a == nil {
		return nil
	}
	d := a.Abs()
	return &d
}

// Round rounds an optional numeric to the given number of decimal places.
func Round(a *decimal.Decimal, places int32) *decimal.Decimal {
	if a == nil {
		return nil
	}
	d := a.Round(places)
	return &d
}

// CostOf computes price*amount rounded to the market's price precision.
func CostOf(price, amount *decimal.Decimal, pricePrecision int32) *decimal.Decimal {
	return Round(Mul(price, amount), pricePrecision)
}

// PrecisionFromTickSize converts a tick-size string such as "0.0001" to the
// equivalent number of decimal places (4). Integer tick sizes map to 0.
func PrecisionFromTickSize(tick string) int32 {
	d, err := decimal.NewFromString(tick)
	if err != nil || d.IsZero() {
		return 0
	}
	if exp := d.Exponent(); exp < 0 {
		s := strings.TrimRight(d.String(), "0")
		if i := strings.IndexByte(s, '.'); i >= 0 {
			return int32(len(s) - i - 1)
		}
	}
	return 0
}

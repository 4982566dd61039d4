package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatBRL renders a value as Brazilian currency, e.g. 1234.5 -> "R$ 1.234,50".
// Rounding goes through decimal so 0.1+0.2 style float noise never leaks into
// customer-facing text.
func FormatBRL(v float64) string {
	d := decimal.NewFromFloat(v).Round(2)

	neg := d.IsNegative()
	if neg {
		d = d.Neg()
	}

	fixed := d.StringFixed(2) // "1234.50"
	intPart, fracPart, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	if neg {
		b.WriteString("-")
	}
	b.WriteString("R$ ")
	b.WriteString(groupThousands(intPart))
	b.WriteString(",")
	b.WriteString(fracPart)
	return b.String()
}

func groupThousands(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}
	var b strings.Builder
	head := n % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteString(".")
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// DiscountPercent returns the rounded promotional discount in percent, or 0
// when the promo price is absent or not actually a discount.
func DiscountPercent(price, promo float64) int {
	if promo <= 0 || promo >= price || price <= 0 {
		return 0
	}
	p := decimal.NewFromFloat(price)
	d := p.Sub(decimal.NewFromFloat(promo)).
		Div(p).
		Mul(decimal.NewFromInt(100)).
		Round(0)
	return int(d.IntPart())
}

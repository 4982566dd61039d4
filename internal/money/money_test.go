package money

import "testing"

func TestFormatBRL(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "R$ 0,00"},
		{18.50, "R$ 18,50"},
		{32.9, "R$ 32,90"},
		{149.90, "R$ 149,90"},
		{299.80, "R$ 299,80"},
		{1234.5, "R$ 1.234,50"},
		{1234567.89, "R$ 1.234.567,89"},
		{-42.10, "-R$ 42,10"},
	}
	for _, c := range cases {
		if got := FormatBRL(c.in); got != c.want {
			t.Errorf("FormatBRL(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestDiscountPercent(t *testing.T) {
	cases := []struct {
		price, promo float64
		want         int
	}{
		{100, 80, 20},
		{100, 0, 0},
		{100, 100, 0},
		{100, 120, 0},
		{0, 10, 0},
		{149.90, 119.90, 20},
		{199.90, 149.90, 25},
	}
	for _, c := range cases {
		if got := DiscountPercent(c.price, c.promo); got != c.want {
			t.Errorf("DiscountPercent(%v, %v) = %d, want %d", c.price, c.promo, got, c.want)
		}
	}
}

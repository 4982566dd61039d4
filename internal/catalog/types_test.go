package catalog

import "testing"

func promo(v float64) *float64 { return &v }

func TestEffectivePrice(t *testing.T) {
	cases := []struct {
		name string
		p    Product
		want float64
	}{
		{"no promo", Product{Price: 100}, 100},
		{"promo lower", Product{Price: 100, PromoPrice: promo(80)}, 80},
		{"promo equal to list", Product{Price: 100, PromoPrice: promo(100)}, 100},
		{"promo above list", Product{Price: 100, PromoPrice: promo(120)}, 100},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.p.EffectivePrice(); got != c.want {
				t.Errorf("EffectivePrice() = %v, want %v", got, c.want)
			}
		})
	}
}

func TestFirstImageURL(t *testing.T) {
	p := Product{}
	if got := p.FirstImageURL(); got != "" {
		t.Errorf("expected empty url, got %q", got)
	}
	p.Images = []ProductImage{{URL: "a.jpg", Order: 0}, {URL: "b.jpg", Order: 1}}
	if got := p.FirstImageURL(); got != "a.jpg" {
		t.Errorf("FirstImageURL() = %q, want a.jpg", got)
	}
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Torneira de Pressão": "torneira-de-pressao",
		"  Chuveiro   Elétrico  ": "chuveiro-eletrico",
		"Kit 3/4\" Completo": "kit-34-completo",
		"já-com-hífen":       "ja-com-hifen",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

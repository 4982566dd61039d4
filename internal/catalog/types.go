package catalog

import "time"

// ProductImage is one entry of a product's ordered gallery.
type ProductImage struct {
	URL   string `json:"url"`
	Order int    `json:"ordem"`
	Alt   string `json:"alt,omitempty"`
}

// Product is the catalog read model. Dimensions feed shipping quotes; the
// image list is ordered and the first entry is what order snapshots keep.
type Product struct {
	ID               string            `json:"id"`
	CategoryID       string            `json:"category_id"`
	Name             string            `json:"nome"`
	Slug             string            `json:"slug"`
	ShortDescription string            `json:"descricao_curta"`
	FullDescription  string            `json:"descricao_completa"`
	Price            float64           `json:"preco"`
	PromoPrice       *float64          `json:"preco_promocional"`
	SKU              string            `json:"sku"`
	Stock            int               `json:"estoque"`
	WeightKg         float64           `json:"peso_kg"`
	HeightCm         float64           `json:"altura_cm"`
	WidthCm          float64           `json:"largura_cm"`
	LengthCm         float64           `json:"comprimento_cm"`
	Active           bool              `json:"ativo"`
	Featured         bool              `json:"destaque"`
	Images           []ProductImage    `json:"imagens"`
	Specs            map[string]string `json:"especificacoes,omitempty"`
	Tags             []string          `json:"tags,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// EffectivePrice applies the single pricing rule of the storefront: the
// promotional price wins only when present and strictly below the list price.
func (p Product) EffectivePrice() float64 {
	if p.PromoPrice != nil && *p.PromoPrice < p.Price {
		return *p.PromoPrice
	}
	return p.Price
}

// FirstImageURL returns the leading gallery image, or empty when the product
// has none.
func (p Product) FirstImageURL() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0].URL
}

// Category groups products for display. Admin CRUD lives elsewhere; the
// storefront only reads.
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"nome"`
	Slug        string    `json:"slug"`
	Description string    `json:"descricao"`
	ImageURL    string    `json:"imagem_url"`
	Active      bool      `json:"ativo"`
	SortOrder   int       `json:"ordem"`
	CreatedAt   time.Time `json:"created_at"`
}

package orders

import "time"

// Status values an order moves through. Transitions are explicit operator
// actions from the admin surface; the storefront only ever creates orders in
// StatusAwaitingConfirmation.
const (
	StatusAwaitingConfirmation = "aguardando_confirmacao"
	StatusConfirmed            = "confirmado"
	StatusInProduction         = "em_producao"
	StatusShipped              = "enviado"
	StatusDelivered            = "entregue"
	StatusCancelled            = "cancelado"
)

// Statuses enumerates every order status in lifecycle order.
func Statuses() []string {
	return []string{
		StatusAwaitingConfirmation,
		StatusConfirmed,
		StatusInProduction,
		StatusShipped,
		StatusDelivered,
		StatusCancelled,
	}
}

// IsTerminal reports whether no further transition is possible.
func IsTerminal(status string) bool {
	return status == StatusDelivered || status == StatusCancelled
}

// CanTransition presents the legal transition set: strictly forward through
// the lifecycle, with cancellation reachable from any non-terminal state.
func CanTransition(from, to string) bool {
	if IsTerminal(from) {
		return false
	}
	if to == StatusCancelled {
		return true
	}
	next := map[string]string{
		StatusAwaitingConfirmation: StatusConfirmed,
		StatusConfirmed:            StatusInProduction,
		StatusInProduction:         StatusShipped,
		StatusShipped:              StatusDelivered,
	}
	return next[from] == to
}

// Item is a frozen snapshot of one cart line at finalization time. Later
// catalog edits cannot alter historical orders.
type Item struct {
	ProductID string  `json:"product_id" dynamodbav:"product_id"`
	Name      string  `json:"nome" dynamodbav:"nome"`
	SKU       string  `json:"sku" dynamodbav:"sku"`
	UnitPrice float64 `json:"preco" dynamodbav:"preco"`
	Quantity  int     `json:"quantidade" dynamodbav:"quantidade"`
	ImageURL  string  `json:"imagem_url,omitempty" dynamodbav:"imagem_url,omitempty"`
}

// ShippingAddress is the copied delivery address.
type ShippingAddress struct {
	CEP          string `json:"cep" dynamodbav:"cep"`
	Street       string `json:"logradouro" dynamodbav:"logradouro"`
	Number       string `json:"numero" dynamodbav:"numero"`
	Complement   string `json:"complemento,omitempty" dynamodbav:"complemento,omitempty"`
	Neighborhood string `json:"bairro" dynamodbav:"bairro"`
	City         string `json:"cidade" dynamodbav:"cidade"`
	State        string `json:"estado" dynamodbav:"estado"`
	Reference    string `json:"referencia,omitempty" dynamodbav:"referencia,omitempty"`
}

// Order is the immutable snapshot persisted at finalization. Customer and
// address fields are copies, not references.
type Order struct {
	OrderID         string          `json:"order_id" dynamodbav:"order_id"` // PK
	OrderNumber     string          `json:"numero_pedido" dynamodbav:"numero_pedido"`
	CustomerName    string          `json:"customer_name" dynamodbav:"customer_name"`
	CustomerEmail   string          `json:"customer_email" dynamodbav:"customer_email"`
	CustomerCPF     string          `json:"customer_cpf" dynamodbav:"customer_cpf"`
	CustomerPhone   string          `json:"customer_phone" dynamodbav:"customer_phone"`
	ShippingAddress ShippingAddress `json:"shipping_address" dynamodbav:"shipping_address"`
	Items           []Item          `json:"items" dynamodbav:"items"`
	Subtotal        float64         `json:"subtotal" dynamodbav:"subtotal"`
	ShippingCost    float64         `json:"shipping_cost" dynamodbav:"shipping_cost"`
	ShippingMethod  string          `json:"shipping_method" dynamodbav:"shipping_method"`
	Total           float64         `json:"total" dynamodbav:"total"`
	Status          string          `json:"status" dynamodbav:"status"`
	WhatsAppSentAt  *time.Time      `json:"whatsapp_sent_at,omitempty" dynamodbav:"whatsapp_sent_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" dynamodbav:"updated_at"`
}

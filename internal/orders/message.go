package orders

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/diamanteazul/storefront-api/internal/money"
	"github.com/diamanteazul/storefront-api/internal/validation"
)

const messageDivider = "━━━━━━━━━━━━━━━━"

// BuildHandoffMessage renders the order as the structured WhatsApp text the
// salesperson works from. The receiving human depends on completeness:
// every item line, both totals, the full customer identity and the full
// delivery address must be present.
func BuildHandoffMessage(o Order, freeShipping bool, leadTimeDays int) string {
	var lines []string
	for _, it := range o.Items {
		lines = append(lines, fmt.Sprintf("• %dx %s - %s (cada)", it.Quantity, it.Name, money.FormatBRL(it.UnitPrice)))
	}
	prodLines := strings.Join(lines, "\n")

	freteLabel := fmt.Sprintf("%s - %d dias úteis", o.ShippingMethod, leadTimeDays)
	freteValue := money.FormatBRL(o.ShippingCost)
	if freeShipping {
		freteLabel = "Grátis 🎉"
		freteValue = "R$ 0,00"
	}

	var b strings.Builder
	b.WriteString("Olá! Gostaria de fazer um pedido: 🛒\n\n")
	b.WriteString("*DADOS DO PEDIDO*\n")
	b.WriteString(messageDivider + "\n")
	b.WriteString("*Produtos:*\n")
	b.WriteString(prodLines + "\n\n")
	b.WriteString(fmt.Sprintf("*Subtotal:* %s\n", money.FormatBRL(o.Subtotal)))
	b.WriteString(fmt.Sprintf("*Frete (%s):* %s\n", freteLabel, freteValue))
	b.WriteString(fmt.Sprintf("*TOTAL: %s*\n\n", money.FormatBRL(o.Total)))
	b.WriteString(messageDivider + "\n")
	b.WriteString("*DADOS DO CLIENTE*\n")
	b.WriteString(fmt.Sprintf("Nome: %s\n", o.CustomerName))
	b.WriteString(fmt.Sprintf("Email: %s\n", o.CustomerEmail))
	b.WriteString(fmt.Sprintf("CPF: %s\n", o.CustomerCPF))
	b.WriteString(fmt.Sprintf("Telefone: %s\n\n", o.CustomerPhone))
	b.WriteString("*ENDEREÇO DE ENTREGA*\n")

	addr := o.ShippingAddress
	street := fmt.Sprintf("%s, %s", addr.Street, addr.Number)
	if addr.Complement != "" {
		street += " - " + addr.Complement
	}
	b.WriteString(street + "\n")
	b.WriteString(fmt.Sprintf("%s - %s/%s\n", addr.Neighborhood, addr.City, addr.State))
	b.WriteString(fmt.Sprintf("CEP: %s\n", validation.FormatCEP(addr.CEP)))
	if addr.Reference != "" {
		b.WriteString(fmt.Sprintf("Referência: %s\n", addr.Reference))
	}
	b.WriteString("\nAguardo confirmação e forma de pagamento! 😊")

	return b.String()
}

// HandoffURL builds the wa.me deep link carrying the message.
func HandoffURL(phoneNumber, message string) string {
	return fmt.Sprintf("https://wa.me/%s?text=%s", phoneNumber, url.QueryEscape(message))
}

package orders

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/diamanteazul/storefront-api/internal/awsx"
	"github.com/diamanteazul/storefront-api/internal/cart"
	"github.com/diamanteazul/storefront-api/internal/checkout"
	"github.com/diamanteazul/storefront-api/internal/shipping"
)

// FreeShippingLabel is the shipping method recorded when the threshold is met.
const FreeShippingLabel = "Frete Grátis"

// OrderStore is the persistence surface the finalizer needs.
type OrderStore interface {
	Insert(ctx context.Context, order Order) error
}

// EventPublisher hands the order-created event to the back office.
type EventPublisher interface {
	Publish(ctx context.Context, payload any, attributes map[string]string) error
}

// Result reports the outcome of a finalization. Persisted is false when the
// store insert failed; the flow continued anyway and the event carries the
// full order for recovery.
type Result struct {
	Order      Order
	Message    string
	HandoffURL string
	Persisted  bool
	PersistErr error
}

// CreatedEvent is the SQS payload for an order-created message.
type CreatedEvent struct {
	OrderID   string `json:"order_id"`
	Persisted bool   `json:"persisted"`
	Order     Order  `json:"order"`
}

// Finalizer turns a checkout session into an immutable order snapshot and the
// WhatsApp handoff. Persistence is best-effort: a store failure is logged and
// counted but never blocks the customer from reaching WhatsApp.
type Finalizer struct {
	store          OrderStore
	publisher      EventPublisher
	metrics        *awsx.Metrics
	logger         *slog.Logger
	whatsAppNumber string
	nowFunc        func() time.Time
	newID          func() string
}

func NewFinalizer(store OrderStore, publisher EventPublisher, metrics *awsx.Metrics, whatsAppNumber string, logger *slog.Logger) *Finalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Finalizer{
		store:          store,
		publisher:      publisher,
		metrics:        metrics,
		logger:         logger,
		whatsAppNumber: whatsAppNumber,
		nowFunc:        time.Now,
		newID:          uuid.NewString,
	}
}

// Finalize builds the order snapshot from the cart lines and checkout state,
// persists it best-effort, publishes the order-created event and returns the
// handoff message and deep link. The caller clears the cart and discards the
// session unconditionally afterwards.
func (f *Finalizer) Finalize(ctx context.Context, items []cart.Item, customer checkout.Customer, address checkout.Address, selected *shipping.Option, totals checkout.Totals) Result {
	now := f.nowFunc().UTC()

	order := Order{
		OrderID:       f.newID(),
		OrderNumber:   orderNumber(now),
		CustomerName:  customer.Name,
		CustomerEmail: customer.Email,
		CustomerCPF:   customer.CPF,
		CustomerPhone: customer.Phone,
		ShippingAddress: ShippingAddress{
			CEP:          address.CEP,
			Street:       address.Street,
			Number:       address.Number,
			Complement:   address.Complement,
			Neighborhood: address.Neighborhood,
			City:         address.City,
			State:        address.State,
			Reference:    address.Reference,
		},
		Items:          snapshotItems(items),
		Subtotal:       totals.Subtotal,
		ShippingCost:   totals.ShippingCost,
		ShippingMethod: shippingMethod(totals.IsFreeShipping, selected),
		Total:          totals.Total,
		Status:         StatusAwaitingConfirmation,
		WhatsAppSentAt: &now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	res := Result{Order: order, Persisted: true}
	if err := f.store.Insert(ctx, order); err != nil {
		f.logger.Error("order persist failed, continuing with handoff",
			"order_id", order.OrderID, "err", err)
		f.metrics.Count(ctx, awsx.MetricOrderPersistFailed, 1)
		res.Persisted = false
		res.PersistErr = err
	}
	f.metrics.Count(ctx, awsx.MetricOrdersCreated, 1)

	leadTime := 0
	if selected != nil {
		leadTime = selected.LeadTimeDays
	}
	res.Message = BuildHandoffMessage(order, totals.IsFreeShipping, leadTime)
	res.HandoffURL = HandoffURL(f.whatsAppNumber, res.Message)

	f.publishCreated(ctx, order, res.Persisted)

	return res
}

func (f *Finalizer) publishCreated(ctx context.Context, order Order, persisted bool) {
	if f.publisher == nil {
		return
	}
	ev := CreatedEvent{OrderID: order.OrderID, Persisted: persisted, Order: order}
	if err := f.publisher.Publish(ctx, ev, map[string]string{"order_id": order.OrderID}); err != nil {
		f.logger.Error("publish order event failed", "order_id", order.OrderID, "err", err)
	}
}

func snapshotItems(items []cart.Item) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		out = append(out, Item{
			ProductID: it.Product.ID,
			Name:      it.Product.Name,
			SKU:       it.Product.SKU,
			UnitPrice: it.Product.EffectivePrice(),
			Quantity:  it.Quantity,
			ImageURL:  it.Product.FirstImageURL(),
		})
	}
	return out
}

func shippingMethod(freeShipping bool, selected *shipping.Option) string {
	if freeShipping {
		return FreeShippingLabel
	}
	if selected != nil {
		return selected.Name
	}
	return ""
}

// orderNumber derives a human-readable order reference from the creation
// instant, e.g. PED-20260828-153004.
func orderNumber(now time.Time) string {
	return fmt.Sprintf("PED-%s", now.Format("20060102-150405"))
}

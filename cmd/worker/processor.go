package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/diamanteazul/storefront-api/internal/awsx"
	"github.com/diamanteazul/storefront-api/internal/orders"
)

// RecoveryStore is the slice of the orders store the processor needs.
type RecoveryStore interface {
	Get(ctx context.Context, orderID string) (*orders.Order, error)
	Insert(ctx context.Context, order orders.Order) error
}

// Processor consumes order-created events and repairs missing rows. The API
// never blocks a customer on a failed persist; the event carries the full
// order snapshot so this worker can write it after the fact.
type Processor struct {
	store   RecoveryStore
	metrics *awsx.Metrics
	logger  *slog.Logger
}

func NewProcessor(store RecoveryStore, metrics *awsx.Metrics, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{store: store, metrics: metrics, logger: logger}
}

// Process handles one event body. Redeliveries are idempotent: an order that
// is already stored, by the API or by an earlier delivery, is left alone.
func (p *Processor) Process(ctx context.Context, body string) error {
	var ev orders.CreatedEvent
	if err := json.Unmarshal([]byte(body), &ev); err != nil {
		return fmt.Errorf("decode order event: %w", err)
	}
	if ev.OrderID == "" {
		return errors.New("order event missing order_id")
	}

	existing, err := p.store.Get(ctx, ev.OrderID)
	if err != nil {
		return fmt.Errorf("check order %s: %w", ev.OrderID, err)
	}
	if existing != nil {
		p.logger.Debug("order already stored", "order_id", ev.OrderID, "persisted_flag", ev.Persisted)
		return nil
	}

	if err := p.store.Insert(ctx, ev.Order); err != nil {
		// lost the race against the API or a concurrent delivery
		if errors.Is(err, orders.ErrAlreadyExists) {
			return nil
		}
		return fmt.Errorf("recover order %s: %w", ev.OrderID, err)
	}

	p.logger.Info("recovered unpersisted order", "order_id", ev.OrderID, "order_number", ev.Order.OrderNumber)
	p.metrics.Count(ctx, awsx.MetricOrderRecovered, 1)
	return nil
}

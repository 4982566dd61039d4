package handlers

import (
	"context"
	"log/slog"
	"sync"

	"github.com/diamanteazul/storefront-api/internal/cart"
	"github.com/diamanteazul/storefront-api/internal/catalog"
	"github.com/diamanteazul/storefront-api/internal/checkout"
	"github.com/diamanteazul/storefront-api/internal/orders"
	"github.com/diamanteazul/storefront-api/internal/settings"
)

// HandlerConfig groups the dependencies the route handlers need.
type HandlerConfig struct {
	Logger    *slog.Logger
	Catalog   *catalog.Store
	Orders    *orders.Store
	Carts     *Carts
	Checkout  *checkout.Manager
	Finalizer *orders.Finalizer
	Company   settings.CompanySettings
}

// CartFactory builds a cart bound to a storage key.
type CartFactory func(storageKey string) *cart.Cart

// ProductHydrator batch-loads current catalog rows for restored cart lines.
type ProductHydrator interface {
	GetByIDs(ctx context.Context, ids []string) ([]catalog.Product, error)
}

// Carts hands out one live cart aggregate per storage key, restoring the
// persisted blob on first access. Every surface touching the same key shares
// the same instance.
type Carts struct {
	mu       sync.Mutex
	byKey    map[string]*cart.Cart
	factory  CartFactory
	hydrator ProductHydrator
	logger   *slog.Logger
}

func NewCarts(factory CartFactory, hydrator ProductHydrator, logger *slog.Logger) *Carts {
	if logger == nil {
		logger = slog.Default()
	}
	return &Carts{
		byKey:    map[string]*cart.Cart{},
		factory:  factory,
		hydrator: hydrator,
		logger:   logger,
	}
}

// Get returns the cart for the key, creating and restoring it when first
// seen. A restore failure starts from an empty cart. Restored lines carry
// product snapshots from the persisted blob; when a hydrator is configured
// they are swapped for current catalog rows so stale prices and stock do not
// survive a restore.
func (c *Carts) Get(ctx context.Context, key string) *cart.Cart {
	if key == "" {
		key = cart.StorageKey
	}
	c.mu.Lock()
	if existing, ok := c.byKey[key]; ok {
		c.mu.Unlock()
		return existing
	}
	fresh := c.factory(key)
	c.byKey[key] = fresh
	c.mu.Unlock()

	if err := fresh.Restore(ctx); err != nil {
		c.logger.Warn("cart restore failed, starting empty", "key", key, "err", err)
	}
	c.refresh(ctx, key, fresh)
	return fresh
}

func (c *Carts) refresh(ctx context.Context, key string, crt *cart.Cart) {
	if c.hydrator == nil {
		return
	}
	items := crt.Items()
	if len(items) == 0 {
		return
	}
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.Product.ID)
	}
	products, err := c.hydrator.GetByIDs(ctx, ids)
	if err != nil {
		c.logger.Warn("cart refresh failed, keeping persisted snapshots", "key", key, "err", err)
		return
	}
	crt.RefreshProducts(ctx, products)
}

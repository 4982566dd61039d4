package cart

import (
	"context"
	"log/slog"
	"sync"

	"github.com/diamanteazul/storefront-api/internal/catalog"
)

// StorageKey is the fixed key the serialized cart lives under.
const StorageKey = "diamante-azul-cart"

// Item is one cart line: a product snapshot plus a quantity clamped to stock.
type Item struct {
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

// Snapshot is an immutable view handed to subscribers and readers.
type Snapshot struct {
	Items      []Item  `json:"items"`
	Subtotal   float64 `json:"subtotal"`
	TotalItems int     `json:"total_items"`
}

// Cart is the single mutable aggregate shared by every storefront surface
// (header badge, drawer, cart page, checkout). All of them go through the
// same instance; mutations are serialized by the mutex and every mutation is
// followed by a best-effort save and a notification to subscribers.
type Cart struct {
	mu      sync.Mutex
	items   []Item
	storage Storage
	logger  *slog.Logger
	subs    []func(Snapshot)
}

func New(storage Storage, logger *slog.Logger) *Cart {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cart{storage: storage, logger: logger}
}

// Restore loads the persisted cart, replacing the current contents. Quantities
// are re-clamped against the persisted stock snapshot, so a blob edited out of
// band cannot resurrect an over-stock line.
func (c *Cart) Restore(ctx context.Context) error {
	items, err := c.storage.Load(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.items = c.items[:0]
	for _, it := range items {
		if it.Quantity <= 0 || it.Product.Stock < 1 {
			continue
		}
		it.Quantity = clamp(it.Quantity, it.Product.Stock)
		c.items = append(c.items, it)
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snap)
	return nil
}

// RefreshProducts swaps stored product snapshots for current catalog rows,
// re-clamping quantities against fresh stock. Lines whose product is absent
// from the list are dropped: a restored cart must not hold a product that no
// longer exists.
func (c *Cart) RefreshProducts(ctx context.Context, products []catalog.Product) {
	byID := make(map[string]catalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	c.mutate(ctx, func() {
		kept := c.items[:0]
		for _, it := range c.items {
			p, ok := byID[it.Product.ID]
			if !ok || p.Stock < 1 {
				continue
			}
			it.Product = p
			it.Quantity = clamp(it.Quantity, p.Stock)
			kept = append(kept, it)
		}
		c.items = kept
	})
}

// Subscribe registers a callback invoked after every mutation with the fresh
// snapshot. Callbacks run outside the cart lock.
func (c *Cart) Subscribe(fn func(Snapshot)) {
	c.mu.Lock()
	c.subs = append(c.subs, fn)
	c.mu.Unlock()
}

// AddItem puts `quantity` units of the product in the cart, merging with an
// existing line. The result is clamped to available stock; exceeding stock is
// a silent clamp rather than an error, the UI warns before calling.
func (c *Cart) AddItem(ctx context.Context, p catalog.Product, quantity int) {
	if p.Stock < 1 {
		// out of stock, nothing to add
		return
	}
	if quantity < 1 {
		quantity = 1
	}
	c.mutate(ctx, func() {
		for i := range c.items {
			if c.items[i].Product.ID == p.ID {
				c.items[i].Quantity = clamp(c.items[i].Quantity+quantity, p.Stock)
				c.items[i].Product = p
				return
			}
		}
		c.items = append(c.items, Item{Product: p, Quantity: clamp(quantity, p.Stock)})
	})
}

// RemoveItem deletes the line. Absent product ids are a no-op.
func (c *Cart) RemoveItem(ctx context.Context, productID string) {
	c.mutate(ctx, func() {
		for i := range c.items {
			if c.items[i].Product.ID == productID {
				c.items = append(c.items[:i], c.items[i+1:]...)
				return
			}
		}
	})
}

// UpdateQuantity sets the line quantity, clamped to stock. Zero or negative
// removes the line.
func (c *Cart) UpdateQuantity(ctx context.Context, productID string, quantity int) {
	if quantity <= 0 {
		c.RemoveItem(ctx, productID)
		return
	}
	c.mutate(ctx, func() {
		for i := range c.items {
			if c.items[i].Product.ID == productID {
				c.items[i].Quantity = clamp(quantity, c.items[i].Product.Stock)
				return
			}
		}
	})
}

// Clear empties the cart.
func (c *Cart) Clear(ctx context.Context) {
	c.mutate(ctx, func() {
		c.items = c.items[:0]
	})
}

// Subtotal sums effective unit price times quantity over all lines.
func (c *Cart) Subtotal() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return subtotal(c.items)
}

// TotalItems sums quantities, not line count.
func (c *Cart) TotalItems() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, it := range c.items {
		n += it.Quantity
	}
	return n
}

// QuantityOf returns the quantity of the given product, 0 when absent.
func (c *Cart) QuantityOf(productID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, it := range c.items {
		if it.Product.ID == productID {
			return it.Quantity
		}
	}
	return 0
}

// Items returns a copy of the current lines.
func (c *Cart) Items() []Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Snapshot returns a consistent view of lines plus derived totals.
func (c *Cart) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Cart) snapshotLocked() Snapshot {
	items := make([]Item, len(c.items))
	copy(items, c.items)
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return Snapshot{Items: items, Subtotal: subtotal(items), TotalItems: n}
}

// mutate applies fn under the lock, persists best-effort and notifies
// subscribers. A storage failure is logged, never surfaced: losing cart
// durability must not break the shopping flow.
func (c *Cart) mutate(ctx context.Context, fn func()) {
	c.mu.Lock()
	fn()
	items := make([]Item, len(c.items))
	copy(items, c.items)
	snap := c.snapshotLocked()
	c.mu.Unlock()

	if err := c.storage.Save(ctx, items); err != nil {
		c.logger.Warn("cart save failed", "err", err)
	}
	c.notify(snap)
}

func (c *Cart) notify(snap Snapshot) {
	c.mu.Lock()
	subs := make([]func(Snapshot), len(c.subs))
	copy(subs, c.subs)
	c.mu.Unlock()
	for _, fn := range subs {
		fn(snap)
	}
}

func subtotal(items []Item) float64 {
	var sum float64
	for _, it := range items {
		sum += it.Product.EffectivePrice() * float64(it.Quantity)
	}
	return sum
}

func clamp(q, stock int) int {
	if q > stock {
		q = stock
	}
	if q < 1 {
		q = 1
	}
	return q
}

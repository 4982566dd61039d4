package handlers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/diamanteazul/storefront-api/internal/cart"
	"github.com/diamanteazul/storefront-api/internal/catalog"
)

type stubHydrator struct {
	products []catalog.Product
	err      error
	calls    int
}

func (h *stubHydrator) GetByIDs(_ context.Context, _ []string) ([]catalog.Product, error) {
	h.calls++
	if h.err != nil {
		return nil, h.err
	}
	return h.products, nil
}

func persistedCart(t *testing.T) *cart.MemoryStorage {
	t.Helper()
	storage := cart.NewMemoryStorage()
	require.NoError(t, storage.Save(context.Background(), []cart.Item{
		{Product: catalog.Product{ID: "p1", Name: "Torneira", SKU: "TOR-01", Price: 10, Stock: 5}, Quantity: 5},
	}))
	return storage
}

func TestCartsGet_RefreshesRestoredLines(t *testing.T) {
	ctx := context.Background()
	storage := persistedCart(t)
	hyd := &stubHydrator{products: []catalog.Product{
		{ID: "p1", Name: "Torneira", SKU: "TOR-01", Price: 12, Stock: 3},
	}}
	carts := NewCarts(func(string) *cart.Cart { return cart.New(storage, nil) }, hyd, nil)

	crt := carts.Get(ctx, "k1")
	require.Equal(t, 1, hyd.calls)
	require.Equal(t, 3, crt.QuantityOf("p1"), "restored quantity re-clamped to current stock")
	require.InDelta(t, 36.0, crt.Subtotal(), 0.001, "subtotal uses the current price")

	// same key returns the same instance, no second hydration
	require.Same(t, crt, carts.Get(ctx, "k1"))
	require.Equal(t, 1, hyd.calls)
}

func TestCartsGet_RefreshFailureKeepsSnapshots(t *testing.T) {
	ctx := context.Background()
	storage := persistedCart(t)
	hyd := &stubHydrator{err: errors.New("catalog down")}
	carts := NewCarts(func(string) *cart.Cart { return cart.New(storage, nil) }, hyd, nil)

	crt := carts.Get(ctx, "k1")
	require.Equal(t, 5, crt.QuantityOf("p1"), "persisted snapshot kept when refresh fails")
	require.InDelta(t, 50.0, crt.Subtotal(), 0.001)
}

func TestCartsGet_NoHydratorSkipsRefresh(t *testing.T) {
	ctx := context.Background()
	storage := persistedCart(t)
	carts := NewCarts(func(string) *cart.Cart { return cart.New(storage, nil) }, nil, nil)

	crt := carts.Get(ctx, "k1")
	require.Equal(t, 5, crt.QuantityOf("p1"))
}

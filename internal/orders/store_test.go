package orders

import (
	"context"
	"testing"
	"time"
)

func testOrder(id string) Order {
	return Order{
		OrderID:       id,
		OrderNumber:   "PED-20260828-120000",
		CustomerName:  "João Silva",
		CustomerEmail: "joao@email.com",
		CustomerCPF:   "11144477735",
		CustomerPhone: "62999998888",
		ShippingAddress: ShippingAddress{
			CEP: "01310100", Street: "Avenida Paulista", Number: "1000",
			Neighborhood: "Bela Vista", City: "São Paulo", State: "SP",
		},
		Items: []Item{
			{ProductID: "p1", Name: "Torneira Monocomando", SKU: "TOR-01", UnitPrice: 149.90, Quantity: 2, ImageURL: "https://img/p1.jpg"},
		},
		Subtotal:       299.80,
		ShippingCost:   0,
		ShippingMethod: FreeShippingLabel,
		Total:          299.80,
		Status:         StatusAwaitingConfirmation,
	}
}

func TestInsertAndGet(t *testing.T) {
	mock := newSimpleMock()
	s := NewStore(mock, "orders-table")
	s.nowFunc = func() time.Time { return time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	if err := s.Insert(ctx, testOrder("order-1")); err != nil {
		t.Fatalf("Insert error: %v", err)
	}

	got, err := s.Get(ctx, "order-1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got == nil {
		t.Fatal("expected order, got nil")
	}
	if got.Status != StatusAwaitingConfirmation {
		t.Fatalf("status = %q, want %q", got.Status, StatusAwaitingConfirmation)
	}
	if len(got.Items) != 1 || got.Items[0].UnitPrice != 149.90 {
		t.Fatalf("items did not round-trip: %+v", got.Items)
	}
	if got.Total != 299.80 {
		t.Fatalf("total = %v, want 299.80", got.Total)
	}

	// duplicate insert is refused
	if err := s.Insert(ctx, testOrder("order-1")); err == nil {
		t.Fatal("expected duplicate insert to fail")
	}

	// missing order is (nil, nil)
	missing, err := s.Get(ctx, "ghost")
	if err != nil {
		t.Fatalf("Get missing error: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for missing order, got %+v", missing)
	}
}

func TestUpdateStatus(t *testing.T) {
	mock := newSimpleMock()
	s := NewStore(mock, "orders-table")
	ctx := context.Background()

	if err := s.Insert(ctx, testOrder("order-1")); err != nil {
		t.Fatalf("Insert error: %v", err)
	}

	if err := s.UpdateStatus(ctx, "order-1", StatusAwaitingConfirmation, StatusConfirmed); err != nil {
		t.Fatalf("UpdateStatus error: %v", err)
	}
	got, _ := s.Get(ctx, "order-1")
	if got.Status != StatusConfirmed {
		t.Fatalf("status = %q, want %q", got.Status, StatusConfirmed)
	}

	// stale expected status hits the conditional
	if err := s.UpdateStatus(ctx, "order-1", StatusAwaitingConfirmation, StatusConfirmed); err != ErrStatusMismatch {
		t.Fatalf("expected ErrStatusMismatch, got %v", err)
	}

	// illegal transitions are rejected before touching the table
	calls := mock.updateCalls
	if err := s.UpdateStatus(ctx, "order-1", StatusConfirmed, StatusDelivered); err == nil {
		t.Fatal("expected skip-ahead transition to be rejected")
	}
	if mock.updateCalls != calls {
		t.Fatal("illegal transition must not reach the store")
	}

	// cancellation is reachable from any non-terminal state
	if err := s.UpdateStatus(ctx, "order-1", StatusConfirmed, StatusCancelled); err != nil {
		t.Fatalf("cancel error: %v", err)
	}
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{StatusAwaitingConfirmation, StatusConfirmed, true},
		{StatusConfirmed, StatusInProduction, true},
		{StatusInProduction, StatusShipped, true},
		{StatusShipped, StatusDelivered, true},
		{StatusAwaitingConfirmation, StatusInProduction, false},
		{StatusAwaitingConfirmation, StatusCancelled, true},
		{StatusShipped, StatusCancelled, true},
		{StatusDelivered, StatusCancelled, false},
		{StatusCancelled, StatusConfirmed, false},
	}
	for _, c := range cases {
		if got := CanTransition(c.from, c.to); got != c.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

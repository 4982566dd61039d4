package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/diamanteazul/storefront-api/internal/cart"
	"github.com/diamanteazul/storefront-api/internal/catalog"
	"github.com/diamanteazul/storefront-api/internal/cep"
	"github.com/diamanteazul/storefront-api/internal/checkout"
	"github.com/diamanteazul/storefront-api/internal/orders"
	"github.com/diamanteazul/storefront-api/internal/shipping"
)

type stubResolver struct {
	options []shipping.Option
	calls   int
}

func (r *stubResolver) Quote(_ context.Context, _ string, _ []shipping.PackageItem) ([]shipping.Option, error) {
	r.calls++
	return r.options, nil
}

type stubLookup struct {
	result *cep.Result
	err    error
}

func (l *stubLookup) Lookup(_ context.Context, _ string) (*cep.Result, error) {
	if l.err != nil {
		return nil, l.err
	}
	return l.result, nil
}

type memOrderStore struct {
	inserted []orders.Order
}

func (s *memOrderStore) Insert(_ context.Context, o orders.Order) error {
	s.inserted = append(s.inserted, o)
	return nil
}

type checkoutFixture struct {
	router   *gin.Engine
	carts    *Carts
	resolver *stubResolver
	lookup   *stubLookup
	ordered  *memOrderStore
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	resolver := &stubResolver{options: []shipping.Option{
		{ID: "1", Name: "PAC", Carrier: "Correios", Price: 18.50, LeadTimeDays: 7},
		{ID: "2", Name: "SEDEX", Carrier: "Correios", Price: 32.90, LeadTimeDays: 3},
	}}
	lookup := &stubLookup{result: &cep.Result{Street: "Avenida Paulista", Neighborhood: "Bela Vista", City: "São Paulo", State: "SP"}}
	ordered := &memOrderStore{}

	carts := NewCarts(func(string) *cart.Cart {
		return cart.New(cart.NewMemoryStorage(), nil)
	}, nil, nil)
	manager := checkout.NewManager(resolver, lookup, checkout.Config{FreeShippingThreshold: 299.00}, nil)
	finalizer := orders.NewFinalizer(ordered, nil, nil, "5562999999999", nil)

	r := gin.New()
	RegisterRoutes(r, HandlerConfig{
		Carts:     carts,
		Checkout:  manager,
		Finalizer: finalizer,
	})
	return &checkoutFixture{router: r, carts: carts, resolver: resolver, lookup: lookup, ordered: ordered}
}

func (f *checkoutFixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	return f.doAs(t, method, path, body, "test-cart")
}

func (f *checkoutFixture) doAs(t *testing.T, method, path, body, cartKey string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Cart-Key", cartKey)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *checkoutFixture) seedCart(t *testing.T, price float64, qty int) {
	t.Helper()
	crt := f.carts.Get(context.Background(), "test-cart")
	crt.AddItem(context.Background(), catalog.Product{
		ID: "p1", Name: "Cuba de Apoio", SKU: "CUB-01", Price: price, Stock: 10,
	}, qty)
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestCheckoutWalkthrough(t *testing.T) {
	f := newCheckoutFixture(t)
	f.seedCart(t, 150.00, 1)

	w := f.do(t, http.MethodPost, "/checkout/sessions", "")
	require.Equal(t, http.StatusCreated, w.Code)
	id := decodeJSON(t, w)["id"].(string)
	base := "/checkout/sessions/" + id

	// step 0: customer data
	w = f.do(t, http.MethodPut, base+"/customer",
		`{"nome":"João Silva","email":"joao@email.com","cpf":"111.444.777-35","telefone":"(62) 99999-8888"}`)
	require.Equal(t, http.StatusOK, w.Code)
	w = f.do(t, http.MethodPost, base+"/next", "")
	require.Equal(t, http.StatusOK, w.Code)

	// step 1: address, with lookup autofill
	w = f.do(t, http.MethodPut, base+"/address",
		`{"cep":"01310-100","logradouro":"x","numero":"1000","bairro":"x","cidade":"x","estado":"SP"}`)
	require.Equal(t, http.StatusOK, w.Code)
	w = f.do(t, http.MethodPost, base+"/address/lookup", "")
	require.Equal(t, http.StatusOK, w.Code)
	addr := decodeJSON(t, w)["address"].(map[string]any)
	require.Equal(t, "Avenida Paulista", addr["logradouro"])

	w = f.do(t, http.MethodPost, base+"/next", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, f.resolver.calls)

	// step 2: shipping selection, subtotal below the free threshold
	w = f.do(t, http.MethodPut, base+"/shipping", `{"option_id":"2"}`)
	require.Equal(t, http.StatusOK, w.Code)
	totals := decodeJSON(t, w)["totals"].(map[string]any)
	require.Equal(t, false, totals["is_free_shipping"])
	require.InDelta(t, 182.90, totals["total"].(float64), 0.001)

	w = f.do(t, http.MethodPost, base+"/next", "")
	require.Equal(t, http.StatusOK, w.Code)

	// step 3: finalize
	w = f.do(t, http.MethodPost, base+"/finalize", "")
	require.Equal(t, http.StatusCreated, w.Code)
	out := decodeJSON(t, w)
	require.Contains(t, out["handoff_url"].(string), "https://wa.me/5562999999999?text=")
	require.Len(t, f.ordered.inserted, 1)
	require.Equal(t, orders.StatusAwaitingConfirmation, f.ordered.inserted[0].Status)

	// cart cleared, session gone
	w = f.do(t, http.MethodGet, "/cart", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, float64(0), decodeJSON(t, w)["total_items"].(float64))
	w = f.do(t, http.MethodGet, base, "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

// walkToSummary advances a fresh session over the "test-cart" cart through
// every step, returning the session base path.
func (f *checkoutFixture) walkToSummary(t *testing.T) string {
	t.Helper()
	w := f.do(t, http.MethodPost, "/checkout/sessions", "")
	require.Equal(t, http.StatusCreated, w.Code)
	base := "/checkout/sessions/" + decodeJSON(t, w)["id"].(string)

	w = f.do(t, http.MethodPut, base+"/customer",
		`{"nome":"João Silva","email":"joao@email.com","cpf":"111.444.777-35","telefone":"(62) 99999-8888"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, base+"/next", "").Code)

	w = f.do(t, http.MethodPut, base+"/address",
		`{"cep":"01310-100","logradouro":"Avenida Paulista","numero":"1000","bairro":"Bela Vista","cidade":"São Paulo","estado":"SP"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, base+"/next", "").Code)

	require.Equal(t, http.StatusOK, f.do(t, http.MethodPut, base+"/shipping", `{"option_id":"1"}`).Code)
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, base+"/next", "").Code)
	return base
}

func TestCheckoutFinalizeIgnoresForeignCartKey(t *testing.T) {
	f := newCheckoutFixture(t)
	f.seedCart(t, 150.00, 1)
	base := f.walkToSummary(t)

	other := f.carts.Get(context.Background(), "other-cart")
	other.AddItem(context.Background(), catalog.Product{ID: "p9", Name: "Sifão", SKU: "SIF-01", Price: 5.00, Stock: 3}, 1)

	w := f.doAs(t, http.MethodPost, base+"/finalize", "", "other-cart")
	require.Equal(t, http.StatusCreated, w.Code)

	require.Len(t, f.ordered.inserted, 1)
	order := f.ordered.inserted[0]

	var itemsTotal float64
	for _, it := range order.Items {
		itemsTotal += it.UnitPrice * float64(it.Quantity)
	}
	require.InDelta(t, order.Subtotal, itemsTotal, 0.001)
	require.InDelta(t, 150.00, order.Subtotal, 0.001)

	// the session's cart was cleared; the foreign cart was left alone
	require.Equal(t, 0, f.carts.Get(context.Background(), "test-cart").TotalItems())
	require.Equal(t, 1, other.TotalItems())
}

func TestCheckoutGateFailureMapsTo422(t *testing.T) {
	f := newCheckoutFixture(t)
	f.seedCart(t, 50.00, 1)

	w := f.do(t, http.MethodPost, "/checkout/sessions", "")
	require.Equal(t, http.StatusCreated, w.Code)
	id := decodeJSON(t, w)["id"].(string)

	w = f.do(t, http.MethodPost, "/checkout/sessions/"+id+"/next", "")
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	out := decodeJSON(t, w)
	require.Equal(t, "nome", out["field"])
	require.Equal(t, "Preencha o nome", out["message"])
}

func TestCheckoutFinalizeBeforeSummaryIsRejected(t *testing.T) {
	f := newCheckoutFixture(t)
	f.seedCart(t, 50.00, 1)

	w := f.do(t, http.MethodPost, "/checkout/sessions", "")
	id := decodeJSON(t, w)["id"].(string)

	w = f.do(t, http.MethodPost, "/checkout/sessions/"+id+"/finalize", "")
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestCheckoutEmptyCartCannotStart(t *testing.T) {
	f := newCheckoutFixture(t)
	w := f.do(t, http.MethodPost, "/checkout/sessions", "")
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestCheckoutUnknownSessionIs404(t *testing.T) {
	f := newCheckoutFixture(t)
	w := f.do(t, http.MethodGet, "/checkout/sessions/nope", "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestCheckoutLookupErrorMapping(t *testing.T) {
	f := newCheckoutFixture(t)
	f.seedCart(t, 50.00, 1)

	w := f.do(t, http.MethodPost, "/checkout/sessions", "")
	id := decodeJSON(t, w)["id"].(string)
	base := "/checkout/sessions/" + id
	f.do(t, http.MethodPut, base+"/address", `{"cep":"01310100","logradouro":"x","numero":"1","bairro":"x","cidade":"x"}`)

	f.lookup.err = cep.ErrNotFound
	w = f.do(t, http.MethodPost, base+"/address/lookup", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "CEP não encontrado", decodeJSON(t, w)["message"])

	f.lookup.err = cep.ErrInvalidCEP
	w = f.do(t, http.MethodPost, base+"/address/lookup", "")
	require.Equal(t, http.StatusBadRequest, w.Code)

	f.lookup.err = context.DeadlineExceeded
	w = f.do(t, http.MethodPost, base+"/address/lookup", "")
	require.Equal(t, http.StatusBadGateway, w.Code)
	require.Equal(t, "Erro ao buscar CEP", decodeJSON(t, w)["message"])
}

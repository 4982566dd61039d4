package checkout

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/diamanteazul/storefront-api/internal/cart"
	"github.com/diamanteazul/storefront-api/internal/cep"
	"github.com/diamanteazul/storefront-api/internal/shipping"
	"github.com/diamanteazul/storefront-api/internal/validation"
)

// Step is the checkout position. The flow is strictly linear: forward only
// through Next once the current gate passes, backward freely through Back.
type Step int

const (
	StepCustomerData Step = iota
	StepAddress
	StepShipping
	StepSummary
)

// Customer holds step-0 fields, free text until the gate validates them.
type Customer struct {
	Name  string `json:"nome"`
	Email string `json:"email"`
	CPF   string `json:"cpf"`
	Phone string `json:"telefone"`
}

// Address holds step-1 fields.
type Address struct {
	CEP          string `json:"cep"`
	Street       string `json:"logradouro"`
	Number       string `json:"numero"`
	Complement   string `json:"complemento"`
	Neighborhood string `json:"bairro"`
	City         string `json:"cidade"`
	State        string `json:"estado"`
	Reference    string `json:"referencia"`
}

// FieldError reports the first failing field of a validation gate.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *FieldError) Error() string { return e.Field + ": " + e.Message }

// ErrBusy is returned when a suspending operation is already in flight for
// this session (re-entrancy guard while the UI control is disabled).
var ErrBusy = errors.New("checkout: operation already in progress")

// QuoteResolver is the shipping collaborator.
type QuoteResolver interface {
	Quote(ctx context.Context, destinationCEP string, items []shipping.PackageItem) ([]shipping.Option, error)
}

// AddressLookup is the postal-code collaborator.
type AddressLookup interface {
	Lookup(ctx context.Context, rawCEP string) (*cep.Result, error)
}

// CartReader is the view of the cart the session derives totals from. Reads
// always go back to the live aggregate, never a cached copy.
type CartReader interface {
	Items() []cart.Item
	Subtotal() float64
}

// Config carries the pricing policy inputs.
type Config struct {
	FreeShippingThreshold float64
}

// Totals is the derived money view, recomputed on every call.
type Totals struct {
	Subtotal       float64 `json:"subtotal"`
	IsFreeShipping bool    `json:"is_free_shipping"`
	ShippingCost   float64 `json:"shipping_cost"`
	Total          float64 `json:"total"`
}

// Session is one checkout attempt. Created fresh per checkout, discarded on
// finalization, never persisted across reloads.
type Session struct {
	ID string

	mu       sync.Mutex
	cart     CartReader
	resolver QuoteResolver
	lookup   AddressLookup
	cfg      Config
	logger   *slog.Logger

	customer Customer
	address  Address
	options  []shipping.Option
	selected *shipping.Option
	step     Step

	// quoteEpoch invalidates in-flight quote fetches when the session state
	// they were issued for is gone (user navigated back and changed address).
	quoteEpoch int
	inFlight   bool
	finalized  bool
}

func NewSession(id string, cartReader CartReader, resolver QuoteResolver, lookup AddressLookup, cfg Config, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		ID:       id,
		cart:     cartReader,
		resolver: resolver,
		lookup:   lookup,
		cfg:      cfg,
		logger:   logger,
	}
}

// Cart returns the live cart this session was created over. Finalization must
// read line items from here, never from a cart resolved off the request, so
// the order's items and totals always come from the same aggregate.
func (s *Session) Cart() CartReader {
	return s.cart
}

func (s *Session) Step() Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

// SetCustomer stores step-0 fields without validating; the gate runs on Next.
func (s *Session) SetCustomer(c Customer) {
	s.mu.Lock()
	s.customer = c
	s.mu.Unlock()
}

func (s *Session) Customer() Customer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.customer
}

// SetAddress stores step-1 fields. Changing the address invalidates any
// quotes fetched for the previous destination.
func (s *Session) SetAddress(a Address) {
	s.mu.Lock()
	if a.CEP != s.address.CEP {
		s.options = nil
		s.selected = nil
		s.quoteEpoch++
	}
	s.address = a
	s.mu.Unlock()
}

func (s *Session) Address() Address {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.address
}

// ShippingOptions returns the fetched options as given by the resolver.
func (s *Session) ShippingOptions() []shipping.Option {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]shipping.Option, len(s.options))
	copy(out, s.options)
	return out
}

// SelectShipping picks a fetched option by id.
func (s *Session) SelectShipping(optionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.options {
		if s.options[i].ID == optionID {
			opt := s.options[i]
			s.selected = &opt
			return nil
		}
	}
	return &FieldError{Field: "frete", Message: "Selecione uma opção de frete"}
}

// SelectedShipping returns the chosen option, nil when none.
func (s *Session) SelectedShipping() *shipping.Option {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == nil {
		return nil
	}
	opt := *s.selected
	return &opt
}

// Totals recomputes every derived value from the live cart. Nothing here is
// cached: a cart mutation between calls is always observed.
func (s *Session) Totals() Totals {
	subtotal := s.cart.Subtotal()

	s.mu.Lock()
	selected := s.selected
	threshold := s.cfg.FreeShippingThreshold
	s.mu.Unlock()

	free := subtotal >= threshold
	cost := 0.0
	if !free && selected != nil {
		cost = selected.Price
	}
	return Totals{
		Subtotal:       subtotal,
		IsFreeShipping: free,
		ShippingCost:   cost,
		Total:          subtotal + cost,
	}
}

// Next validates the current step's gate and advances. On gate failure the
// step does not move and the first failing field's error comes back; repeated
// calls with the same input return the same error. Leaving the address step
// triggers the quote fetch unless free shipping already applies or options
// are present.
func (s *Session) Next(ctx context.Context) error {
	s.mu.Lock()
	current := s.step
	s.mu.Unlock()

	if err := s.validateStep(current); err != nil {
		return err
	}

	if current == StepAddress {
		if err := s.ensureQuotes(ctx); err != nil {
			return err
		}
	}

	s.mu.Lock()
	if s.step == current && s.step < StepSummary {
		s.step++
	}
	s.mu.Unlock()
	return nil
}

// Back moves to the previous step, floored at the first. No gate runs.
func (s *Session) Back() {
	s.mu.Lock()
	if s.step > StepCustomerData {
		s.step--
	}
	s.mu.Unlock()
}

func (s *Session) validateStep(step Step) error {
	s.mu.Lock()
	customer := s.customer
	address := s.address
	selected := s.selected
	s.mu.Unlock()

	switch step {
	case StepCustomerData:
		if validation.TrimmedEmpty(customer.Name) {
			return &FieldError{Field: "nome", Message: "Preencha o nome"}
		}
		if !validation.IsValidEmail(customer.Email) {
			return &FieldError{Field: "email", Message: "Email inválido"}
		}
		if !validation.IsValidCPF(customer.CPF) {
			return &FieldError{Field: "cpf", Message: "CPF inválido"}
		}
		if !validation.HasPhoneDigits(customer.Phone) {
			return &FieldError{Field: "telefone", Message: "Preencha o telefone"}
		}
	case StepAddress:
		if !validation.IsValidCEP(address.CEP) {
			return &FieldError{Field: "cep", Message: "CEP inválido"}
		}
		if validation.TrimmedEmpty(address.Street) {
			return &FieldError{Field: "logradouro", Message: "Preencha o logradouro"}
		}
		if validation.TrimmedEmpty(address.Number) {
			return &FieldError{Field: "numero", Message: "Preencha o número"}
		}
		if validation.TrimmedEmpty(address.Neighborhood) {
			return &FieldError{Field: "bairro", Message: "Preencha o bairro"}
		}
		if validation.TrimmedEmpty(address.City) {
			return &FieldError{Field: "cidade", Message: "Preencha a cidade"}
		}
	case StepShipping:
		if !s.Totals().IsFreeShipping && selected == nil {
			return &FieldError{Field: "frete", Message: "Selecione uma opção de frete"}
		}
	case StepSummary:
		// terminal confirmation step, no gate
	}
	return nil
}

// ensureQuotes fetches shipping options when needed. Free shipping bypasses
// the resolver entirely, no network call when the cost is already zero. The
// epoch check drops a response that arrives after the destination changed.
func (s *Session) ensureQuotes(ctx context.Context) error {
	totals := s.Totals()

	s.mu.Lock()
	if totals.IsFreeShipping || len(s.options) > 0 {
		s.mu.Unlock()
		return nil
	}
	if s.inFlight {
		s.mu.Unlock()
		return ErrBusy
	}
	s.inFlight = true
	epoch := s.quoteEpoch
	destination := s.address.CEP
	s.mu.Unlock()

	manifest := Manifest(s.cart.Items())
	opts, err := s.resolver.Quote(ctx, destination, manifest)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false
	if err != nil {
		return err
	}
	if epoch != s.quoteEpoch {
		// destination changed while the quote was in flight; drop it
		s.logger.Debug("stale quote response ignored", "session", s.ID)
		return nil
	}
	s.options = opts
	return nil
}

// LookupAddress resolves the current CEP and merges the result into the
// address. A value returned by the lookup wins over whatever was typed; empty
// lookup fields leave the user's input alone. On any error no field changes.
func (s *Session) LookupAddress(ctx context.Context) error {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return ErrBusy
	}
	s.inFlight = true
	rawCEP := s.address.CEP
	s.mu.Unlock()

	res, err := s.lookup.Lookup(ctx, rawCEP)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false
	if err != nil {
		return err
	}
	if res.Street != "" {
		s.address.Street = res.Street
	}
	if res.Neighborhood != "" {
		s.address.Neighborhood = res.Neighborhood
	}
	if res.City != "" {
		s.address.City = res.City
	}
	if res.State != "" {
		s.address.State = res.State
	}
	return nil
}

// BeginFinalize flips the single-submission latch. The caller must invoke
// EndFinalize when the attempt fails so the user can retry.
func (s *Session) BeginFinalize() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finalized {
		return ErrBusy
	}
	s.finalized = true
	return nil
}

func (s *Session) EndFinalize() {
	s.mu.Lock()
	s.finalized = false
	s.mu.Unlock()
}

// Manifest converts cart lines into the rate-service package manifest.
func Manifest(items []cart.Item) []shipping.PackageItem {
	out := make([]shipping.PackageItem, 0, len(items))
	for _, it := range items {
		out = append(out, shipping.PackageItem{
			WeightKg: it.Product.WeightKg,
			HeightCm: it.Product.HeightCm,
			WidthCm:  it.Product.WidthCm,
			LengthCm: it.Product.LengthCm,
			Quantity: it.Quantity,
		})
	}
	return out
}

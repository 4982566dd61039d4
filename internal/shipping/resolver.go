package shipping

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/diamanteazul/storefront-api/internal/validation"
)

// ErrInvalidPostalCode is returned when the destination CEP does not hold
// exactly 8 digits.
var ErrInvalidPostalCode = errors.New("shipping: invalid postal code")

// Option is one shipping choice returned by the resolver. Immutable once
// returned; checkout selects by ID.
type Option struct {
	ID           string  `json:"id"`
	Name         string  `json:"nome"`
	Carrier      string  `json:"empresa"`
	Price        float64 `json:"preco"`
	LeadTimeDays int     `json:"prazo_dias"`
}

// PackageItem describes one manifest entry sent to the rate service.
type PackageItem struct {
	WeightKg float64 `json:"peso"`
	HeightCm float64 `json:"altura"`
	WidthCm  float64 `json:"largura"`
	LengthCm float64 `json:"comprimento"`
	Quantity int     `json:"quantidade"`
}

type quoteRequest struct {
	DestinationCEP string        `json:"cep_destino"`
	Items          []PackageItem `json:"produtos"`
}

// Fallback carries the fixed two-option table used when the rate service is
// unreachable. Values are configuration; the defaults match the Correios
// PAC/SEDEX table the store has always quoted.
type Fallback struct {
	SlowPrice    float64
	SlowDays     int
	ExpressPrice float64
	ExpressDays  int
}

// DefaultFallback returns the canonical fallback table.
func DefaultFallback() Fallback {
	return Fallback{SlowPrice: 18.50, SlowDays: 7, ExpressPrice: 32.90, ExpressDays: 3}
}

func (f Fallback) options() []Option {
	return []Option{
		{ID: "1", Name: "PAC", Carrier: "Correios", Price: f.SlowPrice, LeadTimeDays: f.SlowDays},
		{ID: "2", Name: "SEDEX", Carrier: "Correios", Price: f.ExpressPrice, LeadTimeDays: f.ExpressDays},
	}
}

// Resolver quotes shipping against an external rate service, falling back to
// the fixed table on any failure. Availability over accuracy: checkout must
// never dead-end because the rate service is down.
type Resolver struct {
	baseURL    string
	httpClient *http.Client
	fallback   Fallback
	logger     *slog.Logger
}

func NewResolver(baseURL string, fallback Fallback, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		fallback:   fallback,
		logger:     logger,
	}
}

// WithHTTPClient swaps the transport, for tests.
func (r *Resolver) WithHTTPClient(c *http.Client) *Resolver {
	r.httpClient = c
	return r
}

// Quote returns the available options for a destination and manifest. Only a
// malformed postal code is an error; every rate-service failure resolves to
// the fallback table.
func (r *Resolver) Quote(ctx context.Context, destinationCEP string, items []PackageItem) ([]Option, error) {
	cep := validation.SanitizeCEP(destinationCEP)
	if !validation.IsValidCEP(cep) {
		return nil, ErrInvalidPostalCode
	}

	opts, err := r.fetch(ctx, cep, items)
	if err != nil {
		r.logger.Warn("rate service unavailable, using fallback table", "err", err)
		return r.fallback.options(), nil
	}
	return opts, nil
}

func (r *Resolver) fetch(ctx context.Context, cep string, items []PackageItem) ([]Option, error) {
	if r.baseURL == "" {
		return nil, errors.New("rate service not configured")
	}

	body, err := json.Marshal(quoteRequest{DestinationCEP: cep, Items: items})
	if err != nil {
		return nil, fmt.Errorf("encode quote request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build quote request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rate service request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("rate service returned %d", resp.StatusCode)
	}

	var opts []Option
	if err := json.NewDecoder(resp.Body).Decode(&opts); err != nil {
		return nil, fmt.Errorf("decode quote response: %w", err)
	}
	if len(opts) == 0 {
		return nil, errors.New("rate service returned no options")
	}
	return opts, nil
}

// Package cep looks up Brazilian postal codes against a ViaCEP-compatible
// service.
package cep

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/diamanteazul/storefront-api/internal/validation"
)

var (
	// ErrNotFound means the service answered but knows no such code. The
	// caller shows a retryable message and leaves address fields untouched.
	ErrNotFound = errors.New("cep: not found")
	// ErrInvalidCEP means the input was not 8 digits.
	ErrInvalidCEP = errors.New("cep: invalid postal code")
)

// Result is the address resolved for a postal code.
type Result struct {
	CEP          string `json:"cep"`
	Street       string `json:"logradouro"`
	Complement   string `json:"complemento"`
	Neighborhood string `json:"bairro"`
	City         string `json:"localidade"`
	State        string `json:"uf"`
}

type lookupResponse struct {
	Result
	Erro bool `json:"erro"`
}

const defaultBaseURL = "https://viacep.com.br/ws"

// Client queries the lookup service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 8 * time.Second},
	}
}

// WithHTTPClient swaps the transport, for tests.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.httpClient = h
	return c
}

// Lookup resolves an 8-digit postal code. A transport failure and a
// not-found answer are distinct errors because the UI messages differ.
func (c *Client) Lookup(ctx context.Context, rawCEP string) (*Result, error) {
	code := validation.SanitizeCEP(rawCEP)
	if !validation.IsValidCEP(code) {
		return nil, ErrInvalidCEP
	}

	url := fmt.Sprintf("%s/%s/json/", c.baseURL, code)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build lookup request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lookup request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("lookup service returned %d", resp.StatusCode)
	}

	var body lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode lookup response: %w", err)
	}
	if body.Erro {
		return nil, ErrNotFound
	}
	return &body.Result, nil
}

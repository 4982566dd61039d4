package cep

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLookup_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		require.Equal(t, "/01310100/json/", req.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"cep":"01310-100","logradouro":"Avenida Paulista","bairro":"Bela Vista","localidade":"São Paulo","uf":"SP"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	got, err := c.Lookup(context.Background(), "01310-100")
	require.NoError(t, err)
	require.Equal(t, "Avenida Paulista", got.Street)
	require.Equal(t, "Bela Vista", got.Neighborhood)
	require.Equal(t, "São Paulo", got.City)
	require.Equal(t, "SP", got.State)
}

func TestLookup_NotFoundSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"erro": true}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Lookup(context.Background(), "99999999")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLookup_TransportErrorIsDistinct(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Lookup(context.Background(), "01310100")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNotFound)
	require.NotErrorIs(t, err, ErrInvalidCEP)
}

func TestLookup_RejectsMalformedCode(t *testing.T) {
	c := NewClient("http://unused")
	_, err := c.Lookup(context.Background(), "123")
	require.ErrorIs(t, err, ErrInvalidCEP)
}

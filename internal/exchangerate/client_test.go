package exchangerate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_FetchRates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "TRY", r.URL.Query().Get("base"))
		assert.Equal(t, "USD,EUR,GBP", r.URL.Query().Get("symbols"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"base":"TRY","rates":{"USD":35.10,"EUR":38.00,"GBP":44.25}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)

	rates, err := client.FetchRates(context.Background(), "TRY", []string{"USD", "EUR", "GBP"})
	require.NoError(t, err)
	assert.Equal(t, 35.10, rates["USD"])
	assert.Equal(t, 38.00, rates["EUR"])
	assert.Equal(t, 44.25, rates["GBP"])
}

func TestClient_FetchRates_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)

	_, err := client.FetchRates(context.Background(), "TRY", []string{"USD"})
	assert.Error(t, err)
}

func TestClient_FetchRates_EmptyRates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"base":"TRY","rates":{}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)

	_, err := client.FetchRates(context.Background(), "TRY", []string{"USD"})
	assert.Error(t, err)
}

func TestClient_FetchRates_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{"rates":{"USD":35.10}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := client.FetchRates(ctx, "TRY", []string{"USD"})
	assert.Error(t, err)
}

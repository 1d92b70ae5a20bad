package market

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basketwise/backend/internal/domain"
)

func TestNewClient(t *testing.T) {
	client := NewClient("test-api-key", "https://api.example.com", 10)

	assert.NotNil(t, client)
	assert.Equal(t, "test-api-key", client.apiKey)
	assert.Equal(t, "https://api.example.com", client.baseURL)
	assert.Equal(t, 10, client.searchLimit)
	assert.NotNil(t, client.httpClient)
	assert.NotNil(t, client.rateLimiter)
	assert.False(t, client.debug)
}

func TestNewClient_DefaultSearchLimit(t *testing.T) {
	client := NewClient("key", "https://api.example.com", 0)
	assert.Equal(t, 10, client.searchLimit)
}

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{1, 500 * time.Millisecond},
		{2, 1000 * time.Millisecond},
		{3, 2000 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run("", func(t *testing.T) {
			assert.Equal(t, tt.expected, exponentialBackoff(tt.attempt))
		})
	}
}

func TestSearchProducts_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products", r.URL.Path)
		assert.Equal(t, "milk", r.URL.Query().Get("search"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		assert.Equal(t, "Bearer test-api-key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"data": [
				{
					"id": 1,
					"name": "Fresh Milk 3%",
					"price": 4.30,
					"price_eur": 2.20,
					"quantity": "1 l",
					"supermarket": {"name": "Billa"}
				},
				{
					"id": 2,
					"name": "Milk 3% UHT",
					"price_eur": 1.80,
					"unit": "1 l",
					"store": "Lidl"
				}
			]
		}`))
	}))
	defer server.Close()

	client := NewClient("test-api-key", server.URL, 10)
	listings, err := client.SearchProducts(context.Background(), "milk")

	require.NoError(t, err)
	require.Len(t, listings, 2)

	assert.Equal(t, "Fresh Milk 3%", listings[0].Name)
	assert.Equal(t, "Billa", listings[0].Store)
	assert.True(t, listings[0].Price.Equal(mustDec("2.20")), "price = %s", listings[0].Price)
	require.NotNil(t, listings[0].UnitPrice)
	assert.True(t, listings[0].UnitPrice.Equal(mustDec("2.20")))
	assert.Equal(t, domain.UnitLiter, listings[0].Unit)

	assert.Equal(t, "Lidl", listings[1].Store)
	assert.Equal(t, "1 l", listings[1].PackageSize)
	assert.False(t, listings[1].CapturedAt.IsZero())
}

func TestSearchProducts_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient("test-api-key", server.URL, 10)
	listings, err := client.SearchProducts(context.Background(), "nonexistent")

	assert.Nil(t, listings)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestSearchProducts_EmptyResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": []}`))
	}))
	defer server.Close()

	client := NewClient("test-api-key", server.URL, 10)
	listings, err := client.SearchProducts(context.Background(), "nothing")

	assert.Nil(t, listings)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestSearchProducts_RetriesServerErrors(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": [{"id": 1, "name": "Milk", "price_eur": 1.50, "quantity": "1l", "store": "Billa"}]}`))
	}))
	defer server.Close()

	client := NewClient("test-api-key", server.URL, 10)
	listings, err := client.SearchProducts(context.Background(), "milk")

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Len(t, listings, 1)
}

func TestSearchProducts_ExhaustsRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient("test-api-key", server.URL, 10)
	listings, err := client.SearchProducts(context.Background(), "milk")

	assert.Nil(t, listings)
	assert.ErrorIs(t, err, domain.ErrMarketAPIFailure)
}

func TestSearchProducts_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	client := NewClient("test-api-key", server.URL, 10)
	listings, err := client.SearchProducts(context.Background(), "milk")

	assert.Nil(t, listings)
	assert.Error(t, err)
}

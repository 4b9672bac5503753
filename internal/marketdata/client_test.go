package marketdata

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/simaogato/wealthtrack-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{
		PolygonAPIKey:   "test-key",
		PolygonBaseURL:  srv.URL,
		ExchangeRateURL: srv.URL + "/v4/latest/USD",
		LocalCurrency:   "cny",
	})
}

func TestStockPrice(t *testing.T) {
	var gotPath, gotKey string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("apiKey")
		fmt.Fprint(w, `{"ticker":"AAPL","status":"OK","results":[{"T":"AAPL","c":150.25,"o":149.1}]}`)
	})

	price, err := client.StockPrice(context.Background(), "aapl")

	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("150.25").Equal(price), price.String())
	assert.Equal(t, "/v2/aggs/ticker/AAPL/prev", gotPath)
	assert.Equal(t, "test-key", gotKey)
}

func TestStockPrice_KeepsDecimalDigits(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":[{"c":100.004}]}`)
	})

	price, err := client.StockPrice(context.Background(), "XYZ")

	require.NoError(t, err)
	assert.Equal(t, "100.004", price.String())
}

func TestStockPrice_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		payload string
	}{
		{name: "Missing results", status: http.StatusOK, payload: `{"status":"NOT_FOUND"}`},
		{name: "Empty results", status: http.StatusOK, payload: `{"results":[]}`},
		{name: "Missing close field", status: http.StatusOK, payload: `{"results":[{"o":1.5}]}`},
		{name: "Non-numeric close", status: http.StatusOK, payload: `{"results":[{"c":true}]}`},
		{name: "Zero close", status: http.StatusOK, payload: `{"results":[{"c":0}]}`},
		{name: "Malformed JSON", status: http.StatusOK, payload: `{"results":`},
		{name: "Upstream error status", status: http.StatusTooManyRequests, payload: `{"error":"limit"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.payload)
			})

			_, err := client.StockPrice(context.Background(), "AAPL")

			assert.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrMarketDataUnavailable)
		})
	}
}

func TestStockPrice_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	client := NewClient(Config{PolygonBaseURL: srv.URL})

	_, err := client.StockPrice(context.Background(), "AAPL")

	assert.ErrorIs(t, err, domain.ErrMarketDataUnavailable)
}

func TestExchangeRate(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v4/latest/USD", r.URL.Path)
		fmt.Fprint(w, `{"base":"USD","rates":{"USD":1,"CNY":7.0,"EUR":0.92}}`)
	})

	rate, err := client.ExchangeRate(context.Background())

	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(7).Equal(rate), rate.String())
}

func TestExchangeRate_MissingCurrency(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"base":"USD","rates":{"USD":1,"EUR":0.92}}`)
	})

	_, err := client.ExchangeRate(context.Background())

	assert.ErrorIs(t, err, domain.ErrMarketDataUnavailable)
}

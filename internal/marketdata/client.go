// Package marketdata fetches stock prices and exchange rates from public HTTP APIs.
//
// Payloads are decoded as generic JSON and the wanted figure is picked with a
// JSONPath expression, so a provider change only needs a new URL and path.
package marketdata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
	"github.com/simaogato/wealthtrack-backend/internal/domain"
)

const (
	DefaultPolygonBaseURL  = "https://api.polygon.io"
	DefaultExchangeRateURL = "https://api.exchangerate-api.com/v4/latest/USD"
	DefaultLocalCurrency   = "CNY"

	// previous-day close of the aggregate bar
	pricePath = "$.results[0].c"
)

// Config holds the client settings
type Config struct {
	PolygonAPIKey   string
	PolygonBaseURL  string
	ExchangeRateURL string
	LocalCurrency   string
	Timeout         time.Duration
}

// Client implements domain.MarketData over HTTP
type Client struct {
	http            *http.Client
	apiKey          string
	polygonBaseURL  string
	exchangeRateURL string
	ratePath        string
}

// NewClient creates a new market data client
func NewClient(cfg Config) *Client {
	if cfg.PolygonBaseURL == "" {
		cfg.PolygonBaseURL = DefaultPolygonBaseURL
	}
	if cfg.ExchangeRateURL == "" {
		cfg.ExchangeRateURL = DefaultExchangeRateURL
	}
	if cfg.LocalCurrency == "" {
		cfg.LocalCurrency = DefaultLocalCurrency
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &Client{
		http:            &http.Client{Timeout: cfg.Timeout},
		apiKey:          cfg.PolygonAPIKey,
		polygonBaseURL:  strings.TrimRight(cfg.PolygonBaseURL, "/"),
		exchangeRateURL: cfg.ExchangeRateURL,
		ratePath:        "$.rates." + strings.ToUpper(cfg.LocalCurrency),
	}
}

// StockPrice returns the previous close of symbol
func (c *Client) StockPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	addr := fmt.Sprintf("%s/v2/aggs/ticker/%s/prev?adjusted=true&apiKey=%s",
		c.polygonBaseURL, url.PathEscape(strings.ToUpper(symbol)), url.QueryEscape(c.apiKey))

	price, err := c.fetchNumber(ctx, addr, pricePath)
	if err != nil {
		return decimal.Zero, fmt.Errorf("stock price for %s: %w", symbol, err)
	}
	return price, nil
}

// ExchangeRate returns how many local currency units one base unit buys
func (c *Client) ExchangeRate(ctx context.Context) (decimal.Decimal, error) {
	rate, err := c.fetchNumber(ctx, c.exchangeRateURL, c.ratePath)
	if err != nil {
		return decimal.Zero, fmt.Errorf("exchange rate: %w", err)
	}
	return rate, nil
}

// fetchNumber GETs addr and extracts a strictly positive number at path.
// Every failure wraps domain.ErrMarketDataUnavailable.
func (c *Client) fetchNumber(ctx context.Context, addr, path string) (decimal.Decimal, error) {
	var payload any
	if err := c.jwget(ctx, addr, &payload); err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", domain.ErrMarketDataUnavailable, err)
	}

	value, err := jsonpath.Get(path, payload)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: field %s missing: %v", domain.ErrMarketDataUnavailable, path, err)
	}
	// jsonpath may wrap a single answer in a list
	if list, ok := value.([]any); ok {
		if len(list) == 0 {
			return decimal.Zero, fmt.Errorf("%w: field %s missing", domain.ErrMarketDataUnavailable, path)
		}
		value = list[0]
	}

	number, err := toDecimal(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: field %s: %v", domain.ErrMarketDataUnavailable, path, err)
	}
	if !number.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: field %s is not positive: %s", domain.ErrMarketDataUnavailable, path, number)
	}
	return number, nil
}

func toDecimal(v any) (decimal.Decimal, error) {
	switch n := v.(type) {
	case json.Number:
		return decimal.NewFromString(n.String())
	case float64:
		return decimal.NewFromFloat(n), nil
	case string:
		return decimal.NewFromString(n)
	default:
		return decimal.Zero, fmt.Errorf("not a number: %v", v)
	}
}

// jwget performs an HTTP GET request to the given address and unmarshals the
// JSON response body into data. Numbers are kept as json.Number so prices do
// not go through binary floating point.
func (c *Client) jwget(ctx context.Context, addr string, data any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cannot http GET %v%v: %v", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp.Body); err != nil {
		return err
	}
	dec := json.NewDecoder(&buf)
	dec.UseNumber()
	return dec.Decode(data)
}

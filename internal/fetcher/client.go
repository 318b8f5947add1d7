package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"marketwatch/internal/marketdata"
)

const (
	defaultCurrencyPath = "/api/currency"
	defaultMarketPath   = "/api/market"
	defaultUserAgent    = "marketwatch/1.0"

	// maxBodyBytes bounds a single response body.
	maxBodyBytes = 16 << 20
)

// Options parameterise the market-data client.
type Options struct {
	BaseURL      string
	CurrencyPath string
	MarketPath   string
	Timeout      time.Duration
	UserAgent    string
	HTTPClient   *http.Client
}

// Client fetches currency metadata and market quotes.
type Client struct {
	opts    Options
	logger  zerolog.Logger
	client  *http.Client
	baseURL string
}

// NewClient constructs a market-data client.
func NewClient(opts Options, logger zerolog.Logger) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if opts.CurrencyPath == "" {
		opts.CurrencyPath = defaultCurrencyPath
	}
	if opts.MarketPath == "" {
		opts.MarketPath = defaultMarketPath
	}

	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}

	return &Client{
		opts:    opts,
		logger:  logger.With().Str("component", "api_client").Logger(),
		client:  client,
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
	}
}

// FetchCurrencies retrieves /api/currency. A payload that fails schema
// validation yields an empty slice, not an error.
func (c *Client) FetchCurrencies(ctx context.Context) ([]marketdata.CurrencyMeta, error) {
	body, err := c.getJSON(ctx, c.opts.CurrencyPath)
	if err != nil {
		return nil, err
	}
	out, err := marketdata.DecodeCurrencies(body, c.logger)
	if err != nil {
		return nil, fmt.Errorf("decode currencies: %w", err)
	}
	return out, nil
}

// FetchMarket retrieves /api/market with the same fail-soft policy.
func (c *Client) FetchMarket(ctx context.Context) ([]marketdata.MarketItem, error) {
	body, err := c.getJSON(ctx, c.opts.MarketPath)
	if err != nil {
		return nil, err
	}
	out, err := marketdata.DecodeMarket(body, c.logger)
	if err != nil {
		return nil, fmt.Errorf("decode market: %w", err)
	}
	return out, nil
}

// getJSON issues a GET and returns the raw body. Aborting ctx aborts the
// request and the returned error matches context.Canceled.
func (c *Client) getJSON(ctx context.Context, path string) ([]byte, error) {
	endpoint := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if ua := strings.TrimSpace(c.opts.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	} else {
		req.Header.Set("User-Agent", defaultUserAgent)
	}

	started := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, newAPIError(resp, path)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	c.logger.Debug().
		Str("path", path).
		Int("status", resp.StatusCode).
		Int("bytes", len(body)).
		Dur("elapsed", time.Since(started)).
		Msg("fetched")
	return body, nil
}

var (
	_ CurrencyFetcher = (*Client)(nil)
	_ MarketFetcher   = (*Client)(nil)
)

package fetcher

import (
	"context"

	"marketwatch/internal/marketdata"
)

// CurrencyFetcher retrieves normalized currency metadata.
type CurrencyFetcher interface {
	FetchCurrencies(ctx context.Context) ([]marketdata.CurrencyMeta, error)
}

// MarketFetcher retrieves normalized market quotes.
type MarketFetcher interface {
	FetchMarket(ctx context.Context) ([]marketdata.MarketItem, error)
}

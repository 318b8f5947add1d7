package store

import (
	"context"

	"marketwatch/internal/marketdata"
)

//go:generate mockgen -package=store_test -destination=mock_source_test.go -source=source.go CurrencySource,MarketSource

// CurrencySource loads currency metadata.
type CurrencySource interface {
	FetchCurrencies(ctx context.Context) ([]marketdata.CurrencyMeta, error)
}

// MarketSource loads market quotes. Implementations must abort and return
// promptly once ctx is cancelled.
type MarketSource interface {
	FetchMarket(ctx context.Context) ([]marketdata.MarketItem, error)
}

package marketdata

import (
	"errors"

	"github.com/rs/zerolog"
)

// DecodeCurrencies is the fail-soft variant of ParseCurrencies: a schema
// mismatch is logged and yields an empty slice. Only ErrInvalidJSON is
// returned as an error.
func DecodeCurrencies(data []byte, logger zerolog.Logger) ([]CurrencyMeta, error) {
	out, err := ParseCurrencies(data)
	return failSoft(out, err, logger)
}

// DecodeMarket is the fail-soft variant of ParseMarket.
func DecodeMarket(data []byte, logger zerolog.Logger) ([]MarketItem, error) {
	out, err := ParseMarket(data)
	return failSoft(out, err, logger)
}

func failSoft[T any](out []T, err error, logger zerolog.Logger) ([]T, error) {
	if err == nil {
		return out, nil
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		logger.Warn().
			Str("resource", verr.Resource).
			Int("issues", len(verr.Issues)).
			Err(verr).
			Msg("payload failed schema validation; using empty result")
		return []T{}, nil
	}
	return nil, err
}

package store

import (
	"slices"

	"marketwatch/internal/marketdata"
)

// BaseList returns the sorted unique base assets.
func (s Snapshot) BaseList() []string {
	return uniqueSorted(s.Market, func(m marketdata.MarketItem) string { return m.Base })
}

// QuoteList returns the sorted unique quote assets.
func (s Snapshot) QuoteList() []string {
	return uniqueSorted(s.Market, func(m marketdata.MarketItem) string { return m.Quote })
}

// CurrencyIconMap maps each currency code to its icon data URL, "" for
// currencies without one.
func (s Snapshot) CurrencyIconMap() map[string]string {
	icons := make(map[string]string, len(s.Currencies))
	for _, c := range s.Currencies {
		icons[c.Code] = c.IconDataURL
	}
	return icons
}

// Find returns the market with the given pair name.
func (s Snapshot) Find(pair string) (marketdata.MarketItem, bool) {
	for _, m := range s.Market {
		if m.Pair == pair {
			return m, true
		}
	}
	return marketdata.MarketItem{}, false
}

func uniqueSorted(items []marketdata.MarketItem, key func(marketdata.MarketItem) string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		k := key(it)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

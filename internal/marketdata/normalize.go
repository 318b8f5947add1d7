package marketdata

import (
	"math"
	"strings"
)

// PlaceholderCode is used when a currency has neither code nor ticker.
const PlaceholderCode = "—"

const iconDataURLPrefix = "data:image/svg+xml;base64,"

// NormalizeCurrencyMeta maps a validated raw record to CurrencyMeta.
func NormalizeCurrencyMeta(r CurrencyMetaRaw) CurrencyMeta {
	code := deref(r.Code)
	if code == "" {
		code = deref(r.Ticker)
	}
	if code == "" {
		code = PlaceholderCode
	}

	meta := CurrencyMeta{
		Code:      strings.ToUpper(code),
		Ticker:    strings.ToUpper(deref(r.Ticker)),
		Type:      deref(r.Type),
		SortOrder: r.SortOrder,
	}
	if r.DecimalsPlaces != nil && validDecimals(*r.DecimalsPlaces) {
		decimals := int(*r.DecimalsPlaces)
		meta.Decimals = &decimals
	}
	if icon := deref(r.Icon); icon != "" {
		meta.IconDataURL = iconDataURLPrefix + icon
	}
	return meta
}

// NormalizeMarketItem maps a validated raw record to MarketItem. It never
// panics, even on records that skipped validation.
func NormalizeMarketItem(r MarketRaw) MarketItem {
	var base, quote string
	if r.Pair != nil {
		base = strings.ToUpper(deref(r.Pair.Primary))
		quote = strings.ToUpper(deref(r.Pair.Secondary))
	}

	item := MarketItem{
		Pair:  PairName(base, quote),
		Base:  base,
		Quote: quote,
	}

	if p := r.Price; p != nil {
		item.PriceLast = finite(p.Last)
		item.Bid = finite(p.BestBid)
		item.Ask = finite(p.BestOffer)

		if c := p.Change; c != nil {
			sign := 1.0
			item.ChangeDir = ChangeUp
			if c.Direction != nil && *c.Direction == DirectionDown {
				sign = -1
				item.ChangeDir = ChangeDown
			}
			item.ChangePct = signed(finite(c.Percent), sign)
			item.ChangeAmt = signed(finite(c.Amount), sign)
		}
	}

	if v := r.Volume; v != nil {
		item.VolBase = finite(v.Primary)
		item.VolQuote = finite(v.Secondary)
	}

	item.History = make([]float64, 0, len(r.PriceHistory))
	for _, n := range r.PriceHistory {
		f := n.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			continue
		}
		item.History = append(item.History, f)
	}
	if len(item.History) > 0 {
		low, high := item.History[0], item.History[0]
		for _, f := range item.History[1:] {
			low = math.Min(low, f)
			high = math.Max(high, f)
		}
		item.Low24h = &low
		item.High24h = &high
	}

	return item
}

func finite(n *Numberish) *float64 {
	if n == nil {
		return nil
	}
	f := n.Float()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func signed(v *float64, sign float64) *float64 {
	if v == nil {
		return nil
	}
	// the wire sends magnitudes; direction alone carries the sign
	out := sign * math.Abs(*v)
	if out == 0 {
		out = 0 // no -0
	}
	return &out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

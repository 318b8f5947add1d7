package marketdata

import (
	"encoding/json"
	"fmt"
)

// CurrencyMetaRaw is the wire shape of a /api/currency element.
// Unknown fields are ignored.
type CurrencyMetaRaw struct {
	Code           *string  `json:"code"`
	SortOrder      *float64 `json:"sort_order"`
	Ticker         *string  `json:"ticker"`
	Type           *string  `json:"type"`
	DecimalsPlaces *float64 `json:"decimals_places"`
	Icon           *string  `json:"icon"` // base64 SVG, no data: prefix
}

// CurrencyMeta is the normalized currency metadata handed to consumers.
type CurrencyMeta struct {
	Code        string   `json:"code"`
	Ticker      string   `json:"ticker,omitempty"`
	Type        string   `json:"type,omitempty"`
	Decimals    *int     `json:"decimals,omitempty"`
	SortOrder   *float64 `json:"sortOrder,omitempty"`
	IconDataURL string   `json:"iconDataUrl,omitempty"`
}

// Direction is the wire value of price.change.direction.
type Direction string

const (
	DirectionUp   Direction = "Up"
	DirectionDown Direction = "Down"
)

// UnmarshalJSON accepts only "Up" and "Down".
func (d *Direction) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch Direction(s) {
	case DirectionUp, DirectionDown:
		*d = Direction(s)
		return nil
	default:
		return fmt.Errorf("invalid direction %q, expected Up or Down", s)
	}
}

// MarketPairRaw names the two assets of a market.
type MarketPairRaw struct {
	Primary   *string `json:"primary"`
	Secondary *string `json:"secondary"`
}

// MarketChangeRaw is the 24h change block.
type MarketChangeRaw struct {
	Direction *Direction `json:"direction"`
	Percent   *Numberish `json:"percent"`
	Amount    *Numberish `json:"amount"`
}

// MarketPriceRaw carries the quote fields.
type MarketPriceRaw struct {
	Last      *Numberish       `json:"last"`
	BestBid   *Numberish       `json:"bestBid"`
	BestOffer *Numberish       `json:"bestOffer"`
	Change    *MarketChangeRaw `json:"change"`
}

// MarketVolumeRaw carries traded volume in both assets.
type MarketVolumeRaw struct {
	Primary   *Numberish `json:"primary"`
	Secondary *Numberish `json:"secondary"`
}

// MarketRaw is the wire shape of a /api/market element.
type MarketRaw struct {
	Pair         *MarketPairRaw   `json:"pair"`
	Price        *MarketPriceRaw  `json:"price"`
	Volume       *MarketVolumeRaw `json:"volume"`
	PriceHistory []Numberish      `json:"priceHistory"` // chronological
}

// ChangeDir is the normalized change direction. The zero value means no
// change block was present and encodes as JSON null.
type ChangeDir string

const (
	ChangeNone ChangeDir = ""
	ChangeUp   ChangeDir = "up"
	ChangeDown ChangeDir = "down"
)

// MarshalJSON encodes ChangeNone as null.
func (d ChangeDir) MarshalJSON() ([]byte, error) {
	if d == ChangeNone {
		return []byte("null"), nil
	}
	return json.Marshal(string(d))
}

// MarketItem is the normalized market row. Nil pointers are the null
// sentinel: a value is either finite or nil, never NaN.
type MarketItem struct {
	Pair  string `json:"pair"`
	Base  string `json:"base"`
	Quote string `json:"quote"`

	PriceLast *float64 `json:"priceLast"`
	Bid       *float64 `json:"bid"`
	Ask       *float64 `json:"ask"`

	ChangePct *float64  `json:"changePct"`
	ChangeAmt *float64  `json:"changeAmt"`
	ChangeDir ChangeDir `json:"changeDir"`

	VolBase  *float64 `json:"volBase"`
	VolQuote *float64 `json:"volQuote"`

	History []float64 `json:"history"`
	Low24h  *float64  `json:"low24h"`
	High24h *float64  `json:"high24h"`
}

// PairName joins base and quote the way MarketItem.Pair is built.
func PairName(base, quote string) string {
	return base + "-" + quote
}

package storage

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"marketwatch/internal/marketdata"
)

// Tick is one recorded market quote.
type Tick struct {
	ObservedAt time.Time
	Pair       string
	Base       string
	Quote      string
	PriceLast  *decimal.Decimal
	Bid        *decimal.Decimal
	Ask        *decimal.Decimal
	ChangePct  *decimal.Decimal
	ChangeDir  string
	VolBase    *decimal.Decimal
	VolQuote   *decimal.Decimal
	CreatedAt  time.Time
}

// AlertRecord captures an emitted mover alert for auditing.
type AlertRecord struct {
	ID           int64
	Pair         string
	ObservedAt   time.Time
	ChangePct    decimal.Decimal
	ThresholdPct decimal.Decimal
	Direction    string
	Channels     []string
	CreatedAt    time.Time
}

// TickFromItem converts a normalized market item observed at the given time.
func TickFromItem(at time.Time, item marketdata.MarketItem) Tick {
	return Tick{
		ObservedAt: at.UTC(),
		Pair:       item.Pair,
		Base:       item.Base,
		Quote:      item.Quote,
		PriceLast:  fromFloat(item.PriceLast),
		Bid:        fromFloat(item.Bid),
		Ask:        fromFloat(item.Ask),
		ChangePct:  fromFloat(item.ChangePct),
		ChangeDir:  string(item.ChangeDir),
		VolBase:    fromFloat(item.VolBase),
		VolQuote:   fromFloat(item.VolQuote),
	}
}

func fromFloat(v *float64) *decimal.Decimal {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}
	d := decimal.NewFromFloat(*v)
	return &d
}

// numericArg renders an optional decimal as a NUMERIC parameter.
func numericArg(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func textArg(s string) any {
	if s == "" {
		return nil
	}
	return s
}

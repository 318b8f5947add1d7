// Package format renders market values for display.
package format

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Missing is shown for absent values.
const Missing = "—"

const maxFraction = 8

var printer = message.NewPrinter(language.English)

// Price formats a price. Sub-unit prices keep up to 8 decimals with trailing
// zeros dropped; larger prices are grouped by thousands.
func Price(v *float64) string {
	n, ok := value(v)
	if !ok {
		return Missing
	}
	if n < 1 {
		s := decimal.NewFromFloat(n).StringFixed(maxFraction)
		s = strings.TrimRight(s, "0")
		return strings.TrimSuffix(s, ".")
	}
	return grouped(n)
}

// Pct formats a signed percentage with two decimals: +3.87%, -3.87%, 0.00%.
func Pct(v *float64) string {
	n, ok := value(v)
	if !ok {
		return Missing
	}
	d := decimal.NewFromFloat(n).Round(2)
	sign := ""
	if d.IsPositive() {
		sign = "+"
	}
	return sign + d.StringFixed(2) + "%"
}

// Vol formats a traded volume using K, M and B suffixes.
func Vol(v *float64) string {
	n, ok := value(v)
	if !ok {
		return Missing
	}
	abs := math.Abs(n)
	switch {
	case abs >= 1e9:
		return scaled(n, 1e9) + "B"
	case abs >= 1e6:
		return scaled(n, 1e6) + "M"
	case abs >= 1e3:
		return scaled(n, 1e3) + "K"
	}
	return grouped(n)
}

func value(v *float64) (float64, bool) {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 0, false
	}
	return *v, true
}

func scaled(n, unit float64) string {
	return decimal.NewFromFloat(n).Div(decimal.NewFromFloat(unit)).StringFixed(2)
}

func grouped(n float64) string {
	return printer.Sprintf("%v", number.Decimal(n, number.MaxFractionDigits(maxFraction)))
}

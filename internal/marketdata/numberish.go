package marketdata

import (
	"bytes"
	"encoding/json"
	"math"
	"reflect"
	"strings"

	"github.com/shopspring/decimal"
)

// Numberish is a wire value that may arrive as a JSON number or as a numeric
// string. Values that cannot be represented as a finite float64 decode to
// NaN and are dropped during normalization.
type Numberish struct {
	value float64
}

// NewNumberish wraps a float64.
func NewNumberish(v float64) Numberish {
	return Numberish{value: v}
}

// Float returns the parsed value, NaN when the wire value was not numeric.
func (n Numberish) Float() float64 {
	return n.value
}

// UnmarshalJSON accepts numbers and strings. null decodes to NaN; any other
// JSON kind is a type error.
func (n *Numberish) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case bytes.Equal(trimmed, []byte("null")):
		n.value = math.NaN()
		return nil
	case len(trimmed) > 0 && trimmed[0] == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		n.value = ParseNumberish(s)
		return nil
	case len(trimmed) > 0 && (trimmed[0] == '-' || (trimmed[0] >= '0' && trimmed[0] <= '9')):
		var f float64
		if err := json.Unmarshal(trimmed, &f); err != nil {
			// literal overflows float64 (1e400)
			n.value = ParseNumberish(string(trimmed))
			return nil
		}
		n.value = finiteOrNaN(f)
		return nil
	default:
		return &json.UnmarshalTypeError{
			Value: jsonKind(trimmed),
			Type:  reflect.TypeOf(Numberish{}),
		}
	}
}

// MarshalJSON writes the value as a number, or null when it is not finite.
func (n Numberish) MarshalJSON() ([]byte, error) {
	if math.IsNaN(n.value) || math.IsInf(n.value, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(n.value)
}

// ParseNumberish converts a numeric string with decimal parsing. It returns
// NaN for empty, non-numeric or out-of-range input.
func ParseNumberish(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN()
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return math.NaN()
	}
	return finiteOrNaN(d.InexactFloat64())
}

func finiteOrNaN(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return math.NaN()
	}
	return f
}

func jsonKind(data []byte) string {
	if len(data) == 0 {
		return "empty"
	}
	switch data[0] {
	case '{':
		return "object"
	case '[':
		return "array"
	case 't', 'f':
		return "bool"
	default:
		return "value"
	}
}

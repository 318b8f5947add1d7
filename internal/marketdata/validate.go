package marketdata

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidJSON reports a body that is not JSON at all. Unlike a schema
// mismatch it is a transport-level failure.
var ErrInvalidJSON = errors.New("marketdata: invalid json")

// Issue is a single schema violation.
type Issue struct {
	Path    string
	Message string
}

func (i Issue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

// ValidationError collects every issue found in a payload.
type ValidationError struct {
	Resource string
	Issues   []Issue
}

func (e *ValidationError) Error() string {
	const maxShown = 5
	parts := make([]string, 0, maxShown)
	for i, issue := range e.Issues {
		if i == maxShown {
			parts = append(parts, fmt.Sprintf("and %d more", len(e.Issues)-maxShown))
			break
		}
		parts = append(parts, issue.String())
	}
	return fmt.Sprintf("%s schema mismatch: %s", e.Resource, strings.Join(parts, "; "))
}

type issues struct {
	list []Issue
}

func (s *issues) add(path, format string, args ...any) {
	s.list = append(s.list, Issue{Path: path, Message: fmt.Sprintf(format, args...)})
}

// ParseCurrencies validates a /api/currency payload and normalizes it.
func ParseCurrencies(data []byte) ([]CurrencyMeta, error) {
	elems, err := splitArray("currency", data)
	if err != nil || elems == nil {
		return []CurrencyMeta{}, err
	}

	var found issues
	raws := make([]CurrencyMetaRaw, len(elems))
	for i, elem := range elems {
		prefix := fmt.Sprintf("[%d]", i)
		if err := json.Unmarshal(elem, &raws[i]); err != nil {
			addDecodeIssue(&found, prefix, err)
			continue
		}
		raws[i].validate(prefix, &found)
	}
	if len(found.list) > 0 {
		return []CurrencyMeta{}, &ValidationError{Resource: "currency", Issues: found.list}
	}

	out := make([]CurrencyMeta, len(raws))
	for i, raw := range raws {
		out[i] = NormalizeCurrencyMeta(raw)
	}
	return out, nil
}

// ParseMarket validates a /api/market payload and normalizes it.
func ParseMarket(data []byte) ([]MarketItem, error) {
	elems, err := splitArray("market", data)
	if err != nil || elems == nil {
		return []MarketItem{}, err
	}

	var found issues
	raws := make([]MarketRaw, len(elems))
	for i, elem := range elems {
		prefix := fmt.Sprintf("[%d]", i)
		if err := json.Unmarshal(elem, &raws[i]); err != nil {
			addDecodeIssue(&found, prefix, err)
			continue
		}
		raws[i].validate(prefix, &found)
	}
	if len(found.list) > 0 {
		return []MarketItem{}, &ValidationError{Resource: "market", Issues: found.list}
	}

	out := make([]MarketItem, len(raws))
	for i, raw := range raws {
		out[i] = NormalizeMarketItem(raw)
	}
	return out, nil
}

// splitArray returns nil elements for an empty body.
func splitArray(resource string, data []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if !json.Valid(trimmed) {
		return nil, fmt.Errorf("%w: %s payload", ErrInvalidJSON, resource)
	}
	if trimmed[0] != '[' {
		return nil, &ValidationError{
			Resource: resource,
			Issues:   []Issue{{Message: fmt.Sprintf("expected array, got %s", jsonKind(trimmed))}},
		}
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(trimmed, &elems); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return elems, nil
}

func addDecodeIssue(found *issues, prefix string, err error) {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		path := prefix
		if typeErr.Field != "" {
			path += "." + typeErr.Field
		}
		found.add(path, "expected %s, got %s", typeErr.Type, typeErr.Value)
		return
	}
	found.add(prefix, "%v", err)
}

func (r *CurrencyMetaRaw) validate(prefix string, found *issues) {
	if r.Code == nil {
		found.add(prefix+".code", "required")
	}
	if d := r.DecimalsPlaces; d != nil {
		switch {
		case *d != math.Trunc(*d):
			found.add(prefix+".decimals_places", "expected integer, got %v", *d)
		case !validDecimals(*d):
			found.add(prefix+".decimals_places", "out of range [0, %d], got %v", math.MaxInt32, *d)
		}
	}
}

func validDecimals(d float64) bool {
	return d >= 0 && d <= math.MaxInt32
}

func (r *MarketRaw) validate(prefix string, found *issues) {
	if r.Pair == nil {
		found.add(prefix+".pair", "required")
	} else {
		if r.Pair.Primary == nil {
			found.add(prefix+".pair.primary", "required")
		}
		if r.Pair.Secondary == nil {
			found.add(prefix+".pair.secondary", "required")
		}
	}
	if r.Price == nil {
		found.add(prefix+".price", "required")
	}
}

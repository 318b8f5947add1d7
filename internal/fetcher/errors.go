package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// APIError is returned for any non-2xx response.
type APIError struct {
	StatusCode int
	StatusText string
	Path       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d %s", e.StatusCode, e.StatusText)
}

func newAPIError(resp *http.Response, path string) *APIError {
	// resp.Status is "503 Service Unavailable"; prefer the server's reason phrase.
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return &APIError{StatusCode: resp.StatusCode, StatusText: text, Path: path}
}

// IsCanceled reports whether err stems from an aborted request context
// rather than a transport or server failure.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}

package fetcher

import "strings"

// Mode selects how the API base URL is resolved.
type Mode string

const (
	ModeDevelopment Mode = "development"
	ModeProduction  Mode = "production"
)

// ResolveBaseURL returns the base URL requests are issued against. In
// development every request goes through the local reverse proxy; in
// production the configured base is used with trailing slashes stripped.
func ResolveBaseURL(mode Mode, baseURL, devProxyURL string) string {
	if mode == ModeDevelopment {
		return strings.TrimRight(devProxyURL, "/")
	}
	return strings.TrimRight(baseURL, "/")
}

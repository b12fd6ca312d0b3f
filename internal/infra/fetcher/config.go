package fetcher

import (
	"crypto/tls"
	"net/http"
	"time"
)

// userAgent identifies this client to upstream calendar services.
const userAgent = "OpenChime/1.0"

// Config holds HTTP behavior for feed fetching.
type Config struct {
	// Timeout bounds the whole request, including body read
	Timeout time.Duration

	// MaxBodySnippet is how much of an error response body to keep in
	// error messages
	MaxBodySnippet int
}

// DefaultConfig returns the fetch profile for typical feeds.
func DefaultConfig() Config {
	return Config{
		Timeout:        30 * time.Second,
		MaxBodySnippet: 200,
	}
}

// LargeFeedConfig returns a profile with a longer timeout for calendars
// with years of history.
func LargeFeedConfig() Config {
	return Config{
		Timeout:        120 * time.Second,
		MaxBodySnippet: 200,
	}
}

// NewHTTPClient creates an HTTP client for feed fetching with connection
// pooling. TLS 1.2+ is enforced.
func NewHTTPClient(cfg Config) *http.Client {
	return &http.Client{
		Timeout: cfg.Timeout,
		Transport: &http.Transport{
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 2,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
	}
}

package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sony/gobreaker"

	"openchime/internal/resilience/circuitbreaker"
	"openchime/internal/resilience/retry"
)

// ICSFetcher fetches raw ICS feed text over HTTPS. Every fetch runs
// through the per-service circuit breaker and the retry policy, in that
// nesting order: the breaker wraps the whole retry sequence, so one
// fetch operation counts as one breaker outcome no matter how many
// attempts the backoff spends, and an open circuit rejects immediately.
type ICSFetcher struct {
	client      *http.Client
	breakers    *circuitbreaker.Registry
	retryConfig retry.Config
	cfg         Config
}

// NewICSFetcher creates a fetcher using the given breaker registry.
func NewICSFetcher(client *http.Client, breakers *circuitbreaker.Registry, cfg Config) *ICSFetcher {
	return &ICSFetcher{
		client:      client,
		breakers:    breakers,
		retryConfig: retry.FeedFetchConfig(),
		cfg:         cfg,
	}
}

// Fetch validates the URL, then retrieves the feed body as text.
// service selects the circuit breaker (one per upstream provider).
func (f *ICSFetcher) Fetch(ctx context.Context, feedURL, service string) (string, error) {
	if err := ValidateFeedURL(feedURL); err != nil {
		return "", err
	}

	cb := f.breakers.Get(service)

	result, err := cb.Execute(func() (interface{}, error) {
		var body string
		retryErr := retry.WithBackoff(ctx, f.retryConfig, func() error {
			fetched, fetchErr := f.doFetch(ctx, feedURL)
			if fetchErr != nil {
				return fetchErr
			}
			body = fetched
			return nil
		})
		return body, retryErr
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			slog.Warn("feed fetch rejected, circuit open",
				slog.String("service", service),
				slog.String("url", feedURL))
		}
		return "", err
	}
	return result.(string), nil
}

// doFetch performs a single GET without retry or circuit breaker.
func (f *ICSFetcher) doFetch(ctx context.Context, feedURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response body: %w", err)
	}
	body := string(raw)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &retry.HTTPError{
			StatusCode: resp.StatusCode,
			Message:    snippet(body, f.cfg.MaxBodySnippet),
		}
	}

	// An HTML body on a 2xx response is a misconfigured feed URL, not a
	// network problem; classify it separately so it is never retried.
	trimmed := strings.TrimSpace(body)
	if strings.HasPrefix(trimmed, "<!DOCTYPE") || strings.HasPrefix(trimmed, "<html") {
		return "", ErrHTMLResponse
	}

	if !strings.Contains(body, "BEGIN:VCALENDAR") {
		slog.Warn("feed body does not contain BEGIN:VCALENDAR",
			slog.String("url", feedURL))
	}

	return body, nil
}

func snippet(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

package fetcher

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
)

// ValidateFeedURL validates an ICS feed URL before any network request.
// It is a pure function: no DNS resolution or other I/O happens here, so
// it can run on user input as the URL is typed.
//
// Rules:
//   - empty or whitespace-only URLs are rejected
//   - only the https scheme is accepted
//   - a host must be present
//   - localhost and private ranges (127.*, 192.168.*, 10.*, 172.16.*)
//     are rejected; feeds must be publicly reachable
//   - a path without a recognizable calendar shape (.ics extension or a
//     /calendar segment) logs a warning but does not fail validation
func ValidateFeedURL(feedURL string) error {
	if strings.TrimSpace(feedURL) == "" {
		return ErrEmptyURL
	}

	u, err := url.Parse(feedURL)
	if err != nil {
		return fmt.Errorf("invalid feed URL format: %w", err)
	}

	if u.Scheme != "https" {
		return fmt.Errorf("%w: got scheme %q", ErrNotHTTPS, u.Scheme)
	}

	host := u.Hostname()
	if host == "" {
		return ErrMissingHost
	}

	if host == "localhost" ||
		strings.HasPrefix(host, "127.") ||
		strings.HasPrefix(host, "192.168.") ||
		strings.HasPrefix(host, "10.") ||
		strings.HasPrefix(host, "172.16.") {
		return fmt.Errorf("%w: host %q", ErrLocalNetwork, host)
	}

	path := strings.ToLower(u.Path)
	if !strings.HasSuffix(path, ".ics") && !strings.Contains(path, "/calendar") {
		slog.Warn("feed URL path does not look like a calendar feed",
			slog.String("url", feedURL))
	}

	return nil
}

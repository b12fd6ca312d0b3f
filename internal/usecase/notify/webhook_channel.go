package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"
)

// WebhookConfig controls the outbound webhook channel.
type WebhookConfig struct {
	// URL is the incoming-webhook endpoint. Empty disables the channel.
	URL string

	// Timeout bounds a single delivery. Defaults to 10 seconds.
	Timeout time.Duration
}

// WebhookChannel posts events as embed messages to a Discord-compatible
// incoming webhook. Retries and failure muting are handled by the
// dispatch service, so a single Send makes exactly one HTTP request.
type WebhookChannel struct {
	config WebhookConfig
	client *http.Client
}

// Embed colors: blue for alerts, green for completed syncs, red for
// failed ones.
const (
	webhookColorAlert   = 5793266
	webhookColorSuccess = 5763719
	webhookColorFailure = 15548997

	webhookMaxTitleLength = 256
)

func NewWebhookChannel(config WebhookConfig) *WebhookChannel {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	return &WebhookChannel{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
	}
}

func (w *WebhookChannel) Name() string { return "webhook" }

func (w *WebhookChannel) IsEnabled() bool { return w.config.URL != "" }

// webhookPayload is the Discord-compatible webhook body.
type webhookPayload struct {
	Embeds []webhookEmbed `json:"embeds"`
}

type webhookEmbed struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url,omitempty"`
	Color       int    `json:"color"`
	Timestamp   string `json:"timestamp"`
}

// WebhookRateLimitError is a 429 response from the webhook service.
type WebhookRateLimitError struct {
	RetryAfter time.Duration
}

func (e *WebhookRateLimitError) Error() string {
	return fmt.Sprintf("webhook rate limit exceeded (retry after %v)", e.RetryAfter)
}

// WebhookStatusError is a non-429 error status from the webhook service.
type WebhookStatusError struct {
	StatusCode int
	Body       string
}

func (e *WebhookStatusError) Error() string {
	return fmt.Sprintf("webhook returned status %d: %s", e.StatusCode, e.Body)
}

func (w *WebhookChannel) Send(ctx context.Context, event Event) error {
	payload := webhookPayload{Embeds: []webhookEmbed{w.buildEmbed(event)}}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.config.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))

	if resp.StatusCode == http.StatusTooManyRequests {
		return &WebhookRateLimitError{RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	}
	return &WebhookStatusError{StatusCode: resp.StatusCode, Body: string(respBody)}
}

func (w *WebhookChannel) buildEmbed(event Event) webhookEmbed {
	embed := webhookEmbed{
		Timestamp: event.At.UTC().Format(time.RFC3339),
	}

	switch event.Kind {
	case KindAlertTriggered:
		embed.Title = truncateTitle(event.Alert.Title)
		embed.Color = webhookColorAlert
		if event.Alert.MinutesUntil <= 0 {
			embed.Description = "Starting now"
		} else {
			embed.Description = fmt.Sprintf("Starts in %d minutes", event.Alert.MinutesUntil)
		}
		if event.Alert.VideoLink != nil {
			embed.URL = *event.Alert.VideoLink
		}

	case KindSyncCompleted:
		embed.Title = "Calendar sync completed"
		embed.Color = webhookColorSuccess
		embed.Description = fmt.Sprintf("%d accounts, %d added, %d updated, %d failed",
			event.Sync.Accounts, event.Sync.Added, event.Sync.Updated, event.Sync.Failed)

	case KindSyncFailed:
		embed.Title = "Calendar sync failed"
		embed.Color = webhookColorFailure
		embed.Description = event.Error
	}

	return embed
}

// truncateTitle caps a title at webhookMaxTitleLength bytes without
// splitting a multi-byte rune.
func truncateTitle(title string) string {
	if len(title) <= webhookMaxTitleLength {
		return title
	}
	cut := webhookMaxTitleLength
	for cut > 0 && !utf8.RuneStart(title[cut]) {
		cut--
	}
	return title[:cut]
}

// parseRetryAfter reads a Retry-After header in seconds, defaulting to
// one second when absent or malformed.
func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return time.Second
	}
	seconds, err := strconv.ParseFloat(header, 64)
	if err != nil || seconds <= 0 {
		return time.Second
	}
	return time.Duration(seconds * float64(time.Second))
}

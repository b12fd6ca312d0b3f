// Diagnose every configured calendar feed: fetch, parse, and report
// per-feed status as a table and a JSON document. Useful when a feed
// stops producing events and the monitor logs alone do not say why.
//
// Usage:
//
//	go run scripts/diagnose_feeds.go [db-path]
//	OPENCHIME_DB_PATH=openchime.db go run scripts/diagnose_feeds.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"openchime/internal/infra/adapter/persistence/sqlite"
	"openchime/internal/infra/db"
	"openchime/internal/infra/fetcher"
	"openchime/internal/infra/ics"
	"openchime/internal/resilience/circuitbreaker"
	"openchime/internal/resilience/retry"
)

// FeedDiagnostic is the per-feed result.
type FeedDiagnostic struct {
	Account      string `json:"account"`
	Provider     string `json:"provider"`
	URL          string `json:"url"`
	Status       string `json:"status"` // "OK", "INVALID_URL", "FETCH_ERROR", "PARSE_ERROR", "EMPTY"
	EventCount   int    `json:"event_count"`
	NextEvent    string `json:"next_event,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
	ResponseTime int64  `json:"response_time_ms"`
}

func main() {
	dbPath := os.Getenv("OPENCHIME_DB_PATH")
	if len(os.Args) > 1 {
		dbPath = os.Args[1]
	}
	if dbPath == "" {
		dbPath = "openchime.db"
	}

	database, err := db.Open(dbPath, db.DefaultConnectionConfig())
	if err != nil {
		log.Fatalf("Failed to open database %s: %v", dbPath, err)
	}
	defer func() {
		if err := database.Close(); err != nil {
			log.Printf("Failed to close database: %v", err)
		}
	}()

	ctx := context.Background()
	accounts, err := sqlite.NewAccountRepo(database).List(ctx)
	if err != nil {
		log.Fatalf("Failed to list accounts: %v", err)
	}
	if len(accounts) == 0 {
		log.Println("No accounts configured, nothing to diagnose")
		return
	}

	cfg := fetcher.DefaultConfig()
	icsFetcher := fetcher.NewICSFetcher(fetcher.NewHTTPClient(cfg), circuitbreaker.NewRegistry(), cfg)

	log.Printf("Diagnosing %d feeds...", len(accounts))

	diagnostics := make([]FeedDiagnostic, 0, len(accounts))
	for i, account := range accounts {
		log.Printf("[%d/%d] %s (%s)", i+1, len(accounts), account.Name, account.Provider)
		diagnostics = append(diagnostics, diagnoseFeed(ctx, icsFetcher, account.Name, account.Provider, account.FeedURL))

		// Be nice to upstream servers.
		time.Sleep(500 * time.Millisecond)
	}

	printReport(diagnostics)
	writeJSONReport(diagnostics)
}

func diagnoseFeed(ctx context.Context, icsFetcher *fetcher.ICSFetcher, name, provider, feedURL string) FeedDiagnostic {
	diag := FeedDiagnostic{Account: name, Provider: provider, URL: feedURL}

	if err := fetcher.ValidateFeedURL(feedURL); err != nil {
		diag.Status = "INVALID_URL"
		diag.ErrorMessage = err.Error()
		return diag
	}

	fetchCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	started := time.Now()
	raw, err := icsFetcher.Fetch(fetchCtx, feedURL, provider+"-feed")
	diag.ResponseTime = time.Since(started).Milliseconds()
	if err != nil {
		diag.Status = "FETCH_ERROR"
		diag.ErrorMessage = describeFetchError(err)
		return diag
	}

	events, err := ics.NewParser(provider).Parse(raw)
	if err != nil {
		diag.Status = "PARSE_ERROR"
		diag.ErrorMessage = err.Error()
		return diag
	}

	diag.EventCount = len(events)
	if len(events) == 0 {
		diag.Status = "EMPTY"
		return diag
	}

	diag.Status = "OK"
	now := time.Now()
	for _, ev := range events {
		if ev.Start.After(now) {
			if diag.NextEvent == "" || ev.Start.Format(time.RFC3339) < diag.NextEvent {
				diag.NextEvent = ev.Start.Format(time.RFC3339)
			}
		}
	}
	return diag
}

func describeFetchError(err error) string {
	var httpErr *retry.HTTPError
	if errors.As(err, &httpErr) {
		return fmt.Sprintf("HTTP %d", httpErr.StatusCode)
	}
	if errors.Is(err, fetcher.ErrHTMLResponse) {
		return "feed URL returned an HTML page instead of a calendar (login page or wrong URL?)"
	}
	return err.Error()
}

func printReport(diagnostics []FeedDiagnostic) {
	fmt.Println()
	fmt.Println("=== Feed Diagnostic Report ===")
	fmt.Println()

	counts := map[string]int{}
	for _, d := range diagnostics {
		counts[d.Status]++
		fmt.Printf("%-12s %-30s %s\n", d.Status, d.Account, d.URL)
		if d.ErrorMessage != "" {
			fmt.Printf("             error: %s\n", d.ErrorMessage)
		}
		if d.Status == "OK" {
			next := d.NextEvent
			if next == "" {
				next = "none upcoming"
			}
			fmt.Printf("             %d events, next: %s, %dms\n", d.EventCount, next, d.ResponseTime)
		}
	}

	fmt.Println()
	fmt.Printf("Total: %d | OK: %d | Problems: %d\n",
		len(diagnostics), counts["OK"], len(diagnostics)-counts["OK"])
}

func writeJSONReport(diagnostics []FeedDiagnostic) {
	data, err := json.MarshalIndent(diagnostics, "", "  ")
	if err != nil {
		log.Printf("Failed to marshal JSON report: %v", err)
		return
	}
	const path = "feed_diagnostics.json"
	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Printf("Failed to write %s: %v", path, err)
		return
	}
	log.Printf("JSON report written to %s", path)
}

// Package sync implements the calendar sync use case: fetching each
// account's ICS feed, normalizing it into candidate events, and
// reconciling those candidates against the persisted event store.
package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"openchime/internal/domain/entity"
	"openchime/internal/infra/ics"
	"openchime/internal/repository"
	"openchime/internal/usecase/notify"
)

// ErrAllAccountsFailed is returned by SyncAll when every configured
// account failed to sync. Partial failure is not an error.
var ErrAllAccountsFailed = errors.New("all accounts failed to sync")

// FeedFetcher retrieves raw ICS text for a feed URL. service selects the
// circuit breaker profile for the account's provider.
type FeedFetcher interface {
	Fetch(ctx context.Context, feedURL, service string) (string, error)
}

// FeedParser normalizes raw ICS text into candidate events.
type FeedParser interface {
	Parse(raw string) ([]ics.CandidateEvent, error)
}

// Service orchestrates sync cycles across all accounts.
type Service struct {
	AccountRepo   repository.AccountRepository
	EventRepo     repository.EventRepository
	Fetcher       FeedFetcher
	Parsers       map[string]FeedParser // keyed by provider
	NotifyService notify.Service        // optional; nil disables notifications
}

// NewService creates a sync Service with the provided dependencies.
func NewService(
	accountRepo repository.AccountRepository,
	eventRepo repository.EventRepository,
	fetcher FeedFetcher,
	parsers map[string]FeedParser,
	notifyService notify.Service,
) *Service {
	return &Service{
		AccountRepo:   accountRepo,
		EventRepo:     eventRepo,
		Fetcher:       fetcher,
		Parsers:       parsers,
		NotifyService: notifyService,
	}
}

// Stats contains counters for one sync cycle.
type Stats struct {
	Accounts int
	Failed   int
	Fetched  int
	Added    int
	Updated  int
	Duration time.Duration
}

// SyncAll runs one sync cycle over every account. Accounts are isolated:
// a failing feed is logged and counted, never aborts the cycle. SyncAll
// returns an error only when every account failed.
func (s *Service) SyncAll(ctx context.Context) (*Stats, error) {
	logger := slog.Default()
	cycleID := uuid.New().String()
	start := time.Now()
	stats := &Stats{}

	accounts, err := s.AccountRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	stats.Accounts = len(accounts)

	for _, account := range accounts {
		if err := s.syncAccount(ctx, account, stats); err != nil {
			stats.Failed++
			logger.Warn("account sync failed",
				slog.String("cycle_id", cycleID),
				slog.Int64("account_id", account.ID),
				slog.String("provider", account.Provider),
				slog.Any("error", err))
		}
	}

	stats.Duration = time.Since(start)
	logger.Info("sync cycle completed",
		slog.String("cycle_id", cycleID),
		slog.Int("accounts", stats.Accounts),
		slog.Int("failed", stats.Failed),
		slog.Int("fetched", stats.Fetched),
		slog.Int("added", stats.Added),
		slog.Int("updated", stats.Updated),
		slog.Duration("duration", stats.Duration))

	if stats.Accounts > 0 && stats.Failed == stats.Accounts {
		s.publish(ctx, notify.NewSyncFailed(ErrAllAccountsFailed))
		return stats, ErrAllAccountsFailed
	}

	s.publish(ctx, notify.NewSyncCompleted(
		stats.Accounts, stats.Added, stats.Updated, stats.Failed, stats.Duration))
	return stats, nil
}

// syncAccount fetches, parses, and reconciles a single account's feed.
func (s *Service) syncAccount(ctx context.Context, account *entity.Account, stats *Stats) error {
	parser := s.Parsers[account.Provider]
	if parser == nil {
		return fmt.Errorf("no parser registered for provider %q", account.Provider)
	}

	raw, err := s.Fetcher.Fetch(ctx, account.FeedURL, account.ServiceName())
	if err != nil {
		return fmt.Errorf("fetch feed: %w", err)
	}

	candidates, err := parser.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse feed: %w", err)
	}

	added, updated, err := s.ReconcileAccount(ctx, account.ID, candidates)
	if err != nil {
		return err
	}

	// The sync outcome is already durable; do not lose the timestamp to
	// a cancellation that arrives between reconcile and here.
	safeCtx := context.WithoutCancel(ctx)
	if err := s.AccountRepo.TouchSyncedAt(safeCtx, account.ID, time.Now()); err != nil {
		return fmt.Errorf("update account sync timestamp: %w", err)
	}

	// Counters aggregate only over accounts that completed; a failed
	// account contributes to Failed alone even when some of its rows
	// were written before the failure.
	stats.Fetched += len(candidates)
	stats.Added += added
	stats.Updated += updated
	return nil
}

// ReconcileAccount upserts candidates into the event store. New external ids
// are inserted with fresh alert state; known ids have only their content
// fields updated, so snoozes, dismissals, and fired thresholds survive
// every sync. Identical candidates are skipped entirely.
func (s *Service) ReconcileAccount(ctx context.Context, accountID int64, candidates []ics.CandidateEvent) (added, updated int, err error) {
	for _, candidate := range candidates {
		existing, err := s.EventRepo.GetByExternalID(ctx, candidate.ExternalID, accountID)
		if err != nil {
			return added, updated, fmt.Errorf("look up event %q: %w", candidate.ExternalID, err)
		}

		incoming := eventFromCandidate(accountID, candidate)

		if existing == nil {
			if err := s.EventRepo.Create(ctx, incoming); err != nil {
				return added, updated, fmt.Errorf("create event %q: %w", candidate.ExternalID, err)
			}
			added++
			continue
		}

		if existing.ContentEquals(incoming) {
			continue
		}
		if err := s.EventRepo.UpdateContent(ctx, incoming); err != nil {
			return added, updated, fmt.Errorf("update event %q: %w", candidate.ExternalID, err)
		}
		updated++
	}
	return added, updated, nil
}

// eventFromCandidate maps a parsed candidate onto the content fields of a
// CalendarEvent. Alert state fields stay at their zero values; for
// updates the repository never touches them.
func eventFromCandidate(accountID int64, c ics.CandidateEvent) *entity.CalendarEvent {
	return &entity.CalendarEvent{
		ExternalID:    c.ExternalID,
		AccountID:     accountID,
		Title:         c.Title,
		Description:   c.Description,
		StartTime:     c.Start,
		EndTime:       c.End,
		VideoLink:     c.VideoLink,
		VideoPlatform: c.VideoPlatform,
	}
}

func (s *Service) publish(ctx context.Context, event notify.Event) {
	if s.NotifyService == nil {
		return
	}
	if err := s.NotifyService.Publish(ctx, event); err != nil {
		slog.Warn("failed to publish sync notification", slog.Any("error", err))
	}
}

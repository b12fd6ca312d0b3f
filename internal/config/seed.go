package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"openchime/internal/domain/entity"
	"openchime/internal/repository"
)

// Seed describes the optional YAML seed file applied at startup. It lets a
// fresh install come up with calendar accounts and alert preferences already
// in place instead of requiring manual inserts into the database.
//
// Settings fields are pointers so an absent key leaves the stored value
// untouched; only keys present in the file override.
type Seed struct {
	Accounts []SeedAccount `yaml:"accounts"`
	Settings *SeedSettings `yaml:"settings"`
}

// SeedAccount is one calendar subscription to create if it does not
// already exist. Accounts are matched by feed URL, so re-applying the
// same file is idempotent.
type SeedAccount struct {
	Provider string `yaml:"provider"`
	Name     string `yaml:"name"`
	FeedURL  string `yaml:"feed_url"`
}

// SeedSettings overrides stored alert preferences.
type SeedSettings struct {
	Volume   *float64 `yaml:"volume"`
	Alert30m *bool    `yaml:"alert_30m"`
	Alert10m *bool    `yaml:"alert_10m"`
	Alert5m  *bool    `yaml:"alert_5m"`
	Alert1m  *bool    `yaml:"alert_1m"`
	AlertAt  *bool    `yaml:"alert_at_start"`
}

// LoadSeed reads and validates a seed file. A missing file is not an
// error: the seed is optional and absence simply means nothing to apply.
func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}

	if err := seed.Validate(); err != nil {
		return nil, fmt.Errorf("invalid seed file %s: %w", path, err)
	}

	return &seed, nil
}

// Validate checks every account entry and the settings overrides. The
// whole file is rejected on the first problem so a typo never half-applies.
func (s *Seed) Validate() error {
	for i, sa := range s.Accounts {
		account := entity.Account{
			Provider: sa.Provider,
			Name:     sa.Name,
			FeedURL:  sa.FeedURL,
		}
		if err := account.Validate(); err != nil {
			return fmt.Errorf("accounts[%d]: %w", i, err)
		}
	}

	if s.Settings != nil && s.Settings.Volume != nil {
		if *s.Settings.Volume < 0 || *s.Settings.Volume > 1 {
			return fmt.Errorf("settings.volume must be between 0.0 and 1.0, got %v", *s.Settings.Volume)
		}
	}

	return nil
}

// Apply creates the seeded accounts that are not present yet and merges
// the settings overrides into the stored preferences. Existing accounts
// (matched by feed URL) are left alone, so Apply can run on every start.
func (s *Seed) Apply(ctx context.Context, accounts repository.AccountRepository, settings repository.SettingsRepository, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	existing, err := accounts.List(ctx)
	if err != nil {
		return fmt.Errorf("list accounts: %w", err)
	}
	known := make(map[string]bool, len(existing))
	for _, a := range existing {
		known[a.FeedURL] = true
	}

	created := 0
	for _, sa := range s.Accounts {
		if known[sa.FeedURL] {
			continue
		}
		account := &entity.Account{
			Provider: sa.Provider,
			Name:     sa.Name,
			FeedURL:  sa.FeedURL,
		}
		id, err := accounts.Create(ctx, account)
		if err != nil {
			return fmt.Errorf("seed account %q: %w", sa.Name, err)
		}
		known[sa.FeedURL] = true
		created++
		logger.Info("seeded account",
			slog.Int64("account_id", id),
			slog.String("provider", sa.Provider),
			slog.String("name", sa.Name))
	}

	if s.Settings != nil {
		current, err := settings.Get(ctx)
		if err != nil {
			return fmt.Errorf("load settings: %w", err)
		}
		merged := s.Settings.mergeInto(current)
		if merged != current {
			if err := settings.Update(ctx, merged); err != nil {
				return fmt.Errorf("apply seeded settings: %w", err)
			}
			logger.Info("applied seeded settings")
		}
	}

	if created > 0 {
		logger.Info("seed applied", slog.Int("accounts_created", created))
	}
	return nil
}

func (o *SeedSettings) mergeInto(s entity.Settings) entity.Settings {
	if o.Volume != nil {
		s.Volume = *o.Volume
	}
	if o.Alert30m != nil {
		s.Alert30m = *o.Alert30m
	}
	if o.Alert10m != nil {
		s.Alert10m = *o.Alert10m
	}
	if o.Alert5m != nil {
		s.Alert5m = *o.Alert5m
	}
	if o.Alert1m != nil {
		s.Alert1m = *o.Alert1m
	}
	if o.AlertAt != nil {
		s.AlertDefault = *o.AlertAt
	}
	return s
}

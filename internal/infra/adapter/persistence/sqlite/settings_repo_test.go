package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"openchime/internal/domain/entity"
)

func TestSettingsRepo_DefaultsOnEmptyTable(t *testing.T) {
	database := newTestDB(t)
	repo := NewSettingsRepo(database)

	settings, err := repo.Get(context.Background())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if settings != entity.DefaultSettings() {
		t.Errorf("empty table must project defaults, got %+v", settings)
	}
}

func TestSettingsRepo_RoundTrip(t *testing.T) {
	database := newTestDB(t)
	repo := NewSettingsRepo(database)
	ctx := context.Background()

	want := entity.Settings{
		Volume:       0.4,
		Alert30m:     true,
		Alert10m:     true,
		Alert5m:      false,
		Alert1m:      true,
		AlertDefault: false,
	}
	if err := repo.Update(ctx, want); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := repo.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != want {
		t.Errorf("roundtrip mismatch: got %+v, want %+v", got, want)
	}
}

func TestSettingsRepo_UnparsableValueFallsBackPerKey(t *testing.T) {
	database := newTestDB(t)
	repo := NewSettingsRepo(database)
	ctx := context.Background()

	stmts := []struct{ key, value string }{
		{"alert_30m", "definitely"}, // corrupt, default false
		{"alert_5m", "false"},       // valid override
		{"volume", "loud"},          // corrupt, default 0.7
	}
	for _, s := range stmts {
		if _, err := database.ExecContext(ctx,
			`INSERT INTO settings (key, value) VALUES (?, ?)`, s.key, s.value); err != nil {
			t.Fatalf("seed setting %s: %v", s.key, err)
		}
	}

	got, err := repo.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Alert30m {
		t.Error("corrupt alert_30m must fall back to default false")
	}
	if got.Alert5m {
		t.Error("valid alert_5m=false override must apply")
	}
	if got.Volume != 0.7 {
		t.Errorf("corrupt volume must fall back to 0.7, got %v", got.Volume)
	}
	if !got.Alert1m || !got.AlertDefault {
		t.Error("untouched keys must keep their defaults")
	}
}

func TestSettingsRepo_GetQueryError(t *testing.T) {
	database, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer func() { _ = database.Close() }()

	queryErr := errors.New("disk I/O error")
	mock.ExpectQuery("SELECT key, value FROM settings").WillReturnError(queryErr)

	repo := NewSettingsRepo(database)
	settings, err := repo.Get(context.Background())
	if !errors.Is(err, queryErr) {
		t.Errorf("expected wrapped query error, got %v", err)
	}
	// Even on failure the projection carries safe defaults.
	if settings != entity.DefaultSettings() {
		t.Errorf("expected defaults on error, got %+v", settings)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet sqlmock expectations: %v", err)
	}
}

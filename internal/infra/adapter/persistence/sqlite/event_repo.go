package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"openchime/internal/domain/entity"
	"openchime/internal/infra/db"
	"openchime/internal/repository"
)

const eventColumns = `id, external_id, account_id, title, description, start_time, end_time,
video_link, video_platform, snooze_count, has_alerted, last_alert_threshold,
is_dismissed, created_at, updated_at`

// EventRepo implements the EventRepository interface using SQLite.
type EventRepo struct{ db *sql.DB }

// NewEventRepo creates a new SQLite-backed event repository.
func NewEventRepo(database *sql.DB) repository.EventRepository {
	return &EventRepo{db: database}
}

func scanEvent(row interface{ Scan(...any) error }) (*entity.CalendarEvent, error) {
	var ev entity.CalendarEvent
	var description, videoLink, videoPlatform sql.NullString
	var lastThreshold sql.NullInt64
	var start, end, createdAt, updatedAt string

	err := row.Scan(&ev.ID, &ev.ExternalID, &ev.AccountID, &ev.Title, &description,
		&start, &end, &videoLink, &videoPlatform,
		&ev.SnoozeCount, &ev.HasAlerted, &lastThreshold, &ev.IsDismissed,
		&createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	ev.Description = strPtr(description)
	ev.VideoLink = strPtr(videoLink)
	ev.VideoPlatform = strPtr(videoPlatform)
	ev.LastAlertThreshold = intPtr(lastThreshold)

	if ev.StartTime, err = parseTime(start); err != nil {
		return nil, err
	}
	if ev.EndTime, err = parseTime(end); err != nil {
		return nil, err
	}
	if ev.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if ev.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &ev, nil
}

func (repo *EventRepo) Get(ctx context.Context, id int64) (*entity.CalendarEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = ? LIMIT 1`

	ev, err := scanEvent(repo.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("event %d: %w", id, entity.ErrNotFound)
		}
		return nil, fmt.Errorf("Get: %w", err)
	}
	return ev, nil
}

func (repo *EventRepo) GetByExternalID(ctx context.Context, externalID string, accountID int64) (*entity.CalendarEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE external_id = ? AND account_id = ? LIMIT 1`

	ev, err := scanEvent(repo.db.QueryRowContext(ctx, query, externalID, accountID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("GetByExternalID: %w", err)
	}
	return ev, nil
}

// ListInWindow retrieves non-dismissed events starting within [from, to].
func (repo *EventRepo) ListInWindow(ctx context.Context, from, to time.Time) ([]*entity.CalendarEvent, error) {
	query := `SELECT ` + eventColumns + `
FROM events
WHERE start_time >= ? AND start_time <= ? AND is_dismissed = 0
ORDER BY start_time ASC`

	rows, err := repo.db.QueryContext(ctx, query, fmtTime(from), fmtTime(to))
	if err != nil {
		return nil, fmt.Errorf("ListInWindow: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	events := make([]*entity.CalendarEvent, 0, 16)
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("ListInWindow: Scan: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListInWindow: rows.Err: %w", err)
	}
	return events, nil
}

func (repo *EventRepo) Create(ctx context.Context, ev *entity.CalendarEvent) error {
	const query = `
INSERT INTO events
(external_id, account_id, title, description, start_time, end_time,
 video_link, video_platform, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`
	now := fmtTime(time.Now())
	return db.WithBusyRetry(ctx, func() error {
		res, err := repo.db.ExecContext(ctx, query,
			ev.ExternalID, ev.AccountID, ev.Title, nullStr(ev.Description),
			fmtTime(ev.StartTime), fmtTime(ev.EndTime),
			nullStr(ev.VideoLink), nullStr(ev.VideoPlatform), now, now,
		)
		if err != nil {
			return fmt.Errorf("Create: ExecContext: %w", err)
		}
		if ev.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("Create: LastInsertId: %w", err)
		}
		return nil
	})
}

// UpdateContent refreshes the fields owned by reconciliation. Alert state
// columns are intentionally absent from the statement.
func (repo *EventRepo) UpdateContent(ctx context.Context, ev *entity.CalendarEvent) error {
	const query = `
UPDATE events SET
	title          = ?,
	description    = ?,
	start_time     = ?,
	end_time       = ?,
	video_link     = ?,
	video_platform = ?,
	updated_at     = ?
WHERE external_id = ? AND account_id = ?
`
	return db.WithBusyRetry(ctx, func() error {
		res, err := repo.db.ExecContext(ctx, query,
			ev.Title, nullStr(ev.Description),
			fmtTime(ev.StartTime), fmtTime(ev.EndTime),
			nullStr(ev.VideoLink), nullStr(ev.VideoPlatform),
			fmtTime(time.Now()), ev.ExternalID, ev.AccountID,
		)
		if err != nil {
			return fmt.Errorf("UpdateContent: ExecContext: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("UpdateContent: RowsAffected: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("UpdateContent: %w", entity.ErrNotFound)
		}
		return nil
	})
}

func (repo *EventRepo) SetAlertThreshold(ctx context.Context, id int64, threshold int) error {
	const query = `UPDATE events SET last_alert_threshold = ?, has_alerted = 1 WHERE id = ?`

	return db.WithBusyRetry(ctx, func() error {
		res, err := repo.db.ExecContext(ctx, query, threshold, id)
		if err != nil {
			return fmt.Errorf("SetAlertThreshold: ExecContext: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("SetAlertThreshold: RowsAffected: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("SetAlertThreshold: %w", entity.ErrNotFound)
		}
		return nil
	})
}

// Snooze increments the snooze counter and re-arms the alert. The cap is
// enforced here so concurrent snoozes cannot exceed it.
func (repo *EventRepo) Snooze(ctx context.Context, id int64) error {
	var count int
	err := repo.db.QueryRowContext(ctx, `SELECT snooze_count FROM events WHERE id = ?`, id).Scan(&count)
	if err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("Snooze: %w", entity.ErrNotFound)
		}
		return fmt.Errorf("Snooze: %w", err)
	}
	if count >= entity.MaxSnoozeCount {
		return fmt.Errorf("Snooze: %w", entity.ErrSnoozeLimit)
	}

	const query = `
UPDATE events SET snooze_count = snooze_count + 1, has_alerted = 0
WHERE id = ? AND snooze_count < ?`

	return db.WithBusyRetry(ctx, func() error {
		res, err := repo.db.ExecContext(ctx, query, id, entity.MaxSnoozeCount)
		if err != nil {
			return fmt.Errorf("Snooze: ExecContext: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("Snooze: RowsAffected: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("Snooze: %w", entity.ErrSnoozeLimit)
		}
		return nil
	})
}

// Dismiss is a one-way latch; dismissing twice is a no-op, not an error.
func (repo *EventRepo) Dismiss(ctx context.Context, id int64) error {
	const query = `UPDATE events SET is_dismissed = 1 WHERE id = ?`

	return db.WithBusyRetry(ctx, func() error {
		res, err := repo.db.ExecContext(ctx, query, id)
		if err != nil {
			return fmt.Errorf("Dismiss: ExecContext: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("Dismiss: RowsAffected: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("Dismiss: %w", entity.ErrNotFound)
		}
		return nil
	})
}

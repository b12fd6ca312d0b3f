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

// AccountRepo implements the AccountRepository interface using SQLite.
type AccountRepo struct{ db *sql.DB }

// NewAccountRepo creates a new SQLite-backed account repository.
func NewAccountRepo(database *sql.DB) repository.AccountRepository {
	return &AccountRepo{db: database}
}

func scanAccount(row interface{ Scan(...any) error }) (*entity.Account, error) {
	var acct entity.Account
	var lastSynced sql.NullString

	if err := row.Scan(&acct.ID, &acct.Provider, &acct.Name, &acct.FeedURL, &lastSynced); err != nil {
		return nil, err
	}

	t, err := parseNullTime(lastSynced)
	if err != nil {
		return nil, err
	}
	acct.LastSyncedAt = t
	return &acct, nil
}

func (repo *AccountRepo) Get(ctx context.Context, id int64) (*entity.Account, error) {
	const query = `
SELECT id, provider, account_name, feed_url, last_synced_at
FROM accounts
WHERE id = ?
LIMIT 1
`
	acct, err := scanAccount(repo.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("account %d: %w", id, entity.ErrNotFound)
		}
		return nil, fmt.Errorf("Get: %w", err)
	}
	return acct, nil
}

func (repo *AccountRepo) List(ctx context.Context) ([]*entity.Account, error) {
	const query = `
SELECT id, provider, account_name, feed_url, last_synced_at
FROM accounts
ORDER BY id ASC
`
	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("List: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	accounts := make([]*entity.Account, 0, 4)
	for rows.Next() {
		acct, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("List: Scan: %w", err)
		}
		accounts = append(accounts, acct)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List: rows.Err: %w", err)
	}
	return accounts, nil
}

func (repo *AccountRepo) Create(ctx context.Context, acct *entity.Account) (int64, error) {
	if err := acct.Validate(); err != nil {
		return 0, err
	}

	const query = `
INSERT INTO accounts (provider, account_name, feed_url)
VALUES (?, ?, ?)
`
	var id int64
	err := db.WithBusyRetry(ctx, func() error {
		res, err := repo.db.ExecContext(ctx, query, acct.Provider, acct.Name, acct.FeedURL)
		if err != nil {
			return fmt.Errorf("Create: ExecContext: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("Create: LastInsertId: %w", err)
		}
		return nil
	})
	return id, err
}

// Delete removes the account; its events cascade via the foreign key.
func (repo *AccountRepo) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM accounts WHERE id = ?`

	return db.WithBusyRetry(ctx, func() error {
		res, err := repo.db.ExecContext(ctx, query, id)
		if err != nil {
			return fmt.Errorf("Delete: ExecContext: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("Delete: RowsAffected: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("Delete: %w", entity.ErrNotFound)
		}
		return nil
	})
}

func (repo *AccountRepo) TouchSyncedAt(ctx context.Context, id int64, t time.Time) error {
	const query = `UPDATE accounts SET last_synced_at = ? WHERE id = ?`

	return db.WithBusyRetry(ctx, func() error {
		if _, err := repo.db.ExecContext(ctx, query, fmtTime(t), id); err != nil {
			return fmt.Errorf("TouchSyncedAt: ExecContext: %w", err)
		}
		return nil
	})
}

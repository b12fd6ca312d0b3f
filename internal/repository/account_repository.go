package repository

import (
	"context"
	"time"

	"openchime/internal/domain/entity"
)

type AccountRepository interface {
	// Get returns the account with the given id, or an error wrapping
	// entity.ErrNotFound when no such row exists.
	Get(ctx context.Context, id int64) (*entity.Account, error)
	List(ctx context.Context) ([]*entity.Account, error)
	Create(ctx context.Context, account *entity.Account) (int64, error)
	Delete(ctx context.Context, id int64) error
	TouchSyncedAt(ctx context.Context, id int64, t time.Time) error
}

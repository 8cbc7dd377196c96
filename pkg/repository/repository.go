package repository

import (
	"context"
)

// Repository is the generic gorm-backed row store used by the ingest store.
type Repository[T any] interface {
	Create(ctx context.Context, resource *T) error
	DeleteAll(ctx context.Context) (int64, error)
}

package ports

import (
	"context"

	"github.com/microblog/user-api/internal/core/domain"
)

// UserRepository is the durable (Postgres) side of user persistence.
type UserRepository interface {
	// EmailTaken reports whether the email is already present in durable
	// storage. It does not see pending-but-not-yet-flushed signups; that race
	// is caught at flush time via BatchDuplicateEmail.
	EmailTaken(ctx context.Context, email string) (bool, error)

	// InsertBatch persists the batch inside a single transaction, preserving
	// slice order. Per-record outcomes are Committed or DuplicateEmail. If the
	// store itself is unreachable the whole batch fails with an error wrapping
	// domain.ErrStoreUnavailable and nothing is committed.
	InsertBatch(ctx context.Context, batch []domain.PendingUser) ([]domain.BatchResult, error)

	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindCredentials(ctx context.Context, email string) (*domain.Credentials, error)
}

// UserCache is a read-through cache for user detail lookups.
// Get returns (nil, nil) on a cache miss.
type UserCache interface {
	Get(ctx context.Context, id string) (*domain.User, error)
	Set(ctx context.Context, user *domain.User) error
}

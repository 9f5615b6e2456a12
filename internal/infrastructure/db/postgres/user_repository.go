package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/microblog/user-api/internal/core/domain"
)

// UserRepository is the PostgreSQL implementation of ports.UserRepository.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) EmailTaken(ctx context.Context, email string) (bool, error) {
	var taken bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email).Scan(&taken)
	if err != nil {
		return false, unavailable("check email", err)
	}
	return taken, nil
}

// InsertBatch writes the batch inside one transaction, in slice order.
// Email conflicts are absorbed per record with ON CONFLICT DO NOTHING and
// reported as BatchDuplicateEmail; any other failure aborts the whole batch
// with an unavailable error, leaving nothing committed so the caller can
// safely retry the full snapshot.
func (r *UserRepository) InsertBatch(ctx context.Context, batch []domain.PendingUser) ([]domain.BatchResult, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, unavailable("begin batch", err)
	}
	defer func() { _ = tx.Rollback() }()

	results := make([]domain.BatchResult, 0, len(batch))
	for _, rec := range batch {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO users (id, name, email, password_hash, created_at)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (email) DO NOTHING`,
			rec.ID, rec.Name, rec.Email, rec.PasswordHash, rec.CreatedAt)
		if err != nil {
			return nil, unavailable("insert user", err)
		}

		inserted, err := res.RowsAffected()
		if err != nil {
			return nil, unavailable("insert user", err)
		}
		if inserted == 0 {
			results = append(results, domain.BatchResult{
				UserID: rec.ID, Email: rec.Email, Status: domain.BatchDuplicateEmail,
			})
			continue
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO user_salts (user_id, salt) VALUES ($1, $2)`,
			rec.ID, rec.Salt); err != nil {
			return nil, unavailable("insert salt", err)
		}

		results = append(results, domain.BatchResult{
			UserID: rec.ID, Email: rec.Email, Status: domain.BatchCommitted,
		})
	}

	if err := tx.Commit(); err != nil {
		return nil, unavailable("commit batch", err)
	}
	return results, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	user := &domain.User{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, created_at FROM users WHERE id = $1`, id).
		Scan(&user.ID, &user.Name, &user.Email, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, unavailable("find user", err)
	}
	return user, nil
}

func (r *UserRepository) FindCredentials(ctx context.Context, email string) (*domain.Credentials, error) {
	creds := &domain.Credentials{}
	err := r.db.QueryRowContext(ctx,
		`SELECT u.id, u.password_hash, s.salt
		 FROM users u
		 JOIN user_salts s ON s.user_id = u.id
		 WHERE u.email = $1`, email).
		Scan(&creds.ID, &creds.PasswordHash, &creds.Salt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, unavailable("find credentials", err)
	}
	return creds, nil
}

// unavailable wraps any storage failure as domain.ErrStoreUnavailable,
// keeping the Postgres error code when one is present.
func unavailable(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("%s: %w: pg %s: %s", op, domain.ErrStoreUnavailable, pgErr.Code, pgErr.Message)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreUnavailable, err)
}

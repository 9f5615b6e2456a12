package ports

import (
	"context"
	"time"

	"github.com/microblog/user-api/internal/core/domain"
)

// SignUpInput is a creation request that already passed DTO validation.
type SignUpInput struct {
	Name     string
	Email    string
	Password string
}

// EnqueuedUser is what the HTTP layer returns for an accepted signup. The
// record is admitted, not yet durable.
type EnqueuedUser struct {
	ID        string
	CreatedAt time.Time
}

// TokenPair is the result of a successful login.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresIn  int64
	RefreshExpiresIn int64
}

type UserService interface {
	SignUp(ctx context.Context, in SignUpInput) (*EnqueuedUser, error)
	Login(ctx context.Context, email, password string) (*TokenPair, error)
	Detail(ctx context.Context, id string) (*domain.User, error)
}

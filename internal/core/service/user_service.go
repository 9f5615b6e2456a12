package service

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/microblog/user-api/internal/api/metrics"
	"github.com/microblog/user-api/internal/core/domain"
	"github.com/microblog/user-api/internal/core/ports"
)

const (
	accessTokenTTL  = 30 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
)

// PendingQueue is the slice of the write-behind queue the service needs.
type PendingQueue interface {
	Put(rec domain.PendingUser) error
}

// UserService implements signup, login, and detail lookups.
//
// SignUp is write-behind: the record is admitted into the pending queue and
// the call returns before durable commit. A signup is therefore invisible to
// Login and Detail until the next queue flush (at most one flush interval
// under healthy storage).
type UserService struct {
	repo          ports.UserRepository
	cache         ports.UserCache
	queue         PendingQueue
	accessSecret  string
	refreshSecret string
	log           zerolog.Logger
}

func NewUserService(repo ports.UserRepository, cache ports.UserCache, queue PendingQueue, accessSecret, refreshSecret string, log zerolog.Logger) *UserService {
	return &UserService{
		repo:          repo,
		cache:         cache,
		queue:         queue,
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
		log:           log,
	}
}

// SignUp checks email availability against durable storage, then builds the
// pending record and enqueues it. The returned id and created-at are final;
// the success response is an admission guarantee, not a durability guarantee.
func (s *UserService) SignUp(ctx context.Context, in ports.SignUpInput) (*ports.EnqueuedUser, error) {
	taken, err := s.repo.EmailTaken(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.ErrEmailTaken
	}

	salt := uuid.NewString()
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password+salt), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	rec := domain.PendingUser{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
		Salt:         salt,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.queue.Put(rec); err != nil {
		return nil, err
	}

	metrics.UsersEnqueuedTotal.Inc()
	s.log.Info().Str("user_id", rec.ID).Msg("signup admitted")
	return &ports.EnqueuedUser{ID: rec.ID, CreatedAt: rec.CreatedAt}, nil
}

// Login verifies the password against the stored salted hash and issues an
// access/refresh token pair. A just-enqueued user cannot log in until flushed.
func (s *UserService) Login(ctx context.Context, email, password string) (*ports.TokenPair, error) {
	creds, err := s.repo.FindCredentials(ctx, email)
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(password+creds.Salt)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	access, err := s.signToken(creds.ID, "access", s.accessSecret, accessTokenTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.signToken(creds.ID, "refresh", s.refreshSecret, refreshTokenTTL)
	if err != nil {
		return nil, err
	}

	return &ports.TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresIn:  int64(accessTokenTTL.Seconds()),
		RefreshExpiresIn: int64(refreshTokenTTL.Seconds()),
	}, nil
}

// Detail reads a committed user, going through the cache first. Reads never
// consult the pending queue: an unflushed signup is reported as not found.
func (s *UserService) Detail(ctx context.Context, id string) (*domain.User, error) {
	if user, err := s.cache.Get(ctx, id); err != nil {
		s.log.Warn().Err(err).Str("user_id", id).Msg("cache read failed, falling back to storage")
	} else if user != nil {
		return user, nil
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, user); err != nil {
		s.log.Warn().Err(err).Str("user_id", id).Msg("cache write failed")
	}
	return user, nil
}

func (s *UserService) signToken(userID, typ, secret string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub": userID,
		"typ": typ,
		"exp": time.Now().Add(ttl).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

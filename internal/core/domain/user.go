package domain

import (
	"errors"
	"time"
)

var ErrEmailTaken = errors.New("email already in use")
var ErrUserNotFound = errors.New("user not found")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrStoreUnavailable = errors.New("store unavailable")

// ErrDuplicatePendingID signals an id collision inside the pending queue.
// Ids are generated fresh per signup, so hitting this is a programming error,
// not a recoverable runtime condition.
var ErrDuplicatePendingID = errors.New("duplicate pending record id")

// User is a durably committed account as read back from storage.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Credentials carries the secret material needed to verify a login attempt.
type Credentials struct {
	ID           string
	PasswordHash string
	Salt         string
}

// PendingUser is an accepted-but-not-yet-persisted signup. The created-at
// timestamp is assigned at enqueue time and is the one the client was told
// about; the flush cycle persists it unchanged.
type PendingUser struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Salt         string
	CreatedAt    time.Time
}

// BatchStatus classifies the outcome of persisting one pending record.
type BatchStatus string

const (
	// BatchCommitted: the record is now durably visible under its id and email.
	BatchCommitted BatchStatus = "committed"
	// BatchDuplicateEmail: the email was already present in durable storage,
	// meaning a race slipped past the signup uniqueness check. The record is
	// dropped; the loss is surfaced through metrics and logs.
	BatchDuplicateEmail BatchStatus = "duplicate_email"
)

// BatchResult is the per-record outcome of a batch insert. Produced fresh each
// flush cycle and consumed immediately; never persisted.
type BatchResult struct {
	UserID string
	Email  string
	Status BatchStatus
}

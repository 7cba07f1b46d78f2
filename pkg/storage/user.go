package storage

import (
	"context"
	"time"

	"aimawatch/pkg/domain"
)

// UserStorage defines the persistence operations for user records. The
// scheduler, the API and the CLI all go through this interface; credential
// bytes stored here are always ciphertext produced by the vault.
type UserStorage interface {
	// CreateUser inserts a new user with encrypted credentials and returns
	// the stored row including generated timestamps. A duplicate user ID
	// yields a conflict error.
	CreateUser(ctx context.Context, user domain.User) (*domain.User, error)
	// UserByID fetches a user by ID. Returns nil when not found.
	UserByID(ctx context.Context, id domain.UserID) (*domain.User, error)
	// ActiveUsers returns all users with periodic checks enabled, ordered
	// by ascending user ID so cycle visitation order stays stable.
	ActiveUsers(ctx context.Context) ([]domain.User, error)
	// UpdateCredentials replaces the stored encrypted credentials.
	UpdateCredentials(ctx context.Context, id domain.UserID, emailEncrypted, passwordEncrypted []byte) error
	// UpdateStatus records the latest successfully fetched status text and
	// check time. It must only be called for successful fetches; failed
	// attempts never overwrite the last known status.
	UpdateStatus(ctx context.Context, id domain.UserID, statusText string, checkedAt time.Time) error
	// SetPeriodic enables or disables hourly scheduled checks for a user.
	SetPeriodic(ctx context.Context, id domain.UserID, enabled bool) error
	// DeleteUser removes a user and all their data.
	DeleteUser(ctx context.Context, id domain.UserID) error
}

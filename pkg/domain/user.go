package domain

import "time"

// UserID uniquely identifies a user within the system. It is the numeric
// chat identifier assigned by the messaging platform the notifier talks to.
type UserID int64

// User represents a registered user together with their encrypted portal
// credentials and the bookkeeping state the check scheduler maintains.
//
// EmailEncrypted and PasswordEncrypted hold AES-GCM sealed boxes produced by
// the vault package; plaintext credentials never appear on this struct and
// must never be persisted or logged.
type User struct {
	// ID is the unique identifier of the user.
	ID UserID `json:"id"`

	// EmailEncrypted is the user's portal email, encrypted with the
	// user-specific key derived by the vault.
	EmailEncrypted []byte `json:"-"`
	// PasswordEncrypted is the user's portal password, encrypted with the
	// user-specific key derived by the vault.
	PasswordEncrypted []byte `json:"-"`

	// PeriodicEnabled reports whether the user takes part in hourly
	// scheduled checks.
	PeriodicEnabled bool `json:"periodicEnabled"`
	// LastStatus is the most recent successfully fetched status text.
	// Empty until the first successful check.
	LastStatus string `json:"lastStatus"`
	// LastCheckedAt is when LastStatus was recorded. Zero until the first
	// successful check.
	LastCheckedAt time.Time `json:"lastCheckedAt"`

	// CreatedAt is the time when the user registered.
	CreatedAt time.Time `json:"createdAt"`
	// UpdatedAt is the time when the record was last modified.
	UpdatedAt time.Time `json:"updatedAt"`
}

// Package scheduler drives the periodic status checks. One goroutine runs the
// hourly cycle; users are visited strictly sequentially so the upstream portal
// never sees more than one request from this system at a time.
package scheduler

import (
	"context"

	"aimawatch/pkg/domain"
)

// Service runs the periodic check cycle and serves on-demand checks. Both
// paths share the same per-user guard: a user is never checked by two callers
// at once.
//
//go:generate mockgen -package mockscheduler -source=interface.go -destination=mock/mockscheduler.go *
type Service interface {
	// Run executes check cycles until the context is canceled. It blocks
	// and always returns the context's error.
	Run(ctx context.Context) error
	// CheckNow performs a single check for one user immediately, persists
	// the status on success and returns the result. It returns a conflict
	// error when a check for that user is already in flight and a
	// not-found error when the user does not exist.
	CheckNow(ctx context.Context, userID domain.UserID) (domain.StatusResult, error)
}

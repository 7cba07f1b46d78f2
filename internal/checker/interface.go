// Package checker logs into the upstream portal and extracts the current
// application status for one set of credentials. Every attempt walks a fixed
// sequence of stages (login page, CSRF token, credential submission, response
// classification, status extraction); each stage pins down exactly one
// assumption about the upstream contract, so markup drift surfaces as a
// specific parse failure rather than an opaque crash.
package checker

import (
	"context"

	"aimawatch/pkg/domain"
)

//go:generate mockgen -package mockchecker -source=interface.go -destination=mock/mockchecker.go *
type Checker interface {
	// Check performs one full login-and-fetch attempt with the given
	// plaintext credentials. The outcome is always carried in the result;
	// Check never panics and never returns partial status text.
	Check(ctx context.Context, email, password string) domain.StatusResult
}

package domain

import "time"

// Outcome classifies the terminal state of a single status fetch attempt.
// Every attempt ends in exactly one outcome; the checker never panics or
// returns an untyped failure for expected upstream conditions.
type Outcome string

const (
	// OutcomeSuccess indicates the portal was reached, login succeeded and
	// a status text was extracted.
	OutcomeSuccess Outcome = "SUCCESS"
	// OutcomeLoginFailed indicates the portal rejected the credentials.
	OutcomeLoginFailed Outcome = "LOGIN_FAILED"
	// OutcomeParseFailed indicates the upstream markup no longer matches
	// the expected structure (missing token, redirect or status marker).
	OutcomeParseFailed Outcome = "PARSE_FAILED"
	// OutcomeNetworkError indicates a transport-level failure before a
	// classifiable response was obtained.
	OutcomeNetworkError Outcome = "NETWORK_ERROR"
)

// StatusResult is the normalized product of one fetch attempt. It is created
// fresh per attempt and never mutated afterwards.
type StatusResult struct {
	// Outcome is the terminal classification of the attempt.
	Outcome Outcome `json:"outcome"`
	// StatusText is the sanitized status text. Only set on OutcomeSuccess.
	StatusText string `json:"statusText,omitempty"`
	// Err carries the failure detail for non-success outcomes. It is kept
	// out of JSON so raw upstream errors are not surfaced verbatim.
	Err error `json:"-"`
	// FetchedAt is when the attempt finished.
	FetchedAt time.Time `json:"fetchedAt"`
}

// Verdict is the notification decision produced for one user in one check
// cycle. It is transient and consumed within the cycle that produced it.
type Verdict string

const (
	// VerdictImmediate fires a notification right away: the status text
	// changed (or this is the first successful check).
	VerdictImmediate Verdict = "IMMEDIATE"
	// VerdictScheduled fires a notification because the current time falls
	// into one of the two daily reporting windows.
	VerdictScheduled Verdict = "SCHEDULED"
	// VerdictSuppressed fires nothing.
	VerdictSuppressed Verdict = "SUPPRESSED"
)

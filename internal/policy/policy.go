// Package policy decides whether the result of a status check is worth a
// notification. The decision is pure: the previous stored status, the fresh
// result and the current time go in, a verdict comes out. Nothing here talks
// to the network or the database.
package policy

import (
	"time"

	"aimawatch/pkg/domain"
)

// Scheduled report times, in minutes since local midnight, and how far around
// them a check still counts as a scheduled run.
const (
	morningReportMinute = 10 * 60
	eveningReportMinute = 19 * 60
	windowTolerance     = 5
)

// Policy evaluates check results against the two-tier notification scheme:
// status changes notify immediately, everything else only surfaces during the
// scheduled report windows.
type Policy struct {
	location *time.Location
}

// New creates a Policy whose report windows are anchored to the given
// location.
func New(location *time.Location) *Policy {
	return &Policy{location: location}
}

// Decide returns the verdict for a single check. prev is the last stored
// status text, empty when the user has never been checked successfully.
func (p *Policy) Decide(prev string, result domain.StatusResult, now time.Time) domain.Verdict {
	if result.Outcome == domain.OutcomeSuccess && result.StatusText != prev {
		return domain.VerdictImmediate
	}

	if p.inReportWindow(now) {
		return domain.VerdictScheduled
	}

	return domain.VerdictSuppressed
}

// inReportWindow reports whether now falls within tolerance of a scheduled
// report time in the policy's location.
func (p *Policy) inReportWindow(now time.Time) bool {
	local := now.In(p.location)
	minute := local.Hour()*60 + local.Minute()

	return absDiff(minute, morningReportMinute) <= windowTolerance ||
		absDiff(minute, eveningReportMinute) <= windowTolerance
}

func absDiff(a, b int) int {
	if a > b {
		return a - b
	}

	return b - a
}

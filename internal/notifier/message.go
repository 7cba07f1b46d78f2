package notifier

import (
	"fmt"
	"time"

	"aimawatch/pkg/domain"
)

// Message headlines. The verdict picks which one leads the notification.
const (
	statusChangedHeader   = "\U0001F514 Status Changed!"
	scheduledUpdateHeader = "\U0001F4CB Scheduled Update"
	checkFailedHeader     = "⚠️ Status Check Failed"
)

// StatusMessage composes the notification for a successful check. verdict
// must be VerdictImmediate or VerdictScheduled.
func StatusMessage(verdict domain.Verdict, statusText string, checkedAt, now time.Time, location *time.Location) string {
	header := scheduledUpdateHeader
	if verdict == domain.VerdictImmediate {
		header = statusChangedHeader
	}

	return fmt.Sprintf("%s\n\n%s\n\nLast checked: %s",
		header, statusText, FormatCheckedAt(checkedAt, now, location))
}

// FailureMessage composes the notification for a failed check, sent only
// during scheduled report windows.
func FailureMessage(result domain.StatusResult, location *time.Location) string {
	reason := "check failed"
	if result.Err != nil {
		reason = result.Err.Error()
	}

	return fmt.Sprintf("%s\n\nError: %s\n\nTime: %s",
		checkFailedHeader, reason,
		result.FetchedAt.In(location).Format("02 January 2006 at 15:04"))
}

// FormatCheckedAt renders a check timestamp relative to now: recent checks
// read as elapsed time, older ones as a full local date.
func FormatCheckedAt(checkedAt, now time.Time, location *time.Location) string {
	elapsed := now.Sub(checkedAt)

	switch {
	case elapsed < time.Minute:
		return "Just now"
	case elapsed < time.Hour:
		return plural(int(elapsed.Minutes()), "minute")
	case elapsed < 24*time.Hour:
		return plural(int(elapsed.Hours()), "hour")
	default:
		return checkedAt.In(location).Format("02 January 2006 at 15:04")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}

	return fmt.Sprintf("%d %ss ago", n, unit)
}

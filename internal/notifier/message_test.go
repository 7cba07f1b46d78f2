package notifier_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"aimawatch/internal/notifier"
	"aimawatch/pkg/domain"
)

func TestStatusMessage(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	checkedAt := now.Add(-30 * time.Second)

	immediate := notifier.StatusMessage(domain.VerdictImmediate,
		"Pedido em análise", checkedAt, now, time.UTC)
	require.Contains(t, immediate, "Status Changed!")
	require.Contains(t, immediate, "Pedido em análise")
	require.Contains(t, immediate, "Last checked: Just now")

	scheduled := notifier.StatusMessage(domain.VerdictScheduled,
		"Pedido em análise", checkedAt, now, time.UTC)
	require.Contains(t, scheduled, "Scheduled Update")
	require.NotContains(t, scheduled, "Status Changed!")
}

func TestFailureMessage(t *testing.T) {
	result := domain.StatusResult{
		Outcome:   domain.OutcomeNetworkError,
		Err:       errors.New("connection refused"),
		FetchedAt: time.Date(2026, time.March, 10, 9, 30, 0, 0, time.UTC),
	}

	message := notifier.FailureMessage(result, time.UTC)
	require.Contains(t, message, "Status Check Failed")
	require.Contains(t, message, "connection refused")
	require.Contains(t, message, "10 March 2026 at 09:30")
}

func TestFormatCheckedAt(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

	testCases := []struct {
		name     string
		elapsed  time.Duration
		expected string
	}{
		{name: "Just now", elapsed: 10 * time.Second, expected: "Just now"},
		{name: "One minute", elapsed: 90 * time.Second, expected: "1 minute ago"},
		{name: "Minutes", elapsed: 45 * time.Minute, expected: "45 minutes ago"},
		{name: "One hour", elapsed: 61 * time.Minute, expected: "1 hour ago"},
		{name: "Hours", elapsed: 5 * time.Hour, expected: "5 hours ago"},
		{name: "Old check falls back to date", elapsed: 48 * time.Hour, expected: "08 March 2026 at 12:00"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			checkedAt := now.Add(-testCase.elapsed)
			require.Equal(t, testCase.expected,
				notifier.FormatCheckedAt(checkedAt, now, time.UTC))
		})
	}
}

// Package metrics defines the OpenTelemetry instruments recorded by the check
// scheduler. The meter provider is backed by the Prometheus exporter wired up
// in the API server, so everything recorded here is scraped from /metrics.
package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"aimawatch/pkg/domain"
)

// DefaultBuckets provides a common set of histogram buckets in seconds that
// can be reused across the application for latency metrics.
var DefaultBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10} //nolint: gochecknoglobals

// Metrics bundles the instruments recorded during check cycles.
type Metrics struct {
	checks          metric.Int64Counter
	checkDuration   metric.Float64Histogram
	notifications   metric.Int64Counter
	decryptFailures metric.Int64Counter
}

// New creates the check-cycle instruments on the given meter.
func New(meter metric.Meter) (*Metrics, error) {
	checks, err := meter.Int64Counter("aimawatch_checks_total",
		metric.WithDescription("Status check attempts by outcome"))
	if err != nil {
		return nil, fmt.Errorf("could not create checks counter: %w", err)
	}

	duration, err := meter.Float64Histogram("aimawatch_check_duration_seconds",
		metric.WithDescription("Duration of a full fetch-decide-notify sequence"),
		metric.WithExplicitBucketBoundaries(DefaultBuckets...))
	if err != nil {
		return nil, fmt.Errorf("could not create duration histogram: %w", err)
	}

	notifications, err := meter.Int64Counter("aimawatch_notifications_total",
		metric.WithDescription("Notification verdicts by kind"))
	if err != nil {
		return nil, fmt.Errorf("could not create notifications counter: %w", err)
	}

	decryptFailures, err := meter.Int64Counter("aimawatch_decrypt_failures_total",
		metric.WithDescription("Credential decryption failures; alerts operators to data corruption"))
	if err != nil {
		return nil, fmt.Errorf("could not create decrypt failures counter: %w", err)
	}

	return &Metrics{
		checks:          checks,
		checkDuration:   duration,
		notifications:   notifications,
		decryptFailures: decryptFailures,
	}, nil
}

// RecordCheck records one finished check attempt and its duration.
func (m *Metrics) RecordCheck(ctx context.Context, outcome domain.Outcome, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("outcome", string(outcome)))
	m.checks.Add(ctx, 1, attrs)
	m.checkDuration.Record(ctx, elapsed.Seconds(), attrs)
}

// RecordVerdict records the notification decision for one check.
func (m *Metrics) RecordVerdict(ctx context.Context, verdict domain.Verdict) {
	if m == nil {
		return
	}
	m.notifications.Add(ctx, 1, metric.WithAttributes(attribute.String("verdict", string(verdict))))
}

// RecordDecryptFailure records a credential decryption failure.
func (m *Metrics) RecordDecryptFailure(ctx context.Context) {
	if m == nil {
		return
	}
	m.decryptFailures.Add(ctx, 1)
}

package instrumentation

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all metric instruments for the library.
type Metrics struct {
	// Server lifecycle
	TokensIssued          metric.Int64Counter
	TokensRevoked         metric.Int64Counter
	AuthFailures          metric.Int64Counter
	TokenIssuanceDuration metric.Float64Histogram

	// Storage
	StorageTokensCount  metric.Int64ObservableGauge
	StorageClientsCount metric.Int64ObservableGauge
	StorageCodesCount   metric.Int64ObservableGauge
}

// newMetrics creates and registers all metric instruments.
func newMetrics(inst *Instrumentation) (*Metrics, error) {
	m := &Metrics{}
	serverMeter := inst.Meter("server")
	storageMeter := inst.Meter("storage")

	var err error
	m.TokensIssued, err = serverMeter.Int64Counter(
		"oauth.tokens.issued",
		metric.WithDescription("Number of bearer tokens issued"),
		metric.WithUnit("{token}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create tokens.issued counter: %w", err)
	}

	m.TokensRevoked, err = serverMeter.Int64Counter(
		"oauth.tokens.revoked",
		metric.WithDescription("Number of tokens revoked"),
		metric.WithUnit("{token}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create tokens.revoked counter: %w", err)
	}

	m.AuthFailures, err = serverMeter.Int64Counter(
		"oauth.auth.failures",
		metric.WithDescription("Number of client authentication failures"),
		metric.WithUnit("{failure}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth.failures counter: %w", err)
	}

	m.TokenIssuanceDuration, err = serverMeter.Float64Histogram(
		"oauth.token.issuance.duration",
		metric.WithDescription("Token issuance duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create token.issuance.duration histogram: %w", err)
	}

	m.StorageTokensCount, err = storageMeter.Int64ObservableGauge(
		"oauth.storage.tokens.count",
		metric.WithDescription("Number of live token records"),
		metric.WithUnit("{token}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage.tokens.count gauge: %w", err)
	}

	m.StorageClientsCount, err = storageMeter.Int64ObservableGauge(
		"oauth.storage.clients.count",
		metric.WithDescription("Number of registered clients"),
		metric.WithUnit("{client}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage.clients.count gauge: %w", err)
	}

	m.StorageCodesCount, err = storageMeter.Int64ObservableGauge(
		"oauth.storage.codes.count",
		metric.WithDescription("Number of pending authorization codes"),
		metric.WithUnit("{code}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage.codes.count gauge: %w", err)
	}

	return m, nil
}

// RecordTokenIssued records a token issuance with its grant type.
func (m *Metrics) RecordTokenIssued(ctx context.Context, grantType string, durationMS float64) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("grant_type", grantType))
	m.TokensIssued.Add(ctx, 1, attrs)
	m.TokenIssuanceDuration.Record(ctx, durationMS, attrs)
}

// RecordTokenRevoked records a token revocation.
func (m *Metrics) RecordTokenRevoked(ctx context.Context, hint string) {
	if m == nil {
		return
	}
	m.TokensRevoked.Add(ctx, 1, metric.WithAttributes(attribute.String("token_type_hint", hint)))
}

// RecordAuthFailure records a client authentication failure.
func (m *Metrics) RecordAuthFailure(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	m.AuthFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

// Package observe records OpenTelemetry metrics for the steganography
// pipeline and its HTTP surface, and exposes them for Prometheus scraping.
//
// Tests should build their own [Metrics] with [NewMetrics] over an SDK
// MeterProvider and a ManualReader rather than touching the global provider.
package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/glizzus/sound-stego"

const (
	OpEmbed   = "embed"
	OpExtract = "extract"

	StatusOK    = "ok"
	StatusError = "error"
)

// Metrics holds the instruments. All fields are safe for concurrent use.
type Metrics struct {
	EmbedDuration   metric.Float64Histogram
	ExtractDuration metric.Float64Histogram

	// Operations counts pipeline calls by "op" and "status".
	Operations metric.Int64Counter

	// Errors counts pipeline failures by "op" and "kind".
	Errors metric.Int64Counter

	// PayloadBytes records secret sizes by "op".
	PayloadBytes metric.Int64Histogram

	HTTPRequestDuration metric.Float64Histogram
}

var latencyBuckets = []float64{
	0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10,
}

func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.EmbedDuration, err = m.Float64Histogram("stego.embed.duration",
		metric.WithDescription("Time spent encrypting and embedding a secret."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ExtractDuration, err = m.Float64Histogram("stego.extract.duration",
		metric.WithDescription("Time spent extracting and decrypting a secret."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.Operations, err = m.Int64Counter("stego.operations",
		metric.WithDescription("Pipeline operations by op and status."),
	); err != nil {
		return nil, err
	}
	if met.Errors, err = m.Int64Counter("stego.errors",
		metric.WithDescription("Pipeline failures by op and error kind."),
	); err != nil {
		return nil, err
	}
	if met.PayloadBytes, err = m.Int64Histogram("stego.payload.bytes",
		metric.WithDescription("Size of hidden or recovered secrets."),
		metric.WithUnit("By"),
	); err != nil {
		return nil, err
	}
	if met.HTTPRequestDuration, err = m.Float64Histogram("http.request.duration",
		metric.WithDescription("HTTP request latency by method and route."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// RecordOperation records one pipeline call. kind is only used when err is
// non-nil. A nil *Metrics records nothing.
func (m *Metrics) RecordOperation(ctx context.Context, op string, started time.Time, payloadBytes int, kind string, err error) {
	if m == nil {
		return
	}
	elapsed := time.Since(started).Seconds()
	opAttr := attribute.String("op", op)

	switch op {
	case OpEmbed:
		m.EmbedDuration.Record(ctx, elapsed)
	case OpExtract:
		m.ExtractDuration.Record(ctx, elapsed)
	}

	if err != nil {
		m.Operations.Add(ctx, 1, metric.WithAttributes(opAttr, attribute.String("status", StatusError)))
		m.Errors.Add(ctx, 1, metric.WithAttributes(opAttr, attribute.String("kind", kind)))
		return
	}
	m.Operations.Add(ctx, 1, metric.WithAttributes(opAttr, attribute.String("status", StatusOK)))
	m.PayloadBytes.Record(ctx, int64(payloadBytes), metric.WithAttributes(opAttr))
}

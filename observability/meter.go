package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/seqkit/config"
	"github.com/kbukum/seqkit/errors"
	"github.com/kbukum/seqkit/logger"
	"github.com/kbukum/seqkit/query"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment (development, staging, production).
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure allows insecure connections (for development).
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    "development",
		Endpoint:       config.DefaultMetricsEndpoint,
		Insecure:       true,
		Interval:       config.DefaultMetricsInterval,
	}
}

// MeterConfigFrom builds a MeterConfig from the application config.
func MeterConfigFrom(cfg *config.Config) MeterConfig {
	return MeterConfig{
		ServiceName:    cfg.Name,
		ServiceVersion: cfg.Version,
		Environment:    cfg.Environment,
		Endpoint:       cfg.Metrics.Endpoint,
		Insecure:       cfg.Metrics.Insecure,
		Interval:       cfg.Metrics.Interval,
	}
}

// InitMeter initializes the OpenTelemetry meter provider.
// Returns a MeterProvider that should be shut down on application exit.
func InitMeter(ctx context.Context, cfg MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(cfg.ServiceName, cfg.ServiceVersion, cfg.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if cfg.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Get("observability").Info("meter initialized", logger.Fields(
		"service", cfg.ServiceName,
		"endpoint", cfg.Endpoint,
		"interval", cfg.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Instrument names.
const (
	MetricCursorStarted        = "seqkit.cursor.started"
	MetricMaterializedElements = "seqkit.materialized.elements"
	MetricErrorTotal           = "seqkit.error.total"
	MetricEvaluationDuration   = "seqkit.evaluation.duration"
)

// QueryMetrics records engine events as OpenTelemetry metrics. It implements
// query.Observer.
type QueryMetrics struct {
	cursorStarted      metric.Int64Counter
	materialized       metric.Int64Histogram
	errorTotal         metric.Int64Counter
	evaluationDuration metric.Float64Histogram
}

var _ query.Observer = (*QueryMetrics)(nil)

// NewQueryMetrics creates the engine instruments on the given meter.
func NewQueryMetrics(meter metric.Meter) (*QueryMetrics, error) {
	cursorStarted, err := meter.Int64Counter(MetricCursorStarted,
		metric.WithDescription("Cursors handed out by query descriptors"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricCursorStarted, err)
	}

	materialized, err := meter.Int64Histogram(MetricMaterializedElements,
		metric.WithDescription("Elements buffered by eager operators"),
		metric.WithUnit("{element}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s histogram: %w", MetricMaterializedElements, err)
	}

	errorTotal, err := meter.Int64Counter(MetricErrorTotal,
		metric.WithDescription("Failed terminal operations by operator and code"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricErrorTotal, err)
	}

	evaluationDuration, err := meter.Float64Histogram(MetricEvaluationDuration,
		metric.WithDescription("Duration of traced query evaluations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s histogram: %w", MetricEvaluationDuration, err)
	}

	return &QueryMetrics{
		cursorStarted:      cursorStarted,
		materialized:       materialized,
		errorTotal:         errorTotal,
		evaluationDuration: evaluationDuration,
	}, nil
}

// CursorStarted counts a cursor handed out for op.
func (m *QueryMetrics) CursorStarted(op string, reused bool) {
	m.cursorStarted.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String(AttrOperation, op),
		attribute.Bool(AttrReused, reused),
	))
}

// Materialized records the size of a buffer filled by op.
func (m *QueryMetrics) Materialized(op string, n int) {
	m.materialized.Record(context.Background(), int64(n), metric.WithAttributes(
		attribute.String(AttrOperation, op),
	))
}

// Failed counts a failed terminal operation.
func (m *QueryMetrics) Failed(op string, code errors.ErrorCode) {
	m.errorTotal.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String(AttrOperation, op),
		attribute.String(AttrErrorCode, string(code)),
	))
}

// RecordEvaluation records the duration of a named evaluation.
func (m *QueryMetrics) RecordEvaluation(ctx context.Context, name, status string, d time.Duration) {
	m.evaluationDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String(AttrQueryName, name),
		attribute.String(AttrStatus, status),
	))
}

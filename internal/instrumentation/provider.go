package instrumentation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Provider owns the meter and tracer providers and the Metrics built on
// them. A disabled Provider hands out no-op Metrics and tracers.
type Provider struct {
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	metrics        *Metrics
	enabled        bool
}

// NewProvider sets up the exporters named in config and installs the
// providers globally
func NewProvider(ctx context.Context, config Config) (*Provider, error) {
	if !config.Enabled {
		return &Provider{metrics: &Metrics{}}, nil
	}

	res, err := newResource(ctx, config)
	if err != nil {
		return nil, err
	}

	reader, err := newMetricReader(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize meter provider: %w", err)
	}
	p := &Provider{
		enabled:       true,
		meterProvider: metric.NewMeterProvider(metric.WithResource(res), metric.WithReader(reader)),
	}

	p.tracerProvider, err = newTracerProvider(ctx, config, res)
	if err != nil {
		if shutdownErr := p.meterProvider.Shutdown(ctx); shutdownErr != nil {
			err = errors.Join(err, shutdownErr)
		}
		return nil, fmt.Errorf("failed to initialize tracer provider: %w", err)
	}

	otel.SetMeterProvider(p.meterProvider)
	otel.SetTracerProvider(p.tracerProvider)

	p.metrics, err = NewMetrics(p.meterProvider.Meter(config.ServiceName), config.DetailedLabels)
	if err != nil {
		_ = p.Shutdown(ctx)
		return nil, fmt.Errorf("failed to create metrics recorder: %w", err)
	}
	return p, nil
}

func newResource(ctx context.Context, config Config) (*resource.Resource, error) {
	instance := config.ServiceInstanceID
	if instance == "" {
		instance, _ = os.Hostname()
	}

	attrs := []resource.Option{resource.WithAttributes(
		semconv.ServiceName(config.ServiceName),
		semconv.ServiceVersion(config.ServiceVersion),
	)}
	if instance != "" {
		attrs = append(attrs, resource.WithAttributes(semconv.ServiceInstanceID(instance)))
	}

	res, err := resource.New(ctx, attrs...)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return res, nil
}

// newMetricReader returns the reader of config.MetricsExporter. The
// prometheus reader registers with the default prometheus registry, which
// the metrics server exposes.
func newMetricReader(ctx context.Context, config Config) (metric.Reader, error) {
	switch config.MetricsExporter {
	case ExporterPrometheus:
		return prometheus.New()

	case ExporterOTLP:
		if config.OTLPEndpoint == "" {
			return nil, errors.New("OTLP endpoint is required for the otlp metrics exporter")
		}
		opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(config.OTLPEndpoint)}
		if config.OTLPInsecure {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		exporter, err := otlpmetrichttp.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
		}
		return metric.NewPeriodicReader(exporter), nil

	case ExporterStdout:
		slog.Warn("stdout metrics exporter is meant for debugging", "component", "instrumentation")
		exporter, err := stdoutmetric.New()
		if err != nil {
			return nil, fmt.Errorf("failed to create stdout metrics exporter: %w", err)
		}
		return metric.NewPeriodicReader(exporter), nil
	}
	return nil, fmt.Errorf("unsupported metrics exporter: %s", config.MetricsExporter)
}

// newSpanExporter returns the exporter of config.TracingExporter, or nil
// for none
func newSpanExporter(ctx context.Context, config Config) (sdktrace.SpanExporter, error) {
	switch config.TracingExporter {
	case ExporterNone, "":
		return nil, nil

	case ExporterOTLP:
		if config.OTLPEndpoint == "" {
			return nil, errors.New("OTLP endpoint is required for the otlp tracing exporter")
		}
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(config.OTLPEndpoint)}
		if config.OTLPInsecure {
			// spans carry account names and file IDs
			slog.Warn("exporting traces without TLS", "component", "instrumentation", "endpoint", config.OTLPEndpoint)
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		return otlptracehttp.New(ctx, opts...)

	case ExporterStdout:
		slog.Warn("stdout trace exporter is meant for debugging", "component", "instrumentation")
		return stdouttrace.New()
	}
	return nil, fmt.Errorf("unsupported tracing exporter: %s", config.TracingExporter)
}

func newTracerProvider(ctx context.Context, config Config, res *resource.Resource) (*sdktrace.TracerProvider, error) {
	exporter, err := newSpanExporter(ctx, config)
	if err != nil {
		return nil, err
	}
	if exporter == nil {
		return sdktrace.NewTracerProvider(
			sdktrace.WithResource(res),
			sdktrace.WithSampler(sdktrace.NeverSample()),
		), nil
	}
	return sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(config.TraceSamplingRate))),
	), nil
}

// Metrics returns the metrics recorder
func (p *Provider) Metrics() *Metrics {
	return p.metrics
}

// Tracer returns a named tracer, a no-op one when disabled
func (p *Provider) Tracer(name string) trace.Tracer {
	if !p.enabled || p.tracerProvider == nil {
		return noop.NewTracerProvider().Tracer(name)
	}
	return p.tracerProvider.Tracer(name)
}

// Shutdown flushes pending telemetry
func (p *Provider) Shutdown(ctx context.Context) error {
	if !p.enabled {
		return nil
	}
	var errs []error
	if p.meterProvider != nil {
		if err := p.meterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown meter provider: %w", err))
		}
	}
	if p.tracerProvider != nil {
		if err := p.tracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown tracer provider: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Enabled reports whether instrumentation is on
func (p *Provider) Enabled() bool {
	return p.enabled
}

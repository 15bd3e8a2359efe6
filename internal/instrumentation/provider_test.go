package instrumentation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(metrics, tracing string) Config {
	return Config{
		ServiceName:     "test-service",
		ServiceVersion:  "1.0.0",
		Enabled:         true,
		MetricsExporter: metrics,
		TracingExporter: tracing,
	}
}

func TestNewProvider_Disabled(t *testing.T) {
	provider, err := NewProvider(context.Background(), Config{ServiceName: "test-service"})
	require.NoError(t, err)

	assert.False(t, provider.Enabled())
	assert.NotNil(t, provider.Metrics())
	assert.NotNil(t, provider.Tracer("test"))
	assert.NoError(t, provider.Shutdown(context.Background()))
}

func TestNewProvider_Exporters(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr string
	}{
		{name: "prometheus without tracing", config: testConfig(ExporterPrometheus, ExporterNone)},
		{name: "stdout", config: testConfig(ExporterStdout, ExporterStdout)},
		{name: "empty tracing exporter", config: testConfig(ExporterPrometheus, "")},
		{name: "unknown metrics exporter", config: testConfig("statsd", ExporterNone), wantErr: "unsupported metrics exporter"},
		{name: "unknown tracing exporter", config: testConfig(ExporterPrometheus, "jaeger"), wantErr: "unsupported tracing exporter"},
		{name: "otlp metrics without endpoint", config: testConfig(ExporterOTLP, ExporterNone), wantErr: "OTLP endpoint is required"},
		{name: "otlp tracing without endpoint", config: testConfig(ExporterPrometheus, ExporterOTLP), wantErr: "OTLP endpoint is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			provider, err := NewProvider(ctx, tt.config)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, provider.Enabled())
			assert.NotNil(t, provider.Metrics())
			assert.NotNil(t, provider.Tracer("test"))
			assert.NoError(t, provider.Shutdown(ctx))
		})
	}
}

func TestNewProvider_RecordsThroughMetrics(t *testing.T) {
	ctx := context.Background()
	provider, err := NewProvider(ctx, testConfig(ExporterPrometheus, ExporterNone))
	require.NoError(t, err)
	t.Cleanup(func() { _ = provider.Shutdown(ctx) })

	assert.NotPanics(t, func() {
		provider.Metrics().RecordDriveRequest(ctx, "GET", "files", StatusSuccess, 0)
		provider.Metrics().AddActiveSessions(ctx, 1)
	})
}

package instrumentation

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// Label values
const (
	StatusSuccess = "success"
	StatusError   = "error"

	OAuthResultSuccess = "success"
	OAuthResultFailure = "failure"
	OAuthResultExpired = "expired"
)

// Exporters
const (
	ExporterPrometheus = "prometheus"
	ExporterOTLP       = "otlp"
	ExporterStdout     = "stdout"
	ExporterNone       = "none"
)

// Config selects the telemetry exporters. It is read from the standard
// OTEL_* variables plus a few of our own.
type Config struct {
	ServiceName    string `validate:"required"`
	ServiceVersion string

	// ServiceInstanceID defaults to the hostname
	ServiceInstanceID string

	// Enabled turns metrics and tracing off entirely (INSTRUMENTATION_ENABLED)
	Enabled bool

	MetricsExporter string `validate:"omitempty,oneof=prometheus otlp stdout"`
	TracingExporter string `validate:"omitempty,oneof=otlp stdout none"`

	// OTLPEndpoint is host:port without a scheme
	OTLPEndpoint string `validate:"required_if=MetricsExporter otlp,required_if=TracingExporter otlp"`

	// OTLPInsecure sends OTLP over plain HTTP
	OTLPInsecure bool

	TraceSamplingRate float64 `validate:"gte=0,lte=1"`

	// DetailedLabels adds the account label to tool metrics
	DetailedLabels bool

	AuditLogging AuditLoggingConfig
}

// AuditLoggingConfig controls the per-tool audit log
type AuditLoggingConfig struct {
	Enabled bool

	// IncludeTargets logs the file or drive ID a tool addressed
	IncludeTargets bool
}

type envReader struct {
	lookup func(string) (string, bool)
}

func (e envReader) str(key, def string) string {
	if v, ok := e.lookup(key); ok && v != "" {
		return v
	}
	return def
}

func (e envReader) boolean(key string, def bool) bool {
	b, err := strconv.ParseBool(e.str(key, strconv.FormatBool(def)))
	if err != nil {
		return def
	}
	return b
}

func (e envReader) float(key string, def float64) float64 {
	f, err := strconv.ParseFloat(e.str(key, ""), 64)
	if err != nil {
		return def
	}
	return f
}

// LoadConfig builds a Config from the variables lookup returns
func LoadConfig(lookup func(string) (string, bool)) Config {
	env := envReader{lookup: lookup}
	return Config{
		ServiceName:       env.str("OTEL_SERVICE_NAME", "gdrive-endpoint"),
		ServiceVersion:    "unknown",
		ServiceInstanceID: env.str("OTEL_SERVICE_INSTANCE_ID", ""),
		Enabled:           env.boolean("INSTRUMENTATION_ENABLED", true),
		MetricsExporter:   env.str("METRICS_EXPORTER", ExporterPrometheus),
		TracingExporter:   env.str("TRACING_EXPORTER", ExporterNone),
		OTLPEndpoint:      env.str("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTLPInsecure:      env.boolean("OTEL_EXPORTER_OTLP_INSECURE", false),
		TraceSamplingRate: env.float("OTEL_TRACES_SAMPLER_ARG", 0.1),
		DetailedLabels:    env.boolean("METRICS_DETAILED_LABELS", false),
		AuditLogging: AuditLoggingConfig{
			Enabled:        env.boolean("AUDIT_LOGGING_ENABLED", true),
			IncludeTargets: env.boolean("AUDIT_LOGGING_INCLUDE_TARGETS", false),
		},
	}
}

// DefaultConfig reads the Config from the process environment
func DefaultConfig() Config {
	return LoadConfig(os.LookupEnv)
}

var validate = validator.New()

// Validate reports the first invalid field
func (c *Config) Validate() error {
	err := validate.Struct(c)
	var valErrs validator.ValidationErrors
	if !errors.As(err, &valErrs) || len(valErrs) == 0 {
		return err
	}

	fe := valErrs[0]
	switch fe.Tag() {
	case "oneof":
		return fmt.Errorf("invalid %s %q, must be one of: %s", fe.Field(), fe.Value(), fe.Param())
	case "required_if":
		return fmt.Errorf("%s is required when an exporter is otlp", fe.Field())
	case "gte", "lte":
		return fmt.Errorf("%s must be between 0.0 and 1.0, got %v", fe.Field(), fe.Value())
	default:
		return fmt.Errorf("%s is invalid (%s)", fe.Field(), fe.Tag())
	}
}

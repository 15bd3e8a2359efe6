package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/teemow/gdrive-endpoint/internal/google"
)

// Transports supported by the serve command
const (
	TransportStdio          = "stdio"
	TransportStreamableHTTP = "streamable-http"
)

const (
	defaultHTTPAddr    = ":8080"
	defaultMetricsAddr = ":9090"
	defaultRedirectURL = "http://localhost:8080/callback"
	appName            = "gdrive-endpoint"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("account", func(fl validator.FieldLevel) bool {
		return google.ValidateAccountName(fl.Field().String()) == nil
	})
	// Report yaml names in validation errors
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Config is the configuration of gdrive-endpoint
type Config struct {
	Google  GoogleConfig  `yaml:"google"`
	Drive   DriveConfig   `yaml:"drive"`
	Server  ServerConfig  `yaml:"server"`
	Metrics MetricsConfig `yaml:"metrics"`
	Logging LoggingConfig `yaml:"logging"`
}

// GoogleConfig holds the OAuth client settings
type GoogleConfig struct {
	ClientID     string `yaml:"client_id,omitempty"`
	ClientSecret string `yaml:"client_secret,omitempty"`
	RedirectURL  string `yaml:"redirect_url" validate:"required,url"`

	// TokenDir holds the per-account token files. Empty means the user
	// cache directory.
	TokenDir string `yaml:"token_dir,omitempty"`
}

// DriveConfig holds the transport settings
type DriveConfig struct {
	BaseURL        string `yaml:"base_url,omitempty" validate:"omitempty,url"`
	StoreDir       string `yaml:"store_dir" validate:"required"`
	DefaultAccount string `yaml:"default_account" validate:"required,account"`
}

// ServerConfig holds the MCP server settings
type ServerConfig struct {
	Transport string `yaml:"transport" validate:"required,oneof=stdio streamable-http"`
	HTTPAddr  string `yaml:"http_addr" validate:"required_if=Transport streamable-http,omitempty,hostname_port"`

	// BaseURL is the public URL of the server, used for the OAuth callback
	BaseURL string `yaml:"base_url,omitempty" validate:"omitempty,url"`

	// ReadOnly hides every operation that changes Drive state
	ReadOnly bool `yaml:"read_only"`
}

// MetricsConfig holds the settings of the dedicated metrics listener
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr" validate:"required_if=Enabled true,omitempty,hostname_port"`
}

// LoggingConfig selects level and format of the process logger
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// Default returns the configuration used when no file exists
func Default() *Config {
	return &Config{
		Google: GoogleConfig{
			RedirectURL: defaultRedirectURL,
		},
		Drive: DriveConfig{
			StoreDir:       filepath.Join(dataDir(), "files"),
			DefaultAccount: "default",
		},
		Server: ServerConfig{
			Transport: TransportStdio,
			HTTPAddr:  defaultHTTPAddr,
			ReadOnly:  true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Addr:    defaultMetricsAddr,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// DefaultPath returns the location of the configuration file
func DefaultPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, appName, "config.yaml")
	}
	return filepath.Join(".", "config.yaml")
}

// Load reads the YAML file at path over the defaults. A missing file yields
// the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Save writes cfg to path. The file carries the client secret, so it is
// only readable by the owner.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv overrides settings from environment variables
func (c *Config) ApplyEnv() {
	setString(&c.Google.ClientID, "GOOGLE_CLIENT_ID")
	setString(&c.Google.ClientSecret, "GOOGLE_CLIENT_SECRET")
	setString(&c.Google.RedirectURL, "GOOGLE_REDIRECT_URL")
	setString(&c.Google.TokenDir, "GDRIVE_TOKEN_DIR")
	setString(&c.Drive.BaseURL, "GDRIVE_BASE_URL")
	setString(&c.Drive.StoreDir, "GDRIVE_STORE_DIR")
	setString(&c.Drive.DefaultAccount, "GDRIVE_ACCOUNT")
	setString(&c.Server.Transport, "MCP_TRANSPORT")
	setString(&c.Server.HTTPAddr, "MCP_HTTP_ADDR")
	setString(&c.Server.BaseURL, "MCP_BASE_URL")
	setBool(&c.Server.ReadOnly, "MCP_READ_ONLY")
	setBool(&c.Metrics.Enabled, "METRICS_ENABLED")
	setString(&c.Metrics.Addr, "METRICS_ADDR")
	setString(&c.Logging.Level, "LOG_LEVEL")
	setString(&c.Logging.Format, "LOG_FORMAT")
}

// Validate checks the configuration and reports every invalid field
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var valErrs validator.ValidationErrors
	if !errors.As(err, &valErrs) {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	messages := make([]string, 0, len(valErrs))
	for _, ve := range valErrs {
		messages = append(messages, fieldPath(ve.Namespace())+": "+formatValidationError(ve))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(messages, "; "))
}

// fieldPath drops the root type from a validator namespace
func fieldPath(namespace string) string {
	_, rest, found := strings.Cut(namespace, ".")
	if !found {
		return namespace
	}
	return rest
}

func formatValidationError(ve validator.FieldError) string {
	switch ve.Tag() {
	case "required", "required_if":
		return "required"
	case "url":
		return "must be a valid URL"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(ve.Param(), " ", ", ")
	case "hostname_port":
		return "must be a host:port address"
	case "account":
		return "may only contain letters, digits, '-' and '_'"
	default:
		return fmt.Sprintf("failed %q validation", ve.Tag())
	}
}

func setString(dst *string, key string) {
	if value := os.Getenv(key); value != "" {
		*dst = value
	}
}

func setBool(dst *bool, key string) {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			*dst = parsed
		}
	}
}

func dataDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, appName)
	}
	return filepath.Join(os.TempDir(), appName)
}

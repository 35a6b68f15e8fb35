// Package config loads process configuration from an optional YAML file and
// the environment. Environment variables win over file values.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/leadrelay/backend/internal/telemetry"
	"github.com/leadrelay/backend/pkg/sms"
	"gopkg.in/yaml.v3"
)

// Store drivers.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type ServerConfig struct {
	Port        string `yaml:"port" validate:"required,numeric"`
	StaticDir   string `yaml:"static_dir" validate:"required"`
	FrontendURL string `yaml:"frontend_url"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver" validate:"oneof=postgres memory"`
	URL    string `yaml:"url" validate:"required_if=Driver postgres"`
}

type TwilioConfig struct {
	AccountSID  string `yaml:"account_sid"`
	AuthToken   string `yaml:"auth_token"`
	FromNumber  string `yaml:"from_number"` // a number or an alphanumeric sender ID
	AdminNumber string `yaml:"admin_number"`
}

type LogConfig struct {
	Level string `yaml:"level" validate:"omitempty,oneof=DEBUG INFO WARN WARNING ERROR"`
}

type TelemetryConfig struct {
	OTLPEndpoint string  `yaml:"otlp_endpoint"`
	ServiceName  string  `yaml:"service_name"`
	Environment  string  `yaml:"environment"`
	SampleRatio  float64 `yaml:"sample_ratio" validate:"gte=0,lte=1"`
}

// Config is the full process configuration, built once at startup.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Twilio    TwilioConfig    `yaml:"twilio"`
	Log       LogConfig       `yaml:"log"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        "5000",
			StaticDir:   "./client/dist",
			FrontendURL: "*",
		},
		Database: DatabaseConfig{Driver: DriverPostgres},
		Log:      LogConfig{Level: "INFO"},
		Telemetry: TelemetryConfig{
			ServiceName: "leadrelay",
			Environment: "local",
			SampleRatio: 1,
		},
	}
}

// LoadDotEnv reads .env files into the environment without overriding
// variables that are already set. Missing files are ignored.
func LoadDotEnv(files ...string) {
	for _, f := range files {
		_ = godotenv.Load(f)
	}
}

// Load builds the configuration from defaults, the YAML file at path (if
// non-empty) and the environment, then validates it.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.Log.Level = strings.ToUpper(cfg.Log.Level)
	cfg.Database.Driver = strings.ToLower(cfg.Database.Driver)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ResolvePath returns the config file path: the flag value when set,
// otherwise CONFIG_FILE.
func ResolvePath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv("CONFIG_FILE")
}

func (c *Config) applyEnv() error {
	setString(&c.Server.Port, "PORT")
	setString(&c.Server.StaticDir, "STATIC_DIR")
	setString(&c.Server.FrontendURL, "FRONTEND_URL")
	setString(&c.Database.Driver, "STORE_DRIVER")
	setString(&c.Database.URL, "DATABASE_URL")
	setString(&c.Twilio.AccountSID, "TWILIO_ACCOUNT_SID")
	setString(&c.Twilio.AuthToken, "TWILIO_AUTH_TOKEN")
	setString(&c.Twilio.FromNumber, "TWILIO_PHONE_NUMBER")
	setString(&c.Twilio.AdminNumber, "ADMIN_PHONE_NUMBER")
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Telemetry.OTLPEndpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
	setString(&c.Telemetry.ServiceName, "OTEL_SERVICE_NAME")
	setString(&c.Telemetry.Environment, "ENV")
	if v := os.Getenv("OTEL_TRACES_SAMPLER_ARG"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("OTEL_TRACES_SAMPLER_ARG: %w", err)
		}
		c.Telemetry.SampleRatio = f
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Server.Port
}

// SMS returns the Twilio settings in the form pkg/sms expects.
func (c *Config) SMS() sms.Config {
	return sms.Config{
		AccountSID:  c.Twilio.AccountSID,
		AuthToken:   c.Twilio.AuthToken,
		FromNumber:  c.Twilio.FromNumber,
		AdminNumber: c.Twilio.AdminNumber,
	}
}

// Tracing returns the OpenTelemetry settings.
func (c *Config) Tracing() telemetry.Config {
	return telemetry.Config{
		Endpoint:    c.Telemetry.OTLPEndpoint,
		ServiceName: c.Telemetry.ServiceName,
		Environment: c.Telemetry.Environment,
		SampleRatio: c.Telemetry.SampleRatio,
	}
}

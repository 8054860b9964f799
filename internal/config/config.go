package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"go.opentelemetry.io/otel/attribute"
)

// Config holds all configuration for the service.
type Config struct {
	// Server
	Port     int    `envconfig:"PORT" default:"8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Store
	DatabasePath string `envconfig:"DATABASE_PATH" default:"shipbridge.db"`

	// Foxpost
	FoxpostAPIKey   string `envconfig:"FOXPOST_API_KEY"`
	FoxpostUsername string `envconfig:"FOXPOST_USERNAME"`
	FoxpostPassword string `envconfig:"FOXPOST_PASSWORD"`
	FoxpostBaseURL  string `envconfig:"FOXPOST_BASE_URL"`
	FoxpostTestMode bool   `envconfig:"FOXPOST_TEST_MODE" default:"false"`
	FoxpostEnabled  bool   `envconfig:"FOXPOST_ENABLED" default:"true"`
	FoxpostUseMock  bool   `envconfig:"FOXPOST_USE_MOCK" default:"false"`

	// GLS
	GLSUsername string `envconfig:"GLS_USERNAME"`
	GLSPassword string `envconfig:"GLS_PASSWORD"`
	GLSBaseURL  string `envconfig:"GLS_BASE_URL"`
	GLSTestMode bool   `envconfig:"GLS_TEST_MODE" default:"false"`
	GLSEnabled  bool   `envconfig:"GLS_ENABLED" default:"true"`
	GLSUseMock  bool   `envconfig:"GLS_USE_MOCK" default:"false"`

	// MPL
	MPLClientID     string `envconfig:"MPL_CLIENT_ID"`
	MPLClientSecret string `envconfig:"MPL_CLIENT_SECRET"`
	MPLBaseURL      string `envconfig:"MPL_BASE_URL"`
	MPLTokenURL     string `envconfig:"MPL_TOKEN_URL"`
	MPLTestMode     bool   `envconfig:"MPL_TEST_MODE" default:"false"`
	MPLEnabled      bool   `envconfig:"MPL_ENABLED" default:"true"`
	MPLUseMock      bool   `envconfig:"MPL_USE_MOCK" default:"false"`

	// Telemetry
	OTELEnabled  bool   `envconfig:"OTEL_ENABLED" default:"true"`
	OTELEndpoint string `envconfig:"OTEL_ENDPOINT" default:"http://localhost:4318"`
	ServiceName  string `envconfig:"SERVICE_NAME" default:"parcelmesh-shipbridge"`
	Version      string `envconfig:"SERVICE_VERSION" default:"0.0.1"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return &cfg, nil
}

// Attributes returns OpenTelemetry attributes for this configuration.
func (c *Config) Attributes() []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("service.name", c.ServiceName),
		attribute.String("service.version", c.Version),
		attribute.Bool("foxpost.enabled", c.FoxpostEnabled),
		attribute.Bool("gls.enabled", c.GLSEnabled),
		attribute.Bool("mpl.enabled", c.MPLEnabled),
	}
}

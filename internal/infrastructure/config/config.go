package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/emiliopalmerini/growthlab/internal/domain"
)

// Prefix is prepended to every environment variable read by Load.
const Prefix = "GROWTHLAB"

// Config holds the dashboard configuration.
type Config struct {
	DataLocation   string   `envconfig:"DATA_LOCATION" default:"data/Individual_wells_data/well_%s_absorbance.csv"`
	Wells          []string `envconfig:"WELLS"`
	ModelPath      string   `envconfig:"MODEL_PATH" default:"enhanced_learning_model.json"`
	ReferenceWell  string   `envconfig:"REFERENCE_WELL" default:"B2"`
	ParameterFiles []string `envconfig:"PARAMETER_FILES"`

	DatabaseURL string `envconfig:"DATABASE_URL" default:"file:growthlab.db"`
	AuthToken   string `envconfig:"AUTH_TOKEN"`

	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	Port            int           `envconfig:"PORT" default:"8080"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	OTelEnabled  bool   `envconfig:"OTEL_ENABLED"`
	OTelEndpoint string `envconfig:"OTEL_ENDPOINT" default:"localhost:4317"`
	OTelInsecure bool   `envconfig:"OTEL_INSECURE" default:"true"`
}

// Load reads the configuration from GROWTHLAB_* environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// WellIDs returns the configured wells, or the default plate layout.
func (c *Config) WellIDs() []string {
	if len(c.Wells) == 0 {
		return append([]string(nil), domain.DefaultWells...)
	}
	return c.Wells
}

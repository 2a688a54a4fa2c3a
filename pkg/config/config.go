package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

// Config holds application configuration from environment variables.
type Config struct {
	// Application
	AppPort  string `envconfig:"APP_PORT" default:"8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Database
	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     string `envconfig:"DB_PORT" default:"3306"`
	DBUser     string `envconfig:"DB_USER" default:"root"`
	DBPassword string `envconfig:"DB_PASSWORD" default:"password"`
	DBName     string `envconfig:"DB_NAME" default:"bookstore"`

	// Expiry sweeps. Production runs daily with 7-day thresholds; staging
	// environments shrink all three proportionally.
	SweepInterval time.Duration `envconfig:"SWEEP_INTERVAL" default:"24h"`
	CartTTL       time.Duration `envconfig:"CART_TTL" default:"168h"`
	PickupTTL     time.Duration `envconfig:"PICKUP_TTL" default:"168h"`

	// OpenTelemetry
	OTELExporterOTLPEndpoint  string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT" default:"localhost:4318"`
	OTELExporterOTLPHeaders   string `envconfig:"OTEL_EXPORTER_OTLP_HEADERS" default:""`
	OTELExporterOTLPInsecure  bool   `envconfig:"OTEL_EXPORTER_OTLP_INSECURE" default:"true"`
	OTELServiceName           string `envconfig:"OTEL_SERVICE_NAME" default:"bookstore-go-app"`
	OTELServiceVersion        string `envconfig:"OTEL_SERVICE_VERSION" default:"1.0.0"`
	OTELDeploymentEnvironment string `envconfig:"OTEL_DEPLOYMENT_ENVIRONMENT" default:"development"`
}

// Load reads .env if present, then populates Config from the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if _, ok := err.(*os.PathError); !ok {
			logrus.Warnf("Error loading .env file: %v", err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}
	return &cfg, nil
}

// GetDSN returns the MySQL DSN string.
func (c *Config) GetDSN() string {
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?parseTime=true&charset=utf8mb4"
}

// ParseLogLevel maps LogLevel onto a logrus level, defaulting to info.
func (c *Config) ParseLogLevel() logrus.Level {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

package config

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, "bookstore", cfg.DBName)
	assert.Equal(t, 24*time.Hour, cfg.SweepInterval)
	assert.Equal(t, 168*time.Hour, cfg.CartTTL)
	assert.Equal(t, 168*time.Hour, cfg.PickupTTL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("CART_TTL", "30s")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.AppPort)
	assert.Equal(t, 30*time.Second, cfg.CartTTL)
	assert.Equal(t, logrus.DebugLevel, cfg.ParseLogLevel())
}

func TestGetDSN(t *testing.T) {
	cfg := &Config{DBUser: "app", DBPassword: "secret", DBHost: "db", DBPort: "3306", DBName: "bookstore"}
	assert.Equal(t, "app:secret@tcp(db:3306)/bookstore?parseTime=true&charset=utf8mb4", cfg.GetDSN())
}

func TestParseLogLevelFallsBackToInfo(t *testing.T) {
	cfg := &Config{LogLevel: "nope"}
	assert.Equal(t, logrus.InfoLevel, cfg.ParseLogLevel())
}

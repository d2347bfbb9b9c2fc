package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.True(t, cfg.App.StrictInvariants)
	assert.Equal(t, "postgres", cfg.Catalog.Source)
	assert.Equal(t, 5*time.Minute, cfg.Catalog.RefreshInterval)
	assert.Equal(t, 10000, cfg.Compliance.MaxAuditEntries)
	assert.Equal(t, 10000, cfg.Compliance.MaxViolations)
	assert.Equal(t, 90*24*time.Hour, cfg.Compliance.ViolationRetention)
	assert.Equal(t, 24*time.Hour, cfg.Compliance.StatusWindow)
	assert.Equal(t, 5, cfg.Compliance.WarningThreshold)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.Equal(t, 25, cfg.DB.MaxConns)
	assert.False(t, cfg.DB.ForceIPv4)
	assert.Equal(t, "catalogo-api", cfg.DB.ApplicationName)
}

func TestFromViper_Overrides(t *testing.T) {
	v := viper.New()
	v.Set("APP_ENV", "production")
	v.Set("CATALOG_SOURCE", "FILE")
	v.Set("CATALOG_FILE", "/data/catalog.json")
	v.Set("COMPLIANCE_RETENTION_DAYS", "30")
	v.Set("KAFKA_BROKERS", "k1:9092, k2:9092,")
	v.Set("REDIS_ADDR", "redis:6379")
	v.Set("DB_FORCE_IPV4", "true")
	v.Set("DB_MAX_CONNS", "5")

	cfg, err := fromViper(v)
	require.NoError(t, err)

	assert.False(t, cfg.App.StrictInvariants, "production desactiva el panic por defecto")
	assert.Equal(t, "file", cfg.Catalog.Source)
	assert.Equal(t, "/data/catalog.json", cfg.Catalog.FilePath)
	assert.Equal(t, 30*24*time.Hour, cfg.Compliance.ViolationRetention)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "redis:6379", cfg.Inventory.RedisAddr)
	assert.True(t, cfg.DB.ForceIPv4)
	assert.Equal(t, 5, cfg.DB.MaxConns)
}

func TestFromViper_InvalidSource(t *testing.T) {
	v := viper.New()
	v.Set("CATALOG_SOURCE", "mongo")
	_, err := fromViper(v)
	assert.Error(t, err)
}

func TestDSN_EscapesPassword(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss/w", DBName: "catalogo", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%2Fw@db:5432/catalogo?sslmode=disable", c.DSN())
	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("POS_ORDER_NUMBER_PREFIX", "CAFE")
	t.Setenv("POS_REQUIRE_IDEMPOTENCY_KEY", "true")
	t.Setenv("HTTP_WRITE_TIMEOUT", "45")

	cfg := Load()

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "CAFE", cfg.POS.OrderNumberPrefix)
	assert.True(t, cfg.POS.RequireIdempotencyKey)
	assert.Equal(t, 45*time.Second, cfg.HTTP.WriteTimeout)
	assert.Equal(t, "database", cfg.POS.IdempotencyStore)
}

func TestPOSLocation(t *testing.T) {
	manila := POSConfig{Timezone: "Asia/Manila"}
	assert.Equal(t, "Asia/Manila", manila.Location().String())

	bad := POSConfig{Timezone: "Mars/Olympus"}
	assert.Equal(t, time.UTC, bad.Location())
}

func TestSQLiteDSN(t *testing.T) {
	c := DatabaseConfig{Path: "/tmp/pos.db"}
	assert.Equal(t, "/tmp/pos.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", c.SQLiteDSN())
}

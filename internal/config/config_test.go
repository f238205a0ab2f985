package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"HTTP_ADDR", "KAFKA_BROKERS", "ALERT_TTL", "USER_ALERT_TTL", "LOG_PRETTY", "NOTIFIER_WORKERS", "ORDER_STATUS_POLICY"} {
		t.Setenv(k, "")
	}

	cfg := Load()

	assert.Equal(t, ":8081", cfg.HTTPAddr)
	assert.Equal(t, []string{"kafka:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 5*time.Second, cfg.AlertTTL)
	assert.Equal(t, 24*time.Hour, cfg.UserAlertTTL)
	assert.False(t, cfg.LogPretty)
	assert.Equal(t, 4, cfg.NotifierWorkers)
	assert.Equal(t, "permissive", cfg.OrderStatusPolicy)
	assert.Equal(t, "seller_default", cfg.DefaultSellerID)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", " k1:9092, ,k2:9092")
	t.Setenv("ALERT_TTL", "0")
	t.Setenv("LOG_PRETTY", "true")
	t.Setenv("NOTIFIER_WORKERS", "-3")
	t.Setenv("STORAGE_BACKEND", "memory")

	cfg := Load()

	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, time.Duration(0), cfg.AlertTTL)
	assert.True(t, cfg.LogPretty)
	assert.Equal(t, 4, cfg.NotifierWorkers)
	assert.Equal(t, "memory", cfg.StorageBackend)
}

func TestGetduration_InvalidFallsBack(t *testing.T) {
	t.Setenv("ALERT_TTL", "soon")
	assert.Equal(t, 5*time.Second, getduration("ALERT_TTL", 5*time.Second))
}

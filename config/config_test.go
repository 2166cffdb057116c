package config

import (
	"testing"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseConfig(t *testing.T) *AppConfig {
	t.Helper()
	cfg := &AppConfig{}
	require.NoError(t, env.Parse(cfg))
	cfg.Sanitize()
	return cfg
}

func TestAppConfig_Defaults(t *testing.T) {
	cfg := parseConfig(t)

	assert.False(t, cfg.IsDev)
	assert.Equal(t, 30*time.Second, cfg.Alert.GracePeriod)
	assert.Equal(t, "campus", cfg.Alert.BroadcastScope)
	assert.Equal(t, 5*time.Second, cfg.Dispatch.SinkTimeout)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 72*time.Hour, cfg.Redis.AlertTTL)
	assert.Equal(t, "localhost", cfg.Postgres.Host)
	assert.True(t, cfg.Postgres.RunMigrationsOnStart)
	assert.False(t, cfg.Observability.MetricsActive())
}

func TestAppConfig_EnvOverrides(t *testing.T) {
	t.Setenv("ALERT_GRACE_PERIOD", "45s")
	t.Setenv("ALERT_BROADCAST_SCOPE", "dorm-7")
	t.Setenv("DISPATCH_SINK_TIMEOUT", "2s")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("REDIS_ADDR", "redis.internal:6380")
	t.Setenv("DB_HOST", "db.internal")

	cfg := parseConfig(t)

	assert.Equal(t, 45*time.Second, cfg.Alert.GracePeriod)
	assert.Equal(t, "dorm-7", cfg.Alert.BroadcastScope)
	assert.Equal(t, 2*time.Second, cfg.Dispatch.SinkTimeout)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, "redis.internal:6380", cfg.Redis.Addr)
	assert.Equal(t, "db.internal", cfg.Postgres.Host)
}

func TestAppConfig_SanitizeGuardrails(t *testing.T) {
	cfg := &AppConfig{}
	cfg.Alert.GracePeriod = -1 * time.Second
	cfg.Dispatch.SinkTimeout = 0
	cfg.Sanitize()

	assert.Equal(t, 30*time.Second, cfg.Alert.GracePeriod)
	assert.Equal(t, "campus", cfg.Alert.BroadcastScope)
	assert.Equal(t, 5*time.Second, cfg.Dispatch.SinkTimeout)
}

func TestAppConfig_DevModeFromNodeEnv(t *testing.T) {
	t.Setenv("NODE_ENV", "development")

	cfg := parseConfig(t)
	assert.True(t, cfg.IsDev)
}

func TestDispatchConfig_SinkGating(t *testing.T) {
	d := DispatchConfig{PushEnabled: true, SMSEnabled: true}
	assert.False(t, d.PushConfigured())
	assert.False(t, d.SMSConfigured())

	d.PushEndpoint = "https://fcm.googleapis.com/fcm/send"
	assert.True(t, d.PushConfigured())

	d.SMSEndpoint = "https://api.twilio.com/2010-04-01/Accounts/AC/Messages.json"
	assert.False(t, d.SMSConfigured(), "sender number still missing")
	d.SMSFrom = "+15550000"
	assert.True(t, d.SMSConfigured())

	d.PushEnabled = false
	assert.False(t, d.PushConfigured())
}

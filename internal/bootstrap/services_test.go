package bootstrap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitwithsonu015/campus-sos/config"
	"github.com/gitwithsonu015/campus-sos/internal/data"
	"github.com/gitwithsonu015/campus-sos/internal/notify/broadcast"
)

func devConfig() *config.AppConfig {
	cfg := &config.AppConfig{IsDev: true}
	cfg.Sanitize()
	return cfg
}

func TestNewServices_DevFallbacks(t *testing.T) {
	services := NewServices(&ServiceDeps{Config: devConfig(), Logger: testLogger()})

	require.NotNil(t, services.Alerts)
	require.NotNil(t, services.Dispatcher)
	require.NotNil(t, services.Hub)
	assert.IsType(t, &data.MemoryAlertStore{}, services.Store)
	assert.Nil(t, services.Directory)
	assert.False(t, services.Metrics.Enabled())
}

func TestBuildSinks_HubOnlyWithoutDirectory(t *testing.T) {
	cfg := devConfig()
	cfg.Dispatch.PushEndpoint = "https://fcm.googleapis.com/fcm/send"
	cfg.Dispatch.SMSEndpoint = "https://api.twilio.com/2010-04-01/Accounts/AC/Messages.json"
	cfg.Dispatch.SMSFrom = "+15550000"
	cfg.Dispatch.PushEnabled = true
	cfg.Dispatch.SMSEnabled = true

	hub := broadcast.NewHub(1)
	t.Cleanup(func() { _ = hub.Close() })

	sinks := buildSinks(sinkDeps{Config: cfg, Hub: hub, Logger: testLogger()})

	require.Len(t, sinks, 1)
	assert.Equal(t, "broadcast", sinks[0].Name())
}

func TestBuildSinks_AllConfigured(t *testing.T) {
	cfg := devConfig()
	cfg.Dispatch.PushEnabled = true
	cfg.Dispatch.PushEndpoint = "https://fcm.googleapis.com/fcm/send"
	cfg.Dispatch.SMSEnabled = true
	cfg.Dispatch.SMSEndpoint = "https://api.twilio.com/2010-04-01/Accounts/AC/Messages.json"
	cfg.Dispatch.SMSFrom = "+15550000"

	hub := broadcast.NewHub(1)
	t.Cleanup(func() { _ = hub.Close() })

	sinks := buildSinks(sinkDeps{
		Config:    cfg,
		Hub:       hub,
		Directory: stubDirectory{},
		Logger:    testLogger(),
	})

	require.Len(t, sinks, 3)
	names := []string{sinks[0].Name(), sinks[1].Name(), sinks[2].Name()}
	assert.Equal(t, []string{"broadcast", "push", "sms"}, names)
}

package config

import "time"

// AlertConfig contains alert lifecycle configuration.
type AlertConfig struct {
	// GracePeriod is the advisory cancellation window stamped onto new alerts.
	// Clients use it to drive the cancel countdown; the server does not defer
	// notification delivery on it.
	GracePeriod time.Duration `env:"ALERT_GRACE_PERIOD" envDefault:"30s"`

	// BroadcastScope selects which device subscriptions receive push
	// notifications for new alerts.
	BroadcastScope string `env:"ALERT_BROADCAST_SCOPE" envDefault:"campus"`
}

// Sanitize applies guardrails to alert configuration values.
func (a *AlertConfig) Sanitize() {
	if a.GracePeriod <= 0 {
		a.GracePeriod = 30 * time.Second
	}
	if a.BroadcastScope == "" {
		a.BroadcastScope = "campus"
	}
}

// DispatchConfig contains notification dispatch configuration.
type DispatchConfig struct {
	// SinkTimeout bounds a single sink invocation during fan-out.
	SinkTimeout time.Duration `env:"DISPATCH_SINK_TIMEOUT" envDefault:"5s"`

	// Push sink (FCM-compatible multicast endpoint). Disabled unless an
	// endpoint is configured.
	PushEnabled   bool   `env:"PUSH_ENABLED"    envDefault:"true"`
	PushEndpoint  string `env:"PUSH_ENDPOINT"   envDefault:""`
	PushServerKey string `env:"PUSH_SERVER_KEY" envDefault:""`

	// SMS sink (Twilio-compatible REST endpoint). Disabled unless an endpoint
	// and sender number are configured.
	SMSEnabled    bool   `env:"SMS_ENABLED"  envDefault:"true"`
	SMSEndpoint   string `env:"SMS_ENDPOINT" envDefault:""`
	SMSAccountSID string `env:"SMS_SID"      envDefault:""`
	SMSAuthToken  string `env:"SMS_TOKEN"    envDefault:""`
	SMSFrom       string `env:"SMS_FROM"     envDefault:""`
}

// Sanitize applies guardrails to dispatch configuration values.
func (d *DispatchConfig) Sanitize() {
	if d.SinkTimeout <= 0 {
		d.SinkTimeout = 5 * time.Second
	}
}

// PushConfigured reports whether the push sink has enough configuration to run.
func (d *DispatchConfig) PushConfigured() bool {
	return d.PushEnabled && d.PushEndpoint != ""
}

// SMSConfigured reports whether the SMS sink has enough configuration to run.
func (d *DispatchConfig) SMSConfigured() bool {
	return d.SMSEnabled && d.SMSEndpoint != "" && d.SMSFrom != ""
}

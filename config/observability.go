package config

// ObservabilityConfig contains metrics configuration.
type ObservabilityConfig struct {
	// MetricsEnabled turns on StatsD metric emission.
	MetricsEnabled bool `env:"METRICS_ENABLED" envDefault:"false"`

	// StatsdAddress is the UDP host:port of the StatsD sink.
	StatsdAddress string `env:"METRICS_STATSD_ADDR" envDefault:""`
}

// MetricsActive reports whether metrics are enabled and routable.
func (o *ObservabilityConfig) MetricsActive() bool {
	return o.MetricsEnabled && o.StatsdAddress != ""
}

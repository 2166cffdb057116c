package bootstrap

import (
	"database/sql"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/gitwithsonu015/campus-sos/config"
	"github.com/gitwithsonu015/campus-sos/internal/core"
	"github.com/gitwithsonu015/campus-sos/internal/data"
	"github.com/gitwithsonu015/campus-sos/internal/notify/broadcast"
	"github.com/gitwithsonu015/campus-sos/internal/notify/push"
	"github.com/gitwithsonu015/campus-sos/internal/notify/sms"
	"github.com/gitwithsonu015/campus-sos/internal/observability/metrics"
	"github.com/gitwithsonu015/campus-sos/internal/observability/statsd"
	"github.com/gitwithsonu015/campus-sos/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Alerts     *service.AlertService
	Dispatcher *service.DispatchService
	Hub        *broadcast.Hub
	Store      core.AlertStore
	Directory  core.ContactDirectory
	Metrics    *statsd.Client
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient *redis.Client
	Logger      *slog.Logger
}

// NewServices wires the alert store, notification sinks, dispatcher, and
// lifecycle service together. A nil RedisClient selects the in-memory store
// (dev mode); a nil DB drops the directory-backed push and SMS sinks.
func NewServices(deps *ServiceDeps) *ServiceContainer {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := deps.Config

	store := buildStore(deps, logger)
	hub := broadcast.NewHub(broadcast.DefaultBufferSize)

	var directory core.ContactDirectory
	if deps.DB != nil {
		directory = &data.ContactDirectoryRepo{DB: deps.DB}
	}

	sinks := buildSinks(sinkDeps{
		Config:    cfg,
		Hub:       hub,
		Directory: directory,
		Logger:    logger,
	})

	metricsClient := buildMetrics(cfg, logger)

	var observer service.OutcomeObserver
	if metricsClient.Enabled() {
		dispatchMetrics := &metrics.DispatchMetrics{Sink: metricsClient}
		observer = dispatchMetrics.Observe
	}

	dispatcher := service.NewDispatchService(service.DispatchServiceOptions{
		Sinks:       sinks,
		SinkTimeout: cfg.Dispatch.SinkTimeout,
		Observer:    observer,
		Logger:      logger,
	})

	alerts := service.MustNewAlertService(service.AlertServiceOptions{
		Store:       store,
		Dispatcher:  dispatcher,
		Events:      hub,
		GracePeriod: cfg.Alert.GracePeriod,
		Logger:      logger,
	})

	return &ServiceContainer{
		Alerts:     alerts,
		Dispatcher: dispatcher,
		Hub:        hub,
		Store:      store,
		Directory:  directory,
		Metrics:    metricsClient,
	}
}

func buildMetrics(cfg *config.AppConfig, logger *slog.Logger) *statsd.Client {
	client, err := statsd.NewClient(statsd.Config{
		Enabled: cfg.Observability.MetricsActive(),
		Address: cfg.Observability.StatsdAddress,
		Prefix:  "sos",
		Logger:  logger,
	})
	if err != nil {
		logger.Error("metrics disabled", "error", err)
		client, _ = statsd.NewClient(statsd.Config{})
	}
	return client
}

func buildStore(deps *ServiceDeps, logger *slog.Logger) core.AlertStore {
	if deps.RedisClient == nil {
		logger.Warn("no redis client configured, using in-memory alert store")
		return data.NewMemoryAlertStore()
	}

	return data.NewRedisAlertStore(deps.RedisClient, data.RedisAlertStoreOptions{
		TTL: deps.Config.Redis.AlertTTL,
	})
}

// sinkDeps groups dependencies for sink construction.
type sinkDeps struct {
	Config    *config.AppConfig
	Hub       *broadcast.Hub
	Directory core.ContactDirectory
	Logger    *slog.Logger
}

func buildSinks(deps sinkDeps) []core.NotificationSink {
	sinks := []core.NotificationSink{deps.Hub}
	dispatch := deps.Config.Dispatch

	if deps.Directory == nil {
		if dispatch.PushConfigured() || dispatch.SMSConfigured() {
			deps.Logger.Warn("no contact directory available, push and sms sinks disabled")
		}
		return sinks
	}

	if dispatch.PushConfigured() {
		client, err := push.NewClient(push.Config{
			Endpoint:  dispatch.PushEndpoint,
			ServerKey: dispatch.PushServerKey,
			Scope:     deps.Config.Alert.BroadcastScope,
			Timeout:   dispatch.SinkTimeout,
			Directory: deps.Directory,
		})
		if err != nil {
			deps.Logger.Error("push sink disabled", "error", err)
		} else {
			sinks = append(sinks, client)
		}
	}

	if dispatch.SMSConfigured() {
		client, err := sms.NewClient(sms.Config{
			Endpoint:   dispatch.SMSEndpoint,
			AccountSID: dispatch.SMSAccountSID,
			AuthToken:  dispatch.SMSAuthToken,
			From:       dispatch.SMSFrom,
			Timeout:    dispatch.SinkTimeout,
			Directory:  deps.Directory,
		})
		if err != nil {
			deps.Logger.Error("sms sink disabled", "error", err)
		} else {
			sinks = append(sinks, client)
		}
	}

	return sinks
}

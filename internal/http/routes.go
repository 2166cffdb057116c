package httpx

import (
	"log/slog"
	"net/http"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Alerts AlertLifecycle
	Events EventSource // Optional: live event stream; omitted when nil
	Logger *slog.Logger
}

// NewRouter creates and configures the HTTP router.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	alertHandlers := &AlertHandlers{Svc: services.Alerts}
	identity := RequireIdentity()

	mux.Handle("POST /api/sos", identity(http.HandlerFunc(alertHandlers.CreateAlert)))
	mux.Handle("POST /api/sos/cancel", identity(http.HandlerFunc(alertHandlers.CancelAlert)))
	mux.Handle(
		"POST /api/alerts/{id}/acknowledge",
		identity(http.HandlerFunc(alertHandlers.AcknowledgeAlert)),
	)
	mux.Handle("GET /api/alerts/{id}", http.HandlerFunc(alertHandlers.GetAlert))

	if services.Events != nil {
		eventHandlers := &EventHandlers{Source: services.Events, Logger: services.Logger}
		mux.Handle("GET /api/events", http.HandlerFunc(eventHandlers.StreamEvents))
	}

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var handler http.Handler = mux
	handler = Logging(logger)(handler)
	handler = Recover(logger)(handler)
	return handler
}

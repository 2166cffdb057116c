package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gitwithsonu015/campus-sos/internal/domain/model"
)

// heartbeatInterval keeps idle SSE connections alive through proxies that
// close quiet streams.
const heartbeatInterval = 25 * time.Second

// EventSource is the subscription side of the broadcast hub.
type EventSource interface {
	Subscribe(ctx context.Context) <-chan model.AlertEvent
}

// EventHandlers streams alert lifecycle events to subscribed clients over
// Server-Sent Events.
type EventHandlers struct {
	Source EventSource
	Logger *slog.Logger
}

// StreamEvents handles GET /api/events. Each alert.created and alert.updated
// event is written as one SSE message whose event field is the event type and
// whose data field is the full alert record.
func (h *EventHandlers) StreamEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: "streaming_unsupported",
			Err:     errors.New("response writer does not support streaming"),
		})
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	if h.Logger != nil {
		h.Logger.DebugContext(r.Context(), "event stream opened", "remote", r.RemoteAddr)
		defer h.Logger.Debug("event stream closed", "remote", r.RemoteAddr)
	}

	events := h.Source.Subscribe(r.Context())
	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, open := <-events:
			if !open {
				return
			}
			if err := writeSSEEvent(w, event); err != nil {
				return
			}
			flusher.Flush()
		case <-heartbeat.C:
			if _, err := w.Write([]byte(": keep-alive\n\n")); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeSSEEvent(w http.ResponseWriter, event model.AlertEvent) error {
	data, err := json.Marshal(event.Alert)
	if err != nil {
		return err
	}

	if _, err := w.Write([]byte("event: " + string(event.Type) + "\n")); err != nil {
		return err
	}
	if _, err := w.Write([]byte("data: ")); err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	_, err = w.Write([]byte("\n\n"))
	return err
}

// Package metrics translates dispatch outcomes into StatsD metrics.
package metrics

import (
	"strconv"

	"github.com/gitwithsonu015/campus-sos/internal/domain/model"
	"github.com/gitwithsonu015/campus-sos/internal/observability/statsd"
)

// DispatchMetrics emits per-sink delivery metrics for every alert fan-out.
// Wire its Observe method as the dispatcher's outcome observer.
type DispatchMetrics struct {
	Sink statsd.Sink
}

// Observe records one dispatch outcome: a counter per sink result and the
// per-sink delivery duration.
func (m *DispatchMetrics) Observe(outcome *model.DispatchOutcome) {
	if m == nil || m.Sink == nil || outcome == nil {
		return
	}

	for name, result := range outcome.Results {
		tags := map[string]string{
			"sink":   name,
			"status": string(result.Status),
		}
		if result.Status == model.SinkStatusFailed {
			tags["kind"] = string(result.Kind)
		}

		m.Sink.Count("dispatch.sink", 1, tags)
		m.Sink.Timing("dispatch.sink.duration", result.Duration, map[string]string{"sink": name})
	}

	m.Sink.Count("dispatch.fanout", 1, map[string]string{
		"delivered": strconv.Itoa(outcome.DeliveredCount()),
		"failed":    strconv.Itoa(outcome.FailedCount()),
	})
}

package model

import "time"

// SinkStatus describes the outcome of delivering one alert to one sink.
type SinkStatus string

const (
	SinkStatusDelivered SinkStatus = "delivered"
	SinkStatusSkipped   SinkStatus = "skipped"
	SinkStatusFailed    SinkStatus = "failed"
)

// FailureKind classifies a failed sink delivery.
type FailureKind string

const (
	FailureKindTimeout          FailureKind = "timeout"
	FailureKindTransportError   FailureKind = "transport_error"
	FailureKindInvalidRecipient FailureKind = "invalid_recipient"
)

// SinkResult records the outcome of one sink invocation during fan-out.
type SinkResult struct {
	Sink     string        `json:"sink"`
	Status   SinkStatus    `json:"status"`
	Kind     FailureKind   `json:"kind,omitempty"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Delivered reports whether the sink accepted the alert.
func (r SinkResult) Delivered() bool {
	return r.Status == SinkStatusDelivered
}

// DispatchOutcome is the per-alert record of fan-out results, one entry per
// registered sink. It is not persisted; it exists for logging and observers.
type DispatchOutcome struct {
	AlertID   string                `json:"alert_id"`
	StartedAt time.Time             `json:"started_at"`
	Results   map[string]SinkResult `json:"results"`
}

// DeliveredCount returns the number of sinks that accepted the alert.
func (o *DispatchOutcome) DeliveredCount() int {
	n := 0
	for _, r := range o.Results {
		if r.Delivered() {
			n++
		}
	}
	return n
}

// FailedCount returns the number of sinks that failed or timed out.
func (o *DispatchOutcome) FailedCount() int {
	n := 0
	for _, r := range o.Results {
		if r.Status == SinkStatusFailed {
			n++
		}
	}
	return n
}

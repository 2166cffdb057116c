package model

// AlertEventType identifies a lifecycle event pushed to live subscribers.
type AlertEventType string

const (
	// AlertEventCreated is emitted once when an alert is raised.
	AlertEventCreated AlertEventType = "alert.created"
	// AlertEventUpdated is emitted when an alert transitions to a terminal status.
	AlertEventUpdated AlertEventType = "alert.updated"
)

// AlertEvent carries the full current alert record to subscribed observers.
type AlertEvent struct {
	Type  AlertEventType `json:"type"`
	Alert Alert          `json:"alert"`
}

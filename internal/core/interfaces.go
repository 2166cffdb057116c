package core

import (
	"context"

	"github.com/gitwithsonu015/campus-sos/internal/domain/model"
)

// This file contains the port definitions between the service layer and its
// collaborators (stores, directories, notification channels). Service
// implementations depend on these interfaces, not concrete implementations.

// CompareAndUpdateParams groups parameters for AlertStore.CompareAndUpdate to keep param count ≤3.
type CompareAndUpdateParams struct {
	// ID is the alert to update.
	ID string
	// Expected is the status the stored alert must still have for the update to apply.
	Expected model.AlertStatus
	// Mutate applies the transition to the loaded alert before it is written back.
	Mutate func(*model.Alert)
}

// AlertStore defines durable keyed storage for alert records.
type AlertStore interface {
	// Create persists a new alert. The write is atomic: on error no partial
	// record is visible. Creating an ID that already exists is a conflict.
	Create(ctx context.Context, alert *model.Alert) error

	// Get loads an alert by ID. A missing alert returns (nil, nil).
	Get(ctx context.Context, id string) (*model.Alert, error)

	// CompareAndUpdate applies Mutate to the stored alert only if its status
	// still equals Expected. It returns the updated alert and true on success,
	// or the current stored alert and false when the compare failed because a
	// concurrent writer already transitioned it. A missing alert returns
	// (nil, false, nil).
	CompareAndUpdate(ctx context.Context, params CompareAndUpdateParams) (*model.Alert, bool, error)
}

// ContactDirectory resolves notification recipients for an alert.
type ContactDirectory interface {
	// ContactsFor returns the emergency-contact phone numbers registered for a
	// user. An empty result is not an error.
	ContactsFor(ctx context.Context, ownerID string) ([]string, error)

	// TokensFor returns the device push tokens subscribed to a broadcast scope
	// (e.g. "campus"). Callers must treat the result as unordered and may see
	// duplicates when a user registered the same device twice.
	TokensFor(ctx context.Context, scope string) ([]string, error)
}

// NotificationSink is one delivery channel for alert fan-out.
//
// Notify must honor ctx cancellation; the dispatcher enforces a per-sink
// timeout through it. Sinks are expected to treat delivery by alert ID as
// safe to repeat (at-least-once semantics).
type NotificationSink interface {
	Name() string
	Notify(ctx context.Context, alert *model.Alert) error
}

// AlertDispatcher fans one alert out to all registered notification sinks.
type AlertDispatcher interface {
	// Fanout delivers the alert to every sink concurrently and returns one
	// result per sink. Sink failures are recorded in the outcome, never
	// returned as an error.
	Fanout(ctx context.Context, alert *model.Alert) *model.DispatchOutcome
}

// EventPublisher pushes lifecycle events to live subscribers.
type EventPublisher interface {
	Publish(ctx context.Context, event model.AlertEvent) error
}

package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/gitwithsonu015/campus-sos/internal/core"
	"github.com/gitwithsonu015/campus-sos/internal/domain/model"
	apperrors "github.com/gitwithsonu015/campus-sos/internal/errors"
)

// DefaultGracePeriod is the advisory cancellation window stamped onto new alerts.
const DefaultGracePeriod = 30 * time.Second

// AlertServiceOptions groups dependencies for AlertService.
//
// Store is required. Dispatcher and Events are optional but expected in
// production; without them alerts are recorded but nobody is notified.
type AlertServiceOptions struct {
	Store       core.AlertStore       // Required: durable alert storage
	Dispatcher  core.AlertDispatcher  // Optional: fan-out to notification sinks
	Events      core.EventPublisher   // Optional: alert.updated push to live subscribers
	GracePeriod time.Duration         // Optional: defaults to DefaultGracePeriod
	Now         func() time.Time      // Optional: clock override for tests
	Logger      *slog.Logger          // Optional: structured logger
}

// AlertService owns the alert lifecycle: it creates alerts, applies the
// cancel/acknowledge transitions, and triggers notification fan-out.
//
// All mutation goes through the store's compare-and-set; the service holds no
// locks and every lifecycle call may run concurrently with any other,
// including calls touching the same alert. Whichever transition the store
// applies first wins; the loser surfaces as a conflict.
type AlertService struct {
	store      core.AlertStore
	dispatcher core.AlertDispatcher
	events     core.EventPublisher
	grace      time.Duration
	now        func() time.Time
	logger     *slog.Logger
}

// NewAlertService constructs a new AlertService.
//
// Returns an error if Store is nil. All other dependencies are optional.
func NewAlertService(opts AlertServiceOptions) (*AlertService, error) {
	if opts.Store == nil {
		return nil, errors.New("AlertStore is required")
	}

	grace := opts.GracePeriod
	if grace <= 0 {
		grace = DefaultGracePeriod
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &AlertService{
		store:      opts.Store,
		dispatcher: opts.Dispatcher,
		events:     opts.Events,
		grace:      grace,
		now:        now,
		logger:     logger,
	}, nil
}

// MustNewAlertService constructs a new AlertService and panics on error.
func MustNewAlertService(opts AlertServiceOptions) *AlertService {
	svc, err := NewAlertService(opts)
	if err != nil {
		panic(err)
	}
	return svc
}

// Create validates and persists a new SOS alert, then triggers notification
// fan-out asynchronously.
//
// Create returns as soon as the alert is durably stored; it never waits for
// fan-out, and sink failures never fail the call. A store failure is the only
// fatal path: no alert is created and no fan-out is attempted.
func (s *AlertService) Create(
	ctx context.Context,
	req *model.CreateAlertRequest,
) (*model.Alert, error) {
	if req == nil {
		return nil, apperrors.Validation("create alert request is required")
	}

	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	alert := &model.Alert{
		ID:             uuid.NewString(),
		OwnerID:        req.OwnerID,
		OwnerName:      req.OwnerName,
		Location:       req.Location(),
		Message:        req.Message,
		Status:         model.AlertStatusActive,
		CreatedAt:      now,
		GraceExpiresAt: now.Add(s.grace),
	}

	if err := s.store.Create(ctx, alert); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "persist alert")
	}

	s.logger.InfoContext(ctx, "alert created",
		"alert_id", alert.ID,
		"owner_id", alert.OwnerID,
		"grace_expires_at", alert.GraceExpiresAt)

	if s.dispatcher != nil {
		// Copy alert value to avoid data races if the caller mutates the pointer.
		s.fanOutAsync(ctx, *alert)
	}

	return alert, nil
}

// Cancel transitions an active alert to cancelled. Only the alert's owner may
// cancel, and only while the alert is still active.
//
// The transition is applied with a compare-and-set conditioned on the stored
// status still being active; losing the race against a concurrent transition
// reports a conflict, not success.
func (s *AlertService) Cancel(ctx context.Context, alertID, requesterID string) (*model.Alert, error) {
	alert, err := s.loadAlert(ctx, alertID)
	if err != nil {
		return nil, err
	}

	if alert.OwnerID != requesterID {
		return nil, apperrors.Forbidden("only the reporting user can cancel this alert")
	}

	if alert.Status != model.AlertStatusActive {
		return nil, apperrors.InvalidStatef("alert is %s and can no longer be cancelled", alert.Status)
	}

	now := s.now().UTC()
	updated, err := s.transition(ctx, core.CompareAndUpdateParams{
		ID:       alertID,
		Expected: model.AlertStatusActive,
		Mutate: func(a *model.Alert) {
			a.Status = model.AlertStatusCancelled
			a.CancelledAt = &now
		},
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "alert cancelled",
		"alert_id", updated.ID,
		"owner_id", updated.OwnerID)

	s.publishUpdated(ctx, updated)

	return updated, nil
}

// Acknowledge transitions an active alert to acknowledged, recording who
// responded. Any authenticated caller may acknowledge; the same
// compare-and-set discipline as Cancel resolves races.
func (s *AlertService) Acknowledge(ctx context.Context, alertID, responderID string) (*model.Alert, error) {
	alert, err := s.loadAlert(ctx, alertID)
	if err != nil {
		return nil, err
	}

	if alert.Status != model.AlertStatusActive {
		return nil, apperrors.InvalidStatef("alert is %s and can no longer be acknowledged", alert.Status)
	}

	now := s.now().UTC()
	responder := responderID
	updated, err := s.transition(ctx, core.CompareAndUpdateParams{
		ID:       alertID,
		Expected: model.AlertStatusActive,
		Mutate: func(a *model.Alert) {
			a.Status = model.AlertStatusAcknowledged
			a.AcknowledgedBy = &responder
			a.AcknowledgedAt = &now
		},
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "alert acknowledged",
		"alert_id", updated.ID,
		"acknowledged_by", responderID)

	s.publishUpdated(ctx, updated)

	return updated, nil
}

// Get loads a single alert.
func (s *AlertService) Get(ctx context.Context, alertID string) (*model.Alert, error) {
	return s.loadAlert(ctx, alertID)
}

func (s *AlertService) loadAlert(ctx context.Context, alertID string) (*model.Alert, error) {
	alert, err := s.store.Get(ctx, alertID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "load alert")
	}
	if alert == nil {
		return nil, apperrors.NotFoundf("alert %s not found", alertID)
	}
	return alert, nil
}

// transition applies a compare-and-set status change and maps the failure modes.
func (s *AlertService) transition(
	ctx context.Context,
	params core.CompareAndUpdateParams,
) (*model.Alert, error) {
	updated, ok, err := s.store.CompareAndUpdate(ctx, params)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "update alert")
	}
	if ok {
		return updated, nil
	}
	if updated == nil {
		return nil, apperrors.NotFoundf("alert %s not found", params.ID)
	}
	return nil, apperrors.Conflictf("alert was concurrently transitioned to %s", updated.Status)
}

func (s *AlertService) fanOutAsync(ctx context.Context, alert model.Alert) {
	go func(a model.Alert) {
		defer s.recoverFanOutPanic(a)

		// Preserve request-scoped values (logging, tracing) while ignoring
		// cancellation, so fan-out completes even if the originating request
		// has already returned.
		fanoutCtx := context.WithoutCancel(ctx)
		outcome := s.dispatcher.Fanout(fanoutCtx, &a)

		s.logger.InfoContext(fanoutCtx, "alert fan-out finished",
			"alert_id", a.ID,
			"sinks_total", len(outcome.Results),
			"sinks_delivered", outcome.DeliveredCount(),
			"sinks_failed", outcome.FailedCount())
	}(alert)
}

func (s *AlertService) recoverFanOutPanic(alert model.Alert) {
	if r := recover(); r != nil {
		s.logger.Error("panic in alert fan-out",
			"alert_id", alert.ID,
			"panic", r)
	}
}

// publishUpdated pushes an alert.updated event to live subscribers. Event
// delivery is best-effort and never fails the lifecycle call.
func (s *AlertService) publishUpdated(ctx context.Context, alert *model.Alert) {
	if s.events == nil {
		return
	}

	event := model.AlertEvent{Type: model.AlertEventUpdated, Alert: *alert}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "publish alert.updated failed",
			"alert_id", alert.ID,
			"error", err)
	}
}

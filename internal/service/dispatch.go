package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gitwithsonu015/campus-sos/internal/core"
	"github.com/gitwithsonu015/campus-sos/internal/domain/model"
)

// DefaultSinkTimeout bounds a single sink invocation during fan-out.
const DefaultSinkTimeout = 5 * time.Second

// OutcomeObserver receives the outcome of each fan-out for logging or metrics.
type OutcomeObserver func(outcome *model.DispatchOutcome)

// DispatchServiceOptions configures the dispatch service.
type DispatchServiceOptions struct {
	Sinks       []core.NotificationSink
	SinkTimeout time.Duration   // Optional: defaults to DefaultSinkTimeout
	Observer    OutcomeObserver // Optional: invoked with every fan-out outcome
	Logger      *slog.Logger    // Optional: structured logger
}

// DispatchService delivers one alert to all registered notification sinks,
// isolating each sink's failure from the others and from the caller.
//
// Every sink is invoked concurrently with its own timeout; a panicking,
// hanging, or failing sink is recorded in the outcome and abandoned without
// affecting delivery to any other sink. Fanout never returns an error.
type DispatchService struct {
	sinks    []core.NotificationSink
	timeout  time.Duration
	observer OutcomeObserver
	logger   *slog.Logger
}

// NewDispatchService creates a new dispatch service.
func NewDispatchService(opts DispatchServiceOptions) *DispatchService {
	timeout := opts.SinkTimeout
	if timeout <= 0 {
		timeout = DefaultSinkTimeout
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &DispatchService{
		sinks:    opts.Sinks,
		timeout:  timeout,
		observer: opts.Observer,
		logger:   logger,
	}
}

// Fanout delivers the alert to every registered sink concurrently and waits
// for all of them to finish or time out. The returned outcome contains exactly
// one entry per sink.
//
// Fanout does not deduplicate across calls; sinks are expected to treat
// repeated delivery of the same alert ID as safe (at-least-once semantics).
func (s *DispatchService) Fanout(ctx context.Context, alert *model.Alert) *model.DispatchOutcome {
	outcome := &model.DispatchOutcome{
		AlertID:   alert.ID,
		StartedAt: time.Now().UTC(),
		Results:   make(map[string]model.SinkResult, len(s.sinks)),
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, sink := range s.sinks {
		wg.Add(1)
		go func(sink core.NotificationSink) {
			defer wg.Done()
			result := s.notifyOne(ctx, sink, alert)

			mu.Lock()
			outcome.Results[sink.Name()] = result
			mu.Unlock()
		}(sink)
	}
	wg.Wait()

	s.logOutcome(ctx, outcome)

	if s.observer != nil {
		s.observer(outcome)
	}

	return outcome
}

// notifyOne invokes a single sink with its own timeout. The sink call runs in
// a separate goroutine so that a sink ignoring context cancellation can still
// be abandoned once its deadline passes.
func (s *DispatchService) notifyOne(
	ctx context.Context,
	sink core.NotificationSink,
	alert *model.Alert,
) model.SinkResult {
	start := time.Now()

	sinkCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("sink panicked: %v", r)
			}
		}()
		done <- sink.Notify(sinkCtx, alert)
	}()

	var err error
	select {
	case err = <-done:
	case <-sinkCtx.Done():
		err = sinkCtx.Err()
	}

	result := classifyResult(sink.Name(), err)
	result.Duration = time.Since(start)
	return result
}

func classifyResult(sinkName string, err error) model.SinkResult {
	result := model.SinkResult{Sink: sinkName}

	switch {
	case err == nil:
		result.Status = model.SinkStatusDelivered
	case errors.Is(err, core.ErrNoRecipients):
		result.Status = model.SinkStatusSkipped
	case errors.Is(err, context.DeadlineExceeded):
		result.Status = model.SinkStatusFailed
		result.Kind = model.FailureKindTimeout
		result.Error = err.Error()
	default:
		result.Status = model.SinkStatusFailed
		result.Kind = core.ClassifySinkError(err)
		result.Error = err.Error()
	}

	return result
}

func (s *DispatchService) logOutcome(ctx context.Context, outcome *model.DispatchOutcome) {
	for name, result := range outcome.Results {
		if result.Status != model.SinkStatusFailed {
			continue
		}
		s.logger.WarnContext(ctx, "sink delivery failed",
			"alert_id", outcome.AlertID,
			"sink", name,
			"kind", result.Kind,
			"error", result.Error)
	}

	s.logger.InfoContext(ctx, "dispatched alert to notification sinks",
		"alert_id", outcome.AlertID,
		"sinks_total", len(outcome.Results),
		"sinks_delivered", outcome.DeliveredCount(),
		"sinks_failed", outcome.FailedCount())
}

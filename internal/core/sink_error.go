package core

import (
	"errors"

	"github.com/gitwithsonu015/campus-sos/internal/domain/model"
)

// ErrNoRecipients is returned by a sink when recipient resolution yields an
// empty set. The dispatcher records the sink as skipped rather than failed.
var ErrNoRecipients = errors.New("no recipients for alert")

// SinkError carries a failure classification from a sink back to the dispatcher.
type SinkError struct {
	Kind model.FailureKind
	Err  error
}

// Error implements the error interface.
func (e *SinkError) Error() string {
	if e.Err != nil {
		return string(e.Kind) + ": " + e.Err.Error()
	}
	return string(e.Kind)
}

// Unwrap returns the underlying cause.
func (e *SinkError) Unwrap() error {
	return e.Err
}

// NewSinkError wraps err with a failure classification.
func NewSinkError(kind model.FailureKind, err error) *SinkError {
	return &SinkError{Kind: kind, Err: err}
}

// ClassifySinkError extracts the failure kind from a sink error, defaulting to
// a transport error for unclassified failures.
func ClassifySinkError(err error) model.FailureKind {
	var sinkErr *SinkError
	if errors.As(err, &sinkErr) {
		return sinkErr.Kind
	}
	return model.FailureKindTransportError
}

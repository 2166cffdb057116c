package data

import (
	"context"
	"sync"

	"github.com/gitwithsonu015/campus-sos/internal/core"
	"github.com/gitwithsonu015/campus-sos/internal/domain/model"
	apperrors "github.com/gitwithsonu015/campus-sos/internal/errors"
)

// MemoryAlertStore is an in-process AlertStore for development and tests.
//
// The backing map lacks a native conditional update, so the store serializes
// all writes behind a mutex to provide the same compare-and-set semantics as
// the Redis store.
type MemoryAlertStore struct {
	mu     sync.Mutex
	alerts map[string]model.Alert
}

// NewMemoryAlertStore creates an empty in-memory alert store.
func NewMemoryAlertStore() *MemoryAlertStore {
	return &MemoryAlertStore{
		alerts: make(map[string]model.Alert),
	}
}

// Create persists a new alert. Re-creating an existing ID is a conflict.
func (s *MemoryAlertStore) Create(ctx context.Context, alert *model.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.alerts[alert.ID]; exists {
		return apperrors.Conflictf("alert %s already exists", alert.ID)
	}

	s.alerts[alert.ID] = *alert
	return nil
}

// Get loads an alert by ID. A missing alert returns (nil, nil).
func (s *MemoryAlertStore) Get(ctx context.Context, id string) (*model.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	alert, ok := s.alerts[id]
	if !ok {
		return nil, nil
	}
	return &alert, nil
}

// CompareAndUpdate applies the mutation only if the stored status still
// matches the expected one.
func (s *MemoryAlertStore) CompareAndUpdate(
	ctx context.Context,
	params core.CompareAndUpdateParams,
) (*model.Alert, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	alert, ok := s.alerts[params.ID]
	if !ok {
		return nil, false, nil
	}

	if alert.Status != params.Expected {
		current := alert
		return &current, false, nil
	}

	params.Mutate(&alert)
	s.alerts[params.ID] = alert

	updated := alert
	return &updated, true, nil
}

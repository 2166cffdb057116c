package data

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gitwithsonu015/campus-sos/internal/core"
	"github.com/gitwithsonu015/campus-sos/internal/domain/model"
	apperrors "github.com/gitwithsonu015/campus-sos/internal/errors"
)

// casRetryLimit bounds optimistic-transaction retries when the watched key is
// touched by another writer between WATCH and EXEC.
const casRetryLimit = 3

// RedisAlertStore is a Redis-backed AlertStore.
//
// Alerts are stored as JSON values under a key prefix. Conditional updates use
// WATCH-based optimistic transactions, which gives Cancel/Acknowledge the
// compare-and-set discipline the lifecycle depends on.
type RedisAlertStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// RedisAlertStoreOptions configures a RedisAlertStore.
type RedisAlertStoreOptions struct {
	// Prefix namespaces alert keys. Defaults to "alert:".
	Prefix string
	// TTL expires alert records after the given duration. Zero keeps them
	// forever; retention is a deployment policy, not a lifecycle concern.
	TTL time.Duration
}

// NewRedisAlertStore creates a Redis-backed alert store.
func NewRedisAlertStore(client redis.UniversalClient, opts RedisAlertStoreOptions) *RedisAlertStore {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = "alert:"
	}

	return &RedisAlertStore{
		client: client,
		prefix: prefix,
		ttl:    opts.TTL,
	}
}

func (s *RedisAlertStore) key(id string) string {
	return s.prefix + id
}

// Create persists a new alert. SETNX makes the write atomic: either the full
// record becomes visible or nothing does.
func (s *RedisAlertStore) Create(ctx context.Context, alert *model.Alert) error {
	data, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}

	ok, err := s.client.SetNX(ctx, s.key(alert.ID), data, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("redis setnx: %w", err)
	}
	if !ok {
		return apperrors.Conflictf("alert %s already exists", alert.ID)
	}

	return nil
}

// Get loads an alert by ID. A missing alert returns (nil, nil).
func (s *RedisAlertStore) Get(ctx context.Context, id string) (*model.Alert, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var alert model.Alert
	if err := json.Unmarshal(data, &alert); err != nil {
		return nil, fmt.Errorf("unmarshal alert: %w", err)
	}

	return &alert, nil
}

// CompareAndUpdate applies the mutation inside a WATCH transaction so the
// status check and the write are atomic with respect to concurrent writers.
func (s *RedisAlertStore) CompareAndUpdate(
	ctx context.Context,
	params core.CompareAndUpdateParams,
) (*model.Alert, bool, error) {
	key := s.key(params.ID)

	var (
		updated *model.Alert
		current *model.Alert
		applied bool
	)

	txn := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				// Missing alert: report (nil, false) without an error.
				return nil
			}
			return fmt.Errorf("redis get: %w", err)
		}

		var alert model.Alert
		if err := json.Unmarshal(data, &alert); err != nil {
			return fmt.Errorf("unmarshal alert: %w", err)
		}

		if alert.Status != params.Expected {
			snapshot := alert
			current = &snapshot
			return nil
		}

		params.Mutate(&alert)

		payload, err := json.Marshal(&alert)
		if err != nil {
			return fmt.Errorf("marshal alert: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, redis.KeepTTL)
			return nil
		})
		if err != nil {
			return err
		}

		snapshot := alert
		updated = &snapshot
		applied = true
		return nil
	}

	for range casRetryLimit {
		updated, current, applied = nil, nil, false

		err := s.client.Watch(ctx, txn, key)
		if errors.Is(err, redis.TxFailedErr) {
			// Another writer touched the key between WATCH and EXEC; re-check
			// the status on a fresh snapshot.
			continue
		}
		if err != nil {
			return nil, false, err
		}

		if applied {
			return updated, true, nil
		}
		return current, false, nil
	}

	return nil, false, fmt.Errorf("alert %s: optimistic update contention exceeded %d attempts", params.ID, casRetryLimit)
}

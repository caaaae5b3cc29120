// Package store persists scored applications. The primary sink is an Excel
// workbook (the spreadsheet-equivalent); appends that keep failing are parked
// in a durable overflow queue so a store outage never loses an application or
// halts the pipeline.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/shsnge/job-application-monitor/internal/models"
	"github.com/shsnge/job-application-monitor/internal/retry"
)

// StoreRef is the opaque success token returned for an appended record.
type StoreRef string

// Sink appends one application record to the underlying tabular store.
type Sink interface {
	Append(ctx context.Context, rec models.ApplicationRecord) (StoreRef, error)
}

// ErrStoreWriteFailed means the append retries were exhausted AND the record
// could not be parked in the overflow queue either. The caller must not mark
// the message processed in that case.
var ErrStoreWriteFailed = errors.New("record store write failed")

// Store wraps a sink with bounded retries and the overflow fallback.
type Store struct {
	sink        Sink
	overflow    *Overflow
	policy      retry.Policy
	callTimeout time.Duration
	logger      *zap.Logger
}

// New builds the retrying store.
func New(sink Sink, overflow *Overflow, policy retry.Policy, callTimeout time.Duration, logger *zap.Logger) *Store {
	if callTimeout <= 0 {
		callTimeout = 30 * time.Second
	}
	return &Store{
		sink:        sink,
		overflow:    overflow,
		policy:      policy,
		callTimeout: callTimeout,
		logger:      logger,
	}
}

// Append writes the record to the sink, retrying transient failures with
// exponential backoff. When retries are exhausted the record is queued
// locally and a queue reference is returned; only a queue failure on top of
// exhausted retries surfaces as ErrStoreWriteFailed.
func (s *Store) Append(ctx context.Context, rec models.ApplicationRecord) (StoreRef, error) {
	var ref StoreRef
	err := s.policy.Do(ctx, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
		defer cancel()

		r, err := s.sink.Append(callCtx, rec)
		if err != nil {
			return err
		}
		ref = r
		return nil
	})
	if err == nil {
		return ref, nil
	}

	s.logger.Warn("record append retries exhausted, queueing record",
		zap.String("message_id", rec.MessageID),
		zap.Error(err),
	)

	if qErr := s.overflow.Enqueue(ctx, rec); qErr != nil {
		return "", fmt.Errorf("%w: append: %v; overflow enqueue: %v", ErrStoreWriteFailed, err, qErr)
	}

	return StoreRef("overflow:" + rec.MessageID), nil
}

// QueuedRecords returns the overflow queue depth.
func (s *Store) QueuedRecords(ctx context.Context) (int, error) {
	return s.overflow.Len(ctx)
}

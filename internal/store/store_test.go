package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/shsnge/job-application-monitor/internal/models"
	"github.com/shsnge/job-application-monitor/internal/retry"
)

// fakeSink fails the first failures appends, then succeeds.
type fakeSink struct {
	failures int
	calls    int
	records  []models.ApplicationRecord
}

func (f *fakeSink) Append(ctx context.Context, rec models.ApplicationRecord) (StoreRef, error) {
	f.calls++
	if f.calls <= f.failures {
		return "", errors.New("sink unavailable")
	}
	f.records = append(f.records, rec)
	return StoreRef("fake!A1"), nil
}

func fastPolicy() retry.Policy {
	return retry.Policy{BaseDelay: time.Millisecond, Multiplier: 2, MaxAttempts: 3, MaxDelay: 10 * time.Millisecond}
}

func testRecord(id string) models.ApplicationRecord {
	return models.ApplicationRecord{
		Timestamp: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		Name:      "Jane Doe",
		Email:     "jane@example.com",
		Position:  "Backend Developer",
		Score:     models.ScoreResult{Total: 9, Passed: true, Breakdown: map[string]int{}, Feedback: []string{"ok"}},
		Status:    models.StatusPassed,
		MessageID: id,
	}
}

func openTestOverflow(t *testing.T) *Overflow {
	t.Helper()
	o, err := OpenOverflow(filepath.Join(t.TempDir(), "overflow.db"))
	if err != nil {
		t.Fatalf("OpenOverflow() failed: %v", err)
	}
	t.Cleanup(func() { o.Close() })
	return o
}

// TestStore_AppendRetriesTransientFailure tests that a flaky sink is retried
// until it succeeds, without touching the overflow queue.
func TestStore_AppendRetriesTransientFailure(t *testing.T) {
	sink := &fakeSink{failures: 2}
	overflow := openTestOverflow(t)
	s := New(sink, overflow, fastPolicy(), time.Second, zap.NewNop())

	ref, err := s.Append(context.Background(), testRecord("msg-1"))
	if err != nil {
		t.Fatalf("Append() failed: %v", err)
	}
	if ref != "fake!A1" {
		t.Errorf("Append() ref = %q, want sink ref", ref)
	}
	if sink.calls != 3 {
		t.Errorf("sink called %d times, want 3", sink.calls)
	}

	queued, err := overflow.Len(context.Background())
	if err != nil {
		t.Fatalf("Len() failed: %v", err)
	}
	if queued != 0 {
		t.Errorf("overflow has %d records, want 0", queued)
	}
}

// TestStore_ExhaustedRetriesQueueRecord tests the overflow fallback: a dead
// sink still yields a successful append with a queue reference.
func TestStore_ExhaustedRetriesQueueRecord(t *testing.T) {
	sink := &fakeSink{failures: 100}
	overflow := openTestOverflow(t)
	s := New(sink, overflow, fastPolicy(), time.Second, zap.NewNop())

	ref, err := s.Append(context.Background(), testRecord("msg-1"))
	if err != nil {
		t.Fatalf("Append() failed despite overflow fallback: %v", err)
	}
	if ref != StoreRef("overflow:msg-1") {
		t.Errorf("Append() ref = %q, want overflow reference", ref)
	}

	queued, err := s.QueuedRecords(context.Background())
	if err != nil {
		t.Fatalf("QueuedRecords() failed: %v", err)
	}
	if queued != 1 {
		t.Errorf("QueuedRecords() = %d, want 1", queued)
	}
}

// TestOverflow_DrainReplaysInOrder tests that drain replays queued records
// oldest first and dequeues each on success.
func TestOverflow_DrainReplaysInOrder(t *testing.T) {
	overflow := openTestOverflow(t)
	ctx := context.Background()

	for _, id := range []string{"msg-1", "msg-2", "msg-3"} {
		if err := overflow.Enqueue(ctx, testRecord(id)); err != nil {
			t.Fatalf("Enqueue(%s) failed: %v", id, err)
		}
	}

	sink := &fakeSink{}
	drained, err := overflow.Drain(ctx, sink)
	if err != nil {
		t.Fatalf("Drain() failed: %v", err)
	}
	if drained != 3 {
		t.Errorf("Drain() = %d, want 3", drained)
	}

	for i, want := range []string{"msg-1", "msg-2", "msg-3"} {
		if sink.records[i].MessageID != want {
			t.Errorf("replayed record %d = %s, want %s", i, sink.records[i].MessageID, want)
		}
	}

	queued, err := overflow.Len(ctx)
	if err != nil {
		t.Fatalf("Len() failed: %v", err)
	}
	if queued != 0 {
		t.Errorf("queue depth after drain = %d, want 0", queued)
	}
}

// TestOverflow_DrainStopsAtFirstFailure tests that a failing replay leaves
// the remainder queued.
func TestOverflow_DrainStopsAtFirstFailure(t *testing.T) {
	overflow := openTestOverflow(t)
	ctx := context.Background()

	for _, id := range []string{"msg-1", "msg-2", "msg-3"} {
		if err := overflow.Enqueue(ctx, testRecord(id)); err != nil {
			t.Fatalf("Enqueue(%s) failed: %v", id, err)
		}
	}

	// Succeeds once, then the sink dies again.
	sink := &failAfterSink{successes: 1}
	drained, err := overflow.Drain(ctx, sink)
	if err == nil {
		t.Fatal("Drain() succeeded, want error from dead sink")
	}
	if drained != 1 {
		t.Errorf("Drain() = %d, want 1", drained)
	}

	queued, _ := overflow.Len(ctx)
	if queued != 2 {
		t.Errorf("queue depth = %d, want 2 remaining", queued)
	}
}

// TestOverflow_SurvivesReopen tests that queued records persist across
// restarts.
func TestOverflow_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overflow.db")
	ctx := context.Background()

	o, err := OpenOverflow(path)
	if err != nil {
		t.Fatalf("OpenOverflow() failed: %v", err)
	}
	if err := o.Enqueue(ctx, testRecord("msg-1")); err != nil {
		t.Fatalf("Enqueue() failed: %v", err)
	}
	if err := o.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	reopened, err := OpenOverflow(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	sink := &fakeSink{}
	drained, err := reopened.Drain(ctx, sink)
	if err != nil {
		t.Fatalf("Drain() failed: %v", err)
	}
	if drained != 1 || sink.records[0].MessageID != "msg-1" {
		t.Errorf("Drain() after reopen = %d records, want the queued record back", drained)
	}
}

type failAfterSink struct {
	successes int
	calls     int
}

func (f *failAfterSink) Append(ctx context.Context, rec models.ApplicationRecord) (StoreRef, error) {
	f.calls++
	if f.calls > f.successes {
		return "", errors.New("sink unavailable")
	}
	return StoreRef("fake!A1"), nil
}

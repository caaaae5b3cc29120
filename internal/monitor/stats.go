package monitor

import (
	"sync"

	"github.com/shsnge/job-application-monitor/internal/models"
)

// Stats counts monitor outcomes for the status surface. Written by the
// polling loop, read by HTTP handlers.
type Stats struct {
	mu sync.RWMutex

	processed         int
	passed            int
	rejected          int
	pendingReview     int
	transientFailures int
	permanentFailures int
	notificationsSent int
	notifyFailures    int
	repliesSent       int
}

// StatsSnapshot is a point-in-time copy of the counters.
type StatsSnapshot struct {
	Processed         int `json:"processed"`
	Passed            int `json:"passed"`
	Rejected          int `json:"rejected"`
	PendingReview     int `json:"pending_review"`
	TransientFailures int `json:"transient_failures"`
	PermanentFailures int `json:"permanent_failures"`
	NotificationsSent int `json:"notifications_sent"`
	NotifyFailures    int `json:"notify_failures"`
	RepliesSent       int `json:"replies_sent"`
}

// NewStats returns zeroed counters.
func NewStats() *Stats {
	return &Stats{}
}

// Recorded counts one persisted-and-marked application by status.
func (s *Stats) Recorded(status models.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processed++
	switch status {
	case models.StatusPassed:
		s.passed++
	case models.StatusRejected:
		s.rejected++
	case models.StatusPendingReview:
		s.pendingReview++
	}
}

func (s *Stats) TransientFailure() {
	s.mu.Lock()
	s.transientFailures++
	s.mu.Unlock()
}

func (s *Stats) PermanentFailure() {
	s.mu.Lock()
	s.permanentFailures++
	s.mu.Unlock()
}

func (s *Stats) NotifySent() {
	s.mu.Lock()
	s.notificationsSent++
	s.mu.Unlock()
}

func (s *Stats) NotifyFailure() {
	s.mu.Lock()
	s.notifyFailures++
	s.mu.Unlock()
}

func (s *Stats) ReplySent() {
	s.mu.Lock()
	s.repliesSent++
	s.mu.Unlock()
}

// Snapshot copies the counters.
func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return StatsSnapshot{
		Processed:         s.processed,
		Passed:            s.passed,
		Rejected:          s.rejected,
		PendingReview:     s.pendingReview,
		TransientFailures: s.transientFailures,
		PermanentFailures: s.permanentFailures,
		NotificationsSent: s.notificationsSent,
		NotifyFailures:    s.notifyFailures,
		RepliesSent:       s.repliesSent,
	}
}

// Package monitor is the orchestrator: a cooperative polling loop that pulls
// candidate messages from the mailbox, runs extraction and scoring, records
// every application, and dispatches conditional notifications. Per-message
// failures are contained to that message; only startup failures abort the
// process.
package monitor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/shsnge/job-application-monitor/internal/extract"
	"github.com/shsnge/job-application-monitor/internal/mailbox"
	"github.com/shsnge/job-application-monitor/internal/models"
	"github.com/shsnge/job-application-monitor/internal/notify"
	"github.com/shsnge/job-application-monitor/internal/profile"
	"github.com/shsnge/job-application-monitor/internal/retry"
	"github.com/shsnge/job-application-monitor/internal/scoring"
	"github.com/shsnge/job-application-monitor/internal/store"
)

// Ledger is the dedup port the monitor depends on. Once an ID is marked the
// monitor never re-scores or re-notifies it, across restarts included.
type Ledger interface {
	Contains(id string) bool
	Mark(ctx context.Context, id, uid string) error
	HasReplied(identifier string) bool
	MarkReplied(ctx context.Context, identifier string) error
}

// RecordStore is the application store port. Implementations own their retry
// and overflow behavior; an error here means the record truly could not be
// persisted anywhere.
type RecordStore interface {
	Append(ctx context.Context, rec models.ApplicationRecord) (store.StoreRef, error)
}

// Config is the monitor's runtime knobs.
type Config struct {
	PollInterval time.Duration
	// CallTimeout bounds each external call: extraction, record append,
	// notification dispatch. The mailbox source bounds its own API calls.
	// A hung collaborator must not stall polling.
	CallTimeout    time.Duration
	Limits         scoring.Limits
	ResumeCacheDir string

	AutoReplyEnabled bool
	CompanyName      string
	InterviewDays    int
}

// Deps are the monitor's collaborators. Notifier and Replier may be nil when
// the corresponding channel is disabled.
type Deps struct {
	Profiles  *profile.Set
	Source    mailbox.Source
	Extractor *extract.Extractor
	Ledger    Ledger
	Store     RecordStore
	Notifier  notify.Notifier
	Replier   notify.Replier
	Logger    *zap.Logger
}

// Monitor runs the polling loop.
type Monitor struct {
	cfg   Config
	deps  Deps
	retry retry.Policy
	stats *Stats
	now   func() time.Time
}

// New creates a monitor. Defaults: 60s poll interval, 30s call timeout,
// standard retry policy.
func New(cfg Config, deps Deps) *Monitor {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 60 * time.Second
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 30 * time.Second
	}
	if cfg.InterviewDays <= 0 {
		cfg.InterviewDays = 3
	}
	return &Monitor{
		cfg:   cfg,
		deps:  deps,
		retry: retry.DefaultPolicy(),
		stats: NewStats(),
		now:   time.Now,
	}
}

// Stats exposes the monitor's counters for the status surface.
func (m *Monitor) Stats() *Stats {
	return m.stats
}

// Run polls immediately, then on every tick, until the context is cancelled.
// Shutdown is graceful between messages: the message in flight finishes its
// record write and ledger mark before the loop exits.
func (m *Monitor) Run(ctx context.Context) error {
	m.deps.Logger.Info("monitor starting",
		zap.Duration("poll_interval", m.cfg.PollInterval),
		zap.Strings("positions", m.deps.Profiles.Positions()),
	)

	m.PollOnce(ctx)

	ticker := time.NewTicker(m.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.deps.Logger.Info("monitor stopping")
			return nil
		case <-ticker.C:
			m.PollOnce(ctx)
		}
	}
}

// PollOnce runs a single fetch-and-process iteration. Exposed so operators
// and tests can drive one iteration without the loop.
func (m *Monitor) PollOnce(ctx context.Context) {
	// The source bounds its own API calls; a single timeout around the whole
	// batch would make a busy window fail every poll identically.
	messages, err := m.deps.Source.Poll(ctx)
	if err != nil {
		m.stats.TransientFailure()
		m.deps.Logger.Error("mailbox poll failed", zap.Error(err))
		return
	}

	m.deps.Logger.Debug("mailbox polled", zap.Int("messages", len(messages)))

	for _, msg := range messages {
		// Cancellation is honored between messages, never mid-subflow.
		if ctx.Err() != nil {
			return
		}

		if m.deps.Ledger.Contains(msg.ID) {
			continue
		}

		if !isApplication(msg) {
			// Not marked: the same ID simply keeps being filtered, which is a
			// cheap no-op, and a later reclassification stays possible.
			m.deps.Logger.Debug("message filtered out",
				zap.String("message_id", msg.ID),
				zap.String("subject", msg.Subject),
			)
			continue
		}

		m.process(ctx, msg)
	}
}

// process runs one message through extract -> score -> record -> mark ->
// notify. Extraction failure degrades to a pending-review record; it is still
// recorded and marked so an unparseable message is never reprocessed forever.
func (m *Monitor) process(ctx context.Context, msg mailbox.Message) {
	logger := m.deps.Logger.With(zap.String("message_id", msg.ID))
	logger.Info("processing application",
		zap.String("sender", msg.Sender),
		zap.String("subject", msg.Subject),
	)

	req := m.deps.Profiles.Match(msg.Subject)
	position := extractPosition(msg.Subject)
	if position == "" {
		position = req.Position
	}

	rec := models.ApplicationRecord{
		Timestamp: m.now().UTC(),
		Name:      msg.SenderName,
		Email:     msg.Sender,
		Position:  position,
		Subject:   msg.Subject,
		MessageID: msg.ID,
	}
	if !isValidEmail(rec.Email) {
		rec.Email = ""
	}

	att, ok := pickResume(msg)
	if !ok {
		// isApplication guarantees a supported attachment; defensive only.
		return
	}
	rec.ResumeRef = m.cacheResume(att, msg.ID, logger)

	extractCtx, cancel := context.WithTimeout(ctx, m.cfg.CallTimeout)
	candidate, err := m.deps.Extractor.Extract(extractCtx, att)
	cancel()

	scored := err == nil
	if err != nil {
		// Permanent input failure: no retry can help, but the application
		// must still be visible in the store.
		m.stats.PermanentFailure()
		logger.Warn("resume extraction failed", zap.Error(err))
		rec.Status = models.StatusPendingReview
		rec.Score = models.ScoreResult{
			Breakdown: map[string]int{},
			Feedback:  []string{fmt.Sprintf("Resume extraction failed: %v", err)},
		}
	} else {
		if candidate.Name != "" {
			rec.Name = candidate.Name
		}
		if rec.Email == "" && isValidEmail(candidate.Email) {
			rec.Email = candidate.Email
		}
		rec.Phone = candidate.Phone

		rec.Score = scoring.Score(candidate, req, m.cfg.Limits)
		if rec.Score.Passed {
			rec.Status = models.StatusPassed
		} else {
			rec.Status = models.StatusRejected
		}
	}

	ref, err := m.deps.Store.Append(ctx, rec)
	if err != nil {
		// Not even the overflow queue took it. Leave the message unmarked so
		// the next poll retries the whole subflow; a lost record is worse
		// than a repeated attempt.
		m.stats.TransientFailure()
		logger.Error("record could not be persisted, will reprocess", zap.Error(err))
		return
	}
	logger.Info("application recorded",
		zap.String("store_ref", string(ref)),
		zap.Int("score", rec.Score.Total),
		zap.String("status", string(rec.Status)),
	)

	// Record append happens-before ledger mark. A crash between the two
	// yields a duplicate record on restart, never a lost one. The mark runs
	// on a detached context: a shutdown signal arriving here must not abort
	// it, or the already-recorded message would be reprocessed.
	markCtx, cancelMark := context.WithTimeout(context.WithoutCancel(ctx), m.cfg.CallTimeout)
	defer cancelMark()
	if err := m.deps.Ledger.Mark(markCtx, msg.ID, msg.UID); err != nil {
		m.stats.TransientFailure()
		logger.Error("ledger mark failed, message may be reprocessed", zap.Error(err))
		return
	}

	m.stats.Recorded(rec.Status)

	if scored && rec.Score.Passed {
		m.sendAlert(ctx, rec, logger)
	}
	m.sendAutoReply(ctx, rec, logger)
}

// sendAlert notifies the recruiter channel about a passing candidate. A lost
// alert is logged and counted, never fatal.
func (m *Monitor) sendAlert(ctx context.Context, rec models.ApplicationRecord, logger *zap.Logger) {
	if m.deps.Notifier == nil {
		return
	}

	text := buildAlert(rec)
	err := m.retry.Do(ctx, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, m.cfg.CallTimeout)
		defer cancel()
		return m.deps.Notifier.Send(callCtx, text)
	})
	if err != nil {
		m.stats.NotifyFailure()
		logger.Error("candidate alert failed", zap.Error(err))
		return
	}

	m.stats.NotifySent()
	logger.Info("candidate alert sent")
}

// sendAutoReply emails the candidate an acknowledgment, at most once per
// sender per day, skipping automated and invalid addresses.
func (m *Monitor) sendAutoReply(ctx context.Context, rec models.ApplicationRecord, logger *zap.Logger) {
	if !m.cfg.AutoReplyEnabled || m.deps.Replier == nil {
		return
	}
	if rec.Email == "" || isAutomatedAddress(rec.Email) {
		logger.Debug("skipping auto-reply", zap.String("email", rec.Email))
		return
	}

	identifier := fmt.Sprintf("%s_%s", rec.Email, m.now().UTC().Format("2006-01-02"))
	if m.deps.Ledger.HasReplied(identifier) {
		logger.Debug("auto-reply already sent today", zap.String("email", rec.Email))
		return
	}

	subject, body := buildReply(rec, m.cfg.CompanyName, m.cfg.InterviewDays)
	err := m.retry.Do(ctx, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, m.cfg.CallTimeout)
		defer cancel()
		return m.deps.Replier.SendReply(callCtx, rec.Email, subject, body)
	})
	if err != nil {
		m.stats.NotifyFailure()
		logger.Error("auto-reply failed", zap.String("email", rec.Email), zap.Error(err))
		return
	}

	// Detached for the same reason as the processed-message mark: the reply
	// went out, so shutdown must not lose the fact.
	markCtx, cancelMark := context.WithTimeout(context.WithoutCancel(ctx), m.cfg.CallTimeout)
	defer cancelMark()
	if err := m.deps.Ledger.MarkReplied(markCtx, identifier); err != nil {
		logger.Error("reply ledger mark failed", zap.Error(err))
	}
	m.stats.ReplySent()
	logger.Info("auto-reply sent", zap.String("email", rec.Email))
}

// cacheResume saves the attachment bytes so the stored record can reference
// the original document. Failures degrade to an empty reference.
func (m *Monitor) cacheResume(att mailbox.Attachment, messageID string, logger *zap.Logger) string {
	if m.cfg.ResumeCacheDir == "" {
		return ""
	}
	if err := os.MkdirAll(m.cfg.ResumeCacheDir, 0o755); err != nil {
		logger.Warn("resume cache dir unavailable", zap.Error(err))
		return ""
	}

	path := filepath.Join(m.cfg.ResumeCacheDir, messageID+"_"+filepath.Base(att.Filename))
	if err := os.WriteFile(path, att.Data, 0o644); err != nil {
		logger.Warn("resume cache write failed", zap.Error(err))
		return ""
	}
	return path
}

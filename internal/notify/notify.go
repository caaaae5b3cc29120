// Package notify holds the outbound notification capability interfaces and
// their concrete adapters: a Twilio WhatsApp sender for recruiter alerts and
// an SMTP sender for candidate auto-replies. Notification failures never
// block recording; the orchestrator logs and moves on.
package notify

import (
	"context"
	"errors"
)

// ErrNotifyFailed wraps delivery failures from either sink.
var ErrNotifyFailed = errors.New("notification failed")

// Notifier sends an instant message to the configured recruiter channel.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// Replier sends an email to a candidate.
type Replier interface {
	SendReply(ctx context.Context, to, subject, body string) error
}

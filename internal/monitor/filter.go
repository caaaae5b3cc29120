package monitor

import (
	"regexp"
	"strings"

	"github.com/shsnge/job-application-monitor/internal/mailbox"
)

// applicationKeywords mark a subject line as a job application.
var applicationKeywords = []string{
	"apply", "application", "resume", "cv", "job", "position",
	"hiring", "vacancy", "career", "opportunity", "role",
}

// resumeWords mark an attachment filename as a resume.
var resumeWords = []string{"cv", "resume", "curriculum", "vitae"}

// portalDomains are job boards that forward applications on behalf of
// candidates.
var portalDomains = []string{
	"linkedin.com", "indeed.com", "glassdoor.com", "rozee.pk",
	"bayt.com", "naukrigulf.com", "monster.com",
}

// isApplication decides whether a message is a candidate application: it must
// carry at least one supported attachment, and either the subject, an
// attachment name, or the sender domain must look application-like. The
// decision is one-shot; filtered messages are never marked in the ledger.
func isApplication(msg mailbox.Message) bool {
	if !hasSupportedAttachment(msg) {
		return false
	}

	subject := strings.ToLower(msg.Subject)
	for _, kw := range applicationKeywords {
		if strings.Contains(subject, kw) {
			return true
		}
	}

	for _, att := range msg.Attachments {
		name := strings.ToLower(att.Filename)
		for _, w := range resumeWords {
			if strings.Contains(name, w) {
				return true
			}
		}
	}

	sender := strings.ToLower(msg.Sender)
	for _, domain := range portalDomains {
		if strings.Contains(sender, domain) {
			return true
		}
	}

	return false
}

func hasSupportedAttachment(msg mailbox.Message) bool {
	for _, att := range msg.Attachments {
		if _, ok := mailbox.FormatForFilename(att.Filename); ok || att.Format != "" {
			return true
		}
	}
	return false
}

// pickResume chooses the attachment to extract: the first one named like a
// resume, else the first supported one.
func pickResume(msg mailbox.Message) (mailbox.Attachment, bool) {
	var fallback *mailbox.Attachment
	for i, att := range msg.Attachments {
		if att.Format == "" {
			continue
		}
		if fallback == nil {
			fallback = &msg.Attachments[i]
		}
		name := strings.ToLower(att.Filename)
		for _, w := range resumeWords {
			if strings.Contains(name, w) {
				return att, true
			}
		}
	}
	if fallback != nil {
		return *fallback, true
	}
	return mailbox.Attachment{}, false
}

// positionPatterns extract a job title from the subject line, ordered by
// priority.
var positionPatterns = []*regexp.Regexp{
	// "applying for Frontend Developer"
	regexp.MustCompile(`(?i)applying\s+for\s+(?:the\s+)?(.+?)(?:\s+(?:position|role|at)|$)`),
	// "application for Frontend Developer"
	regexp.MustCompile(`(?i)application\s+(?:for|to)\s+(?:the\s+)?(.+?)(?:\s+(?:position|role|at)|$)`),
	// "Frontend Developer application"
	regexp.MustCompile(`(?i)^(.+?)\s+(?:application|apply|vacancy)`),
	// "position: Frontend Developer"
	regexp.MustCompile(`(?i)(?:position|role):\s*(.+?)(?:\s+[-–—]|$)`),
	// "for the Frontend Developer position"
	regexp.MustCompile(`(?i)for\s+(?:the\s+)?(.+?)\s+position`),
}

var positionNoiseRe = regexp.MustCompile(`(?i)\s+(position|role|job|application|at|in)\b.*`)

// extractPosition pulls a job title out of the subject line. Returns "" when
// nothing plausible matches; the caller falls back to the matched profile's
// position.
func extractPosition(subject string) string {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return ""
	}

	for _, re := range positionPatterns {
		m := re.FindStringSubmatch(subject)
		if m == nil {
			continue
		}
		position := strings.TrimSpace(m[1])
		position = strings.NewReplacer("-", " ", "–", " ", "_", " ").Replace(position)
		position = positionNoiseRe.ReplaceAllString(position, "")
		position = titleCase(strings.TrimSpace(position))
		if len(position) > 2 {
			return position
		}
	}

	return ""
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
		}
	}
	return strings.Join(words, " ")
}

var emailShapeRe = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func isValidEmail(email string) bool {
	return email != "" && emailShapeRe.MatchString(email)
}

// automatedPatterns flag no-reply and machine-generated sender addresses that
// must never receive an auto-reply.
var automatedPatterns = []string{
	"noreply", "no-reply", "no_reply",
	"donotreply", "do-not-reply", "do_not_reply",
	"automated", "bot", "robot",
	"notification", "notify", "alert",
	"mailer", "daemon",
}

var automatedDomains = []string{
	"@linkedin.com", "@indeed.com", "@glassdoor.com",
	"@mailchimp.com", "@sendgrid.com", "@amazonses.com",
}

func isAutomatedAddress(email string) bool {
	lower := strings.ToLower(email)
	for _, p := range automatedPatterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	for _, d := range automatedDomains {
		if strings.Contains(lower, d) {
			return true
		}
	}
	return false
}

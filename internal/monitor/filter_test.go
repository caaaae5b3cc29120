package monitor

import (
	"testing"

	"github.com/shsnge/job-application-monitor/internal/mailbox"
)

func pdfAttachment(name string) mailbox.Attachment {
	return mailbox.Attachment{Filename: name, Format: mailbox.FormatPDF, Data: []byte("x")}
}

// TestIsApplication tests the application filter across its three signals.
func TestIsApplication(t *testing.T) {
	tests := []struct {
		name string
		msg  mailbox.Message
		want bool
	}{
		{
			name: "Subject keyword with attachment",
			msg: mailbox.Message{
				Sender:      "jane@example.com",
				Subject:     "Application for Backend Developer",
				Attachments: []mailbox.Attachment{pdfAttachment("document.pdf")},
			},
			want: true,
		},
		{
			name: "Resume-named attachment without subject keyword",
			msg: mailbox.Message{
				Sender:      "jane@example.com",
				Subject:     "Hello",
				Attachments: []mailbox.Attachment{pdfAttachment("jane_resume.pdf")},
			},
			want: true,
		},
		{
			name: "Job portal sender without other signals",
			msg: mailbox.Message{
				Sender:      "jobs-noreply@linkedin.com",
				Subject:     "New candidate",
				Attachments: []mailbox.Attachment{pdfAttachment("document.pdf")},
			},
			want: true,
		},
		{
			name: "Keyword subject but no attachment",
			msg: mailbox.Message{
				Sender:  "jane@example.com",
				Subject: "Application for Backend Developer",
			},
			want: false,
		},
		{
			name: "Attachment but nothing application-like",
			msg: mailbox.Message{
				Sender:      "bob@example.com",
				Subject:     "Meeting notes",
				Attachments: []mailbox.Attachment{pdfAttachment("notes.pdf")},
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isApplication(tt.msg); got != tt.want {
				t.Errorf("isApplication() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestPickResume tests that resume-named attachments beat the first supported
// one.
func TestPickResume(t *testing.T) {
	msg := mailbox.Message{
		Attachments: []mailbox.Attachment{
			pdfAttachment("cover_letter.pdf"),
			pdfAttachment("jane_cv.pdf"),
		},
	}

	att, ok := pickResume(msg)
	if !ok {
		t.Fatal("pickResume() found nothing")
	}
	if att.Filename != "jane_cv.pdf" {
		t.Errorf("pickResume() = %q, want the cv-named attachment", att.Filename)
	}

	// Without a resume-named candidate the first supported attachment wins.
	msg.Attachments[1].Filename = "references.pdf"
	att, ok = pickResume(msg)
	if !ok || att.Filename != "cover_letter.pdf" {
		t.Errorf("pickResume() = %q, want first supported attachment", att.Filename)
	}
}

// TestExtractPosition tests job-title extraction from subject lines.
func TestExtractPosition(t *testing.T) {
	tests := []struct {
		name    string
		subject string
		want    string
	}{
		{name: "Applying for", subject: "Applying for Frontend Developer position", want: "Frontend Developer"},
		{name: "Application for", subject: "Application for the Backend Developer role", want: "Backend Developer"},
		{name: "Position prefix", subject: "Position: Data Engineer", want: "Data Engineer"},
		{name: "Title then application", subject: "Frontend Developer Application", want: "Frontend Developer"},
		{name: "For the X position", subject: "Resume for the QA Engineer position", want: "Qa Engineer"},
		{name: "Nothing plausible", subject: "Hello", want: ""},
		{name: "Empty subject", subject: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractPosition(tt.subject); got != tt.want {
				t.Errorf("extractPosition(%q) = %q, want %q", tt.subject, got, tt.want)
			}
		})
	}
}

// TestIsAutomatedAddress tests the no-reply detection used by the auto-reply
// guard.
func TestIsAutomatedAddress(t *testing.T) {
	tests := []struct {
		name  string
		email string
		want  bool
	}{
		{name: "Plain noreply", email: "noreply@company.com", want: true},
		{name: "Hyphenated", email: "do-not-reply@company.com", want: true},
		{name: "Mailer daemon", email: "mailer-daemon@googlemail.com", want: true},
		{name: "Portal domain", email: "jobs@linkedin.com", want: true},
		{name: "Real candidate", email: "jane.doe@gmail.com", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isAutomatedAddress(tt.email); got != tt.want {
				t.Errorf("isAutomatedAddress(%q) = %v, want %v", tt.email, got, tt.want)
			}
		})
	}
}

// TestIsValidEmail tests the address shape check.
func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		name  string
		email string
		want  bool
	}{
		{name: "Valid address", email: "jane.doe+jobs@example.co.uk", want: true},
		{name: "Missing domain", email: "jane@", want: false},
		{name: "Missing at sign", email: "jane.example.com", want: false},
		{name: "Empty", email: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isValidEmail(tt.email); got != tt.want {
				t.Errorf("isValidEmail(%q) = %v, want %v", tt.email, got, tt.want)
			}
		})
	}
}

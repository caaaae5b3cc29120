package monitor

import (
	"fmt"
	"strings"

	"github.com/shsnge/job-application-monitor/internal/models"
)

// buildAlert formats the recruiter WhatsApp message for a passing candidate.
func buildAlert(rec models.ApplicationRecord) string {
	name := rec.Name
	if name == "" {
		name = "Unknown"
	}
	phone := rec.Phone
	if phone == "" {
		phone = "N/A"
	}

	var sb strings.Builder
	sb.WriteString("*High-Scoring Candidate Alert!*\n\n")
	fmt.Fprintf(&sb, "*Name:* %s\n", name)
	fmt.Fprintf(&sb, "*Email:* %s\n", rec.Email)
	fmt.Fprintf(&sb, "*Phone:* %s\n", phone)
	fmt.Fprintf(&sb, "*Position:* %s\n", rec.Position)
	fmt.Fprintf(&sb, "*Score:* %d\n\n", rec.Score.Total)
	sb.WriteString("*Feedback:*\n")
	sb.WriteString(strings.Join(rec.Score.Feedback, "\n"))
	fmt.Fprintf(&sb, "\n\n*Time:* %s\n", rec.Timestamp.Format("2006-01-02 15:04:05"))
	sb.WriteString("\nResume has been saved. Consider scheduling an interview!")
	return sb.String()
}

// buildReply formats the candidate auto-reply email.
func buildReply(rec models.ApplicationRecord, companyName string, interviewDays int) (subject, body string) {
	if companyName == "" {
		companyName = "Our Company"
	}
	name := rec.Name
	if name == "" {
		name = "Candidate"
	}

	subject = fmt.Sprintf("Application Received - %s | %s", rec.Position, companyName)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Dear %s,\n\n", name)
	fmt.Fprintf(&sb, "Thank you for applying for the %s role at %s.\n\n", rec.Position, companyName)
	fmt.Fprintf(&sb, "We have received your application and it is currently under review. "+
		"If your profile matches our requirements, you can expect to receive an interview call within %d days.\n\n", interviewDays)
	sb.WriteString("We appreciate your interest in joining our team!\n\n")
	sb.WriteString("Best regards,\nHR Team\n")
	sb.WriteString(companyName)
	sb.WriteString("\n")

	return subject, sb.String()
}

// Package mailbox defines the inbound mail capability interface and the
// message model the orchestrator consumes. The wire protocol lives entirely
// behind Source implementations.
package mailbox

import (
	"context"
	"path/filepath"
	"strings"
	"time"
)

// Format tags the declared document format of an attachment.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
	FormatDOC  Format = "doc"
	FormatTXT  Format = "txt"
)

// FormatForFilename maps a filename extension to a supported format tag.
func FormatForFilename(name string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return FormatPDF, true
	case ".docx":
		return FormatDOCX, true
	case ".doc":
		return FormatDOC, true
	case ".txt":
		return FormatTXT, true
	default:
		return "", false
	}
}

// Attachment is one downloaded attachment with its declared format.
type Attachment struct {
	Filename string
	Format   Format
	Data     []byte
}

// Message is one inbound email as observed by a poll.
type Message struct {
	// ID is the server-stable message identifier used as the dedup key.
	ID string
	// UID is the server-assigned sequence recorded alongside the ID.
	UID         string
	Sender      string
	SenderName  string
	Subject     string
	ReceivedAt  time.Time
	Body        string
	Attachments []Attachment
}

// Source polls a mailbox for candidate messages.
type Source interface {
	Poll(ctx context.Context) ([]Message, error)
}

// Package extract converts raw resume attachments into candidate profiles.
// Text extraction is format-specific; field recognition over the extracted
// text is a pluggable strategy so it can be swapped without touching scoring.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/nguyenthenguyen/docx"
	"go.uber.org/zap"

	"github.com/shsnge/job-application-monitor/internal/mailbox"
	"github.com/shsnge/job-application-monitor/internal/models"
)

var (
	// ErrUnsupportedFormat is returned for attachments outside the closed set
	// of supported document formats.
	ErrUnsupportedFormat = errors.New("unsupported resume format")
	// ErrExtractionFailed is returned when a payload in a supported format
	// cannot be decoded: corrupted files, encrypted documents, image-only
	// scans with no text layer. Never retried, the input is static.
	ErrExtractionFailed = errors.New("resume extraction failed")
)

// MinExtractedTextLength guards against "successful" extractions that yield
// no usable text, e.g. certificate-only PDFs or scanned images.
const MinExtractedTextLength = 50

// FieldRecognizer turns extracted resume text into structured candidate
// fields. Implementations must be accurate-or-absent: a field is either
// correct or unset, never fabricated.
type FieldRecognizer interface {
	Recognize(text string) models.CandidateProfile
}

// Extractor is the resume extraction front end.
type Extractor struct {
	recognizer FieldRecognizer
	logger     *zap.Logger
}

// New creates an extractor using the given field recognition strategy.
func New(recognizer FieldRecognizer, logger *zap.Logger) *Extractor {
	return &Extractor{
		recognizer: recognizer,
		logger:     logger,
	}
}

// Extract produces a CandidateProfile from one attachment. Partial success is
// not an error: when text extracts but no name/email/phone is recognizable,
// those fields stay unset and scoring degrades per criterion.
func (e *Extractor) Extract(ctx context.Context, att mailbox.Attachment) (models.CandidateProfile, error) {
	text, err := e.extractText(ctx, att)
	if err != nil {
		return models.CandidateProfile{}, err
	}

	text = sanitizeUTF8(text)
	if len(strings.TrimSpace(text)) < MinExtractedTextLength {
		return models.CandidateProfile{}, fmt.Errorf("%w: extracted text too short from %s", ErrExtractionFailed, att.Filename)
	}

	profile := e.recognizer.Recognize(text)
	profile.RawText = text

	e.logger.Debug("resume extracted",
		zap.String("filename", att.Filename),
		zap.Int("text_length", len(text)),
		zap.Int("skills_detected", len(profile.Skills)),
	)

	return profile, nil
}

func (e *Extractor) extractText(ctx context.Context, att mailbox.Attachment) (string, error) {
	switch att.Format {
	case mailbox.FormatTXT:
		return string(att.Data), nil
	case mailbox.FormatPDF:
		return e.extractPDF(ctx, att)
	case mailbox.FormatDOCX:
		return extractDOCX(att)
	case mailbox.FormatDOC:
		return e.extractDOC(ctx, att)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, att.Format)
	}
}

// extractPDF shells out to pdftotext (poppler-utils).
func (e *Extractor) extractPDF(ctx context.Context, att mailbox.Attachment) (string, error) {
	path, cleanup, err := tempFile(att)
	if err != nil {
		return "", err
	}
	defer cleanup()

	cmd := exec.CommandContext(ctx, "pdftotext", "-layout", path, "-")
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("%w: pdftotext on %s: %v", ErrExtractionFailed, att.Filename, err)
	}
	return string(output), nil
}

// extractDOC shells out to antiword for legacy .doc files.
func (e *Extractor) extractDOC(ctx context.Context, att mailbox.Attachment) (string, error) {
	path, cleanup, err := tempFile(att)
	if err != nil {
		return "", err
	}
	defer cleanup()

	cmd := exec.CommandContext(ctx, "antiword", path)
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("%w: antiword on %s: %v", ErrExtractionFailed, att.Filename, err)
	}
	return string(output), nil
}

func extractDOCX(att mailbox.Attachment) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(att.Data), int64(len(att.Data)))
	if err != nil {
		return "", fmt.Errorf("%w: parse docx %s: %v", ErrExtractionFailed, att.Filename, err)
	}
	defer doc.Close()

	return stripDocxMarkup(doc.Editable().GetContent()), nil
}

var (
	docxParagraphRe = regexp.MustCompile(`</w:p>`)
	docxTagRe       = regexp.MustCompile(`<[^>]+>`)
)

// stripDocxMarkup flattens WordprocessingML into plain text, one paragraph
// per line.
func stripDocxMarkup(content string) string {
	content = docxParagraphRe.ReplaceAllString(content, "\n")
	content = docxTagRe.ReplaceAllString(content, "")
	content = strings.ReplaceAll(content, "&amp;", "&")
	content = strings.ReplaceAll(content, "&lt;", "<")
	content = strings.ReplaceAll(content, "&gt;", ">")
	return content
}

func tempFile(att mailbox.Attachment) (string, func(), error) {
	f, err := os.CreateTemp("", "resume-*"+filepath.Ext(att.Filename))
	if err != nil {
		return "", nil, fmt.Errorf("create temp file: %w", err)
	}
	if _, err := f.Write(att.Data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", nil, fmt.Errorf("write temp file: %w", err)
	}
	f.Close()
	return f.Name(), func() { os.Remove(f.Name()) }, nil
}

// sanitizeUTF8 drops invalid byte sequences so extracted text is always
// valid UTF-8 downstream.
func sanitizeUTF8(s string) string {
	return strings.ToValidUTF8(s, "")
}

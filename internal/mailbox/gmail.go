package mailbox

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/mail"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// GmailSource polls a Gmail inbox through the Gmail REST API.
type GmailSource struct {
	service     *gmail.Service
	query       string
	windowDays  int
	maxMessages int
	skip        func(id string) bool
	callTimeout time.Duration
	logger      *zap.Logger
}

// GmailOptions configures the Gmail source.
type GmailOptions struct {
	CredentialsPath string
	TokenPath       string
	// Query is appended to the window filter, e.g. "has:attachment".
	Query string
	// WindowDays bounds how far back each poll looks. The dedup ledger makes
	// overlapping windows safe.
	WindowDays  int
	MaxMessages int
	// Skip filters listed message IDs before the expensive fetch, normally
	// the dedup ledger's Contains. Already-processed messages cost one list
	// entry instead of a full fetch plus attachment downloads.
	Skip func(id string) bool
	// CallTimeout bounds each Gmail API call individually, so a busy window
	// degrades to fewer messages per poll instead of a poll that never
	// finishes.
	CallTimeout time.Duration
}

// NewGmailSource builds a Gmail-backed source. The OAuth token is read from
// TokenPath; when missing, an interactive authorization flow runs once and
// caches the token.
func NewGmailSource(ctx context.Context, opts GmailOptions, logger *zap.Logger) (*GmailSource, error) {
	b, err := os.ReadFile(opts.CredentialsPath)
	if err != nil {
		return nil, fmt.Errorf("read gmail credentials: %w", err)
	}

	config, err := google.ConfigFromJSON(b, gmail.GmailReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("parse gmail credentials: %w", err)
	}

	client, err := oauthClient(ctx, config, opts.TokenPath)
	if err != nil {
		return nil, err
	}

	srv, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("create gmail client: %w", err)
	}

	windowDays := opts.WindowDays
	if windowDays <= 0 {
		windowDays = 7
	}
	maxMessages := opts.MaxMessages
	if maxMessages <= 0 {
		maxMessages = 100
	}
	callTimeout := opts.CallTimeout
	if callTimeout <= 0 {
		callTimeout = 30 * time.Second
	}

	return &GmailSource{
		service:     srv,
		query:       opts.Query,
		windowDays:  windowDays,
		maxMessages: maxMessages,
		skip:        opts.Skip,
		callTimeout: callTimeout,
		logger:      logger,
	}, nil
}

// Poll lists recent messages and downloads their attachments. Message IDs are
// Gmail's immutable message identifiers, so they are safe dedup keys across
// restarts. Already-known IDs are skipped before the fetch, and every API
// call runs under its own timeout.
func (g *GmailSource) Poll(ctx context.Context) ([]Message, error) {
	query := fmt.Sprintf("newer_than:%dd", g.windowDays)
	if g.query != "" {
		query = query + " " + g.query
	}

	listCtx, cancel := context.WithTimeout(ctx, g.callTimeout)
	list, err := g.service.Users.Messages.List("me").Q(query).MaxResults(int64(g.maxMessages)).Context(listCtx).Do()
	cancel()
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	refs := skipKnown(list.Messages, g.skip)
	messages := make([]Message, 0, len(refs))
	for _, ref := range refs {
		if ctx.Err() != nil {
			return messages, nil
		}

		fetchCtx, cancel := context.WithTimeout(ctx, g.callTimeout)
		msg, err := g.fetch(fetchCtx, ref.Id)
		cancel()
		if err != nil {
			g.logger.Warn("skipping unfetchable message",
				zap.String("message_id", ref.Id),
				zap.Error(err),
			)
			continue
		}
		messages = append(messages, msg)
	}

	return messages, nil
}

// skipKnown drops listed refs the predicate already knows, saving the full
// fetch and attachment downloads for processed messages.
func skipKnown(refs []*gmail.Message, skip func(id string) bool) []*gmail.Message {
	if skip == nil {
		return refs
	}
	kept := make([]*gmail.Message, 0, len(refs))
	for _, ref := range refs {
		if skip(ref.Id) {
			continue
		}
		kept = append(kept, ref)
	}
	return kept
}

func (g *GmailSource) fetch(ctx context.Context, id string) (Message, error) {
	full, err := g.service.Users.Messages.Get("me", id).Format("full").Context(ctx).Do()
	if err != nil {
		return Message{}, fmt.Errorf("get message: %w", err)
	}

	msg := Message{
		ID:         full.Id,
		UID:        fmt.Sprintf("%d", full.HistoryId),
		ReceivedAt: time.UnixMilli(full.InternalDate).UTC(),
	}

	for _, header := range full.Payload.Headers {
		switch header.Name {
		case "From":
			msg.SenderName, msg.Sender = parseFromHeader(header.Value)
		case "Subject":
			msg.Subject = header.Value
		}
	}

	msg.Body = collectBody(full.Payload)

	for _, part := range flattenParts(full.Payload) {
		if part.Filename == "" || part.Body == nil || part.Body.AttachmentId == "" {
			continue
		}
		format, ok := FormatForFilename(part.Filename)
		if !ok {
			continue
		}

		att, err := g.service.Users.Messages.Attachments.Get("me", id, part.Body.AttachmentId).Context(ctx).Do()
		if err != nil {
			g.logger.Warn("skipping undownloadable attachment",
				zap.String("message_id", id),
				zap.String("filename", part.Filename),
				zap.Error(err),
			)
			continue
		}

		data, err := base64.URLEncoding.DecodeString(att.Data)
		if err != nil {
			g.logger.Warn("skipping undecodable attachment",
				zap.String("message_id", id),
				zap.String("filename", part.Filename),
				zap.Error(err),
			)
			continue
		}

		msg.Attachments = append(msg.Attachments, Attachment{
			Filename: part.Filename,
			Format:   format,
			Data:     data,
		})
	}

	return msg, nil
}

// flattenParts walks the MIME tree depth-first.
func flattenParts(payload *gmail.MessagePart) []*gmail.MessagePart {
	if payload == nil {
		return nil
	}
	parts := []*gmail.MessagePart{payload}
	for _, p := range payload.Parts {
		parts = append(parts, flattenParts(p)...)
	}
	return parts
}

// collectBody concatenates the text/plain parts of the message.
func collectBody(payload *gmail.MessagePart) string {
	var sb strings.Builder
	for _, part := range flattenParts(payload) {
		if part.MimeType != "text/plain" || part.Body == nil || part.Body.Data == "" {
			continue
		}
		data, err := base64.URLEncoding.DecodeString(part.Body.Data)
		if err != nil {
			continue
		}
		sb.Write(data)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// parseFromHeader splits `Name <addr>` style From headers.
func parseFromHeader(value string) (name, address string) {
	addr, err := mail.ParseAddress(value)
	if err != nil {
		// Fall back to the raw header; the monitor validates addresses
		// before replying to them.
		return "", strings.TrimSpace(value)
	}
	name = addr.Name
	if name == "" {
		if idx := strings.Index(addr.Address, "@"); idx > 0 {
			name = addr.Address[:idx]
		}
	}
	return name, addr.Address
}

// oauthClient loads the cached OAuth token, running the interactive
// authorization flow once when no token exists yet.
func oauthClient(ctx context.Context, config *oauth2.Config, tokenPath string) (*http.Client, error) {
	tok, err := tokenFromFile(tokenPath)
	if err != nil {
		tok, err = tokenFromWeb(ctx, config)
		if err != nil {
			return nil, err
		}
		if err := saveToken(tokenPath, tok); err != nil {
			return nil, err
		}
	}
	return config.Client(ctx, tok), nil
}

func tokenFromWeb(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error) {
	authURL := config.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Printf("Go to the following link in your browser then type the authorization code:\n%v\n", authURL)

	var authCode string
	if _, err := fmt.Scan(&authCode); err != nil {
		return nil, fmt.Errorf("read authorization code: %w", err)
	}

	tok, err := config.Exchange(ctx, authCode)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}
	return tok, nil
}

func tokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(tok)
	return tok, err
}

func saveToken(path string, token *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("cache oauth token: %w", err)
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(token)
}

package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
)

// SMTPReplier sends auto-reply emails over SMTP with STARTTLS.
type SMTPReplier struct {
	host     string
	port     int
	username string
	password string
}

// NewSMTPReplier builds a replier. The username doubles as the From address.
func NewSMTPReplier(host string, port int, username, password string) *SMTPReplier {
	if port <= 0 {
		port = 587
	}
	return &SMTPReplier{
		host:     host,
		port:     port,
		username: username,
		password: password,
	}
}

// SendReply delivers one plain-text email. The context deadline bounds the
// whole conversation, not just the dial: it is applied to the connection so a
// server that accepts and then hangs cannot stall the caller. SMTP errors
// wrap ErrNotifyFailed.
func (r *SMTPReplier) SendReply(ctx context.Context, to, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", r.host, r.port)

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("%w: dial %s: %v", ErrNotifyFailed, addr, err)
	}

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			conn.Close()
			return fmt.Errorf("%w: set deadline: %v", ErrNotifyFailed, err)
		}
	}

	c, err := smtp.NewClient(conn, r.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("%w: smtp handshake: %v", ErrNotifyFailed, err)
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: r.host}); err != nil {
			return fmt.Errorf("%w: starttls: %v", ErrNotifyFailed, err)
		}
	}

	auth := smtp.PlainAuth("", r.username, r.password, r.host)
	if err := c.Auth(auth); err != nil {
		return fmt.Errorf("%w: smtp auth: %v", ErrNotifyFailed, err)
	}

	if err := c.Mail(r.username); err != nil {
		return fmt.Errorf("%w: smtp mail from: %v", ErrNotifyFailed, err)
	}
	if err := c.Rcpt(to); err != nil {
		return fmt.Errorf("%w: smtp rcpt to: %v", ErrNotifyFailed, err)
	}

	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("%w: smtp data: %v", ErrNotifyFailed, err)
	}
	if _, err := w.Write(buildMessage(r.username, to, subject, body)); err != nil {
		w.Close()
		return fmt.Errorf("%w: write message: %v", ErrNotifyFailed, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("%w: finish message: %v", ErrNotifyFailed, err)
	}

	return c.Quit()
}

func buildMessage(from, to, subject, body string) []byte {
	var sb strings.Builder
	fmt.Fprintf(&sb, "From: %s\r\n", from)
	fmt.Fprintf(&sb, "To: %s\r\n", to)
	fmt.Fprintf(&sb, "Subject: %s\r\n", subject)
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return []byte(sb.String())
}

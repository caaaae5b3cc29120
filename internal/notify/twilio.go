package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const twilioBaseURL = "https://api.twilio.com"

// TwilioNotifier sends WhatsApp messages through the Twilio REST API.
type TwilioNotifier struct {
	accountSID string
	authToken  string
	from       string
	to         string
	baseURL    string
	client     *http.Client
}

// NewTwilioNotifier builds a WhatsApp notifier. From and to numbers use
// Twilio's "whatsapp:+15551234567" form.
func NewTwilioNotifier(accountSID, authToken, from, to string) *TwilioNotifier {
	return &TwilioNotifier{
		accountSID: accountSID,
		authToken:  authToken,
		from:       from,
		to:         to,
		baseURL:    twilioBaseURL,
		client:     &http.Client{Timeout: 30 * time.Second},
	}
}

// Send posts one message. Non-2xx responses are reported as ErrNotifyFailed
// with the Twilio status line for the log.
func (t *TwilioNotifier) Send(ctx context.Context, text string) error {
	form := url.Values{
		"From": {t.from},
		"To":   {t.to},
		"Body": {text},
	}

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", t.baseURL, t.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build twilio request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(t.accountSID, t.authToken)

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: twilio request: %v", ErrNotifyFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: twilio returned %s: %s", ErrNotifyFailed, resp.Status, strings.TrimSpace(string(body)))
	}

	return nil
}

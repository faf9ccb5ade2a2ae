package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Sender delivers one SMS and returns the provider's message id. The
// dispatcher treats any error as a per-recipient failure and moves on.
type Sender interface {
	Send(ctx context.Context, toE164, body string) (messageID string, err error)
}

// TwilioSender posts to the Twilio Messages API with basic auth. Credentials
// come from configuration; a deployment without them never constructs one.
type TwilioSender struct {
	AccountSID string
	AuthToken  string
	From       string
	HTTP       *http.Client
	BaseURL    string // overridable for tests; defaults to the Twilio API
}

func NewTwilioSender(accountSID, authToken, from string) *TwilioSender {
	return &TwilioSender{
		AccountSID: accountSID,
		AuthToken:  authToken,
		From:       from,
		HTTP:       &http.Client{Timeout: 30 * time.Second},
		BaseURL:    "https://api.twilio.com",
	}
}

// Send posts one message. Twilio answers 201 with a JSON body carrying the
// message sid; error responses carry a message field which is surfaced
// verbatim.
func (s *TwilioSender) Send(ctx context.Context, toE164, body string) (string, error) {
	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", s.BaseURL, s.AccountSID)
	form := url.Values{
		"To":   {toE164},
		"From": {s.From},
		"Body": {body},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(s.AccountSID, s.AuthToken)

	resp, err := s.HTTP.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out struct {
		SID     string `json:"sid"`
		Status  string `json:"status"`
		Message string `json:"message"` // error description on failure
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode twilio response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if out.Message != "" {
			return "", fmt.Errorf("twilio: %s", out.Message)
		}
		return "", fmt.Errorf("twilio: unexpected status %s", resp.Status)
	}
	return out.SID, nil
}

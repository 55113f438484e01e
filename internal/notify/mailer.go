// Package notify turns domain events into emails. The bridge fans events out
// to outbox rows; the worker drains the outbox through a Mailer.
package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// Mailer delivers one email.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// RestyMailer posts to an HTTP mail relay (e.g. a hosted transactional
// email API fronted by a single /send endpoint).
type RestyMailer struct {
	client *resty.Client
	from   string
}

// NewRestyMailer builds a mailer for the given relay base URL.
func NewRestyMailer(baseURL, apiKey, from string, timeout time.Duration) *RestyMailer {
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)
	if apiKey != "" {
		c.SetAuthToken(apiKey)
	}
	return &RestyMailer{client: c, from: from}
}

type sendRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func (m *RestyMailer) Send(ctx context.Context, to, subject, body string) error {
	resp, err := m.client.R().
		SetContext(ctx).
		SetBody(&sendRequest{From: m.from, To: to, Subject: subject, Body: body}).
		Post("/send")
	if err != nil {
		return fmt.Errorf("mail relay request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK && resp.StatusCode() != http.StatusAccepted {
		return fmt.Errorf("mail relay status %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}

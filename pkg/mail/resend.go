package mail

import (
	"context"
	"errors"
	"fmt"

	rhttp "github.com/shashiranjanraj/rigparts/pkg/http"
)

const resendEndpoint = "https://api.resend.com/emails"

// ResendTransport posts to the Resend HTTP API.
type ResendTransport struct {
	apiKey   string
	from     string
	endpoint string
}

func NewResend(apiKey, from string) *ResendTransport {
	return &ResendTransport{apiKey: apiKey, from: from, endpoint: resendEndpoint}
}

// WithEndpoint points the transport at another base URL (tests, proxies).
func (t *ResendTransport) WithEndpoint(url string) *ResendTransport {
	t.endpoint = url
	return t
}

type resendPayload struct {
	From    string            `json:"from"`
	To      []string          `json:"to"`
	Subject string            `json:"subject"`
	HTML    string            `json:"html"`
	ReplyTo string            `json:"reply_to,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
}

func (t *ResendTransport) Send(ctx context.Context, msg Message) error {
	if t.apiKey == "" {
		return errors.New("mail/resend: RESEND_API_KEY not configured")
	}
	from := msg.From
	if from == "" {
		from = t.from
	}

	resp, err := rhttp.Post(t.endpoint).
		WithContext(ctx).
		Bearer(t.apiKey).
		Body(resendPayload{
			From:    from,
			To:      msg.To,
			Subject: msg.Subject,
			HTML:    msg.HTML,
			ReplyTo: msg.ReplyTo,
			Headers: msg.Headers,
		}).
		Send()
	if err != nil {
		return fmt.Errorf("mail/resend: %w", err)
	}
	if err := resp.Throw(); err != nil {
		return fmt.Errorf("mail/resend: %w", err)
	}
	return nil
}

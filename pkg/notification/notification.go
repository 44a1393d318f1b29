// Package notification fans a staff alert out to mail and Slack.
//
//	type OrderPlaced struct{ Order models.Order }
//	func (n OrderPlaced) Via() []string           { return []string{notification.Mail, notification.Slack} }
//	func (n OrderPlaced) ToMail() notification.MailData   { ... }
//	func (n OrderPlaced) ToSlack() notification.SlackData { ... }
//
//	notification.Send(ctx, config.AdminEmail(), OrderPlaced{Order: o})
package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	rhttp "github.com/shashiranjanraj/rigparts/pkg/http"
	"github.com/shashiranjanraj/rigparts/pkg/logger"
	"github.com/shashiranjanraj/rigparts/pkg/mail"
)

const (
	Mail  = "mail"
	Slack = "slack"
)

type MailData struct {
	To      string // overrides the notifiable address if set
	Subject string
	Body    string // HTML
}

type SlackData struct {
	WebhookURL  string // overrides the default webhook if set
	Text        string
	Attachments []SlackAttachment
}

type SlackAttachment struct {
	Color  string `json:"color,omitempty"` // good | warning | danger
	Title  string `json:"title,omitempty"`
	Text   string `json:"text,omitempty"`
	Footer string `json:"footer,omitempty"`
}

type Notification interface {
	Via() []string
}

type Mailable interface {
	ToMail() MailData
}

type Slackable interface {
	ToSlack() SlackData
}

var defaultSlackWebhook string

// SetSlackWebhook sets the default Slack incoming webhook URL.
func SetSlackWebhook(url string) { defaultSlackWebhook = url }

// ErrNotConfigured marks a channel skipped for lack of configuration.
var ErrNotConfigured = errors.New("notification: channel not configured")

// Send dispatches n through every channel returned by Via and returns the
// per-channel failures. Unconfigured channels are skipped silently.
func Send(ctx context.Context, address string, n Notification) []error {
	var errs []error
	for _, channel := range n.Via() {
		err := dispatch(ctx, address, channel, n)
		if errors.Is(err, ErrNotConfigured) {
			logger.WithCtx(ctx).Debug("notification: channel skipped", "channel", channel)
			continue
		}
		if err != nil {
			logger.WithCtx(ctx).Error("notification: channel failed", "channel", channel, "error", err)
			errs = append(errs, err)
		}
	}
	return errs
}

func dispatch(ctx context.Context, address, channel string, n Notification) error {
	switch channel {
	case Mail:
		m, ok := n.(Mailable)
		if !ok {
			return fmt.Errorf("notification: %T does not implement Mailable", n)
		}
		return sendMail(ctx, address, m.ToMail())

	case Slack:
		s, ok := n.(Slackable)
		if !ok {
			return fmt.Errorf("notification: %T does not implement Slackable", n)
		}
		return sendSlack(ctx, s.ToSlack())

	default:
		return fmt.Errorf("notification: unknown channel %q", channel)
	}
}

func sendMail(ctx context.Context, address string, d MailData) error {
	to := d.To
	if to == "" {
		to = address
	}
	if to == "" {
		return ErrNotConfigured
	}
	return mail.To(to).Subject(d.Subject).Body(d.Body).Send(ctx)
}

type slackPayload struct {
	Text        string            `json:"text,omitempty"`
	Attachments []SlackAttachment `json:"attachments,omitempty"`
}

func sendSlack(ctx context.Context, d SlackData) error {
	url := d.WebhookURL
	if url == "" {
		url = defaultSlackWebhook
	}
	if url == "" {
		return ErrNotConfigured
	}

	resp, err := rhttp.Post(url).
		WithContext(ctx).
		Timeout(5 * time.Second).
		Body(slackPayload{Text: d.Text, Attachments: d.Attachments}).
		Send()
	if err != nil {
		return fmt.Errorf("notification: slack post: %w", err)
	}
	return resp.Throw()
}

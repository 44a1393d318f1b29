package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shashiranjanraj/rigparts/pkg/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type quoteAlert struct{ slackURL string }

func (quoteAlert) Via() []string { return []string{Mail, Slack} }

func (quoteAlert) ToMail() MailData {
	return MailData{Subject: "New quote request", Body: "<p>Air dryer for a 2014 Cascadia</p>"}
}

func (q quoteAlert) ToSlack() SlackData {
	return SlackData{WebhookURL: q.slackURL, Text: "New quote request"}
}

func TestSendFansOut(t *testing.T) {
	var mailed []mail.Message
	mail.SetTransport(mail.TransportFunc(func(_ context.Context, m mail.Message) error {
		mailed = append(mailed, m)
		return nil
	}))
	defer mail.SetTransport(nil)

	var slack slackPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&slack))
	}))
	defer srv.Close()

	errs := Send(context.Background(), "sales@example.com", quoteAlert{slackURL: srv.URL})

	assert.Empty(t, errs)
	require.Len(t, mailed, 1)
	assert.Equal(t, []string{"sales@example.com"}, mailed[0].To)
	assert.Equal(t, "New quote request", slack.Text)
}

func TestUnconfiguredChannelsAreSkipped(t *testing.T) {
	SetSlackWebhook("")
	errs := Send(context.Background(), "", quoteAlert{})
	assert.Empty(t, errs)
}

// Package mail sends HTML email through a pluggable Transport.
//
//	err := mail.To("fleet@example.com").
//	    Subject("Your order #1042").
//	    Template(orderTmpl, data).
//	    Send(ctx)
//
// The default transport is chosen by MAIL_DRIVER: smtp, ses, resend or log.
package mail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"sync"

	"github.com/shashiranjanraj/rigparts/config"
)

// ErrNoRecipient is returned when a message has nobody to go to.
var ErrNoRecipient = errors.New("mail: no recipient")

// Message is one outbound email.
type Message struct {
	From    string
	To      []string
	ReplyTo string
	Subject string
	HTML    string
	Headers map[string]string
}

// Transport delivers a Message. Implementations must honour ctx deadlines.
type Transport interface {
	Send(ctx context.Context, msg Message) error
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, msg Message) error

func (f TransportFunc) Send(ctx context.Context, msg Message) error { return f(ctx, msg) }

var (
	mu        sync.RWMutex
	transport Transport
)

// SetTransport replaces the process-wide transport.
func SetTransport(t Transport) {
	mu.Lock()
	defer mu.Unlock()
	transport = t
}

// Default returns the configured transport, building it on first use.
func Default(ctx context.Context) (Transport, error) {
	mu.RLock()
	t := transport
	mu.RUnlock()
	if t != nil {
		return t, nil
	}

	t, err := FromConfig(ctx)
	if err != nil {
		return nil, err
	}
	SetTransport(t)
	return t, nil
}

// FromConfig builds the transport named by MAIL_DRIVER.
func FromConfig(ctx context.Context) (Transport, error) {
	switch driver := config.MailDriver(); driver {
	case "smtp":
		return NewSMTP(SMTPConfigFromEnv()), nil
	case "ses":
		return NewSESFromEnv(ctx)
	case "resend":
		return NewResend(config.Get("RESEND_API_KEY", ""), DefaultFrom()), nil
	case "log", "":
		return LogTransport{}, nil
	default:
		return nil, fmt.Errorf("mail: unsupported MAIL_DRIVER %q", driver)
	}
}

// DefaultFrom renders the MAIL_FROM_NAME <MAIL_FROM> sender.
func DefaultFrom() string {
	addr := config.Get("MAIL_FROM", "parts@rigparts.local")
	if name := config.Get("MAIL_FROM_NAME", "RigParts"); name != "" {
		return fmt.Sprintf("%s <%s>", name, addr)
	}
	return addr
}

// Builder assembles a Message fluently.
type Builder struct {
	msg Message
	err error
	via Transport
}

func To(addresses ...string) *Builder {
	return &Builder{msg: Message{To: addresses, From: DefaultFrom()}}
}

func (b *Builder) Subject(s string) *Builder {
	b.msg.Subject = s
	return b
}

func (b *Builder) ReplyTo(addr string) *Builder {
	b.msg.ReplyTo = addr
	return b
}

func (b *Builder) Header(key, value string) *Builder {
	if b.msg.Headers == nil {
		b.msg.Headers = map[string]string{}
	}
	b.msg.Headers[key] = value
	return b
}

// Body sets pre-rendered HTML.
func (b *Builder) Body(html string) *Builder {
	b.msg.HTML = html
	return b
}

// Template renders t with data as the HTML body.
func (b *Builder) Template(t *template.Template, data interface{}) *Builder {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		b.err = fmt.Errorf("mail: render %s: %w", t.Name(), err)
		return b
	}
	b.msg.HTML = buf.String()
	return b
}

// Via overrides the transport for this message.
func (b *Builder) Via(t Transport) *Builder {
	b.via = t
	return b
}

// Message returns the assembled message, or the template error.
func (b *Builder) Message() (Message, error) {
	if b.err != nil {
		return Message{}, b.err
	}
	if len(b.msg.To) == 0 || strings.TrimSpace(b.msg.To[0]) == "" {
		return Message{}, ErrNoRecipient
	}
	return b.msg, nil
}

// Send delivers through Via or the default transport.
func (b *Builder) Send(ctx context.Context) error {
	msg, err := b.Message()
	if err != nil {
		return err
	}

	t := b.via
	if t == nil {
		if t, err = Default(ctx); err != nil {
			return err
		}
	}
	return t.Send(ctx, msg)
}

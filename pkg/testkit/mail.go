package testkit

import (
	"context"
	"errors"
	"sync"

	"github.com/shashiranjanraj/rigparts/pkg/mail"
)

// ErrMailRejected is returned by Mailbox for addresses marked with Reject.
var ErrMailRejected = errors.New("testkit: mailbox rejected recipient")

// Mailbox is a mail.Transport that records every message.
type Mailbox struct {
	mu       sync.Mutex
	sent     []mail.Message
	rejected map[string]bool
}

func NewMailbox() *Mailbox { return &Mailbox{rejected: map[string]bool{}} }

// Reject makes sends to addr fail.
func (m *Mailbox) Reject(addr string) *Mailbox {
	m.mu.Lock()
	m.rejected[addr] = true
	m.mu.Unlock()
	return m
}

func (m *Mailbox) Send(ctx context.Context, msg mail.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, to := range msg.To {
		if m.rejected[to] {
			return ErrMailRejected
		}
	}
	m.sent = append(m.sent, msg)
	return nil
}

// Sent returns a copy of the delivered messages.
func (m *Mailbox) Sent() []mail.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mail.Message(nil), m.sent...)
}

// To returns the delivered messages addressed to addr.
func (m *Mailbox) To(addr string) []mail.Message {
	var out []mail.Message
	for _, msg := range m.Sent() {
		for _, to := range msg.To {
			if to == addr {
				out = append(out, msg)
			}
		}
	}
	return out
}

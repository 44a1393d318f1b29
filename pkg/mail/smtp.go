package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"sort"
	"strings"
	"time"

	"github.com/shashiranjanraj/rigparts/config"
)

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
}

func SMTPConfigFromEnv() SMTPConfig {
	return SMTPConfig{
		Host:     config.Get("MAIL_HOST", "localhost"),
		Port:     config.Get("MAIL_PORT", "587"),
		Username: config.Get("MAIL_USERNAME", ""),
		Password: config.Get("MAIL_PASSWORD", ""),
	}
}

// SMTPTransport speaks SMTP directly: implicit TLS on 465, STARTTLS when
// the server offers it elsewhere. The whole exchange runs under the ctx
// deadline.
type SMTPTransport struct {
	cfg SMTPConfig
}

func NewSMTP(cfg SMTPConfig) *SMTPTransport {
	return &SMTPTransport{cfg: cfg}
}

func (t *SMTPTransport) Send(ctx context.Context, msg Message) error {
	addr := net.JoinHostPort(t.cfg.Host, t.cfg.Port)

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("mail/smtp: dial %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	} else {
		_ = conn.SetDeadline(time.Now().Add(time.Minute))
	}

	if t.cfg.Port == "465" {
		conn = tls.Client(conn, &tls.Config{ServerName: t.cfg.Host})
	}

	client, err := smtp.NewClient(conn, t.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("mail/smtp: handshake: %w", err)
	}
	defer client.Close()

	if t.cfg.Port != "465" {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(&tls.Config{ServerName: t.cfg.Host}); err != nil {
				return fmt.Errorf("mail/smtp: starttls: %w", err)
			}
		}
	}

	if t.cfg.Username != "" {
		if err := client.Auth(smtp.PlainAuth("", t.cfg.Username, t.cfg.Password, t.cfg.Host)); err != nil {
			return fmt.Errorf("mail/smtp: auth: %w", err)
		}
	}

	from, err := mail.ParseAddress(msg.From)
	if err != nil {
		return fmt.Errorf("mail/smtp: from %q: %w", msg.From, err)
	}
	if err := client.Mail(from.Address); err != nil {
		return fmt.Errorf("mail/smtp: MAIL FROM: %w", err)
	}
	for _, rcpt := range msg.To {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("mail/smtp: RCPT %s: %w", rcpt, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("mail/smtp: DATA: %w", err)
	}
	if _, err := w.Write(buildRaw(msg)); err != nil {
		w.Close()
		return fmt.Errorf("mail/smtp: write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("mail/smtp: close data: %w", err)
	}

	return client.Quit()
}

func buildRaw(msg Message) []byte {
	var b strings.Builder
	b.WriteString("From: " + msg.From + "\r\n")
	b.WriteString("To: " + strings.Join(msg.To, ", ") + "\r\n")
	if msg.ReplyTo != "" {
		b.WriteString("Reply-To: " + msg.ReplyTo + "\r\n")
	}
	b.WriteString("Subject: " + mimeEncode(msg.Subject) + "\r\n")
	b.WriteString("Date: " + time.Now().Format(time.RFC1123Z) + "\r\n")

	keys := make([]string, 0, len(msg.Headers))
	for k := range msg.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString(k + ": " + msg.Headers[k] + "\r\n")
	}

	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.HTML)
	return []byte(b.String())
}

func mimeEncode(s string) string {
	for _, r := range s {
		if r > 127 {
			return mime.QEncoding.Encode("utf-8", s)
		}
	}
	return s
}

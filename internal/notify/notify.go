// Package notify delivers alert emails.
//
// A Transport sends one message; the Dispatcher feeds a Transport from
// a bounded queue so slow SMTP servers never stall the tick loop. When
// the queue is full the message is dropped and logged rather than
// blocking the producer.
package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/Phani347-06/crowdsense-core/internal/infrastructure/config"
)

// Message is one outbound notification.
type Message struct {
	To      []string
	Subject string
	Body    string
}

// Transport sends a single message.
type Transport interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPTransport sends mail through an SMTP relay with PLAIN auth over
// STARTTLS (the standard submission setup on port 587).
type SMTPTransport struct {
	cfg config.SMTPConfig
}

// NewSMTPTransport creates a transport from SMTP configuration.
func NewSMTPTransport(cfg config.SMTPConfig) *SMTPTransport {
	return &SMTPTransport{cfg: cfg}
}

// Send implements Transport.
func (t *SMTPTransport) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return ErrNoRecipients
	}
	select {
	case <-ctx.Done():
		return fmt.Errorf("smtp send: %w", ctx.Err())
	default:
	}

	from := t.cfg.From
	if from == "" {
		from = t.cfg.Username
	}

	addr := fmt.Sprintf("%s:%d", t.cfg.Host, t.cfg.Port)
	auth := smtp.PlainAuth("", t.cfg.Username, t.cfg.Password, t.cfg.Host)

	payload := buildMessage(from, msg)
	if err := smtp.SendMail(addr, auth, from, msg.To, payload); err != nil {
		return fmt.Errorf("%w: %w", ErrSendFailed, err)
	}
	return nil
}

// buildMessage assembles the RFC 5322 message bytes.
func buildMessage(from string, msg Message) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(msg.To, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.Body)
	return []byte(b.String())
}

// Package mail delivers outbound email.
//
// Two backends exist: "smtp" sends through gomail, "log" only writes the
// message to the process log and is the default for development.
package mail

import (
	"context"
	"fmt"
	"log"

	"gopkg.in/gomail.v2"

	"github.com/mrlokans/bookstore/internal/config"
)

const (
	PurchaseSubject = "Purchase Notification"
	purchaseBody    = "Thank you for your purchase!\n\nDetails: %s"
)

// Message is a single-recipient plain text email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// PurchaseMessage builds the confirmation sent after a purchase.
func PurchaseMessage(to, details string) Message {
	return Message{
		To:      to,
		Subject: PurchaseSubject,
		Body:    fmt.Sprintf(purchaseBody, details),
	}
}

// Mailer sends messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// New returns the mailer selected by cfg.Backend.
func New(cfg config.Mail) (Mailer, error) {
	switch cfg.Backend {
	case config.MailBackendSMTP:
		return NewSMTPMailer(cfg), nil
	case config.MailBackendLog, "":
		return NewLogMailer(cfg.From, nil), nil
	default:
		return nil, fmt.Errorf("unsupported mail backend %q", cfg.Backend)
	}
}

// SMTPMailer sends through an SMTP relay.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(cfg config.Mail) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return fmt.Errorf("message has no recipient")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.dialer.DialAndSend(m.build(msg)); err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.To, err)
	}
	return nil
}

func (m *SMTPMailer) build(msg Message) *gomail.Message {
	gm := gomail.NewMessage()
	gm.SetHeader("From", m.from)
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/plain", msg.Body)
	return gm
}

// LogMailer writes messages to a logger instead of sending them.
type LogMailer struct {
	from   string
	logger *log.Logger
}

// NewLogMailer creates a LogMailer. A nil logger means the standard logger.
func NewLogMailer(from string, logger *log.Logger) *LogMailer {
	if logger == nil {
		logger = log.Default()
	}
	return &LogMailer{from: from, logger: logger}
}

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	if msg.To == "" {
		return fmt.Errorf("message has no recipient")
	}
	m.logger.Printf("[MAIL] from=%s to=%s subject=%q body=%q", m.from, msg.To, msg.Subject, msg.Body)
	return nil
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package mail hands composed messages off to an SMTP server. Handlers
// depend on the Sender interface so tests and development environments can
// substitute a non-delivering implementation.
package mail

import (
	"context"
	"fmt"
	"log/slog"

	gomail "github.com/wneessen/go-mail"
)

// Message is a plain-text email ready for delivery.
type Message struct {
	Subject string
	Body    string
	To      string
}

// Sender delivers a message from the configured sender address to a single
// recipient. A returned error is a delivery failure; no retries happen here.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPSender delivers messages through an SMTP server using go-mail.
type SMTPSender struct {
	client *gomail.Client
	from   string
}

// NewSMTPSender builds an SMTP-backed sender. The from address is used for
// every outgoing message.
func NewSMTPSender(host string, port int, username, password, from string) (*SMTPSender, error) {
	opts := []gomail.Option{
		gomail.WithPort(port),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
	}
	if username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(username),
			gomail.WithPassword(password),
		)
	}

	client, err := gomail.NewClient(host, opts...)
	if err != nil {
		return nil, fmt.Errorf("mail client: %w", err)
	}
	return &SMTPSender{client: client, from: from}, nil
}

// Send composes and delivers the message synchronously.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	m := gomail.NewMsg()
	if err := m.From(s.from); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return fmt.Errorf("mail to: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(gomail.TypeTextPlain, msg.Body)

	if err := s.client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("mail send: %w", err)
	}
	return nil
}

// LogSender logs messages instead of delivering them. Used in development
// when no SMTP server is configured.
type LogSender struct{}

// NewLogSender builds the non-delivering development sender.
func NewLogSender() LogSender {
	return LogSender{}
}

// Send logs the message and reports success.
func (LogSender) Send(_ context.Context, msg Message) error {
	slog.Info("mail (not sent, no SMTP configured)",
		"to", msg.To,
		"subject", msg.Subject,
	)
	return nil
}

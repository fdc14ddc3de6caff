// Copyright (c) 2026 Keygate. All rights reserved.
// Author: dang.hoanq.dev@gmail.com

/*
Package mail provides the outbound email delivery component.

It speaks plain SMTP with STARTTLS against a configured relay. Delivery
failures are surfaced to the caller as errors — this package makes no retry
or queueing promises.
*/
package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPSender sends HTML email through a single configured SMTP relay.
type SMTPSender struct {
	host     string
	port     string
	username string
	password string
	from     string
}

// NewSMTPSender constructs an [SMTPSender] from relay settings.
func NewSMTPSender(host, port, username, password, from string) *SMTPSender {
	return &SMTPSender{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
}

/*
Send delivers a single HTML message to one recipient.

Parameters:
  - ctx: context.Context (checked before dialing; net/smtp has no mid-flight cancellation)
  - to: Recipient address
  - subject: Message subject line
  - htmlBody: HTML message body

Returns:
  - error: Relay connection or delivery failures
*/
func (sender *SMTPSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("mail: send aborted: %w", err)
	}

	var message strings.Builder
	message.WriteString("From: " + sender.from + "\r\n")
	message.WriteString("To: " + to + "\r\n")
	message.WriteString("Subject: " + subject + "\r\n")
	message.WriteString("MIME-Version: 1.0\r\n")
	message.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	message.WriteString("\r\n")
	message.WriteString(htmlBody)

	addr := sender.host + ":" + sender.port

	var auth smtp.Auth
	if sender.username != "" {
		auth = smtp.PlainAuth("", sender.username, sender.password, sender.host)
	}

	if err := smtp.SendMail(addr, auth, sender.from, []string{to}, []byte(message.String())); err != nil {
		return fmt.Errorf("mail: smtp delivery to %s failed: %w", to, err)
	}

	return nil
}

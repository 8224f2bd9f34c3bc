// Package mailer delivers the fleet report by email.
package mailer

import (
	"crypto/tls"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/user/fleetwatch/internal/util"
)

// Mailer sends the HTML report with the spreadsheet attached.
type Mailer struct {
	config *util.Config
}

// New creates a mailer from the SMTP configuration.
func New(cfg *util.Config) *Mailer {
	return &Mailer{config: cfg}
}

// Send delivers the report body to the configured recipients. The
// attachment is optional; pass "" to send the report alone.
func (m *Mailer) Send(htmlBody, attachmentPath string) error {
	cfg := m.config
	if cfg.SMTPServer == "" {
		return fmt.Errorf("smtp server not configured")
	}
	if len(cfg.EmailTo) == 0 {
		return fmt.Errorf("no email recipients configured")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", cfg.EmailUsername)
	msg.SetHeader("To", cfg.EmailTo...)
	msg.SetHeader("Subject", cfg.EmailSubject)
	msg.SetBody("text/html", htmlBody)

	if attachmentPath != "" {
		msg.Attach(attachmentPath)
	}

	dialer := gomail.NewDialer(cfg.SMTPServer, cfg.SMTPPort, cfg.EmailUsername, cfg.EmailPassword)
	if cfg.SMTPStartTLS {
		dialer.TLSConfig = &tls.Config{ServerName: cfg.SMTPServer}
	}
	if !cfg.SMTPLogin {
		dialer.Username = ""
		dialer.Password = ""
	}

	if err := dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	util.Info("Email sent to %d recipients", len(cfg.EmailTo))

	return nil
}

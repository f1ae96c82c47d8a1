// internal/app/system/mailer/mailer.go
package mailer

import (
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"
)

// Email is one outbound message.
type Email struct {
	To       string
	Subject  string
	TextBody string
}

// Sender delivers email. The SMTP implementation below is the real
// one; features take the interface so tests can capture mail.
type Sender interface {
	Send(email Email) error
}

// SMTPSender delivers mail over plain SMTP (Mailpit locally, a relay
// in production).
type SMTPSender struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	Log      *zap.Logger
}

func (s *SMTPSender) Send(email Email) error {
	addr := fmt.Sprintf("%s:%d", s.Host, s.Port)

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s <%s>\r\n", s.FromName, s.From)
	fmt.Fprintf(&msg, "To: %s\r\n", email.To)
	fmt.Fprintf(&msg, "Subject: %s\r\n", email.Subject)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n")
	msg.WriteString(email.TextBody)

	var auth smtp.Auth
	if s.Username != "" {
		auth = smtp.PlainAuth("", s.Username, s.Password, s.Host)
	}

	if err := smtp.SendMail(addr, auth, s.From, []string{email.To}, []byte(msg.String())); err != nil {
		return fmt.Errorf("send mail to %s: %w", email.To, err)
	}
	if s.Log != nil {
		s.Log.Debug("email sent", zap.String("to", email.To), zap.String("subject", email.Subject))
	}
	return nil
}

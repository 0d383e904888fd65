package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/taskmate/apiserver/config"
)

// SMTPSender delivers mail directly over SMTP.
type SMTPSender struct {
	addr string
	auth smtp.Auth
	from string
}

// NewSMTPSender constructs an SMTP sender from config.
func NewSMTPSender(cfg config.SMTPConfig, from string) (*SMTPSender, error) {
	if strings.TrimSpace(cfg.Host) == "" {
		return nil, fmt.Errorf("smtp host is required")
	}

	var auth smtp.Auth
	if cfg.User != "" {
		auth = smtp.PlainAuth("", cfg.User, cfg.Password, cfg.Host)
	}

	return &SMTPSender{
		addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		auth: auth,
		from: from,
	}, nil
}

func (s *SMTPSender) Send(_ context.Context, msg Message) error {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", s.from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(msg.Body)

	return smtp.SendMail(s.addr, s.auth, s.from, []string{msg.To}, []byte(b.String()))
}

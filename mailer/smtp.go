package mailer

import (
	"bytes"
	"fmt"
	"net/smtp"
	"strings"
)

type SMTPMailer struct {
	Host     string
	Port     int
	From     string
	FromName string
	User     string
	Pass     string
}

func NewSMTPMailer(host string, port int, from, fromName, user, pass string) *SMTPMailer {
	return &SMTPMailer{
		Host:     strings.TrimSpace(host),
		Port:     port,
		From:     strings.TrimSpace(from),
		FromName: fromName,
		User:     strings.TrimSpace(user),
		Pass:     strings.TrimSpace(pass),
	}
}

func (s *SMTPMailer) addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Verify dials the server once so a bad host or port shows up in the
// startup logs instead of on the first payment.
func (s *SMTPMailer) Verify() error {
	c, err := smtp.Dial(s.addr())
	if err != nil {
		return err
	}
	return c.Close()
}

func (s *SMTPMailer) Send(toEmail, subject, html string) error {
	toEmail = strings.TrimSpace(toEmail)
	if toEmail == "" {
		return fmt.Errorf("empty recipient email")
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %q <%s>\r\n", s.FromName, s.From)
	fmt.Fprintf(&buf, "To: %s\r\n", toEmail)
	fmt.Fprintf(&buf, "Subject: %s\r\n", subject)
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: text/html; charset=utf-8\r\n\r\n")
	fmt.Fprintf(&buf, "%s\r\n", html)

	// SendMail upgrades to STARTTLS when the server advertises it.
	var auth smtp.Auth
	if s.User != "" {
		auth = smtp.PlainAuth("", s.User, s.Pass, s.Host)
	}
	return smtp.SendMail(s.addr(), auth, s.From, []string{toEmail}, buf.Bytes())
}

package mailer

import "tabletalk-server/logger"

// DevMailer logs messages instead of sending them.
type DevMailer struct{}

func NewDevMailer() *DevMailer {
	return &DevMailer{}
}

func (d *DevMailer) Verify() error {
	return nil
}

func (d *DevMailer) Send(toEmail, subject, html string) error {
	logger.Info("📧 [DEV MAIL]",
		"to", toEmail,
		"subject", subject,
		"body", html,
	)
	return nil
}

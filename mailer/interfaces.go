package mailer

// Service is the notification transport. Send is fallible but callers
// treat it as fire-and-forget; Verify is a one-time startup readiness
// check whose failure is logged, never fatal.
type Service interface {
	Send(toEmail, subject, html string) error
	Verify() error
}

package notify

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
)

// Email sends alerts over SMTP (STARTTLS) from a fixed sender to a fixed
// recipient.
type Email struct {
	Host      string
	Port      int
	Username  string
	Password  string
	Sender    string
	Recipient string
}

// NewEmail returns nil unless host, sender and recipient are all set.
func NewEmail(s Settings) *Email {
	if s.SMTPHost == "" || s.Sender == "" || s.Recipient == "" {
		return nil
	}
	port := s.SMTPPort
	if port == 0 {
		port = 587
	}
	user := s.SMTPUsername
	if user == "" {
		user = s.Sender
	}
	return &Email{
		Host:      s.SMTPHost,
		Port:      port,
		Username:  user,
		Password:  s.SMTPPassword,
		Sender:    s.Sender,
		Recipient: s.Recipient,
	}
}

func (e *Email) message(subject, body string) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(e.Sender); err != nil {
		return nil, fmt.Errorf("email: sender: %w", err)
	}
	if err := m.To(e.Recipient); err != nil {
		return nil, fmt.Errorf("email: recipient: %w", err)
	}
	m.Subject(subject)
	m.SetBodyString(mail.TypeTextPlain, body)
	return m, nil
}

func (e *Email) Send(ctx context.Context, subject, body string) error {
	if e == nil {
		return ErrDisabled
	}
	m, err := e.message(subject, body)
	if err != nil {
		return err
	}

	opts := []mail.Option{
		mail.WithPort(e.Port),
		mail.WithTLSPolicy(mail.TLSMandatory),
	}
	if e.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(e.Username),
			mail.WithPassword(e.Password),
		)
	}
	c, err := mail.NewClient(e.Host, opts...)
	if err != nil {
		return fmt.Errorf("email: client: %w", err)
	}
	if err := c.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("email: send to %s: %w", e.Recipient, err)
	}
	return nil
}

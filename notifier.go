package accounts

import (
	"context"
	"crypto/tls"

	mail "github.com/go-mail/mail"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
)

// NotifierMessage is the structured payload handed to the delivery transport.
type NotifierMessage struct {
	To      string
	Subject string
	Body    string
}

// Notifier delivers messages out-of-band. Failures never change the outcome
// of the workflow that triggered the notification; callers log and move on.
type Notifier interface {
	Send(ctx context.Context, msg NotifierMessage) error
}

// SMTPNotifier delivers over SMTP using go-mail.
type SMTPNotifier struct {
	Host               string
	Port               int
	From               string
	User               string
	Pass               string
	SSL                bool
	InsecureSkipVerify bool
}

var _ Notifier = (*SMTPNotifier)(nil)

func NewSMTPNotifier(host string, port int, from, user, pass string) *SMTPNotifier {
	return &SMTPNotifier{
		Host: host,
		Port: port,
		From: from,
		User: user,
		Pass: pass,
	}
}

func (s *SMTPNotifier) Send(ctx context.Context, msg NotifierMessage) error {
	select {
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), errors.CategoryOperation, "context cancelled before email send")
	default:
	}

	m := mail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.Body)

	d := mail.NewDialer(s.Host, s.Port, s.User, s.Pass)
	d.SSL = s.SSL
	d.TLSConfig = &tls.Config{
		ServerName:         s.Host,
		InsecureSkipVerify: s.InsecureSkipVerify,
	}

	if err := d.DialAndSend(m); err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "smtp send failed")
	}

	return nil
}

// LogNotifier writes notifications to the logger instead of delivering them.
// Default for development and tests.
type LogNotifier struct {
	Logger Logger
}

var _ Notifier = (*LogNotifier)(nil)

func (n LogNotifier) Send(_ context.Context, msg NotifierMessage) error {
	logger := n.Logger
	if logger == nil {
		logger = defLogger{}
	}
	logger.Info("email notification", "message", print.MaybePrettyJSON(msg))
	return nil
}

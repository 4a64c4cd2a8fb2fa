package utils

import (
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"

	"github.com/meinhoongagan/household-services/metrics"
)

type Attachment struct {
	Name string
	Data []byte
}

// Email is one outgoing message. Either Text or HTML (or both) is set.
type Email struct {
	To          string
	Subject     string
	Text        string
	HTML        string
	Kind        string
	Attachments []Attachment
}

type Mailer interface {
	Send(msg Email) error
}

// SMTPMailer delivers mail through an SMTP relay (MailHog in development).
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	d := gomail.NewDialer(host, port, username, password)
	return &SMTPMailer{dialer: d, from: from}
}

func (m *SMTPMailer) Send(msg Email) error {
	gm := gomail.NewMessage()
	gm.SetHeader("From", m.from)
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)

	switch {
	case msg.HTML != "" && msg.Text != "":
		gm.SetBody("text/plain", msg.Text)
		gm.AddAlternative("text/html", msg.HTML)
	case msg.HTML != "":
		gm.SetBody("text/html", msg.HTML)
	default:
		gm.SetBody("text/plain", msg.Text)
	}

	for _, a := range msg.Attachments {
		data := a.Data
		gm.Attach(a.Name, gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(data)
			return err
		}))
	}

	if err := m.dialer.DialAndSend(gm); err != nil {
		metrics.EmailsSent.WithLabelValues(msg.Kind, "error").Inc()
		return fmt.Errorf("send email to %s: %w", msg.To, err)
	}
	metrics.EmailsSent.WithLabelValues(msg.Kind, "sent").Inc()
	log.WithFields(log.Fields{"to": msg.To, "subject": msg.Subject}).Info("email sent")
	return nil
}

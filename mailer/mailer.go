package mailer

import (
	"io"

	gomail "gopkg.in/gomail.v2"
)

type Message struct {
	To             string
	Subject        string
	HTML           string
	Attachment     []byte
	AttachmentName string
}

type Mailer interface {
	Send(m Message) error
}

// SMTPMailer delivers through a plain SMTP relay. Attachments are written
// from memory, nothing touches disk.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTP(host string, port int, user, pass string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, user, pass),
		from:   user,
	}
}

func (s *SMTPMailer) Send(m Message) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", m.To)
	msg.SetHeader("Subject", m.Subject)
	msg.SetBody("text/html", m.HTML)

	if m.Attachment != nil {
		attachment := m.Attachment
		msg.Attach(m.AttachmentName, gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(attachment)
			return err
		}))
	}

	return s.dialer.DialAndSend(msg)
}

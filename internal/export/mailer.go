package export

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

// Sender delivers a composed message
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer emails CSV exports as attachments
type Mailer struct {
	from   string
	sender Sender
}

// NewMailer creates a mailer that sends through the given SMTP server
func NewMailer(host string, port int, username, password string) *Mailer {
	return &Mailer{
		from:   username,
		sender: gomail.NewDialer(host, port, username, password),
	}
}

// Send mails data to recipient as an attachment named filename
func (m *Mailer) Send(recipient, filename string, data []byte, resultCount int) error {
	if recipient == "" {
		return fmt.Errorf("recipient is required")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", recipient)
	msg.SetHeader("Subject", fmt.Sprintf("Reddit search export - %s (%d results)", filename, resultCount))
	msg.SetBody("text/plain", fmt.Sprintf("Attached are %d search results exported as %s.\n", resultCount, filename))
	msg.Attach(filename,
		gomail.SetHeader(map[string][]string{"Content-Type": {ContentType}}),
		gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(data)
			return err
		}),
	)

	if err := m.sender.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	logrus.Infof("Emailed %s to %s", filename, recipient)
	return nil
}

package lib

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/wneessen/go-mail"
)

type SMTPNotifier struct {
	client   *mail.Client
	from     string
	fromName string
}

func GetSMTPClient(host string, port int, user, pass string) (*mail.Client, error) {
	c, err := mail.NewClient(
		host,
		mail.WithPort(port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(user),
		mail.WithPassword(pass),
	)
	if err != nil {
		log.Printf("Could not initialize smtp client: %s\n", err.Error())
		return nil, err
	}
	return c, nil
}

func NewSMTPNotifier(client *mail.Client, from, fromName string) *SMTPNotifier {
	return &SMTPNotifier{client: client, from: from, fromName: fromName}
}

func (s *SMTPNotifier) Name() string {
	return "smtp"
}

func (s *SMTPNotifier) Send(ctx context.Context, to, subject, body string) error {
	msg, err := s.newMessage(to, subject, body)
	if err != nil {
		return err
	}
	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("error sending mail to %s: %w", to, err)
	}
	return nil
}

func (s *SMTPNotifier) newMessage(to, subject, body string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.from); err != nil {
		return nil, fmt.Errorf("failed to set From address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("failed to set To address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, body)
	return msg, nil
}

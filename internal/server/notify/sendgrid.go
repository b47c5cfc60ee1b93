package notify

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendgridSender delivers notifications through the SendGrid API.
type SendgridSender struct {
	apiKey string
	from   string
}

func NewSendgridSender(apiKey, from string) *SendgridSender {
	return &SendgridSender{apiKey: apiKey, from: from}
}

func (s *SendgridSender) Send(ctx context.Context, msg Message) error {
	from := mail.NewEmail("VideoHosting", s.from)
	to := mail.NewEmail("", msg.Recipient)

	m := mail.NewSingleEmail(from, msg.Subject, to, msg.Body, msg.Body)

	client := sendgrid.NewSendClient(s.apiKey)
	resp, err := client.SendWithContext(ctx, m)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid status %d", resp.StatusCode)
	}

	return nil
}

package email

import (
	"fmt"
	"html"
	"net/http"
	"time"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

// Sender delivers messages; *sendgrid.Client satisfies it
type Sender interface {
	Send(email *mail.SGMailV3) (*rest.Response, error)
}

// Client e-mails the lab report through SendGrid
type Client struct {
	sender Sender
	from   *mail.Email
	to     *mail.Email
	logger *zap.Logger
}

// NewClient creates a SendGrid backed client
func NewClient(apiKey, from, to string, logger *zap.Logger) *Client {
	return NewClientWithSender(sendgrid.NewSendClient(apiKey), from, to, logger)
}

// NewClientWithSender creates a client delivering through sender
func NewClientWithSender(sender Sender, from, to string, logger *zap.Logger) *Client {
	return &Client{
		sender: sender,
		from:   mail.NewEmail("Lab Finder", from),
		to:     mail.NewEmail("", to),
		logger: logger,
	}
}

// Subject returns the subject line for the report of the given day
func Subject(day time.Time) string {
	return "Lab availability for " + day.Format("Mon Jan 2")
}

// NewMessage builds the report e-mail
func (c *Client) NewMessage(day time.Time, text string) *mail.SGMailV3 {
	body := "<pre>" + html.EscapeString(text) + "</pre>"
	return mail.NewSingleEmail(c.from, Subject(day), c.to, text, body)
}

// SendReport e-mails the rendered report
func (c *Client) SendReport(day time.Time, text string) error {
	resp, err := c.sender.Send(c.NewMessage(day, text))
	if err != nil {
		return fmt.Errorf("failed to send e-mail: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("e-mail failed with status: %d", resp.StatusCode)
	}

	c.logger.Info("report e-mailed", zap.String("to", c.to.Address))
	return nil
}

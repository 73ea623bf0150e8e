package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/mmfactory/pizzeria-backend/pkg/config"
	"github.com/mmfactory/pizzeria-backend/pkg/logger"
)

// Message is a single transactional email.
type Message struct {
	ToName    string
	ToEmail   string
	Subject   string
	HTML      string
	PlainText string
}

// Sender delivers transactional email. Satisfied by *Client and by test fakes.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Client wraps the SendGrid v3 mail API with the configured sender identity.
type Client struct {
	api       *sendgrid.Client
	fromName  string
	fromEmail string
}

// New builds a mail client from config. The API key and from address are required.
func New(ctx context.Context, cfg config.MailerConfig, logg *logger.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("sendgrid api key is required")
	}
	if strings.TrimSpace(cfg.FromEmail) == "" {
		return nil, errors.New("mail from address is required")
	}

	if logg != nil {
		logg.Info(ctx, "sendgrid mail client initialized")
	}

	return &Client{
		api:       sendgrid.NewSendClient(cfg.APIKey),
		fromName:  cfg.FromName,
		fromEmail: cfg.FromEmail,
	}, nil
}

// Send delivers msg through SendGrid. Non-2xx API responses are returned as errors.
func (c *Client) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.ToEmail) == "" {
		return errors.New("recipient email is required")
	}

	from := mail.NewEmail(c.fromName, c.fromEmail)
	to := mail.NewEmail(msg.ToName, msg.ToEmail)
	email := mail.NewSingleEmail(from, msg.Subject, to, msg.PlainText, msg.HTML)

	resp, err := c.api.SendWithContext(ctx, email)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid send: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

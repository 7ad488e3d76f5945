package email

import (
	"context"
	"fmt"

	"github.com/membermatters/memberportal/internal/config"
	"github.com/resend/resend-go/v2"
)

// Client wraps the resend API client. A disabled client swallows sends.
type Client struct {
	client      *resend.Client
	enabled     bool
	fromAddress string
	fromName    string
}

// NewClient creates a new email client from configuration
func NewClient(cfg *config.Configuration) *Client {
	if !cfg.Email.Enabled || cfg.Email.APIKey == "" {
		return &Client{enabled: false}
	}

	return &Client{
		client:      resend.NewClient(cfg.Email.APIKey),
		enabled:     true,
		fromAddress: cfg.Email.FromAddress,
		fromName:    cfg.Email.FromName,
	}
}

// IsEnabled returns whether the email client is enabled
func (c *Client) IsEnabled() bool {
	return c.enabled
}

// From returns the formatted sender address.
func (c *Client) From() string {
	if c.fromName == "" {
		return c.fromAddress
	}
	return fmt.Sprintf("%s <%s>", c.fromName, c.fromAddress)
}

// Send sends a plain text email to one recipient.
func (c *Client) Send(ctx context.Context, to, subject, text string) (string, error) {
	if !c.enabled {
		return "", fmt.Errorf("email client is disabled")
	}

	params := &resend.SendEmailRequest{
		From:    c.From(),
		To:      []string{to},
		Subject: subject,
		Text:    text,
	}

	sent, err := c.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return "", fmt.Errorf("failed to send email: %w", err)
	}

	return sent.Id, nil
}

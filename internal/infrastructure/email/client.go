// Package email provides the email client for sending transactional emails.
package email

import (
	"errors"
	"fmt"

	"github.com/resendlabs/resend-go"

	"github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/email/templates"
)

// ErrNotConfigured is returned by NewService when no API key is set.
var ErrNotConfigured = errors.New("RESEND_API_KEY is required for email notices")

// Service defines the interface for sending emails, allowing for mock implementations in tests.
type Service interface {
	SendPublishNotice(toEmail string, props templates.PublishNoticeProps) error
}

// ResendClient is the concrete implementation of the email Service using the Resend API.
type ResendClient struct {
	client    *resend.Client
	fromEmail string
	fromName  string
}

// NewService creates a new email service client, returning the Service interface.
func NewService(apiKey, fromEmail, fromName string) (Service, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	if fromEmail == "" {
		fromEmail = "builder@example.com"
	}
	if fromName == "" {
		fromName = "FlexiBuilder"
	}
	return &ResendClient{
		client:    resend.NewClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
	}, nil
}

// ComposePublishNotice returns the subject and HTML body of a publish notice.
func ComposePublishNotice(props templates.PublishNoticeProps) (string, string) {
	title := props.DocumentTitle
	if title == "" {
		title = "Untitled Page"
	}
	subject := fmt.Sprintf("Published: %s", title)
	html := templates.GetEmailLayout(templates.EmailLayoutProps{
		Preheader: subject,
		Content:   templates.GetPublishNoticeContent(props),
	})
	return subject, html
}

// SendPublishNotice composes and sends the publish notice email.
func (c *ResendClient) SendPublishNotice(toEmail string, props templates.PublishNoticeProps) error {
	subject, html := ComposePublishNotice(props)
	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", c.fromName, c.fromEmail),
		To:      []string{toEmail},
		Subject: subject,
		Html:    html,
	}
	if _, err := c.client.Emails.Send(params); err != nil {
		return fmt.Errorf("failed to send publish notice via Resend: %w", err)
	}
	return nil
}

// Package ses wraps the backend's email sending and template endpoints.
package ses

import (
	"context"
	"fmt"

	"github.com/nhle/cloudconsole/internal/backend"
)

// EmailOptions is a plain email. Empty address lists are omitted.
type EmailOptions struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
	IsHTML  bool     `json:"isHtml"`
	Cc      []string `json:"cc,omitempty"`
	Bcc     []string `json:"bcc,omitempty"`
	ReplyTo []string `json:"replyTo,omitempty"`
}

// TemplatedEmailOptions is an email rendered from a stored template.
type TemplatedEmailOptions struct {
	To           []string       `json:"to"`
	TemplateName string         `json:"templateName"`
	TemplateData map[string]any `json:"templateData"`
	Cc           []string       `json:"cc,omitempty"`
	Bcc          []string       `json:"bcc,omitempty"`
	ReplyTo      []string       `json:"replyTo,omitempty"`
}

type bulkRequest struct {
	Recipients []string `json:"recipients"`
	Subject    string   `json:"subject"`
	Body       string   `json:"body"`
	IsHTML     bool     `json:"isHtml"`
}

// EmailTemplate is a stored email template.
type EmailTemplate struct {
	Name     string `json:"name"`
	Subject  string `json:"subject"`
	HTMLBody string `json:"htmlBody"`
	TextBody string `json:"textBody,omitempty"`
}

// TemplateSummary is one row of the template listing.
type TemplateSummary struct {
	Name             string `json:"name"`
	CreatedTimestamp string `json:"createdTimestamp,omitempty"`
}

// SendResult identifies a sent email.
type SendResult struct {
	MessageID string `json:"messageId"`
}

// Service issues email requests against the backend.
type Service struct {
	client *backend.Client
}

// New creates an email service on top of client.
func New(client *backend.Client) *Service {
	return &Service{client: client}
}

// Send delivers a plain email.
func (s *Service) Send(
	ctx context.Context,
	opts EmailOptions,
) (*backend.Response[SendResult], error) {
	var resp backend.Response[SendResult]
	if err := s.client.Post(ctx, "/ses/send", opts, &resp); err != nil {
		return nil, fmt.Errorf("sending email: %w", err)
	}
	return &resp, nil
}

// SendTemplated delivers an email rendered from a template.
func (s *Service) SendTemplated(
	ctx context.Context,
	opts TemplatedEmailOptions,
) (*backend.Response[SendResult], error) {
	var resp backend.Response[SendResult]
	if err := s.client.Post(ctx, "/ses/send-templated", opts, &resp); err != nil {
		return nil, fmt.Errorf("sending templated email %s: %w", opts.TemplateName, err)
	}
	return &resp, nil
}

// SendBulk sends the same email to every recipient in one request.
// Per-recipient results, if any, are left in the raw data.
func (s *Service) SendBulk(
	ctx context.Context,
	recipients []string,
	subject string,
	body string,
	isHTML bool,
) (*backend.Response[backend.Raw], error) {
	req := bulkRequest{
		Recipients: recipients,
		Subject:    subject,
		Body:       body,
		IsHTML:     isHTML,
	}

	var resp backend.Response[backend.Raw]
	if err := s.client.Post(ctx, "/ses/send-bulk", req, &resp); err != nil {
		return nil, fmt.Errorf("sending bulk email to %d recipients: %w", len(recipients), err)
	}
	return &resp, nil
}

// CreateTemplate stores a new template.
func (s *Service) CreateTemplate(
	ctx context.Context,
	tpl EmailTemplate,
) (*backend.Response[backend.Raw], error) {
	var resp backend.Response[backend.Raw]
	if err := s.client.Post(ctx, "/ses/templates", tpl, &resp); err != nil {
		return nil, fmt.Errorf("creating template %s: %w", tpl.Name, err)
	}
	return &resp, nil
}

// UpdateTemplate replaces the template stored under name.
func (s *Service) UpdateTemplate(
	ctx context.Context,
	name string,
	tpl EmailTemplate,
) (*backend.Response[backend.Raw], error) {
	var resp backend.Response[backend.Raw]
	if err := s.client.Put(ctx, "/ses/templates/"+backend.EscapePath(name), tpl, &resp); err != nil {
		return nil, fmt.Errorf("updating template %s: %w", name, err)
	}
	return &resp, nil
}

// DeleteTemplate removes the template stored under name.
func (s *Service) DeleteTemplate(
	ctx context.Context,
	name string,
) (*backend.Response[backend.Raw], error) {
	var resp backend.Response[backend.Raw]
	if err := s.client.Delete(ctx, "/ses/templates/"+backend.EscapePath(name), &resp); err != nil {
		return nil, fmt.Errorf("deleting template %s: %w", name, err)
	}
	return &resp, nil
}

// ListTemplates returns the stored templates.
func (s *Service) ListTemplates(
	ctx context.Context,
) (*backend.Response[[]TemplateSummary], error) {
	var resp backend.Response[[]TemplateSummary]
	if err := s.client.Get(ctx, "/ses/templates", nil, &resp); err != nil {
		return nil, fmt.Errorf("listing templates: %w", err)
	}
	return &resp, nil
}

// GetTemplate returns the full template stored under name.
func (s *Service) GetTemplate(
	ctx context.Context,
	name string,
) (*backend.Response[EmailTemplate], error) {
	var resp backend.Response[EmailTemplate]
	if err := s.client.Get(ctx, "/ses/templates/"+backend.EscapePath(name), nil, &resp); err != nil {
		return nil, fmt.Errorf("loading template %s: %w", name, err)
	}
	return &resp, nil
}

package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/http"
	textTemplate "text/template"

	"github.com/Zachkp/portfolio/internal/config"
	"github.com/Zachkp/portfolio/internal/logger"
	"github.com/resend/resend-go/v2"
)

// emailSender is the slice of resend.EmailsSvc this package uses.
type emailSender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// Template renders one contact message from the template params.
type Template struct {
	Subject *textTemplate.Template
	HTML    *template.Template
}

// DefaultTemplateID names the built-in contact template.
const DefaultTemplateID = config.ResendTemplateID

// DefaultTemplates returns the built-in templates keyed by template id.
func DefaultTemplates() map[string]Template {
	return map[string]Template{
		DefaultTemplateID: {
			Subject: textTemplate.Must(textTemplate.New("subject").Parse(contactSubjectTemplate)),
			HTML:    template.Must(template.New("html").Parse(contactHTMLTemplate)),
		},
	}
}

// Resend relays contact messages through the Resend API. The public key is
// the Resend API key; service and template ids are checked locally so the
// caller sees the same failures it would from a hosted template service.
type Resend struct {
	serviceID   string
	apiKey      string
	fromAddress string
	fromName    string
	templates   map[string]Template
	emails      emailSender
}

// NewResend returns a Resend relay accepting the given service id.
func NewResend(serviceID, apiKey, fromAddress, fromName string, templates map[string]Template) *Resend {
	client := resend.NewClient(apiKey)
	return newResendWithSender(serviceID, apiKey, fromAddress, fromName, templates, client.Emails)
}

func newResendWithSender(serviceID, apiKey, fromAddress, fromName string, templates map[string]Template, emails emailSender) *Resend {
	if templates == nil {
		templates = DefaultTemplates()
	}
	if fromAddress == "" {
		fromAddress = "onboarding@resend.dev"
	}
	return &Resend{
		serviceID:   serviceID,
		apiKey:      apiKey,
		fromAddress: fromAddress,
		fromName:    fromName,
		templates:   templates,
		emails:      emails,
	}
}

// Send renders the template and submits it to Resend.
func (r *Resend) Send(ctx context.Context, serviceID, templateID string, params map[string]string) (Response, error) {
	log := logger.GetLogger()

	if r.apiKey == "" {
		return Response{Status: http.StatusUnauthorized, Text: TextInvalidPublicKey}, nil
	}
	if serviceID != r.serviceID {
		return Response{Status: http.StatusBadRequest, Text: TextInvalidServiceID}, nil
	}
	tmpl, ok := r.templates[templateID]
	if !ok {
		return Response{Status: http.StatusBadRequest, Text: TextInvalidTemplateID}, nil
	}

	var subject bytes.Buffer
	if err := tmpl.Subject.Execute(&subject, params); err != nil {
		return Response{}, fmt.Errorf("failed to execute subject template: %w", err)
	}
	var html bytes.Buffer
	if err := tmpl.HTML.Execute(&html, params); err != nil {
		return Response{}, fmt.Errorf("failed to execute html template: %w", err)
	}

	from := r.fromAddress
	if r.fromName != "" {
		from = fmt.Sprintf("%s <%s>", r.fromName, r.fromAddress)
	}
	req := &resend.SendEmailRequest{
		From:    from,
		To:      []string{params[ParamRecipientEmail]},
		Subject: subject.String(),
		Html:    html.String(),
		Text:    params[ParamMessage],
		ReplyTo: params[ParamReplyTo],
	}

	sent, err := r.emails.SendWithContext(ctx, req)
	if err != nil {
		log.Errorw("Resend send failed",
			"error", err,
			"reply_to", logger.MaskEmail(params[ParamReplyTo]))
		return Response{}, fmt.Errorf("resend send failed: %w", err)
	}

	id := ""
	if sent != nil {
		id = sent.Id
	}
	return Response{Status: http.StatusOK, Text: id}, nil
}

const contactSubjectTemplate = `Portfolio Contact: {{index . "sender_name"}}`

const contactHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>New portfolio message</title>
</head>
<body style="font-family: sans-serif; color: #333333;">
    <p>Hi {{index . "recipient_name"}},</p>
    <p>New contact form submission from your portfolio:</p>
    <p><strong>Name:</strong> {{index . "sender_name"}}<br/>
       <strong>Email:</strong> {{index . "sender_email"}}</p>
    <p style="white-space: pre-wrap;">{{index . "message"}}</p>
    <hr/>
    <p style="font-size: 12px; color: #777777;">Sent from your portfolio contact form</p>
</body>
</html>`

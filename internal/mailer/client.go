// Package mailer holds the outbound message-send clients used by the contact
// form: the EmailJS REST API and Resend.
package mailer

import (
	"context"
	"net/http"
)

// Template parameter keys sent with every contact message.
const (
	ParamSenderName     = "sender_name"
	ParamSenderEmail    = "sender_email"
	ParamRecipientName  = "recipient_name"
	ParamRecipientEmail = "recipient_email"
	ParamMessage        = "message"
	ParamReplyTo        = "reply_to"
)

// Canonical provider failure texts. Clients normalize provider-specific
// wording to these so callers can classify by substring.
const (
	TextInvalidTemplateID = "Invalid template ID"
	TextInvalidServiceID  = "Invalid service ID"
	TextInvalidPublicKey  = "Invalid public key"
)

// Response is the settled result of a send. Status 200 means delivered.
type Response struct {
	Status int
	Text   string
}

// OK reports whether the provider accepted the message.
func (r Response) OK() bool {
	return r.Status == http.StatusOK
}

// Client sends one templated message. A non-nil error means the request
// itself failed (transport, cancellation); a provider rejection comes back
// as a Response with a non-200 Status.
type Client interface {
	Send(ctx context.Context, serviceID, templateID string, params map[string]string) (Response, error)
}

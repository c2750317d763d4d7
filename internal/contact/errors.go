package contact

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Zachkp/portfolio/internal/mailer"
)

// Kind classifies why an attempt ended in PhaseError.
type Kind string

const (
	KindConfiguration  Kind = "CONFIGURATION_ERROR"
	KindValidation     Kind = "VALIDATION_ERROR"
	KindTimeout        Kind = "TIMEOUT_ERROR"
	KindProviderConfig Kind = "PROVIDER_CONFIG_ERROR"
	KindUnknownSend    Kind = "UNKNOWN_SEND_ERROR"
)

// Error is a contact form failure. Message is safe to show the visitor;
// Detail and Raw are for logs.
type Error struct {
	Kind    Kind
	Message string
	Detail  string
	Raw     error
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Raw }

func newError(kind Kind, message, detail string, raw error) *Error {
	return &Error{Kind: kind, Message: message, Detail: detail, Raw: raw}
}

// KindOf returns the Kind of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// ClassifySendFailure maps a failed send to an *Error. text is the provider
// response text (may be empty) and err the transport error (may be nil).
func ClassifySendFailure(text string, err error) *Error {
	detail := text
	if err != nil {
		if detail != "" {
			detail += ": "
		}
		detail += err.Error()
	}

	switch {
	case strings.Contains(detail, mailer.TextInvalidTemplateID):
		return newError(KindProviderConfig, MsgTemplateMisconfig, detail, err)
	case strings.Contains(detail, mailer.TextInvalidServiceID),
		strings.Contains(detail, mailer.TextInvalidPublicKey):
		return newError(KindProviderConfig, MsgServiceMisconfig, detail, err)
	case strings.Contains(detail, "Request timed out"),
		errors.Is(err, context.DeadlineExceeded):
		return newError(KindTimeout, MsgTookTooLong, detail, err)
	default:
		return newError(KindUnknownSend, MsgUnknownSendFailure, detail, err)
	}
}

// Package contact implements the portfolio contact form: field state,
// validation, a timed outbound send and the status shown to the visitor.
package contact

import (
	"errors"
	"regexp"
	"strings"
)

// Phase is the lifecycle state of the contact form.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseSending Phase = "sending"
	PhaseSuccess Phase = "success"
	PhaseError   Phase = "error"
)

// Field names a FormData field.
type Field string

const (
	FieldName    Field = "name"
	FieldEmail   Field = "email"
	FieldMessage Field = "message"
)

// ErrUnknownField is returned by UpdateField for names outside Field.
var ErrUnknownField = errors.New("unknown form field")

// ParseField maps a form input name to a Field.
func ParseField(name string) (Field, error) {
	switch Field(name) {
	case FieldName, FieldEmail, FieldMessage:
		return Field(name), nil
	}
	return "", ErrUnknownField
}

// FormData is what the visitor typed.
type FormData struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// FormStatus is the banner state of the form. It is always replaced as a
// whole, never edited in place.
type FormStatus struct {
	Phase   Phase  `json:"phase"`
	Message string `json:"message"`
}

// Sending reports whether an attempt is in flight.
func (s FormStatus) Sending() bool { return s.Phase == PhaseSending }

var idleStatus = FormStatus{Phase: PhaseIdle}

// Visitor-facing messages.
const (
	MsgSent               = "Message sent successfully! I will get back to you soon."
	MsgMissingFields      = "Please fill in all fields"
	MsgInvalidEmail       = "Please enter a valid email address"
	MsgNotConfigured      = "Email service is not configured. Please contact the website administrator."
	MsgTimedOut           = "Request timed out. Please check your internet connection and try again."
	MsgTookTooLong        = "The request took too long. Please check your internet connection and try again."
	MsgTemplateMisconfig  = "Email template is not properly configured. Please contact the website administrator."
	MsgServiceMisconfig   = "Email service is not properly configured. Please contact the website administrator."
	MsgUnknownSendFailure = "An error occurred while sending the message. Please try again later."
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Validate checks the form the way Submit does before any send.
func Validate(d FormData) error {
	if strings.TrimSpace(d.Name) == "" || strings.TrimSpace(d.Email) == "" || strings.TrimSpace(d.Message) == "" {
		return newError(KindValidation, MsgMissingFields, "missing fields", nil)
	}
	if !emailPattern.MatchString(d.Email) {
		return newError(KindValidation, MsgInvalidEmail, "invalid email", nil)
	}
	return nil
}

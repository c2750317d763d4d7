package contact

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifySendFailure(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		err      error
		wantKind Kind
		wantMsg  string
	}{
		{"template in error", "", errors.New("Invalid template ID"), KindProviderConfig, MsgTemplateMisconfig},
		{"template in text", "Invalid template ID: The template ID is invalid", nil, KindProviderConfig, MsgTemplateMisconfig},
		{"service", "Invalid service ID", nil, KindProviderConfig, MsgServiceMisconfig},
		{"public key", "", errors.New("Invalid public key"), KindProviderConfig, MsgServiceMisconfig},
		{"timed out text", "", errors.New("Request timed out"), KindTimeout, MsgTookTooLong},
		{"wrapped deadline", "", fmt.Errorf("emailjs request failed: %w", context.DeadlineExceeded), KindTimeout, MsgTookTooLong},
		{"unknown", "Failed to send message. Status: 500: boom", nil, KindUnknownSend, MsgUnknownSendFailure},
		{"empty", "", nil, KindUnknownSend, MsgUnknownSendFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifySendFailure(tt.text, tt.err)
			assert.Equal(t, tt.wantKind, got.Kind)
			assert.Equal(t, tt.wantMsg, got.Message)
			if tt.err != nil {
				assert.ErrorIs(t, got, tt.err)
			}
		})
	}
}

func TestErrorFormatting(t *testing.T) {
	err := newError(KindValidation, MsgInvalidEmail, "invalid email", nil)
	assert.Equal(t, "VALIDATION_ERROR: Please enter a valid email address (invalid email)", err.Error())

	bare := newError(KindConfiguration, MsgNotConfigured, "", nil)
	assert.Equal(t, "CONFIGURATION_ERROR: "+MsgNotConfigured, bare.Error())
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(FormData{Name: "Ann", Email: "ann@x.com", Message: "hi"}))

	err := Validate(FormData{Name: "Ann", Email: "ann@x.com"})
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Contains(t, err.Error(), "missing fields")

	err = Validate(FormData{Name: "Ann", Email: "ann.x.com", Message: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid email")
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
	wrapped := fmt.Errorf("outer: %w", newError(KindTimeout, MsgTimedOut, "", nil))
	assert.Equal(t, KindTimeout, KindOf(wrapped))
}

func TestParseField(t *testing.T) {
	for _, name := range []string{"name", "email", "message"} {
		f, err := ParseField(name)
		require.NoError(t, err)
		assert.Equal(t, Field(name), f)
	}
	_, err := ParseField("subject")
	assert.ErrorIs(t, err, ErrUnknownField)
}

package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskSensitiveString(t *testing.T) {
	assert.Equal(t, "", MaskSensitiveString("", 2, 2))
	assert.Equal(t, "****", MaskSensitiveString("abcd", 2, 2))
	assert.Equal(t, "ab...yz", MaskSensitiveString("abcdefghijklmnopqrstuvwxyz", 2, 2))
}

func TestMaskEmail(t *testing.T) {
	tests := []struct {
		name  string
		email string
		want  string
	}{
		{"empty", "", ""},
		{"short local part", "ann@x.com", "***@x.com"},
		{"long local part", "jonathan@example.com", "jo...n@example.com"},
		{"not an address", "bad-email", "ba...il"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MaskEmail(tt.email))
		})
	}
}

func TestMaskKey(t *testing.T) {
	assert.Equal(t, "", MaskKey(""))
	assert.Equal(t, "*****", MaskKey("short"))
	assert.Equal(t, "Cey...z3y", MaskKey("CeyVLHZxoI39eKz3y"))
}

func TestGetLoggerIsShared(t *testing.T) {
	IsTest = true
	assert.Same(t, GetLogger(), GetLogger())
	assert.NoError(t, Close())
}

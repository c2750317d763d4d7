package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Zachkp/portfolio/internal/logger"
)

const (
	defaultEmailJSBaseURL = "https://api.emailjs.com"
	emailJSSendPath       = "/api/v1.0/email/send"
)

type emailJSRequest struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	AccessToken    string            `json:"accessToken,omitempty"`
	TemplateParams map[string]string `json:"template_params"`
}

// EmailJS talks to the EmailJS REST API.
type EmailJS struct {
	baseURL    string
	publicKey  string
	privateKey string
	httpClient *http.Client
}

// NewEmailJS returns a client for the given public key. privateKey is the
// optional access token required by accounts with strict mode enabled.
func NewEmailJS(baseURL, publicKey, privateKey string) *EmailJS {
	if baseURL == "" {
		baseURL = defaultEmailJSBaseURL
	}
	return &EmailJS{
		baseURL:    strings.TrimRight(baseURL, "/"),
		publicKey:  publicKey,
		privateKey: privateKey,
		// The caller's context bounds each send; this is a backstop.
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Send posts the templated message and returns the provider's status.
func (e *EmailJS) Send(ctx context.Context, serviceID, templateID string, params map[string]string) (Response, error) {
	log := logger.GetLogger()

	body, err := json.Marshal(emailJSRequest{
		ServiceID:      serviceID,
		TemplateID:     templateID,
		UserID:         e.publicKey,
		AccessToken:    e.privateKey,
		TemplateParams: params,
	})
	if err != nil {
		return Response{}, fmt.Errorf("failed to encode emailjs request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+emailJSSendPath, bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("failed to build emailjs request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("emailjs request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return Response{}, fmt.Errorf("failed to read emailjs response: %w", err)
	}
	text := normalizeEmailJSText(strings.TrimSpace(string(raw)))

	if resp.StatusCode != http.StatusOK {
		log.Warnw("EmailJS rejected message",
			"status", resp.StatusCode,
			"text", text,
			"service_id", serviceID,
			"template_id", templateID)
	}

	return Response{Status: resp.StatusCode, Text: text}, nil
}

// normalizeEmailJSText rewrites EmailJS's wording of credential errors to the
// canonical texts, keeping the original for context.
func normalizeEmailJSText(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "template id is invalid"):
		return TextInvalidTemplateID + ": " + text
	case strings.Contains(lower, "service id is invalid"):
		return TextInvalidServiceID + ": " + text
	case strings.Contains(lower, "public key is invalid"), strings.Contains(lower, "user id is invalid"):
		return TextInvalidPublicKey + ": " + text
	default:
		return text
	}
}

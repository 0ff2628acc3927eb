package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// MetaSender sends text messages through the Meta WhatsApp Cloud API.
// Documentation: https://developers.facebook.com/docs/whatsapp/cloud-api
type MetaSender struct {
	baseURL    string
	apiVersion string
	policy     RetryPolicy
	client     *http.Client
}

func NewMetaSender(apiVersion string, timeout time.Duration, policy RetryPolicy) *MetaSender {
	if apiVersion == "" {
		apiVersion = "v18.0"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &MetaSender{
		baseURL:    "https://graph.facebook.com",
		apiVersion: apiVersion,
		policy:     policy,
		client:     &http.Client{Timeout: timeout},
	}
}

// NewMetaSenderWithBaseURL points the sender at an alternate endpoint.
// Tests use this with an httptest server.
func NewMetaSenderWithBaseURL(baseURL string, policy RetryPolicy) *MetaSender {
	s := NewMetaSender("", 10*time.Second, policy)
	s.baseURL = baseURL
	return s
}

func (s *MetaSender) Name() string {
	return "Meta Cloud API"
}

func (s *MetaSender) Send(ctx context.Context, creds Credentials, to, text string) (*Result, error) {
	if creds.PhoneNumberID == "" || creds.AccessToken == "" {
		return nil, fmt.Errorf("meta credentials missing phone_number_id or access_token")
	}
	url := fmt.Sprintf("%s/%s/%s/messages", s.baseURL, s.apiVersion, creds.PhoneNumberID)

	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"recipient_type":    "individual",
		"to":                to,
		"type":              "text",
		"text": map[string]string{
			"preview_url": "false",
			"body":        text,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	return sendWithRetry(ctx, s.policy, s.Name(), func(ctx context.Context) (*Result, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+creds.AccessToken)
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()

		respBody, _ := io.ReadAll(resp.Body)
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
		}

		var parsed struct {
			Messages []struct {
				ID string `json:"id"`
			} `json:"messages"`
		}
		if err := json.Unmarshal(respBody, &parsed); err == nil && len(parsed.Messages) > 0 {
			return &Result{MessageID: parsed.Messages[0].ID}, nil
		}
		return &Result{}, nil
	})
}

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

// LAMSender sends text messages through the LAM aggregator's HTTP API.
type LAMSender struct {
	baseURL string
	apiKey  string
	policy  RetryPolicy
	client  *http.Client
}

func NewLAMSender(baseURL, apiKey string, timeout time.Duration, policy RetryPolicy) *LAMSender {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &LAMSender{
		baseURL: baseURL,
		apiKey:  apiKey,
		policy:  policy,
		client:  &http.Client{Timeout: timeout},
	}
}

func (s *LAMSender) Name() string {
	return "LAM"
}

func (s *LAMSender) Send(ctx context.Context, creds Credentials, to, text string) (*Result, error) {
	if s.baseURL == "" {
		return nil, fmt.Errorf("LAM_API_URL is not configured")
	}
	url := s.baseURL + "/messages"

	payload := map[string]interface{}{
		"from": creds.WhatsAppNumber,
		"to":   to,
		"type": "text",
		"text": map[string]string{"body": text},
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
		req.Header.Set("X-Api-Key", s.apiKey)
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
			ID        string `json:"id"`
			MessageID string `json:"message_id"`
		}
		if err := json.Unmarshal(respBody, &parsed); err == nil {
			if parsed.MessageID != "" {
				return &Result{MessageID: parsed.MessageID}, nil
			}
			return &Result{MessageID: parsed.ID}, nil
		}
		return &Result{}, nil
	})
}

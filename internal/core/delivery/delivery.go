// Package delivery sends chatbot replies back out through the
// provider the business is wired to, with bounded exponential-backoff
// retry on transient failures.
package delivery

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/terangahq/teranga-backend/internal/models"
)

// Credentials carries the business-stored provider credentials for one
// send. Which fields are set decides the provider backend.
type Credentials struct {
	PhoneNumberID  string
	AccessToken    string
	WhatsAppNumber string
}

// Result is a successful send.
type Result struct {
	MessageID string
}

// Sender is the outbound contract every provider backend implements.
type Sender interface {
	Send(ctx context.Context, creds Credentials, to, text string) (*Result, error)
	Name() string
}

// APIError is a non-2xx provider response. 429 and 5xx are retryable;
// any other 4xx is terminal and carries the provider's error text.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("provider API error (status %d): %s", e.StatusCode, e.Body)
}

func (e *APIError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// RetryPolicy bounds the retry loop: base delay doubles each attempt
// with ±25% jitter, capped at MaxDelay, up to MaxAttempts calls total.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 4,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    8 * time.Second,
	}
}

func (p RetryPolicy) delay(attempt int) time.Duration {
	backoff := float64(p.BaseDelay) * math.Pow(2, float64(attempt))
	if capped := float64(p.MaxDelay); backoff > capped {
		backoff = capped
	}
	// Bounded jitter keeps concurrent retries from synchronizing.
	jitter := 0.75 + rand.Float64()*0.5
	return time.Duration(backoff * jitter)
}

// sendWithRetry drives one provider's attempt function under the
// policy. Network errors and retryable API errors are retried; a
// terminal APIError is returned after the failing attempt.
func sendWithRetry(ctx context.Context, policy RetryPolicy, name string, attempt func(context.Context) (*Result, error)) (*Result, error) {
	var lastErr error
	for i := 0; i < policy.MaxAttempts; i++ {
		if i > 0 {
			select {
			case <-time.After(policy.delay(i - 1)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		res, err := attempt(ctx)
		if err == nil {
			return res, nil
		}
		lastErr = err

		if apiErr, ok := err.(*APIError); ok && !apiErr.Retryable() {
			log.Error().Err(err).Str("provider", name).Msg("terminal delivery error, not retrying")
			return nil, err
		}
		log.Warn().Err(err).Str("provider", name).Int("attempt", i+1).Msg("delivery attempt failed")
	}

	log.Error().Err(lastErr).Str("provider", name).Int("attempts", policy.MaxAttempts).Msg("delivery retries exhausted")
	return nil, fmt.Errorf("delivery failed after %d attempts: %w", policy.MaxAttempts, lastErr)
}

// ForBusiness selects the provider backend by which credentials the
// business carries: Meta Cloud API when it has a phone-number id and
// access token, the LAM aggregator otherwise.
func ForBusiness(business *models.Business, meta *MetaSender, lam *LAMSender) (Sender, Credentials) {
	creds := Credentials{
		PhoneNumberID:  business.PhoneNumberID,
		AccessToken:    business.AccessToken,
		WhatsAppNumber: business.WhatsAppNumber,
	}
	if business.HasMetaCredentials() {
		return meta, creds
	}
	return lam, creds
}

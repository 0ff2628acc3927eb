package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/terangahq/teranga-backend/internal/models"
)

func fastPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 4, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
}

func TestMetaSender_Send(t *testing.T) {
	var gotAuth, gotPath string
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"messages":[{"id":"wamid.OUT"}]}`))
	}))
	defer srv.Close()

	sender := NewMetaSenderWithBaseURL(srv.URL, fastPolicy())
	creds := Credentials{PhoneNumberID: "pn-1", AccessToken: "tok"}

	res, err := sender.Send(context.Background(), creds, "221771234567", "Bonjour!")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if res.MessageID != "wamid.OUT" {
		t.Errorf("message id = %q", res.MessageID)
	}
	if gotAuth != "Bearer tok" {
		t.Errorf("authorization = %q", gotAuth)
	}
	if gotPath != "/v18.0/pn-1/messages" {
		t.Errorf("path = %q", gotPath)
	}
	if gotBody["to"] != "221771234567" || gotBody["messaging_product"] != "whatsapp" {
		t.Errorf("body = %v", gotBody)
	}
}

func TestMetaSender_RetriesTransientThenSucceeds(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"messages":[{"id":"wamid.OK"}]}`))
	}))
	defer srv.Close()

	sender := NewMetaSenderWithBaseURL(srv.URL, fastPolicy())
	res, err := sender.Send(context.Background(), Credentials{PhoneNumberID: "p", AccessToken: "t"}, "x", "y")
	if err != nil {
		t.Fatalf("Send should recover from transient 503s: %v", err)
	}
	if res.MessageID != "wamid.OK" {
		t.Errorf("message id = %q", res.MessageID)
	}
	if n := atomic.LoadInt32(&calls); n != 3 {
		t.Errorf("calls = %d, want 3", n)
	}
}

func TestMetaSender_TerminalErrorNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"message":"unknown phone number"}}`))
	}))
	defer srv.Close()

	sender := NewMetaSenderWithBaseURL(srv.URL, fastPolicy())
	_, err := sender.Send(context.Background(), Credentials{PhoneNumberID: "p", AccessToken: "t"}, "x", "y")
	if err == nil {
		t.Fatal("expected terminal error")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusNotFound {
		t.Fatalf("err = %v, want *APIError 404", err)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("calls = %d, want 1 (4xx must not retry)", n)
	}
}

func TestMetaSender_RateLimitIsRetryable(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"messages":[{"id":"wamid.OK"}]}`))
	}))
	defer srv.Close()

	sender := NewMetaSenderWithBaseURL(srv.URL, fastPolicy())
	if _, err := sender.Send(context.Background(), Credentials{PhoneNumberID: "p", AccessToken: "t"}, "x", "y"); err != nil {
		t.Fatalf("429 should be retried: %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Errorf("calls = %d, want 2", n)
	}
}

func TestMetaSender_RetriesExhausted(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	sender := NewMetaSenderWithBaseURL(srv.URL, fastPolicy())
	_, err := sender.Send(context.Background(), Credentials{PhoneNumberID: "p", AccessToken: "t"}, "x", "y")
	if err == nil {
		t.Fatal("expected exhaustion error")
	}
	if n := atomic.LoadInt32(&calls); n != 4 {
		t.Errorf("calls = %d, want MaxAttempts=4", n)
	}
}

func TestMetaSender_MissingCredentials(t *testing.T) {
	sender := NewMetaSenderWithBaseURL("http://unused", fastPolicy())
	if _, err := sender.Send(context.Background(), Credentials{}, "x", "y"); err == nil {
		t.Fatal("expected error for missing credentials")
	}
}

func TestLAMSender_Send(t *testing.T) {
	var gotKey string
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-Api-Key")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"message_id":"lam-42"}`))
	}))
	defer srv.Close()

	sender := NewLAMSender(srv.URL, "secret", time.Second, fastPolicy())
	creds := Credentials{WhatsAppNumber: "221770000000"}

	res, err := sender.Send(context.Background(), creds, "221771234567", "Salam")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if res.MessageID != "lam-42" {
		t.Errorf("message id = %q", res.MessageID)
	}
	if gotKey != "secret" {
		t.Errorf("api key = %q", gotKey)
	}
	if gotBody["from"] != "221770000000" || gotBody["to"] != "221771234567" {
		t.Errorf("body = %v", gotBody)
	}
}

func TestRetryPolicy_DelayBounded(t *testing.T) {
	p := DefaultRetryPolicy()
	for attempt := 0; attempt < 10; attempt++ {
		d := p.delay(attempt)
		if d < 0 {
			t.Fatalf("negative delay at attempt %d", attempt)
		}
		// Cap plus the +25% jitter bound.
		if max := time.Duration(float64(p.MaxDelay) * 1.25); d > max {
			t.Errorf("delay %v exceeds jittered cap %v at attempt %d", d, max, attempt)
		}
	}
}

func TestForBusiness_SelectsProvider(t *testing.T) {
	meta := NewMetaSenderWithBaseURL("http://meta", fastPolicy())
	lam := NewLAMSender("http://lam", "k", time.Second, fastPolicy())

	withMeta := &models.Business{PhoneNumberID: "pn", AccessToken: "tok", WhatsAppNumber: "221770000000"}
	sender, creds := ForBusiness(withMeta, meta, lam)
	if sender != Sender(meta) {
		t.Error("business with Meta credentials should use the Meta sender")
	}
	if creds.PhoneNumberID != "pn" || creds.AccessToken != "tok" {
		t.Errorf("creds = %+v", creds)
	}

	withoutMeta := &models.Business{WhatsAppNumber: "221770000000"}
	sender, creds = ForBusiness(withoutMeta, meta, lam)
	if sender != Sender(lam) {
		t.Error("business without Meta credentials should fall back to LAM")
	}
	if creds.WhatsAppNumber != "221770000000" {
		t.Errorf("creds = %+v", creds)
	}
}

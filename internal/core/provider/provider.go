// Package provider normalizes raw webhook bodies from the supported
// messaging gateways into a single InboundMessage shape. The provider
// kind is classified from the webhook route, never guessed from the
// payload shape.
package provider

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Kind identifies a messaging gateway.
type Kind string

const (
	KindMeta Kind = "meta" // Meta WhatsApp Cloud API
	KindLAM  Kind = "lam"  // LAM aggregator
)

// InboundMessage is the normalized form of one incoming message.
type InboundMessage struct {
	Provider    Kind
	MessageID   string
	From        string // sender phone number
	To          string // business-facing number the message was sent to
	Text        string
	ContactName string
	ReceivedAt  time.Time
}

var (
	// ErrMissingSender means no sender phone could be resolved from any
	// known field. Validation error: the boundary answers 4xx.
	ErrMissingSender = errors.New("missing sender phone number")

	// ErrEmptyMessage means the payload carried no text to process.
	ErrEmptyMessage = errors.New("empty message text")

	// ErrNoMessage means the payload is a non-message event (status
	// update, delivery receipt) and should be acknowledged and ignored.
	ErrNoMessage = errors.New("payload contains no message")
)

// Normalize parses a raw webhook body for the given provider kind.
func Normalize(raw []byte, kind Kind) (*InboundMessage, error) {
	switch kind {
	case KindMeta:
		return normalizeMeta(raw)
	case KindLAM:
		return normalizeLAM(raw)
	default:
		return nil, fmt.Errorf("unknown provider kind: %s", kind)
	}
}

// synthesizeID builds a deterministic message id when the provider
// omits one. The timestamp is truncated to the minute so a provider
// retry storm (identical body replayed within seconds) collides, at
// the cost of over-deduplicating identical texts sent in the same
// minute. Distinct texts never collide.
func synthesizeID(kind Kind, from, text string, at time.Time) string {
	bucket := at.UTC().Truncate(time.Minute).Unix()
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%s|%d", kind, from, text, bucket)))
	return "gen-" + hex.EncodeToString(sum[:])[:16]
}

func finishMessage(msg *InboundMessage) (*InboundMessage, error) {
	msg.From = strings.TrimSpace(msg.From)
	msg.Text = strings.TrimSpace(msg.Text)

	if msg.From == "" {
		return nil, ErrMissingSender
	}
	if msg.Text == "" {
		return nil, ErrEmptyMessage
	}
	if msg.ReceivedAt.IsZero() {
		msg.ReceivedAt = time.Now().UTC()
	}
	if msg.MessageID == "" {
		msg.MessageID = synthesizeID(msg.Provider, msg.From, msg.Text, msg.ReceivedAt)
	}
	return msg, nil
}

// cleanPhoneNumber removes WhatsApp JID suffixes (@c.us, @s.whatsapp.net).
func cleanPhoneNumber(phone string) string {
	if i := strings.IndexByte(phone, '@'); i > 0 {
		return phone[:i]
	}
	return phone
}

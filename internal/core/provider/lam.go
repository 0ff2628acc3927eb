package provider

import (
	"encoding/json"
	"fmt"
	"time"
)

// LAM aggregator payloads are flat-ish, with several aliases per
// logical field depending on the upstream channel the aggregator
// bridged. Known shapes:
//
//	{"from": "...", "text": "...", "id": "..."}
//	{"message": {"from": "...", "text": {"body": "..."}, "id": "..."}}
//	{"from": "...", "text": {"body": "..."}, "to": "..."}
type lamText struct {
	value string
}

func (t *lamText) UnmarshalJSON(raw []byte) error {
	// "text" is either a bare string or {"body": "..."}.
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		t.value = s
		return nil
	}
	var nested struct {
		Body string `json:"body"`
	}
	if err := json.Unmarshal(raw, &nested); err != nil {
		return err
	}
	t.value = nested.Body
	return nil
}

type lamMessage struct {
	ID        string   `json:"id"`
	From      string   `json:"from"`
	To        string   `json:"to"`
	Text      *lamText `json:"text"`
	Name      string   `json:"name"`
	Timestamp int64    `json:"timestamp"`
}

type lamWebhookPayload struct {
	lamMessage
	Message *lamMessage `json:"message"`
}

// normalizeLAM resolves each field most-specific-path-first: the nested
// message object wins over top-level aliases.
func normalizeLAM(raw []byte) (*InboundMessage, error) {
	var payload lamWebhookPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("malformed lam payload: %w", err)
	}

	pick := func(nested, flat string) string {
		if nested != "" {
			return nested
		}
		return flat
	}

	msg := &InboundMessage{Provider: KindLAM}

	var nested lamMessage
	if payload.Message != nil {
		nested = *payload.Message
	}

	msg.MessageID = pick(nested.ID, payload.ID)
	msg.From = cleanPhoneNumber(pick(nested.From, payload.From))
	msg.To = cleanPhoneNumber(pick(nested.To, payload.To))
	msg.ContactName = pick(nested.Name, payload.Name)

	if nested.Text != nil {
		msg.Text = nested.Text.value
	} else if payload.Text != nil {
		msg.Text = payload.Text.value
	}

	ts := nested.Timestamp
	if ts == 0 {
		ts = payload.Timestamp
	}
	if ts > 0 {
		msg.ReceivedAt = time.Unix(ts, 0).UTC()
	}

	return finishMessage(msg)
}

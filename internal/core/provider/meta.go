package provider

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Meta Cloud API webhook shapes.
// Documentation: https://developers.facebook.com/docs/whatsapp/cloud-api/webhooks
type metaWebhookPayload struct {
	Object string `json:"object"`
	Entry  []struct {
		ID      string `json:"id"`
		Changes []struct {
			Field string `json:"field"`
			Value struct {
				MessagingProduct string `json:"messaging_product"`
				Metadata         struct {
					DisplayPhoneNumber string `json:"display_phone_number"`
					PhoneNumberID      string `json:"phone_number_id"`
				} `json:"metadata"`
				Contacts []struct {
					WaID    string `json:"wa_id"`
					Profile struct {
						Name string `json:"name"`
					} `json:"profile"`
				} `json:"contacts"`
				Messages []struct {
					From      string `json:"from"`
					ID        string `json:"id"`
					Timestamp string `json:"timestamp"`
					Type      string `json:"type"`
					Text      *struct {
						Body string `json:"body"`
					} `json:"text,omitempty"`
				} `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

// normalizeMeta walks the nested entry / changes / value structure and
// yields one InboundMessage. Status-only payloads (no messages array)
// are not errors; they surface as ErrNoMessage so the boundary can ack
// and drop them. When Meta batches several messages into one delivery,
// only the first is consumed; the rest are dropped without a dedup
// record, so a redelivery of the batch would still admit them as new.
func normalizeMeta(raw []byte) (*InboundMessage, error) {
	var payload metaWebhookPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("malformed meta payload: %w", err)
	}

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			value := change.Value
			if len(value.Messages) == 0 {
				continue
			}
			m := value.Messages[0]

			msg := &InboundMessage{
				Provider:  KindMeta,
				MessageID: m.ID,
				From:      cleanPhoneNumber(m.From),
				To:        value.Metadata.DisplayPhoneNumber,
			}
			if m.Text != nil {
				msg.Text = m.Text.Body
			}
			if len(value.Contacts) > 0 {
				msg.ContactName = value.Contacts[0].Profile.Name
			}
			if ts, err := strconv.ParseInt(m.Timestamp, 10, 64); err == nil && ts > 0 {
				msg.ReceivedAt = time.Unix(ts, 0).UTC()
			}
			return finishMessage(msg)
		}
	}

	return nil, ErrNoMessage
}

package v1

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxFieldLength bounds topic, event_id and source.
const MaxFieldLength = 255

// Event is the atomic unit of the system.
// Identity is the composite key (Topic, EventID); uniqueness is scoped per topic.
type Event struct {
	// Topic is the logical stream the event belongs to (e.g. "logs.app").
	Topic string `json:"topic"`

	// EventID is assigned by the producer and reused on every redelivery.
	EventID string `json:"event_id"`

	// Timestamp is the producer-supplied ISO-8601 instant. It is stored verbatim
	// and never compared to the server clock.
	Timestamp string `json:"timestamp"`

	// Source identifies the producer.
	Source string `json:"source"`

	// Payload is an arbitrary JSON object. Absent or null payloads are stored as {}.
	Payload json.RawMessage `json:"payload,omitempty"`

	// ReceivedAt is when the ingress accepted the request (server clock).
	ReceivedAt time.Time `json:"received_at"`

	// ProcessedAt is when the store committed the event (server clock).
	ProcessedAt time.Time `json:"processed_at"`

	// Seq is the store-assigned monotonic sequence. It orders reads by ingestion
	// recency and is not part of the public API.
	Seq int64 `json:"-"`
}

// Key returns the dedup key of the event.
func (e *Event) Key() Key {
	return Key{Topic: e.Topic, EventID: e.EventID}
}

// Key is the (topic, event_id) identity of an event.
type Key struct {
	Topic   string
	EventID string
}

func (k Key) String() string {
	return k.Topic + "/" + k.EventID
}

// Validate ensures the event has all required attributes and a well-formed payload.
// It normalizes an absent or null payload to an empty object.
func (e *Event) Validate() error {
	if err := checkField("topic", e.Topic, MaxFieldLength); err != nil {
		return err
	}
	if err := checkField("event_id", e.EventID, MaxFieldLength); err != nil {
		return err
	}
	if err := checkField("timestamp", e.Timestamp, 0); err != nil {
		return err
	}
	if err := checkField("source", e.Source, MaxFieldLength); err != nil {
		return err
	}

	payload := bytes.TrimSpace(e.Payload)
	if len(payload) == 0 || bytes.Equal(payload, []byte("null")) {
		e.Payload = json.RawMessage("{}")
		return nil
	}
	if payload[0] != '{' || !json.Valid(payload) {
		return fmt.Errorf("payload must be a JSON object")
	}
	if hasNULEscape(payload) {
		return fmt.Errorf("payload must not contain NUL characters")
	}
	e.Payload = json.RawMessage(payload)

	return nil
}

// checkField enforces presence, a rune limit (0 means unbounded) and the absence of
// NUL, which text columns cannot store.
func checkField(name, value string, limit int) error {
	if value == "" {
		return fmt.Errorf("%s is required", name)
	}
	if limit > 0 && utf8.RuneCountInString(value) > limit {
		return fmt.Errorf("%s exceeds %d characters", name, limit)
	}
	if strings.IndexByte(value, 0) >= 0 {
		return fmt.Errorf("%s must not contain NUL characters", name)
	}
	return nil
}

// hasNULEscape reports whether valid JSON text encodes U+0000 as \u0000.
// A backslash preceded by an odd run of backslashes is itself escaped.
func hasNULEscape(data []byte) bool {
	needle := []byte(`\u0000`)
	for off := 0; ; {
		i := bytes.Index(data[off:], needle)
		if i < 0 {
			return false
		}
		at := off + i
		run := 0
		for j := at - 1; j >= 0 && data[j] == '\\'; j-- {
			run++
		}
		if run%2 == 0 {
			return true
		}
		off = at + len(needle)
	}
}

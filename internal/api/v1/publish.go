package v1

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrEmptyBody is returned when a publish request has no content.
	ErrEmptyBody = errors.New("request body is empty")
	// ErrMalformedBody is returned when a publish request is not a JSON object or array.
	ErrMalformedBody = errors.New("request body must be an event object, an array of events, or {\"events\": ...}")
)

// Candidate is one element of a publish request after decoding.
// DecodeErr is set when the element itself could not be decoded; Event then holds
// whatever fields could be recovered, so callers can still echo topic and event_id.
type Candidate struct {
	Event     *Event
	DecodeErr error
}

// PublishRequest is the decoded form of a publish body.
type PublishRequest struct {
	Candidates []Candidate
	// Batch is false when the body carried a single event object.
	Batch bool
}

type envelope struct {
	Events json.RawMessage `json:"events"`
}

// DecodePublishRequest accepts one event object, an array of event objects, or the
// {"events": <object|array>} envelope. A malformed element does not fail the request;
// it surfaces as a Candidate with DecodeErr set.
func DecodePublishRequest(body []byte) (*PublishRequest, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, ErrEmptyBody
	}

	switch body[0] {
	case '[':
		return decodeArray(body)
	case '{':
		var env envelope
		if err := json.Unmarshal(body, &env); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedBody, err)
		}
		inner := bytes.TrimSpace(env.Events)
		if len(inner) == 0 {
			return &PublishRequest{Candidates: []Candidate{decodeElement(body)}}, nil
		}
		switch inner[0] {
		case '[':
			return decodeArray(inner)
		case '{':
			return &PublishRequest{Candidates: []Candidate{decodeElement(inner)}}, nil
		default:
			return nil, fmt.Errorf("%w: events must be an object or an array", ErrMalformedBody)
		}
	default:
		return nil, ErrMalformedBody
	}
}

func decodeArray(body []byte) (*PublishRequest, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(body, &raws); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}

	candidates := make([]Candidate, 0, len(raws))
	for _, raw := range raws {
		candidates = append(candidates, decodeElement(raw))
	}
	return &PublishRequest{Candidates: candidates, Batch: true}, nil
}

func decodeElement(raw json.RawMessage) Candidate {
	raw = bytes.TrimSpace(raw)
	evt := &Event{}
	if len(raw) == 0 || raw[0] != '{' {
		return Candidate{Event: evt, DecodeErr: fmt.Errorf("event must be a JSON object")}
	}
	// Unmarshal keeps decoding past type mismatches, so evt retains the fields it could read.
	if err := json.Unmarshal(raw, evt); err != nil {
		return Candidate{Event: evt, DecodeErr: fmt.Errorf("invalid event: %w", err)}
	}
	return Candidate{Event: evt}
}

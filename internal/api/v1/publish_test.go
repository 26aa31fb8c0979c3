package v1

import (
	"errors"
	"testing"
)

func TestDecodePublishRequest_Shapes(t *testing.T) {
	single := `{"topic":"logs.x","event_id":"e1","timestamp":"2025-01-01T00:00:00Z","source":"s"}`

	tests := []struct {
		name      string
		body      string
		wantCount int
		wantBatch bool
	}{
		{name: "bare object", body: single, wantCount: 1, wantBatch: false},
		{name: "bare array", body: "[" + single + "," + single + "]", wantCount: 2, wantBatch: true},
		{name: "envelope with object", body: `{"events":` + single + `}`, wantCount: 1, wantBatch: false},
		{name: "envelope with array", body: `{"events":[` + single + `]}`, wantCount: 1, wantBatch: true},
		{name: "empty array", body: `[]`, wantCount: 0, wantBatch: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := DecodePublishRequest([]byte(tt.body))
			if err != nil {
				t.Fatalf("DecodePublishRequest() error = %v", err)
			}
			if len(req.Candidates) != tt.wantCount {
				t.Fatalf("got %d candidates, want %d", len(req.Candidates), tt.wantCount)
			}
			if req.Batch != tt.wantBatch {
				t.Errorf("Batch = %v, want %v", req.Batch, tt.wantBatch)
			}
			for i, c := range req.Candidates {
				if c.DecodeErr != nil {
					t.Errorf("candidate %d: unexpected decode error %v", i, c.DecodeErr)
				}
				if c.Event.Topic != "logs.x" || c.Event.EventID != "e1" {
					t.Errorf("candidate %d: unexpected event %+v", i, c.Event)
				}
			}
		})
	}
}

func TestDecodePublishRequest_MalformedBody(t *testing.T) {
	for _, body := range []string{"", "   ", "not json", `"string"`, `{"events": 42}`, `[1,`} {
		_, err := DecodePublishRequest([]byte(body))
		if err == nil {
			t.Errorf("expected error for body %q", body)
		}
	}

	_, err := DecodePublishRequest(nil)
	if !errors.Is(err, ErrEmptyBody) {
		t.Errorf("expected ErrEmptyBody, got %v", err)
	}
}

func TestDecodePublishRequest_MalformedElementIsIsolated(t *testing.T) {
	body := `[
		{"topic":"logs.x","event_id":"e1","timestamp":"t","source":"s"},
		{"topic":"logs.x","event_id":42,"timestamp":"t","source":"s"},
		"not-an-object",
		{"topic":"logs.x","event_id":"e3","timestamp":"t","source":"s"}
	]`

	req, err := DecodePublishRequest([]byte(body))
	if err != nil {
		t.Fatalf("DecodePublishRequest() error = %v", err)
	}
	if len(req.Candidates) != 4 {
		t.Fatalf("got %d candidates, want 4", len(req.Candidates))
	}

	if req.Candidates[0].DecodeErr != nil || req.Candidates[3].DecodeErr != nil {
		t.Fatalf("valid elements must decode cleanly")
	}
	if req.Candidates[1].DecodeErr == nil {
		t.Fatalf("element with numeric event_id must carry a decode error")
	}
	if req.Candidates[1].Event.Topic != "logs.x" {
		t.Errorf("partially decoded element should keep its topic, got %q", req.Candidates[1].Event.Topic)
	}
	if req.Candidates[2].DecodeErr == nil {
		t.Fatalf("non-object element must carry a decode error")
	}
}

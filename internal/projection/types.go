package projection

import (
	"encoding/json"
	"time"
)

// ListEventsRequest represents the query parameters for GET /events.
type ListEventsRequest struct {
	Topic string `form:"topic"`
	Limit int    `form:"limit"` // default: 1000, max: 10000
	Order string `form:"order"` // "desc" (default, newest first) | "asc"
}

// EventResponse is one stored event as exposed on the wire.
type EventResponse struct {
	Topic       string          `json:"topic"`
	EventID     string          `json:"event_id"`
	Timestamp   string          `json:"timestamp"`
	Source      string          `json:"source"`
	Payload     json.RawMessage `json:"payload"`
	ReceivedAt  time.Time       `json:"received_at"`
	ProcessedAt time.Time       `json:"processed_at"`
}

// StatsResponse represents the response for GET /stats.
// Rates are percentages of received, rounded to two decimal places.
type StatsResponse struct {
	Received          int64    `json:"received"`
	UniqueProcessed   int64    `json:"unique_processed"`
	DuplicateDropped  int64    `json:"duplicate_dropped"`
	Topics            []string `json:"topics"`
	TopicCount        int      `json:"topic_count"`
	TotalUniqueEvents int64    `json:"total_unique_events"`
	UniqueRate        float64  `json:"unique_rate"`
	DuplicateRate     float64  `json:"duplicate_rate"`
	UptimeSeconds     float64  `json:"uptime_seconds"`
}

// InfoResponse represents the response for GET /info.
type InfoResponse struct {
	Service           string   `json:"service"`
	Version           string   `json:"version"`
	Backend           string   `json:"backend"`
	UptimeSeconds     float64  `json:"uptime_seconds"`
	TotalUniqueEvents int64    `json:"total_unique_events"`
	Features          []string `json:"features"`
}

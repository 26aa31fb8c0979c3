package projection

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	v1 "github.com/aevon-lab/logagg/internal/api/v1"
	"github.com/aevon-lab/logagg/internal/core/storage"
)

const (
	DefaultListLimit = 1000
	MaxListLimit     = 10000

	serviceName = "logagg"
)

var (
	// ErrInvalidQuery marks request validation errors that should return HTTP 400.
	ErrInvalidQuery = errors.New("invalid events query")

	features = []string{
		"Idempotent consumer",
		"At-least-once delivery",
		"Conditional insert deduplication",
		"Atomic in-store counters",
		"Concurrent processing",
		"Event batching",
		"Persistent dedup store",
	}
)

// Service implements the read side: stored events, statistics and service info.
// It never writes to the store.
type Service struct {
	eventStore storage.EventStore
	backend    string
	version    string
	startedAt  time.Time
	nowFn      func() time.Time
}

// NewService creates a new projection service. backend and version are reported by /info.
func NewService(eventStore storage.EventStore, backend, version string) *Service {
	if eventStore == nil {
		panic("projection: event store must not be nil")
	}
	now := func() time.Time {
		return time.Now().UTC()
	}
	return &Service{
		eventStore: eventStore,
		backend:    backend,
		version:    version,
		startedAt:  now(),
		nowFn:      now,
	}
}

// ListEvents returns stored events ordered by ingestion recency, optionally filtered by topic.
func (s *Service) ListEvents(ctx context.Context, req ListEventsRequest) ([]EventResponse, error) {
	query, err := normalizeListRequest(req)
	if err != nil {
		return nil, err
	}

	events, err := s.eventStore.ListEvents(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	resp := make([]EventResponse, 0, len(events))
	for _, evt := range events {
		resp = append(resp, toEventResponse(evt))
	}
	return resp, nil
}

// GetStats returns the aggregate counters, the processed topics and rates, all from
// one consistent store snapshot.
func (s *Service) GetStats(ctx context.Context) (*StatsResponse, error) {
	snap, err := s.eventStore.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	topics := snap.Topics
	if topics == nil {
		topics = []string{}
	}
	uniqueRate, duplicateRate := rollupRates(snap.Counters)

	return &StatsResponse{
		Received:          snap.Counters.Received,
		UniqueProcessed:   snap.Counters.UniqueProcessed,
		DuplicateDropped:  snap.Counters.DuplicateDropped,
		Topics:            topics,
		TopicCount:        len(topics),
		TotalUniqueEvents: snap.EventCount,
		UniqueRate:        uniqueRate,
		DuplicateRate:     duplicateRate,
		UptimeSeconds:     s.uptime(),
	}, nil
}

// GetInfo describes the running service.
func (s *Service) GetInfo(ctx context.Context) (*InfoResponse, error) {
	snap, err := s.eventStore.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	return &InfoResponse{
		Service:           serviceName,
		Version:           s.version,
		Backend:           s.backend,
		UptimeSeconds:     s.uptime(),
		TotalUniqueEvents: snap.EventCount,
		Features:          features,
	}, nil
}

func (s *Service) uptime() float64 {
	return roundSeconds(s.nowFn().Sub(s.startedAt))
}

func normalizeListRequest(req ListEventsRequest) (storage.ListQuery, error) {
	query := storage.ListQuery{
		Topic: strings.TrimSpace(req.Topic),
		Limit: req.Limit,
	}

	switch {
	case req.Limit == 0:
		query.Limit = DefaultListLimit
	case req.Limit < 0 || req.Limit > MaxListLimit:
		return query, invalidQueryf("limit must be between 1 and %d", MaxListLimit)
	}

	switch strings.ToLower(req.Order) {
	case "", "desc":
		query.Order = storage.NewestFirst
	case "asc":
		query.Order = storage.OldestFirst
	default:
		return query, invalidQueryf("invalid order: %s (must be asc or desc)", req.Order)
	}

	return query, nil
}

func toEventResponse(evt *v1.Event) EventResponse {
	payload := evt.Payload
	if len(payload) == 0 {
		payload = []byte("{}")
	}
	return EventResponse{
		Topic:       evt.Topic,
		EventID:     evt.EventID,
		Timestamp:   evt.Timestamp,
		Source:      evt.Source,
		Payload:     payload,
		ReceivedAt:  evt.ReceivedAt.UTC(),
		ProcessedAt: evt.ProcessedAt.UTC(),
	}
}

func invalidQueryf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidQuery, fmt.Sprintf(format, args...))
}

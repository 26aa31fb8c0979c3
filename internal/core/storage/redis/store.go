// Package redisstore is the shared in-memory backend for the event store.
// Every operation is one Lua script, so the conditional insert and its counter
// bump commit together. Durability follows the server's AOF/RDB settings.
package redisstore

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"

	v1 "github.com/aevon-lab/logagg/internal/api/v1"
	"github.com/aevon-lab/logagg/internal/core/storage"
)

const (
	// DefaultPrefix namespaces every key the store writes.
	DefaultPrefix    = "logagg"
	defaultListLimit = 1000
)

// Store implements storage.EventStore on Redis.
type Store struct {
	client Client
	prefix string
	nowFn  func() time.Time
}

// NewStore creates a Redis-backed store. An empty prefix uses DefaultPrefix.
func NewStore(client Client, prefix string) *Store {
	if client == nil {
		panic("redis client is required")
	}
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{
		client: client,
		prefix: prefix,
		nowFn: func() time.Time {
			return time.Now().UTC()
		},
	}
}

func (s *Store) eventKey(topic, eventID string) string {
	return fmt.Sprintf("%s:event:%d:%s:%s", s.prefix, len(topic), topic, eventID)
}

func (s *Store) topicRecentPrefix() string {
	return s.prefix + ":recent:topic:"
}

func (s *Store) topicRecentKey(topic string) string {
	return s.topicRecentPrefix() + strconv.Itoa(len(topic)) + ":" + topic
}

func (s *Store) seqKey() string    { return s.prefix + ":seq" }
func (s *Store) recentKey() string { return s.prefix + ":recent" }
func (s *Store) topicsKey() string { return s.prefix + ":topics" }
func (s *Store) statsKey() string  { return s.prefix + ":stats" }

// InsertIfAbsent runs the conditional insert without touching counters.
func (s *Store) InsertIfAbsent(ctx context.Context, event *v1.Event) (storage.InsertResult, error) {
	inserted, err := s.save(ctx, event, false)
	if err != nil {
		return 0, err
	}
	if !inserted {
		return storage.AlreadyExists, nil
	}
	return storage.Inserted, nil
}

// IncrementCounters bumps received and the outcome field of the stats hash.
func (s *Store) IncrementCounters(ctx context.Context, result storage.InsertResult) error {
	var field string
	switch result {
	case storage.Inserted:
		field = "unique_processed"
	case storage.AlreadyExists:
		field = "duplicate_dropped"
	default:
		return fmt.Errorf("unknown insert result %d", result)
	}

	if _, err := s.client.Eval(ctx, scriptIncrementCounters, []string{s.statsKey()}, field); err != nil {
		return storage.Unavailable("increment counters", err)
	}
	return nil
}

// SaveEvent runs the conditional insert and the counter bump in one script.
func (s *Store) SaveEvent(ctx context.Context, event *v1.Event) error {
	inserted, err := s.save(ctx, event, true)
	if err != nil {
		return err
	}
	if !inserted {
		slog.Debug("[Redis] Duplicate event", "key", event.Key().String())
		return storage.ErrDuplicate
	}

	slog.Debug("[Redis] Saved event",
		"topic", event.Topic,
		"event_id", event.EventID,
		"seq", event.Seq)
	return nil
}

func (s *Store) save(ctx context.Context, event *v1.Event, count bool) (bool, error) {
	processedAt := s.nowFn()
	receivedAt := event.ReceivedAt
	if receivedAt.IsZero() {
		receivedAt = processedAt
	}
	payload := string(event.Payload)
	if payload == "" {
		payload = "{}"
	}
	countFlag := "0"
	if count {
		countFlag = "1"
	}

	keys := []string{
		s.eventKey(event.Topic, event.EventID),
		s.seqKey(),
		s.recentKey(),
		s.topicRecentKey(event.Topic),
		s.topicsKey(),
		s.statsKey(),
	}
	reply, err := s.client.Eval(ctx, scriptSaveEvent, keys,
		event.Topic,
		event.EventID,
		event.Timestamp,
		event.Source,
		payload,
		receivedAt.Format(time.RFC3339Nano),
		processedAt.Format(time.RFC3339Nano),
		countFlag,
	)
	if err != nil {
		return false, storage.Unavailable("save event", err)
	}

	seq, err := toInt64(reply)
	if err != nil {
		return false, fmt.Errorf("unexpected save reply: %w", err)
	}
	if seq == 0 {
		return false, nil
	}

	event.Seq = seq
	event.ReceivedAt = receivedAt
	event.ProcessedAt = processedAt
	return true, nil
}

// ListEvents reads the global or per-topic recency sorted set.
func (s *Store) ListEvents(ctx context.Context, query storage.ListQuery) ([]*v1.Event, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	index := s.recentKey()
	if query.Topic != "" {
		index = s.topicRecentKey(query.Topic)
	}
	order := "desc"
	if query.Order == storage.OldestFirst {
		order = "asc"
	}

	reply, err := s.client.Eval(ctx, scriptListEvents, []string{index}, limit, order)
	if err != nil {
		return nil, storage.Unavailable("list events", err)
	}

	rows, ok := reply.([]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected list reply type %T", reply)
	}

	events := make([]*v1.Event, 0, len(rows))
	for _, row := range rows {
		fields, ok := row.([]interface{})
		if !ok || len(fields) != 8 {
			return nil, fmt.Errorf("unexpected event row %v", row)
		}
		event, err := decodeEvent(fields)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}

func decodeEvent(fields []interface{}) (*v1.Event, error) {
	str := func(i int) string {
		v, _ := fields[i].(string)
		return v
	}

	seq, err := toInt64(fields[0])
	if err != nil {
		return nil, fmt.Errorf("invalid seq: %w", err)
	}
	receivedAt, err := time.Parse(time.RFC3339Nano, str(6))
	if err != nil {
		return nil, fmt.Errorf("invalid received_at: %w", err)
	}
	processedAt, err := time.Parse(time.RFC3339Nano, str(7))
	if err != nil {
		return nil, fmt.Errorf("invalid processed_at: %w", err)
	}

	return &v1.Event{
		Seq:         seq,
		Topic:       str(1),
		EventID:     str(2),
		Timestamp:   str(3),
		Source:      str(4),
		Payload:     []byte(str(5)),
		ReceivedAt:  receivedAt.UTC(),
		ProcessedAt: processedAt.UTC(),
	}, nil
}

// ReadCounters returns the stats hash. Missing fields read as zero.
func (s *Store) ReadCounters(ctx context.Context) (storage.Counters, error) {
	reply, err := s.client.Eval(ctx, scriptReadCounters, []string{s.statsKey()})
	if err != nil {
		return storage.Counters{}, storage.Unavailable("read counters", err)
	}
	return decodeCounters(reply)
}

func decodeCounters(reply interface{}) (storage.Counters, error) {
	values, ok := reply.([]interface{})
	if !ok || len(values) != 3 {
		return storage.Counters{}, fmt.Errorf("unexpected counters reply %v", reply)
	}
	var out [3]int64
	for i, v := range values {
		n, err := toInt64(v)
		if err != nil {
			return storage.Counters{}, fmt.Errorf("invalid counter: %w", err)
		}
		out[i] = n
	}
	return storage.Counters{Received: out[0], UniqueProcessed: out[1], DuplicateDropped: out[2]}, nil
}

// Snapshot reads counters, topics and the event count in one script.
func (s *Store) Snapshot(ctx context.Context) (storage.Snapshot, error) {
	reply, err := s.client.Eval(ctx, scriptSnapshot, []string{s.statsKey(), s.topicsKey(), s.recentKey()})
	if err != nil {
		return storage.Snapshot{}, storage.Unavailable("snapshot", err)
	}

	parts, ok := reply.([]interface{})
	if !ok || len(parts) != 3 {
		return storage.Snapshot{}, fmt.Errorf("unexpected snapshot reply %v", reply)
	}
	counters, err := decodeCounters(parts[0])
	if err != nil {
		return storage.Snapshot{}, err
	}
	members, _ := parts[1].([]interface{})
	topics := make([]string, 0, len(members))
	for _, m := range members {
		if t, ok := m.(string); ok {
			topics = append(topics, t)
		}
	}
	sort.Strings(topics)

	count, err := toInt64(parts[2])
	if err != nil {
		return storage.Snapshot{}, fmt.Errorf("invalid event count: %w", err)
	}

	return storage.Snapshot{Counters: counters, Topics: topics, EventCount: count}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx); err != nil {
		return storage.Unavailable("ping", err)
	}
	return nil
}

// Reset deletes every event and index key and the counters.
func (s *Store) Reset(ctx context.Context) error {
	keys := []string{s.recentKey(), s.seqKey(), s.topicsKey(), s.statsKey()}
	if _, err := s.client.Eval(ctx, scriptReset, keys, s.topicRecentPrefix()); err != nil {
		return storage.Unavailable("reset", err)
	}
	slog.Warn("[Redis] All events and counters cleared")
	return nil
}

func (s *Store) Close() error {
	if err := s.client.Close(); err != nil {
		return fmt.Errorf("failed to close redis client: %w", err)
	}
	slog.Info("[Redis] Client closed")
	return nil
}

// toInt64 accepts the integer and bulk-string forms Redis replies use. nil is zero.
func toInt64(v interface{}) (int64, error) {
	switch n := v.(type) {
	case nil:
		return 0, nil
	case int64:
		return n, nil
	case string:
		return strconv.ParseInt(n, 10, 64)
	default:
		return 0, fmt.Errorf("unexpected value type %T", v)
	}
}

var _ storage.EventStore = (*Store)(nil)

package storage

import (
	"context"
	"errors"

	v1 "github.com/aevon-lab/logagg/internal/api/v1"
)

var (
	// ErrDuplicate is returned when an event with the same (topic, event_id) already exists.
	ErrDuplicate = errors.New("event already exists")

	// ErrUnavailable marks failures where the store could not confirm durability.
	// The attempt did not happen; callers may retry it.
	ErrUnavailable = errors.New("store unavailable")

	// ErrInvalidEvent means the backend refused this one event's content (bad
	// encoding, constraint violation). Retrying the same event cannot succeed.
	ErrInvalidEvent = errors.New("event rejected by store")
)

// InsertResult reports which branch of a conditional insert was taken.
type InsertResult int

const (
	Inserted InsertResult = iota + 1
	AlreadyExists
)

func (r InsertResult) String() string {
	switch r {
	case Inserted:
		return "inserted"
	case AlreadyExists:
		return "already_exists"
	default:
		return "unknown"
	}
}

// Order selects the direction of recency-ordered reads.
type Order int

const (
	NewestFirst Order = iota
	OldestFirst
)

// ListQuery filters and bounds ListEvents. An empty Topic means all topics.
type ListQuery struct {
	Topic string
	Limit int
	Order Order
}

// Counters is the aggregate statistics record.
// Received == UniqueProcessed + DuplicateDropped at every observable point.
type Counters struct {
	Received         int64
	UniqueProcessed  int64
	DuplicateDropped int64
}

// Snapshot is a point-in-time consistent read of the store's aggregate state.
type Snapshot struct {
	Counters   Counters
	Topics     []string
	EventCount int64
}

// EventStore is the persistent store behind the dedup engine.
type EventStore interface {
	// InsertIfAbsent creates the event if its (topic, event_id) key is absent and
	// reports which case occurred, as one indivisible operation.
	// Populates event.Seq and event.ProcessedAt on insert.
	InsertIfAbsent(ctx context.Context, event *v1.Event) (InsertResult, error)

	// IncrementCounters bumps received and the outcome counter atomically in the store.
	IncrementCounters(ctx context.Context, result InsertResult) error

	// SaveEvent runs InsertIfAbsent and IncrementCounters as one durable unit.
	// Returns ErrDuplicate when the key already existed; the duplicate is still counted.
	SaveEvent(ctx context.Context, event *v1.Event) error

	// ListEvents returns stored events ordered by ingestion recency.
	ListEvents(ctx context.Context, query ListQuery) ([]*v1.Event, error)

	// ReadCounters returns the current aggregate counters.
	ReadCounters(ctx context.Context) (Counters, error)

	// Snapshot returns counters, distinct topics and the stored event count from one consistent read.
	Snapshot(ctx context.Context) (Snapshot, error)

	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error

	// Reset deletes all events and zeroes the counters. Admin use only.
	Reset(ctx context.Context) error

	Close() error
}

// Package pebblestore is the embedded single-node backend for the event store.
// Durability comes from Pebble's WAL; per-key atomicity from striped key locks.
package pebblestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	v1 "github.com/aevon-lab/logagg/internal/api/v1"
	"github.com/aevon-lab/logagg/internal/core/partition"
	"github.com/aevon-lab/logagg/internal/core/storage"
	"github.com/cockroachdb/pebble"
)

const defaultListLimit = 1000

// ErrClosed is returned for operations on a closed store.
var ErrClosed = errors.New("pebble store closed")

// FsyncMode defines durability behavior for committed batches.
type FsyncMode int

const (
	// FsyncAlways syncs the WAL before every commit returns.
	FsyncAlways FsyncMode = iota
	// FsyncInterval still syncs before returning, but lets Pebble coalesce
	// concurrent commits into one WAL sync within FsyncInterval (group commit).
	FsyncInterval
	// FsyncNever leaves syncing to Pebble. Tests and benchmarks only.
	FsyncNever
)

// ParseFsyncMode maps a config value ("always", "interval", "never") to a mode.
func ParseFsyncMode(s string) (FsyncMode, error) {
	switch s {
	case "", "always":
		return FsyncAlways, nil
	case "interval":
		return FsyncInterval, nil
	case "never":
		return FsyncNever, nil
	default:
		return 0, fmt.Errorf("unknown fsync mode %q", s)
	}
}

// Options configures the Pebble store.
type Options struct {
	// Path is the database directory. Created if missing.
	Path string
	// Fsync determines when the WAL is synced.
	Fsync FsyncMode
	// FsyncInterval bounds the group-commit window when Fsync is FsyncInterval.
	FsyncInterval time.Duration
	// PebbleOptions allows advanced tuning. If nil, defaults are used.
	PebbleOptions *pebble.Options
}

// Store implements storage.EventStore on an embedded Pebble database.
type Store struct {
	db        *pebble.DB
	writeOpts *pebble.WriteOptions

	// lifecycle guards db against use after Close.
	lifecycle sync.RWMutex
	closed    bool

	// stripes serialize check-then-write per key; unrelated keys proceed in parallel.
	stripes [partition.Count]sync.Mutex
	seq     atomic.Int64
	nowFn   func() time.Time
}

// storedEvent is the on-disk record under an e/ key.
type storedEvent struct {
	Seq         int64           `json:"seq"`
	Topic       string          `json:"topic"`
	EventID     string          `json:"event_id"`
	Timestamp   string          `json:"timestamp"`
	Source      string          `json:"source"`
	Payload     json.RawMessage `json:"payload"`
	ReceivedAt  time.Time       `json:"received_at"`
	ProcessedAt time.Time       `json:"processed_at"`
}

// Open opens or creates the store and seeds the sequence allocator from the
// highest committed recency key.
func Open(opts Options) (*Store, error) {
	if opts.Path == "" {
		return nil, errors.New("pebble: Options.Path is required")
	}

	po := opts.PebbleOptions
	if po == nil {
		po = &pebble.Options{}
	}
	po.Merger = counterMerger

	switch opts.Fsync {
	case FsyncAlways, FsyncNever:
	case FsyncInterval:
		if opts.FsyncInterval <= 0 {
			opts.FsyncInterval = 5 * time.Millisecond
		}
		interval := opts.FsyncInterval
		po.WALMinSyncInterval = func() time.Duration { return interval }
	default:
		return nil, fmt.Errorf("pebble: unknown fsync mode %d", opts.Fsync)
	}

	db, err := pebble.Open(opts.Path, po)
	if err != nil {
		return nil, fmt.Errorf("failed to open pebble store at %s: %w", opts.Path, err)
	}

	s := &Store{
		db:        db,
		writeOpts: pebble.Sync,
		nowFn: func() time.Time {
			return time.Now().UTC()
		},
	}
	if opts.Fsync == FsyncNever {
		s.writeOpts = pebble.NoSync
	}

	lastSeq, err := s.loadLastSeq()
	if err != nil {
		db.Close()
		return nil, err
	}
	s.seq.Store(lastSeq)

	slog.Info("[Pebble] Store opened",
		"path", opts.Path,
		"fsync", opts.Fsync,
		"last_seq", lastSeq)
	return s, nil
}

func (s *Store) loadLastSeq() (int64, error) {
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefixRecency,
		UpperBound: upperBound(prefixRecency),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to open recency iterator: %w", err)
	}
	defer iter.Close()

	if !iter.Last() {
		return 0, iter.Error()
	}
	return seqFromKey(iter.Key())
}

// acquire takes the lifecycle read lock. Callers must call the returned release.
func (s *Store) acquire(op string) (func(), error) {
	s.lifecycle.RLock()
	if s.closed {
		s.lifecycle.RUnlock()
		return nil, storage.Unavailable(op, ErrClosed)
	}
	return s.lifecycle.RUnlock, nil
}

func (s *Store) lockKey(topic, eventID string) func() {
	mu := &s.stripes[partition.For(topic, eventID)]
	mu.Lock()
	return mu.Unlock
}

// InsertIfAbsent stores the event when its key is absent. The existence check and the
// write run under the key's stripe lock, which makes them one indivisible step.
func (s *Store) InsertIfAbsent(ctx context.Context, event *v1.Event) (storage.InsertResult, error) {
	release, err := s.acquire("insert event")
	if err != nil {
		return 0, err
	}
	defer release()
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	unlock := s.lockKey(event.Topic, event.EventID)
	defer unlock()

	exists, err := s.exists(event)
	if err != nil {
		return 0, err
	}
	if exists {
		return storage.AlreadyExists, nil
	}

	b := s.db.NewBatch()
	defer b.Close()

	rec, err := s.stageInsert(b, event)
	if err != nil {
		return 0, err
	}
	if err := b.Commit(s.writeOpts); err != nil {
		return 0, storage.Unavailable("commit insert", err)
	}

	rec.apply(event)
	return storage.Inserted, nil
}

// IncrementCounters merges +1 into received and the outcome counter in one batch.
func (s *Store) IncrementCounters(ctx context.Context, result storage.InsertResult) error {
	release, err := s.acquire("increment counters")
	if err != nil {
		return err
	}
	defer release()
	if err := ctx.Err(); err != nil {
		return err
	}

	b := s.db.NewBatch()
	defer b.Close()

	if err := stageCounters(b, result); err != nil {
		return err
	}
	if err := b.Commit(s.writeOpts); err != nil {
		return storage.Unavailable("commit counters", err)
	}
	return nil
}

// SaveEvent commits the conditional insert and the counter bump in a single batch,
// so a crash leaves either both or neither.
func (s *Store) SaveEvent(ctx context.Context, event *v1.Event) error {
	release, err := s.acquire("save event")
	if err != nil {
		return err
	}
	defer release()
	if err := ctx.Err(); err != nil {
		return err
	}

	unlock := s.lockKey(event.Topic, event.EventID)
	defer unlock()

	exists, err := s.exists(event)
	if err != nil {
		return err
	}

	b := s.db.NewBatch()
	defer b.Close()

	var rec *storedEvent
	result := storage.AlreadyExists
	if !exists {
		result = storage.Inserted
		if rec, err = s.stageInsert(b, event); err != nil {
			return err
		}
	}
	if err := stageCounters(b, result); err != nil {
		return err
	}

	if err := b.Commit(s.writeOpts); err != nil {
		return storage.Unavailable("commit event", err)
	}

	if exists {
		slog.Debug("[Pebble] Duplicate event", "key", event.Key().String())
		return storage.ErrDuplicate
	}

	rec.apply(event)
	slog.Debug("[Pebble] Saved event",
		"topic", event.Topic,
		"event_id", event.EventID,
		"seq", rec.Seq)
	return nil
}

func (s *Store) exists(event *v1.Event) (bool, error) {
	_, closer, err := s.db.Get(eventKey(event.Topic, event.EventID))
	if errors.Is(err, pebble.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, storage.Unavailable("lookup event", err)
	}
	closer.Close()
	return true, nil
}

// stageInsert allocates the next sequence and writes the record plus its index entries.
func (s *Store) stageInsert(b *pebble.Batch, event *v1.Event) (*storedEvent, error) {
	processedAt := s.nowFn()
	receivedAt := event.ReceivedAt
	if receivedAt.IsZero() {
		receivedAt = processedAt
	}
	payload := event.Payload
	if len(payload) == 0 {
		payload = json.RawMessage(`{}`)
	}

	rec := &storedEvent{
		Seq:         s.seq.Add(1),
		Topic:       event.Topic,
		EventID:     event.EventID,
		Timestamp:   event.Timestamp,
		Source:      event.Source,
		Payload:     payload,
		ReceivedAt:  receivedAt,
		ProcessedAt: processedAt,
	}
	value, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to encode event: %w", err)
	}

	ek := eventKey(event.Topic, event.EventID)
	if err := b.Set(ek, value, nil); err != nil {
		return nil, storage.Unavailable("stage event", err)
	}
	if err := b.Set(recencyKey(rec.Seq), ek, nil); err != nil {
		return nil, storage.Unavailable("stage recency index", err)
	}
	if err := b.Set(topicIndexKey(event.Topic, rec.Seq), ek, nil); err != nil {
		return nil, storage.Unavailable("stage topic index", err)
	}
	if err := b.Set(topicSetKey(event.Topic), nil, nil); err != nil {
		return nil, storage.Unavailable("stage topic", err)
	}
	if err := b.Merge(keyStored, encodeInt64(1), nil); err != nil {
		return nil, storage.Unavailable("stage event count", err)
	}
	return rec, nil
}

func stageCounters(b *pebble.Batch, result storage.InsertResult) error {
	var outcome []byte
	switch result {
	case storage.Inserted:
		outcome = keyUnique
	case storage.AlreadyExists:
		outcome = keyDuplicate
	default:
		return fmt.Errorf("unknown insert result %d", result)
	}
	one := encodeInt64(1)
	if err := b.Merge(keyReceived, one, nil); err != nil {
		return storage.Unavailable("stage received counter", err)
	}
	if err := b.Merge(outcome, one, nil); err != nil {
		return storage.Unavailable("stage outcome counter", err)
	}
	return nil
}

func (r *storedEvent) apply(event *v1.Event) {
	event.Seq = r.Seq
	event.ReceivedAt = r.ReceivedAt
	event.ProcessedAt = r.ProcessedAt
	event.Payload = r.Payload
}

func (r *storedEvent) toEvent() *v1.Event {
	return &v1.Event{
		Topic:       r.Topic,
		EventID:     r.EventID,
		Timestamp:   r.Timestamp,
		Source:      r.Source,
		Payload:     r.Payload,
		ReceivedAt:  r.ReceivedAt.UTC(),
		ProcessedAt: r.ProcessedAt.UTC(),
		Seq:         r.Seq,
	}
}

// reader is satisfied by both *pebble.DB and *pebble.Snapshot.
type reader interface {
	Get(key []byte) ([]byte, io.Closer, error)
	NewIter(o *pebble.IterOptions) (*pebble.Iterator, error)
}

// ListEvents walks the global or per-topic recency index on a snapshot.
func (s *Store) ListEvents(ctx context.Context, query storage.ListQuery) ([]*v1.Event, error) {
	release, err := s.acquire("list events")
	if err != nil {
		return nil, err
	}
	defer release()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	limit := query.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	prefix := prefixRecency
	if query.Topic != "" {
		prefix = topicIndexPrefix(query.Topic)
	}

	snap := s.db.NewSnapshot()
	defer snap.Close()

	iter, err := snap.NewIter(&pebble.IterOptions{LowerBound: prefix, UpperBound: upperBound(prefix)})
	if err != nil {
		return nil, storage.Unavailable("open index iterator", err)
	}
	defer iter.Close()

	step := iter.Prev
	valid := iter.Last()
	if query.Order == storage.OldestFirst {
		step = iter.Next
		valid = iter.First()
	}

	events := make([]*v1.Event, 0)
	for ; valid && len(events) < limit; valid = step() {
		rec, err := readRecord(snap, iter.Value())
		if err != nil {
			return nil, err
		}
		events = append(events, rec.toEvent())
	}
	if err := iter.Error(); err != nil {
		return nil, storage.Unavailable("iterate index", err)
	}
	return events, nil
}

func readRecord(r reader, key []byte) (*storedEvent, error) {
	value, closer, err := r.Get(key)
	if err != nil {
		return nil, storage.Unavailable("read event", err)
	}
	defer closer.Close()

	var rec storedEvent
	if err := json.Unmarshal(value, &rec); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", errCorruptRecord, key, err)
	}
	rec.Payload = append(json.RawMessage(nil), rec.Payload...)
	return &rec, nil
}

// ReadCounters returns the merged counter values.
func (s *Store) ReadCounters(ctx context.Context) (storage.Counters, error) {
	release, err := s.acquire("read counters")
	if err != nil {
		return storage.Counters{}, err
	}
	defer release()
	if err := ctx.Err(); err != nil {
		return storage.Counters{}, err
	}

	snap := s.db.NewSnapshot()
	defer snap.Close()
	return readCounters(snap)
}

func readCounters(r reader) (storage.Counters, error) {
	var c storage.Counters
	for _, f := range []struct {
		key []byte
		dst *int64
	}{
		{keyReceived, &c.Received},
		{keyUnique, &c.UniqueProcessed},
		{keyDuplicate, &c.DuplicateDropped},
	} {
		n, err := readCounter(r, f.key)
		if err != nil {
			return storage.Counters{}, err
		}
		*f.dst = n
	}
	return c, nil
}

func readCounter(r reader, key []byte) (int64, error) {
	value, closer, err := r.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, storage.Unavailable("read counter", err)
	}
	defer closer.Close()
	return decodeInt64(value)
}

// Snapshot reads counters, topics and the stored event count from one Pebble snapshot.
func (s *Store) Snapshot(ctx context.Context) (storage.Snapshot, error) {
	release, err := s.acquire("snapshot")
	if err != nil {
		return storage.Snapshot{}, err
	}
	defer release()
	if err := ctx.Err(); err != nil {
		return storage.Snapshot{}, err
	}

	snap := s.db.NewSnapshot()
	defer snap.Close()

	counters, err := readCounters(snap)
	if err != nil {
		return storage.Snapshot{}, err
	}
	stored, err := readCounter(snap, keyStored)
	if err != nil {
		return storage.Snapshot{}, err
	}

	iter, err := snap.NewIter(&pebble.IterOptions{LowerBound: prefixTopics, UpperBound: upperBound(prefixTopics)})
	if err != nil {
		return storage.Snapshot{}, storage.Unavailable("open topic iterator", err)
	}
	defer iter.Close()

	topics := make([]string, 0)
	for valid := iter.First(); valid; valid = iter.Next() {
		topics = append(topics, string(iter.Key()[len(prefixTopics):]))
	}
	if err := iter.Error(); err != nil {
		return storage.Snapshot{}, storage.Unavailable("iterate topics", err)
	}

	return storage.Snapshot{
		Counters:   counters,
		Topics:     topics,
		EventCount: stored,
	}, nil
}

// Ping reports whether the store is open.
func (s *Store) Ping(ctx context.Context) error {
	release, err := s.acquire("ping")
	if err != nil {
		return err
	}
	release()
	return ctx.Err()
}

// Reset removes every key and restarts the sequence. All stripes are held so no
// conditional insert can interleave with the wipe.
func (s *Store) Reset(ctx context.Context) error {
	release, err := s.acquire("reset")
	if err != nil {
		return err
	}
	defer release()
	if err := ctx.Err(); err != nil {
		return err
	}

	for i := range s.stripes {
		s.stripes[i].Lock()
	}
	defer func() {
		for i := range s.stripes {
			s.stripes[i].Unlock()
		}
	}()

	b := s.db.NewBatch()
	defer b.Close()
	for _, prefix := range [][]byte{prefixEvent, prefixRecency, prefixTopic, prefixTopics, prefixCounter} {
		if err := b.DeleteRange(prefix, upperBound(prefix), nil); err != nil {
			return storage.Unavailable("stage reset", err)
		}
	}
	if err := b.Commit(s.writeOpts); err != nil {
		return storage.Unavailable("commit reset", err)
	}
	s.seq.Store(0)

	slog.Warn("[Pebble] All events and counters cleared")
	return nil
}

// Close flushes and closes the database. Subsequent calls return ErrClosed.
func (s *Store) Close() error {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	if s.closed {
		return ErrClosed
	}
	s.closed = true

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close pebble store: %w", err)
	}
	slog.Info("[Pebble] Store closed")
	return nil
}

var _ storage.EventStore = (*Store)(nil)

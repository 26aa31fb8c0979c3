// Package dedup turns candidate events into per-event outcomes. Each event is an
// independent attempt: one conditional insert plus counter update in the store.
package dedup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	v1 "github.com/aevon-lab/logagg/internal/api/v1"
	"github.com/aevon-lab/logagg/internal/core/storage"
	"github.com/aevon-lab/logagg/internal/metrics"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrValidation marks an event rejected before any store interaction.
	ErrValidation = errors.New("validation failed")

	// ErrStoreUnavailable marks an attempt the store could not confirm.
	// Nothing was counted for it; resubmitting is safe.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Status is the per-event result of an ingest attempt.
type Status string

const (
	StatusAccepted    Status = "accepted"
	StatusDuplicate   Status = "duplicate"
	StatusRejected    Status = "rejected"
	StatusUnprocessed Status = "unprocessed"
)

const (
	reasonStoreUnavailable = "store unavailable"
	reasonCanceled         = "request canceled"
)

// Outcome reports what happened to one input event. Index is its position in the batch.
type Outcome struct {
	Index   int    `json:"index"`
	EventID string `json:"event_id"`
	Topic   string `json:"topic"`
	Status  Status `json:"status"`
	Reason  string `json:"reason,omitempty"`

	// Err wraps ErrValidation for rejected events and ErrStoreUnavailable for
	// events the store could not confirm.
	Err error `json:"-"`
}

// Summary counts outcomes by status.
type Summary struct {
	Accepted    int
	Duplicates  int
	Rejected    int
	Unprocessed int
}

// Summarize tallies a batch of outcomes.
func Summarize(outcomes []Outcome) Summary {
	var s Summary
	for _, o := range outcomes {
		switch o.Status {
		case StatusAccepted:
			s.Accepted++
		case StatusDuplicate:
			s.Duplicates++
		case StatusRejected:
			s.Rejected++
		case StatusUnprocessed:
			s.Unprocessed++
		}
	}
	return s
}

// Option configures an Engine.
type Option func(*Engine)

// WithConcurrency sets how many attempts of one batch may run at once.
// 1 (the default) processes a batch strictly in order.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// WithClock overrides the clock used to stamp received_at.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.nowFn = now
		}
	}
}

// Engine is the idempotent consumer. It holds no per-event state; the store's
// conditional insert is the only serialization point, so one Engine serves any
// number of concurrent callers.
type Engine struct {
	store       storage.EventStore
	concurrency int
	nowFn       func() time.Time
}

// NewEngine creates an engine over store.
func NewEngine(store storage.EventStore, opts ...Option) *Engine {
	if store == nil {
		panic("event store is required")
	}
	e := &Engine{
		store:       store,
		concurrency: 1,
		nowFn: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Ingest attempts every candidate and returns one outcome per input, in input order.
//
// A rejected or duplicate event never affects its siblings. If the store becomes
// unavailable the batch stops: committed attempts keep their outcomes, the rest are
// reported unprocessed, and the returned error wraps ErrStoreUnavailable.
func (e *Engine) Ingest(ctx context.Context, batch []v1.Candidate) ([]Outcome, error) {
	outcomes := make([]Outcome, len(batch))
	if len(batch) == 0 {
		return outcomes, nil
	}
	metrics.IngestBatchSize.Observe(float64(len(batch)))

	receivedAt := e.nowFn()
	for i, c := range batch {
		outcomes[i] = Outcome{Index: i, Status: StatusUnprocessed}
		if c.Event != nil {
			outcomes[i].Topic = c.Event.Topic
			outcomes[i].EventID = c.Event.EventID
		}
	}

	// sched only gates scheduling. In-flight attempts run on ctx so a sibling's
	// failure never cancels a write that may already be committing.
	g, sched := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i := range batch {
		if sched.Err() != nil {
			break
		}
		g.Go(func() error {
			if sched.Err() != nil {
				return nil
			}
			outcome := e.attempt(ctx, i, batch[i], receivedAt)
			outcomes[i] = outcome
			if outcome.Status == StatusUnprocessed {
				return outcome.Err
			}
			return nil
		})
	}
	err := g.Wait()

	reason := reasonStoreUnavailable
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
		reason = reasonCanceled
	}
	if err != nil {
		for i := range outcomes {
			if outcomes[i].Status == StatusUnprocessed && outcomes[i].Err == nil {
				outcomes[i].Reason = reason
				outcomes[i].Err = err
				metrics.IngestEventsTotal.WithLabelValues(string(StatusUnprocessed)).Inc()
			}
		}
		slog.Error("[Engine] Batch stopped",
			"batch_size", len(batch),
			"summary", fmt.Sprintf("%+v", Summarize(outcomes)),
			"error", err)
		return outcomes, err
	}

	return outcomes, nil
}

// IngestOne attempts a single candidate.
func (e *Engine) IngestOne(ctx context.Context, c v1.Candidate) (Outcome, error) {
	outcomes, err := e.Ingest(ctx, []v1.Candidate{c})
	return outcomes[0], err
}

func (e *Engine) attempt(ctx context.Context, index int, c v1.Candidate, receivedAt time.Time) Outcome {
	out := Outcome{Index: index}
	if c.Event != nil {
		out.Topic = c.Event.Topic
		out.EventID = c.Event.EventID
	}

	if err := validateCandidate(c); err != nil {
		out.Status = StatusRejected
		out.Reason = err.Error()
		out.Err = fmt.Errorf("%w: %w", ErrValidation, err)
		e.record(out)
		return out
	}

	event := c.Event
	event.ReceivedAt = receivedAt

	start := time.Now()
	err := e.store.SaveEvent(ctx, event)
	metrics.StoreSaveDuration.Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		out.Status = StatusAccepted
	case errors.Is(err, storage.ErrDuplicate):
		out.Status = StatusDuplicate
	case errors.Is(err, storage.ErrInvalidEvent):
		// The store refused this event's content; siblings are unaffected.
		out.Status = StatusRejected
		out.Reason = err.Error()
		out.Err = fmt.Errorf("%w: %w", ErrValidation, err)
	default:
		// Anything but a clean insert or a key collision leaves the attempt unconfirmed.
		out.Status = StatusUnprocessed
		out.Reason = reasonStoreUnavailable
		out.Err = fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	e.record(out)
	return out
}

func validateCandidate(c v1.Candidate) error {
	if c.DecodeErr != nil {
		return c.DecodeErr
	}
	if c.Event == nil {
		return errors.New("event is required")
	}
	return c.Event.Validate()
}

func (e *Engine) record(out Outcome) {
	metrics.IngestEventsTotal.WithLabelValues(string(out.Status)).Inc()

	key := v1.Key{Topic: out.Topic, EventID: out.EventID}.String()
	switch out.Status {
	case StatusAccepted:
		slog.Debug("[Engine] Event accepted", "key", key)
	case StatusDuplicate:
		slog.Info("[Engine] Duplicate event dropped", "key", key)
	case StatusRejected:
		slog.Info("[Engine] Event rejected",
			"index", out.Index,
			"key", key,
			"reason", out.Reason)
	case StatusUnprocessed:
		slog.Error("[Engine] Store unavailable",
			"key", key,
			"error", out.Err)
	}
}

package dedup

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	v1 "github.com/aevon-lab/logagg/internal/api/v1"
	"github.com/aevon-lab/logagg/internal/core/storage"
	storagemocks "github.com/aevon-lab/logagg/internal/mocks/storage"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func candidate(topic, id string) v1.Candidate {
	return v1.Candidate{Event: &v1.Event{
		Topic:     topic,
		EventID:   id,
		Timestamp: "2025-01-01T00:00:00Z",
		Source:    "svc",
		Payload:   []byte(`{"n":1}`),
	}}
}

func withID(id string) interface{} {
	return mock.MatchedBy(func(e *v1.Event) bool { return e.EventID == id })
}

func TestNewEngine_PanicsWithoutStore(t *testing.T) {
	require.Panics(t, func() { NewEngine(nil) })
}

func TestEngine_OutcomesFollowStoreResults(t *testing.T) {
	store := storagemocks.NewEventStore(t)
	store.EXPECT().SaveEvent(mock.Anything, withID("e1")).Return(nil).Once()
	store.EXPECT().SaveEvent(mock.Anything, withID("e2")).Return(storage.ErrDuplicate).Once()

	engine := NewEngine(store)
	outcomes, err := engine.Ingest(context.Background(), []v1.Candidate{
		candidate("logs.x", "e1"),
		candidate("logs.x", "e2"),
	})
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	require.Equal(t, Outcome{Index: 0, Topic: "logs.x", EventID: "e1", Status: StatusAccepted}, outcomes[0])
	require.Equal(t, StatusDuplicate, outcomes[1].Status)
	require.Empty(t, outcomes[1].Reason)
	require.NoError(t, outcomes[1].Err)
}

func TestEngine_RejectedEventsNeverReachStore(t *testing.T) {
	store := storagemocks.NewEventStore(t)
	store.EXPECT().SaveEvent(mock.Anything, withID("ok-1")).Return(nil).Once()
	store.EXPECT().SaveEvent(mock.Anything, withID("ok-2")).Return(nil).Once()

	missingSource := candidate("logs.x", "bad-1")
	missingSource.Event.Source = ""
	badPayload := candidate("logs.x", "bad-2")
	badPayload.Event.Payload = []byte(`[1,2,3]`)
	undecodable := v1.Candidate{Event: &v1.Event{Topic: "logs.x"}, DecodeErr: errors.New("invalid event: wrong type for event_id")}

	engine := NewEngine(store)
	outcomes, err := engine.Ingest(context.Background(), []v1.Candidate{
		candidate("logs.x", "ok-1"),
		missingSource,
		badPayload,
		undecodable,
		{},
		candidate("logs.x", "ok-2"),
	})
	require.NoError(t, err)

	statuses := make([]Status, 0, len(outcomes))
	for _, o := range outcomes {
		statuses = append(statuses, o.Status)
	}
	require.Equal(t, []Status{StatusAccepted, StatusRejected, StatusRejected, StatusRejected, StatusRejected, StatusAccepted}, statuses)

	require.Equal(t, "source is required", outcomes[1].Reason)
	require.Equal(t, "payload must be a JSON object", outcomes[2].Reason)
	require.Contains(t, outcomes[3].Reason, "wrong type for event_id")
	require.Equal(t, "logs.x", outcomes[3].Topic)
	require.Equal(t, "event is required", outcomes[4].Reason)
	for _, o := range outcomes[1:5] {
		require.ErrorIs(t, o.Err, ErrValidation)
	}

	summary := Summarize(outcomes)
	require.Equal(t, Summary{Accepted: 2, Rejected: 4}, summary)
}

func TestEngine_StoreUnavailableStopsBatch(t *testing.T) {
	cause := errors.New("connection reset by peer")

	store := storagemocks.NewEventStore(t)
	store.EXPECT().SaveEvent(mock.Anything, withID("e1")).Return(nil).Once()
	store.EXPECT().SaveEvent(mock.Anything, withID("e2")).Return(storage.Unavailable("commit", cause)).Once()

	engine := NewEngine(store)
	outcomes, err := engine.Ingest(context.Background(), []v1.Candidate{
		candidate("logs.x", "e1"),
		candidate("logs.x", "e2"),
		candidate("logs.x", "e3"),
	})

	require.ErrorIs(t, err, ErrStoreUnavailable)
	require.ErrorIs(t, err, storage.ErrUnavailable)
	require.ErrorIs(t, err, cause)

	require.Equal(t, StatusAccepted, outcomes[0].Status)
	require.Equal(t, StatusUnprocessed, outcomes[1].Status)
	require.Equal(t, StatusUnprocessed, outcomes[2].Status)
	require.Equal(t, "store unavailable", outcomes[2].Reason)
	require.Equal(t, "e3", outcomes[2].EventID)
	require.ErrorIs(t, outcomes[2].Err, ErrStoreUnavailable)
}

func TestEngine_StoreRefusedEventIsRejectedAndBatchContinues(t *testing.T) {
	refused := storage.InvalidEvent("insert event", errors.New("pq: unsupported Unicode escape sequence"))

	store := storagemocks.NewEventStore(t)
	store.EXPECT().SaveEvent(mock.Anything, withID("e1")).Return(refused).Once()
	store.EXPECT().SaveEvent(mock.Anything, withID("e2")).Return(nil).Once()

	engine := NewEngine(store)
	outcomes, err := engine.Ingest(context.Background(), []v1.Candidate{
		candidate("logs.x", "e1"),
		candidate("logs.x", "e2"),
	})
	require.NoError(t, err)

	require.Equal(t, StatusRejected, outcomes[0].Status)
	require.Contains(t, outcomes[0].Reason, "unsupported Unicode escape sequence")
	require.ErrorIs(t, outcomes[0].Err, ErrValidation)
	require.ErrorIs(t, outcomes[0].Err, storage.ErrInvalidEvent)
	require.NotErrorIs(t, outcomes[0].Err, ErrStoreUnavailable)
	require.Equal(t, StatusAccepted, outcomes[1].Status)
	require.Equal(t, Summary{Accepted: 1, Rejected: 1}, Summarize(outcomes))
}

func TestEngine_CanceledContextLeavesEventsUnprocessed(t *testing.T) {
	store := storagemocks.NewEventStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := NewEngine(store)
	outcomes, err := engine.Ingest(ctx, []v1.Candidate{candidate("logs.x", "e1")})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, StatusUnprocessed, outcomes[0].Status)
	require.Equal(t, "request canceled", outcomes[0].Reason)
}

func TestEngine_StampsReceivedAt(t *testing.T) {
	now := time.Date(2026, 2, 8, 12, 0, 0, 0, time.UTC)

	store := storagemocks.NewEventStore(t)
	store.EXPECT().
		SaveEvent(mock.Anything, mock.MatchedBy(func(e *v1.Event) bool { return e.ReceivedAt.Equal(now) })).
		Return(nil).
		Once()

	engine := NewEngine(store, WithClock(func() time.Time { return now }))
	c := candidate("logs.x", "e1")
	c.Event.ReceivedAt = now.Add(-time.Hour) // producer-supplied values are ignored

	outcome, err := engine.IngestOne(context.Background(), c)
	require.NoError(t, err)
	require.Equal(t, StatusAccepted, outcome.Status)
}

func TestEngine_ConcurrentBatchPreservesOrder(t *testing.T) {
	store := storagemocks.NewEventStore(t)
	store.EXPECT().SaveEvent(mock.Anything, mock.Anything).
		RunAndReturn(func(_ context.Context, e *v1.Event) error {
			// Later events finish first.
			var n int
			fmt.Sscanf(e.EventID, "e%d", &n)
			time.Sleep(time.Duration(20-n) * time.Millisecond)
			if n%2 == 0 {
				return storage.ErrDuplicate
			}
			return nil
		})

	batch := make([]v1.Candidate, 0, 20)
	for i := 0; i < 20; i++ {
		batch = append(batch, candidate("logs.x", fmt.Sprintf("e%d", i)))
	}

	engine := NewEngine(store, WithConcurrency(8))
	outcomes, err := engine.Ingest(context.Background(), batch)
	require.NoError(t, err)
	require.Len(t, outcomes, 20)
	for i, o := range outcomes {
		require.Equal(t, i, o.Index)
		require.Equal(t, fmt.Sprintf("e%d", i), o.EventID)
		if i%2 == 0 {
			require.Equal(t, StatusDuplicate, o.Status)
		} else {
			require.Equal(t, StatusAccepted, o.Status)
		}
	}
}

func TestEngine_EmptyBatch(t *testing.T) {
	engine := NewEngine(storagemocks.NewEventStore(t))
	outcomes, err := engine.Ingest(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, outcomes)
}

package projection

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	v1 "github.com/aevon-lab/logagg/internal/api/v1"
	"github.com/aevon-lab/logagg/internal/core/storage"
	storagemocks "github.com/aevon-lab/logagg/internal/mocks/storage"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *storagemocks.EventStore) {
	t.Helper()
	eventStore := storagemocks.NewEventStore(t)
	svc := NewService(eventStore, "pebble", "1.0.0")
	start := time.Date(2026, 2, 7, 10, 0, 0, 0, time.UTC)
	svc.startedAt = start
	svc.nowFn = func() time.Time { return start.Add(90*time.Second + 250*time.Millisecond) }
	return svc, eventStore
}

func TestNewService_PanicsWithoutStore(t *testing.T) {
	require.Panics(t, func() { NewService(nil, "pebble", "dev") })
}

func TestService_ListEvents_NormalizesQuery(t *testing.T) {
	tests := []struct {
		name     string
		req      ListEventsRequest
		expected storage.ListQuery
	}{
		{
			name:     "defaults",
			req:      ListEventsRequest{},
			expected: storage.ListQuery{Limit: DefaultListLimit, Order: storage.NewestFirst},
		},
		{
			name:     "topic and ascending order",
			req:      ListEventsRequest{Topic: " logs.x ", Limit: 5, Order: "ASC"},
			expected: storage.ListQuery{Topic: "logs.x", Limit: 5, Order: storage.OldestFirst},
		},
		{
			name:     "maximum limit",
			req:      ListEventsRequest{Limit: MaxListLimit, Order: "desc"},
			expected: storage.ListQuery{Limit: MaxListLimit, Order: storage.NewestFirst},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, eventStore := newTestService(t)
			eventStore.EXPECT().ListEvents(mock.Anything, tt.expected).Return([]*v1.Event{}, nil).Once()

			events, err := svc.ListEvents(context.Background(), tt.req)
			require.NoError(t, err)
			require.Empty(t, events)
		})
	}
}

func TestService_ListEvents_Validation(t *testing.T) {
	svc, _ := newTestService(t)

	for _, req := range []ListEventsRequest{
		{Limit: -1},
		{Limit: MaxListLimit + 1},
		{Order: "sideways"},
	} {
		_, err := svc.ListEvents(context.Background(), req)
		require.ErrorIs(t, err, ErrInvalidQuery, "request %+v", req)
	}
}

func TestService_ListEvents_MapsEvents(t *testing.T) {
	svc, eventStore := newTestService(t)
	received := time.Date(2026, 2, 7, 10, 0, 1, 0, time.UTC)

	eventStore.EXPECT().ListEvents(mock.Anything, mock.Anything).Return([]*v1.Event{
		{
			Topic:       "logs.x",
			EventID:     "e2",
			Timestamp:   "2025-01-01T00:00:01Z",
			Source:      "svc",
			Payload:     json.RawMessage(`{"n":2}`),
			ReceivedAt:  received,
			ProcessedAt: received,
			Seq:         2,
		},
		{Topic: "logs.x", EventID: "e1", Seq: 1},
	}, nil).Once()

	events, err := svc.ListEvents(context.Background(), ListEventsRequest{Topic: "logs.x"})
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, "e2", events[0].EventID)
	require.JSONEq(t, `{"n":2}`, string(events[0].Payload))
	require.Equal(t, received, events[0].ReceivedAt)
	require.JSONEq(t, `{}`, string(events[1].Payload))
}

func TestService_ListEvents_StoreFailure(t *testing.T) {
	svc, eventStore := newTestService(t)
	cause := storage.Unavailable("list events", errors.New("connection refused"))
	eventStore.EXPECT().ListEvents(mock.Anything, mock.Anything).Return(nil, cause).Once()

	_, err := svc.ListEvents(context.Background(), ListEventsRequest{})
	require.ErrorIs(t, err, storage.ErrUnavailable)
	require.NotErrorIs(t, err, ErrInvalidQuery)
}

func TestService_GetStats(t *testing.T) {
	svc, eventStore := newTestService(t)
	eventStore.EXPECT().Snapshot(mock.Anything).Return(storage.Snapshot{
		Counters:   storage.Counters{Received: 3, UniqueProcessed: 2, DuplicateDropped: 1},
		Topics:     []string{"logs.x", "logs.y"},
		EventCount: 2,
	}, nil).Once()

	stats, err := svc.GetStats(context.Background())
	require.NoError(t, err)
	require.Equal(t, &StatsResponse{
		Received:          3,
		UniqueProcessed:   2,
		DuplicateDropped:  1,
		Topics:            []string{"logs.x", "logs.y"},
		TopicCount:        2,
		TotalUniqueEvents: 2,
		UniqueRate:        66.67,
		DuplicateRate:     33.33,
		UptimeSeconds:     90.25,
	}, stats)
}

func TestService_GetStats_EmptyStore(t *testing.T) {
	svc, eventStore := newTestService(t)
	eventStore.EXPECT().Snapshot(mock.Anything).Return(storage.Snapshot{}, nil).Once()

	stats, err := svc.GetStats(context.Background())
	require.NoError(t, err)
	require.NotNil(t, stats.Topics)
	require.Empty(t, stats.Topics)
	require.Zero(t, stats.UniqueRate)
	require.Zero(t, stats.DuplicateRate)
}

func TestService_GetInfo(t *testing.T) {
	svc, eventStore := newTestService(t)
	eventStore.EXPECT().Snapshot(mock.Anything).Return(storage.Snapshot{EventCount: 42}, nil).Once()

	info, err := svc.GetInfo(context.Background())
	require.NoError(t, err)
	require.Equal(t, "logagg", info.Service)
	require.Equal(t, "1.0.0", info.Version)
	require.Equal(t, "pebble", info.Backend)
	require.Equal(t, int64(42), info.TotalUniqueEvents)
	require.Equal(t, 90.25, info.UptimeSeconds)
	require.Contains(t, info.Features, "Idempotent consumer")
}

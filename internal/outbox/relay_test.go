package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type produced struct {
	key     string
	value   []byte
	headers map[string]string
}

type fakeProducer struct {
	sent   []produced
	failAt int
}

func (p *fakeProducer) Produce(_ context.Context, key string, value []byte, headers map[string]string) error {
	if p.failAt > 0 && len(p.sent)+1 == p.failAt {
		return errors.New("broker unavailable")
	}
	p.sent = append(p.sent, produced{key: key, value: value, headers: headers})
	return nil
}

func seed(t *testing.T, store *InMemoryStore, n int) []Event {
	t.Helper()
	var events []Event
	for i := 0; i < n; i++ {
		e, err := NewEvent(AggregateAccount, "1100200300", EventChequesPrinted, map[string]int{"seq": i}, time.Now())
		require.NoError(t, err)
		require.NoError(t, store.Append(context.Background(), e))
		events = append(events, e)
	}
	return events
}

func TestNewEventMarshalsPayload(t *testing.T) {
	e, err := NewEvent(AggregateBranch, "b1", EventCertifiedCommitted, map[string]int64{"first_serial": 1}, time.Now())
	require.NoError(t, err)
	var body map[string]int64
	require.NoError(t, json.Unmarshal(e.Payload, &body))
	assert.Equal(t, int64(1), body["first_serial"])
	assert.NotEqual(t, e.ID.String(), "00000000-0000-0000-0000-000000000000")

	_, err = NewEvent(AggregateBranch, "b1", EventCertifiedCommitted, make(chan int), time.Now())
	assert.Error(t, err)
}

func TestRelayFlush(t *testing.T) {
	t.Run("delivers pending events in order and marks them", func(t *testing.T) {
		store := NewInMemoryStore()
		events := seed(t, store, 3)
		producer := &fakeProducer{}
		metrics := NewMetrics(prometheus.NewRegistry())

		n, err := NewRelay(store, producer, WithMetrics(metrics)).Flush(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 3, n)
		require.Len(t, producer.sent, 3)
		for i, p := range producer.sent {
			assert.Equal(t, "1100200300", p.key)
			assert.Equal(t, events[i].ID.String(), p.headers["event_id"])
			assert.Equal(t, EventChequesPrinted, p.headers["event_type"])
		}
		pending, err := store.Pending(context.Background(), 10)
		require.NoError(t, err)
		assert.Empty(t, pending)
		assert.Equal(t, float64(3), testutil.ToFloat64(metrics.Published))
	})

	t.Run("stops at first failure and keeps the rest pending", func(t *testing.T) {
		store := NewInMemoryStore()
		events := seed(t, store, 3)
		producer := &fakeProducer{failAt: 2}

		n, err := NewRelay(store, producer).Flush(context.Background())
		require.Error(t, err)
		assert.Equal(t, 1, n)

		pending, err := store.Pending(context.Background(), 10)
		require.NoError(t, err)
		require.Len(t, pending, 2)
		assert.Equal(t, events[1].ID, pending[0].ID)
	})

	t.Run("respects batch size", func(t *testing.T) {
		store := NewInMemoryStore()
		seed(t, store, 5)
		n, err := NewRelay(store, &fakeProducer{}, WithBatchSize(2)).Flush(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})
}

func TestRelayRunStopsOnCancel(t *testing.T) {
	store := NewInMemoryStore()
	seed(t, store, 1)
	producer := &fakeProducer{}
	relay := NewRelay(store, producer, WithInterval(5*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- relay.Run(ctx) }()

	require.Eventually(t, func() bool {
		pending, _ := store.Pending(context.Background(), 10)
		return len(pending) == 0
	}, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("relay did not stop")
	}
}

package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"agendador/internal/events"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryPolicyNextDelay(t *testing.T) {
	policy := RetryPolicy{
		InitialDelay:  time.Second,
		MaxDelay:      10 * time.Second,
		BackoffFactor: 2,
	}

	assert.Equal(t, time.Second, policy.NextDelay(1))
	assert.Equal(t, 2*time.Second, policy.NextDelay(2))
	assert.Equal(t, 4*time.Second, policy.NextDelay(3))
	// Clamped at MaxDelay.
	assert.Equal(t, 10*time.Second, policy.NextDelay(10))
	// Attempt below 1 is treated as 1.
	assert.Equal(t, time.Second, policy.NextDelay(0))
}

func TestRetryPolicyDefaults(t *testing.T) {
	policy := RetryPolicy{}
	assert.Equal(t, time.Second, policy.NextDelay(1))
	assert.Equal(t, 2*time.Second, policy.NextDelay(2))
}

type fakeSink struct {
	mu       sync.Mutex
	sent     []string
	failures int
}

func (s *fakeSink) Send(ctx context.Context, event *events.Event, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failures > 0 {
		s.failures--
		return errors.New("boom")
	}
	s.sent = append(s.sent, key)
	return nil
}

func (s *fakeSink) keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.sent...)
}

func newTestRelay(sink EventSink) *EventRelay {
	logger := zerolog.New(io.Discard)
	return NewEventRelay(sink, RetryPolicy{
		MaxRetries:    3,
		InitialDelay:  time.Millisecond,
		MaxDelay:      5 * time.Millisecond,
		BackoffFactor: 2,
	}, &logger)
}

func bookingEvent(t *testing.T, bookingID string) *events.Event {
	t.Helper()
	raw, err := json.Marshal(events.BookingEventPayload{BookingID: bookingID})
	require.NoError(t, err)
	return &events.Event{Type: events.EventBookingCreated, Payload: raw, CreatedAt: time.Now()}
}

func TestEventRelayDelivers(t *testing.T) {
	sink := &fakeSink{}
	relay := newTestRelay(sink)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go relay.Run(ctx)

	handler := relay.Handler()
	require.NoError(t, handler(bookingEvent(t, "b1")))
	require.NoError(t, handler(bookingEvent(t, "b2")))

	assert.Eventually(t, func() bool {
		return len(sink.keys()) == 2
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"b1", "b2"}, sink.keys())
}

func TestEventRelayRetries(t *testing.T) {
	sink := &fakeSink{failures: 2}
	relay := newTestRelay(sink)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go relay.Run(ctx)

	require.NoError(t, relay.Handler()(bookingEvent(t, "b1")))

	// Two failures then success on the third attempt.
	assert.Eventually(t, func() bool {
		return len(sink.keys()) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestEventRelayDropsAfterRetries(t *testing.T) {
	sink := &fakeSink{failures: 100}
	relay := newTestRelay(sink)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go relay.Run(ctx)

	require.NoError(t, relay.Handler()(bookingEvent(t, "b1")))

	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, sink.keys())
}

func TestEventKeyFallsBackToType(t *testing.T) {
	event := &events.Event{Type: events.EventBookingDeleted, Payload: []byte("not json")}
	assert.Equal(t, events.EventBookingDeleted, eventKey(event))
}

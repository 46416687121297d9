package worker

import (
	"context"
	"encoding/json"
	"time"

	"agendador/internal/events"
	"agendador/internal/models"

	"github.com/rs/zerolog"
)

// EventSink receives relayed events; the Kafka publisher implements it.
type EventSink interface {
	Send(ctx context.Context, event *events.Event, key string) error
}

// EventRelay buffers domain events from the in-process bus and delivers them
// to an external sink with retries, so a slow or flapping broker never
// blocks the request path. Events are dropped when the queue is full or
// retries are exhausted; delivery is best-effort.
type EventRelay struct {
	sink        EventSink
	retryPolicy RetryPolicy
	queue       chan *events.Event
	logger      *zerolog.Logger
}

func NewEventRelay(sink EventSink, retry RetryPolicy, logger *zerolog.Logger) *EventRelay {
	if retry.MaxRetries == 0 {
		retry.MaxRetries = 5
	}
	if retry.InitialDelay == 0 {
		retry.InitialDelay = 2 * time.Second
	}
	if retry.MaxDelay == 0 {
		retry.MaxDelay = 1 * time.Minute
	}
	if retry.BackoffFactor == 0 {
		retry.BackoffFactor = 2
	}

	return &EventRelay{
		sink:        sink,
		retryPolicy: retry,
		queue:       make(chan *events.Event, models.EventQueueSize),
		logger:      logger,
	}
}

// Handler returns an events.EventHandler suitable for EventBus.SubscribeAll.
func (w *EventRelay) Handler() events.EventHandler {
	return func(event *events.Event) error {
		select {
		case w.queue <- event:
		default:
			w.logger.Warn().Str("event_type", event.Type).Msg("event queue full, dropping event")
		}
		return nil
	}
}

// Run consumes the queue until ctx is cancelled.
func (w *EventRelay) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-w.queue:
			w.deliver(ctx, event)
		}
	}
}

func (w *EventRelay) deliver(ctx context.Context, event *events.Event) {
	key := eventKey(event)

	for attempt := 1; attempt <= w.retryPolicy.MaxRetries; attempt++ {
		err := w.sink.Send(ctx, event, key)
		if err == nil {
			return
		}

		w.logger.Warn().
			Err(err).
			Str("event_type", event.Type).
			Int("attempt", attempt).
			Msg("event delivery failed")

		if attempt == w.retryPolicy.MaxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(w.retryPolicy.NextDelay(attempt)):
		}
	}

	w.logger.Error().Str("event_type", event.Type).Msg("event dropped after retries")
}

func eventKey(event *events.Event) string {
	var payload events.BookingEventPayload
	if err := json.Unmarshal(event.Payload, &payload); err == nil && payload.BookingID != "" {
		return payload.BookingID
	}
	return event.Type
}

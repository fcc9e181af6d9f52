// Package events emits ResourcePublished events when the host stores a
// resource or status list version.
package events

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"didweb-anoncreds/internal/hosting/models"
)

var ErrQueueFull = errors.New("event queue full")

// Sink delivers one event.
type Sink interface {
	Publish(ctx context.Context, event models.ResourcePublished) error
}

// Publisher stamps events and hands them to a sink.
type Publisher struct {
	sink Sink
	now  func() time.Time
}

func NewPublisher(sink Sink) *Publisher {
	return &Publisher{sink: sink, now: time.Now}
}

// Emit assigns an id and occurrence time when missing.
func (p *Publisher) Emit(ctx context.Context, event models.ResourcePublished) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = p.now()
	}
	return p.sink.Publish(ctx, event)
}

// QueueSink buffers events for a Worker. It never blocks the caller.
type QueueSink struct {
	inbox chan<- models.ResourcePublished
}

func NewQueueSink(inbox chan<- models.ResourcePublished) *QueueSink {
	return &QueueSink{inbox: inbox}
}

func (q *QueueSink) Publish(_ context.Context, event models.ResourcePublished) error {
	select {
	case q.inbox <- event:
		return nil
	default:
		return ErrQueueFull
	}
}

// Worker drains queued events into a sink. Delivery failures are logged and
// the event is dropped.
type Worker struct {
	sink   Sink
	inbox  <-chan models.ResourcePublished
	logger *slog.Logger
}

func NewWorker(sink Sink, inbox <-chan models.ResourcePublished, logger *slog.Logger) *Worker {
	return &Worker{sink: sink, inbox: inbox, logger: logger}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.inbox:
			if !ok {
				return nil
			}
			if err := w.sink.Publish(ctx, event); err != nil {
				w.logger.ErrorContext(ctx, "failed to deliver event",
					"event_id", event.ID.String(),
					"type", event.Type,
					"error", err,
				)
			}
		}
	}
}

// MemorySink records events in order.
type MemorySink struct {
	mu     sync.Mutex
	events []models.ResourcePublished
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (m *MemorySink) Publish(_ context.Context, event models.ResourcePublished) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *MemorySink) Events() []models.ResourcePublished {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.ResourcePublished, len(m.events))
	copy(out, m.events)
	return out
}

// LogSink writes events to the log when no broker is configured.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (l *LogSink) Publish(ctx context.Context, event models.ResourcePublished) error {
	l.logger.InfoContext(ctx, "resource published",
		"event_id", event.ID.String(),
		"type", event.Type,
		"kind", event.Kind,
		"resource_id", event.ResourceID,
		"issuer_id", event.IssuerID,
	)
	return nil
}

package events

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"didweb-anoncreds/internal/hosting/models"
)

func TestPublisherEmitStampsEvent(t *testing.T) {
	sink := NewMemorySink()
	publisher := NewPublisher(sink)
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	publisher.now = func() time.Time { return fixed }

	err := publisher.Emit(context.Background(), models.ResourcePublished{
		Type:       models.EventResourcePublished,
		Kind:       "schema",
		ResourceID: "abc",
	})
	require.NoError(t, err)

	events := sink.Events()
	require.Len(t, events, 1)
	assert.NotEqual(t, uuid.Nil, events[0].ID)
	assert.Equal(t, fixed, events[0].OccurredAt)
	assert.Equal(t, "abc", events[0].ResourceID)
}

func TestPublisherEmitKeepsProvidedFields(t *testing.T) {
	sink := NewMemorySink()
	publisher := NewPublisher(sink)
	id := uuid.New()
	at := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, publisher.Emit(context.Background(), models.ResourcePublished{ID: id, OccurredAt: at}))

	events := sink.Events()
	require.Len(t, events, 1)
	assert.Equal(t, id, events[0].ID)
	assert.Equal(t, at, events[0].OccurredAt)
}

func TestQueueSinkRejectsWhenFull(t *testing.T) {
	inbox := make(chan models.ResourcePublished, 1)
	sink := NewQueueSink(inbox)

	require.NoError(t, sink.Publish(context.Background(), models.ResourcePublished{ResourceID: "one"}))
	assert.ErrorIs(t, sink.Publish(context.Background(), models.ResourcePublished{ResourceID: "two"}), ErrQueueFull)
}

type failingSink struct{ calls int }

func (f *failingSink) Publish(context.Context, models.ResourcePublished) error {
	f.calls++
	return io.ErrUnexpectedEOF
}

func TestWorkerDrainsQueue(t *testing.T) {
	inbox := make(chan models.ResourcePublished, 3)
	sink := NewMemorySink()
	worker := NewWorker(sink, inbox, slog.New(slog.NewTextHandler(io.Discard, nil)))

	inbox <- models.ResourcePublished{ResourceID: "a"}
	inbox <- models.ResourcePublished{ResourceID: "b"}
	close(inbox)

	require.NoError(t, worker.Run(context.Background()))
	events := sink.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "a", events[0].ResourceID)
	assert.Equal(t, "b", events[1].ResourceID)
}

func TestWorkerContinuesAfterSinkFailure(t *testing.T) {
	inbox := make(chan models.ResourcePublished, 2)
	sink := &failingSink{}
	worker := NewWorker(sink, inbox, slog.New(slog.NewTextHandler(io.Discard, nil)))

	inbox <- models.ResourcePublished{ResourceID: "a"}
	inbox <- models.ResourcePublished{ResourceID: "b"}
	close(inbox)

	require.NoError(t, worker.Run(context.Background()))
	assert.Equal(t, 2, sink.calls)
}

func TestWorkerStopsOnCancel(t *testing.T) {
	inbox := make(chan models.ResourcePublished)
	worker := NewWorker(NewMemorySink(), inbox, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, worker.Run(ctx), context.Canceled)
}

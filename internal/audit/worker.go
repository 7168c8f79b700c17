package audit

import (
	"context"
	"log/slog"
	"time"
)

const defaultBuffer = 256

// Worker decouples request handling from the trail: Emit enqueues without
// blocking, a background goroutine drains to the publisher. When the buffer
// is full the event is dropped and counted in the log, never the request.
type Worker struct {
	publisher Publisher
	logger    *slog.Logger
	events    chan Event
}

func NewWorker(publisher Publisher, logger *slog.Logger) *Worker {
	return &Worker{
		publisher: publisher,
		logger:    logger,
		events:    make(chan Event, defaultBuffer),
	}
}

// Emit enqueues an event. Safe from any goroutine; never blocks.
func (w *Worker) Emit(event Event) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	select {
	case w.events <- event:
	default:
		w.logger.Warn("audit buffer full, dropping event", "plugin", event.Plugin)
	}
}

// Run drains the buffer until ctx is cancelled, then flushes what is left and
// closes the publisher.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case event := <-w.events:
			w.publish(ctx, event)
		case <-ctx.Done():
			w.flush()
			w.publisher.Close()
			return ctx.Err()
		}
	}
}

func (w *Worker) flush() {
	for {
		select {
		case event := <-w.events:
			w.publish(context.Background(), event)
		default:
			return
		}
	}
}

func (w *Worker) publish(ctx context.Context, event Event) {
	if err := w.publisher.Publish(ctx, event); err != nil {
		w.logger.Error("audit publish failed", "plugin", event.Plugin, "error", err)
	}
}

package audit

import (
	"context"
	"log/slog"
)

// LogPublisher writes events to the service log. Used when Kafka is not
// configured, so every deployment has some trail.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, event Event) error {
	p.logger.InfoContext(ctx, "verification audited",
		"plugin", event.Plugin,
		"outcome", event.Outcome,
		"subject_hash", event.SubjectHash,
		"client_os", event.Client.OS,
	)
	return nil
}

func (p *LogPublisher) Close() {}

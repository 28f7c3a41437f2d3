package audit

import (
	"context"
	"log/slog"
)

// Sink is where the worker delivers events: Kafka in production, a log
// sink when no brokers are configured, a capture slice in tests.
type Sink interface {
	Append(ctx context.Context, event Event) error
}

// Worker consumes audit events from the publisher's channel and delivers
// them to the sink. Delivery failures are logged and skipped; the audit
// stream tolerates gaps but must never wedge the channel.
type Worker struct {
	sink   Sink
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(sink Sink, inbox <-chan Event, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{sink: sink, inbox: inbox, logger: logger}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.sink.Append(ctx, event); err != nil {
				w.logger.Error("audit sink append failed",
					"action", event.Action,
					"error", err,
				)
			}
		}
	}
}

// LogSink writes events to the structured log. Used when Kafka is not
// configured so audit activity still lands somewhere inspectable.
type LogSink struct {
	Logger *slog.Logger
}

func (s LogSink) Append(_ context.Context, event Event) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("audit",
		"action", event.Action,
		"tenant_id", event.TenantID,
		"user_id", event.UserID,
		"provider_id", event.ProviderID,
		"workflow_run_id", event.WorkflowRunID,
		"request_id", event.RequestID,
		"reason", event.Reason,
	)
	return nil
}

package audit

import (
	"log/slog"
	"time"
)

// Publisher accepts events from domain logic and hands them to a background
// worker over a bounded channel. Emit never blocks and never fails: audit is
// best-effort observability, and a slow or dead sink must not stall a
// verification flow. Overflow is counted and logged, not propagated.
type Publisher struct {
	inbox   chan Event
	logger  *slog.Logger
	dropped func()
}

type PublisherOption func(*Publisher)

func WithPublisherLogger(l *slog.Logger) PublisherOption {
	return func(p *Publisher) { p.logger = l }
}

// WithDropCounter registers a callback invoked once per dropped event,
// typically a prometheus counter increment.
func WithDropCounter(fn func()) PublisherOption {
	return func(p *Publisher) { p.dropped = fn }
}

func NewPublisher(buffer int, opts ...PublisherOption) *Publisher {
	if buffer <= 0 {
		buffer = 256
	}
	p := &Publisher{
		inbox:  make(chan Event, buffer),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Publisher) Emit(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	select {
	case p.inbox <- event:
	default:
		if p.dropped != nil {
			p.dropped()
		}
		p.logger.Warn("audit inbox full, dropping event",
			"action", event.Action,
			"user_id", event.UserID,
		)
	}
}

// Events exposes the inbox for the consuming worker.
func (p *Publisher) Events() <-chan Event {
	return p.inbox
}

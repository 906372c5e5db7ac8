package audit

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"veripay/pkg/requestcontext"
)

// Publisher delivers audit events to an external sink.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Store persists audit events for later querying.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}

// Sink accepts events for asynchronous delivery. Domain services emit
// through this so they never depend on a concrete pipeline.
type Sink interface {
	Emit(ctx context.Context, event Event)
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) Emit(context.Context, Event) {}

// LogPublisher writes events to the structured log. It is the fallback
// sink when no broker is configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, event Event) error {
	p.logger.InfoContext(ctx, "audit event",
		"event_id", event.ID,
		"event_type", event.Type,
		"subject", event.Subject,
		"intent_id", event.IntentID,
		"reason", event.Reason,
	)
	return nil
}

func (p *LogPublisher) Close() error { return nil }

const defaultInboxSize = 256

// Emitter fans events out to a publisher and an optional store without
// blocking callers. Events are dropped with a warning when the inbox is
// full or the emitter has stopped.
type Emitter struct {
	publisher Publisher
	store     Store
	breaker   *Breaker
	inbox     chan Event
	logger    *slog.Logger
}

// EmitterOption configures an Emitter.
type EmitterOption func(*Emitter)

// WithStore persists every event in addition to publishing it.
func WithStore(store Store) EmitterOption {
	return func(e *Emitter) { e.store = store }
}

// WithBreaker sheds publishes through the given breaker while the sink
// is failing. The store append is not affected.
func WithBreaker(b *Breaker) EmitterOption {
	return func(e *Emitter) { e.breaker = b }
}

// NewEmitter constructs an emitter. Run must be started for events to
// flow.
func NewEmitter(publisher Publisher, logger *slog.Logger, opts ...EmitterOption) *Emitter {
	e := &Emitter{
		publisher: publisher,
		inbox:     make(chan Event, defaultInboxSize),
		logger:    logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Emit enqueues an event, stamping ID, timestamp and request ID. It
// never blocks; a full inbox drops the event.
func (e *Emitter) Emit(ctx context.Context, event Event) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx).UTC()
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}

	select {
	case e.inbox <- event:
	default:
		e.logger.WarnContext(ctx, "audit inbox full, dropping event",
			"event_type", event.Type,
			"event_id", event.ID,
		)
	}
}

// Run drains the inbox until ctx is cancelled, then flushes what is
// already queued. Sink failures are logged and swallowed.
func (e *Emitter) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			e.drain()
			return ctx.Err()
		case event := <-e.inbox:
			e.deliver(event)
		}
	}
}

func (e *Emitter) drain() {
	for {
		select {
		case event := <-e.inbox:
			e.deliver(event)
		default:
			return
		}
	}
}

func (e *Emitter) deliver(event Event) {
	ctx := context.Background()
	if e.store != nil {
		if err := e.store.Append(ctx, event); err != nil {
			e.logger.Warn("audit store append failed",
				"event_id", event.ID,
				"error", err,
			)
		}
	}

	if e.breaker != nil && !e.breaker.Allow() {
		return
	}
	if err := e.publisher.Publish(ctx, event); err != nil {
		if e.breaker != nil {
			e.breaker.RecordFailure()
		}
		e.logger.Warn("audit publish failed",
			"event_id", event.ID,
			"error", err,
		)
		return
	}
	if e.breaker != nil {
		e.breaker.RecordSuccess()
	}
}

// Package publisher fans audit events into a Store. Compliance events are always
// written synchronously and their failure is returned to the caller (fail-closed);
// other categories go through an optional async buffer and are dropped with a log
// line when the buffer is full.
package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	audit "idproof/pkg/platform/audit"
)

type Publisher struct {
	store  audit.Store
	logger *slog.Logger

	// mu guards closed and the send on buffer against a concurrent Close.
	mu     sync.RWMutex
	closed bool
	buffer chan audit.Event
	wg     sync.WaitGroup
	once   sync.Once
}

type Option func(*Publisher)

// WithAsyncBuffer enables background writes for non-compliance events.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		if size > 0 {
			p.buffer = make(chan audit.Event, size)
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	if p.buffer != nil {
		p.wg.Add(1)
		go p.drain()
	}
	return p
}

// Emit records event. The category is always derived from the action.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Action == "" {
		return fmt.Errorf("audit event requires Action")
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	event.Category = audit.AuditEvent(event.Action).Category()

	if p.buffer == nil || event.Category == audit.CategoryCompliance {
		return p.append(ctx, event)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		// late emitters after shutdown still get their event written
		return p.append(ctx, event)
	}
	select {
	case p.buffer <- event:
	default:
		p.logger.WarnContext(ctx, "audit buffer full, dropping event",
			"action", event.Action,
			"session_id", event.SessionID,
		)
	}
	return nil
}

func (p *Publisher) append(ctx context.Context, event audit.Event) error {
	if err := p.store.Append(ctx, event); err != nil {
		if event.Category == audit.CategoryCompliance {
			p.logger.ErrorContext(ctx, "CRITICAL: compliance audit failed",
				"action", event.Action,
				"session_id", event.SessionID,
				"error", err,
			)
		}
		return fmt.Errorf("audit persistence failed: %w", err)
	}
	return nil
}

// List reads events for a session straight from the store.
func (p *Publisher) List(ctx context.Context, sessionID string) ([]audit.Event, error) {
	return p.store.ListBySession(ctx, sessionID)
}

// Close drains the async buffer. Events emitted afterwards are written
// synchronously.
func (p *Publisher) Close() {
	p.once.Do(func() {
		if p.buffer == nil {
			return
		}
		p.mu.Lock()
		p.closed = true
		close(p.buffer)
		p.mu.Unlock()
		p.wg.Wait()
	})
}

func (p *Publisher) drain() {
	defer p.wg.Done()
	for event := range p.buffer {
		// detached from the request that emitted it
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := p.store.Append(ctx, event); err != nil {
			p.logger.Error("async audit write failed",
				"action", event.Action,
				"session_id", event.SessionID,
				"error", err,
			)
		}
		cancel()
	}
}

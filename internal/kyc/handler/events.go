package handler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"idproof/internal/kyc/models"
	"idproof/pkg/requestcontext"
)

const defaultSubscriberBuffer = 16

// Event is one message on a session's progress stream.
type Event struct {
	Type      string           `json:"type"`
	SessionID string           `json:"session_id"`
	From      models.Stage     `json:"from,omitempty"`
	To        models.Stage     `json:"to,omitempty"`
	Session   *SessionResponse `json:"session,omitempty"`
	At        time.Time        `json:"at"`
}

const (
	EventTypeSnapshot     = "snapshot"
	EventTypeStageChanged = "stage_changed"
)

type subscriber struct {
	ch chan Event
}

// Hub fans stage changes out to websocket subscribers. It implements the progress
// notifier port and never blocks the orchestrator: a subscriber whose buffer is
// full loses the event.
type Hub struct {
	mu     sync.Mutex
	subs   map[models.SessionID]map[*subscriber]struct{}
	buffer int
	logger *slog.Logger
}

type HubOption func(*Hub)

func WithSubscriberBuffer(n int) HubOption {
	return func(h *Hub) {
		if n > 0 {
			h.buffer = n
		}
	}
}

func NewHub(logger *slog.Logger, opts ...HubOption) *Hub {
	h := &Hub{
		subs:   make(map[models.SessionID]map[*subscriber]struct{}),
		buffer: defaultSubscriberBuffer,
		logger: logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Subscribe registers for the events of one session. The returned channel is
// closed after the terminal event or when cancel is called.
func (h *Hub) Subscribe(id models.SessionID) (<-chan Event, func()) {
	sub := &subscriber{ch: make(chan Event, h.buffer)}

	h.mu.Lock()
	set, ok := h.subs[id]
	if !ok {
		set = make(map[*subscriber]struct{})
		h.subs[id] = set
	}
	set[sub] = struct{}{}
	h.mu.Unlock()

	return sub.ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.removeLocked(id, sub)
	}
}

// StageChanged delivers a stage transition to every subscriber of id.
func (h *Hub) StageChanged(ctx context.Context, id models.SessionID, from, to models.Stage) {
	ev := Event{
		Type:      EventTypeStageChanged,
		SessionID: id.String(),
		From:      from,
		To:        to,
		At:        requestcontext.Now(ctx),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs[id] {
		select {
		case sub.ch <- ev:
		default:
			h.logger.WarnContext(ctx, "progress event dropped for slow subscriber",
				"session_id", id.String(),
				"to", to,
			)
		}
		if to.IsTerminal() {
			h.removeLocked(id, sub)
		}
	}
}

// Subscribers returns the number of open subscriptions for id.
func (h *Hub) Subscribers(id models.SessionID) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[id])
}

func (h *Hub) removeLocked(id models.SessionID, sub *subscriber) {
	set, ok := h.subs[id]
	if !ok {
		return
	}
	if _, ok := set[sub]; !ok {
		return
	}
	delete(set, sub)
	close(sub.ch)
	if len(set) == 0 {
		delete(h.subs, id)
	}
}

// Package codestate stores one-time code bookkeeping per session and channel.
package codestate

import (
	"context"
	"sync"
	"time"

	"idproof/internal/kyc/models"
	"idproof/pkg/platform/sentinel"
	"idproof/pkg/requestcontext"
)

type key struct {
	session models.SessionID
	channel models.Channel
}

type entry struct {
	state models.CodeState
	until time.Time
}

// InMemoryStore keeps code state in process. Entries past their retention read as
// missing, the same as an expired Redis key.
type InMemoryStore struct {
	mu      sync.Mutex
	entries map[key]entry
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{entries: make(map[key]entry)}
}

func (s *InMemoryStore) Issue(ctx context.Context, id models.SessionID, ch models.Channel, state models.CodeState, retention time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key{id, ch}] = entry{state: state, until: requestcontext.Now(ctx).Add(retention)}
	return nil
}

func (s *InMemoryStore) Get(ctx context.Context, id models.SessionID, ch models.Channel) (models.CodeState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.liveLocked(ctx, key{id, ch})
	if !ok {
		return models.CodeState{}, sentinel.ErrNotFound
	}
	return e.state, nil
}

func (s *InMemoryStore) AddAttempts(ctx context.Context, id models.SessionID, ch models.Channel, delta int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key{id, ch}
	e, ok := s.liveLocked(ctx, k)
	if !ok {
		return 0, sentinel.ErrNotFound
	}
	e.state.Attempts += delta
	s.entries[k] = e
	return e.state.Attempts, nil
}

func (s *InMemoryStore) Delete(_ context.Context, id models.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key{id, models.ChannelEmail})
	delete(s.entries, key{id, models.ChannelPhone})
	return nil
}

func (s *InMemoryStore) liveLocked(ctx context.Context, k key) (entry, bool) {
	e, ok := s.entries[k]
	if !ok {
		return entry{}, false
	}
	if requestcontext.Now(ctx).After(e.until) {
		delete(s.entries, k)
		return entry{}, false
	}
	return e, true
}

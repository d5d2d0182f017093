// Package session holds in-progress verification sessions. Sessions live here only
// until a verdict is handed off; nothing is persisted.
package session

import (
	"context"
	"sync"
	"time"

	"idproof/internal/kyc/models"
	"idproof/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[models.SessionID]*models.Session
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[models.SessionID]*models.Session)}
}

func (s *InMemoryStore) Save(_ context.Context, sess *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[sess.ID]; exists {
		return sentinel.ErrConflict
	}
	s.sessions[sess.ID] = sess
	return nil
}

// Get returns the live session. Expired sessions read as missing.
func (s *InMemoryStore) Get(_ context.Context, id models.SessionID, now time.Time) (*models.Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if sess.IsExpired(now) {
		return nil, sentinel.ErrExpired
	}
	return sess, nil
}

func (s *InMemoryStore) Delete(_ context.Context, id models.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// DeleteExpired removes sessions past their TTL and returns their ids.
func (s *InMemoryStore) DeleteExpired(_ context.Context, now time.Time) ([]models.SessionID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed []models.SessionID
	for id, sess := range s.sessions {
		if sess.IsExpired(now) {
			delete(s.sessions, id)
			removed = append(removed, id)
		}
	}
	return removed, nil
}

func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

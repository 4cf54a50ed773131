package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory session store for development and testing.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session)}
}

func (s *MemoryStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	copied := *sess
	return &copied, nil
}

func (s *MemoryStore) Set(ctx context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *sess
	s.sessions[sess.ID] = &copied
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionID)
	return nil
}

func (s *MemoryStore) List(ctx context.Context) ([]*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		copied := *sess
		out = append(out, &copied)
	}
	return out, nil
}

func (s *MemoryStore) Cleanup(ctx context.Context, maxIdle time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for id, sess := range s.sessions {
		if now.Sub(sess.LastOpened) > maxIdle {
			delete(s.sessions, id)
		}
	}
	return nil
}

var _ Store = (*MemoryStore)(nil)
